package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/domain"
)

// LoginRequest defines the payload for the sign-in endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by a successful sign-in.
type LoginResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	UserID       uuid.UUID `json:"userId"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RefreshTokenResponse carries the rotated token pair.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LogoutRequest defines the payload for the logout endpoint.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
	AccessToken  string `json:"accessToken"  validate:"required"`
}

// ProfileResponse identifies the authenticated caller.
type ProfileResponse struct {
	UserID uuid.UUID `json:"userId"`
}

// CreateUserRequest defines the payload for creating a user.
type CreateUserRequest struct {
	Username  string `json:"username"  validate:"required,min=3,max=50"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName"  validate:"max=100"`
	RoleID    string `json:"roleId"    validate:"required,uuid"`
	Active    *bool  `json:"active"`
}

// UpdateUserRequest carries optional user changes; omitted fields are kept.
type UpdateUserRequest struct {
	Email     *string `json:"email"     validate:"omitempty,email"`
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName"  validate:"omitempty,max=100"`
	Password  *string `json:"password"  validate:"omitempty,min=8,max=72"`
	RoleID    *string `json:"roleId"    validate:"omitempty,uuid"`
	Active    *bool   `json:"active"`
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Active    bool       `json:"active"`
	Deleted   bool       `json:"deleted"`
	RoleID    uuid.UUID  `json:"roleId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// PermissionRequest is one {resource, actions} entry of a role payload.
type PermissionRequest struct {
	Resource string   `json:"resource" validate:"required"`
	Actions  []string `json:"actions"  validate:"required,min=1"`
}

// CreateRoleRequest defines the payload for creating a role.
type CreateRoleRequest struct {
	Name        string              `json:"name"        validate:"required,max=64"`
	Description string              `json:"description" validate:"max=255"`
	Permissions []PermissionRequest `json:"permissions" validate:"required,min=1,dive"`
}

// RoleResponse is the public representation of a role.
type RoleResponse struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Permissions []domain.Permission `json:"permissions"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// ServiceRequest defines the payload for creating or updating a catalog
// service. Active defaults to true on create.
type ServiceRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"required,min=8,max=50"`
	Active      *bool  `json:"active"`
}

// ServiceResponse is the public representation of a catalog service.
type ServiceResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Active      bool       `json:"active"`
	Deleted     bool       `json:"deleted"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Active:    u.Active,
		Deleted:   u.Deleted,
		RoleID:    u.RoleID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		DeletedAt: u.DeletedAt,
	}
}

func roleToResponse(r *domain.Role) RoleResponse {
	perms := []domain.Permission(r.Permissions)
	if perms == nil {
		perms = []domain.Permission{}
	}
	return RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: perms,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func serviceToResponse(s *domain.Service) ServiceResponse {
	return ServiceResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Active:      s.Active,
		Deleted:     s.Deleted,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		DeletedAt:   s.DeletedAt,
	}
}

// toPermissionSet converts a role payload to the domain type without
// validating it; domain.NewRole does that.
func toPermissionSet(reqs []PermissionRequest) domain.PermissionSet {
	set := make(domain.PermissionSet, 0, len(reqs))
	for _, req := range reqs {
		actions := make([]domain.Action, len(req.Actions))
		for i, a := range req.Actions {
			actions[i] = domain.Action(a)
		}
		set = append(set, domain.NewPermission(domain.Resource(req.Resource), actions...))
	}
	return set
}

// mapPage converts the items of a page, keeping its pagination info.
func mapPage[T, R any](page domain.Page[T], convert func(*T) R) domain.Page[R] {
	items := make([]R, len(page.Items))
	for i := range page.Items {
		items[i] = convert(&page.Items[i])
	}
	return domain.Page[R]{Items: items, Pagination: page.Pagination}
}
