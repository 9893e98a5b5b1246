package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/api/shared"
	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/service"
)

// UserHandler serves the /users resource.
type UserHandler struct {
	users service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// Archive handles GET /users/archive, listing soft-deleted users.
func (h *UserHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request, deleted bool) {
	pageReq, err := getPageRequest(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	page, err := h.users.ListUsers(r.Context(), pageReq, deleted)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, mapPage(page, userToResponse))
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		HandleAPIError(w, r, domain.ErrInvalidID)
		return
	}

	in := service.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		RoleID:    roleID,
		Active:    req.Active == nil || *req.Active,
	}

	user, err := h.users.CreateUser(r.Context(), in)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, userToResponse(user))
}

// Update handles PUT /users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	in := service.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Active:    req.Active,
	}
	if req.RoleID != nil {
		roleID, err := uuid.Parse(*req.RoleID)
		if err != nil {
			HandleAPIError(w, r, domain.ErrInvalidID)
			return
		}
		in.RoleID = &roleID
	}

	user, err := h.users.UpdateUser(r.Context(), id, in)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// SoftDelete handles DELETE /users/{id}.
func (h *UserHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.users.SoftDeleteUser)
}

// Restore handles PUT /users/{id}/restore.
func (h *UserHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.users.RestoreUser)
}

// Delete handles DELETE /users/{id}/delete, removing the user permanently.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.users.DeleteUser)
}

func (h *UserHandler) byID(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id uuid.UUID) error,
) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := op(r.Context(), id); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithStatus(w, http.StatusNoContent)
}
