package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role validation errors
var (
	ErrEmptyRoleID   = fmt.Errorf("%w: role ID cannot be empty", ErrValidation)
	ErrEmptyRoleName = fmt.Errorf("%w: role name cannot be empty", ErrValidation)
	ErrRoleNameLong  = fmt.Errorf("%w: role name must be at most 64 characters", ErrValidation)
)

// Role is a named bundle of permissions assigned to users.
type Role struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Permissions PermissionSet `json:"permissions"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewRole creates a validated Role with a fresh ID.
func NewRole(name, description string, permissions PermissionSet) (*Role, error) {
	now := time.Now().UTC()
	role := &Role{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Permissions: permissions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := role.Validate(); err != nil {
		return nil, err
	}
	return role, nil
}

// Validate checks if the Role has valid data.
func (r *Role) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyRoleID
	}
	if r.Name == "" {
		return ErrEmptyRoleName
	}
	if len(r.Name) > 64 {
		return ErrRoleNameLong
	}
	return r.Permissions.Validate()
}
