package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/domain"
)

// RoleStore persists roles and their permission sets.
type RoleStore interface {
	// Create saves a new role. Returns ErrRoleNameExists if the name is taken.
	Create(ctx context.Context, role *domain.Role) error

	// GetByID returns ErrRoleNotFound if the role does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Role, error)

	// GetByName returns ErrRoleNotFound if the role does not exist.
	GetByName(ctx context.Context, name string) (*domain.Role, error)

	// List returns every role ordered by name.
	List(ctx context.Context) ([]domain.Role, error)
}
