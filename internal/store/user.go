package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user. The user's HashedPassword must already be set.
	// Returns ErrUsernameExists or ErrEmailExists on unique violations.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID, including soft-deleted users.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername is the credential lookup used at sign-in. Soft-deleted
	// users are never returned. Returns ErrUserNotFound if absent.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// List returns one page of users with the given deleted flag and the
	// total number of matching users.
	List(ctx context.Context, page domain.PageRequest, deleted bool) ([]domain.User, int, error)

	// Update persists every mutable field of user, including HashedPassword.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// Delete permanently removes a user.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a UserStore bound to the given transaction.
	WithTx(tx *sql.Tx) UserStore
}
