package store

import (
	"context"

	"github.com/phrazzld/booking-api/internal/domain"
)

// ServiceStore persists catalog services.
type ServiceStore interface {
	// Create saves a new service and sets its ID.
	// Returns ErrServiceNameExists if the name is taken.
	Create(ctx context.Context, svc *domain.Service) error

	// GetByID retrieves a service including soft-deleted ones.
	// Returns ErrServiceNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Service, error)

	// List returns one page of services with the given deleted flag and the
	// total number of matching services, newest first.
	List(ctx context.Context, page domain.PageRequest, deleted bool) ([]domain.Service, int, error)

	// Update persists every mutable field of svc.
	Update(ctx context.Context, svc *domain.Service) error

	// Delete permanently removes a service.
	Delete(ctx context.Context, id int64) error
}
