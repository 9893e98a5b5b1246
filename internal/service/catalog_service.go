package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/store"
)

// ServiceInput carries the fields of a catalog service on create and update.
type ServiceInput struct {
	Name        string
	Description string
	Active      bool
}

// CatalogService manages the bookable services catalog. Soft-deleted
// services are invisible to Get, Update and SoftDelete; Restore and Delete
// reach them.
type CatalogService interface {
	CreateService(ctx context.Context, in ServiceInput) (*domain.Service, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	ListServices(ctx context.Context, page domain.PageRequest, deleted bool) (domain.Page[domain.Service], error)
	UpdateService(ctx context.Context, id int64, in ServiceInput) (*domain.Service, error)
	SoftDeleteService(ctx context.Context, id int64) error
	RestoreService(ctx context.Context, id int64) error
	DeleteService(ctx context.Context, id int64) error
}

// CatalogServiceImpl implements the CatalogService interface
type CatalogServiceImpl struct {
	serviceStore store.ServiceStore
	logger       *slog.Logger
	timeFunc     func() time.Time
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(serviceStore store.ServiceStore, logger *slog.Logger) CatalogService {
	return &CatalogServiceImpl{
		serviceStore: serviceStore,
		logger:       logger.With("component", "catalog_service"),
		timeFunc:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateService validates and stores a new catalog entry
func (s *CatalogServiceImpl) CreateService(ctx context.Context, in ServiceInput) (*domain.Service, error) {
	svc, err := domain.NewService(in.Name, in.Description, in.Active)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	if err := s.serviceStore.Create(ctx, svc); err != nil {
		if store.IsDuplicateError(err) {
			s.logger.Debug("attempted to create duplicate service", "name", svc.Name)
		} else {
			s.logger.Error("failed to save service", "error", err, "name", svc.Name)
		}
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.logger.Info("service created", "service_id", svc.ID, "name", svc.Name)
	return svc, nil
}

// GetService retrieves a live service
func (s *CatalogServiceImpl) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := s.live(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve service: %w", err)
	}
	return svc, nil
}

// ListServices returns one page of services, newest first
func (s *CatalogServiceImpl) ListServices(
	ctx context.Context,
	page domain.PageRequest,
	deleted bool,
) (domain.Page[domain.Service], error) {
	page = page.Normalize()
	services, total, err := s.serviceStore.List(ctx, page, deleted)
	if err != nil {
		s.logger.Error("failed to list services", "error", err, "deleted", deleted)
		return domain.Page[domain.Service]{}, fmt.Errorf("failed to list services: %w", err)
	}
	return domain.NewPage(services, total, page), nil
}

// UpdateService replaces the name, description and active flag
func (s *CatalogServiceImpl) UpdateService(ctx context.Context, id int64, in ServiceInput) (*domain.Service, error) {
	svc, err := s.live(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	svc.Name = strings.TrimSpace(in.Name)
	svc.Description = strings.TrimSpace(in.Description)
	svc.Active = in.Active
	if err := svc.Validate(); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	svc.UpdatedAt = s.timeFunc()

	if err := s.serviceStore.Update(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	s.logger.Info("service updated", "service_id", id)
	return svc, nil
}

// SoftDeleteService marks a live service deleted
func (s *CatalogServiceImpl) SoftDeleteService(ctx context.Context, id int64) error {
	svc, err := s.live(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to soft delete service: %w", err)
	}

	svc.MarkDeleted(s.timeFunc())
	if err := s.serviceStore.Update(ctx, svc); err != nil {
		return fmt.Errorf("failed to soft delete service: %w", err)
	}

	s.logger.Info("service soft deleted", "service_id", id)
	return nil
}

// RestoreService reverses a soft delete. Returns domain.ErrNotDeleted when
// the service is live.
func (s *CatalogServiceImpl) RestoreService(ctx context.Context, id int64) error {
	svc, err := s.serviceStore.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to restore service: %w", err)
	}
	if err := svc.Restore(s.timeFunc()); err != nil {
		return fmt.Errorf("failed to restore service: %w", err)
	}
	if err := s.serviceStore.Update(ctx, svc); err != nil {
		return fmt.Errorf("failed to restore service: %w", err)
	}

	s.logger.Info("service restored", "service_id", id)
	return nil
}

// DeleteService permanently removes a service
func (s *CatalogServiceImpl) DeleteService(ctx context.Context, id int64) error {
	if err := s.serviceStore.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	s.logger.Info("service deleted", "service_id", id)
	return nil
}

func (s *CatalogServiceImpl) live(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := s.serviceStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc.Deleted {
		return nil, store.ErrServiceNotFound
	}
	return svc, nil
}
