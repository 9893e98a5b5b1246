package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/store"
)

// RoleService manages roles and their permission sets.
type RoleService interface {
	CreateRole(ctx context.Context, name, description string, permissions domain.PermissionSet) (*domain.Role, error)
	GetRole(ctx context.Context, id uuid.UUID) (*domain.Role, error)
	GetRoleByName(ctx context.Context, name string) (*domain.Role, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
}

// RoleServiceImpl implements the RoleService interface
type RoleServiceImpl struct {
	roleStore store.RoleStore
	logger    *slog.Logger
}

// NewRoleService creates a new RoleService
func NewRoleService(roleStore store.RoleStore, logger *slog.Logger) RoleService {
	return &RoleServiceImpl{
		roleStore: roleStore,
		logger:    logger.With("component", "role_service"),
	}
}

// CreateRole validates and stores a role. Permission sets naming a resource
// more than once are rejected. A taken name yields store.ErrRoleNameExists.
func (s *RoleServiceImpl) CreateRole(
	ctx context.Context,
	name, description string,
	permissions domain.PermissionSet,
) (*domain.Role, error) {
	role, err := domain.NewRole(name, description, permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	if err := s.roleStore.Create(ctx, role); err != nil {
		if store.IsDuplicateError(err) {
			s.logger.Debug("attempted to create duplicate role", "name", role.Name)
		} else {
			s.logger.Error("failed to save role", "error", err, "name", role.Name)
		}
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	s.logger.Info("role created", "role_id", role.ID, "name", role.Name)
	return role, nil
}

// GetRole retrieves a role by ID
func (s *RoleServiceImpl) GetRole(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	role, err := s.roleStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve role: %w", err)
	}
	return role, nil
}

// GetRoleByName retrieves a role by its unique name
func (s *RoleServiceImpl) GetRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	role, err := s.roleStore.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve role: %w", err)
	}
	return role, nil
}

// ListRoles returns every role ordered by name
func (s *RoleServiceImpl) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.roleStore.List(ctx)
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	if roles == nil {
		roles = []domain.Role{}
	}
	return roles, nil
}
