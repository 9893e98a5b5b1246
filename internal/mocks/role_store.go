package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockRoleStore is a mock of store.RoleStore for use with testify/mock
type MockRoleStore struct {
	mock.Mock
}

var _ store.RoleStore = (*MockRoleStore)(nil)

// Create is a mock implementation of store.RoleStore.Create
func (m *MockRoleStore) Create(ctx context.Context, role *domain.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

// GetByID is a mock implementation of store.RoleStore.GetByID
func (m *MockRoleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	args := m.Called(ctx, id)
	if role, ok := args.Get(0).(*domain.Role); ok {
		return role, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetByName is a mock implementation of store.RoleStore.GetByName
func (m *MockRoleStore) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	args := m.Called(ctx, name)
	if role, ok := args.Get(0).(*domain.Role); ok {
		return role, args.Error(1)
	}
	return nil, args.Error(1)
}

// List is a mock implementation of store.RoleStore.List
func (m *MockRoleStore) List(ctx context.Context) ([]domain.Role, error) {
	args := m.Called(ctx)
	if roles, ok := args.Get(0).([]domain.Role); ok {
		return roles, args.Error(1)
	}
	return nil, args.Error(1)
}
