package mocks

import (
	"context"

	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockServiceStore is a mock of store.ServiceStore for use with testify/mock
type MockServiceStore struct {
	mock.Mock
}

var _ store.ServiceStore = (*MockServiceStore)(nil)

// Create is a mock implementation of store.ServiceStore.Create
func (m *MockServiceStore) Create(ctx context.Context, svc *domain.Service) error {
	args := m.Called(ctx, svc)
	return args.Error(0)
}

// GetByID is a mock implementation of store.ServiceStore.GetByID
func (m *MockServiceStore) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if svc, ok := args.Get(0).(*domain.Service); ok {
		return svc, args.Error(1)
	}
	return nil, args.Error(1)
}

// List is a mock implementation of store.ServiceStore.List
func (m *MockServiceStore) List(
	ctx context.Context,
	page domain.PageRequest,
	deleted bool,
) ([]domain.Service, int, error) {
	args := m.Called(ctx, page, deleted)
	services, _ := args.Get(0).([]domain.Service)
	return services, args.Int(1), args.Error(2)
}

// Update is a mock implementation of store.ServiceStore.Update
func (m *MockServiceStore) Update(ctx context.Context, svc *domain.Service) error {
	args := m.Called(ctx, svc)
	return args.Error(0)
}

// Delete is a mock implementation of store.ServiceStore.Delete
func (m *MockServiceStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
