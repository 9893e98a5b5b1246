package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/mocks"
	"github.com/phrazzld/booking-api/internal/service"
	"github.com/phrazzld/booking-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRoleService_CreateRole(t *testing.T) {
	t.Parallel()

	perms := domain.PermissionSet{domain.NewPermission(domain.ResourceServices, domain.ActionRead)}

	tests := []struct {
		name     string
		perms    domain.PermissionSet
		storeErr error
		wantErr  error
	}{
		{name: "created", perms: perms},
		{name: "name taken", perms: perms, storeErr: store.ErrRoleNameExists, wantErr: store.ErrDuplicate},
		{
			name: "duplicate resource rejected",
			perms: domain.PermissionSet{
				domain.NewPermission(domain.ResourceServices, domain.ActionRead),
				domain.NewPermission(domain.ResourceServices, domain.ActionWrite),
			},
			wantErr: domain.ErrDuplicateResource,
		},
		{name: "empty permissions", perms: domain.PermissionSet{}, wantErr: domain.ErrValidation},
		{name: "store failure", perms: perms, storeErr: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			roles := new(mocks.MockRoleStore)
			roles.On("Create", mock.Anything, mock.AnythingOfType("*domain.Role")).Return(tt.storeErr).Maybe()
			svc := service.NewRoleService(roles, testLogger())

			role, err := svc.CreateRole(context.Background(), "reception", "Front desk", tt.perms)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, role)
			case tt.storeErr != nil:
				assert.ErrorIs(t, err, tt.storeErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, "reception", role.Name)
				assert.NotEqual(t, uuid.Nil, role.ID)
				roles.AssertExpectations(t)
			}
		})
	}
}

func TestRoleService_Lookups(t *testing.T) {
	t.Parallel()

	role := &domain.Role{ID: uuid.New(), Name: "admin"}
	roles := new(mocks.MockRoleStore)
	roles.On("GetByID", mock.Anything, role.ID).Return(role, nil)
	roles.On("GetByID", mock.Anything, mock.Anything).Return(nil, store.ErrRoleNotFound)
	roles.On("GetByName", mock.Anything, "admin").Return(role, nil)
	roles.On("GetByName", mock.Anything, mock.Anything).Return(nil, store.ErrRoleNotFound)
	roles.On("List", mock.Anything).Return(nil, nil)

	svc := service.NewRoleService(roles, testLogger())
	ctx := context.Background()

	got, err := svc.GetRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, role, got)

	_, err = svc.GetRole(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrRoleNotFound)

	got, err = svc.GetRoleByName(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, role, got)

	_, err = svc.GetRoleByName(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
