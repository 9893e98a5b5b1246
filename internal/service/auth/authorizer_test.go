package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/mocks"
	"github.com/phrazzld/booking-api/internal/service/auth"
	"github.com/phrazzld/booking-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func userWithRole(roleID uuid.UUID) *domain.User {
	return &domain.User{ID: uuid.New(), Username: "user-" + roleID.String()[:8], RoleID: roleID, Active: true}
}

func TestAuthorizer_Check(t *testing.T) {
	t.Parallel()

	usersRead := []domain.Permission{domain.NewPermission(domain.ResourceUsers, domain.ActionRead)}

	readWrite := &domain.Role{
		ID:          uuid.New(),
		Name:        "editor",
		Permissions: domain.PermissionSet{domain.NewPermission(domain.ResourceUsers, domain.ActionRead, domain.ActionWrite)},
	}
	writeOnly := &domain.Role{
		ID:          uuid.New(),
		Name:        "writer",
		Permissions: domain.PermissionSet{domain.NewPermission(domain.ResourceUsers, domain.ActionWrite)},
	}
	brokenRoleID := uuid.New()

	editor := userWithRole(readWrite.ID)
	writer := userWithRole(writeOnly.ID)
	roleless := userWithRole(uuid.Nil)
	orphan := userWithRole(brokenRoleID)

	deleted := userWithRole(readWrite.ID)
	deleted.Deleted = true
	deleted.Active = false

	inactive := userWithRole(readWrite.ID)
	inactive.Active = false

	tests := []struct {
		name      string
		userID    uuid.UUID
		required  []domain.Permission
		wantErr   bool
		wantCause error
	}{
		{name: "superset of actions allows", userID: editor.ID, required: usersRead},
		{name: "missing action denies", userID: writer.ID, required: usersRead, wantErr: true},
		{name: "no requirements allow unknown user", userID: uuid.New()},
		{name: "unknown user denies", userID: uuid.New(), required: usersRead, wantErr: true, wantCause: store.ErrUserNotFound},
		{name: "user without role denies", userID: roleless.ID, required: usersRead, wantErr: true, wantCause: store.ErrRoleNotFound},
		{name: "role lookup failure denies", userID: orphan.ID, required: usersRead, wantErr: true, wantCause: store.ErrRoleNotFound},
		{name: "deleted user denies", userID: deleted.ID, required: usersRead, wantErr: true, wantCause: store.ErrUserNotFound},
		{name: "inactive user denies", userID: inactive.ID, required: usersRead, wantErr: true, wantCause: store.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			roles := &mocks.MockRoleStore{}
			roles.On("GetByID", mock.Anything, readWrite.ID).Return(readWrite, nil).Maybe()
			roles.On("GetByID", mock.Anything, writeOnly.ID).Return(writeOnly, nil).Maybe()
			roles.On("GetByID", mock.Anything, brokenRoleID).Return(nil, store.ErrRoleNotFound).Maybe()

			authorizer := auth.NewAuthorizer(
				mocks.NewMockUserStore(editor, writer, roleless, orphan, deleted, inactive),
				roles, 16, time.Minute, discardLogger(),
			)

			err := authorizer.Check(context.Background(), tt.userID, tt.required)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, auth.ErrForbidden)
			if tt.wantCause != nil {
				assert.ErrorIs(t, err, tt.wantCause)
			}
		})
	}
}

func TestAuthorizer_CachesRolePermissions(t *testing.T) {
	t.Parallel()

	role := &domain.Role{
		ID:          uuid.New(),
		Name:        "viewer",
		Permissions: domain.PermissionSet{domain.NewPermission(domain.ResourceServices, domain.ActionRead)},
	}
	first, second := userWithRole(role.ID), userWithRole(role.ID)

	roles := &mocks.MockRoleStore{}
	roles.On("GetByID", mock.Anything, role.ID).Return(role, nil)

	authorizer := auth.NewAuthorizer(mocks.NewMockUserStore(first, second), roles, 16, time.Minute, discardLogger())
	required := []domain.Permission{domain.NewPermission(domain.ResourceServices, domain.ActionRead)}

	assert.NoError(t, authorizer.Check(context.Background(), first.ID, required))
	assert.NoError(t, authorizer.Check(context.Background(), second.ID, required))
	roles.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestAuthorizer_NoCache(t *testing.T) {
	t.Parallel()

	role := &domain.Role{
		ID:          uuid.New(),
		Name:        "viewer",
		Permissions: domain.PermissionSet{domain.NewPermission(domain.ResourceRoles, domain.ActionRead)},
	}
	user := userWithRole(role.ID)

	roles := &mocks.MockRoleStore{}
	roles.On("GetByID", mock.Anything, role.ID).Return(role, nil)

	authorizer := auth.NewAuthorizer(mocks.NewMockUserStore(user), roles, 0, 0, discardLogger())
	required := []domain.Permission{domain.NewPermission(domain.ResourceRoles, domain.ActionRead)}

	for range 3 {
		assert.NoError(t, authorizer.Check(context.Background(), user.ID, required))
	}
	roles.AssertNumberOfCalls(t, "GetByID", 3)
}

func TestAuthorizer_UserLookupError(t *testing.T) {
	t.Parallel()

	lookupErr := errors.New("connection reset")
	users := mocks.NewMockUserStore()
	users.GetByIDFn = func(context.Context, uuid.UUID) (*domain.User, error) {
		return nil, lookupErr
	}

	authorizer := auth.NewAuthorizer(users, &mocks.MockRoleStore{}, 16, time.Minute, discardLogger())
	err := authorizer.Check(context.Background(), uuid.New(),
		[]domain.Permission{domain.NewPermission(domain.ResourceUsers, domain.ActionRead)})

	assert.ErrorIs(t, err, auth.ErrForbidden)
	assert.ErrorIs(t, err, lookupErr)
}
