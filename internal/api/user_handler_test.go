package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/service"
	"github.com/phrazzld/booking-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) CreateUser(ctx context.Context, in service.CreateUserInput) (*domain.User, error) {
	args := m.Called(ctx, in)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserService) ListUsers(
	ctx context.Context,
	page domain.PageRequest,
	deleted bool,
) (domain.Page[domain.User], error) {
	args := m.Called(ctx, page, deleted)
	return args.Get(0).(domain.Page[domain.User]), args.Error(1)
}

func (m *mockUserService) UpdateUser(
	ctx context.Context,
	userID uuid.UUID,
	in service.UpdateUserInput,
) (*domain.User, error) {
	args := m.Called(ctx, userID, in)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserService) SoftDeleteUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockUserService) RestoreUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockUserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func testUser(roleID uuid.UUID) *domain.User {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.User{
		ID:             uuid.New(),
		Username:       "alice",
		Email:          "alice@example.com",
		HashedPassword: "$2a$10$secret",
		RoleID:         roleID,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestUserHandler_Create(t *testing.T) {
	t.Parallel()

	roleID := uuid.New()
	created := testUser(roleID)

	t.Run("created without exposing the hash", func(t *testing.T) {
		t.Parallel()

		users := &mockUserService{}
		users.On("CreateUser", mock.Anything, service.CreateUserInput{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "Secret123",
			RoleID:   roleID,
			Active:   true,
		}).Return(created, nil)

		rec := httptest.NewRecorder()
		NewUserHandler(users).Create(rec, jsonRequest(http.MethodPost, "/api/users",
			`{"username":"alice","email":"alice@example.com","password":"Secret123","roleId":"`+roleID.String()+`"}`))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.NotContains(t, rec.Body.String(), "secret")
		var resp UserResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, created.ID, resp.ID)
		assert.Equal(t, roleID, resp.RoleID)
		users.AssertExpectations(t)
	})

	t.Run("explicit inactive", func(t *testing.T) {
		t.Parallel()

		users := &mockUserService{}
		users.On("CreateUser", mock.Anything, mock.MatchedBy(func(in service.CreateUserInput) bool {
			return !in.Active
		})).Return(created, nil)

		rec := httptest.NewRecorder()
		NewUserHandler(users).Create(rec, jsonRequest(http.MethodPost, "/api/users",
			`{"username":"alice","email":"alice@example.com","password":"Secret123","roleId":"`+
				roleID.String()+`","active":false}`))

		assert.Equal(t, http.StatusCreated, rec.Code)
		users.AssertExpectations(t)
	})

	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{
			name:       "invalid email",
			body:       `{"username":"alice","email":"nope","password":"Secret123","roleId":"` + roleID.String() + `"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad role id",
			body:       `{"username":"alice","email":"alice@example.com","password":"Secret123","roleId":"x"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "username taken",
			body:       `{"username":"alice","email":"alice@example.com","password":"Secret123","roleId":"` + roleID.String() + `"}`,
			serviceErr: store.ErrUsernameExists,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unknown role",
			body:       `{"username":"alice","email":"alice@example.com","password":"Secret123","roleId":"` + roleID.String() + `"}`,
			serviceErr: service.ErrUnknownRole,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			users := &mockUserService{}
			if tt.serviceErr != nil {
				users.On("CreateUser", mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			}

			rec := httptest.NewRecorder()
			NewUserHandler(users).Create(rec, jsonRequest(http.MethodPost, "/api/users", tt.body))

			assert.Equal(t, tt.wantStatus, rec.Code)
			users.AssertExpectations(t)
		})
	}
}

func TestUserHandler_List(t *testing.T) {
	t.Parallel()

	users := &mockUserService{}
	page := domain.NewPage([]domain.User{*testUser(uuid.New())}, 11, domain.PageRequest{Page: 2, Limit: 10})
	users.On("ListUsers", mock.Anything, domain.PageRequest{Page: 2, Limit: 10}, false).Return(page, nil)
	empty := domain.NewPage[domain.User](nil, 0, domain.PageRequest{Page: 1, Limit: domain.DefaultPageSize})
	users.On("ListUsers", mock.Anything, domain.PageRequest{Page: 1, Limit: domain.DefaultPageSize}, true).
		Return(empty, nil)

	handler := NewUserHandler(users)

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/users?page=2&limit=10", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp domain.Page[UserResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, 11, resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.TotalPages)

	rec = httptest.NewRecorder()
	handler.Archive(rec, httptest.NewRequest(http.MethodGet, "/api/users/archive", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)

	rec = httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/users?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	users.AssertExpectations(t)
}

func TestUserHandler_GetAndUpdate(t *testing.T) {
	t.Parallel()

	user := testUser(uuid.New())
	missing := uuid.New()
	newRole := uuid.New()
	email := "new@example.com"

	users := &mockUserService{}
	users.On("GetUser", mock.Anything, user.ID).Return(user, nil)
	users.On("GetUser", mock.Anything, missing).Return(nil, store.ErrUserNotFound)
	users.On("UpdateUser", mock.Anything, user.ID, service.UpdateUserInput{Email: &email, RoleID: &newRole}).
		Return(user, nil)

	handler := NewUserHandler(users)

	rec := httptest.NewRecorder()
	handler.Get(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", user.ID.String()))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.Get(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", missing.String()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")

	rec = httptest.NewRecorder()
	handler.Get(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "bogus"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req := jsonRequest(http.MethodPut, "/", `{"email":"new@example.com","roleId":"`+newRole.String()+`"}`)
	handler.Update(rec, withURLParam(req, "id", user.ID.String()))
	assert.Equal(t, http.StatusOK, rec.Code)

	users.AssertExpectations(t)
}

func TestUserHandler_Lifecycle(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	tests := []struct {
		name       string
		method     string
		call       func(h *UserHandler) http.HandlerFunc
		err        error
		wantStatus int
	}{
		{"soft delete", "SoftDeleteUser", func(h *UserHandler) http.HandlerFunc { return h.SoftDelete }, nil, http.StatusNoContent},
		{"soft delete missing", "SoftDeleteUser", func(h *UserHandler) http.HandlerFunc { return h.SoftDelete }, store.ErrUserNotFound, http.StatusNotFound},
		{"restore", "RestoreUser", func(h *UserHandler) http.HandlerFunc { return h.Restore }, nil, http.StatusNoContent},
		{"restore live user", "RestoreUser", func(h *UserHandler) http.HandlerFunc { return h.Restore }, domain.ErrNotDeleted, http.StatusConflict},
		{"hard delete", "DeleteUser", func(h *UserHandler) http.HandlerFunc { return h.Delete }, nil, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			users := &mockUserService{}
			users.On(tt.method, mock.Anything, id).Return(tt.err)

			rec := httptest.NewRecorder()
			req := withURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "id", id.String())
			tt.call(NewUserHandler(users))(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			users.AssertExpectations(t)
		})
	}
}
