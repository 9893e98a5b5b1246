package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/api/shared"
	"github.com/phrazzld/booking-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) SignIn(ctx context.Context, username, password string) (*auth.TokenPair, error) {
	args := m.Called(ctx, username, password)
	pair, _ := args.Get(0).(*auth.TokenPair)
	return pair, args.Error(1)
}

func (m *mockAuthenticator) RefreshTokens(ctx context.Context, presented string) (*auth.TokenPair, error) {
	args := m.Called(ctx, presented)
	pair, _ := args.Get(0).(*auth.TokenPair)
	return pair, args.Error(1)
}

func (m *mockAuthenticator) Logout(ctx context.Context, refreshToken, accessToken string) error {
	return m.Called(ctx, refreshToken, accessToken).Error(0)
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	pair := &auth.TokenPair{AccessToken: "access", RefreshToken: "refresh", UserID: userID}

	tests := []struct {
		name       string
		body       string
		setup      func(m *mockAuthenticator)
		wantStatus int
		wantError  string
	}{
		{
			name: "success",
			body: `{"username":"alice","password":"Secret123"}`,
			setup: func(m *mockAuthenticator) {
				m.On("SignIn", mock.Anything, "alice", "Secret123").Return(pair, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "wrong password",
			body: `{"username":"alice","password":"nope"}`,
			setup: func(m *mockAuthenticator) {
				m.On("SignIn", mock.Anything, "alice", "nope").Return(nil, auth.ErrInvalidCredentials)
			},
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid credentials",
		},
		{
			name: "missing field",
			body: `{"username":"alice"}`,
			setup: func(m *mockAuthenticator) {
				m.On("SignIn", mock.Anything, "alice", "").Return(nil, auth.ErrMissingCredentials)
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Missing credentials",
		},
		{
			name:       "malformed json",
			body:       `{"username":`,
			setup:      func(*mockAuthenticator) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			authn := &mockAuthenticator{}
			tt.setup(authn)
			handler := NewAuthHandler(authn)

			rec := httptest.NewRecorder()
			handler.Login(rec, jsonRequest(http.MethodPost, "/api/auth/login", tt.body))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				var body shared.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantError, body.Error)
			} else {
				assert.JSONEq(t,
					fmt.Sprintf(`{"accessToken":"access","refreshToken":"refresh","userId":%q}`, userID),
					rec.Body.String())
			}
			authn.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	t.Parallel()

	t.Run("rotates", func(t *testing.T) {
		t.Parallel()
		authn := &mockAuthenticator{}
		authn.On("RefreshTokens", mock.Anything, "old").
			Return(&auth.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil)

		rec := httptest.NewRecorder()
		NewAuthHandler(authn).RefreshToken(rec,
			jsonRequest(http.MethodPost, "/api/auth/refresh", `{"refreshToken":"old"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"accessToken":"a2","refreshToken":"r2"}`, rec.Body.String())
	})

	t.Run("missing token is unauthorized", func(t *testing.T) {
		t.Parallel()
		authn := &mockAuthenticator{}
		authn.On("RefreshTokens", mock.Anything, "").Return(nil, auth.ErrInvalidOrExpiredToken)

		rec := httptest.NewRecorder()
		NewAuthHandler(authn).RefreshToken(rec, jsonRequest(http.MethodPost, "/api/auth/refresh", `{}`))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "unknown refresh token", err: auth.ErrInvalidRefreshToken, wantStatus: http.StatusUnauthorized},
		{name: "malformed access token", err: auth.ErrMalformedAccessToken, wantStatus: http.StatusBadRequest},
		{name: "missing field", err: auth.ErrMissingCredentials, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			authn := &mockAuthenticator{}
			authn.On("Logout", mock.Anything, "refresh", "access").Return(tt.err)

			rec := httptest.NewRecorder()
			NewAuthHandler(authn).Logout(rec, jsonRequest(http.MethodPost, "/api/auth/logout",
				`{"refreshToken":"refresh","accessToken":"access"}`))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.err == nil {
				assert.Empty(t, rec.Body.String())
			}
			authn.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Profile(t *testing.T) {
	t.Parallel()

	handler := NewAuthHandler(&mockAuthenticator{})
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	rec := httptest.NewRecorder()
	handler.Profile(rec, req.WithContext(shared.WithUserID(req.Context(), userID)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"userId":%q}`, userID), rec.Body.String())

	rec = httptest.NewRecorder()
	handler.Profile(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
