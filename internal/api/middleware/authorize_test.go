package middleware_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/api/middleware"
	"github.com/phrazzld/booking-api/internal/api/shared"
	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
)

type checkerFunc func(ctx context.Context, userID uuid.UUID, required []domain.Permission) error

func (f checkerFunc) Check(ctx context.Context, userID uuid.UUID, required []domain.Permission) error {
	return f(ctx, userID, required)
}

func TestAuthorizeMiddleware_Require(t *testing.T) {
	t.Parallel()

	readUsers := domain.NewPermission(domain.ResourceUsers, domain.ActionRead)

	tests := []struct {
		name           string
		authenticated  bool
		required       []domain.Permission
		checkErr       error
		expectedStatus int
		expectCheck    bool
	}{
		{
			name:           "permission held",
			authenticated:  true,
			required:       []domain.Permission{readUsers},
			expectedStatus: http.StatusOK,
			expectCheck:    true,
		},
		{
			name:           "permission missing",
			authenticated:  true,
			required:       []domain.Permission{readUsers},
			checkErr:       fmt.Errorf("%w: missing users:[read]", auth.ErrForbidden),
			expectedStatus: http.StatusForbidden,
			expectCheck:    true,
		},
		{
			name:           "lookup failure fails closed",
			authenticated:  true,
			required:       []domain.Permission{readUsers},
			checkErr:       errors.New("connection reset"),
			expectedStatus: http.StatusForbidden,
			expectCheck:    true,
		},
		{
			name:           "no declaration admits any authenticated caller",
			authenticated:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unauthenticated",
			required:       []domain.Permission{readUsers},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			userID := uuid.New()
			checked := false
			checker := checkerFunc(func(_ context.Context, got uuid.UUID, required []domain.Permission) error {
				checked = true
				assert.Equal(t, userID, got)
				assert.Equal(t, tt.required, required)
				return tt.checkErr
			})
			mw := middleware.NewAuthorizeMiddleware(checker)

			reached := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				reached = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			if tt.authenticated {
				req = req.WithContext(shared.WithUserID(req.Context(), userID))
			}
			rec := httptest.NewRecorder()
			mw.Require(tt.required...)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedStatus == http.StatusOK, reached)
			assert.Equal(t, tt.expectCheck, checked)
		})
	}
}
