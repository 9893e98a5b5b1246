package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/api/shared"
	"github.com/phrazzld/booking-api/internal/domain"
)

// PermissionChecker decides whether a user holds the required permissions.
type PermissionChecker interface {
	Check(ctx context.Context, userID uuid.UUID, required []domain.Permission) error
}

// AuthorizeMiddleware enforces per-route permission declarations. It must
// run after AuthMiddleware.Authenticate.
type AuthorizeMiddleware struct {
	checker PermissionChecker
}

// NewAuthorizeMiddleware creates a new AuthorizeMiddleware.
func NewAuthorizeMiddleware(checker PermissionChecker) *AuthorizeMiddleware {
	return &AuthorizeMiddleware{checker: checker}
}

// Require returns middleware admitting only callers whose role covers every
// given permission. With no permissions every authenticated caller passes.
// Any check failure, including lookup errors, answers 403.
func (m *AuthorizeMiddleware) Require(required ...domain.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := shared.GetUserID(r.Context())
			if !ok {
				shared.RespondWithError(w, r, http.StatusUnauthorized, unauthenticatedMessage)
				return
			}

			if len(required) > 0 {
				if err := m.checker.Check(r.Context(), userID, required); err != nil {
					shared.RespondWithErrorAndLog(w, r, http.StatusForbidden, "Forbidden", err,
						shared.WithElevatedLogLevel())
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
