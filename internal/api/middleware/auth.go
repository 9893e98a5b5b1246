package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/booking-api/internal/api/shared"
	"github.com/phrazzld/booking-api/internal/platform/logger"
	"github.com/phrazzld/booking-api/internal/redact"
	"github.com/phrazzld/booking-api/internal/service/auth"
)

// unauthenticatedMessage is the single response body for every
// authentication failure, so callers cannot tell the causes apart.
const unauthenticatedMessage = "Unauthenticated"

var errRevoked = errors.New("access token revoked")

// TokenVerifier checks an access token's signature and expiry.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*auth.Claims, error)
}

// RevocationChecker reports whether an access token was revoked at logout.
type RevocationChecker interface {
	IsAccessTokenRevoked(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware authenticates requests by bearer access token.
type AuthMiddleware struct {
	verifier    TokenVerifier
	revocations RevocationChecker
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(verifier TokenVerifier, revocations RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:    verifier,
		revocations: revocations,
	}
}

// Authenticate verifies the bearer token, rejects revoked tokens and puts
// the user ID in the request context. A missing header, malformed scheme,
// bad signature, expiry, revocation, or failed revocation lookup all answer
// 401 with the same body.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			reject(w, r, auth.ErrUnauthenticated)
			return
		}

		claims, err := m.verifier.VerifyAccessToken(r.Context(), token)
		if err != nil {
			reject(w, r, err)
			return
		}

		revoked, err := m.revocations.IsAccessTokenRevoked(r.Context(), token)
		if err != nil {
			logger.FromContext(r.Context()).Error("revocation lookup failed",
				"error", redact.Error(err),
				"user_id", claims.UserID)
			reject(w, r, err)
			return
		}
		if revoked {
			reject(w, r, errRevoked)
			return
		}

		ctx := shared.WithUserID(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func reject(w http.ResponseWriter, r *http.Request, cause error) {
	shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, unauthenticatedMessage, cause)
}
