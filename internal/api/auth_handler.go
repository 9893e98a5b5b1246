package api

import (
	"context"
	"net/http"

	"github.com/phrazzld/booking-api/internal/api/shared"
	"github.com/phrazzld/booking-api/internal/service/auth"
)

// Authenticator is the part of the auth service the handlers drive.
type Authenticator interface {
	SignIn(ctx context.Context, username, password string) (*auth.TokenPair, error)
	RefreshTokens(ctx context.Context, presented string) (*auth.TokenPair, error)
	Logout(ctx context.Context, refreshToken, accessToken string) error
}

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(authenticator Authenticator) *AuthHandler {
	return &AuthHandler{auth: authenticator}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, errInvalidRequestBody)
		return
	}

	pair, err := h.auth.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserID:       pair.UserID,
	})
}

// RefreshToken handles POST /auth/refresh. A missing token is treated like
// an unknown one.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, errInvalidRequestBody)
		return
	}

	pair, err := h.auth.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RefreshTokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout handles POST /auth/logout and answers 200 with an empty body.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, errInvalidRequestBody)
		return
	}

	if err := h.auth.Logout(r.Context(), req.RefreshToken, req.AccessToken); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithStatus(w, http.StatusOK)
}

// Profile handles GET /auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.GetUserID(r.Context())
	if !ok {
		HandleAPIError(w, r, auth.ErrUnauthenticated)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ProfileResponse{UserID: userID})
}
