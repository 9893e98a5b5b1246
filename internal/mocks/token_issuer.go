package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/service/auth"
)

// MockTokenIssuer is a mock implementation of auth.TokenIssuer for testing.
type MockTokenIssuer struct {
	// Function fields for custom behaviors
	IssueAccessTokenFn  func(ctx context.Context, userID uuid.UUID) (string, time.Time, error)
	IssueRefreshTokenFn func(ctx context.Context, userID uuid.UUID) (domain.RefreshToken, error)
	VerifyAccessTokenFn func(ctx context.Context, token string) (*auth.Claims, error)
	DecodeExpiryFn      func(token string) (time.Time, error)

	// Fixed fields for simple cases
	Token       string       // Default access token to return
	Claims      *auth.Claims // Default claims to return
	VerifyError error        // Default error for verification
}

var _ auth.TokenIssuer = (*MockTokenIssuer)(nil)

// NewMockTokenIssuer creates a mock that accepts any token as belonging to userID.
func NewMockTokenIssuer(userID uuid.UUID) *MockTokenIssuer {
	now := time.Now()
	return &MockTokenIssuer{
		Token: "mock-access-token",
		Claims: &auth.Claims{
			UserID:    userID,
			IssuedAt:  now,
			ExpiresAt: now.Add(time.Hour),
			ID:        uuid.NewString(),
		},
	}
}

// IssueAccessToken implements the auth.TokenIssuer interface
func (m *MockTokenIssuer) IssueAccessToken(ctx context.Context, userID uuid.UUID) (string, time.Time, error) {
	if m.IssueAccessTokenFn != nil {
		return m.IssueAccessTokenFn(ctx, userID)
	}
	return m.Token, time.Now().Add(time.Hour), nil
}

// IssueRefreshToken implements the auth.TokenIssuer interface
func (m *MockTokenIssuer) IssueRefreshToken(ctx context.Context, userID uuid.UUID) (domain.RefreshToken, error) {
	if m.IssueRefreshTokenFn != nil {
		return m.IssueRefreshTokenFn(ctx, userID)
	}
	now := time.Now()
	return domain.RefreshToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(24 * time.Hour),
		CreatedAt: now,
	}, nil
}

// VerifyAccessToken implements the auth.TokenIssuer interface
func (m *MockTokenIssuer) VerifyAccessToken(ctx context.Context, token string) (*auth.Claims, error) {
	if m.VerifyAccessTokenFn != nil {
		return m.VerifyAccessTokenFn(ctx, token)
	}
	if m.VerifyError != nil {
		return nil, m.VerifyError
	}
	return m.Claims, nil
}

// DecodeExpiry implements the auth.TokenIssuer interface
func (m *MockTokenIssuer) DecodeExpiry(token string) (time.Time, error) {
	if m.DecodeExpiryFn != nil {
		return m.DecodeExpiryFn(token)
	}
	if m.Claims != nil {
		return m.Claims.ExpiresAt, nil
	}
	return time.Now().Add(time.Hour), nil
}
