package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/phrazzld/booking-api/internal/domain"
)

// RefreshTokenStore holds outstanding refresh tokens. Implementations key
// records by TokenDigest so raw token values never reach storage.
type RefreshTokenStore interface {
	// Save persists a newly issued refresh token.
	Save(ctx context.Context, token domain.RefreshToken) error

	// Rotate atomically consumes presented and stores replacement bound to
	// the consumed token's owner. Of several concurrent calls with the same
	// presented token at most one succeeds; the rest get
	// ErrRefreshTokenNotFound. A token expired at now yields
	// ErrRefreshTokenExpired. The stored replacement is returned.
	Rotate(
		ctx context.Context,
		presented string,
		replacement domain.RefreshToken,
		now time.Time,
	) (domain.RefreshToken, error)

	// Delete removes a refresh token. Returns ErrRefreshTokenNotFound if
	// nothing was deleted.
	Delete(ctx context.Context, token string) error

	// PruneExpired removes tokens expired at now and reports how many.
	PruneExpired(ctx context.Context, now time.Time) (int64, error)
}

// RevocationLedger records access tokens that must be rejected before their
// natural expiry.
type RevocationLedger interface {
	// Revoke records the token. Revoking an already revoked token is not an error.
	Revoke(ctx context.Context, record domain.RevokedToken) error

	// IsRevoked reports whether token has a record that has not expired at now.
	IsRevoked(ctx context.Context, token string, now time.Time) (bool, error)

	// PruneExpired removes records expired at now and reports how many.
	PruneExpired(ctx context.Context, now time.Time) (int64, error)
}

// TokenDigest returns the hex SHA-256 of a token value, the storage key for
// refresh tokens and revocation records.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
