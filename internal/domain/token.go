package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is an opaque, server-side credential that can be exchanged
// exactly once for a new token pair.
type RefreshToken struct {
	Token     string    `json:"-"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the token is past its expiry at now.
func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// RevokedToken marks an access token as unusable until ExpiresAt, after
// which the record is dead and may be pruned.
type RevokedToken struct {
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
