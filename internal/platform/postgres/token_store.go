package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/store"
)

// PostgresRefreshTokenStore implements store.RefreshTokenStore. Rows are
// keyed by store.TokenDigest.
type PostgresRefreshTokenStore struct {
	db *sql.DB
}

// NewPostgresRefreshTokenStore creates a new PostgresRefreshTokenStore.
func NewPostgresRefreshTokenStore(db *sql.DB) *PostgresRefreshTokenStore {
	return &PostgresRefreshTokenStore{db: db}
}

var _ store.RefreshTokenStore = (*PostgresRefreshTokenStore)(nil)

// Save implements store.RefreshTokenStore.Save
func (s *PostgresRefreshTokenStore) Save(ctx context.Context, token domain.RefreshToken) error {
	return insertRefreshToken(ctx, s.db, token)
}

// Rotate implements store.RefreshTokenStore.Rotate. The DELETE ... RETURNING
// claims the row; a concurrent caller blocks on the row lock and then finds
// nothing to delete.
func (s *PostgresRefreshTokenStore) Rotate(
	ctx context.Context,
	presented string,
	replacement domain.RefreshToken,
	now time.Time,
) (domain.RefreshToken, error) {
	expired := false

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var (
			owner     uuid.UUID
			expiresAt time.Time
		)
		err := tx.QueryRowContext(ctx,
			`DELETE FROM refresh_tokens WHERE token_hash = $1 RETURNING user_id, expires_at`,
			store.TokenDigest(presented),
		).Scan(&owner, &expiresAt)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrRefreshTokenNotFound
		}
		if err != nil {
			return MapError(err)
		}

		// Commit the delete of a dead token but issue nothing.
		if !now.Before(expiresAt) {
			expired = true
			return nil
		}

		replacement.UserID = owner
		return insertRefreshToken(ctx, tx, replacement)
	})
	if err != nil {
		return domain.RefreshToken{}, err
	}
	if expired {
		return domain.RefreshToken{}, store.ErrRefreshTokenExpired
	}
	return replacement, nil
}

// Delete implements store.RefreshTokenStore.Delete
func (s *PostgresRefreshTokenStore) Delete(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE token_hash = $1`, store.TokenDigest(token))
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrRefreshTokenNotFound)
}

// PruneExpired implements store.RefreshTokenStore.PruneExpired
func (s *PostgresRefreshTokenStore) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	return execCount(ctx, s.db, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now)
}

func insertRefreshToken(ctx context.Context, db store.DBTX, token domain.RefreshToken) error {
	if token.Token == "" || token.UserID == uuid.Nil {
		return fmt.Errorf("%w: refresh token requires a value and an owner", store.ErrInvalidEntity)
	}
	createdAt := token.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)`,
		store.TokenDigest(token.Token), token.UserID, token.ExpiresAt, createdAt)
	return MapError(err)
}

// PostgresRevocationLedger implements store.RevocationLedger.
type PostgresRevocationLedger struct {
	db store.DBTX
}

// NewPostgresRevocationLedger creates a new PostgresRevocationLedger.
func NewPostgresRevocationLedger(db store.DBTX) *PostgresRevocationLedger {
	return &PostgresRevocationLedger{db: db}
}

var _ store.RevocationLedger = (*PostgresRevocationLedger)(nil)

// Revoke implements store.RevocationLedger.Revoke. Revoking twice keeps the
// later expiry.
func (l *PostgresRevocationLedger) Revoke(ctx context.Context, record domain.RevokedToken) error {
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO revoked_tokens (token_hash, expires_at, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash)
		DO UPDATE SET expires_at = GREATEST(revoked_tokens.expires_at, EXCLUDED.expires_at)`,
		store.TokenDigest(record.Token), record.ExpiresAt, createdAt)
	return MapError(err)
}

// IsRevoked implements store.RevocationLedger.IsRevoked
func (l *PostgresRevocationLedger) IsRevoked(ctx context.Context, token string, now time.Time) (bool, error) {
	var revoked bool
	err := l.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM revoked_tokens WHERE token_hash = $1 AND expires_at >= $2
		)`,
		store.TokenDigest(token), now,
	).Scan(&revoked)
	if err != nil {
		return false, MapError(err)
	}
	return revoked, nil
}

// PruneExpired implements store.RevocationLedger.PruneExpired
func (l *PostgresRevocationLedger) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	return execCount(ctx, l.db, `DELETE FROM revoked_tokens WHERE expires_at < $1`, now)
}

func execCount(ctx context.Context, db store.DBTX, query string, args ...any) (int64, error) {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, MapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
