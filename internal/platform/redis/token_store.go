package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/store"
)

// minRevocationTTL keeps records for already expired tokens visible briefly
// instead of passing a non-positive TTL to Redis.
const minRevocationTTL = time.Second

// rotateScript swaps KEYS[1] for KEYS[2] only if KEYS[1] still holds the
// value the caller read. Both writes apply or neither does.
var rotateScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
	return 0
end
redis.call("DEL", KEYS[1])
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

// revokeScript stores the expiry in KEYS[1] unless a later one is already
// recorded.
var revokeScript = goredis.NewScript(`
local current = redis.call("GET", KEYS[1])
if current and tonumber(current) >= tonumber(ARGV[1]) then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

type refreshRecord struct {
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// RefreshTokenStore implements store.RefreshTokenStore on Redis. Each token
// is one key named by its digest, expiring with the token.
type RefreshTokenStore struct {
	client *goredis.Client
	prefix string
}

var _ store.RefreshTokenStore = (*RefreshTokenStore)(nil)

// NewRefreshTokenStore creates a RefreshTokenStore whose keys start with prefix.
func NewRefreshTokenStore(client *goredis.Client, prefix string) *RefreshTokenStore {
	return &RefreshTokenStore{client: client, prefix: prefix}
}

func (s *RefreshTokenStore) key(token string) string {
	return s.prefix + "refresh:" + store.TokenDigest(token)
}

// Save implements store.RefreshTokenStore.Save. Tokens already expired are
// not stored.
func (s *RefreshTokenStore) Save(ctx context.Context, token domain.RefreshToken) error {
	data, ttl, err := encodeRefreshToken(token, time.Now())
	if err != nil || ttl <= 0 {
		return err
	}
	if err := s.client.Set(ctx, s.key(token.Token), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func encodeRefreshToken(token domain.RefreshToken, now time.Time) ([]byte, time.Duration, error) {
	if token.Token == "" || token.UserID == uuid.Nil {
		return nil, 0, fmt.Errorf("%w: refresh token requires a value and an owner", store.ErrInvalidEntity)
	}
	ttl := token.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return nil, 0, nil
	}

	data, err := json.Marshal(refreshRecord{
		UserID:    token.UserID,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal refresh token: %w", err)
	}
	return data, ttl, nil
}

// Rotate implements store.RefreshTokenStore.Rotate. The presented record is
// read, then rotateScript deletes it and stores the replacement in one step
// provided nobody consumed it in between.
func (s *RefreshTokenStore) Rotate(
	ctx context.Context,
	presented string,
	replacement domain.RefreshToken,
	now time.Time,
) (domain.RefreshToken, error) {
	key := s.key(presented)
	data, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return domain.RefreshToken{}, store.ErrRefreshTokenNotFound
	}
	if err != nil {
		return domain.RefreshToken{}, fmt.Errorf("redis get failed: %w", err)
	}

	var current refreshRecord
	if err := json.Unmarshal([]byte(data), &current); err != nil {
		return domain.RefreshToken{}, fmt.Errorf("failed to unmarshal refresh token: %w", err)
	}
	if !now.Before(current.ExpiresAt) {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return domain.RefreshToken{}, fmt.Errorf("redis del failed: %w", err)
		}
		return domain.RefreshToken{}, store.ErrRefreshTokenExpired
	}

	replacement.UserID = current.UserID
	next, ttl, err := encodeRefreshToken(replacement, now)
	if err != nil {
		return domain.RefreshToken{}, err
	}
	if ttl <= 0 {
		return domain.RefreshToken{}, fmt.Errorf("%w: replacement refresh token already expired", store.ErrInvalidEntity)
	}

	swapped, err := rotateScript.Run(ctx, s.client,
		[]string{key, s.key(replacement.Token)},
		data, next, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return domain.RefreshToken{}, fmt.Errorf("redis rotate failed: %w", err)
	}
	if swapped == 0 {
		return domain.RefreshToken{}, store.ErrRefreshTokenNotFound
	}
	return replacement, nil
}

// Delete implements store.RefreshTokenStore.Delete
func (s *RefreshTokenStore) Delete(ctx context.Context, token string) error {
	n, err := s.client.Del(ctx, s.key(token)).Result()
	if err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	if n == 0 {
		return store.ErrRefreshTokenNotFound
	}
	return nil
}

// PruneExpired implements store.RefreshTokenStore.PruneExpired. Redis
// expires keys itself.
func (s *RefreshTokenStore) PruneExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// RevocationLedger implements store.RevocationLedger on Redis.
type RevocationLedger struct {
	client *goredis.Client
	prefix string
}

var _ store.RevocationLedger = (*RevocationLedger)(nil)

// NewRevocationLedger creates a RevocationLedger whose keys start with prefix.
func NewRevocationLedger(client *goredis.Client, prefix string) *RevocationLedger {
	return &RevocationLedger{client: client, prefix: prefix}
}

func (l *RevocationLedger) key(token string) string {
	return l.prefix + "revoked:" + store.TokenDigest(token)
}

// Revoke implements store.RevocationLedger.Revoke. The value is the expiry
// in Unix nanoseconds; a repeated revoke never shortens it. The TTL runs
// from the revocation time.
func (l *RevocationLedger) Revoke(ctx context.Context, record domain.RevokedToken) error {
	revokedAt := record.CreatedAt
	if revokedAt.IsZero() {
		revokedAt = time.Now()
	}
	ttl := record.ExpiresAt.Sub(revokedAt)
	if ttl < minRevocationTTL {
		ttl = minRevocationTTL
	}

	value := strconv.FormatInt(record.ExpiresAt.UnixNano(), 10)
	err := revokeScript.Run(ctx, l.client, []string{l.key(record.Token)}, value, ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("redis revoke failed: %w", err)
	}
	return nil
}

// IsRevoked implements store.RevocationLedger.IsRevoked
func (l *RevocationLedger) IsRevoked(ctx context.Context, token string, now time.Time) (bool, error) {
	value, err := l.client.Get(ctx, l.key(token)).Int64()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	return !now.After(time.Unix(0, value)), nil
}

// PruneExpired implements store.RevocationLedger.PruneExpired. Redis
// expires keys itself.
func (l *RevocationLedger) PruneExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
