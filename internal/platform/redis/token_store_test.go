package redis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrefix = "test:"

func setupRedisTest(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := NewClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func newRefreshToken(userID uuid.UUID, lifetime time.Duration) domain.RefreshToken {
	now := time.Now().UTC()
	return domain.RefreshToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(lifetime),
		CreatedAt: now,
	}
}

func TestNewClient_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestRefreshTokenStore_SaveAndDelete(t *testing.T) {
	t.Parallel()
	mr, client := setupRedisTest(t)
	s := NewRefreshTokenStore(client, testPrefix)
	ctx := context.Background()

	token := newRefreshToken(uuid.New(), time.Hour)
	require.NoError(t, s.Save(ctx, token))

	key := testPrefix + "refresh:" + store.TokenDigest(token.Token)
	assert.True(t, mr.Exists(key))
	assert.False(t, mr.Exists(testPrefix+"refresh:"+token.Token), "raw token must not be a key")
	assert.InDelta(t, time.Hour.Seconds(), mr.TTL(key).Seconds(), 5)

	require.NoError(t, s.Delete(ctx, token.Token))
	assert.False(t, mr.Exists(key))
	assert.ErrorIs(t, s.Delete(ctx, token.Token), store.ErrRefreshTokenNotFound)
}

func TestRefreshTokenStore_SaveRejectsIncompleteToken(t *testing.T) {
	t.Parallel()
	_, client := setupRedisTest(t)
	s := NewRefreshTokenStore(client, testPrefix)

	err := s.Save(context.Background(), newRefreshToken(uuid.Nil, time.Hour))
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestRefreshTokenStore_Rotate(t *testing.T) {
	t.Parallel()
	_, client := setupRedisTest(t)
	s := NewRefreshTokenStore(client, testPrefix)
	ctx := context.Background()

	owner := uuid.New()
	current := newRefreshToken(owner, time.Hour)
	require.NoError(t, s.Save(ctx, current))

	replacement := newRefreshToken(uuid.Nil, 2*time.Hour)
	stored, err := s.Rotate(ctx, current.Token, replacement, time.Now())
	require.NoError(t, err)
	assert.Equal(t, owner, stored.UserID)
	assert.Equal(t, replacement.Token, stored.Token)

	_, err = s.Rotate(ctx, current.Token, newRefreshToken(uuid.Nil, time.Hour), time.Now())
	assert.ErrorIs(t, err, store.ErrRefreshTokenNotFound)

	// The replacement is itself rotatable.
	next, err := s.Rotate(ctx, replacement.Token, newRefreshToken(uuid.Nil, time.Hour), time.Now())
	require.NoError(t, err)
	assert.Equal(t, owner, next.UserID)
}

// failingHook makes the named commands fail before they reach the server.
type failingHook struct {
	commands map[string]bool
	err      error
}

func (h failingHook) BeforeProcess(ctx context.Context, cmd goredis.Cmder) (context.Context, error) {
	if h.commands[cmd.Name()] {
		return ctx, h.err
	}
	return ctx, nil
}

func (failingHook) AfterProcess(context.Context, goredis.Cmder) error {
	return nil
}

func (failingHook) BeforeProcessPipeline(ctx context.Context, _ []goredis.Cmder) (context.Context, error) {
	return ctx, nil
}

func (failingHook) AfterProcessPipeline(context.Context, []goredis.Cmder) error {
	return nil
}

func TestRefreshTokenStore_FailedRotateKeepsPresentedToken(t *testing.T) {
	t.Parallel()
	mr, client := setupRedisTest(t)
	s := NewRefreshTokenStore(client, testPrefix)
	ctx := context.Background()

	current := newRefreshToken(uuid.New(), time.Hour)
	require.NoError(t, s.Save(ctx, current))

	writeErr := errors.New("connection reset during write")
	client.AddHook(failingHook{
		commands: map[string]bool{"evalsha": true, "eval": true, "set": true, "del": true},
		err:      writeErr,
	})

	replacement := newRefreshToken(uuid.Nil, time.Hour)
	_, err := s.Rotate(ctx, current.Token, replacement, time.Now())
	require.ErrorIs(t, err, writeErr)

	assert.True(t, mr.Exists(testPrefix+"refresh:"+store.TokenDigest(current.Token)),
		"presented token must survive a failed rotate")
	assert.False(t, mr.Exists(testPrefix+"refresh:"+store.TokenDigest(replacement.Token)))
}

func TestRefreshTokenStore_RotateLosesRaceToDelete(t *testing.T) {
	t.Parallel()
	mr, client := setupRedisTest(t)
	s := NewRefreshTokenStore(client, testPrefix)
	ctx := context.Background()

	current := newRefreshToken(uuid.New(), time.Hour)
	require.NoError(t, s.Save(ctx, current))

	// Consume the token between the read and the swap.
	client.AddHook(deleteBeforeSwap{mr: mr, key: testPrefix + "refresh:" + store.TokenDigest(current.Token)})

	replacement := newRefreshToken(uuid.Nil, time.Hour)
	_, err := s.Rotate(ctx, current.Token, replacement, time.Now())
	assert.ErrorIs(t, err, store.ErrRefreshTokenNotFound)
	assert.False(t, mr.Exists(testPrefix+"refresh:"+store.TokenDigest(replacement.Token)))
}

// deleteBeforeSwap removes key from the server just before a script runs.
type deleteBeforeSwap struct {
	failingHook
	mr  *miniredis.Miniredis
	key string
}

func (h deleteBeforeSwap) BeforeProcess(ctx context.Context, cmd goredis.Cmder) (context.Context, error) {
	if cmd.Name() == "evalsha" || cmd.Name() == "eval" {
		h.mr.Del(h.key)
	}
	return ctx, nil
}

func TestRefreshTokenStore_RotateExpired(t *testing.T) {
	t.Parallel()
	mr, client := setupRedisTest(t)
	s := NewRefreshTokenStore(client, testPrefix)
	ctx := context.Background()

	current := newRefreshToken(uuid.New(), time.Hour)
	require.NoError(t, s.Save(ctx, current))

	_, err := s.Rotate(ctx, current.Token, newRefreshToken(uuid.Nil, time.Hour), current.ExpiresAt)
	assert.ErrorIs(t, err, store.ErrRefreshTokenExpired)
	assert.False(t, mr.Exists(testPrefix+"refresh:"+store.TokenDigest(current.Token)))
}

func TestRefreshTokenStore_KeyExpiry(t *testing.T) {
	t.Parallel()
	mr, client := setupRedisTest(t)
	s := NewRefreshTokenStore(client, testPrefix)
	ctx := context.Background()

	current := newRefreshToken(uuid.New(), time.Minute)
	require.NoError(t, s.Save(ctx, current))

	mr.FastForward(2 * time.Minute)

	_, err := s.Rotate(ctx, current.Token, newRefreshToken(uuid.Nil, time.Hour), time.Now())
	assert.ErrorIs(t, err, store.ErrRefreshTokenNotFound)

	n, err := s.PruneExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRefreshTokenStore_ConcurrentRotate(t *testing.T) {
	t.Parallel()
	_, client := setupRedisTest(t)
	s := NewRefreshTokenStore(client, testPrefix)
	ctx := context.Background()

	current := newRefreshToken(uuid.New(), time.Hour)
	require.NoError(t, s.Save(ctx, current))

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		notFound  atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Rotate(ctx, current.Token, newRefreshToken(uuid.Nil, time.Hour), time.Now())
			switch {
			case err == nil:
				successes.Add(1)
			case assert.ErrorIs(t, err, store.ErrRefreshTokenNotFound):
				notFound.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(9), notFound.Load())
}

func TestRevocationLedger(t *testing.T) {
	t.Parallel()
	mr, client := setupRedisTest(t)
	l := NewRevocationLedger(client, testPrefix)
	ctx := context.Background()

	now := time.Now()
	record := domain.RevokedToken{Token: "access.token.value", ExpiresAt: now.Add(10 * time.Minute), CreatedAt: now}

	revoked, err := l.IsRevoked(ctx, record.Token, now)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, l.Revoke(ctx, record))
	require.NoError(t, l.Revoke(ctx, record), "revoking twice is not an error")

	revoked, err = l.IsRevoked(ctx, record.Token, now)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = l.IsRevoked(ctx, record.Token, record.ExpiresAt)
	require.NoError(t, err)
	assert.True(t, revoked, "record is still active at its expiry instant")

	revoked, err = l.IsRevoked(ctx, record.Token, record.ExpiresAt.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, revoked)

	key := testPrefix + "revoked:" + store.TokenDigest(record.Token)
	mr.FastForward(11 * time.Minute)
	assert.False(t, mr.Exists(key))

	n, err := l.PruneExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRevocationLedger_ExpiredRecordKeepsMinimumTTL(t *testing.T) {
	t.Parallel()
	mr, client := setupRedisTest(t)
	l := NewRevocationLedger(client, testPrefix)

	record := domain.RevokedToken{Token: "stale", ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, l.Revoke(context.Background(), record))

	key := testPrefix + "revoked:" + store.TokenDigest(record.Token)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, minRevocationTTL, mr.TTL(key))
}

func TestRevocationLedger_RepeatRevokeKeepsLaterExpiry(t *testing.T) {
	t.Parallel()
	mr, client := setupRedisTest(t)
	l := NewRevocationLedger(client, testPrefix)
	ctx := context.Background()

	now := time.Now()
	later := domain.RevokedToken{Token: "access", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	earlier := domain.RevokedToken{Token: "access", ExpiresAt: now.Add(time.Minute), CreatedAt: now}

	require.NoError(t, l.Revoke(ctx, later))
	require.NoError(t, l.Revoke(ctx, earlier))

	revoked, err := l.IsRevoked(ctx, "access", now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.True(t, revoked, "an earlier expiry must not shorten the record")

	key := testPrefix + "revoked:" + store.TokenDigest("access")
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestRevocationLedger_TTLRunsFromRevocationTime(t *testing.T) {
	t.Parallel()
	mr, client := setupRedisTest(t)
	l := NewRevocationLedger(client, testPrefix)

	revokedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	record := domain.RevokedToken{Token: "access", ExpiresAt: revokedAt.Add(20 * time.Minute), CreatedAt: revokedAt}
	require.NoError(t, l.Revoke(context.Background(), record))

	assert.Equal(t, 20*time.Minute, mr.TTL(testPrefix+"revoked:"+store.TokenDigest("access")))
}
