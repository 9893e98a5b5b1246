package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/store"
)

// MockRefreshTokenStore implements store.RefreshTokenStore in memory.
// Rotate holds the lock for the whole consume-and-replace step.
type MockRefreshTokenStore struct {
	SaveFn   func(ctx context.Context, token domain.RefreshToken) error
	RotateFn func(ctx context.Context, presented string, replacement domain.RefreshToken, now time.Time) (domain.RefreshToken, error)
	DeleteFn func(ctx context.Context, token string) error
	PruneFn  func(ctx context.Context, now time.Time) (int64, error)

	// Tokens is keyed by store.TokenDigest of the token value
	Tokens map[string]domain.RefreshToken
	mu     sync.Mutex
}

var _ store.RefreshTokenStore = (*MockRefreshTokenStore)(nil)

// NewMockRefreshTokenStore creates an empty in-memory refresh token store
func NewMockRefreshTokenStore() *MockRefreshTokenStore {
	return &MockRefreshTokenStore{Tokens: make(map[string]domain.RefreshToken)}
}

// Save implements the RefreshTokenStore interface
func (m *MockRefreshTokenStore) Save(ctx context.Context, token domain.RefreshToken) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tokens[store.TokenDigest(token.Token)] = token
	return nil
}

// Rotate implements the RefreshTokenStore interface
func (m *MockRefreshTokenStore) Rotate(
	ctx context.Context,
	presented string,
	replacement domain.RefreshToken,
	now time.Time,
) (domain.RefreshToken, error) {
	if m.RotateFn != nil {
		return m.RotateFn(ctx, presented, replacement, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := store.TokenDigest(presented)
	current, ok := m.Tokens[key]
	if !ok {
		return domain.RefreshToken{}, store.ErrRefreshTokenNotFound
	}
	delete(m.Tokens, key)
	if current.Expired(now) {
		return domain.RefreshToken{}, store.ErrRefreshTokenExpired
	}

	replacement.UserID = current.UserID
	m.Tokens[store.TokenDigest(replacement.Token)] = replacement
	return replacement, nil
}

// Delete implements the RefreshTokenStore interface
func (m *MockRefreshTokenStore) Delete(ctx context.Context, token string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := store.TokenDigest(token)
	if _, ok := m.Tokens[key]; !ok {
		return store.ErrRefreshTokenNotFound
	}
	delete(m.Tokens, key)
	return nil
}

// PruneExpired implements the RefreshTokenStore interface
func (m *MockRefreshTokenStore) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.PruneFn != nil {
		return m.PruneFn(ctx, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key, token := range m.Tokens {
		if token.Expired(now) {
			delete(m.Tokens, key)
			n++
		}
	}
	return n, nil
}

// Has reports whether the raw token value is stored
func (m *MockRefreshTokenStore) Has(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Tokens[store.TokenDigest(token)]
	return ok
}

// MockRevocationLedger implements store.RevocationLedger in memory
type MockRevocationLedger struct {
	RevokeFn    func(ctx context.Context, record domain.RevokedToken) error
	IsRevokedFn func(ctx context.Context, token string, now time.Time) (bool, error)
	PruneFn     func(ctx context.Context, now time.Time) (int64, error)

	// Records is keyed by store.TokenDigest of the token value
	Records map[string]domain.RevokedToken
	mu      sync.Mutex
}

var _ store.RevocationLedger = (*MockRevocationLedger)(nil)

// NewMockRevocationLedger creates an empty in-memory ledger
func NewMockRevocationLedger() *MockRevocationLedger {
	return &MockRevocationLedger{Records: make(map[string]domain.RevokedToken)}
}

// Revoke implements the RevocationLedger interface
func (m *MockRevocationLedger) Revoke(ctx context.Context, record domain.RevokedToken) error {
	if m.RevokeFn != nil {
		return m.RevokeFn(ctx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records[store.TokenDigest(record.Token)] = record
	return nil
}

// IsRevoked implements the RevocationLedger interface
func (m *MockRevocationLedger) IsRevoked(ctx context.Context, token string, now time.Time) (bool, error) {
	if m.IsRevokedFn != nil {
		return m.IsRevokedFn(ctx, token, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.Records[store.TokenDigest(token)]
	return ok && !now.After(record.ExpiresAt), nil
}

// PruneExpired implements the RevocationLedger interface
func (m *MockRevocationLedger) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.PruneFn != nil {
		return m.PruneFn(ctx, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key, record := range m.Records {
		if now.After(record.ExpiresAt) {
			delete(m.Records, key)
			n++
		}
	}
	return n, nil
}
