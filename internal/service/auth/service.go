package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/redact"
	"github.com/phrazzld/booking-api/internal/store"
)

// Auth event names reported to the EventRecorder.
const (
	EventSignIn  = "sign_in"
	EventRefresh = "refresh"
	EventLogout  = "logout"
)

// Event outcomes reported to the EventRecorder.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// EventRecorder receives the outcome of every auth operation.
type EventRecorder interface {
	AuthEvent(event, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) AuthEvent(string, string) {}

// TokenPair is the credential set returned by sign-in and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	UserID       uuid.UUID
	ExpiresAt    time.Time
}

// Service orchestrates sign-in, refresh and logout. It is the only writer
// of the refresh token store and the revocation ledger.
type Service struct {
	users     store.UserStore
	refresh   store.RefreshTokenStore
	ledger    store.RevocationLedger
	issuer    TokenIssuer
	passwords PasswordVerifier
	events    EventRecorder
	logger    *slog.Logger
	timeFunc  func() time.Time
}

// NewService creates an auth Service. events may be nil.
func NewService(
	users store.UserStore,
	refresh store.RefreshTokenStore,
	ledger store.RevocationLedger,
	issuer TokenIssuer,
	passwords PasswordVerifier,
	events EventRecorder,
	logger *slog.Logger,
) *Service {
	if events == nil {
		events = noopRecorder{}
	}
	return &Service{
		users:     users,
		refresh:   refresh,
		ledger:    ledger,
		issuer:    issuer,
		passwords: passwords,
		events:    events,
		logger:    logger.With("component", "auth_service"),
		timeFunc:  time.Now,
	}
}

// SignIn exchanges a username and password for a new token pair.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, username, password string) (*TokenPair, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.events.AuthEvent(EventSignIn, OutcomeRejected)
		return nil, ErrMissingCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("sign-in for unknown username", "username", username)
			s.events.AuthEvent(EventSignIn, OutcomeRejected)
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to look up user for sign-in", "error", err, "username", username)
		s.events.AuthEvent(EventSignIn, OutcomeError)
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.passwords.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("sign-in password mismatch", "user_id", user.ID)
		s.events.AuthEvent(EventSignIn, OutcomeRejected)
		return nil, ErrInvalidCredentials
	}

	// Everything is signed before the refresh token is stored.
	accessToken, expiresAt, err := s.issuer.IssueAccessToken(ctx, user.ID)
	if err != nil {
		s.events.AuthEvent(EventSignIn, OutcomeError)
		return nil, err
	}
	refreshToken, err := s.issuer.IssueRefreshToken(ctx, user.ID)
	if err != nil {
		s.events.AuthEvent(EventSignIn, OutcomeError)
		return nil, err
	}
	if err := s.refresh.Save(ctx, refreshToken); err != nil {
		s.logger.Error("failed to save refresh token", "error", err, "user_id", user.ID)
		s.events.AuthEvent(EventSignIn, OutcomeError)
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	pair := &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		UserID:       user.ID,
		ExpiresAt:    expiresAt,
	}

	s.logger.Info("user signed in", "user_id", user.ID)
	s.events.AuthEvent(EventSignIn, OutcomeSuccess)
	return pair, nil
}

// RefreshTokens consumes a refresh token and returns a new pair bound to
// the same user. A token that is unknown, already consumed, or expired
// yields ErrInvalidOrExpiredToken.
func (s *Service) RefreshTokens(ctx context.Context, presented string) (*TokenPair, error) {
	if presented == "" {
		s.events.AuthEvent(EventRefresh, OutcomeRejected)
		return nil, ErrInvalidOrExpiredToken
	}

	// The owner is taken from the consumed token by the store.
	replacement, err := s.issuer.IssueRefreshToken(ctx, uuid.Nil)
	if err != nil {
		s.events.AuthEvent(EventRefresh, OutcomeError)
		return nil, err
	}

	stored, err := s.refresh.Rotate(ctx, presented, replacement, s.timeFunc())
	if err != nil {
		if errors.Is(err, store.ErrRefreshTokenNotFound) || errors.Is(err, store.ErrRefreshTokenExpired) {
			s.logger.Debug("refresh rejected",
				"reason", err,
				"token_fingerprint", redact.Fingerprint(presented))
			s.events.AuthEvent(EventRefresh, OutcomeRejected)
			return nil, ErrInvalidOrExpiredToken
		}
		s.logger.Error("failed to rotate refresh token", "error", err)
		s.events.AuthEvent(EventRefresh, OutcomeError)
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	// The owner is only known once the presented token is consumed, so the
	// access token is signed afterwards. On failure the replacement is
	// withdrawn so no undelivered token stays live.
	accessToken, expiresAt, err := s.issuer.IssueAccessToken(ctx, stored.UserID)
	if err != nil {
		if delErr := s.refresh.Delete(ctx, stored.Token); delErr != nil {
			s.logger.Error("failed to withdraw undelivered refresh token",
				"error", delErr,
				"user_id", stored.UserID)
		}
		s.events.AuthEvent(EventRefresh, OutcomeError)
		return nil, err
	}

	pair := &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: stored.Token,
		UserID:       stored.UserID,
		ExpiresAt:    expiresAt,
	}

	s.logger.Debug("refresh token rotated", "user_id", stored.UserID)
	s.events.AuthEvent(EventRefresh, OutcomeSuccess)
	return pair, nil
}

// Logout deletes the refresh token and revokes the access token until its
// natural expiry. The revocation is recorded even when the refresh token
// was not found, in which case ErrInvalidRefreshToken is returned.
func (s *Service) Logout(ctx context.Context, refreshToken, accessToken string) error {
	if refreshToken == "" || accessToken == "" {
		s.events.AuthEvent(EventLogout, OutcomeRejected)
		return ErrMissingCredentials
	}

	expiresAt, err := s.issuer.DecodeExpiry(accessToken)
	if err != nil {
		s.events.AuthEvent(EventLogout, OutcomeRejected)
		return err
	}

	refreshMissing := false
	if err := s.refresh.Delete(ctx, refreshToken); err != nil {
		if !errors.Is(err, store.ErrRefreshTokenNotFound) {
			s.logger.Error("failed to delete refresh token", "error", err)
			s.events.AuthEvent(EventLogout, OutcomeError)
			return fmt.Errorf("failed to delete refresh token: %w", err)
		}
		refreshMissing = true
	}

	record := domain.RevokedToken{
		Token:     accessToken,
		ExpiresAt: expiresAt,
		CreatedAt: s.timeFunc().UTC(),
	}
	if err := s.ledger.Revoke(ctx, record); err != nil {
		s.logger.Error("failed to revoke access token", "error", err)
		s.events.AuthEvent(EventLogout, OutcomeError)
		return fmt.Errorf("failed to revoke access token: %w", err)
	}

	if refreshMissing {
		s.logger.Debug("logout presented unknown refresh token",
			"token_fingerprint", redact.Fingerprint(refreshToken))
		s.events.AuthEvent(EventLogout, OutcomeRejected)
		return ErrInvalidRefreshToken
	}

	s.events.AuthEvent(EventLogout, OutcomeSuccess)
	return nil
}

// IsAccessTokenRevoked reports whether the access token has a live
// revocation record.
func (s *Service) IsAccessTokenRevoked(ctx context.Context, accessToken string) (bool, error) {
	revoked, err := s.ledger.IsRevoked(ctx, accessToken, s.timeFunc())
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return revoked, nil
}
