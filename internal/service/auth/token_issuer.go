package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/booking-api/internal/config"
	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/platform/logger"
)

// MinSecretLength is the shortest accepted HMAC signing key.
const MinSecretLength = 32

// TokenIssuer creates and verifies the credentials handed to clients.
type TokenIssuer interface {
	// IssueAccessToken creates a signed access token for the user.
	// Returns the token and the instant it expires.
	IssueAccessToken(ctx context.Context, userID uuid.UUID) (string, time.Time, error)

	// IssueRefreshToken creates an opaque refresh token bound to the user.
	// The token is not persisted.
	IssueRefreshToken(ctx context.Context, userID uuid.UUID) (domain.RefreshToken, error)

	// VerifyAccessToken checks the signature and expiry of an access token
	// and returns its claims. Revocation is not consulted.
	VerifyAccessToken(ctx context.Context, token string) (*Claims, error)

	// DecodeExpiry reads the expiry of an access token without verifying
	// its signature.
	DecodeExpiry(token string) (time.Time, error)
}

// Claims is the verified content of an access token.
type Claims struct {
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// accessClaims is the wire form of an access token's claims.
type accessClaims struct {
	UserID uuid.UUID `json:"userId"`
	jwt.RegisteredClaims
}

// hmacTokenIssuer is an implementation of TokenIssuer using HMAC-SHA256 signing.
type hmacTokenIssuer struct {
	signingKey           []byte
	accessTokenLifetime  time.Duration
	refreshTokenLifetime time.Duration
	timeFunc             func() time.Time // Injectable for testing
	clockSkew            time.Duration    // Leeway applied to exp when verifying
}

var _ TokenIssuer = (*hmacTokenIssuer)(nil)

// NewTokenIssuer creates a TokenIssuer that signs with cfg.JWTSecret.
func NewTokenIssuer(cfg config.AuthConfig) (TokenIssuer, error) {
	return newHMACTokenIssuer(cfg, time.Now)
}

func newHMACTokenIssuer(cfg config.AuthConfig, now func() time.Time) (*hmacTokenIssuer, error) {
	if len(cfg.JWTSecret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}
	if cfg.AccessTokenLifetime <= 0 || cfg.RefreshTokenLifetime <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}

	return &hmacTokenIssuer{
		signingKey:           []byte(cfg.JWTSecret),
		accessTokenLifetime:  cfg.AccessTokenLifetime,
		refreshTokenLifetime: cfg.RefreshTokenLifetime,
		timeFunc:             now,
		clockSkew:            cfg.ClockSkew,
	}, nil
}

// IssueAccessToken creates a signed JWT access token with user claims.
func (s *hmacTokenIssuer) IssueAccessToken(
	ctx context.Context,
	userID uuid.UUID,
) (string, time.Time, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()
	expiresAt := now.Add(s.accessTokenLifetime)

	claims := accessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign access token",
			"error", err,
			"user_id", userID,
			"signing_method", jwt.SigningMethodHS256.Name)
		return "", time.Time{}, fmt.Errorf("failed to sign access token with HMAC-SHA256: %w", err)
	}

	// NumericDate truncates to whole seconds; report what the token carries.
	return signedToken, claims.ExpiresAt.Time, nil
}

// IssueRefreshToken creates a random UUIDv4 refresh token.
func (s *hmacTokenIssuer) IssueRefreshToken(
	_ context.Context,
	userID uuid.UUID,
) (domain.RefreshToken, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return domain.RefreshToken{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := s.timeFunc().UTC()
	return domain.RefreshToken{
		Token:     value.String(),
		UserID:    userID,
		ExpiresAt: now.Add(s.refreshTokenLifetime),
		CreatedAt: now,
	}, nil
}

// VerifyAccessToken validates a JWT access token and returns the claims if valid.
func (s *hmacTokenIssuer) VerifyAccessToken(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time {
			return now
		}),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&accessClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		parserOpts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("access token verification failed: token expired", "error", err)
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			log.Debug("access token verification failed: invalid signature", "error", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			log.Debug("access token verification failed: malformed token", "error", err)
		default:
			log.Debug("access token verification failed",
				"error", err,
				"error_type", fmt.Sprintf("%T", err))
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil {
		log.Debug("access token verification failed: invalid claims")
		return nil, ErrInvalidToken
	}

	result := &Claims{
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	return result, nil
}

// DecodeExpiry returns the exp claim of an access token. The signature is
// not checked.
func (s *hmacTokenIssuer) DecodeExpiry(tokenString string) (time.Time, error) {
	claims := &accessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformedAccessToken, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: no exp claim", ErrMalformedAccessToken)
	}
	return claims.ExpiresAt.Time, nil
}
