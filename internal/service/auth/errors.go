package auth

import "errors"

// Common authentication service errors
var (
	// ErrMissingCredentials indicates a sign-in or logout request omitted a required field
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrInvalidCredentials indicates an unknown username or a password mismatch.
	// The two cases are deliberately indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated indicates a request that requires an identity carries none
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMalformedAccessToken indicates an access token whose expiry cannot be decoded
	ErrMalformedAccessToken = errors.New("malformed access token")

	// ErrInvalidOrExpiredToken indicates a refresh token that is absent, already used, or expired
	ErrInvalidOrExpiredToken = errors.New("invalid or expired refresh token")

	// ErrInvalidRefreshToken indicates logout presented a refresh token not found in the store
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrForbidden indicates the caller lacks a required permission or the
	// permission lookup failed
	ErrForbidden = errors.New("forbidden")
)
