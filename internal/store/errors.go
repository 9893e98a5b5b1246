package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrUserNotFound, ErrRoleNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a role with the same name).
	ErrDuplicate = errors.New("entity already exists")

	// ErrExpired is returned when a time-bound entity exists but is past its expiry.
	ErrExpired = errors.New("entity expired")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrRoleNotFound indicates that the requested role does not exist in the store.
	ErrRoleNotFound = fmt.Errorf("%w: role", ErrNotFound)

	// ErrServiceNotFound indicates that the requested catalog service does not exist.
	ErrServiceNotFound = fmt.Errorf("%w: service", ErrNotFound)

	// ErrRefreshTokenNotFound indicates that the presented refresh token is not
	// outstanding, either because it was never issued or was already consumed.
	ErrRefreshTokenNotFound = fmt.Errorf("%w: refresh token", ErrNotFound)

	// ErrRefreshTokenExpired indicates that the presented refresh token exists
	// but is past its expiry.
	ErrRefreshTokenExpired = fmt.Errorf("%w: refresh token", ErrExpired)

	// Entity-specific "duplicate" errors

	// ErrUsernameExists indicates that a user with the given username already exists.
	ErrUsernameExists = fmt.Errorf("%w: username", ErrDuplicate)

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrRoleNameExists indicates that a role with the given name already exists.
	ErrRoleNameExists = fmt.Errorf("%w: role name", ErrDuplicate)

	// ErrServiceNameExists indicates that a catalog service with the given name already exists.
	ErrServiceNameExists = fmt.Errorf("%w: service name", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// Entity-specific errors wrap ErrNotFound, so a single errors.Is suffices.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "user", "refresh_token")
	Operation string // The operation that failed (e.g., "create", "rotate")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
