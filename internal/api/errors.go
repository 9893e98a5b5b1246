package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/booking-api/internal/api/shared"
	"github.com/phrazzld/booking-api/internal/domain"
	"github.com/phrazzld/booking-api/internal/service/auth"
	"github.com/phrazzld/booking-api/internal/store"
)

// errInvalidRequestBody marks a body that could not be decoded.
var errInvalidRequestBody = errors.New("invalid request body")

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	// Bad request errors
	case errors.As(err, &validationErrs),
		errors.Is(err, errInvalidRequestBody),
		errors.Is(err, auth.ErrMissingCredentials),
		errors.Is(err, auth.ErrMalformedAccessToken),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	// Authentication errors
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidOrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, domain.ErrNotDeleted):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Messages are
// fixed strings; raw error text never reaches the response.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)
	case errors.Is(err, errInvalidRequestBody):
		return "Invalid request format"

	case errors.Is(err, auth.ErrMissingCredentials):
		return "Missing credentials"
	case errors.Is(err, auth.ErrMalformedAccessToken):
		return "Malformed access token"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Unauthenticated"
	case errors.Is(err, auth.ErrInvalidOrExpiredToken):
		return "Invalid or expired token"
	case errors.Is(err, auth.ErrInvalidRefreshToken):
		return "Invalid refresh token"
	case errors.Is(err, auth.ErrForbidden):
		return "Forbidden"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrRoleNotFound):
		return "Role not found"
	case errors.Is(err, store.ErrServiceNotFound):
		return "Service not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrUsernameExists):
		return "Username already exists"
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrRoleNameExists):
		return "Role with this name already exists"
	case errors.Is(err, store.ErrServiceNameExists):
		return "Service with this name already exists"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"
	case errors.Is(err, domain.ErrNotDeleted):
		return "Resource is not deleted"

	case errors.Is(err, domain.ErrValidation):
		return validationMessage(err)
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// validationMessage exposes the field-level text of a domain validation
// error. Domain messages are fixed strings with no user data, formatted as
// "validation failed: <detail>".
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, domain.ErrValidation.Error()+": "); i >= 0 {
		detail := msg[i+len(domain.ErrValidation.Error())+2:]
		return "Validation error: " + detail
	}
	return "Validation error"
}

// HandleAPIError writes the status and safe message for err, logging the
// redacted details. Authentication failures are logged at WARN.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
}

// SanitizeValidationError turns validator errors into a message naming the
// first offending field and rule.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid identifier"
	default:
		return "validation failed"
	}
}
