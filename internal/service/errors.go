package service

import (
	"fmt"

	"github.com/phrazzld/booking-api/internal/domain"
)

// Service-level errors. Callers check them with errors.Is; the API layer maps
// them to status codes through the wrapped sentinel.
var (
	// ErrUnknownRole indicates that a user references a role that does not
	// exist. It wraps domain.ErrValidation so it surfaces as 400.
	ErrUnknownRole = fmt.Errorf("%w: role does not exist", domain.ErrValidation)
)
