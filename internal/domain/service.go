package domain

import (
	"fmt"
	"strings"
	"time"
)

// Service validation errors
var (
	ErrEmptyServiceName      = fmt.Errorf("%w: service name cannot be empty", ErrValidation)
	ErrServiceNameTooLong    = fmt.Errorf("%w: service name must be at most 100 characters", ErrValidation)
	ErrInvalidServiceDetails = fmt.Errorf("%w: description must be 8-50 characters", ErrValidation)
)

// Service is a bookable offering in the catalog (e.g. "haircut").
type Service struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Active      bool       `json:"active"`
	Deleted     bool       `json:"deleted"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// NewService builds a validated, not yet persisted catalog entry. The ID is
// assigned by the store.
func NewService(name, description string, active bool) (*Service, error) {
	now := time.Now().UTC()
	s := &Service{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks if the Service has valid data.
func (s *Service) Validate() error {
	if s.Name == "" {
		return ErrEmptyServiceName
	}
	if len(s.Name) > 100 {
		return ErrServiceNameTooLong
	}
	if n := len([]rune(s.Description)); n < 8 || n > 50 {
		return ErrInvalidServiceDetails
	}
	return nil
}

// MarkDeleted soft-deletes the service and deactivates it.
func (s *Service) MarkDeleted(at time.Time) {
	s.Deleted = true
	s.Active = false
	s.DeletedAt = &at
	s.UpdatedAt = at
}

// Restore reverses MarkDeleted.
func (s *Service) Restore(at time.Time) error {
	if !s.Deleted {
		return ErrNotDeleted
	}
	s.Deleted = false
	s.DeletedAt = nil
	s.UpdatedAt = at
	return nil
}
