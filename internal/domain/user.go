package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID         = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	ErrEmptyUsername       = fmt.Errorf("%w: username cannot be empty", ErrValidation)
	ErrInvalidUsername     = fmt.Errorf("%w: username must be 3-50 characters without spaces", ErrValidation)
	ErrInvalidEmail        = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrEmptyEmail          = fmt.Errorf("%w: email cannot be empty", ErrValidation)
	ErrPasswordTooShort    = fmt.Errorf("%w: password must be at least 8 characters long", ErrValidation)
	ErrPasswordTooLong     = fmt.Errorf("%w: password must be at most 72 characters long", ErrValidation)
	ErrEmptyHashedPassword = fmt.Errorf("%w: hashed password cannot be empty", ErrValidation)
	ErrEmptyUserRole       = fmt.Errorf("%w: user must be assigned a role", ErrValidation)
)

// User is an identity that can sign in. Every active user references exactly
// one Role; the role is resolved at authorization time, not embedded.
type User struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Active         bool       `json:"active"`
	Deleted        bool       `json:"deleted"`
	RoleID         uuid.UUID  `json:"role_id"`
	Password       string     `json:"-"` // Plaintext, only set between request decoding and hashing
	HashedPassword string     `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

// NewUser creates a new User with a fresh ID and the given plaintext password.
// The caller is responsible for hashing the password before storing the user.
func NewUser(username, email, password string, roleID uuid.UUID) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Username:  strings.TrimSpace(username),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  password,
		RoleID:    roleID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Username == "" {
		return ErrEmptyUsername
	}
	if len(u.Username) < 3 || len(u.Username) > 50 || strings.ContainsAny(u.Username, " \t\n") {
		return ErrInvalidUsername
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if u.RoleID == uuid.Nil {
		return ErrEmptyUserRole
	}

	// A plaintext password is validated on create/update; stored users only
	// carry the hash.
	if u.Password != "" {
		switch {
		case len(u.Password) < 8:
			return ErrPasswordTooShort
		case len(u.Password) > 72:
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyHashedPassword
	}

	return nil
}

// MarkDeleted soft-deletes the user. Deleted users are also deactivated.
func (u *User) MarkDeleted(at time.Time) {
	u.Deleted = true
	u.Active = false
	u.DeletedAt = &at
	u.UpdatedAt = at
}

// Restore reverses MarkDeleted. The user stays inactive until explicitly
// activated.
func (u *User) Restore(at time.Time) error {
	if !u.Deleted {
		return ErrNotDeleted
	}
	u.Deleted = false
	u.DeletedAt = nil
	u.UpdatedAt = at
	return nil
}

// validateEmailFormat performs basic validation of email format: a non-empty
// local part, an '@', and a domain with a dot that is neither leading nor
// trailing.
func validateEmailFormat(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domainPart := email[at+1:]
	if len(domainPart) < 3 { // minimum would be "a.b"
		return false
	}

	dot := strings.IndexByte(domainPart, '.')
	return dot > 0 && dot < len(domainPart)-1
}
