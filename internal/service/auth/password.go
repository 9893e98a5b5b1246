package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier defines the interface for comparing passwords.
type PasswordVerifier interface {
	// Compare compares a hashed password with its possible plaintext equivalent.
	// Returns nil on success, or an error on failure (e.g., mismatch).
	Compare(hashedPassword, password string) error
}

// PasswordHasher produces a storable hash from a plaintext password.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Bcrypt implements PasswordVerifier and PasswordHasher using bcrypt.
type Bcrypt struct {
	cost int
}

var (
	_ PasswordVerifier = (*Bcrypt)(nil)
	_ PasswordHasher   = (*Bcrypt)(nil)
)

// NewBcrypt creates a Bcrypt with the given cost. Out of range costs fall
// back to bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Compare implements the PasswordVerifier interface using bcrypt.
// bcrypt compares digests in constant time.
func (b *Bcrypt) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// Hash implements the PasswordHasher interface.
func (b *Bcrypt) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
