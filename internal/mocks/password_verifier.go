package mocks

import (
	"errors"
	"strings"
)

// MockPasswordVerifier implements auth.PasswordVerifier for testing
type MockPasswordVerifier struct {
	// ShouldSucceed determines whether the password comparison should succeed
	ShouldSucceed bool

	// CompareFn allows for custom comparison logic in tests
	CompareFn func(hashedPassword, password string) error

	// CompareCallCount tracks how many times Compare was called
	CompareCallCount int
}

// Compare implements the auth.PasswordVerifier interface
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.CompareCallCount++

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}

	if m.ShouldSucceed {
		return nil
	}
	return errors.New("password mismatch")
}

// MockPasswordHasher implements auth.PasswordHasher by prefixing the
// plaintext, which keeps tests fast and deterministic.
type MockPasswordHasher struct {
	Err error
}

// Hash implements the auth.PasswordHasher interface
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return "hashed:" + password, nil
}

// ComparePrefixed verifies hashes produced by MockPasswordHasher
func ComparePrefixed(hashedPassword, password string) error {
	if strings.TrimPrefix(hashedPassword, "hashed:") != password || !strings.HasPrefix(hashedPassword, "hashed:") {
		return errors.New("password mismatch")
	}
	return nil
}
