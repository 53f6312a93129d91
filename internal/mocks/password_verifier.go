package mocks

import (
	"errors"

	"github.com/phrazzld/findmypet-api/internal/service/auth"
)

var (
	_ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)
	_ auth.PasswordHasher   = (*MockPasswordHasher)(nil)
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

// MockPasswordHasher implements auth.PasswordHasher with a reversible
// "hashed:" prefix, paired with PrefixVerifier.
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

// PrefixVerifier returns a verifier that accepts hashes made by MockPasswordHasher.
func PrefixVerifier() *MockPasswordVerifier {
	return &MockPasswordVerifier{
		CompareFn: func(hashedPassword, password string) error {
			if hashedPassword != "hashed:"+password {
				return errors.New("password mismatch")
			}
			return nil
		},
	}
}
