package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Column limits of the users table, counted in characters.
const (
	MaxUsernameLength = 64
	MaxEmailLength    = 120
	MaxPhoneLength    = 20
)

// Common validation errors
var (
	ErrEmptyUsername     = errors.New("username cannot be empty")
	ErrEmptyEmail        = errors.New("email cannot be empty")
	ErrEmptyPasswordHash = errors.New("password hash cannot be empty")
	ErrUsernameTooLong   = errors.New(TooLongMessage("username", MaxUsernameLength))
	ErrEmailTooLong      = errors.New(TooLongMessage("email", MaxEmailLength))
	ErrPhoneTooLong      = errors.New(TooLongMessage("phone", MaxPhoneLength))
)

// User represents a registered account.
// Accounts are created by registration and never mutated afterwards.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string // never serialized
	Phone        *string
	CreatedAt    time.Time
}

// NewUser creates a new, not yet persisted User. The ID is assigned by the store.
//
// NOTE: passwordHash must already be hashed; this type never sees plaintext.
func NewUser(username, email, passwordHash string, phone *string) (*User, error) {
	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Phone:        normalizeOptional(phone),
		CreatedAt:    time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	if u.PasswordHash == "" {
		return ErrEmptyPasswordHash
	}
	if utf8.RuneCountInString(u.Username) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	if utf8.RuneCountInString(u.Email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if u.Phone != nil && utf8.RuneCountInString(*u.Phone) > MaxPhoneLength {
		return ErrPhoneTooLong
	}
	return nil
}

// normalizeOptional maps a pointer to an empty string to nil.
func normalizeOptional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
