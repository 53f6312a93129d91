// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"strconv"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity or form fails validation.
	// It is usually wrapped by a *ValidationError carrying the messages.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidDate is returned when last_seen_date is not an ISO-8601 value.
	// Its text is shown to API clients verbatim.
	ErrInvalidDate = errors.New("Invalid date format. Use ISO format (YYYY-MM-DDTHH:MM:SS)") //nolint:staticcheck // client-facing message
)

// ValidationError carries an ordered list of human-readable messages.
// The order is deterministic and follows the field order of the form.
type ValidationError struct {
	Messages []string
}

// NewValidationError builds a ValidationError from the given messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return ErrValidation.Error()
	}
	return strings.Join(e.Messages, "; ")
}

// Unwrap makes errors.Is(err, ErrValidation) true for every ValidationError.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// RequiredMessage formats the message used for a missing or empty field.
func RequiredMessage(field string) string {
	return field + " is required"
}

// TooLongMessage formats the message used for a field over its length limit.
func TooLongMessage(field string, limit int) string {
	return field + " must be at most " + strconv.Itoa(limit) + " characters"
}
