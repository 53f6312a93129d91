package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token is malformed, badly signed or otherwise unusable.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrBadIdentity is the parent of every subject format error.
	ErrBadIdentity = errors.New("bad identity format")

	// Subject format errors. Their text is shown to API clients.
	ErrSubjectNotString  = &identityError{"User ID must be a string"}
	ErrSubjectNotNumeric = &identityError{"User ID must be a number"}
	ErrSubjectOutOfRange = &identityError{"User ID is out of range"}
)

type identityError struct{ msg string }

func (e *identityError) Error() string        { return e.msg }
func (e *identityError) Is(target error) bool { return target == ErrBadIdentity }

// InvalidTokenError carries the verification failure reported by the JWT parser.
// errors.Is(err, ErrInvalidToken) holds for every InvalidTokenError.
type InvalidTokenError struct {
	Reason error
}

// Error returns the parser's message.
func (e *InvalidTokenError) Error() string {
	if e.Reason == nil {
		return ErrInvalidToken.Error()
	}
	return e.Reason.Error()
}

// Is matches ErrInvalidToken.
func (e *InvalidTokenError) Is(target error) bool {
	return target == ErrInvalidToken
}

// Unwrap returns the parser error.
func (e *InvalidTokenError) Unwrap() error {
	return e.Reason
}
