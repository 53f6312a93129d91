package auth

import (
	"context"
	"strconv"
	"time"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed access token whose subject is accountID
	// encoded as a decimal string.
	GenerateToken(ctx context.Context, accountID int64) (string, error)

	// ValidateToken verifies the signature and expiry of tokenString.
	// It returns ErrExpiredToken for an expired token and an *InvalidTokenError
	// for anything else wrong with it. The subject is returned unparsed; use
	// AccountIDFromSubject to resolve it.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the verified content of an access token.
type Claims struct {
	// Subject is the raw "sub" claim, of whatever JSON type the token carried.
	Subject   any
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// AccountIDFromSubject resolves a subject claim to an account ID. Only
// strings of decimal digits that fit an int64 are accepted.
func AccountIDFromSubject(subject any) (int64, error) {
	s, ok := subject.(string)
	if !ok {
		return 0, ErrSubjectNotString
	}
	if s == "" {
		return 0, ErrSubjectNotNumeric
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrSubjectNotNumeric
		}
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrSubjectOutOfRange
	}
	return id, nil
}

// SubjectFor encodes an account ID as a subject claim.
func SubjectFor(accountID int64) string {
	return strconv.FormatInt(accountID, 10)
}
