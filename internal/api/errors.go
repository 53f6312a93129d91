package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/findmypet-api/internal/api/shared"
	"github.com/phrazzld/findmypet-api/internal/domain"
	"github.com/phrazzld/findmypet-api/internal/service"
	"github.com/phrazzld/findmypet-api/internal/service/auth"
	"github.com/phrazzld/findmypet-api/internal/store"
)

// Client-facing messages shared by several handlers.
const (
	MsgInvalidRequest   = "Invalid request format"
	MsgUnexpected       = "An unexpected error occurred"
	MsgDatabaseError    = "Database error occurred"
	MsgUserNotFound     = "User not found"
	MsgPetPostNotFound  = "Pet post not found"
	MsgFileTooLarge     = "File too large"
	MsgNotAuthenticated = "User ID not found or invalid"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var storeErr *store.StoreError

	switch {
	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, store.ErrInvalidEntity),
		isEntityError(err):
		return http.StatusBadRequest

	// Authentication errors
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrBadIdentity):
		return http.StatusBadRequest

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Persistence failures
	case errors.Is(err, store.ErrForeignKey),
		errors.As(err, &storeErr):
		return http.StatusUnprocessableEntity

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MsgUnexpected
	}

	var (
		validationErr *domain.ValidationError
		storeErr      *store.StoreError
	)

	switch {
	case errors.As(err, &validationErr):
		if len(validationErr.Messages) > 0 {
			return validationErr.Messages[0]
		}
		return "Validation error"
	case errors.Is(err, domain.ErrInvalidDate):
		return domain.ErrInvalidDate.Error()
	case lengthError(err) != nil:
		return lengthError(err).Error()
	case errors.Is(err, store.ErrInvalidEntity), isEntityError(err):
		return "Invalid entity data"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrBadIdentity):
		// token parser and subject messages are meant for the client
		return err.Error()

	case errors.Is(err, service.ErrNotOwned):
		return "You are not authorized to modify this post"

	case errors.Is(err, store.ErrUserNotFound):
		return MsgUserNotFound
	case errors.Is(err, store.ErrPetPostNotFound):
		return MsgPetPostNotFound
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrEmailExists):
		return "User with this email already exists"
	case errors.Is(err, store.ErrUsernameExists):
		return "Username already taken"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, store.ErrForeignKey), errors.As(err, &storeErr):
		return MsgDatabaseError

	default:
		return MsgUnexpected
	}
}

// HandleAPIError writes the mapped status and safe message for err, and logs
// the redacted error. Validation failures also carry the full message list.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)

	var opts []shared.ResponseOption
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) && len(validationErr.Messages) > 0 {
		opts = append(opts, shared.WithErrors(validationErr.Messages))
	}
	if status == http.StatusUnprocessableEntity || status == http.StatusConflict {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
}

// isEntityError reports whether err is one of the domain entity invariant
// errors. Those only surface if a caller bypassed form validation.
func isEntityError(err error) bool {
	for _, target := range []error{
		domain.ErrEmptyUsername,
		domain.ErrEmptyEmail,
		domain.ErrEmptyPasswordHash,
		domain.ErrEmptyPetPostTitle,
		domain.ErrEmptyPetPostOwner,
		domain.ErrInvalidPetType,
		domain.ErrInvalidPetStatus,
		domain.ErrEmptyLastSeenDate,
		domain.ErrEmptyLastSeenAddress,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return lengthError(err) != nil
}

// lengthError returns the column-limit error wrapped in err, if any. Its
// text names the field and is safe to show to clients.
func lengthError(err error) error {
	for _, target := range []error{
		domain.ErrUsernameTooLong,
		domain.ErrEmailTooLong,
		domain.ErrPhoneTooLong,
		domain.ErrPetPostTitleTooLong,
		domain.ErrLastSeenAddressTooLong,
		domain.ErrImageURLTooLong,
	} {
		if errors.Is(err, target) {
			return target
		}
	}
	return nil
}
