package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/findmypet-api/internal/api/shared"
	"github.com/phrazzld/findmypet-api/internal/domain"
	"github.com/phrazzld/findmypet-api/internal/service"
	"github.com/phrazzld/findmypet-api/internal/service/auth"
	"github.com/phrazzld/findmypet-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCodeAndMessage(t *testing.T) {
	t.Parallel()

	storeFailure := store.NewStoreError("pet_post", "create", "insert failed",
		errors.New("connection reset by peer at postgres://app:secret@db/pets"))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "validation error",
			err:        domain.NewValidationError("title is required", "pet_type is required"),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "title is required",
		},
		{
			name:       "invalid date",
			err:        fmt.Errorf("parse: %w", domain.ErrInvalidDate),
			wantStatus: http.StatusBadRequest,
			wantMsg:    domain.ErrInvalidDate.Error(),
		},
		{
			name:       "entity invariant",
			err:        domain.ErrInvalidPetType,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid entity data",
		},
		{
			name:       "column limit caught by the store",
			err:        fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrPetPostTitleTooLong),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "title must be at most 100 characters",
		},
		{
			name: "value too long reported by the database",
			err: store.NewStoreError("pet_post", "create", "failed to insert pet post",
				fmt.Errorf("%w: value too long", store.ErrInvalidEntity)),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid entity data",
		},
		{
			name:       "duplicate email",
			err:        store.ErrEmailExists,
			wantStatus: http.StatusConflict,
			wantMsg:    "User with this email already exists",
		},
		{
			name:       "duplicate username",
			err:        fmt.Errorf("register: %w", store.ErrUsernameExists),
			wantStatus: http.StatusConflict,
			wantMsg:    "Username already taken",
		},
		{
			name:       "invalid credentials",
			err:        service.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Invalid email or password",
		},
		{
			name:       "expired token",
			err:        auth.ErrExpiredToken,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Token has expired",
		},
		{
			name:       "malformed token",
			err:        &auth.InvalidTokenError{Reason: jwt.ErrTokenMalformed},
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    jwt.ErrTokenMalformed.Error(),
		},
		{
			name:       "bad identity",
			err:        auth.ErrSubjectNotNumeric,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "User ID must be a number",
		},
		{
			name:       "not owner",
			err:        service.ErrNotOwned,
			wantStatus: http.StatusForbidden,
			wantMsg:    "You are not authorized to modify this post",
		},
		{
			name:       "user not found",
			err:        store.ErrUserNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    MsgUserNotFound,
		},
		{
			name:       "pet post not found",
			err:        fmt.Errorf("lookup: %w", store.ErrPetPostNotFound),
			wantStatus: http.StatusNotFound,
			wantMsg:    MsgPetPostNotFound,
		},
		{
			name:       "store failure",
			err:        storeFailure,
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    MsgDatabaseError,
		},
		{
			name:       "store failure wrapped by service",
			err:        service.NewServiceError("pet_post", "create", "persist", storeFailure),
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    MsgDatabaseError,
		},
		{
			name:       "foreign key",
			err:        store.ErrForeignKey,
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    MsgDatabaseError,
		},
		{
			name:       "unknown error",
			err:        errors.New("something odd"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    MsgUnexpected,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.wantStatus, MapErrorToStatusCode(tc.err))
			assert.Equal(t, tc.wantMsg, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestGetSafeErrorMessageNil(t *testing.T) {
	assert.Equal(t, MsgUnexpected, GetSafeErrorMessage(nil))
}

func TestHandleAPIError(t *testing.T) {
	t.Run("validation errors carry the full list", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/pets/", nil)

		HandleAPIError(rr, req, domain.NewValidationError("title is required", "latitude must be a valid number"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decodeBody[shared.ErrorResponse](t, rr)
		assert.Equal(t, "title is required", body.Message)
		assert.Equal(t, []string{"title is required", "latitude must be a valid number"}, body.Errors)
	})

	t.Run("store failures never leak details", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/pets/", nil)

		HandleAPIError(rr, req, store.NewStoreError("pet_post", "create", "insert failed",
			errors.New(`pq: relation "pet_posts" does not exist`)))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.NotContains(t, rr.Body.String(), "pet_posts")
		body := decodeBody[shared.ErrorResponse](t, rr)
		assert.Equal(t, MsgDatabaseError, body.Message)
		assert.Empty(t, body.Errors)
	})
}
