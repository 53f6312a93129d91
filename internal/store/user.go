// Package store provides abstractions and implementations for data persistence
package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/findmypet-api/internal/domain"
)

// UserStore defines the interface for account persistence.
type UserStore interface {
	// Create inserts a new user and sets its ID and CreatedAt.
	// Returns ErrEmailExists or ErrUsernameExists on a uniqueness violation.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by exact email match.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByUsername retrieves a user by exact username match.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// WithTx returns a UserStore bound to the given transaction.
	WithTx(tx *sql.Tx) UserStore
}
