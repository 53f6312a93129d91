package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/findmypet-api/internal/domain"
)

// PetPostStore defines the interface for pet post persistence.
// Listings are ordered by created_at descending, newest first.
type PetPostStore interface {
	// Create inserts a post and sets its ID and CreatedAt.
	// Returns ErrForeignKey when the owner does not exist.
	Create(ctx context.Context, post *domain.PetPost) error

	// GetByID returns ErrPetPostNotFound if the post does not exist.
	GetByID(ctx context.Context, id int64) (*domain.PetPost, error)

	// GetForUpdate is GetByID with a row lock held until the transaction ends.
	// It must be called on a store bound to a transaction.
	GetForUpdate(ctx context.Context, id int64) (*domain.PetPost, error)

	// List returns all posts matching the filter. Filters combine with AND.
	List(ctx context.Context, filter domain.PetPostFilter) ([]*domain.PetPost, error)

	// ListByOwner returns the posts owned by userID.
	ListByOwner(ctx context.Context, userID int64) ([]*domain.PetPost, error)

	// Update overwrites every mutable column of an existing post.
	// Returns ErrPetPostNotFound if the post does not exist.
	Update(ctx context.Context, post *domain.PetPost) error

	// Delete removes a post permanently.
	// Returns ErrPetPostNotFound if the post does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a PetPostStore bound to the given transaction.
	WithTx(tx *sql.Tx) PetPostStore
}
