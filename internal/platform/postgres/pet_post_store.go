package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/findmypet-api/internal/domain"
	"github.com/phrazzld/findmypet-api/internal/platform/logger"
	"github.com/phrazzld/findmypet-api/internal/store"
)

const petPostColumns = `id, title, description, pet_type, status, image_url, last_seen_address,
	last_seen_date, latitude, longitude, created_at, user_id`

const petPostOrder = ` ORDER BY created_at DESC, id DESC`

// PostgresPetPostStore implements the store.PetPostStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPetPostStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPetPostStore creates a new PostgreSQL implementation of the PetPostStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresPetPostStore(db store.DBTX, logger *slog.Logger) *PostgresPetPostStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPetPostStore{
		db:     db,
		logger: logger.With(slog.String("component", "pet_post_store")),
	}
}

// Ensure PostgresPetPostStore implements store.PetPostStore interface
var _ store.PetPostStore = (*PostgresPetPostStore)(nil)

// WithTx implements store.PetPostStore.WithTx
func (s *PostgresPetPostStore) WithTx(tx *sql.Tx) store.PetPostStore {
	return &PostgresPetPostStore{db: tx, logger: s.logger}
}

// Create implements store.PetPostStore.Create
func (s *PostgresPetPostStore) Create(ctx context.Context, post *domain.PetPost) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := post.Validate(); err != nil {
		log.Warn("pet post validation failed during create", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO pet_posts (title, description, pet_type, status, image_url, last_seen_address,
			last_seen_date, latitude, longitude, created_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		post.Title,
		post.Description,
		string(post.PetType),
		string(post.Status),
		nullString(post.ImageURL),
		post.LastSeenAddress,
		post.LastSeenDate,
		nullFloat(post.Latitude),
		nullFloat(post.Longitude),
		post.CreatedAt,
		post.UserID,
	).Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("pet post owner does not exist", slog.Int64("user_id", post.UserID))
			return fmt.Errorf("%w: user %d", store.ErrForeignKey, post.UserID)
		}
		log.Error("failed to create pet post",
			slog.String("error", err.Error()),
			slog.Int64("user_id", post.UserID))
		return store.NewStoreError("pet_post", "create", "failed to insert pet post", MapError(err))
	}

	post.CreatedAt = post.CreatedAt.UTC()
	log.Info("pet post created",
		slog.Int64("pet_post_id", post.ID),
		slog.Int64("user_id", post.UserID),
		slog.String("pet_type", string(post.PetType)))
	return nil
}

// GetByID implements store.PetPostStore.GetByID
func (s *PostgresPetPostStore) GetByID(ctx context.Context, id int64) (*domain.PetPost, error) {
	return s.getOne(ctx, `SELECT `+petPostColumns+` FROM pet_posts WHERE id = $1`, id)
}

// GetForUpdate implements store.PetPostStore.GetForUpdate
func (s *PostgresPetPostStore) GetForUpdate(ctx context.Context, id int64) (*domain.PetPost, error) {
	return s.getOne(ctx, `SELECT `+petPostColumns+` FROM pet_posts WHERE id = $1 FOR UPDATE`, id)
}

func (s *PostgresPetPostStore) getOne(ctx context.Context, query string, id int64) (*domain.PetPost, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	post, err := scanPetPost(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("pet post not found", slog.Int64("pet_post_id", id))
			return nil, store.ErrPetPostNotFound
		}
		log.Error("failed to get pet post",
			slog.String("error", err.Error()),
			slog.Int64("pet_post_id", id))
		return nil, store.NewStoreError("pet_post", "get", "failed to query pet post", err)
	}
	return post, nil
}

// List implements store.PetPostStore.List
func (s *PostgresPetPostStore) List(ctx context.Context, filter domain.PetPostFilter) ([]*domain.PetPost, error) {
	var (
		conds []string
		args  []any
	)
	if filter.PetType != "" {
		args = append(args, filter.PetType)
		conds = append(conds, fmt.Sprintf("pet_type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + petPostColumns + ` FROM pet_posts`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += petPostOrder

	return s.query(ctx, "list", query, args...)
}

// ListByOwner implements store.PetPostStore.ListByOwner
func (s *PostgresPetPostStore) ListByOwner(ctx context.Context, userID int64) ([]*domain.PetPost, error) {
	query := `SELECT ` + petPostColumns + ` FROM pet_posts WHERE user_id = $1` + petPostOrder
	return s.query(ctx, "list_by_owner", query, userID)
}

func (s *PostgresPetPostStore) query(ctx context.Context, op, query string, args ...any) ([]*domain.PetPost, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query pet posts", slog.String("operation", op), slog.String("error", err.Error()))
		return nil, store.NewStoreError("pet_post", op, "failed to query pet posts", err)
	}
	defer func() { _ = rows.Close() }()

	posts := make([]*domain.PetPost, 0)
	for rows.Next() {
		post, err := scanPetPost(rows)
		if err != nil {
			log.Error("failed to scan pet post", slog.String("operation", op), slog.String("error", err.Error()))
			return nil, store.NewStoreError("pet_post", op, "failed to scan pet post", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		log.Error("pet post iteration failed", slog.String("operation", op), slog.String("error", err.Error()))
		return nil, store.NewStoreError("pet_post", op, "failed to iterate pet posts", err)
	}

	log.Debug("pet posts listed", slog.String("operation", op), slog.Int("count", len(posts)))
	return posts, nil
}

// Update implements store.PetPostStore.Update
func (s *PostgresPetPostStore) Update(ctx context.Context, post *domain.PetPost) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := post.Validate(); err != nil {
		log.Warn("pet post validation failed during update", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE pet_posts
		SET title = $1, description = $2, pet_type = $3, status = $4, image_url = $5,
			last_seen_address = $6, last_seen_date = $7, latitude = $8, longitude = $9
		WHERE id = $10
	`
	result, err := s.db.ExecContext(ctx, query,
		post.Title,
		post.Description,
		string(post.PetType),
		string(post.Status),
		nullString(post.ImageURL),
		post.LastSeenAddress,
		post.LastSeenDate,
		nullFloat(post.Latitude),
		nullFloat(post.Longitude),
		post.ID,
	)
	if err != nil {
		log.Error("failed to update pet post",
			slog.String("error", err.Error()),
			slog.Int64("pet_post_id", post.ID))
		return store.NewStoreError("pet_post", "update", "failed to update pet post", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrPetPostNotFound); err != nil {
		return err
	}

	log.Info("pet post updated", slog.Int64("pet_post_id", post.ID))
	return nil
}

// Delete implements store.PetPostStore.Delete
func (s *PostgresPetPostStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM pet_posts WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete pet post",
			slog.String("error", err.Error()),
			slog.Int64("pet_post_id", id))
		return store.NewStoreError("pet_post", "delete", "failed to delete pet post", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrPetPostNotFound); err != nil {
		return err
	}

	log.Info("pet post deleted", slog.Int64("pet_post_id", id))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPetPost(row rowScanner) (*domain.PetPost, error) {
	var (
		post      domain.PetPost
		petType   string
		status    string
		imageURL  sql.NullString
		latitude  sql.NullFloat64
		longitude sql.NullFloat64
	)
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Description,
		&petType,
		&status,
		&imageURL,
		&post.LastSeenAddress,
		&post.LastSeenDate,
		&latitude,
		&longitude,
		&post.CreatedAt,
		&post.UserID,
	); err != nil {
		return nil, err
	}

	post.PetType = domain.PetType(petType)
	post.Status = domain.PetStatus(status)
	if imageURL.Valid {
		post.ImageURL = &imageURL.String
	}
	if latitude.Valid {
		post.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		post.Longitude = &longitude.Float64
	}
	post.LastSeenDate = post.LastSeenDate.UTC()
	post.CreatedAt = post.CreatedAt.UTC()
	return &post, nil
}
