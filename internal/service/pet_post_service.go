package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/phrazzld/findmypet-api/internal/domain"
	"github.com/phrazzld/findmypet-api/internal/platform/logger"
	"github.com/phrazzld/findmypet-api/internal/store"
)

// AttachmentStore persists uploaded images.
type AttachmentStore interface {
	// Accept stores content under a collision-resistant name derived from
	// filename and returns its reference. A nil reference with a nil error
	// means the file was not an allowed image and was dropped.
	Accept(ctx context.Context, filename string, content io.Reader) (*string, error)

	// Remove deletes a stored attachment by reference.
	Remove(ctx context.Context, ref string) error
}

// ImageUpload is an optional image attached to a create or update request.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// PetPostService manages the pet post lifecycle.
type PetPostService interface {
	// CreatePost validates form, stores the image if any, and persists the post.
	CreatePost(ctx context.Context, ownerID int64, form domain.PetPostForm, image *ImageUpload) (*domain.PetPost, error)

	// GetPost returns store.ErrPetPostNotFound for unknown IDs.
	GetPost(ctx context.Context, id int64) (*domain.PetPost, error)

	// ListPosts returns posts matching filter, newest first.
	ListPosts(ctx context.Context, filter domain.PetPostFilter) ([]*domain.PetPost, error)

	// ListOwnPosts returns the posts owned by ownerID, newest first.
	ListOwnPosts(ctx context.Context, ownerID int64) ([]*domain.PetPost, error)

	// UpdatePost applies the submitted fields of form. Returns
	// store.ErrPetPostNotFound, then ErrNotOwned, before any validation.
	UpdatePost(ctx context.Context, id, requesterID int64, form domain.PetPostForm, image *ImageUpload) (*domain.PetPost, error)

	// DeletePost removes the post permanently. Returns
	// store.ErrPetPostNotFound or ErrNotOwned.
	DeletePost(ctx context.Context, id, requesterID int64) error
}

type petPostServiceImpl struct {
	posts       store.PetPostStore
	tx          store.Transactor
	attachments AttachmentStore
	logger      *slog.Logger
}

// NewPetPostService creates a PetPostService.
// It returns an error if any of the required dependencies are nil.
func NewPetPostService(
	posts store.PetPostStore,
	tx store.Transactor,
	attachments AttachmentStore,
	logger *slog.Logger,
) (PetPostService, error) {
	switch {
	case posts == nil:
		return nil, errors.New("pet post store cannot be nil")
	case tx == nil:
		return nil, errors.New("transactor cannot be nil")
	case attachments == nil:
		return nil, errors.New("attachment store cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &petPostServiceImpl{
		posts:       posts,
		tx:          tx,
		attachments: attachments,
		logger:      logger.With(slog.String("component", "pet_post_service")),
	}, nil
}

// CreatePost implements PetPostService.CreatePost
func (s *petPostServiceImpl) CreatePost(
	ctx context.Context,
	ownerID int64,
	form domain.PetPostForm,
	image *ImageUpload,
) (*domain.PetPost, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := form.Check(domain.FormCreate); err != nil {
		log.Debug("pet post form rejected", slog.String("error", err.Error()))
		return nil, err
	}

	lastSeen, err := domain.ParseLastSeenDate(*form.LastSeenDate)
	if err != nil {
		return nil, err
	}

	ref, err := s.acceptImage(ctx, image)
	if err != nil {
		return nil, err
	}

	post, err := form.NewPetPost(ownerID, lastSeen, ref)
	if err != nil {
		s.discardImage(ctx, ref)
		return nil, err
	}

	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.posts.WithTx(tx).Create(ctx, post)
	})
	if err != nil {
		log.Error("failed to create pet post", slog.String("error", err.Error()))
		s.discardImage(ctx, ref)
		return nil, err
	}

	return post, nil
}

// GetPost implements PetPostService.GetPost
func (s *petPostServiceImpl) GetPost(ctx context.Context, id int64) (*domain.PetPost, error) {
	return s.posts.GetByID(ctx, id)
}

// ListPosts implements PetPostService.ListPosts
func (s *petPostServiceImpl) ListPosts(ctx context.Context, filter domain.PetPostFilter) ([]*domain.PetPost, error) {
	return s.posts.List(ctx, filter)
}

// ListOwnPosts implements PetPostService.ListOwnPosts
func (s *petPostServiceImpl) ListOwnPosts(ctx context.Context, ownerID int64) ([]*domain.PetPost, error) {
	return s.posts.ListByOwner(ctx, ownerID)
}

// UpdatePost implements PetPostService.UpdatePost
func (s *petPostServiceImpl) UpdatePost(
	ctx context.Context,
	id, requesterID int64,
	form domain.PetPostForm,
	image *ImageUpload,
) (*domain.PetPost, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		updated  *domain.PetPost
		ref      *string
		previous *string
	)
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		posts := s.posts.WithTx(tx)

		post, err := s.lockOwned(ctx, posts, id, requesterID)
		if err != nil {
			return err
		}

		if err := form.Check(domain.FormUpdate); err != nil {
			return err
		}

		var lastSeen *time.Time
		if form.LastSeenDate != nil {
			t, err := domain.ParseLastSeenDate(*form.LastSeenDate)
			if err != nil {
				return err
			}
			lastSeen = &t
		}

		ref, err = s.acceptImage(ctx, image)
		if err != nil {
			return err
		}
		previous = post.ImageURL

		if err := form.ApplyTo(post, lastSeen, ref); err != nil {
			return err
		}

		if err := posts.Update(ctx, post); err != nil {
			return err
		}
		updated = post
		return nil
	})
	if err != nil {
		s.discardImage(ctx, ref)
		logRejection(log, "update", id, err)
		return nil, err
	}

	if ref != nil && previous != nil && *previous != *ref {
		s.discardImage(ctx, previous)
	}

	log.Info("pet post updated", slog.Int64("pet_post_id", id))
	return updated, nil
}

// DeletePost implements PetPostService.DeletePost
func (s *petPostServiceImpl) DeletePost(ctx context.Context, id, requesterID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var image *string
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		posts := s.posts.WithTx(tx)

		post, err := s.lockOwned(ctx, posts, id, requesterID)
		if err != nil {
			return err
		}
		image = post.ImageURL

		return posts.Delete(ctx, id)
	})
	if err != nil {
		logRejection(log, "delete", id, err)
		return err
	}

	// The row is gone, so its image can no longer be referenced.
	s.discardImage(ctx, image)
	log.Info("pet post deleted", slog.Int64("pet_post_id", id))
	return nil
}

// lockOwned loads the post with a row lock and checks ownership.
func (s *petPostServiceImpl) lockOwned(
	ctx context.Context,
	posts store.PetPostStore,
	id, requesterID int64,
) (*domain.PetPost, error) {
	post, err := posts.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsOwnedBy(requesterID) {
		return nil, ErrNotOwned
	}
	return post, nil
}

func (s *petPostServiceImpl) acceptImage(ctx context.Context, image *ImageUpload) (*string, error) {
	if image == nil || image.Content == nil {
		return nil, nil
	}
	ref, err := s.attachments.Accept(ctx, image.Filename, image.Content)
	if err != nil {
		return nil, NewServiceError("pet_post", "store_image", "failed to store image", err)
	}
	return ref, nil
}

// discardImage removes a stored attachment, logging rather than failing.
func (s *petPostServiceImpl) discardImage(ctx context.Context, ref *string) {
	if ref == nil {
		return
	}
	if err := s.attachments.Remove(ctx, *ref); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to remove image",
			slog.String("image_url", *ref),
			slog.String("error", err.Error()))
	}
}

func logRejection(log *slog.Logger, op string, id int64, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, store.ErrPetPostNotFound), errors.Is(err, ErrNotOwned),
		errors.As(err, &verr), errors.Is(err, domain.ErrInvalidDate):
		log.Debug("pet post "+op+" rejected",
			slog.Int64("pet_post_id", id),
			slog.String("reason", err.Error()))
	default:
		log.Error("pet post "+op+" failed",
			slog.Int64("pet_post_id", id),
			slog.String("error", err.Error()))
	}
}
