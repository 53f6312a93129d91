package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/findmypet-api/internal/api/shared"
	"github.com/phrazzld/findmypet-api/internal/domain"
	"github.com/phrazzld/findmypet-api/internal/platform/logger"
	"github.com/phrazzld/findmypet-api/internal/service"
)

// Ownership rejection messages per operation.
const (
	MsgNotOwnerUpdate = "You are not authorized to update this post"
	MsgNotOwnerDelete = "You are not authorized to delete this post"
)

// PetPostHandler handles pet post API requests.
type PetPostHandler struct {
	posts          service.PetPostService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewPetPostHandler creates a new PetPostHandler. Request bodies larger than
// maxUploadBytes are rejected with 413; zero disables the limit.
func NewPetPostHandler(posts service.PetPostService, maxUploadBytes int64, logger *slog.Logger) *PetPostHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PetPostHandler{
		posts:          posts,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "pet_post_handler")),
	}
}

// CreatePetPost handles POST /api/pets/.
func (h *PetPostHandler) CreatePetPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(w, r)
	if !ok {
		return
	}

	sub, ok := parsePetPostSubmission(w, r, h.maxUploadBytes)
	if !ok {
		return
	}
	defer sub.close()

	post, err := h.posts.CreatePost(r.Context(), userID, sub.form, sub.image)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).
		Info("pet post created", slog.Int64("post_id", post.ID))

	shared.RespondWithJSON(w, r, http.StatusCreated, PetPostEnvelope{
		Message: "Pet post created successfully",
		PetPost: petPostToResponse(post),
	})
}

// ListPetPosts handles GET /api/pets/ with optional pet_type and status filters.
func (h *PetPostHandler) ListPetPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.PetPostFilter{
		PetType: query.Get(domain.FieldPetType),
		Status:  query.Get(domain.FieldStatus),
	}

	posts, err := h.posts.ListPosts(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PetPostListResponse{PetPosts: petPostsToResponse(posts)})
}

// ListOwnPetPosts handles GET /api/pets/user.
func (h *PetPostHandler) ListOwnPetPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(w, r)
	if !ok {
		return
	}

	posts, err := h.posts.ListOwnPosts(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PetPostListResponse{PetPosts: petPostsToResponse(posts)})
}

// GetPetPost handles GET /api/pets/{id}.
func (h *PetPostHandler) GetPetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r)
	if !ok {
		return
	}

	post, err := h.posts.GetPost(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PetPostEnvelope{PetPost: petPostToResponse(post)})
}

// UpdatePetPost handles PUT /api/pets/{id}. Only submitted fields change.
func (h *PetPostHandler) UpdatePetPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(w, r)
	if !ok {
		return
	}
	id, ok := getPathID(w, r)
	if !ok {
		return
	}

	sub, ok := parsePetPostSubmission(w, r, h.maxUploadBytes)
	if !ok {
		return
	}
	defer sub.close()

	post, err := h.posts.UpdatePost(r.Context(), id, userID, sub.form, sub.image)
	if err != nil {
		if errors.Is(err, service.ErrNotOwned) {
			shared.RespondWithErrorAndLog(w, r, http.StatusForbidden, MsgNotOwnerUpdate, err,
				shared.WithElevatedLogLevel())
			return
		}
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PetPostEnvelope{
		Message: "Pet post updated successfully",
		PetPost: petPostToResponse(post),
	})
}

// DeletePetPost handles DELETE /api/pets/{id}.
func (h *PetPostHandler) DeletePetPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(w, r)
	if !ok {
		return
	}
	id, ok := getPathID(w, r)
	if !ok {
		return
	}

	if err := h.posts.DeletePost(r.Context(), id, userID); err != nil {
		if errors.Is(err, service.ErrNotOwned) {
			shared.RespondWithErrorAndLog(w, r, http.StatusForbidden, MsgNotOwnerDelete, err,
				shared.WithElevatedLogLevel())
			return
		}
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).
		Info("pet post deleted", slog.Int64("post_id", id))

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Pet post deleted successfully"})
}
