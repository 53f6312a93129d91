package api

import (
	"time"

	"github.com/phrazzld/findmypet-api/internal/domain"
)

// TimestampLayout is the ISO-8601 form used for every timestamp in responses.
const TimestampLayout = time.RFC3339

// RegisterRequest defines the payload for the registration endpoint.
// Field order determines which missing field is reported. The max limits
// match the users table columns.
type RegisterRequest struct {
	Username string  `json:"username" validate:"notblank,max=64"`
	Email    string  `json:"email"    validate:"notblank,max=120"`
	Password string  `json:"password" validate:"notblank"`
	Phone    *string `json:"phone"    validate:"omitempty,max=20"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
	CreatedAt string  `json:"created_at"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message     string       `json:"message"`
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// ProfileResponse wraps the authenticated account.
type ProfileResponse struct {
	User UserResponse `json:"user"`
}

// PetPostResponse is the public view of a pet post. Optional fields
// serialize as null when unset.
type PetPostResponse struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	PetType         string   `json:"pet_type"`
	Status          string   `json:"status"`
	ImageURL        *string  `json:"image_url"`
	LastSeenAddress string   `json:"last_seen_address"`
	LastSeenDate    string   `json:"last_seen_date"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	CreatedAt       string   `json:"created_at"`
	UserID          int64    `json:"user_id"`
}

// PetPostEnvelope wraps a single post, with a message on mutations.
type PetPostEnvelope struct {
	Message string          `json:"message,omitempty"`
	PetPost PetPostResponse `json:"pet_post"`
}

// PetPostListResponse wraps a list of posts.
type PetPostListResponse struct {
	PetPosts []PetPostResponse `json:"pet_posts"`
}

// MessageResponse carries only a message.
type MessageResponse struct {
	Message string `json:"message"`
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		CreatedAt: formatTimestamp(u.CreatedAt),
	}
}

func petPostToResponse(p *domain.PetPost) PetPostResponse {
	return PetPostResponse{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		PetType:         string(p.PetType),
		Status:          string(p.Status),
		ImageURL:        p.ImageURL,
		LastSeenAddress: p.LastSeenAddress,
		LastSeenDate:    formatTimestamp(p.LastSeenDate),
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
		CreatedAt:       formatTimestamp(p.CreatedAt),
		UserID:          p.UserID,
	}
}

// petPostsToResponse never returns nil so empty lists encode as [].
func petPostsToResponse(posts []*domain.PetPost) []PetPostResponse {
	out := make([]PetPostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, petPostToResponse(p))
	}
	return out
}
