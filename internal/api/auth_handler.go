package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/findmypet-api/internal/api/shared"
	"github.com/phrazzld/findmypet-api/internal/service"
	"github.com/phrazzld/findmypet-api/internal/service/auth"
	"github.com/phrazzld/findmypet-api/internal/store"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	accounts   service.AccountService
	jwtService auth.JWTService
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	accounts service.AccountService,
	jwtService auth.JWTService,
) *AuthHandler {
	return &AuthHandler{
		accounts:   accounts,
		jwtService: jwtService,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgInvalidRequest, err)
		return
	}

	// Only the first missing field is reported.
	if msgs := shared.ValidationMessages(shared.ValidateRequest(&req)); len(msgs) > 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, msgs[0])
		return
	}

	user, err := h.accounts.Register(r.Context(), service.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		Message:     "User registered successfully",
		AccessToken: token,
		User:        userToResponse(user),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgInvalidRequest, err)
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Message:     "Login successful",
		AccessToken: token,
		User:        userToResponse(user),
	})
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(w, r)
	if !ok {
		return
	}

	user, err := h.accounts.GetAccount(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, MsgUserNotFound)
			return
		}
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProfileResponse{User: userToResponse(user)})
}
