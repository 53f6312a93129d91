package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/findmypet-api/internal/api/shared"
	"github.com/phrazzld/findmypet-api/internal/platform/logger"
	"github.com/phrazzld/findmypet-api/internal/redact"
	"github.com/phrazzld/findmypet-api/internal/service/auth"
)

// Client-facing messages for header problems.
const (
	MsgMissingHeader = "Missing Authorization Header"
	MsgBadHeader     = "Bad Authorization header. Expected 'Authorization: Bearer <JWT>'"
	MsgTokenExpired  = "Token has expired"
)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate validates the bearer token and puts the account ID in the
// request context. Failures are reported in three tiers: 401 for a missing
// header or expired token, 422 for a token that fails verification, and 400
// for a verified token whose subject is not a decimal account ID.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, MsgMissingHeader)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, MsgBadHeader)
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), parts[1])
		switch {
		case err == nil:
		case errors.Is(err, auth.ErrExpiredToken):
			shared.RespondWithError(w, r, http.StatusUnauthorized, MsgTokenExpired)
			return
		case errors.Is(err, auth.ErrInvalidToken):
			shared.RespondWithError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		default:
			logger.FromContextOrDefault(r.Context(), m.logger).
				Error("failed to validate token", "error", redact.Error(err))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			return
		}

		accountID, err := auth.AccountIDFromSubject(claims.Subject)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		ctx := shared.WithUserID(r.Context(), accountID)
		reqLogger := logger.FromContextOrDefault(ctx, m.logger).With(slog.Int64("user_id", accountID))
		ctx = logger.WithLogger(ctx, reqLogger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts the account ID from the request context.
// Returns the account ID and a boolean indicating if it was found.
func GetUserID(r *http.Request) (int64, bool) {
	return shared.UserIDFromContext(r.Context())
}
