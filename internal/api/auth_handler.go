// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"

	"github.com/openswap/barter-api/internal/api/shared"
	"github.com/openswap/barter-api/internal/platform/logger"
	"github.com/openswap/barter-api/internal/service"
	"github.com/openswap/barter-api/internal/service/auth"
)

// AuthHandler handles registration and login requests.
type AuthHandler struct {
	userService service.UserService
	jwtService  auth.JWTService
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userService service.UserService,
	jwtService auth.JWTService,
	log *slog.Logger,
) *AuthHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}

	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		logger:      log.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /auth/register requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID, user.Username)
	if err != nil {
		log.Error("failed to generate token after registration",
			slog.String("error", err.Error()),
			slog.Int64("user_id", user.ID))
		shared.RespondWithError(
			w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		UserID:   user.ID,
		Username: user.Username,
		Token:    token,
	})
}

// Login handles POST /auth/login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID, user.Username)
	if err != nil {
		log.Error("failed to generate token on login",
			slog.String("error", err.Error()),
			slog.Int64("user_id", user.ID))
		shared.RespondWithError(
			w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		UserID:   user.ID,
		Username: user.Username,
		Token:    token,
	})
}
