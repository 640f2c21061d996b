package api

import (
	"log/slog"
	"net/http"

	"github.com/openswap/barter-api/internal/api/shared"
	"github.com/openswap/barter-api/internal/service"
)

// UserHandler handles user profile HTTP requests.
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService, log *slog.Logger) *UserHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}

	return &UserHandler{
		userService: userService,
		logger:      log.With(slog.String("component", "user_handler")),
	}
}

// GetUser handles GET /users/{id} requests. Email is included only when
// users fetch their own profile.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	identity, _ := getIdentityFromContext(r)
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user, identity.ID == user.ID))
}

// GetCurrentUser handles GET /users/me requests.
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.userService.GetUser(r.Context(), identity.ID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user, true))
}
