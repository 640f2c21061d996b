package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/openswap/barter-api/internal/api/shared"
	"github.com/openswap/barter-api/internal/domain"
	"github.com/openswap/barter-api/internal/redact"
	"github.com/openswap/barter-api/internal/service/auth"
)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// Authenticate validates the bearer token from the Authorization header
// and adds the caller's identity to the request context. Requests without
// a valid token are rejected.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := m.identityFromRequest(r)
		if err != nil {
			m.respondUnauthorized(w, r, err)
			return
		}

		ctx := shared.WithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MaybeAuthenticate resolves the caller's identity when a bearer token is
// present but lets anonymous requests through. Read-only endpoints use it
// so listings work without an account while a present-but-bad token still
// fails loudly.
func (m *AuthMiddleware) MaybeAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := m.identityFromRequest(r)
		if err != nil {
			m.respondUnauthorized(w, r, err)
			return
		}

		ctx := shared.WithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// identityFromRequest extracts and validates the bearer token, returning
// the identity it carries.
func (m *AuthMiddleware) identityFromRequest(r *http.Request) (domain.Identity, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return domain.Identity{}, auth.ErrMissingToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return domain.Identity{}, auth.ErrInvalidToken
	}

	claims, err := m.jwtService.ValidateToken(r.Context(), parts[1])
	if err != nil {
		return domain.Identity{}, err
	}

	return domain.Identity{ID: claims.UserID, Username: claims.Username}, nil
}

func (m *AuthMiddleware) respondUnauthorized(w http.ResponseWriter, r *http.Request, err error) {
	switch err {
	case auth.ErrMissingToken:
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
	case auth.ErrExpiredToken:
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
	case auth.ErrInvalidToken, auth.ErrTokenNotYetValid:
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
	default:
		slog.Error("failed to validate token", "error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
	}
}

// GetIdentity extracts the authenticated identity from the request context.
// Returns the identity and a boolean indicating if it was found.
func GetIdentity(r *http.Request) (domain.Identity, bool) {
	return shared.IdentityFromContext(r.Context())
}
