package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openswap/barter-api/internal/service/auth"
)

// stubJWTService resolves a fixed set of tokens to claims.
type stubJWTService struct {
	tokens map[string]*auth.Claims
	errs   map[string]error
}

func (s *stubJWTService) GenerateToken(ctx context.Context, userID int64, username string) (string, error) {
	return "unused", nil
}

func (s *stubJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if err, ok := s.errs[token]; ok {
		return nil, err
	}
	if claims, ok := s.tokens[token]; ok {
		return claims, nil
	}
	return nil, auth.ErrInvalidToken
}

func newStubMiddleware() *AuthMiddleware {
	return NewAuthMiddleware(&stubJWTService{
		tokens: map[string]*auth.Claims{
			"good-token": {UserID: 42, Username: "alice"},
		},
		errs: map[string]error{
			"stale-token": auth.ErrExpiredToken,
		},
	})
}

// echoIdentity writes whether an identity reached the handler.
func echoIdentity(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := GetIdentity(r)
		if !ok {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("anonymous"))
			return
		}
		assert.Equal(t, "alice", identity.Username)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("authenticated"))
	})
}

func TestAuthenticate(t *testing.T) {
	m := newStubMiddleware()

	t.Run("valid token reaches the handler with identity", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/posts", nil)
		r.Header.Set("Authorization", "Bearer good-token")
		w := httptest.NewRecorder()

		m.Authenticate(echoIdentity(t)).ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "authenticated", w.Body.String())
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/posts", nil)
		w := httptest.NewRecorder()

		m.Authenticate(echoIdentity(t)).ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Authorization header required")
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		for _, header := range []string{"good-token", "Basic good-token", "Bearer"} {
			r := httptest.NewRequest("GET", "/posts", nil)
			r.Header.Set("Authorization", header)
			w := httptest.NewRecorder()

			m.Authenticate(echoIdentity(t)).ServeHTTP(w, r)

			assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		}
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/posts", nil)
		r.Header.Set("Authorization", "Bearer stale-token")
		w := httptest.NewRecorder()

		m.Authenticate(echoIdentity(t)).ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Token expired")
	})
}

func TestMaybeAuthenticate(t *testing.T) {
	m := newStubMiddleware()

	t.Run("anonymous request passes through", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/posts", nil)
		w := httptest.NewRecorder()

		m.MaybeAuthenticate(echoIdentity(t)).ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "anonymous", w.Body.String())
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/posts", nil)
		r.Header.Set("Authorization", "Bearer good-token")
		w := httptest.NewRecorder()

		m.MaybeAuthenticate(echoIdentity(t)).ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "authenticated", w.Body.String())
	})

	t.Run("present but invalid token still fails", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/posts", nil)
		r.Header.Set("Authorization", "Bearer bogus")
		w := httptest.NewRecorder()

		m.MaybeAuthenticate(echoIdentity(t)).ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
