package shared

import (
	"context"

	"github.com/google/uuid"

	"github.com/openswap/barter-api/internal/domain"
)

// Key type for context values
type ContextKey string

// Context keys for various values
const (
	// IdentityContextKey is the context key for the authenticated identity
	IdentityContextKey ContextKey = "identity"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"
)

// SetTraceID adds a fresh trace ID to the context for correlating logs
// and error responses.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, uuid.New().String())
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, identity)
}

// IdentityFromContext retrieves the authenticated identity from the
// context. The boolean reports whether a request was authenticated;
// read-only endpoints treat its absence as an anonymous caller.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(domain.Identity)
	return identity, ok
}
