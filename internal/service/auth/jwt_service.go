package auth

import (
	"context"
	"time"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed JWT access token carrying the user's
	// identity. Returns the token string or an error if signing fails.
	GenerateToken(ctx context.Context, userID int64, username string) (string, error)

	// ValidateToken validates the provided token string and extracts the
	// claims. Returns an error if validation fails (expired, invalid
	// signature, malformed).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the identity carried by a validated token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID int64 `json:"uid"`

	// Username is carried for display so handlers can build an identity
	// without a user lookup.
	Username string `json:"username,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
