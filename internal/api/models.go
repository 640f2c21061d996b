package api

import (
	"time"

	"github.com/openswap/barter-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=2,max=32"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`

	// Token is the JWT bearer token for subsequent requests
	Token string `json:"token"`

	// ExpiresAt is the ISO 8601 timestamp when the token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// ItemPayload is the wire form of an item inside post and offer bodies.
// Normalization (dropping unnamed items, defaulting condition and
// quantity) happens in the domain layer.
type ItemPayload struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Condition   string  `json:"condition,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Quantity    int     `json:"quantity,omitempty"`
}

// toDomain converts the payload to a domain item.
func (p ItemPayload) toDomain() domain.Item {
	return domain.Item{
		Name:        p.Name,
		Description: p.Description,
		Condition:   p.Condition,
		ImageURL:    p.ImageURL,
		Quantity:    p.Quantity,
	}
}

// itemsToDomain converts a payload slice, preserving nil-ness so handlers
// can distinguish "absent" from "empty".
func itemsToDomain(payloads []ItemPayload) []domain.Item {
	if payloads == nil {
		return nil
	}
	items := make([]domain.Item, 0, len(payloads))
	for _, p := range payloads {
		items = append(items, p.toDomain())
	}
	return items
}

// CreatePostRequest defines the payload for creating a post.
type CreatePostRequest struct {
	Title       string        `json:"title"       validate:"required,min=1,max=200"`
	Description string        `json:"description" validate:"max=5000"`
	CategoryID  *int64        `json:"category_id"`
	Items       []ItemPayload `json:"items"       validate:"required,min=1"`
}

// UpdatePostRequest defines the payload for editing a post. Absent fields
// are left untouched; category_id is tri-state so an explicit null clears
// the link.
type UpdatePostRequest struct {
	Title       *string     `json:"title"       validate:"omitempty,min=1,max=200"`
	Description *string     `json:"description" validate:"omitempty,max=5000"`
	CategoryID  OptionalID  `json:"category_id"`
	Status      *string     `json:"status"      validate:"omitempty,oneof=open closed"`
}

// CreateOfferRequest defines the payload for making an offer on a post.
// Items and child_post_id are mutually exclusive consideration modes.
type CreateOfferRequest struct {
	Message     string        `json:"message"       validate:"max=5000"`
	Items       []ItemPayload `json:"items"`
	ChildPostID *int64        `json:"child_post_id"`
}

// UpdateOfferRequest defines the payload for editing a pending offer.
// Absent fields are untouched; an explicit null child_post_id clears the
// link, and an items array replaces the item list wholesale.
type UpdateOfferRequest struct {
	Message     *string        `json:"message" validate:"omitempty,max=5000"`
	Items       *[]ItemPayload `json:"items"`
	ChildPostID OptionalID     `json:"child_post_id"`
}

// UserResponse is the public profile projection. The password hash never
// appears here.
type UserResponse struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email,omitempty"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty"`
	Location        *string   `json:"location,omitempty"`
	Bio             *string   `json:"bio,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// userToResponse converts a domain user to its public projection.
// includeEmail is set only when the user is viewing their own profile.
func userToResponse(u *domain.User, includeEmail bool) UserResponse {
	resp := UserResponse{
		ID:              u.ID,
		Username:        u.Username,
		ProfileImageURL: u.ProfileImageURL,
		Location:        u.Location,
		Bio:             u.Bio,
		CreatedAt:       u.CreatedAt,
	}
	if includeEmail {
		resp.Email = u.Email
	}
	return resp
}

// ListResponse wraps a paginated collection with its total count.
type ListResponse struct {
	Data  interface{} `json:"data"`
	Total int         `json:"total"`
}
