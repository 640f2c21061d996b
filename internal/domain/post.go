package domain

import (
	"fmt"
	"strings"
	"time"
)

// PostStatus represents the lifecycle state of a post.
type PostStatus string

// Possible post status values
const (
	PostStatusOpen    PostStatus = "open"
	PostStatusTrading PostStatus = "trading"
	PostStatusTraded  PostStatus = "traded"
	PostStatusClosed  PostStatus = "closed"
)

// DefaultItemCondition is assigned to items created without an explicit
// condition, so the schema's NOT NULL constraint never trips.
const DefaultItemCondition = "unspecified"

// Post-specific validation errors
var (
	ErrEmptyPostTitle    = fmt.Errorf("%w: post title cannot be empty", ErrValidation)
	ErrEmptyPostAuthor   = fmt.Errorf("%w: post author ID cannot be empty", ErrValidation)
	ErrPostWithoutItems  = fmt.Errorf("%w: post must list at least one item", ErrValidation)
	ErrEmptyItemName     = fmt.Errorf("%w: item name cannot be empty", ErrValidation)
	ErrInvalidItemAmount = fmt.Errorf("%w: item quantity must be positive", ErrValidation)
)

// Post is a listing of one or more items a user wants to trade away.
// It is owned exclusively by its author and is mutated only through
// owner-authorized operations or by offer settlement.
type Post struct {
	ID          int64      `json:"id"`
	AuthorID    int64      `json:"author_id"`
	CategoryID  *int64     `json:"category_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      PostStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Items       []Item     `json:"items,omitempty"`

	// AuthorName is a display-only denormalization, populated by read
	// queries that join the author. It is never written back.
	AuthorName string `json:"username,omitempty"`
}

// Item is a physical thing attached to either a post or an offer.
// It lives and dies with its parent.
type Item struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Condition   string  `json:"condition"`
	ImageURL    *string `json:"image_url,omitempty"`
	Quantity    int     `json:"quantity"`
}

// NewPost creates an open Post with the given author, title, and items.
// Returns an error if validation fails.
func NewPost(authorID int64, title, description string, categoryID *int64, items []Item) (*Post, error) {
	now := time.Now().UTC()
	p := &Post{
		AuthorID:    authorID,
		CategoryID:  categoryID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      PostStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
		Items:       NormalizeItems(items),
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks if the Post has valid data.
// Returns an error if any field fails validation.
func (p *Post) Validate() error {
	if p.AuthorID == 0 {
		return ErrEmptyPostAuthor
	}

	if p.Title == "" {
		return ErrEmptyPostTitle
	}

	if len(p.Items) == 0 {
		return ErrPostWithoutItems
	}

	if err := validateItems(p.Items); err != nil {
		return err
	}

	if !isValidPostStatus(p.Status) {
		return ErrInvalidPostStatus
	}

	return nil
}

// Open reports whether the post still accepts offers.
func (p *Post) Open() bool {
	return p.Status == PostStatusOpen
}

// isValidPostStatus checks if the given status is a valid PostStatus.
func isValidPostStatus(status PostStatus) bool {
	switch status {
	case PostStatusOpen, PostStatusTrading, PostStatusTraded, PostStatusClosed:
		return true
	default:
		return false
	}
}

// validateItems rejects item rows that bypassed NormalizeItems.
func validateItems(items []Item) error {
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			return ErrEmptyItemName
		}
		if it.Quantity <= 0 {
			return ErrInvalidItemAmount
		}
	}
	return nil
}

// NormalizeItems cleans up caller-supplied items: entries without a usable
// name are dropped, names are trimmed, condition defaults to
// DefaultItemCondition, and non-positive quantities become 1. The returned
// slice is always non-nil.
func NormalizeItems(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}

		it.Name = name
		if strings.TrimSpace(it.Condition) == "" {
			it.Condition = DefaultItemCondition
		}
		if it.Quantity <= 0 {
			it.Quantity = 1
		}
		out = append(out, it)
	}
	return out
}
