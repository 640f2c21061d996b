package domain

import (
	"fmt"
	"net/mail"
	"time"
)

// User-specific validation errors
var (
	ErrEmptyUsername = fmt.Errorf("%w: username cannot be empty", ErrValidation)
	ErrEmptyEmail    = fmt.Errorf("%w: email cannot be empty", ErrValidation)
	ErrEmptyPassword = fmt.Errorf("%w: password cannot be empty", ErrInvalidPassword)
	ErrShortPassword = fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidPassword)
)

// User represents a registered account. The password hash never leaves the
// persistence layer through this struct's JSON form.
type User struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	HashedPassword  string    `json:"-"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty"`
	Location        *string   `json:"location,omitempty"`
	Bio             *string   `json:"bio,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Identity is the resolved acting user attached to an authenticated request.
// It is all the core needs to authorize an operation.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// NewUser creates a User from registration input. The password is carried
// in plaintext only as far as the service layer, which hashes it before
// the entity is persisted.
func NewUser(username, email string) (*User, error) {
	u := &User{
		Username:  username,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.Username == "" {
		return ErrEmptyUsername
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePassword checks a plaintext password against the domain's
// minimum requirements before it is hashed.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}

	if len(password) < 8 {
		return ErrShortPassword
	}

	return nil
}
