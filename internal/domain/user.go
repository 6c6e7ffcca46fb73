// Package domain contains the core business entities for the Connectify user
// API. These are pure Go structs with no external service dependencies,
// representing the fundamental concepts of the account system.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Gender is the self-reported gender of a user.
type Gender string

// Supported gender values.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is one of the supported gender values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// User represents a confirmed, registered user in the system.
// A User row only ever comes into existence through a completed
// signup/confirm flow; unconfirmed candidates live in session storage
// as a PendingRegistration.
type User struct {
	// ID is the stable, opaque identifier for the user.
	ID uuid.UUID `json:"id"`

	// FirstName and LastName are display names, 2-255 characters each.
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// Username is globally unique, 1-255 characters.
	Username string `json:"username"`

	// Email is globally unique.
	Email string `json:"email"`

	// Gender is one of male, female, other.
	Gender Gender `json:"gender"`

	// PasswordHash is the bcrypt hash of the user's password.
	// The plaintext is never persisted and the hash is never exposed
	// in API responses.
	PasswordHash string `json:"-"`

	// IsAdmin indicates administrative privileges.
	IsAdmin bool `json:"is_admin"`

	// AvatarURL is the public URL of the user's profile picture, if any.
	AvatarURL string `json:"avatar_url,omitempty"`

	// ResetToken and ResetTokenExpiresAt hold an outstanding
	// password-reset token. Both are nil when no reset is in flight.
	ResetToken          *string    `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a confirmed User from candidate fields and a password hash.
func NewUser(firstName, lastName, username, email string, gender Gender, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		FirstName:    firstName,
		LastName:     lastName,
		Username:     username,
		Email:        email,
		Gender:       gender,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasValidResetToken reports whether the user's reset token matches token
// and has not expired.
func (u *User) HasValidResetToken(token string, now time.Time) bool {
	if u.ResetToken == nil || u.ResetTokenExpiresAt == nil {
		return false
	}
	return *u.ResetToken == token && now.Before(*u.ResetTokenExpiresAt)
}

// PublicProfile is the user representation returned by the API.
type PublicProfile struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Gender    Gender    `json:"gender"`
	IsAdmin   bool      `json:"is_admin"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns the externally visible fields of the user.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Email:     u.Email,
		Gender:    u.Gender,
		IsAdmin:   u.IsAdmin,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}
