// Package repository defines data access interfaces for the Connectify user API.
// These interfaces abstract database operations, allowing for different
// implementations (PostgreSQL, SQLite, in-memory mocks for testing) while
// keeping the service layer clean.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/connectify/user-api/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
//
// Uniqueness of username and email is enforced by the storage layer:
// Create returns domain.ErrDuplicateUser when a constraint rejects the row.
// Callers may pre-check with ExistsBy* for early validation errors, but the
// insert is the authoritative check.
type UserRepository interface {
	// Create inserts a new user. Returns domain.ErrDuplicateUser when the
	// username or email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByResetToken retrieves a user by an outstanding password-reset token.
	GetByResetToken(ctx context.Context, token string) (*domain.User, error)

	// Update updates an existing user. Returns domain.ErrDuplicateUser when
	// a username change collides with an existing row.
	Update(ctx context.Context, user *domain.User) error

	// ExistsByUsername checks if a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// =============================================================================
// Friendship Repository
// =============================================================================

// FriendshipRepository defines the interface for friendship data access.
type FriendshipRepository interface {
	// Create inserts a new pending friendship request.
	// Returns domain.ErrFriendshipExists when a request between the two
	// users already exists in either direction.
	Create(ctx context.Context, f *domain.Friendship) error

	// GetByID retrieves a friendship by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Friendship, error)

	// UpdateStatus transitions a friendship request to the given status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FriendshipStatus) error

	// ListFriends returns the accepted friendships of a user, from either
	// direction, joined with the counterpart's public fields.
	ListFriends(ctx context.Context, userID uuid.UUID) ([]*domain.Friend, error)

	// ListPending returns pending requests involving the user, both sent
	// and received.
	ListPending(ctx context.Context, userID uuid.UUID) ([]*domain.Friendship, error)
}
