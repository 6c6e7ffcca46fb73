package domain

import (
	"time"

	"github.com/google/uuid"
)

// FriendshipStatus is the state of a friendship request.
type FriendshipStatus string

// Friendship states. A request starts pending and is either accepted or
// rejected by the requestee; only accepted rows count as friends.
const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipRejected FriendshipStatus = "rejected"
)

// ValidFriendshipStatus reports whether s is a status a requestee may set.
func ValidFriendshipStatus(s FriendshipStatus) bool {
	return s == FriendshipAccepted || s == FriendshipRejected
}

// Friendship is a directed relation from the requesting user to the
// requested user. The (requester, requestee) pair is unique.
type Friendship struct {
	ID        uuid.UUID        `json:"id"`
	Requester uuid.UUID        `json:"requester"`
	Requestee uuid.UUID        `json:"requestee"`
	Status    FriendshipStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewFriendship creates a pending friendship request.
func NewFriendship(requester, requestee uuid.UUID) *Friendship {
	now := time.Now().UTC()
	return &Friendship{
		ID:        uuid.New(),
		Requester: requester,
		Requestee: requestee,
		Status:    FriendshipPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Friend is the view of an accepted friendship from one user's side.
type Friend struct {
	FriendshipID uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"friend_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Username     string    `json:"username"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Since        time.Time `json:"since"`
}
