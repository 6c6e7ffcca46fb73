package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/connectify/user-api/internal/domain"
	"github.com/connectify/user-api/internal/repository"
)

// friendshipRepository implements repository.FriendshipRepository for PostgreSQL.
type friendshipRepository struct {
	db *DB
}

// NewFriendshipRepository creates a new PostgreSQL friendship repository.
func NewFriendshipRepository(db *DB) repository.FriendshipRepository {
	return &friendshipRepository{db: db}
}

// Create inserts a new pending friendship request. A request in the opposite
// direction also counts as existing.
func (r *friendshipRepository) Create(ctx context.Context, f *domain.Friendship) error {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM friendships
			WHERE (requester_id = $1 AND requestee_id = $2)
			   OR (requester_id = $2 AND requestee_id = $1)
		)
	`, f.Requester, f.Requestee).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check existing friendship: %w", err)
	}
	if exists {
		return domain.ErrFriendshipExists
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO friendships (id, requester_id, requestee_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, f.ID, f.Requester, f.Requestee, string(f.Status), f.CreatedAt, f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrFriendshipExists
		}
		return fmt.Errorf("failed to create friendship: %w", err)
	}

	return nil
}

// GetByID retrieves a friendship by ID.
func (r *friendshipRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Friendship, error) {
	f := &domain.Friendship{}
	var status string
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, requester_id, requestee_id, status, created_at, updated_at
		FROM friendships
		WHERE id = $1
	`, id).Scan(&f.ID, &f.Requester, &f.Requestee, &status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrFriendshipNotFound
		}
		return nil, fmt.Errorf("failed to get friendship: %w", err)
	}

	f.Status = domain.FriendshipStatus(status)
	return f, nil
}

// UpdateStatus transitions a friendship request to the given status.
func (r *friendshipRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FriendshipStatus) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE friendships SET status = $1, updated_at = $2 WHERE id = $3
	`, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update friendship status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFriendshipNotFound
	}
	return nil
}

// ListFriends returns the accepted friendships of a user joined with the
// counterpart's public fields.
func (r *friendshipRepository) ListFriends(ctx context.Context, userID uuid.UUID) ([]*domain.Friend, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT f.id, u.id, u.first_name, u.last_name, u.username, u.avatar_url, f.updated_at
		FROM friendships f
		JOIN users u ON u.id = CASE
			WHEN f.requester_id = $1 THEN f.requestee_id
			ELSE f.requester_id
		END
		WHERE (f.requester_id = $1 OR f.requestee_id = $1)
		  AND f.status = 'accepted'
		ORDER BY f.updated_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []*domain.Friend
	for rows.Next() {
		friend := &domain.Friend{}
		if err := rows.Scan(&friend.FriendshipID, &friend.UserID, &friend.FirstName,
			&friend.LastName, &friend.Username, &friend.AvatarURL, &friend.Since); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, friend)
	}

	return friends, rows.Err()
}

// ListPending returns pending requests involving the user.
func (r *friendshipRepository) ListPending(ctx context.Context, userID uuid.UUID) ([]*domain.Friendship, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, requester_id, requestee_id, status, created_at, updated_at
		FROM friendships
		WHERE (requester_id = $1 OR requestee_id = $1) AND status = 'pending'
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending friendships: %w", err)
	}
	defer rows.Close()

	var result []*domain.Friendship
	for rows.Next() {
		f := &domain.Friendship{}
		var status string
		if err := rows.Scan(&f.ID, &f.Requester, &f.Requestee, &status,
			&f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friendship: %w", err)
		}
		f.Status = domain.FriendshipStatus(status)
		result = append(result, f)
	}

	return result, rows.Err()
}
