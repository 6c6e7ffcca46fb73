package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/connectify/user-api/internal/domain"
	"github.com/connectify/user-api/internal/repository"
)

// friendshipRepository implements repository.FriendshipRepository for SQLite.
type friendshipRepository struct {
	db *DB
}

// NewFriendshipRepository creates a new SQLite friendship repository.
func NewFriendshipRepository(db *DB) repository.FriendshipRepository {
	return &friendshipRepository{db: db}
}

// Create inserts a new pending friendship request. A request in the opposite
// direction also counts as existing.
func (r *friendshipRepository) Create(ctx context.Context, f *domain.Friendship) error {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM friendships
		WHERE (requester_id = ? AND requestee_id = ?)
		   OR (requester_id = ? AND requestee_id = ?)
	`, f.Requester.String(), f.Requestee.String(), f.Requestee.String(), f.Requester.String()).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check existing friendship: %w", err)
	}
	if count > 0 {
		return domain.ErrFriendshipExists
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO friendships (id, requester_id, requestee_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		f.ID.String(),
		f.Requester.String(),
		f.Requestee.String(),
		string(f.Status),
		f.CreatedAt.Format(time.RFC3339),
		f.UpdatedAt.Format(time.RFC3339),
	)
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
	row := r.db.QueryRowContext(ctx, `
		SELECT id, requester_id, requestee_id, status, created_at, updated_at
		FROM friendships
		WHERE id = ?
	`, id.String())

	f := &domain.Friendship{}
	var fid, requester, requestee, status, createdAt, updatedAt string
	if err := row.Scan(&fid, &requester, &requestee, &status, &createdAt, &updatedAt); err != nil {
		if isNoRows(err) {
			return nil, domain.ErrFriendshipNotFound
		}
		return nil, fmt.Errorf("failed to get friendship: %w", err)
	}

	var err error
	if f.ID, err = uuid.Parse(fid); err != nil {
		return nil, fmt.Errorf("corrupt friendship id %q: %w", fid, err)
	}
	if f.Requester, err = uuid.Parse(requester); err != nil {
		return nil, fmt.Errorf("corrupt requester id %q: %w", requester, err)
	}
	if f.Requestee, err = uuid.Parse(requestee); err != nil {
		return nil, fmt.Errorf("corrupt requestee id %q: %w", requestee, err)
	}
	f.Status = domain.FriendshipStatus(status)
	f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	f.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return f, nil
}

// UpdateStatus transitions a friendship request to the given status.
func (r *friendshipRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FriendshipStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE friendships SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), time.Now().UTC().Format(time.RFC3339), id.String())
	if err != nil {
		return fmt.Errorf("failed to update friendship status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrFriendshipNotFound
	}

	return nil
}

// ListFriends returns the accepted friendships of a user joined with the
// counterpart's public fields.
func (r *friendshipRepository) ListFriends(ctx context.Context, userID uuid.UUID) ([]*domain.Friend, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT f.id, u.id, u.first_name, u.last_name, u.username, u.avatar_url, f.updated_at
		FROM friendships f
		JOIN users u ON u.id = CASE
			WHEN f.requester_id = ? THEN f.requestee_id
			ELSE f.requester_id
		END
		WHERE (f.requester_id = ? OR f.requestee_id = ?)
		  AND f.status = 'accepted'
		ORDER BY f.updated_at
	`, userID.String(), userID.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []*domain.Friend
	for rows.Next() {
		var fid, uid, since string
		friend := &domain.Friend{}
		if err := rows.Scan(&fid, &uid, &friend.FirstName, &friend.LastName,
			&friend.Username, &friend.AvatarURL, &since); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		if friend.FriendshipID, err = uuid.Parse(fid); err != nil {
			return nil, fmt.Errorf("corrupt friendship id %q: %w", fid, err)
		}
		if friend.UserID, err = uuid.Parse(uid); err != nil {
			return nil, fmt.Errorf("corrupt user id %q: %w", uid, err)
		}
		friend.Since, _ = time.Parse(time.RFC3339, since)
		friends = append(friends, friend)
	}

	return friends, rows.Err()
}

// ListPending returns pending requests involving the user.
func (r *friendshipRepository) ListPending(ctx context.Context, userID uuid.UUID) ([]*domain.Friendship, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, requester_id, requestee_id, status, created_at, updated_at
		FROM friendships
		WHERE (requester_id = ? OR requestee_id = ?) AND status = 'pending'
		ORDER BY created_at
	`, userID.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list pending friendships: %w", err)
	}
	defer rows.Close()

	var result []*domain.Friendship
	for rows.Next() {
		f := &domain.Friendship{}
		var fid, requester, requestee, status, createdAt, updatedAt string
		if err := rows.Scan(&fid, &requester, &requestee, &status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friendship: %w", err)
		}
		if f.ID, err = uuid.Parse(fid); err != nil {
			return nil, fmt.Errorf("corrupt friendship id %q: %w", fid, err)
		}
		if f.Requester, err = uuid.Parse(requester); err != nil {
			return nil, fmt.Errorf("corrupt requester id %q: %w", requester, err)
		}
		if f.Requestee, err = uuid.Parse(requestee); err != nil {
			return nil, fmt.Errorf("corrupt requestee id %q: %w", requestee, err)
		}
		f.Status = domain.FriendshipStatus(status)
		f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		f.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		result = append(result, f)
	}

	return result, rows.Err()
}
