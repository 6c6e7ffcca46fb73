package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/connectify/user-api/internal/domain"
	"github.com/connectify/user-api/internal/repository"
)

// userRepository implements repository.UserRepository for SQLite.
type userRepository struct {
	db *DB
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, first_name, last_name, username, email, gender, password_hash,
	is_admin, avatar_url, reset_token, reset_token_expires_at, created_at, updated_at`

// Create inserts a new user. The UNIQUE constraints on username and email are
// the authoritative uniqueness check for the registration flow.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID.String(),
		user.FirstName,
		user.LastName,
		user.Username,
		user.Email,
		string(user.Gender),
		user.PasswordHash,
		boolToInt(user.IsAdmin),
		user.AvatarURL,
		user.ResetToken,
		formatNullableTime(user.ResetTokenExpiresAt),
		user.CreatedAt.Format(time.RFC3339),
		user.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id.String()))
}

// GetByUsername retrieves a user by username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

// GetByEmail retrieves a user by email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetByResetToken retrieves a user by an outstanding password-reset token.
func (r *userRepository) GetByResetToken(ctx context.Context, token string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, token))
}

// Update updates an existing user.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET first_name = ?, last_name = ?, username = ?, email = ?, gender = ?,
		    password_hash = ?, is_admin = ?, avatar_url = ?, reset_token = ?,
		    reset_token_expires_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Username,
		user.Email,
		string(user.Gender),
		user.PasswordHash,
		boolToInt(user.IsAdmin),
		user.AvatarURL,
		user.ResetToken,
		formatNullableTime(user.ResetTokenExpiresAt),
		user.UpdatedAt.Format(time.RFC3339),
		user.ID.String(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateUser
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// ExistsByUsername checks if a user with the given username exists.
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, username,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return count > 0, nil
}

// ExistsByEmail checks if a user with the given email exists.
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, email,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return count > 0, nil
}

// scanUser scans a single user row.
func (r *userRepository) scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	var id, gender string
	var isAdmin int
	var resetToken, resetExpires sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&id,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.Email,
		&gender,
		&user.PasswordHash,
		&isAdmin,
		&user.AvatarURL,
		&resetToken,
		&resetExpires,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("corrupt user id %q: %w", id, err)
	}
	user.Gender = domain.Gender(gender)
	user.IsAdmin = isAdmin != 0
	if resetToken.Valid {
		user.ResetToken = &resetToken.String
	}
	if resetExpires.Valid {
		if t, err := time.Parse(time.RFC3339, resetExpires.String); err == nil {
			user.ResetTokenExpiresAt = &t
		}
	}
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	user.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return user, nil
}

// boolToInt converts a bool to a SQLite integer.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// formatNullableTime formats a nullable time as RFC3339 or nil.
func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
