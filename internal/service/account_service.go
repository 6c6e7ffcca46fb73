package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/domain"
	"github.com/connectify/user-api/internal/pkg/crypto"
	"github.com/connectify/user-api/internal/repository"
	"github.com/connectify/user-api/internal/storage"
	"github.com/connectify/user-api/internal/validate"
)

// ErrUnsupportedImageType indicates the avatar upload is not a supported
// image format.
var ErrUnsupportedImageType = errors.New("unsupported image type, use JPEG or PNG")

// AccountService covers account management outside the request/login hot
// path: avatar images and administrative account creation.
type AccountService struct {
	users      repository.UserRepository
	avatars    storage.Backend
	bcryptCost int
	logger     zerolog.Logger
}

// NewAccountService creates a new AccountService. avatars may be nil when no
// storage backend is configured; avatar operations then fail cleanly.
func NewAccountService(
	users repository.UserRepository,
	avatars storage.Backend,
	bcryptCost int,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		users:      users,
		avatars:    avatars,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("service", "account").Logger(),
	}
}

// ErrAvatarsDisabled indicates no avatar storage backend is configured.
var ErrAvatarsDisabled = errors.New("avatar storage is not configured")

// UploadAvatar stores a new avatar image for the user and records its URL.
func (s *AccountService) UploadAvatar(ctx context.Context, userID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error) {
	if s.avatars == nil {
		return "", ErrAvatarsDisabled
	}

	switch contentType {
	case "image/jpeg", "image/png":
	default:
		return "", ErrUnsupportedImageType
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Msg("failed to get user")
		return "", fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	key := "avatars/" + userID.String()
	url, err := s.avatars.Store(ctx, key, reader, size, contentType)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to store avatar")
		return "", fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user.AvatarURL = url
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Msg("failed to record avatar url")
		return "", fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Msg("avatar uploaded")

	return url, nil
}

// RemoveAvatar deletes the user's avatar, if any.
func (s *AccountService) RemoveAvatar(ctx context.Context, userID uuid.UUID) error {
	if s.avatars == nil {
		return ErrAvatarsDisabled
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Msg("failed to get user")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if user.AvatarURL == "" {
		return nil
	}

	if err := s.avatars.Delete(ctx, "avatars/"+userID.String()); err != nil {
		s.logger.Error().Err(err).Msg("failed to delete avatar")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user.AvatarURL = ""
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear avatar url")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return nil
}

// CreateAdminInput contains the fields for administrative account creation.
// Used by the admin CLI; bypasses email confirmation but not validation.
type CreateAdminInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Gender    domain.Gender
	Password  string
}

// CreateAdmin creates a confirmed admin account directly.
func (s *AccountService) CreateAdmin(ctx context.Context, input CreateAdminInput) (*domain.User, error) {
	if msg := validate.Password(input.Password); msg != "" {
		return nil, validate.FieldErrors{"password": msg}
	}
	if !input.Gender.Valid() {
		return nil, validate.FieldErrors{"gender": "Must be one of: male, female, other."}
	}

	hash, err := crypto.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user := domain.NewUser(input.FirstName, input.LastName, input.Username, input.Email, input.Gender, hash)
	user.IsAdmin = true

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return nil, domain.ErrDuplicateUser
		}
		s.logger.Error().Err(err).Msg("failed to create admin")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Msg("admin account created")

	return user, nil
}

// PromoteAdmin grants admin privileges to an existing user by username.
func (s *AccountService) PromoteAdmin(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if user.IsAdmin {
		return user, nil
	}

	user.IsAdmin = true
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Msg("failed to promote user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Msg("user promoted to admin")

	return user, nil
}
