package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/domain"
	"github.com/connectify/user-api/internal/repository"
	"github.com/connectify/user-api/internal/validate"
)

// UserService handles profile reads and partial profile updates.
type UserService struct {
	users       repository.UserRepository
	friendships repository.FriendshipRepository
	validator   *validate.Validator
	logger      zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	users repository.UserRepository,
	friendships repository.FriendshipRepository,
	validator *validate.Validator,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		users:       users,
		friendships: friendships,
		validator:   validator,
		logger:      logger.With().Str("service", "user").Logger(),
	}
}

// ProfileOutput is the user's own profile with their accepted friends.
type ProfileOutput struct {
	User    *domain.User
	Friends []*domain.Friend
}

// Profile returns the user's profile together with their friend list.
func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*ProfileOutput, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	friends, err := s.friendships.ListFriends(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list friends")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &ProfileOutput{
		User:    user,
		Friends: friends,
	}, nil
}

// UpdateProfile applies a partial update to the user's own profile. Fields
// left nil in the input are untouched. A username change that collides with
// an existing account is reported as a field error.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input validate.UpdateProfileInput) (*domain.User, error) {
	fieldErrs := s.validator.UpdateProfile(input)
	if fieldErrs != nil {
		return nil, fieldErrs
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Gender != nil {
		user.Gender = domain.Gender(*input.Gender)
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return nil, validate.FieldErrors{"username": msgUsernameTaken}
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Msg("failed to update user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Msg("profile updated")

	return user, nil
}
