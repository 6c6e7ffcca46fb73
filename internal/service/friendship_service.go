package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/domain"
	"github.com/connectify/user-api/internal/repository"
)

// FriendshipService handles friend requests between users.
type FriendshipService struct {
	friendships repository.FriendshipRepository
	users       repository.UserRepository
	logger      zerolog.Logger
}

// NewFriendshipService creates a new FriendshipService.
func NewFriendshipService(
	friendships repository.FriendshipRepository,
	users repository.UserRepository,
	logger zerolog.Logger,
) *FriendshipService {
	return &FriendshipService{
		friendships: friendships,
		users:       users,
		logger:      logger.With().Str("service", "friendship").Logger(),
	}
}

// SendRequest creates a pending friendship request to the given username.
func (s *FriendshipService) SendRequest(ctx context.Context, requester uuid.UUID, requesteeUsername string) (*domain.Friendship, error) {
	requestee, err := s.users.GetByUsername(ctx, requesteeUsername)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Msg("failed to resolve requestee")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if requestee.ID == requester {
		return nil, domain.ErrSelfFriendship
	}

	friendship := domain.NewFriendship(requester, requestee.ID)
	if err := s.friendships.Create(ctx, friendship); err != nil {
		if errors.Is(err, domain.ErrFriendshipExists) {
			return nil, domain.ErrFriendshipExists
		}
		s.logger.Error().Err(err).Msg("failed to create friendship request")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("requester", requester.String()).
		Str("requestee", requestee.ID.String()).
		Msg("friendship request sent")

	return friendship, nil
}

// Respond lets the requestee accept or reject a pending request. Only the
// requestee of a pending request may respond.
func (s *FriendshipService) Respond(ctx context.Context, userID, friendshipID uuid.UUID, status domain.FriendshipStatus) (*domain.Friendship, error) {
	if !domain.ValidFriendshipStatus(status) {
		return nil, domain.ErrFriendshipNotFound
	}

	friendship, err := s.friendships.GetByID(ctx, friendshipID)
	if err != nil {
		if errors.Is(err, domain.ErrFriendshipNotFound) {
			return nil, domain.ErrFriendshipNotFound
		}
		s.logger.Error().Err(err).Msg("failed to get friendship")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if friendship.Requestee != userID || friendship.Status != domain.FriendshipPending {
		return nil, domain.ErrFriendshipNotFound
	}

	if err := s.friendships.UpdateStatus(ctx, friendshipID, status); err != nil {
		if errors.Is(err, domain.ErrFriendshipNotFound) {
			return nil, domain.ErrFriendshipNotFound
		}
		s.logger.Error().Err(err).Msg("failed to update friendship")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	friendship.Status = status

	s.logger.Info().
		Str("friendship_id", friendshipID.String()).
		Str("status", string(status)).
		Msg("friendship request answered")

	return friendship, nil
}

// Friends returns the user's accepted friendships.
func (s *FriendshipService) Friends(ctx context.Context, userID uuid.UUID) ([]*domain.Friend, error) {
	friends, err := s.friendships.ListFriends(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list friends")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return friends, nil
}

// PendingRequests returns pending requests involving the user.
func (s *FriendshipService) PendingRequests(ctx context.Context, userID uuid.UUID) ([]*domain.Friendship, error) {
	pending, err := s.friendships.ListPending(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list pending requests")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return pending, nil
}
