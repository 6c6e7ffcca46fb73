package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/auth"
	"github.com/connectify/user-api/internal/domain"
	"github.com/connectify/user-api/internal/pkg/crypto"
	"github.com/connectify/user-api/internal/ratelimit"
	"github.com/connectify/user-api/internal/repository"
)

// LoginService authenticates users and issues access tokens. Every failed
// attempt feeds the per-IP lockout tracker; a locked IP is rejected before
// credentials are even examined.
type LoginService struct {
	users   repository.UserRepository
	lockout *ratelimit.Lockout
	tokens  *auth.TokenManager
	logger  zerolog.Logger
}

// NewLoginService creates a new LoginService.
func NewLoginService(
	users repository.UserRepository,
	lockout *ratelimit.Lockout,
	tokens *auth.TokenManager,
	logger zerolog.Logger,
) *LoginService {
	return &LoginService{
		users:   users,
		lockout: lockout,
		tokens:  tokens,
		logger:  logger.With().Str("service", "login").Logger(),
	}
}

// LoginOutput contains the issued access token and the authenticated user.
type LoginOutput struct {
	AccessToken string
	User        *domain.User
}

// Login verifies credentials for an identifier that may be a username or an
// email (an identifier containing "@" and "." is treated as an email) and
// issues an access token. Unknown identifier and wrong password are reported
// with the same error so accounts cannot be enumerated, but both count as
// failures toward the IP's lockout. A successful login clears the IP's
// failure state.
func (s *LoginService) Login(ctx context.Context, clientIP, usernameOrEmail, password string) (*LoginOutput, error) {
	locked, err := s.lockout.IsLocked(ctx, clientIP)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check lockout")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if locked {
		return nil, domain.ErrLockedOut
	}

	user, err := s.findUser(ctx, usernameOrEmail)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		s.logger.Error().Err(err).Msg("failed to look up user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	// A found user with a wrong password and a missing user take the same
	// path from here on.
	if user == nil || !crypto.VerifyPassword(user.PasswordHash, password) {
		return nil, s.recordFailure(ctx, clientIP)
	}

	if err := s.lockout.Clear(ctx, clientIP); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear lockout state")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to issue token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Msg("login succeeded")

	return &LoginOutput{
		AccessToken: token,
		User:        user,
	}, nil
}

// findUser resolves the identifier to a user. Returns domain.ErrUserNotFound
// when no account matches.
func (s *LoginService) findUser(ctx context.Context, usernameOrEmail string) (*domain.User, error) {
	if strings.Contains(usernameOrEmail, "@") && strings.Contains(usernameOrEmail, ".") {
		return s.users.GetByEmail(ctx, usernameOrEmail)
	}
	return s.users.GetByUsername(ctx, usernameOrEmail)
}

// recordFailure counts the failed attempt and returns either the generic
// credentials error or, when this failure crossed the threshold, the
// lockout error.
func (s *LoginService) recordFailure(ctx context.Context, clientIP string) error {
	lockedNow, err := s.lockout.RecordFailure(ctx, clientIP)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to record login failure")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if lockedNow {
		return domain.ErrLockedOut
	}
	return domain.ErrInvalidCredentials
}
