package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/domain"
	"github.com/connectify/user-api/internal/pkg/crypto"
	"github.com/connectify/user-api/internal/repository"
	"github.com/connectify/user-api/internal/validate"
)

// ResetMailer is the subset of mail.Sender the reset flow needs.
type ResetMailer interface {
	SendPasswordReset(to, firstName, token string) error
}

// PasswordResetService implements the forgot/reset flow. A reset token is
// stored on the user row with an expiry and emailed; presenting it with a
// new password replaces the hash and clears the token.
type PasswordResetService struct {
	users      repository.UserRepository
	mailer     ResetMailer
	tokenTTL   time.Duration
	bcryptCost int
	logger     zerolog.Logger
}

// NewPasswordResetService creates a new PasswordResetService.
func NewPasswordResetService(
	users repository.UserRepository,
	mailer ResetMailer,
	tokenTTL time.Duration,
	bcryptCost int,
	logger zerolog.Logger,
) *PasswordResetService {
	return &PasswordResetService{
		users:      users,
		mailer:     mailer,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("service", "password_reset").Logger(),
	}
}

// Forgot issues a reset token for the account with the given email and mails
// it. An unknown email is not an error to the caller, so the endpoint cannot
// be used to probe which addresses have accounts.
func (s *PasswordResetService) Forgot(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Info().Str("email", email).Msg("reset requested for unknown email")
			return nil
		}
		s.logger.Error().Err(err).Msg("failed to look up user")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	token, err := crypto.ResetToken()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to generate reset token")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	expiry := time.Now().UTC().Add(s.tokenTTL)
	user.ResetToken = &token
	user.ResetTokenExpiresAt = &expiry
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Msg("failed to store reset token")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.mailer.SendPasswordReset(user.Email, user.FirstName, token); err != nil {
		s.logger.Error().Err(err).Msg("failed to send reset email")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Msg("password reset token issued")

	return nil
}

// Reset replaces the password of the account holding the token. The new
// password must satisfy the same length bounds and composition policy as at
// signup. The token is single use; it is cleared whether or not it had
// expired.
func (s *PasswordResetService) Reset(ctx context.Context, token, newPassword string) error {
	if msg := validate.Password(newPassword); msg != "" {
		return validate.FieldErrors{"password": msg}
	}

	user, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrResetTokenInvalid
		}
		s.logger.Error().Err(err).Msg("failed to look up reset token")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if !user.HasValidResetToken(token, time.Now().UTC()) {
		// Expired token: clear it so it cannot linger.
		user.ResetToken = nil
		user.ResetTokenExpiresAt = nil
		user.UpdatedAt = time.Now().UTC()
		if err := s.users.Update(ctx, user); err != nil {
			s.logger.Warn().Err(err).Msg("failed to clear expired reset token")
		}
		return domain.ErrResetTokenInvalid
	}

	hash, err := crypto.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user.PasswordHash = hash
	user.ResetToken = nil
	user.ResetTokenExpiresAt = nil
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Msg("failed to update password")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Msg("password reset completed")

	return nil
}
