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
	"github.com/connectify/user-api/internal/session"
	"github.com/connectify/user-api/internal/validate"
)

// Uniqueness violation messages. User-facing API copy; do not reword.
const (
	msgUsernameTaken   = "This username already taken"
	msgEmailRegistered = "This email already registered"
)

// Mailer is the subset of mail.Sender the registration flow needs.
type Mailer interface {
	SendConfirmationCode(to, firstName string, code int) error
}

// RegistrationService handles the two-phase signup flow: a validated signup
// parks a PendingRegistration in the session store and emails a confirmation
// code; a matching confirmation promotes it to a stored User.
type RegistrationService struct {
	users      repository.UserRepository
	pending    *session.PendingStore
	validator  *validate.Validator
	mailer     Mailer
	bcryptCost int
	logger     zerolog.Logger
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(
	users repository.UserRepository,
	pending *session.PendingStore,
	validator *validate.Validator,
	mailer Mailer,
	bcryptCost int,
	logger zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		users:      users,
		pending:    pending,
		validator:  validator,
		mailer:     mailer,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("service", "registration").Logger(),
	}
}

// =============================================================================
// Input/Output Structs
// =============================================================================

// SignupOutput acknowledges an accepted signup. No user exists yet.
type SignupOutput struct {
	Email string
}

// ConfirmOutput contains the user created by a successful confirmation.
type ConfirmOutput struct {
	User *domain.User
}

// =============================================================================
// Service Methods
// =============================================================================

// Signup validates the candidate fields, stores a pending registration for
// the session (overwriting any earlier one), and emails the confirmation
// code. Validation failures are returned as field-keyed errors and leave
// both the session and the user store untouched.
//
// The uniqueness checks here are advisory early feedback; the storage
// constraint at confirmation time remains authoritative for races.
func (s *RegistrationService) Signup(ctx context.Context, sessionID string, input validate.SignupInput) (*SignupOutput, error) {
	fieldErrs := s.validator.Signup(input)
	if fieldErrs == nil {
		fieldErrs = validate.FieldErrors{}
	}

	if _, seen := fieldErrs["username"]; !seen {
		taken, err := s.users.ExistsByUsername(ctx, input.Username)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to check username")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		if taken {
			fieldErrs["username"] = msgUsernameTaken
		}
	}

	if _, seen := fieldErrs["email"]; !seen {
		registered, err := s.users.ExistsByEmail(ctx, input.Email)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to check email")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		if registered {
			fieldErrs["email"] = msgEmailRegistered
		}
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	code, err := crypto.ConfirmationCode()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to generate confirmation code")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	pending := &domain.PendingRegistration{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Username:  input.Username,
		Email:     input.Email,
		Gender:    domain.Gender(input.Gender),
		Password:  input.Password,
		Code:      code,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.pending.Put(ctx, sessionID, pending); err != nil {
		s.logger.Error().Err(err).Msg("failed to store pending registration")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.mailer.SendConfirmationCode(input.Email, input.FirstName, code); err != nil {
		s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to send confirmation email")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("username", input.Username).
		Str("email", input.Email).
		Msg("signup accepted, confirmation pending")

	return &SignupOutput{Email: input.Email}, nil
}

// Confirm matches the submitted code against the session's pending
// registration and, on success, creates the user and consumes the pending
// state. A wrong code leaves the pending registration intact so the caller
// may retry until it expires; after a successful confirmation nothing
// remains, so a second confirm reports no pending registration.
func (s *RegistrationService) Confirm(ctx context.Context, sessionID string, submittedCode int) (*ConfirmOutput, error) {
	pending, err := s.pending.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNoPendingRegistration) {
			return nil, domain.ErrNoPendingRegistration
		}
		s.logger.Error().Err(err).Msg("failed to load pending registration")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	code, err := s.pending.Code(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrCodeExpired) {
			return nil, domain.ErrCodeExpired
		}
		s.logger.Error().Err(err).Msg("failed to load confirmation code")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if code != submittedCode {
		return nil, domain.ErrInvalidCode
	}

	hash, err := crypto.HashPassword(pending.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user := domain.NewUser(
		pending.FirstName,
		pending.LastName,
		pending.Username,
		pending.Email,
		pending.Gender,
		hash,
	)

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			// Lost a race with another signup for the same username or
			// email. The pending state stays so the error is reported
			// consistently on retry.
			return nil, domain.ErrDuplicateUser
		}
		s.logger.Error().Err(err).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if _, err := s.pending.Consume(ctx, sessionID); err != nil {
		// The user exists; a stale or already-gone pending record only
		// risks a duplicate error on re-confirm, which the unique
		// constraint already covers.
		s.logger.Warn().Err(err).Msg("failed to clear pending registration")
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Msg("user confirmed and created")

	return &ConfirmOutput{User: user}, nil
}
