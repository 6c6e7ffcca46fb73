// Package session stores pending registrations between the signup and
// confirmation steps. Each anonymous signup session is identified by an
// opaque cookie value; the pending registration and its confirmation code
// live server side in the cache under separate keys, so the code can expire
// before the registration data does.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/domain"
	"github.com/connectify/user-api/internal/repository"
)

// Cache key prefixes. The registration payload and its code are separate
// keys with separate TTLs.
const (
	pendingKeyPrefix = "pending:"
	codeKeyPrefix    = "pending:code:"
)

// PendingStore persists at most one pending registration per signup session.
type PendingStore struct {
	cache   repository.Cache
	ttl     time.Duration
	codeTTL time.Duration
	logger  zerolog.Logger
}

// NewPendingStore creates a pending-registration store. ttl bounds the
// registration data, codeTTL the confirmation code; codeTTL is expected to
// be at most ttl.
func NewPendingStore(cache repository.Cache, ttl, codeTTL time.Duration, logger zerolog.Logger) *PendingStore {
	return &PendingStore{
		cache:   cache,
		ttl:     ttl,
		codeTTL: codeTTL,
		logger:  logger.With().Str("component", "session").Logger(),
	}
}

// NewSessionID mints an opaque session identifier for the signup cookie.
func NewSessionID() string {
	return uuid.NewString()
}

// Put stores a pending registration for the session, overwriting any previous
// one. Re-submitting the signup form always replaces the earlier attempt, so
// only the latest emailed code is valid.
func (s *PendingStore) Put(ctx context.Context, sessionID string, pending *domain.PendingRegistration) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to encode pending registration: %w", err)
	}

	if err := s.cache.Set(ctx, pendingKeyPrefix+sessionID, payload, s.ttl); err != nil {
		return fmt.Errorf("failed to store pending registration: %w", err)
	}

	code := []byte(strconv.Itoa(pending.Code))
	if err := s.cache.Set(ctx, codeKeyPrefix+sessionID, code, s.codeTTL); err != nil {
		return fmt.Errorf("failed to store confirmation code: %w", err)
	}

	s.logger.Debug().Str("session_id", sessionID).Msg("pending registration stored")
	return nil
}

// Get retrieves the pending registration for the session without consuming it.
// Returns domain.ErrNoPendingRegistration when none exists or it has expired.
func (s *PendingStore) Get(ctx context.Context, sessionID string) (*domain.PendingRegistration, error) {
	payload, err := s.cache.Get(ctx, pendingKeyPrefix+sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrCacheMiss) {
			return nil, domain.ErrNoPendingRegistration
		}
		return nil, fmt.Errorf("failed to load pending registration: %w", err)
	}

	return decode(payload)
}

// Code retrieves the live confirmation code for the session.
// Returns domain.ErrCodeExpired when the code key is gone, which happens on
// code TTL expiry or after a completed confirmation.
func (s *PendingStore) Code(ctx context.Context, sessionID string) (int, error) {
	raw, err := s.cache.Get(ctx, codeKeyPrefix+sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrCacheMiss) {
			return 0, domain.ErrCodeExpired
		}
		return 0, fmt.Errorf("failed to load confirmation code: %w", err)
	}

	code, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("corrupt confirmation code: %w", err)
	}

	return code, nil
}

// Consume atomically claims and removes the pending registration for the
// session, along with its code. Exactly one caller can win the claim; any
// later Consume reports domain.ErrNoPendingRegistration.
func (s *PendingStore) Consume(ctx context.Context, sessionID string) (*domain.PendingRegistration, error) {
	payload, err := s.cache.GetDel(ctx, pendingKeyPrefix+sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrCacheMiss) {
			return nil, domain.ErrNoPendingRegistration
		}
		return nil, fmt.Errorf("failed to consume pending registration: %w", err)
	}

	if err := s.cache.Delete(ctx, codeKeyPrefix+sessionID); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).
			Msg("failed to delete confirmation code")
	}

	return decode(payload)
}

func decode(payload []byte) (*domain.PendingRegistration, error) {
	pending := &domain.PendingRegistration{}
	if err := json.Unmarshal(payload, pending); err != nil {
		return nil, fmt.Errorf("failed to decode pending registration: %w", err)
	}
	return pending, nil
}
