package ratelimit

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/config"
	"github.com/connectify/user-api/internal/repository"
)

// Cache key prefixes for the lockout state. The failure counter and the
// lockout flag live in separate keys so the flag outlives the counter.
const (
	failKeyPrefix = "lockout:fail:"
	flagKeyPrefix = "lockout:flag:"
)

// Lockout tracks consecutive login failures per client IP and locks the IP
// out once the failure count exceeds the threshold. While locked, every
// login attempt is rejected before credentials are even checked.
type Lockout struct {
	cache  repository.Cache
	cfg    config.LockoutConfig
	logger zerolog.Logger
}

// NewLockout creates a lockout tracker backed by the shared cache.
func NewLockout(cache repository.Cache, cfg config.LockoutConfig, logger zerolog.Logger) *Lockout {
	return &Lockout{
		cache:  cache,
		cfg:    cfg,
		logger: logger.With().Str("component", "lockout").Logger(),
	}
}

// IsLocked reports whether the IP is currently locked out.
func (l *Lockout) IsLocked(ctx context.Context, ip string) (bool, error) {
	locked, err := l.cache.Exists(ctx, flagKeyPrefix+ip)
	if err != nil {
		return false, fmt.Errorf("failed to check lockout flag: %w", err)
	}
	return locked, nil
}

// RecordFailure counts a failed login attempt from the IP. The counter's
// window restarts on every failure, so only a quiet period clears it.
// Returns true when this failure pushed the IP over the threshold and the
// lockout flag was set.
func (l *Lockout) RecordFailure(ctx context.Context, ip string) (bool, error) {
	count, err := l.cache.Increment(ctx, failKeyPrefix+ip, 1)
	if err != nil {
		return false, fmt.Errorf("failed to count login failure: %w", err)
	}

	if err := l.cache.Expire(ctx, failKeyPrefix+ip, l.cfg.Window); err != nil {
		return false, fmt.Errorf("failed to refresh failure window: %w", err)
	}

	if count <= l.cfg.Threshold {
		return false, nil
	}

	// SetNX so failures during an existing lockout do not extend it.
	set, err := l.cache.SetNX(ctx, flagKeyPrefix+ip, []byte("1"), l.cfg.Duration)
	if err != nil {
		return false, fmt.Errorf("failed to set lockout flag: %w", err)
	}
	if !set {
		return true, nil
	}

	l.logger.Warn().
		Str("ip", ip).
		Int64("failures", count).
		Dur("duration", l.cfg.Duration).
		Msg("ip locked out after repeated login failures")

	return true, nil
}

// Clear resets the failure state for the IP after a successful login.
func (l *Lockout) Clear(ctx context.Context, ip string) error {
	if err := l.cache.Delete(ctx, failKeyPrefix+ip); err != nil {
		return fmt.Errorf("failed to clear failure counter: %w", err)
	}
	if err := l.cache.Delete(ctx, flagKeyPrefix+ip); err != nil {
		return fmt.Errorf("failed to clear lockout flag: %w", err)
	}
	return nil
}
