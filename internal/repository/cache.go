// Package repository defines data access interfaces for the Connectify user API.
package repository

import (
	"context"
	"time"
)

// =============================================================================
// Cache Interface (Redis)
// =============================================================================

// Cache defines the interface for the shared keyed store backing the
// pending-registration sessions and the login lockout counters.
// Primarily implemented using Redis; an in-memory implementation exists
// for single-node deployments and tests.
//
// Every operation is atomic per key; no cross-key transactions are offered
// or needed.
type Cache interface {
	// Get retrieves a value by key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// GetDel retrieves a value and deletes it in one atomic step.
	// Returns ErrCacheMiss if the key doesn't exist.
	GetDel(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an optional TTL.
	// If ttl is 0, the value doesn't expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX sets a value only if the key doesn't exist.
	// Returns true if the value was set, false if the key already exists.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists.
	Exists(ctx context.Context, key string) (bool, error)

	// Expire sets or updates the TTL for a key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// TTL returns the remaining TTL for a key.
	// Returns -1 if the key doesn't exist, -2 if no TTL is set.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Increment atomically increments an integer value, creating the key
	// at delta if absent, and returns the post-increment value.
	Increment(ctx context.Context, key string, delta int64) (int64, error)
}
