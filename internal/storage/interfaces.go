// Package storage defines the backend interface for avatar images.
// Avatars are small single objects; the backend stores them under a
// user-derived key and serves them from a public URL.
package storage

import (
	"context"
	"io"
)

// Backend defines the interface for avatar storage backends.
type Backend interface {
	// Store writes an avatar under the given key, replacing any previous
	// object, and returns the public URL it is served from.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - key: Object key, derived from the user ID
	//   - reader: Source of the image bytes
	//   - size: Size in bytes
	//   - contentType: MIME type of the image
	Store(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (url string, err error)

	// Delete removes the avatar stored under the key.
	// Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}
