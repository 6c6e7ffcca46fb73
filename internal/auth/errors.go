// Package auth issues and verifies the bearer tokens that authenticate
// API requests.
package auth

import "errors"

var (
	// ErrTokenMalformed indicates the token is not a well-formed JWT or was
	// signed with an unexpected method.
	ErrTokenMalformed = errors.New("malformed token")

	// ErrTokenExpired indicates the token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenSignature indicates the signature does not match the server key.
	ErrTokenSignature = errors.New("invalid token signature")

	// ErrInvalidUser indicates the token verified but its subject no longer
	// resolves to an account. The message is user-facing API copy.
	ErrInvalidUser = errors.New("User not found")

	// ErrMissingToken indicates no bearer token was supplied.
	ErrMissingToken = errors.New("missing authorization token")
)
