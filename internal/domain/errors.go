// Package domain contains the core business entities for the Connectify user API.
package domain

import "errors"

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// User Errors
	// ===========================================

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUser indicates the storage-level uniqueness constraint on
	// username or email rejected an insert. This is the authoritative
	// uniqueness check; application-level pre-checks are advisory only.
	ErrDuplicateUser = errors.New("username or email already taken")

	// ErrInvalidCredentials indicates authentication failed. The message is
	// deliberately identical for unknown-identifier and wrong-password so
	// callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ===========================================
	// Registration Errors
	// ===========================================

	// ErrNoPendingRegistration indicates the session has no signup awaiting
	// confirmation. Also returned after a successful confirm consumed it.
	ErrNoPendingRegistration = errors.New("no pending registration")

	// ErrCodeExpired indicates the confirmation code is no longer present,
	// either expired or already confirmed.
	ErrCodeExpired = errors.New("code expired, or already confirmed")

	// ErrInvalidCode indicates the submitted code does not match the stored
	// one. The pending registration stays intact so the caller may retry.
	ErrInvalidCode = errors.New("invalid code")

	// ===========================================
	// Rate Limiting Errors
	// ===========================================

	// ErrThrottled indicates the per-IP per-route request budget is exhausted.
	ErrThrottled = errors.New("too many requests, please try again later")

	// ErrLockedOut indicates the IP is under adaptive login lockout and all
	// attempts are rejected regardless of credential correctness.
	ErrLockedOut = errors.New("too many failed login attempts, try again later")

	// ===========================================
	// Password Reset Errors
	// ===========================================

	// ErrResetTokenInvalid indicates the reset token is unknown or expired.
	ErrResetTokenInvalid = errors.New("invalid or expired reset token")

	// ===========================================
	// Friendship Errors
	// ===========================================

	// ErrFriendshipNotFound indicates the friendship request does not exist.
	ErrFriendshipNotFound = errors.New("friendship request not found")

	// ErrFriendshipExists indicates a request between the two users already exists.
	ErrFriendshipExists = errors.New("friendship request already exists")

	// ErrSelfFriendship indicates a user tried to befriend themselves.
	ErrSelfFriendship = errors.New("cannot send a friendship request to yourself")
)
