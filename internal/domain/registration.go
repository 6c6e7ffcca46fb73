package domain

import "time"

// PendingRegistration is an unconfirmed signup held in session storage until
// the caller proves control of the claimed email by submitting the
// confirmation code. At most one pending registration exists per session;
// a second signup from the same session overwrites the first.
//
// The candidate password is kept as plaintext here because the hash is only
// computed at confirmation time. The record never outlives the session TTL
// and is never written to the user store.
type PendingRegistration struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Gender    Gender `json:"gender"`
	Password  string `json:"password"`

	// Code is the 6-digit confirmation code sent to the candidate email.
	Code int `json:"code"`

	// CreatedAt records when the signup was accepted.
	CreatedAt time.Time `json:"created_at"`
}
