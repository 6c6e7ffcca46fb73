// Package service provides the business logic of the Connectify user API.
package service

import "errors"

// Service-level errors.
var (
	// ErrInternalError indicates an unexpected infrastructure failure.
	// Details are logged server side and never returned to clients.
	ErrInternalError = errors.New("internal server error")
)
