// Package repository provides the data access layer for the Connectify user API.
// This file contains the repository bundle and the health interface used at
// wiring time; concrete construction lives in the driver packages (postgres,
// sqlite) and is selected in main.
package repository

import "context"

// Repositories holds all repository instances.
type Repositories struct {
	User       UserRepository
	Friendship FriendshipRepository
}

// DatabaseHealth is an interface for database health checks.
// Both the postgres and sqlite DB wrappers satisfy it, as do health endpoints.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) error
	Close() error
}
