// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"authgate/internal/domain/entity"
)

// Domain-specific errors for credential persistence.
var (
	// ErrUserNotFound is returned when no credential record matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when the unique constraint on username is violated.
	ErrUsernameTaken = errors.New("username already taken")
)

// UserRepository defines the standard operations for credential persistence.
// The application layer depends on this interface, not the concrete implementation.
type UserRepository interface {
	// Create persists a new credential record. Returns ErrUsernameTaken when
	// another record already holds the same username; the database's unique
	// constraint is the arbiter under concurrent registration.
	Create(ctx context.Context, user *entity.User) error

	// FindByUsername retrieves a single credential record by username.
	// Returns ErrUserNotFound when absent.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
}
