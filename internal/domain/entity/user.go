// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered credential record: who can log in and with what
// password hash. The record is created once at registration and never
// updated afterwards.
type User struct {
	ID           uuid.UUID // Opaque identity key for the account.
	Username     string    // Unique, human-chosen login handle.
	PasswordHash string    // Salted bcrypt hash of the password, never the plaintext.
	Email        string    // Contact attribute; plays no part in auth decisions.
	CreatedAt    time.Time // Timestamp of registration.
}
