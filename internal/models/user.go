package models

import (
	"time"

	"github.com/google/uuid"
)

// User is tenant-independent; one user may belong to multiple organizations
// through memberships.
type User struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Email         string    `json:"email" db:"email"`
	EmailVerified bool      `json:"email_verified" db:"email_verified"`
	PasswordHash  string    `json:"-" db:"password_hash"` // Never serialize in JSON
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
