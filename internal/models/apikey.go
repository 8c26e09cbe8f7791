package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey is an opaque credential bound to a user and an organization. Only
// the sha256 hash of the key is stored; the plaintext is returned exactly
// once, at creation time.
type APIKey struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	OrganizationID *uuid.UUID `json:"organization_id" db:"organization_id"`
	Name           string     `json:"name" db:"name"`
	KeyHash        string     `json:"-" db:"key_hash"`
	Prefix         string     `json:"prefix" db:"prefix"`
	Enabled        bool       `json:"enabled" db:"enabled"`
	ExpiresAt      *time.Time `json:"expires_at" db:"expires_at"`
	LastUsedAt     *time.Time `json:"last_used_at" db:"last_used_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}
