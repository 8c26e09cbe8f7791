package models

import (
	"time"

	"github.com/google/uuid"
)

// Status and Priority are per-organization ticket metadata.

type Status struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	Icon           *string   `json:"icon" db:"icon"`
	Color          *string   `json:"color" db:"color"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type Priority struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	Icon           *string   `json:"icon" db:"icon"`
	Color          *string   `json:"color" db:"color"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
