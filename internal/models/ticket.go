package models

import (
	"time"

	"github.com/google/uuid"
)

type Ticket struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrganizationID uuid.UUID  `json:"organization_id" db:"organization_id"`
	Subject        string     `json:"subject" db:"subject"`
	Description    string     `json:"description" db:"description"`
	StatusID       *uuid.UUID `json:"status_id" db:"status_id"`
	PriorityID     *uuid.UUID `json:"priority_id" db:"priority_id"`
	CustomerID     *uuid.UUID `json:"customer_id" db:"customer_id"`
	AssigneeID     *uuid.UUID `json:"assignee_id" db:"assignee_id"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	ClosedAt       *time.Time `json:"closed_at" db:"closed_at"`
}

// TicketAudit records a field-level change on a ticket.
type TicketAudit struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrganizationID uuid.UUID  `json:"organization_id" db:"organization_id"`
	TicketID       *uuid.UUID `json:"ticket_id" db:"ticket_id"`
	UserID         *uuid.UUID `json:"user_id" db:"user_id"`
	Action         string     `json:"action" db:"action"`
	FromValue      []byte     `json:"from_value" db:"from_value"`
	ToValue        []byte     `json:"to_value" db:"to_value"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// TicketAttachment is metadata for an object stored in MinIO.
type TicketAttachment struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	TicketID       uuid.UUID `json:"ticket_id" db:"ticket_id"`
	ObjectKey      string    `json:"object_key" db:"object_key"`
	FileName       string    `json:"file_name" db:"file_name"`
	ContentType    string    `json:"content_type" db:"content_type"`
	SizeBytes      int64     `json:"size_bytes" db:"size_bytes"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
