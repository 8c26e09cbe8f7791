package repositories

import (
	"context"
	"time"

	"supportdesk/internal/models"

	"github.com/google/uuid"
)

type TicketAuditRepository interface {
	Create(ctx context.Context, audit *models.TicketAudit) error
	ListByTicket(ctx context.Context, organizationID, ticketID uuid.UUID, limit, offset int) ([]*models.TicketAudit, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type ticketAuditRepo struct {
	db DBTX
}

func NewTicketAuditRepo(db DBTX) TicketAuditRepository {
	return &ticketAuditRepo{db: db}
}

func (r *ticketAuditRepo) Create(ctx context.Context, audit *models.TicketAudit) error {
	query := `
		INSERT INTO ticket_audits (id, organization_id, ticket_id, user_id, action, from_value, to_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query, audit.ID, audit.OrganizationID, audit.TicketID, audit.UserID, audit.Action, audit.FromValue, audit.ToValue)
	return err
}

func (r *ticketAuditRepo) ListByTicket(ctx context.Context, organizationID, ticketID uuid.UUID, limit, offset int) ([]*models.TicketAudit, error) {
	query := `
		SELECT id, organization_id, ticket_id, user_id, action, from_value, to_value, created_at
		FROM ticket_audits
		WHERE organization_id = $1 AND ticket_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, organizationID, ticketID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []*models.TicketAudit
	for rows.Next() {
		audit := &models.TicketAudit{}
		if err := rows.Scan(&audit.ID, &audit.OrganizationID, &audit.TicketID, &audit.UserID, &audit.Action, &audit.FromValue, &audit.ToValue, &audit.CreatedAt); err != nil {
			return nil, err
		}
		audits = append(audits, audit)
	}
	return audits, rows.Err()
}

// DeleteOlderThan prunes old audit rows. Runs on the admin pool from the
// background sweep; request-path reads stay inside the tenant scope.
func (r *ticketAuditRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM ticket_audits WHERE created_at < $1`
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
