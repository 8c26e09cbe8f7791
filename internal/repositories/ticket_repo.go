package repositories

import (
	"context"

	"supportdesk/internal/models"

	"github.com/google/uuid"
)

// TicketRepository serves tenant business data. It is constructed around the
// transaction handed to a unit of work by the scoped transaction boundary;
// RLS filters every statement to the transaction's tenant. The explicit
// organization_id predicates mirror the isolation as defense in depth on
// reads but are not the enforcement point.
type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Ticket, error)
	Update(ctx context.Context, ticket *models.Ticket) error
	Delete(ctx context.Context, organizationID, id uuid.UUID) (int64, error)
	List(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]*models.Ticket, error)
	Count(ctx context.Context, organizationID uuid.UUID) (int64, error)
}

type ticketRepo struct {
	db DBTX
}

func NewTicketRepo(db DBTX) TicketRepository {
	return &ticketRepo{db: db}
}

const ticketColumns = `id, organization_id, subject, description, status_id, priority_id, customer_id, assignee_id, created_at, updated_at, closed_at`

func scanTicket(row interface{ Scan(dest ...any) error }) (*models.Ticket, error) {
	t := &models.Ticket{}
	err := row.Scan(&t.ID, &t.OrganizationID, &t.Subject, &t.Description, &t.StatusID, &t.PriorityID, &t.CustomerID, &t.AssigneeID, &t.CreatedAt, &t.UpdatedAt, &t.ClosedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *ticketRepo) Create(ctx context.Context, ticket *models.Ticket) error {
	query := `
		INSERT INTO tickets (id, organization_id, subject, description, status_id, priority_id, customer_id, assignee_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, ticket.ID, ticket.OrganizationID, ticket.Subject, ticket.Description, ticket.StatusID, ticket.PriorityID, ticket.CustomerID, ticket.AssigneeID)
	return err
}

func (r *ticketRepo) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE id = $1 AND organization_id = $2
	`
	return scanTicket(r.db.QueryRow(ctx, query, id, organizationID))
}

func (r *ticketRepo) Update(ctx context.Context, ticket *models.Ticket) error {
	query := `
		UPDATE tickets
		SET subject = $1, description = $2, status_id = $3, priority_id = $4, customer_id = $5, assignee_id = $6, closed_at = $7, updated_at = NOW()
		WHERE id = $8 AND organization_id = $9
	`
	_, err := r.db.Exec(ctx, query, ticket.Subject, ticket.Description, ticket.StatusID, ticket.PriorityID, ticket.CustomerID, ticket.AssigneeID, ticket.ClosedAt, ticket.ID, ticket.OrganizationID)
	return err
}

func (r *ticketRepo) Delete(ctx context.Context, organizationID, id uuid.UUID) (int64, error) {
	query := `DELETE FROM tickets WHERE id = $1 AND organization_id = $2`
	tag, err := r.db.Exec(ctx, query, id, organizationID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *ticketRepo) List(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]*models.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE organization_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, organizationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *ticketRepo) Count(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM tickets WHERE organization_id = $1`
	err := r.db.QueryRow(ctx, query, organizationID).Scan(&count)
	return count, err
}
