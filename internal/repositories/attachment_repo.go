package repositories

import (
	"context"

	"supportdesk/internal/models"

	"github.com/google/uuid"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *models.TicketAttachment) error
	GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.TicketAttachment, error)
	ListByTicket(ctx context.Context, organizationID, ticketID uuid.UUID) ([]*models.TicketAttachment, error)
	Delete(ctx context.Context, organizationID, id uuid.UUID) (int64, error)
}

type attachmentRepo struct {
	db DBTX
}

func NewAttachmentRepo(db DBTX) AttachmentRepository {
	return &attachmentRepo{db: db}
}

func (r *attachmentRepo) Create(ctx context.Context, attachment *models.TicketAttachment) error {
	query := `
		INSERT INTO ticket_attachments (id, organization_id, ticket_id, object_key, file_name, content_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query, attachment.ID, attachment.OrganizationID, attachment.TicketID, attachment.ObjectKey, attachment.FileName, attachment.ContentType, attachment.SizeBytes)
	return err
}

func (r *attachmentRepo) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.TicketAttachment, error) {
	attachment := &models.TicketAttachment{}
	query := `
		SELECT id, organization_id, ticket_id, object_key, file_name, content_type, size_bytes, created_at
		FROM ticket_attachments
		WHERE id = $1 AND organization_id = $2
	`
	err := r.db.QueryRow(ctx, query, id, organizationID).Scan(&attachment.ID, &attachment.OrganizationID, &attachment.TicketID, &attachment.ObjectKey, &attachment.FileName, &attachment.ContentType, &attachment.SizeBytes, &attachment.CreatedAt)
	if err != nil {
		return nil, err
	}
	return attachment, nil
}

func (r *attachmentRepo) ListByTicket(ctx context.Context, organizationID, ticketID uuid.UUID) ([]*models.TicketAttachment, error) {
	query := `
		SELECT id, organization_id, ticket_id, object_key, file_name, content_type, size_bytes, created_at
		FROM ticket_attachments
		WHERE organization_id = $1 AND ticket_id = $2
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, organizationID, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []*models.TicketAttachment
	for rows.Next() {
		attachment := &models.TicketAttachment{}
		if err := rows.Scan(&attachment.ID, &attachment.OrganizationID, &attachment.TicketID, &attachment.ObjectKey, &attachment.FileName, &attachment.ContentType, &attachment.SizeBytes, &attachment.CreatedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, attachment)
	}
	return attachments, rows.Err()
}

func (r *attachmentRepo) Delete(ctx context.Context, organizationID, id uuid.UUID) (int64, error) {
	query := `DELETE FROM ticket_attachments WHERE id = $1 AND organization_id = $2`
	tag, err := r.db.Exec(ctx, query, id, organizationID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
