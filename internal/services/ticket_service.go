package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"supportdesk/internal/common"
	"supportdesk/internal/models"
	"supportdesk/internal/repositories"
	"supportdesk/pkg/database"
)

// TicketService is thin CRUD glue over the scoped transaction boundary.
// Every statement runs inside WithTenantScope; RLS limits visibility to the
// caller's organization, so a cross-tenant id simply reads as not found.
type TicketService interface {
	Create(ctx context.Context, tc common.TenantContext, req *CreateTicketRequest) (*models.Ticket, error)
	Get(ctx context.Context, tc common.TenantContext, id uuid.UUID) (*models.Ticket, error)
	Update(ctx context.Context, tc common.TenantContext, id uuid.UUID, req *UpdateTicketRequest) (*models.Ticket, error)
	Delete(ctx context.Context, tc common.TenantContext, id uuid.UUID) error
	List(ctx context.Context, tc common.TenantContext, limit, offset int) ([]*models.Ticket, error)
	Audits(ctx context.Context, tc common.TenantContext, ticketID uuid.UUID, limit, offset int) ([]*models.TicketAudit, error)
}

type CreateTicketRequest struct {
	Subject     string     `json:"subject" validate:"required"`
	Description string     `json:"description" validate:"required"`
	StatusID    *uuid.UUID `json:"status_id"`
	PriorityID  *uuid.UUID `json:"priority_id"`
	CustomerID  *uuid.UUID `json:"customer_id"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
}

type UpdateTicketRequest struct {
	Subject     *string    `json:"subject"`
	Description *string    `json:"description"`
	StatusID    *uuid.UUID `json:"status_id"`
	PriorityID  *uuid.UUID `json:"priority_id"`
	CustomerID  *uuid.UUID `json:"customer_id"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
	Closed      *bool      `json:"closed"`
}

type ticketService struct {
	scoper *database.Scoper
}

func NewTicketService(scoper *database.Scoper) TicketService {
	return &ticketService{scoper: scoper}
}

func (s *ticketService) Create(ctx context.Context, tc common.TenantContext, req *CreateTicketRequest) (*models.Ticket, error) {
	if req.Subject == "" || req.Description == "" {
		return nil, common.BadRequest("subject and description are required")
	}

	ticket := &models.Ticket{
		ID:             uuid.New(),
		OrganizationID: tc.OrganizationID,
		Subject:        req.Subject,
		Description:    req.Description,
		StatusID:       req.StatusID,
		PriorityID:     req.PriorityID,
		CustomerID:     req.CustomerID,
		AssigneeID:     req.AssigneeID,
	}

	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		if err := repositories.NewTicketRepo(tx).Create(ctx, ticket); err != nil {
			return err
		}
		return s.audit(ctx, tx, tc, ticket.ID, "created", nil, ticket)
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *ticketService) Get(ctx context.Context, tc common.TenantContext, id uuid.UUID) (*models.Ticket, error) {
	var ticket *models.Ticket
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		t, err := repositories.NewTicketRepo(tx).GetByID(ctx, tc.OrganizationID, id)
		if err != nil {
			return err
		}
		ticket = t
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFound("Ticket")
		}
		return nil, err
	}
	return ticket, nil
}

func (s *ticketService) Update(ctx context.Context, tc common.TenantContext, id uuid.UUID, req *UpdateTicketRequest) (*models.Ticket, error) {
	var updated *models.Ticket
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		repo := repositories.NewTicketRepo(tx)

		ticket, err := repo.GetByID(ctx, tc.OrganizationID, id)
		if err != nil {
			return err
		}
		before := *ticket

		if req.Subject != nil {
			ticket.Subject = *req.Subject
		}
		if req.Description != nil {
			ticket.Description = *req.Description
		}
		if req.StatusID != nil {
			ticket.StatusID = req.StatusID
		}
		if req.PriorityID != nil {
			ticket.PriorityID = req.PriorityID
		}
		if req.CustomerID != nil {
			ticket.CustomerID = req.CustomerID
		}
		if req.AssigneeID != nil {
			ticket.AssigneeID = req.AssigneeID
		}
		if req.Closed != nil {
			if *req.Closed && ticket.ClosedAt == nil {
				now := time.Now()
				ticket.ClosedAt = &now
			} else if !*req.Closed {
				ticket.ClosedAt = nil
			}
		}

		if err := repo.Update(ctx, ticket); err != nil {
			return err
		}
		updated = ticket
		return s.audit(ctx, tx, tc, ticket.ID, "updated", &before, ticket)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFound("Ticket")
		}
		return nil, err
	}
	return updated, nil
}

func (s *ticketService) Delete(ctx context.Context, tc common.TenantContext, id uuid.UUID) error {
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		deleted, err := repositories.NewTicketRepo(tx).Delete(ctx, tc.OrganizationID, id)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NotFound("Ticket")
	}
	return err
}

func (s *ticketService) List(ctx context.Context, tc common.TenantContext, limit, offset int) ([]*models.Ticket, error) {
	var tickets []*models.Ticket
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		t, err := repositories.NewTicketRepo(tx).List(ctx, tc.OrganizationID, limit, offset)
		if err != nil {
			return err
		}
		tickets = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (s *ticketService) Audits(ctx context.Context, tc common.TenantContext, ticketID uuid.UUID, limit, offset int) ([]*models.TicketAudit, error) {
	var audits []*models.TicketAudit
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		a, err := repositories.NewTicketAuditRepo(tx).ListByTicket(ctx, tc.OrganizationID, ticketID, limit, offset)
		if err != nil {
			return err
		}
		audits = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return audits, nil
}

func (s *ticketService) audit(ctx context.Context, tx pgx.Tx, tc common.TenantContext, ticketID uuid.UUID, action string, from, to *models.Ticket) error {
	var fromJSON, toJSON []byte
	var err error
	if from != nil {
		if fromJSON, err = json.Marshal(from); err != nil {
			return err
		}
	}
	if to != nil {
		if toJSON, err = json.Marshal(to); err != nil {
			return err
		}
	}

	userID := tc.UserID
	return repositories.NewTicketAuditRepo(tx).Create(ctx, &models.TicketAudit{
		ID:             uuid.New(),
		OrganizationID: tc.OrganizationID,
		TicketID:       &ticketID,
		UserID:         &userID,
		Action:         action,
		FromValue:      fromJSON,
		ToValue:        toJSON,
	})
}
