package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"supportdesk/internal/common"
	"supportdesk/internal/models"
	"supportdesk/internal/repositories"
	"supportdesk/pkg/database"
)

// MetaService covers the per-organization ticket metadata: statuses and
// priorities.
type MetaService interface {
	CreateStatus(ctx context.Context, tc common.TenantContext, req *MetaRequest) (*models.Status, error)
	UpdateStatus(ctx context.Context, tc common.TenantContext, id uuid.UUID, req *MetaRequest) (*models.Status, error)
	DeleteStatus(ctx context.Context, tc common.TenantContext, id uuid.UUID) error
	ListStatuses(ctx context.Context, tc common.TenantContext) ([]*models.Status, error)

	CreatePriority(ctx context.Context, tc common.TenantContext, req *MetaRequest) (*models.Priority, error)
	UpdatePriority(ctx context.Context, tc common.TenantContext, id uuid.UUID, req *MetaRequest) (*models.Priority, error)
	DeletePriority(ctx context.Context, tc common.TenantContext, id uuid.UUID) error
	ListPriorities(ctx context.Context, tc common.TenantContext) ([]*models.Priority, error)
}

type MetaRequest struct {
	Name  string  `json:"name" validate:"required"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
}

type metaService struct {
	scoper *database.Scoper
}

func NewMetaService(scoper *database.Scoper) MetaService {
	return &metaService{scoper: scoper}
}

func (s *metaService) CreateStatus(ctx context.Context, tc common.TenantContext, req *MetaRequest) (*models.Status, error) {
	if req.Name == "" {
		return nil, common.BadRequest("name is required")
	}

	status := &models.Status{
		ID:             uuid.New(),
		OrganizationID: tc.OrganizationID,
		Name:           req.Name,
		Icon:           req.Icon,
		Color:          req.Color,
	}
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		return repositories.NewStatusRepo(tx).Create(ctx, status)
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

func (s *metaService) UpdateStatus(ctx context.Context, tc common.TenantContext, id uuid.UUID, req *MetaRequest) (*models.Status, error) {
	var updated *models.Status
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		repo := repositories.NewStatusRepo(tx)
		status, err := repo.GetByID(ctx, tc.OrganizationID, id)
		if err != nil {
			return err
		}
		if req.Name != "" {
			status.Name = req.Name
		}
		if req.Icon != nil {
			status.Icon = req.Icon
		}
		if req.Color != nil {
			status.Color = req.Color
		}
		if err := repo.Update(ctx, status); err != nil {
			return err
		}
		updated = status
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFound("Status")
		}
		return nil, err
	}
	return updated, nil
}

func (s *metaService) DeleteStatus(ctx context.Context, tc common.TenantContext, id uuid.UUID) error {
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		deleted, err := repositories.NewStatusRepo(tx).Delete(ctx, tc.OrganizationID, id)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NotFound("Status")
	}
	return err
}

func (s *metaService) ListStatuses(ctx context.Context, tc common.TenantContext) ([]*models.Status, error) {
	var statuses []*models.Status
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		list, err := repositories.NewStatusRepo(tx).List(ctx, tc.OrganizationID)
		if err != nil {
			return err
		}
		statuses = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return statuses, nil
}

func (s *metaService) CreatePriority(ctx context.Context, tc common.TenantContext, req *MetaRequest) (*models.Priority, error) {
	if req.Name == "" {
		return nil, common.BadRequest("name is required")
	}

	priority := &models.Priority{
		ID:             uuid.New(),
		OrganizationID: tc.OrganizationID,
		Name:           req.Name,
		Icon:           req.Icon,
		Color:          req.Color,
	}
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		return repositories.NewPriorityRepo(tx).Create(ctx, priority)
	})
	if err != nil {
		return nil, err
	}
	return priority, nil
}

func (s *metaService) UpdatePriority(ctx context.Context, tc common.TenantContext, id uuid.UUID, req *MetaRequest) (*models.Priority, error) {
	var updated *models.Priority
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		repo := repositories.NewPriorityRepo(tx)
		priority, err := repo.GetByID(ctx, tc.OrganizationID, id)
		if err != nil {
			return err
		}
		if req.Name != "" {
			priority.Name = req.Name
		}
		if req.Icon != nil {
			priority.Icon = req.Icon
		}
		if req.Color != nil {
			priority.Color = req.Color
		}
		if err := repo.Update(ctx, priority); err != nil {
			return err
		}
		updated = priority
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFound("Priority")
		}
		return nil, err
	}
	return updated, nil
}

func (s *metaService) DeletePriority(ctx context.Context, tc common.TenantContext, id uuid.UUID) error {
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		deleted, err := repositories.NewPriorityRepo(tx).Delete(ctx, tc.OrganizationID, id)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NotFound("Priority")
	}
	return err
}

func (s *metaService) ListPriorities(ctx context.Context, tc common.TenantContext) ([]*models.Priority, error) {
	var priorities []*models.Priority
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		list, err := repositories.NewPriorityRepo(tx).List(ctx, tc.OrganizationID)
		if err != nil {
			return err
		}
		priorities = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return priorities, nil
}
