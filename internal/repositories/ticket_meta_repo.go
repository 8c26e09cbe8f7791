package repositories

import (
	"context"

	"supportdesk/internal/models"

	"github.com/google/uuid"
)

type StatusRepository interface {
	Create(ctx context.Context, status *models.Status) error
	GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Status, error)
	Update(ctx context.Context, status *models.Status) error
	Delete(ctx context.Context, organizationID, id uuid.UUID) (int64, error)
	List(ctx context.Context, organizationID uuid.UUID) ([]*models.Status, error)
}

type PriorityRepository interface {
	Create(ctx context.Context, priority *models.Priority) error
	GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Priority, error)
	Update(ctx context.Context, priority *models.Priority) error
	Delete(ctx context.Context, organizationID, id uuid.UUID) (int64, error)
	List(ctx context.Context, organizationID uuid.UUID) ([]*models.Priority, error)
}

type statusRepo struct {
	db DBTX
}

func NewStatusRepo(db DBTX) StatusRepository {
	return &statusRepo{db: db}
}

func (r *statusRepo) Create(ctx context.Context, status *models.Status) error {
	query := `
		INSERT INTO statuses (id, organization_id, name, icon, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, status.ID, status.OrganizationID, status.Name, status.Icon, status.Color)
	return err
}

func (r *statusRepo) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Status, error) {
	status := &models.Status{}
	query := `
		SELECT id, organization_id, name, icon, color, created_at, updated_at
		FROM statuses
		WHERE id = $1 AND organization_id = $2
	`
	err := r.db.QueryRow(ctx, query, id, organizationID).Scan(&status.ID, &status.OrganizationID, &status.Name, &status.Icon, &status.Color, &status.CreatedAt, &status.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return status, nil
}

func (r *statusRepo) Update(ctx context.Context, status *models.Status) error {
	query := `
		UPDATE statuses
		SET name = $1, icon = $2, color = $3, updated_at = NOW()
		WHERE id = $4 AND organization_id = $5
	`
	_, err := r.db.Exec(ctx, query, status.Name, status.Icon, status.Color, status.ID, status.OrganizationID)
	return err
}

func (r *statusRepo) Delete(ctx context.Context, organizationID, id uuid.UUID) (int64, error) {
	query := `DELETE FROM statuses WHERE id = $1 AND organization_id = $2`
	tag, err := r.db.Exec(ctx, query, id, organizationID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *statusRepo) List(ctx context.Context, organizationID uuid.UUID) ([]*models.Status, error) {
	query := `
		SELECT id, organization_id, name, icon, color, created_at, updated_at
		FROM statuses
		WHERE organization_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []*models.Status
	for rows.Next() {
		status := &models.Status{}
		if err := rows.Scan(&status.ID, &status.OrganizationID, &status.Name, &status.Icon, &status.Color, &status.CreatedAt, &status.UpdatedAt); err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, rows.Err()
}

type priorityRepo struct {
	db DBTX
}

func NewPriorityRepo(db DBTX) PriorityRepository {
	return &priorityRepo{db: db}
}

func (r *priorityRepo) Create(ctx context.Context, priority *models.Priority) error {
	query := `
		INSERT INTO priorities (id, organization_id, name, icon, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, priority.ID, priority.OrganizationID, priority.Name, priority.Icon, priority.Color)
	return err
}

func (r *priorityRepo) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Priority, error) {
	priority := &models.Priority{}
	query := `
		SELECT id, organization_id, name, icon, color, created_at, updated_at
		FROM priorities
		WHERE id = $1 AND organization_id = $2
	`
	err := r.db.QueryRow(ctx, query, id, organizationID).Scan(&priority.ID, &priority.OrganizationID, &priority.Name, &priority.Icon, &priority.Color, &priority.CreatedAt, &priority.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return priority, nil
}

func (r *priorityRepo) Update(ctx context.Context, priority *models.Priority) error {
	query := `
		UPDATE priorities
		SET name = $1, icon = $2, color = $3, updated_at = NOW()
		WHERE id = $4 AND organization_id = $5
	`
	_, err := r.db.Exec(ctx, query, priority.Name, priority.Icon, priority.Color, priority.ID, priority.OrganizationID)
	return err
}

func (r *priorityRepo) Delete(ctx context.Context, organizationID, id uuid.UUID) (int64, error) {
	query := `DELETE FROM priorities WHERE id = $1 AND organization_id = $2`
	tag, err := r.db.Exec(ctx, query, id, organizationID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *priorityRepo) List(ctx context.Context, organizationID uuid.UUID) ([]*models.Priority, error) {
	query := `
		SELECT id, organization_id, name, icon, color, created_at, updated_at
		FROM priorities
		WHERE organization_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var priorities []*models.Priority
	for rows.Next() {
		priority := &models.Priority{}
		if err := rows.Scan(&priority.ID, &priority.OrganizationID, &priority.Name, &priority.Icon, &priority.Color, &priority.CreatedAt, &priority.UpdatedAt); err != nil {
			return nil, err
		}
		priorities = append(priorities, priority)
	}
	return priorities, rows.Err()
}
