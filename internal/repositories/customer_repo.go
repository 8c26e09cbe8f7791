package repositories

import (
	"context"

	"supportdesk/internal/models"

	"github.com/google/uuid"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, organizationID, id uuid.UUID) (int64, error)
	List(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]*models.Customer, error)
}

type customerRepo struct {
	db DBTX
}

func NewCustomerRepo(db DBTX) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (id, organization_id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, customer.ID, customer.OrganizationID, customer.Name, customer.Email, customer.Phone)
	return err
}

func (r *customerRepo) GetByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Customer, error) {
	customer := &models.Customer{}
	query := `
		SELECT id, organization_id, name, email, phone, created_at, updated_at
		FROM customers
		WHERE id = $1 AND organization_id = $2
	`
	err := r.db.QueryRow(ctx, query, id, organizationID).Scan(&customer.ID, &customer.OrganizationID, &customer.Name, &customer.Email, &customer.Phone, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *customerRepo) Update(ctx context.Context, customer *models.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, email = $2, phone = $3, updated_at = NOW()
		WHERE id = $4 AND organization_id = $5
	`
	_, err := r.db.Exec(ctx, query, customer.Name, customer.Email, customer.Phone, customer.ID, customer.OrganizationID)
	return err
}

func (r *customerRepo) Delete(ctx context.Context, organizationID, id uuid.UUID) (int64, error) {
	query := `DELETE FROM customers WHERE id = $1 AND organization_id = $2`
	tag, err := r.db.Exec(ctx, query, id, organizationID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *customerRepo) List(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]*models.Customer, error) {
	query := `
		SELECT id, organization_id, name, email, phone, created_at, updated_at
		FROM customers
		WHERE organization_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, organizationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		customer := &models.Customer{}
		if err := rows.Scan(&customer.ID, &customer.OrganizationID, &customer.Name, &customer.Email, &customer.Phone, &customer.CreatedAt, &customer.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}
