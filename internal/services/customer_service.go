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

type CustomerService interface {
	Create(ctx context.Context, tc common.TenantContext, req *CreateCustomerRequest) (*models.Customer, error)
	Get(ctx context.Context, tc common.TenantContext, id uuid.UUID) (*models.Customer, error)
	Update(ctx context.Context, tc common.TenantContext, id uuid.UUID, req *UpdateCustomerRequest) (*models.Customer, error)
	Delete(ctx context.Context, tc common.TenantContext, id uuid.UUID) error
	List(ctx context.Context, tc common.TenantContext, limit, offset int) ([]*models.Customer, error)
}

type CreateCustomerRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
	Phone string `json:"phone"`
}

type UpdateCustomerRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

type customerService struct {
	scoper *database.Scoper
}

func NewCustomerService(scoper *database.Scoper) CustomerService {
	return &customerService{scoper: scoper}
}

func (s *customerService) Create(ctx context.Context, tc common.TenantContext, req *CreateCustomerRequest) (*models.Customer, error) {
	if req.Name == "" || req.Email == "" {
		return nil, common.BadRequest("name and email are required")
	}

	customer := &models.Customer{
		ID:             uuid.New(),
		OrganizationID: tc.OrganizationID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
	}

	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		return repositories.NewCustomerRepo(tx).Create(ctx, customer)
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) Get(ctx context.Context, tc common.TenantContext, id uuid.UUID) (*models.Customer, error) {
	var customer *models.Customer
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		c, err := repositories.NewCustomerRepo(tx).GetByID(ctx, tc.OrganizationID, id)
		if err != nil {
			return err
		}
		customer = c
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFound("Customer")
		}
		return nil, err
	}
	return customer, nil
}

func (s *customerService) Update(ctx context.Context, tc common.TenantContext, id uuid.UUID, req *UpdateCustomerRequest) (*models.Customer, error) {
	var updated *models.Customer
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		repo := repositories.NewCustomerRepo(tx)

		customer, err := repo.GetByID(ctx, tc.OrganizationID, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			customer.Name = *req.Name
		}
		if req.Email != nil {
			customer.Email = *req.Email
		}
		if req.Phone != nil {
			customer.Phone = *req.Phone
		}

		if err := repo.Update(ctx, customer); err != nil {
			return err
		}
		updated = customer
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFound("Customer")
		}
		return nil, err
	}
	return updated, nil
}

func (s *customerService) Delete(ctx context.Context, tc common.TenantContext, id uuid.UUID) error {
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		deleted, err := repositories.NewCustomerRepo(tx).Delete(ctx, tc.OrganizationID, id)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NotFound("Customer")
	}
	return err
}

func (s *customerService) List(ctx context.Context, tc common.TenantContext, limit, offset int) ([]*models.Customer, error) {
	var customers []*models.Customer
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		c, err := repositories.NewCustomerRepo(tx).List(ctx, tc.OrganizationID, limit, offset)
		if err != nil {
			return err
		}
		customers = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return customers, nil
}
