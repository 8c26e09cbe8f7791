package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"supportdesk/internal/common"
	"supportdesk/internal/models"
	"supportdesk/internal/repositories"
)

// OrganizationService manages organizations and memberships. These are
// administrative operations and run on the admin pool; they are the only
// sanctioned writes to organization/member rows outside a tenant scope.
type OrganizationService interface {
	Create(ctx context.Context, ownerID uuid.UUID, req *CreateOrganizationRequest) (*models.Organization, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Member, error)
	AddMember(ctx context.Context, organizationID, userID uuid.UUID, role string) (*models.Member, error)
	RemoveMember(ctx context.Context, organizationID, userID uuid.UUID) error
}

type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required"`
}

type organizationService struct {
	orgs    repositories.OrganizationRepository
	members repositories.MemberRepository
}

func NewOrganizationService(orgs repositories.OrganizationRepository, members repositories.MemberRepository) OrganizationService {
	return &organizationService{orgs: orgs, members: members}
}

func (s *organizationService) Create(ctx context.Context, ownerID uuid.UUID, req *CreateOrganizationRequest) (*models.Organization, error) {
	if req.Name == "" || req.Slug == "" {
		return nil, common.BadRequest("name and slug are required")
	}
	if strings.TrimSpace(req.Slug) != req.Slug || strings.Contains(req.Slug, " ") {
		return nil, common.BadRequest("slug cannot contain spaces")
	}

	org := &models.Organization{
		ID:   uuid.New(),
		Name: req.Name,
		Slug: req.Slug,
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, err
	}

	owner := &models.Member{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		UserID:         ownerID,
		Role:           models.RoleOwner,
	}
	if err := s.members.Create(ctx, owner); err != nil {
		return nil, err
	}

	return org, nil
}

func (s *organizationService) Get(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFound("Organization")
		}
		return nil, err
	}
	return org, nil
}

// Delete removes an organization; dependent rows cascade at the storage
// layer.
func (s *organizationService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.orgs.Delete(ctx, id)
}

func (s *organizationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Member, error) {
	return s.members.ListByUser(ctx, userID)
}

func (s *organizationService) AddMember(ctx context.Context, organizationID, userID uuid.UUID, role string) (*models.Member, error) {
	switch role {
	case models.RoleOwner, models.RoleAdmin, models.RoleMember:
	default:
		return nil, common.BadRequest("invalid role")
	}

	member := &models.Member{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		UserID:         userID,
		Role:           role,
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *organizationService) RemoveMember(ctx context.Context, organizationID, userID uuid.UUID) error {
	return s.members.Delete(ctx, organizationID, userID)
}
