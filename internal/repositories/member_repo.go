package repositories

import (
	"context"

	"supportdesk/internal/models"

	"github.com/google/uuid"
)

// MemberRepository manages membership rows. GetByOrgAndUser is the lookup the
// tenant-context resolver depends on and always runs on the admin pool,
// outside any tenant scope.
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByOrgAndUser(ctx context.Context, organizationID, userID uuid.UUID) (*models.Member, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]*models.Member, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Member, error)
	Delete(ctx context.Context, organizationID, userID uuid.UUID) error
}

type memberRepo struct {
	db DBTX
}

func NewMemberRepo(db DBTX) MemberRepository {
	return &memberRepo{db: db}
}

func (r *memberRepo) Create(ctx context.Context, member *models.Member) error {
	query := `
		INSERT INTO members (id, organization_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.db.Exec(ctx, query, member.ID, member.OrganizationID, member.UserID, member.Role)
	return err
}

func (r *memberRepo) GetByOrgAndUser(ctx context.Context, organizationID, userID uuid.UUID) (*models.Member, error) {
	member := &models.Member{}
	query := `
		SELECT id, organization_id, user_id, role, created_at
		FROM members
		WHERE organization_id = $1 AND user_id = $2
	`
	err := r.db.QueryRow(ctx, query, organizationID, userID).Scan(&member.ID, &member.OrganizationID, &member.UserID, &member.Role, &member.CreatedAt)
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (r *memberRepo) ListByOrganization(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]*models.Member, error) {
	query := `
		SELECT id, organization_id, user_id, role, created_at
		FROM members
		WHERE organization_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, organizationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member := &models.Member{}
		if err := rows.Scan(&member.ID, &member.OrganizationID, &member.UserID, &member.Role, &member.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *memberRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Member, error) {
	query := `
		SELECT id, organization_id, user_id, role, created_at
		FROM members
		WHERE user_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member := &models.Member{}
		if err := rows.Scan(&member.ID, &member.OrganizationID, &member.UserID, &member.Role, &member.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *memberRepo) Delete(ctx context.Context, organizationID, userID uuid.UUID) error {
	query := `DELETE FROM members WHERE organization_id = $1 AND user_id = $2`
	_, err := r.db.Exec(ctx, query, organizationID, userID)
	return err
}
