package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"supportdesk/internal/auth"
	"supportdesk/internal/common"
	"supportdesk/internal/models"
	"supportdesk/internal/repositories"
)

// APIKeyService creates and manages API keys. The plaintext key is returned
// exactly once, at creation; only its hash is stored.
type APIKeyService interface {
	Create(ctx context.Context, userID, organizationID uuid.UUID, name string, ttl *time.Duration) (*CreatedAPIKey, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.APIKey, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type CreatedAPIKey struct {
	Key      string         `json:"key"`
	Metadata *models.APIKey `json:"metadata"`
}

type apiKeyService struct {
	keys    repositories.APIKeyRepository
	members repositories.MemberRepository
}

func NewAPIKeyService(keys repositories.APIKeyRepository, members repositories.MemberRepository) APIKeyService {
	return &apiKeyService{keys: keys, members: members}
}

func (s *apiKeyService) Create(ctx context.Context, userID, organizationID uuid.UUID, name string, ttl *time.Duration) (*CreatedAPIKey, error) {
	if name == "" {
		return nil, common.BadRequest("name is required")
	}

	// Keys can only be minted for organizations the user belongs to; the
	// organization binding is what the resolver later scopes requests by.
	if _, err := s.members.GetByOrgAndUser(ctx, organizationID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.Unauthorized("Unauthorized")
		}
		return nil, common.TransientStorage(err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, common.Internal("generating key material", err)
	}
	plaintext := auth.KeyPrefix + base64.RawURLEncoding.EncodeToString(raw)

	var expiresAt *time.Time
	if ttl != nil {
		t := time.Now().Add(*ttl)
		expiresAt = &t
	}

	key := &models.APIKey{
		ID:             uuid.New(),
		UserID:         userID,
		OrganizationID: &organizationID,
		Name:           name,
		KeyHash:        auth.HashKey(plaintext),
		Prefix:         auth.KeyPrefix,
		Enabled:        true,
		ExpiresAt:      expiresAt,
	}

	if err := s.keys.Create(ctx, key); err != nil {
		return nil, err
	}

	return &CreatedAPIKey{Key: plaintext, Metadata: key}, nil
}

func (s *apiKeyService) List(ctx context.Context, userID uuid.UUID) ([]*models.APIKey, error) {
	return s.keys.ListByUser(ctx, userID)
}

func (s *apiKeyService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return s.keys.Delete(ctx, id, userID)
}
