package repositories

import (
	"context"

	"supportdesk/internal/models"

	"github.com/google/uuid"
)

// APIKeyRepository manages API key rows on the admin pool. Keys are stored
// hashed; GetByHash is the only lookup the credential path uses.
type APIKeyRepository interface {
	Create(ctx context.Context, key *models.APIKey) error
	GetByHash(ctx context.Context, keyHash string) (*models.APIKey, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.APIKey, error)
	TouchLastUsed(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type apiKeyRepo struct {
	db DBTX
}

func NewAPIKeyRepo(db DBTX) APIKeyRepository {
	return &apiKeyRepo{db: db}
}

func (r *apiKeyRepo) Create(ctx context.Context, key *models.APIKey) error {
	query := `
		INSERT INTO api_keys (id, user_id, organization_id, name, key_hash, prefix, enabled, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := r.db.Exec(ctx, query, key.ID, key.UserID, key.OrganizationID, key.Name, key.KeyHash, key.Prefix, key.Enabled, key.ExpiresAt)
	return err
}

func (r *apiKeyRepo) GetByHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	key := &models.APIKey{}
	query := `
		SELECT id, user_id, organization_id, name, key_hash, prefix, enabled, expires_at, last_used_at, created_at
		FROM api_keys
		WHERE key_hash = $1
	`
	err := r.db.QueryRow(ctx, query, keyHash).Scan(&key.ID, &key.UserID, &key.OrganizationID, &key.Name, &key.KeyHash, &key.Prefix, &key.Enabled, &key.ExpiresAt, &key.LastUsedAt, &key.CreatedAt)
	if err != nil {
		return nil, err
	}
	return key, nil
}

func (r *apiKeyRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.APIKey, error) {
	query := `
		SELECT id, user_id, organization_id, name, key_hash, prefix, enabled, expires_at, last_used_at, created_at
		FROM api_keys
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		key := &models.APIKey{}
		if err := rows.Scan(&key.ID, &key.UserID, &key.OrganizationID, &key.Name, &key.KeyHash, &key.Prefix, &key.Enabled, &key.ExpiresAt, &key.LastUsedAt, &key.CreatedAt); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (r *apiKeyRepo) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *apiKeyRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM api_keys WHERE id = $1 AND user_id = $2`
	_, err := r.db.Exec(ctx, query, id, userID)
	return err
}

// DeleteExpired removes keys past their expiry. Invoked by the background
// sweep, not by request handling.
func (r *apiKeyRepo) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM api_keys WHERE expires_at IS NOT NULL AND expires_at < NOW()`
	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
