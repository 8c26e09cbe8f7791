package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"supportdesk/internal/common"
	"supportdesk/internal/repositories"
	"supportdesk/internal/sessions"
)

// KeyPrefix is prepended to generated API keys so they are recognizable in
// configuration and logs without revealing anything about the key material.
const KeyPrefix = "sdk_"

// HashKey returns the hex sha256 of a presented API key. Only hashes are
// stored and compared.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Resolver turns request headers into a TenantContext. API key and session
// paths converge on the same output shape so everything downstream is
// credential-agnostic. All lookups run on the administrative pool.
type Resolver struct {
	apiKeys  repositories.APIKeyRepository
	members  repositories.MemberRepository
	sessions sessions.Store
	tokens   *TokenManager
	log      *zap.Logger
}

func NewResolver(
	apiKeys repositories.APIKeyRepository,
	members repositories.MemberRepository,
	sessionStore sessions.Store,
	tokens *TokenManager,
	log *zap.Logger,
) *Resolver {
	return &Resolver{
		apiKeys:  apiKeys,
		members:  members,
		sessions: sessionStore,
		tokens:   tokens,
		log:      log,
	}
}

// ResolveTenantContext authenticates the request and returns the identity
// triple used to scope every statement the request will issue. The context
// is derived fresh on every call and never cached.
func (r *Resolver) ResolveTenantContext(ctx context.Context, h http.Header) (common.TenantContext, error) {
	cred := ResolveCredential(h)

	switch cred.Type {
	case CredentialAPIKey:
		return r.resolveAPIKey(ctx, cred.APIKey)
	case CredentialSession:
		return r.resolveSession(ctx, cred.SessionToken)
	default:
		return common.TenantContext{}, common.Unauthorized("Unauthorized")
	}
}

// ResolveUserIdentity authenticates the request but only requires a valid
// identity, not an organization selection. Account-level operations (creating
// a first organization, listing memberships, managing API keys) use this.
func (r *Resolver) ResolveUserIdentity(ctx context.Context, h http.Header) (uuid.UUID, error) {
	cred := ResolveCredential(h)

	switch cred.Type {
	case CredentialAPIKey:
		tc, err := r.resolveAPIKey(ctx, cred.APIKey)
		if err != nil {
			return uuid.Nil, err
		}
		return tc.UserID, nil
	case CredentialSession:
		claims, err := r.tokens.Verify(cred.SessionToken)
		if err != nil {
			return uuid.Nil, common.Unauthorized("Unauthorized")
		}
		session, err := r.sessions.Get(ctx, claims.SessionID)
		if err != nil {
			if errors.Is(err, sessions.ErrNotFound) {
				return uuid.Nil, common.Unauthorized("Unauthorized")
			}
			return uuid.Nil, common.TransientStorage(err)
		}
		return session.UserID, nil
	default:
		return uuid.Nil, common.Unauthorized("Unauthorized")
	}
}

// resolveAPIKey validates a presented key and looks up the owner's
// membership in the key's organization. A disabled key reads identically to
// an unknown key so callers cannot probe for existence.
func (r *Resolver) resolveAPIKey(ctx context.Context, presented string) (common.TenantContext, error) {
	key, err := r.apiKeys.GetByHash(ctx, HashKey(presented))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.TenantContext{}, common.Unauthorized("Invalid API key")
		}
		return common.TenantContext{}, common.TransientStorage(err)
	}

	if !key.Enabled {
		return common.TenantContext{}, common.Unauthorized("Invalid API key")
	}

	if key.ExpiresAt != nil && time.Now().After(*key.ExpiresAt) {
		return common.TenantContext{}, common.Unauthorized("API Key has expired")
	}

	if key.OrganizationID == nil {
		// A valid key must always carry an organization binding; its absence
		// is a data-integrity fault, not a client error.
		return common.TenantContext{}, common.Internal("API Key is not associated with an organization", nil)
	}

	member, err := r.members.GetByOrgAndUser(ctx, *key.OrganizationID, key.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.TenantContext{}, common.Unauthorized("Unauthorized")
		}
		return common.TenantContext{}, common.TransientStorage(err)
	}

	if err := r.apiKeys.TouchLastUsed(ctx, key.ID); err != nil {
		r.log.Warn("failed to record API key usage", zap.Error(err))
	}

	return common.TenantContext{
		OrganizationID: *key.OrganizationID,
		UserID:         key.UserID,
		Role:           member.Role,
	}, nil
}

// resolveSession validates a session token, requires an active organization
// selection, and looks up the session user's membership there.
func (r *Resolver) resolveSession(ctx context.Context, token string) (common.TenantContext, error) {
	claims, err := r.tokens.Verify(token)
	if err != nil {
		return common.TenantContext{}, common.Unauthorized("Unauthorized")
	}

	session, err := r.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return common.TenantContext{}, common.Unauthorized("Unauthorized")
		}
		return common.TenantContext{}, common.TransientStorage(err)
	}

	if session.ActiveOrganizationID == nil {
		// The identity is valid; the request just lacks a selection. This is
		// deliberately not an authentication failure.
		return common.TenantContext{}, common.BadRequest("active organization is required")
	}

	member, err := r.members.GetByOrgAndUser(ctx, *session.ActiveOrganizationID, session.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.TenantContext{}, common.Unauthorized("Unauthorized")
		}
		return common.TenantContext{}, common.TransientStorage(err)
	}

	return common.TenantContext{
		OrganizationID: *session.ActiveOrganizationID,
		UserID:         session.UserID,
		Role:           member.Role,
	}, nil
}
