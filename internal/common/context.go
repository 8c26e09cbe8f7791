package common

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey        contextKey = "user_id"
	OrganizationKey  contextKey = "organization_id"
	TenantContextKey contextKey = "tenant_context"
)

// TenantContext is the immutable identity triple attached to a request after
// authentication succeeds. It is built fresh on every request and never
// cached across requests.
type TenantContext struct {
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	Role           string
}

// WithTenantContext returns a child context carrying tc plus the individual
// user/organization keys used by handlers that only need one of them.
func WithTenantContext(ctx context.Context, tc TenantContext) context.Context {
	ctx = context.WithValue(ctx, TenantContextKey, tc)
	ctx = context.WithValue(ctx, UserIDKey, tc.UserID)
	return context.WithValue(ctx, OrganizationKey, tc.OrganizationID)
}

// GetTenantContext extracts the tenant context from a request context.
func GetTenantContext(ctx context.Context) (TenantContext, bool) {
	tc, ok := ctx.Value(TenantContextKey).(TenantContext)
	return tc, ok
}

// GetUserIDFromContext extracts the authenticated user id.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return id, ok
}

// GetOrganizationIDFromContext extracts the active organization id.
func GetOrganizationIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(OrganizationKey).(uuid.UUID)
	return id, ok
}
