package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"supportdesk/internal/auth"
	"supportdesk/internal/common"
	"supportdesk/internal/models"
	"supportdesk/internal/sessions"
)

// Fakes backed by maps; the middleware tests exercise the resolution path
// end to end without a database.
type fakeAPIKeyRepo struct {
	byHash map[string]*models.APIKey
}

func (f *fakeAPIKeyRepo) Create(ctx context.Context, key *models.APIKey) error { return nil }
func (f *fakeAPIKeyRepo) GetByHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	if key, ok := f.byHash[keyHash]; ok {
		return key, nil
	}
	return nil, pgx.ErrNoRows
}
func (f *fakeAPIKeyRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.APIKey, error) {
	return nil, nil
}
func (f *fakeAPIKeyRepo) TouchLastUsed(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeAPIKeyRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return nil
}
func (f *fakeAPIKeyRepo) DeleteExpired(ctx context.Context) (int64, error) { return 0, nil }

type fakeMemberRepo struct {
	members map[string]*models.Member
}

func memberKey(orgID, userID uuid.UUID) string { return orgID.String() + "/" + userID.String() }

func (f *fakeMemberRepo) Create(ctx context.Context, member *models.Member) error { return nil }
func (f *fakeMemberRepo) GetByOrgAndUser(ctx context.Context, organizationID, userID uuid.UUID) (*models.Member, error) {
	if m, ok := f.members[memberKey(organizationID, userID)]; ok {
		return m, nil
	}
	return nil, pgx.ErrNoRows
}
func (f *fakeMemberRepo) ListByOrganization(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]*models.Member, error) {
	return nil, nil
}
func (f *fakeMemberRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Member, error) {
	return nil, nil
}
func (f *fakeMemberRepo) Delete(ctx context.Context, organizationID, userID uuid.UUID) error {
	return nil
}

type fakeSessionStore struct {
	byID map[string]*sessions.Session
}

func (f *fakeSessionStore) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (*sessions.Session, error) {
	return nil, nil
}
func (f *fakeSessionStore) Get(ctx context.Context, id string) (*sessions.Session, error) {
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return nil, sessions.ErrNotFound
}
func (f *fakeSessionStore) SetActiveOrganization(ctx context.Context, id string, organizationID uuid.UUID) error {
	return nil
}
func (f *fakeSessionStore) Delete(ctx context.Context, id string) error { return nil }

type middlewareFixture struct {
	mw     *AuthMiddleware
	tokens *auth.TokenManager
	orgID  uuid.UUID
	userID uuid.UUID
	apiKey string
}

func newMiddlewareFixture(t *testing.T) *middlewareFixture {
	t.Helper()

	orgID := uuid.New()
	userID := uuid.New()
	apiKey := "sdk_test_key"

	keys := &fakeAPIKeyRepo{byHash: map[string]*models.APIKey{
		auth.HashKey(apiKey): {
			ID:             uuid.New(),
			UserID:         userID,
			OrganizationID: &orgID,
			Enabled:        true,
		},
	}}
	members := &fakeMemberRepo{members: map[string]*models.Member{
		memberKey(orgID, userID): {OrganizationID: orgID, UserID: userID, Role: models.RoleAdmin},
	}}
	store := &fakeSessionStore{byID: map[string]*sessions.Session{
		"sess-active": {ID: "sess-active", UserID: userID, ActiveOrganizationID: &orgID},
		"sess-idle":   {ID: "sess-idle", UserID: userID},
	}}

	tokens, err := auth.NewTokenManager("test-secret", "", 15*time.Minute)
	assert.NoError(t, err)

	resolver := auth.NewResolver(keys, members, store, tokens, zap.NewNop())
	return &middlewareFixture{
		mw:     NewAuthMiddleware(resolver),
		tokens: tokens,
		orgID:  orgID,
		userID: userID,
		apiKey: apiKey,
	}
}

func runRequest(mw echo.MiddlewareFunc, req *http.Request, handler echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(handler)(c)
	return rec, err
}

func TestRequireTenantContext_InjectsContext(t *testing.T) {
	fx := newMiddlewareFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
	req.Header.Set(auth.HeaderAPIKey, fx.apiKey)

	var got common.TenantContext
	_, err := runRequest(fx.mw.RequireTenantContext(), req, func(c echo.Context) error {
		tc, ok := common.GetTenantContext(c.Request().Context())
		assert.True(t, ok)
		got = tc
		return c.NoContent(http.StatusOK)
	})

	assert.NoError(t, err)
	assert.Equal(t, fx.orgID, got.OrganizationID)
	assert.Equal(t, fx.userID, got.UserID)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

func TestRequireTenantContext_RejectsMissingCredential(t *testing.T) {
	fx := newMiddlewareFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/tickets", nil)

	_, err := runRequest(fx.mw.RequireTenantContext(), req, func(c echo.Context) error {
		t.Fatal("handler must not run without a credential")
		return nil
	})

	assert.True(t, common.IsKind(err, common.KindUnauthorized))
}

func TestRequireTenantContext_SessionWithActiveOrganization(t *testing.T) {
	fx := newMiddlewareFixture(t)

	token, err := fx.tokens.Issue(fx.userID, "sess-active")
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	_, err = runRequest(fx.mw.RequireTenantContext(), req, func(c echo.Context) error {
		tc, ok := common.GetTenantContext(c.Request().Context())
		assert.True(t, ok)
		assert.Equal(t, fx.orgID, tc.OrganizationID)
		return c.NoContent(http.StatusOK)
	})

	assert.NoError(t, err)
}

func TestRequireTenantContext_SessionWithoutSelectionIsBadRequest(t *testing.T) {
	fx := newMiddlewareFixture(t)

	token, err := fx.tokens.Issue(fx.userID, "sess-idle")
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	_, err = runRequest(fx.mw.RequireTenantContext(), req, func(c echo.Context) error {
		t.Fatal("handler must not run without an active organization")
		return nil
	})

	assert.True(t, common.IsKind(err, common.KindBadRequest))
}

func TestRequireUser_AllowsSessionWithoutSelection(t *testing.T) {
	fx := newMiddlewareFixture(t)

	token, err := fx.tokens.Issue(fx.userID, "sess-idle")
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/organizations", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	_, err = runRequest(fx.mw.RequireUser(), req, func(c echo.Context) error {
		userID, ok := common.GetUserIDFromContext(c.Request().Context())
		assert.True(t, ok)
		assert.Equal(t, fx.userID, userID)
		return c.NoContent(http.StatusOK)
	})

	assert.NoError(t, err)
}

func TestRequireUser_RejectsGarbageToken(t *testing.T) {
	fx := newMiddlewareFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/organizations", nil)
	req.Header.Set("Authorization", "Bearer garbage")

	_, err := runRequest(fx.mw.RequireUser(), req, func(c echo.Context) error {
		t.Fatal("handler must not run with an invalid token")
		return nil
	})

	assert.True(t, common.IsKind(err, common.KindUnauthorized))
}
