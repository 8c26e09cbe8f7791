package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"supportdesk/internal/common"
	"supportdesk/internal/models"
	"supportdesk/internal/sessions"
)

// Mock repositories and stores
type MockAPIKeyRepository struct {
	mock.Mock
}

func (m *MockAPIKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	args := m.Called(ctx, keyHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.APIKey, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, member *models.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) GetByOrgAndUser(ctx context.Context, organizationID, userID uuid.UUID) (*models.Member, error) {
	args := m.Called(ctx, organizationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockMemberRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]*models.Member, error) {
	args := m.Called(ctx, organizationID, limit, offset)
	return args.Get(0).([]*models.Member), args.Error(1)
}

func (m *MockMemberRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Member, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.Member), args.Error(1)
}

func (m *MockMemberRepository) Delete(ctx context.Context, organizationID, userID uuid.UUID) error {
	args := m.Called(ctx, organizationID, userID)
	return args.Error(0)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (*sessions.Session, error) {
	args := m.Called(ctx, userID, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessions.Session), args.Error(1)
}

func (m *MockSessionStore) Get(ctx context.Context, id string) (*sessions.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessions.Session), args.Error(1)
}

func (m *MockSessionStore) SetActiveOrganization(ctx context.Context, id string, organizationID uuid.UUID) error {
	args := m.Called(ctx, id, organizationID)
	return args.Error(0)
}

func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type ResolverTestSuite struct {
	suite.Suite
	mockKeys     *MockAPIKeyRepository
	mockMembers  *MockMemberRepository
	mockSessions *MockSessionStore
	tokens       *TokenManager
	resolver     *Resolver
	orgID        uuid.UUID
	userID       uuid.UUID
}

func (suite *ResolverTestSuite) SetupTest() {
	suite.mockKeys = &MockAPIKeyRepository{}
	suite.mockMembers = &MockMemberRepository{}
	suite.mockSessions = &MockSessionStore{}

	tokens, err := NewTokenManager("test-secret", "", 15*time.Minute)
	assert.NoError(suite.T(), err)
	suite.tokens = tokens

	suite.resolver = NewResolver(suite.mockKeys, suite.mockMembers, suite.mockSessions, tokens, zap.NewNop())
	suite.orgID = uuid.New()
	suite.userID = uuid.New()
}

func (suite *ResolverTestSuite) TearDownTest() {
	suite.mockKeys.AssertExpectations(suite.T())
	suite.mockMembers.AssertExpectations(suite.T())
	suite.mockSessions.AssertExpectations(suite.T())
}

func TestResolverTestSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}

func (suite *ResolverTestSuite) apiKeyHeader(key string) http.Header {
	h := http.Header{}
	h.Set(HeaderAPIKey, key)
	return h
}

func (suite *ResolverTestSuite) sessionHeader(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}

func (suite *ResolverTestSuite) validKey(key string) *models.APIKey {
	return &models.APIKey{
		ID:             uuid.New(),
		UserID:         suite.userID,
		OrganizationID: &suite.orgID,
		Name:           "ci",
		KeyHash:        HashKey(key),
		Prefix:         KeyPrefix,
		Enabled:        true,
	}
}

func (suite *ResolverTestSuite) TestResolve_APIKeySuccess() {
	key := "sdk_valid"
	suite.mockKeys.On("GetByHash", mock.Anything, HashKey(key)).Return(suite.validKey(key), nil).Once()
	suite.mockMembers.On("GetByOrgAndUser", mock.Anything, suite.orgID, suite.userID).
		Return(&models.Member{OrganizationID: suite.orgID, UserID: suite.userID, Role: models.RoleAdmin}, nil).Once()
	suite.mockKeys.On("TouchLastUsed", mock.Anything, mock.Anything).Return(nil).Once()

	tc, err := suite.resolver.ResolveTenantContext(context.Background(), suite.apiKeyHeader(key))

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.orgID, tc.OrganizationID)
	assert.Equal(suite.T(), suite.userID, tc.UserID)
	assert.Equal(suite.T(), models.RoleAdmin, tc.Role)
}

func (suite *ResolverTestSuite) TestResolve_UnknownAPIKey() {
	suite.mockKeys.On("GetByHash", mock.Anything, mock.Anything).Return(nil, pgx.ErrNoRows).Once()

	_, err := suite.resolver.ResolveTenantContext(context.Background(), suite.apiKeyHeader("sdk_unknown"))

	assert.True(suite.T(), common.IsKind(err, common.KindUnauthorized))
	assert.Contains(suite.T(), err.Error(), "Invalid API key")
}

func (suite *ResolverTestSuite) TestResolve_DisabledKeyReadsLikeUnknown() {
	key := "sdk_disabled"
	apiKey := suite.validKey(key)
	apiKey.Enabled = false
	suite.mockKeys.On("GetByHash", mock.Anything, HashKey(key)).Return(apiKey, nil).Once()

	_, err := suite.resolver.ResolveTenantContext(context.Background(), suite.apiKeyHeader(key))

	// A disabled key is indistinguishable from an unknown one.
	assert.True(suite.T(), common.IsKind(err, common.KindUnauthorized))
	assert.Contains(suite.T(), err.Error(), "Invalid API key")
}

func (suite *ResolverTestSuite) TestResolve_ExpiredAPIKey() {
	key := "sdk_expired"
	apiKey := suite.validKey(key)
	past := time.Now().Add(-time.Hour)
	apiKey.ExpiresAt = &past
	suite.mockKeys.On("GetByHash", mock.Anything, HashKey(key)).Return(apiKey, nil).Once()

	_, err := suite.resolver.ResolveTenantContext(context.Background(), suite.apiKeyHeader(key))

	assert.True(suite.T(), common.IsKind(err, common.KindUnauthorized))
	assert.Contains(suite.T(), err.Error(), "API Key has expired")
}

func (suite *ResolverTestSuite) TestResolve_KeyWithoutOrganizationIsInternal() {
	key := "sdk_orphan"
	apiKey := suite.validKey(key)
	apiKey.OrganizationID = nil
	suite.mockKeys.On("GetByHash", mock.Anything, HashKey(key)).Return(apiKey, nil).Once()

	_, err := suite.resolver.ResolveTenantContext(context.Background(), suite.apiKeyHeader(key))

	assert.True(suite.T(), common.IsKind(err, common.KindInternal))
	assert.Contains(suite.T(), err.Error(), "API Key is not associated with an organization")
}

func (suite *ResolverTestSuite) TestResolve_KeyOwnerNoLongerMember() {
	key := "sdk_removed"
	suite.mockKeys.On("GetByHash", mock.Anything, HashKey(key)).Return(suite.validKey(key), nil).Once()
	suite.mockMembers.On("GetByOrgAndUser", mock.Anything, suite.orgID, suite.userID).
		Return(nil, pgx.ErrNoRows).Once()

	_, err := suite.resolver.ResolveTenantContext(context.Background(), suite.apiKeyHeader(key))

	assert.True(suite.T(), common.IsKind(err, common.KindUnauthorized))
}

func (suite *ResolverTestSuite) TestResolve_TouchFailureDoesNotFailRequest() {
	key := "sdk_valid"
	suite.mockKeys.On("GetByHash", mock.Anything, HashKey(key)).Return(suite.validKey(key), nil).Once()
	suite.mockMembers.On("GetByOrgAndUser", mock.Anything, suite.orgID, suite.userID).
		Return(&models.Member{OrganizationID: suite.orgID, UserID: suite.userID, Role: models.RoleMember}, nil).Once()
	suite.mockKeys.On("TouchLastUsed", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	tc, err := suite.resolver.ResolveTenantContext(context.Background(), suite.apiKeyHeader(key))

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.orgID, tc.OrganizationID)
}

func (suite *ResolverTestSuite) TestResolve_SessionSuccess() {
	token, err := suite.tokens.Issue(suite.userID, "sess-1")
	assert.NoError(suite.T(), err)

	suite.mockSessions.On("Get", mock.Anything, "sess-1").Return(&sessions.Session{
		ID:                   "sess-1",
		UserID:               suite.userID,
		ActiveOrganizationID: &suite.orgID,
	}, nil).Once()
	suite.mockMembers.On("GetByOrgAndUser", mock.Anything, suite.orgID, suite.userID).
		Return(&models.Member{OrganizationID: suite.orgID, UserID: suite.userID, Role: models.RoleOwner}, nil).Once()

	tc, err := suite.resolver.ResolveTenantContext(context.Background(), suite.sessionHeader(token))

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.orgID, tc.OrganizationID)
	assert.Equal(suite.T(), models.RoleOwner, tc.Role)
}

func (suite *ResolverTestSuite) TestResolve_SessionWithoutActiveOrganization() {
	token, err := suite.tokens.Issue(suite.userID, "sess-2")
	assert.NoError(suite.T(), err)

	suite.mockSessions.On("Get", mock.Anything, "sess-2").Return(&sessions.Session{
		ID:     "sess-2",
		UserID: suite.userID,
	}, nil).Once()

	_, err = suite.resolver.ResolveTenantContext(context.Background(), suite.sessionHeader(token))

	// Valid identity without a selection is a client error, not an
	// authentication failure.
	assert.True(suite.T(), common.IsKind(err, common.KindBadRequest))
	assert.Contains(suite.T(), err.Error(), "active organization is required")
}

func (suite *ResolverTestSuite) TestResolve_RevokedSession() {
	token, err := suite.tokens.Issue(suite.userID, "sess-3")
	assert.NoError(suite.T(), err)

	suite.mockSessions.On("Get", mock.Anything, "sess-3").Return(nil, sessions.ErrNotFound).Once()

	_, err = suite.resolver.ResolveTenantContext(context.Background(), suite.sessionHeader(token))

	assert.True(suite.T(), common.IsKind(err, common.KindUnauthorized))
}

func (suite *ResolverTestSuite) TestResolve_GarbageToken() {
	_, err := suite.resolver.ResolveTenantContext(context.Background(), suite.sessionHeader("not-a-jwt"))

	assert.True(suite.T(), common.IsKind(err, common.KindUnauthorized))
}

func (suite *ResolverTestSuite) TestResolve_SessionMemberRemoved() {
	token, err := suite.tokens.Issue(suite.userID, "sess-4")
	assert.NoError(suite.T(), err)

	suite.mockSessions.On("Get", mock.Anything, "sess-4").Return(&sessions.Session{
		ID:                   "sess-4",
		UserID:               suite.userID,
		ActiveOrganizationID: &suite.orgID,
	}, nil).Once()
	suite.mockMembers.On("GetByOrgAndUser", mock.Anything, suite.orgID, suite.userID).
		Return(nil, pgx.ErrNoRows).Once()

	_, err = suite.resolver.ResolveTenantContext(context.Background(), suite.sessionHeader(token))

	assert.True(suite.T(), common.IsKind(err, common.KindUnauthorized))
}

func (suite *ResolverTestSuite) TestResolve_NoCredential() {
	_, err := suite.resolver.ResolveTenantContext(context.Background(), http.Header{})

	assert.True(suite.T(), common.IsKind(err, common.KindUnauthorized))
}

func (suite *ResolverTestSuite) TestResolve_APIKeyTakesPrecedenceOverSession() {
	key := "sdk_valid"
	token, err := suite.tokens.Issue(suite.userID, "sess-5")
	assert.NoError(suite.T(), err)

	h := suite.apiKeyHeader(key)
	h.Set("Authorization", "Bearer "+token)

	suite.mockKeys.On("GetByHash", mock.Anything, HashKey(key)).Return(suite.validKey(key), nil).Once()
	suite.mockMembers.On("GetByOrgAndUser", mock.Anything, suite.orgID, suite.userID).
		Return(&models.Member{OrganizationID: suite.orgID, UserID: suite.userID, Role: models.RoleAdmin}, nil).Once()
	suite.mockKeys.On("TouchLastUsed", mock.Anything, mock.Anything).Return(nil).Once()

	tc, err := suite.resolver.ResolveTenantContext(context.Background(), h)

	// The session store is never consulted when a key is present.
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.orgID, tc.OrganizationID)
}

func (suite *ResolverTestSuite) TestResolveUserIdentity_SessionWithoutOrg() {
	token, err := suite.tokens.Issue(suite.userID, "sess-6")
	assert.NoError(suite.T(), err)

	suite.mockSessions.On("Get", mock.Anything, "sess-6").Return(&sessions.Session{
		ID:     "sess-6",
		UserID: suite.userID,
	}, nil).Once()

	userID, err := suite.resolver.ResolveUserIdentity(context.Background(), suite.sessionHeader(token))

	// Identity resolution succeeds even before any organization is selected.
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.userID, userID)
}
