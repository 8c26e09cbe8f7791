package database

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"supportdesk/internal/common"
)

type ScoperTestSuite struct {
	suite.Suite
	mock   pgxmock.PgxPoolIface
	scoper *Scoper
	tc     common.TenantContext
	ctx    context.Context
}

func (suite *ScoperTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.scoper = NewScoperWithPool(mock, zap.NewNop())
	suite.tc = common.TenantContext{
		OrganizationID: uuid.New(),
		UserID:         uuid.New(),
		Role:           "admin",
	}
	suite.ctx = context.Background()
}

func (suite *ScoperTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestScoperTestSuite(t *testing.T) {
	suite.Run(t, new(ScoperTestSuite))
}

func (suite *ScoperTestSuite) expectApplyScope() {
	suite.mock.ExpectExec(`SELECT set_config\(\$1, \$2, true\)`).
		WithArgs("app.tenant_id", suite.tc.OrganizationID.String()).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	suite.mock.ExpectExec(`SELECT set_config\(\$1, \$2, true\)`).
		WithArgs("app.role", suite.tc.Role).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	suite.mock.ExpectExec(`SELECT set_config\(\$1, \$2, true\)`).
		WithArgs("app.user_id", suite.tc.UserID.String()).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
}

func (suite *ScoperTestSuite) expectResetScope() {
	for _, name := range []string{"app.tenant_id", "app.role", "app.user_id"} {
		suite.mock.ExpectExec(`SELECT set_config\(\$1, '', true\)`).
			WithArgs(name).
			WillReturnResult(pgxmock.NewResult("SELECT", 1))
	}
}

func (suite *ScoperTestSuite) TestWithTenantScope_CommitsOnSuccess() {
	suite.mock.ExpectBegin()
	suite.expectApplyScope()
	suite.mock.ExpectExec(`UPDATE tickets`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.expectResetScope()
	suite.mock.ExpectCommit()
	suite.mock.ExpectRollback() // deferred rollback after commit is a no-op

	var ran bool
	err := suite.scoper.WithTenantScope(suite.ctx, suite.tc, func(ctx context.Context, tx pgx.Tx) error {
		ran = true
		_, err := tx.Exec(ctx, "UPDATE tickets SET title = 'x'")
		return err
	})

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), ran)
}

func (suite *ScoperTestSuite) TestWithTenantScope_SettingsAreParameterized() {
	// The tenant id travels as a bind parameter, never spliced into the
	// statement text, so a hostile value cannot escape the setting.
	suite.mock.ExpectBegin()
	suite.expectApplyScope()
	suite.expectResetScope()
	suite.mock.ExpectCommit()
	suite.mock.ExpectRollback()

	err := suite.scoper.WithTenantScope(suite.ctx, suite.tc, func(ctx context.Context, tx pgx.Tx) error {
		return nil
	})
	assert.NoError(suite.T(), err)
}

func (suite *ScoperTestSuite) TestWithTenantScope_RollsBackOnUnitOfWorkError() {
	suite.mock.ExpectBegin()
	suite.expectApplyScope()
	suite.expectResetScope()
	suite.mock.ExpectRollback()

	wantErr := errors.New("constraint violated")
	err := suite.scoper.WithTenantScope(suite.ctx, suite.tc, func(ctx context.Context, tx pgx.Tx) error {
		return wantErr
	})

	// The unit-of-work error propagates unmodified; no commit was attempted.
	assert.ErrorIs(suite.T(), err, wantErr)
}

func (suite *ScoperTestSuite) TestWithTenantScope_ResetRunsBeforeErrorReturn() {
	// Even when fn fails, the settings are cleared before the boundary
	// returns; the reset never masks fn's error.
	suite.mock.ExpectBegin()
	suite.expectApplyScope()
	for _, name := range []string{"app.tenant_id", "app.role", "app.user_id"} {
		suite.mock.ExpectExec(`SELECT set_config\(\$1, '', true\)`).
			WithArgs(name).
			WillReturnError(errors.New("current transaction is aborted"))
	}
	suite.mock.ExpectRollback()

	wantErr := errors.New("statement failed")
	err := suite.scoper.WithTenantScope(suite.ctx, suite.tc, func(ctx context.Context, tx pgx.Tx) error {
		return wantErr
	})

	assert.ErrorIs(suite.T(), err, wantErr)
}

func (suite *ScoperTestSuite) TestWithTenantScope_ApplyFailureIsTransient() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`SELECT set_config\(\$1, \$2, true\)`).
		WithArgs("app.tenant_id", suite.tc.OrganizationID.String()).
		WillReturnError(errors.New("connection reset"))
	suite.expectResetScope()
	suite.mock.ExpectRollback()

	err := suite.scoper.WithTenantScope(suite.ctx, suite.tc, func(ctx context.Context, tx pgx.Tx) error {
		suite.T().Fatal("unit of work must not run when scoping fails")
		return nil
	})

	assert.True(suite.T(), common.IsKind(err, common.KindTransient))
}

func (suite *ScoperTestSuite) TestWithTenantScope_BeginFailureIsTransient() {
	suite.mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	err := suite.scoper.WithTenantScope(suite.ctx, suite.tc, func(ctx context.Context, tx pgx.Tx) error {
		suite.T().Fatal("unit of work must not run without a transaction")
		return nil
	})

	assert.True(suite.T(), common.IsKind(err, common.KindTransient))
}

func (suite *ScoperTestSuite) TestResetScope_Idempotent() {
	// A second reset, defensive or otherwise, succeeds and changes nothing.
	suite.mock.ExpectBegin()
	suite.expectResetScope()
	suite.expectResetScope()
	suite.mock.ExpectRollback()

	tx, err := suite.mock.Begin(suite.ctx)
	assert.NoError(suite.T(), err)

	suite.scoper.resetScope(suite.ctx, tx)
	suite.scoper.resetScope(suite.ctx, tx)

	assert.NoError(suite.T(), tx.Rollback(suite.ctx))
}

func (suite *ScoperTestSuite) TestWithTenantScope_CommitFailureIsTransient() {
	suite.mock.ExpectBegin()
	suite.expectApplyScope()
	suite.expectResetScope()
	suite.mock.ExpectCommit().WillReturnError(errors.New("broken pipe"))
	suite.mock.ExpectRollback()

	err := suite.scoper.WithTenantScope(suite.ctx, suite.tc, func(ctx context.Context, tx pgx.Tx) error {
		return nil
	})

	assert.True(suite.T(), common.IsKind(err, common.KindTransient))
}
