package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"supportdesk/internal/common"
)

// UnitOfWork is a caller-supplied closure executed inside a tenant-scoped
// transaction. Every statement it issues through tx runs under the
// transaction's session-local tenant settings.
type UnitOfWork func(ctx context.Context, tx pgx.Tx) error

// TxBeginner is the slice of the pool interface the scoper needs. Both
// *pgxpool.Pool and pgxmock satisfy it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Session-local settings read by the row-level security policies via
// current_setting(). Their lifecycle is strictly bounded to one transaction.
const (
	settingTenantID = "app.tenant_id"
	settingRole     = "app.role"
	settingUserID   = "app.user_id"
)

// Scoper opens tenant-scoped transactions on the restricted pool. It is the
// only sanctioned way to run a statement against tenant data.
type Scoper struct {
	pool TxBeginner
	log  *zap.Logger
}

// NewScoper builds a Scoper over the restricted pool.
func NewScoper(pools *Pools, log *zap.Logger) *Scoper {
	return &Scoper{pool: pools.Restricted, log: log}
}

// NewScoperWithPool is the constructor used by tests.
func NewScoperWithPool(pool TxBeginner, log *zap.Logger) *Scoper {
	return &Scoper{pool: pool, log: log}
}

// WithTenantScope opens a transaction on the restricted pool, applies the
// tenant context as session-local settings, runs fn, and commits or rolls
// back. The settings are always cleared before the transaction concludes,
// on success and error paths alike; a reset failure is logged as a warning
// and never masks the original result.
//
// The boundary adds no retry behavior: unit-of-work errors and transaction
// failures propagate to the caller unmodified.
func (s *Scoper) WithTenantScope(ctx context.Context, tc common.TenantContext, fn UnitOfWork) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return common.TransientStorage(err)
	}

	// Rollback is a no-op once the transaction committed. WithoutCancel so
	// a cancelled request still releases the connection cleanly.
	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := s.applyScope(ctx, tx, tc); err != nil {
		s.resetScope(ctx, tx)
		return common.TransientStorage(err)
	}

	runErr := fn(ctx, tx)

	// Reset runs before the transaction concludes regardless of outcome.
	s.resetScope(ctx, tx)

	if runErr != nil {
		return runErr
	}

	if err := tx.Commit(ctx); err != nil {
		return common.TransientStorage(err)
	}

	return nil
}

// applyScope assigns the session-local settings the RLS policies read. The
// values are bound as statement parameters; untrusted input is never
// interpolated into the SQL text.
func (s *Scoper) applyScope(ctx context.Context, tx pgx.Tx, tc common.TenantContext) error {
	settings := []struct {
		name  string
		value string
	}{
		{settingTenantID, tc.OrganizationID.String()},
		{settingRole, tc.Role},
		{settingUserID, tc.UserID.String()},
	}

	for _, setting := range settings {
		if _, err := tx.Exec(ctx, "SELECT set_config($1, $2, true)", setting.name, setting.value); err != nil {
			return err
		}
	}
	return nil
}

// resetScope clears the session-local settings. It is idempotent and
// best-effort: after a failed statement the transaction is aborted and the
// reset itself fails, which is fine because rollback discards the settings
// with the rest of the transaction state.
func (s *Scoper) resetScope(ctx context.Context, tx pgx.Tx) {
	ctx = context.WithoutCancel(ctx)
	for _, name := range []string{settingTenantID, settingRole, settingUserID} {
		if _, err := tx.Exec(ctx, "SELECT set_config($1, '', true)", name); err != nil {
			s.log.Warn("failed to reset session-local setting",
				zap.String("setting", name),
				zap.Error(err))
		}
	}
}
