package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"supportdesk/internal/common"
	"supportdesk/internal/models"
	"supportdesk/internal/repositories"
	"supportdesk/pkg/database"
)

const (
	restrictedRole     = "app_restricted"
	restrictedPassword = "app_restricted_pw"
)

type fixture struct {
	pools  *database.Pools
	scoper *database.Scoper
	orgA   uuid.UUID
	orgB   uuid.UUID
	userID uuid.UUID
}

// setupFixture starts a PostgreSQL container, migrates the schema, creates
// the restricted role, applies the policies, and seeds two organizations:
// 12 tickets in A and 3 in B.
func setupFixture(t *testing.T) *fixture {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}

	ctx := context.Background()
	log := zap.NewNop()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("supportdesk_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	admin, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(admin.Close)

	require.NoError(t, database.Migrate(ctx, admin, log))
	require.NoError(t, database.CreateRestrictedRole(ctx, admin, restrictedRole, restrictedPassword))

	// Connect the restricted pool as the RLS-subject role.
	restrictedCfg, err := pgxpool.ParseConfig(connStr)
	require.NoError(t, err)
	restrictedCfg.ConnConfig.User = restrictedRole
	restrictedCfg.ConnConfig.Password = restrictedPassword
	restricted, err := pgxpool.NewWithConfig(ctx, restrictedCfg)
	require.NoError(t, err)
	t.Cleanup(restricted.Close)

	pools := &database.Pools{Admin: admin, Restricted: restricted}
	require.NoError(t, database.ApplyRLSPolicies(ctx, pools, log))

	fx := &fixture{
		pools:  pools,
		scoper: database.NewScoper(pools, log),
		orgA:   uuid.New(),
		orgB:   uuid.New(),
		userID: uuid.New(),
	}

	// Seed through the admin pool, which bypasses the policies.
	_, err = admin.Exec(ctx, `INSERT INTO organizations (id, name, slug) VALUES ($1, 'Org A', 'org-a'), ($2, 'Org B', 'org-b')`, fx.orgA, fx.orgB)
	require.NoError(t, err)
	_, err = admin.Exec(ctx, `INSERT INTO users (id, name, email, password_hash) VALUES ($1, 'Agent', 'agent@example.com', 'x')`, fx.userID)
	require.NoError(t, err)
	_, err = admin.Exec(ctx, `INSERT INTO members (organization_id, user_id, role) VALUES ($1, $3, 'admin'), ($2, $3, 'admin')`, fx.orgA, fx.orgB, fx.userID)
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		_, err = admin.Exec(ctx, `INSERT INTO tickets (organization_id, subject, description) VALUES ($1, $2, 'seeded')`, fx.orgA, fmt.Sprintf("A-%d", i))
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err = admin.Exec(ctx, `INSERT INTO tickets (organization_id, subject, description) VALUES ($1, $2, 'seeded')`, fx.orgB, fmt.Sprintf("B-%d", i))
		require.NoError(t, err)
	}

	return fx
}

func (fx *fixture) tenantContext(orgID uuid.UUID) common.TenantContext {
	return common.TenantContext{OrganizationID: orgID, UserID: fx.userID, Role: "admin"}
}

func TestRowLevelSecurity(t *testing.T) {
	fx := setupFixture(t)
	ctx := context.Background()

	t.Run("scoped counts see only the tenant's rows", func(t *testing.T) {
		for _, tc := range []struct {
			orgID uuid.UUID
			want  int64
		}{
			{fx.orgA, 12},
			{fx.orgB, 3},
		} {
			var count int64
			err := fx.scoper.WithTenantScope(ctx, fx.tenantContext(tc.orgID), func(ctx context.Context, tx pgx.Tx) error {
				// Deliberately no organization_id predicate: the count is
				// what the policies alone let through.
				return tx.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&count)
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, count)
		}
	})

	t.Run("cross-tenant read by id finds nothing", func(t *testing.T) {
		var foreignID uuid.UUID
		err := fx.pools.Admin.QueryRow(ctx, `SELECT id FROM tickets WHERE organization_id = $1 LIMIT 1`, fx.orgB).Scan(&foreignID)
		require.NoError(t, err)

		err = fx.scoper.WithTenantScope(ctx, fx.tenantContext(fx.orgA), func(ctx context.Context, tx pgx.Tx) error {
			var id uuid.UUID
			// Lookup by primary key only; the policy is the only filter.
			return tx.QueryRow(ctx, `SELECT id FROM tickets WHERE id = $1`, foreignID).Scan(&id)
		})
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})

	t.Run("repository surfaces foreign rows as no rows", func(t *testing.T) {
		var foreignID uuid.UUID
		err := fx.pools.Admin.QueryRow(ctx, `SELECT id FROM tickets WHERE organization_id = $1 LIMIT 1`, fx.orgB).Scan(&foreignID)
		require.NoError(t, err)

		err = fx.scoper.WithTenantScope(ctx, fx.tenantContext(fx.orgA), func(ctx context.Context, tx pgx.Tx) error {
			_, err := repositories.NewTicketRepo(tx).GetByID(ctx, fx.orgA, foreignID)
			return err
		})
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})

	t.Run("cross-tenant write is rejected", func(t *testing.T) {
		err := fx.scoper.WithTenantScope(ctx, fx.tenantContext(fx.orgA), func(ctx context.Context, tx pgx.Tx) error {
			_, err := tx.Exec(ctx, `INSERT INTO tickets (organization_id, subject, description) VALUES ($1, 'smuggled', 'x')`, fx.orgB)
			return err
		})
		assert.Error(t, err)
	})

	t.Run("unscoped statements on the restricted pool match no rows", func(t *testing.T) {
		var count int64
		err := fx.pools.Restricted.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("settings do not leak across transactions", func(t *testing.T) {
		err := fx.scoper.WithTenantScope(ctx, fx.tenantContext(fx.orgA), func(ctx context.Context, tx pgx.Tx) error {
			var count int64
			return tx.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&count)
		})
		require.NoError(t, err)

		// A plain transaction on the same pool afterwards must see nothing.
		tx, err := fx.pools.Restricted.Begin(ctx)
		require.NoError(t, err)
		defer func() { _ = tx.Rollback(ctx) }()

		var setting *string
		err = tx.QueryRow(ctx, `SELECT NULLIF(current_setting('app.tenant_id', true), '')`).Scan(&setting)
		require.NoError(t, err)
		assert.Nil(t, setting)

		var count int64
		require.NoError(t, tx.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&count))
		assert.Equal(t, int64(0), count)
	})

	t.Run("member reads the tenant's customers inside a scope", func(t *testing.T) {
		customerID := uuid.New()
		_, err := fx.pools.Admin.Exec(ctx, `INSERT INTO customers (id, organization_id, name, email) VALUES ($1, $2, 'Acme', 'ops@acme.test')`, customerID, fx.orgA)
		require.NoError(t, err)

		var customers int64
		err = fx.scoper.WithTenantScope(ctx, fx.tenantContext(fx.orgA), func(ctx context.Context, tx pgx.Tx) error {
			return tx.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&customers)
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), customers)

		err = fx.scoper.WithTenantScope(ctx, fx.tenantContext(fx.orgB), func(ctx context.Context, tx pgx.Tx) error {
			return tx.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&customers)
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), customers)
	})

	t.Run("full unit of work commits inside the scope", func(t *testing.T) {
		ticket := &models.Ticket{
			ID:             uuid.New(),
			OrganizationID: fx.orgA,
			Subject:        "created in scope",
			Description:    "written through the boundary",
		}
		err := fx.scoper.WithTenantScope(ctx, fx.tenantContext(fx.orgA), func(ctx context.Context, tx pgx.Tx) error {
			return repositories.NewTicketRepo(tx).Create(ctx, ticket)
		})
		require.NoError(t, err)

		var got *models.Ticket
		err = fx.scoper.WithTenantScope(ctx, fx.tenantContext(fx.orgA), func(ctx context.Context, tx pgx.Tx) error {
			t, err := repositories.NewTicketRepo(tx).GetByID(ctx, fx.orgA, ticket.ID)
			got = t
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, "created in scope", got.Subject)
	})

	t.Run("unit of work error rolls the write back", func(t *testing.T) {
		ticketID := uuid.New()
		err := fx.scoper.WithTenantScope(ctx, fx.tenantContext(fx.orgA), func(ctx context.Context, tx pgx.Tx) error {
			if err := repositories.NewTicketRepo(tx).Create(ctx, &models.Ticket{
				ID:             ticketID,
				OrganizationID: fx.orgA,
				Subject:        "doomed",
				Description:    "rolled back",
			}); err != nil {
				return err
			}
			return fmt.Errorf("business rule violated")
		})
		require.Error(t, err)

		err = fx.scoper.WithTenantScope(ctx, fx.tenantContext(fx.orgA), func(ctx context.Context, tx pgx.Tx) error {
			_, err := repositories.NewTicketRepo(tx).GetByID(ctx, fx.orgA, ticketID)
			return err
		})
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})
}
