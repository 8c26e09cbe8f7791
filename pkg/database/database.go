// Package database provides the dual-connection model and the tenant-scoped
// transaction boundary. Two pgx pools point at the same logical database: an
// administrative pool whose role bypasses row-level security, used only for
// identity/membership resolution and maintenance, and a restricted pool whose
// role is always subject to the RLS policies, used for all tenant data.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"supportdesk/internal/config"
)

// Pools holds the two logical handles to the database.
type Pools struct {
	Admin      *pgxpool.Pool
	Restricted *pgxpool.Pool

	// RLSDisabled is true when Restricted is an alias for Admin. It exists
	// only for deployments without RLS configured and is never a silent
	// fallback: NewPools logs a warning banner when it is set.
	RLSDisabled bool
}

// NewPools connects both pools and verifies connectivity. Separate pools are
// used so a saturated tenant-data workload cannot starve the
// membership-resolution path.
func NewPools(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*Pools, error) {
	admin, err := newPool(ctx, cfg.AdminURL)
	if err != nil {
		return nil, fmt.Errorf("connecting admin pool: %w", err)
	}

	if cfg.DisableRLS {
		log.Warn("RLS ENFORCEMENT IS DISABLED: the restricted pool is aliased to the admin pool and tenant isolation relies on nothing. This must only be used in deployments without RLS configured.")
		return &Pools{Admin: admin, Restricted: admin, RLSDisabled: true}, nil
	}

	restricted, err := newPool(ctx, cfg.RestrictedURL)
	if err != nil {
		admin.Close()
		return nil, fmt.Errorf("connecting restricted pool: %w", err)
	}

	return &Pools{Admin: admin, Restricted: restricted}, nil
}

func newPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// Close releases both pools.
func (p *Pools) Close() {
	p.Admin.Close()
	if !p.RLSDisabled {
		p.Restricted.Close()
	}
}
