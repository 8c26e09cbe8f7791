package database

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

//go:embed rls/policies.sql
var rlsPoliciesSQL string

// Migrate applies pending schema migrations on the admin pool. Embedded SQL
// files are ordered by their numeric filename prefix and tracked in the
// schema_migrations table.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		parts := strings.SplitN(entry.Name(), "_", 2)
		if len(parts) < 2 {
			continue
		}
		version, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}

		var exists bool
		err = pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)",
			version,
		).Scan(&exists)
		// Fails before the first migration creates the table, which is fine.
		if err != nil {
			exists = false
		}
		if exists {
			continue
		}

		sql, err := migrationFiles.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("applying migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx,
			"INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", entry.Name(), err)
		}

		log.Info("applied migration", zap.String("file", entry.Name()))
	}

	return nil
}

// ApplyRLSPolicies (re)applies the row-level security policies on the admin
// pool. The policy DDL is idempotent. Skipped entirely when RLS is disabled
// for the deployment.
func ApplyRLSPolicies(ctx context.Context, pools *Pools, log *zap.Logger) error {
	if pools.RLSDisabled {
		log.Warn("RLS is disabled, skipping policy application")
		return nil
	}

	if _, err := pools.Admin.Exec(ctx, rlsPoliciesSQL); err != nil {
		return fmt.Errorf("applying RLS policies: %w", err)
	}

	log.Info("applied RLS policies")
	return nil
}
