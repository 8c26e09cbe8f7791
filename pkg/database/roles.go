package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateRestrictedRole creates the RLS-subject login role and grants it the
// table privileges it needs. The role is deliberately not a superuser and
// does not carry BYPASSRLS, so every statement it issues goes through the
// policies. Safe to call when the role already exists.
func CreateRestrictedRole(ctx context.Context, pool *pgxpool.Pool, name, password string) error {
	// Role names and passwords cannot be bound as statement parameters, so
	// let the server quote them.
	var createStmt string
	err := pool.QueryRow(ctx,
		"SELECT format('CREATE ROLE %I LOGIN PASSWORD %L', $1::text, $2::text)",
		name, password,
	).Scan(&createStmt)
	if err != nil {
		return fmt.Errorf("formatting role DDL: %w", err)
	}

	if _, err := pool.Exec(ctx, createStmt); err != nil {
		var pgErr *pgconn.PgError
		// 42710: role already exists.
		if !errors.As(err, &pgErr) || pgErr.Code != "42710" {
			return fmt.Errorf("creating restricted role: %w", err)
		}
	}

	var grantStmt string
	err = pool.QueryRow(ctx,
		"SELECT format('GRANT SELECT, INSERT, UPDATE, DELETE ON ALL TABLES IN SCHEMA public TO %I', $1::text)",
		name,
	).Scan(&grantStmt)
	if err != nil {
		return fmt.Errorf("formatting grant DDL: %w", err)
	}

	if _, err := pool.Exec(ctx, grantStmt); err != nil {
		return fmt.Errorf("granting privileges: %w", err)
	}

	return nil
}
