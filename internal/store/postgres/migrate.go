// Package postgres implements the service stores on PostgreSQL through
// database/sql and the pgx stdlib driver.
//
// Every money workflow runs in one transaction at READ COMMITTED. Wallet rows
// are locked before product rows, and product rows are locked in ascending id
// order, so concurrent checkouts and cancellations cannot deadlock.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	"storefront-orders/pkg/utils"
)

//go:embed schema.sql
var schemaSQL string

// statements splits the embedded schema into executable statements.
// The schema has no function bodies, so a plain split on ';' is safe.
func statements() []string {
	var out []string
	for _, s := range strings.Split(schemaSQL, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Migrate applies the schema idempotently in a single transaction.
func Migrate(ctx context.Context, db *sql.DB) error {
	return utils.WithTx(ctx, db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		for i, stmt := range statements() {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migrate statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// affectedOne reports whether exactly one row changed.
func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
