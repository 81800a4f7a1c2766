package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront-orders/internal/orders"
	"storefront-orders/internal/reporting"
	"storefront-orders/internal/wallet"
)

// ReportRepo reads the immutable order and transaction history for admin reports.
// Items are not loaded.
type ReportRepo struct {
	db *sql.DB
}

var _ reporting.Repository = (*ReportRepo)(nil)

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

func (r *ReportRepo) ListOrdersCreated(ctx context.Context, from, to time.Time, userID *int64) ([]orders.Order, error) {
	q := `SELECT ` + orderColumns + `
FROM orders
WHERE created_at >= $1 AND created_at < $2
  AND ($3::BIGINT IS NULL OR user_id = $3)
ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, from, to, nullableInt(userID))
	if err != nil {
		return nil, fmt.Errorf("report orders: %w", err)
	}
	defer rows.Close()

	var out []orders.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *ReportRepo) ListTransactionsCreated(ctx context.Context, from, to time.Time, userID *int64) ([]wallet.Transaction, error) {
	const q = `
SELECT id, user_id, order_id, amount_minor, type, status, method, description, created_at
FROM transactions
WHERE created_at >= $1 AND created_at < $2
  AND ($3::BIGINT IS NULL OR user_id = $3)
ORDER BY id
`
	rows, err := r.db.QueryContext(ctx, q, from, to, nullableInt(userID))
	if err != nil {
		return nil, fmt.Errorf("report transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}
