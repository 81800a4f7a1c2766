package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront-orders/internal/wallet"
	"storefront-orders/pkg/utils"
)

type WalletStore struct {
	db *sql.DB
}

var _ wallet.Store = (*WalletStore)(nil)

func NewWalletStore(db *sql.DB) *WalletStore {
	return &WalletStore{db: db}
}

func (s *WalletStore) GetWallet(ctx context.Context, userID int64) (wallet.Wallet, error) {
	const q = `
SELECT id, user_id, balance_minor, created_at, updated_at
FROM wallets
WHERE user_id = $1 AND NOT deleted
`
	return scanWallet(s.db.QueryRowContext(ctx, q, userID))
}

func (s *WalletStore) RunInTx(ctx context.Context, fn func(ctx context.Context, l wallet.Ledger) error) error {
	return utils.WithTx(ctx, s.db, utils.ReadCommitted(), func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, txLedger{tx: tx})
	})
}

func (s *WalletStore) SoftDeleteWallet(ctx context.Context, userID int64, now time.Time) (bool, error) {
	const q = `UPDATE wallets SET deleted = true, updated_at = $2 WHERE user_id = $1 AND NOT deleted`
	res, err := s.db.ExecContext(ctx, q, userID, now)
	if err != nil {
		return false, fmt.Errorf("delete wallet: %w", err)
	}
	return affectedOne(res)
}

// ListTransactions returns the user's financial log, newest first.
func (s *WalletStore) ListTransactions(ctx context.Context, userID int64, limit int) ([]wallet.Transaction, error) {
	const q = `
SELECT id, user_id, order_id, amount_minor, type, status, method, description, created_at
FROM transactions
WHERE user_id = $1
ORDER BY id DESC
LIMIT $2
`
	rows, err := s.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func collectTransactions(rows *sql.Rows) ([]wallet.Transaction, error) {
	var out []wallet.Transaction
	for rows.Next() {
		var (
			t       wallet.Transaction
			orderID sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.UserID, &orderID, &t.AmountMinor, &t.Type, &t.Status, &t.Method, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.OrderID = ptrFromNull(orderID)
		out = append(out, t)
	}
	return out, rows.Err()
}
