package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-orders/internal/catalog"
	"storefront-orders/internal/wallet"
)

// txLedger implements wallet.Ledger and catalog.StockLedger on one *sql.Tx.
type txLedger struct {
	tx *sql.Tx
}

var (
	_ wallet.Ledger       = txLedger{}
	_ catalog.StockLedger = txLedger{}
)

func (l txLedger) LockWallet(ctx context.Context, userID int64) (wallet.Wallet, error) {
	// Serializes every money operation on this wallet until the tx ends.
	const q = `
SELECT id, user_id, balance_minor, created_at, updated_at
FROM wallets
WHERE user_id = $1 AND NOT deleted
FOR UPDATE
`
	w, err := scanWallet(l.tx.QueryRowContext(ctx, q, userID))
	if err != nil {
		return wallet.Wallet{}, err
	}
	return w, nil
}

func (l txLedger) SetBalance(ctx context.Context, walletID, balanceMinor int64, now time.Time) error {
	const q = `UPDATE wallets SET balance_minor = $2, updated_at = $3 WHERE id = $1`
	res, err := l.tx.ExecContext(ctx, q, walletID, balanceMinor, now)
	if err != nil {
		return fmt.Errorf("set wallet balance: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return wallet.ErrWalletNotFound
	}
	return nil
}

func (l txLedger) AppendWalletAudit(ctx context.Context, a *wallet.Audit) error {
	const q = `
INSERT INTO wallet_audits (user_id, wallet_id, amount_minor, type, reason, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id
`
	return l.tx.QueryRowContext(ctx, q,
		a.UserID,
		a.WalletID,
		a.AmountMinor,
		string(a.Type),
		string(a.Reason),
		a.CreatedAt,
	).Scan(&a.ID)
}

func (l txLedger) AppendTransaction(ctx context.Context, t *wallet.Transaction) error {
	return insertTransaction(ctx, l.tx, t)
}

func (l txLedger) LockProducts(ctx context.Context, ids []int64) (map[int64]catalog.Product, error) {
	ids = catalog.LockOrder(ids)
	out := make(map[int64]catalog.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	const q = `
SELECT id, name, price_minor, stock_quantity, active, created_at, updated_at
FROM products
WHERE id = ANY($1)
ORDER BY id
FOR UPDATE
`
	rows, err := l.tx.QueryContext(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (l txLedger) AdjustStock(ctx context.Context, productID, delta int64, now time.Time) (catalog.Product, error) {
	// The guard keeps stock non-negative even if a caller skipped LockProducts.
	const q = `
UPDATE products
SET stock_quantity = stock_quantity + $2, updated_at = $3
WHERE id = $1 AND stock_quantity + $2 >= 0
RETURNING id, name, price_minor, stock_quantity, active, created_at, updated_at
`
	p, err := scanProduct(l.tx.QueryRowContext(ctx, q, productID, delta, now))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, catalog.ErrProductNotFound) {
		return catalog.Product{}, fmt.Errorf("adjust stock: %w", err)
	}

	var exists bool
	if err := l.tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return catalog.Product{}, fmt.Errorf("adjust stock: %w", err)
	}
	if !exists {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	return catalog.Product{}, catalog.ErrInsufficientStock
}

func scanWallet(row scanner) (wallet.Wallet, error) {
	var w wallet.Wallet
	if err := row.Scan(&w.ID, &w.UserID, &w.BalanceMinor, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return wallet.Wallet{}, wallet.ErrWalletNotFound
		}
		return wallet.Wallet{}, err
	}
	return w, nil
}

func scanProduct(row scanner) (catalog.Product, error) {
	var p catalog.Product
	if err := row.Scan(&p.ID, &p.Name, &p.PriceMinor, &p.StockQuantity, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Product{}, catalog.ErrProductNotFound
		}
		return catalog.Product{}, err
	}
	return p, nil
}

func insertTransaction(ctx context.Context, q querier, t *wallet.Transaction) error {
	const stmt = `
INSERT INTO transactions (user_id, order_id, amount_minor, type, status, method, description, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id
`
	return q.QueryRowContext(ctx, stmt,
		t.UserID,
		nullableInt(t.OrderID),
		t.AmountMinor,
		string(t.Type),
		string(t.Status),
		string(t.Method),
		t.Description,
		t.CreatedAt,
	).Scan(&t.ID)
}
