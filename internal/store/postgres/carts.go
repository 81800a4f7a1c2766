package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-orders/internal/cart"
	"storefront-orders/pkg/utils"
)

type CartRepo struct {
	db *sql.DB
}

var _ cart.Repository = (*CartRepo)(nil)

func NewCartRepo(db *sql.DB) *CartRepo {
	return &CartRepo{db: db}
}

const cartColumns = `id, user_id, product_id, product_name, quantity, price_minor, created_at, updated_at`

func (r *CartRepo) ListByUser(ctx context.Context, userID int64) ([]cart.Line, error) {
	return listCartLines(ctx, r.db, userID, false)
}

func (r *CartRepo) FindByProduct(ctx context.Context, userID, productID int64) (cart.Line, bool, error) {
	q := `SELECT ` + cartColumns + `
FROM cart_lines
WHERE user_id = $1 AND product_id = $2 AND NOT deleted
`
	l, err := scanCartLine(r.db.QueryRowContext(ctx, q, userID, productID))
	if err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			return cart.Line{}, false, nil
		}
		return cart.Line{}, false, err
	}
	return l, true, nil
}

func (r *CartRepo) GetLine(ctx context.Context, userID, lineID int64) (cart.Line, error) {
	q := `SELECT ` + cartColumns + `
FROM cart_lines
WHERE id = $1 AND user_id = $2 AND NOT deleted
`
	return scanCartLine(r.db.QueryRowContext(ctx, q, lineID, userID))
}

func (r *CartRepo) Insert(ctx context.Context, l *cart.Line) error {
	const q = `
INSERT INTO cart_lines (user_id, product_id, product_name, quantity, price_minor, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`
	err := r.db.QueryRowContext(ctx, q,
		l.UserID,
		l.ProductID,
		l.ProductName,
		l.Quantity,
		l.PriceMinor,
		l.CreatedAt,
		l.UpdatedAt,
	).Scan(&l.ID)
	if err != nil {
		// Lost a race with a concurrent add of the same product.
		if utils.PgErrorCode(err) == utils.PgUniqueViolation {
			return cart.ErrConcurrentUpdate
		}
		return fmt.Errorf("insert cart line: %w", err)
	}
	return nil
}

func (r *CartRepo) UpdateQuantity(ctx context.Context, lineID, quantity int64, now time.Time) error {
	const q = `UPDATE cart_lines SET quantity = $2, updated_at = $3 WHERE id = $1 AND NOT deleted`
	return r.execOne(ctx, q, lineID, quantity, now)
}

func (r *CartRepo) SoftDelete(ctx context.Context, lineID int64, now time.Time) error {
	const q = `UPDATE cart_lines SET deleted = TRUE, updated_at = $2 WHERE id = $1 AND NOT deleted`
	return r.execOne(ctx, q, lineID, now)
}

func (r *CartRepo) execOne(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	ok, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return cart.ErrLineNotFound
	}
	return nil
}

// listCartLines reads the live lines of a user. Inside a checkout the rows are
// locked so a concurrent cart edit waits for the order to commit.
func listCartLines(ctx context.Context, q querier, userID int64, forUpdate bool) ([]cart.Line, error) {
	stmt := `SELECT ` + cartColumns + `
FROM cart_lines
WHERE user_id = $1 AND NOT deleted
ORDER BY id
`
	if forUpdate {
		stmt += "FOR UPDATE\n"
	}
	rows, err := q.QueryContext(ctx, stmt, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	var out []cart.Line
	for rows.Next() {
		l, err := scanCartLine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanCartLine(row scanner) (cart.Line, error) {
	var l cart.Line
	if err := row.Scan(&l.ID, &l.UserID, &l.ProductID, &l.ProductName, &l.Quantity, &l.PriceMinor, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cart.Line{}, cart.ErrLineNotFound
		}
		return cart.Line{}, err
	}
	return l, nil
}
