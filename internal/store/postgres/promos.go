package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-orders/internal/catalog"
	"storefront-orders/internal/promo"
	"storefront-orders/pkg/utils"
)

type PromoRepo struct {
	db *sql.DB
}

var _ promo.Repository = (*PromoRepo)(nil)

func NewPromoRepo(db *sql.DB) *PromoRepo {
	return &PromoRepo{db: db}
}

const promoColumns = `id, code, type, discount_percentage, min_order_minor, product_id,
       valid_from, valid_to, status, created_at, updated_at`

func (r *PromoRepo) Insert(ctx context.Context, c *promo.Code) error {
	const q = `
INSERT INTO promo_codes (
  code, type, discount_percentage, min_order_minor, product_id,
  valid_from, valid_to, status, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)
RETURNING id
`
	err := r.db.QueryRowContext(ctx, q,
		c.Code,
		string(c.Type),
		c.DiscountPercentage,
		nullableInt(c.MinOrderMinor),
		nullableInt(c.ProductID),
		c.ValidFrom,
		c.ValidTo,
		int64(c.Status),
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return mapPromoWriteErr(err)
	}
	return nil
}

func mapPromoWriteErr(err error) error {
	switch utils.PgErrorCode(err) {
	case utils.PgUniqueViolation:
		return promo.ErrCodeExists
	case utils.PgForeignKeyViolation:
		return catalog.ErrProductNotFound
	case utils.PgCheckViolation:
		return fmt.Errorf("%w: %s", promo.ErrInvalidPromo, utils.PgConstraint(err))
	}
	return fmt.Errorf("insert promo code: %w", err)
}

func (r *PromoRepo) Get(ctx context.Context, id int64) (promo.Code, error) {
	q := `SELECT ` + promoColumns + ` FROM promo_codes WHERE id = $1`
	return scanPromo(r.db.QueryRowContext(ctx, q, id))
}

func (r *PromoRepo) FindByCode(ctx context.Context, code string) (promo.Code, error) {
	return findPromoByCode(ctx, r.db, code)
}

func (r *PromoRepo) List(ctx context.Context, typ *promo.Type) ([]promo.Code, error) {
	q := `SELECT ` + promoColumns + ` FROM promo_codes`
	var args []any
	if typ != nil {
		q += ` WHERE type = $1`
		args = append(args, string(*typ))
	}
	q += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list promo codes: %w", err)
	}
	defer rows.Close()

	var out []promo.Code
	for rows.Next() {
		c, err := scanPromo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PromoRepo) TransitionStatus(ctx context.Context, id int64, from []promo.Status, to promo.Status, now time.Time) (bool, error) {
	const q = `
UPDATE promo_codes
SET status = $2, updated_at = $3
WHERE id = $1 AND status = ANY($4)
`
	allowed := make([]int64, 0, len(from))
	for _, s := range from {
		allowed = append(allowed, int64(s))
	}
	res, err := r.db.ExecContext(ctx, q, id, int64(to), now, allowed)
	if err != nil {
		return false, fmt.Errorf("transition promo status: %w", err)
	}
	return affectedOne(res)
}

// ExpireActive is a single status-guarded UPDATE; concurrent sweeps never
// touch the same row twice.
func (r *PromoRepo) ExpireActive(ctx context.Context, now time.Time) ([]string, error) {
	const q = `
UPDATE promo_codes
SET status = $2, updated_at = $1
WHERE status = $3 AND valid_to < $1
RETURNING code
`
	rows, err := r.db.QueryContext(ctx, q, now, int64(promo.StatusExpiredDueToDate), int64(promo.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("expire promo codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

func findPromoByCode(ctx context.Context, q querier, code string) (promo.Code, error) {
	stmt := `SELECT ` + promoColumns + ` FROM promo_codes WHERE code = $1`
	return scanPromo(q.QueryRowContext(ctx, stmt, code))
}

func scanPromo(row scanner) (promo.Code, error) {
	var (
		c        promo.Code
		typ      string
		status   int64
		minOrder sql.NullInt64
		product  sql.NullInt64
	)
	err := row.Scan(
		&c.ID,
		&c.Code,
		&typ,
		&c.DiscountPercentage,
		&minOrder,
		&product,
		&c.ValidFrom,
		&c.ValidTo,
		&status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return promo.Code{}, promo.ErrCodeNotFound
		}
		return promo.Code{}, err
	}
	c.Type = promo.Type(typ)
	c.Status = promo.Status(status)
	c.MinOrderMinor = ptrFromNull(minOrder)
	c.ProductID = ptrFromNull(product)
	return c, nil
}

func nullableInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func ptrFromNull(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
