package postgres

import (
	"context"
	"database/sql"

	"storefront-orders/internal/catalog"
)

type ProductRepo struct {
	db *sql.DB
}

var _ catalog.Reader = (*ProductRepo)(nil)

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

func (r *ProductRepo) GetProduct(ctx context.Context, id int64) (catalog.Product, error) {
	const q = `
SELECT id, name, price_minor, stock_quantity, active, created_at, updated_at
FROM products
WHERE id = $1
`
	return scanProduct(r.db.QueryRowContext(ctx, q, id))
}
