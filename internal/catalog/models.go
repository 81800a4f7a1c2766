package catalog

import (
	"context"
	"slices"
	"time"

	"storefront-orders/internal/failure"
)

// Product is the stock-carrying catalog row. Product maintenance lives elsewhere;
// this service only reads products and moves stock.
//
// Invariant: StockQuantity >= 0 at all times.
type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	PriceMinor    int64     `json:"price_minor"`
	StockQuantity int64     `json:"stock_quantity"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

var (
	ErrProductNotFound   = failure.New(failure.KindNotFound, "product_not_found", "product not found")
	ErrInsufficientStock = failure.New(failure.KindConflict, "insufficient_stock", "insufficient stock")
)

// Reader resolves products outside of a transaction.
type Reader interface {
	GetProduct(ctx context.Context, id int64) (Product, error)
}

// StockLedger is the in-transaction stock contract.
type StockLedger interface {
	// LockProducts row-locks the given products in ascending id order.
	// Unknown ids are absent from the result.
	LockProducts(ctx context.Context, ids []int64) (map[int64]Product, error)
	// AdjustStock applies delta and fails with ErrInsufficientStock instead of
	// letting stock go below zero.
	AdjustStock(ctx context.Context, productID, delta int64, now time.Time) (Product, error)
}

// LockOrder returns the distinct ids sorted ascending, the order every workflow
// must lock product rows in.
func LockOrder(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
