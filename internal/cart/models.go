package cart

import (
	"time"

	"storefront-orders/internal/failure"
)

// Line is one product pending purchase. PriceMinor is the unit price snapshot
// taken when the product was first added; checkout totals use it, not the live price.
//
// Invariant: Quantity <= product stock at the time of add/update.
type Line struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int64     `json:"quantity"`
	PriceMinor  int64     `json:"price_minor"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (l Line) TotalMinor() int64 { return l.PriceMinor * l.Quantity }

// Total sums price snapshots times quantities.
func Total(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.TotalMinor()
	}
	return sum
}

var (
	ErrLineNotFound       = failure.New(failure.KindNotFound, "cart_line_not_found", "cart item not found")
	ErrInvalidQuantity    = failure.New(failure.KindValidation, "invalid_quantity", "quantity must be positive")
	ErrExceedsStock       = failure.New(failure.KindValidation, "exceeds_stock", "Requested quantity exceeds available stock.")
	ErrProductUnavailable = failure.New(failure.KindValidation, "product_unavailable", "product is not available")
	ErrConcurrentUpdate   = failure.New(failure.KindConflict, "cart_conflict", "cart changed concurrently, please retry")
)
