package orders

import (
	"context"
	"time"

	"storefront-orders/internal/cart"
	"storefront-orders/internal/catalog"
	"storefront-orders/internal/promo"
	"storefront-orders/internal/wallet"
)

// Tx is the unit of work the checkout and cancellation workflows run in.
// Every write made through one Tx becomes visible together or not at all.
// Wallet and product rows are locked on read and stay locked until the end.
type Tx interface {
	wallet.Ledger
	catalog.StockLedger

	GetUser(ctx context.Context, userID int64) (User, error)

	ListCartLines(ctx context.Context, userID int64) ([]cart.Line, error)
	ClearCart(ctx context.Context, userID int64, now time.Time) error

	LatestAddress(ctx context.Context, userID int64) (Address, bool, error)
	InsertAddress(ctx context.Context, a *Address) error

	// FindPromoCode yields promo.ErrCodeNotFound when absent.
	FindPromoCode(ctx context.Context, code string) (promo.Code, error)

	InsertOrder(ctx context.Context, o *Order) error
	InsertItem(ctx context.Context, it *Item) error
	// LockOrder row-locks the order; ErrOrderNotFound when absent.
	LockOrder(ctx context.Context, orderID int64) (Order, error)
	ListItems(ctx context.Context, orderID int64) ([]Item, error)
	UpdateOrderState(ctx context.Context, orderID int64, status Status, payment PaymentStatus, now time.Time) error

	AppendOrderAudit(ctx context.Context, a *Audit) error
	AppendPayment(ctx context.Context, p *Payment) error
}

// Store is the ledger store behind the order workflows.
type Store interface {
	StatusLister

	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// ListOrders returns matching orders with items, newest first.
	ListOrders(ctx context.Context, f Filter) ([]Order, error)
}
