package reporting

import (
	"context"
	"sync"
	"time"

	"storefront-orders/internal/orders"
	"storefront-orders/internal/wallet"
)

// MemoryRepo is a simple in-memory reporting repository for tests.
type MemoryRepo struct {
	mu sync.Mutex

	Orders       []orders.Order
	Transactions []wallet.Transaction
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListOrdersCreated(ctx context.Context, from, to time.Time, userID *int64) ([]orders.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rng := TimeRange{From: from, To: to}
	out := make([]orders.Order, 0)
	for _, o := range r.Orders {
		if userID != nil && o.UserID != *userID {
			continue
		}
		if rng.contains(o.CreatedAt) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *MemoryRepo) ListTransactionsCreated(ctx context.Context, from, to time.Time, userID *int64) ([]wallet.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rng := TimeRange{From: from, To: to}
	out := make([]wallet.Transaction, 0)
	for _, t := range r.Transactions {
		if userID != nil && t.UserID != *userID {
			continue
		}
		if rng.contains(t.CreatedAt) {
			out = append(out, t)
		}
	}
	return out, nil
}
