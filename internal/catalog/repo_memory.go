package catalog

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory product table useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu       sync.Mutex
	products map[int64]Product
}

func NewMemoryRepo(products ...Product) *MemoryRepo {
	r := &MemoryRepo{products: make(map[int64]Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *MemoryRepo) Put(p Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
}

func (r *MemoryRepo) GetProduct(ctx context.Context, id int64) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (r *MemoryRepo) LockProducts(ctx context.Context, ids []int64) (map[int64]Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int64]Product, len(ids))
	for _, id := range LockOrder(ids) {
		if p, ok := r.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *MemoryRepo) AdjustStock(ctx context.Context, productID, delta int64, now time.Time) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	if p.StockQuantity+delta < 0 {
		return Product{}, ErrInsufficientStock
	}
	p.StockQuantity += delta
	p.UpdatedAt = now
	r.products[productID] = p
	return p, nil
}
