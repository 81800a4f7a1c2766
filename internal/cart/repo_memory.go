package cart

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu      sync.Mutex
	lines   map[int64]Line
	deleted map[int64]bool
	nextID  int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{lines: make(map[int64]Line), deleted: make(map[int64]bool)}
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID int64) ([]Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Line
	for id, l := range r.lines {
		if l.UserID == userID && !r.deleted[id] {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) FindByProduct(ctx context.Context, userID, productID int64) (Line, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, l := range r.lines {
		if l.UserID == userID && l.ProductID == productID && !r.deleted[id] {
			return l, true, nil
		}
	}
	return Line{}, false, nil
}

func (r *MemoryRepo) GetLine(ctx context.Context, userID, lineID int64) (Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lines[lineID]
	if !ok || l.UserID != userID || r.deleted[lineID] {
		return Line{}, ErrLineNotFound
	}
	return l, nil
}

func (r *MemoryRepo) Insert(ctx context.Context, l *Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.lines {
		if !r.deleted[id] && existing.UserID == l.UserID && existing.ProductID == l.ProductID {
			return ErrConcurrentUpdate
		}
	}
	r.nextID++
	l.ID = r.nextID
	r.lines[l.ID] = *l
	return nil
}

func (r *MemoryRepo) UpdateQuantity(ctx context.Context, lineID, quantity int64, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lines[lineID]
	if !ok || r.deleted[lineID] {
		return ErrLineNotFound
	}
	l.Quantity = quantity
	l.UpdatedAt = now
	r.lines[lineID] = l
	return nil
}

func (r *MemoryRepo) SoftDelete(ctx context.Context, lineID int64, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lines[lineID]; !ok {
		return ErrLineNotFound
	}
	r.deleted[lineID] = true
	return nil
}
