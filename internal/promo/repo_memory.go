package promo

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu     sync.Mutex
	codes  map[int64]Code
	nextID int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{codes: make(map[int64]Code)}
}

func (r *MemoryRepo) Insert(ctx context.Context, c *Code) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.codes {
		if existing.Code == c.Code {
			return ErrCodeExists
		}
	}
	r.nextID++
	c.ID = r.nextID
	r.codes[c.ID] = *c
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id int64) (Code, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[id]
	if !ok {
		return Code{}, ErrCodeNotFound
	}
	return c, nil
}

func (r *MemoryRepo) FindByCode(ctx context.Context, code string) (Code, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.codes {
		if c.Code == code {
			return c, nil
		}
	}
	return Code{}, ErrCodeNotFound
}

func (r *MemoryRepo) List(ctx context.Context, typ *Type) ([]Code, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Code
	for _, c := range r.codes {
		if typ == nil || c.Type == *typ {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) TransitionStatus(ctx context.Context, id int64, from []Status, to Status, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[id]
	if !ok {
		return false, ErrCodeNotFound
	}
	if !slices.Contains(from, c.Status) {
		return false, nil
	}
	c.Status = to
	c.UpdatedAt = now
	r.codes[id] = c
	return true, nil
}

func (r *MemoryRepo) ExpireActive(ctx context.Context, now time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for id, c := range r.codes {
		if c.Status == StatusActive && c.ValidTo.Before(now) {
			c.Status = StatusExpiredDueToDate
			c.UpdatedAt = now
			r.codes[id] = c
			out = append(out, c.Code)
		}
	}
	sort.Strings(out)
	return out, nil
}
