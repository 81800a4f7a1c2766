package orders

import (
	"context"
	"fmt"
	"slices"
)

// Status is the order lifecycle state. Values are the persisted status ids and
// must stay stable.
type Status int64

const (
	StatusPending    Status = 1
	StatusProcessing Status = 2
	StatusShipped    Status = 3
	StatusDelivered  Status = 4
	StatusCancelled  Status = 5
)

var statusNames = map[Status]string{
	StatusPending:    "PENDING",
	StatusProcessing: "PROCESSING",
	StatusShipped:    "SHIPPED",
	StatusDelivered:  "DELIVERED",
	StatusCancelled:  "CANCELLED",
}

// KnownStatuses lists every status in id order.
func KnownStatuses() []Status {
	return []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Status(%d)", int64(s))
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	for st, n := range statusNames {
		if n == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown order status %q", string(b))
}

// Allowed transitions. CANCELLED is reached only through Cancel, which also
// refunds and restocks. CANCELLED and DELIVERED are terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

func (s Status) Terminal() bool { return len(transitions[s]) == 0 }

// StatusRow is a persisted status lookup row.
type StatusRow struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type StatusLister interface {
	ListStatuses(ctx context.Context) ([]StatusRow, error)
}

// Registry resolves persisted status ids. It is loaded once at startup and read-only after.
type Registry struct {
	byID map[int64]Status
}

// LoadRegistry reads the status table and checks it agrees with the compiled
// enum. A missing or renamed status fails startup.
func LoadRegistry(ctx context.Context, l StatusLister) (*Registry, error) {
	rows, err := l.ListStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("load statuses: %w", err)
	}
	seen := make(map[int64]string, len(rows))
	for _, r := range rows {
		seen[r.ID] = r.Name
	}

	reg := &Registry{byID: make(map[int64]Status, len(statusNames))}
	for _, st := range KnownStatuses() {
		name, ok := seen[int64(st)]
		if !ok {
			return nil, fmt.Errorf("status %s (id %d) missing from status table", st, int64(st))
		}
		if name != st.String() {
			return nil, fmt.Errorf("status id %d is %q in status table, expected %q", int64(st), name, st.String())
		}
		reg.byID[int64(st)] = st
	}
	return reg, nil
}

// NewStaticRegistry builds a registry from the compiled enum without a store.
func NewStaticRegistry() *Registry {
	reg := &Registry{byID: make(map[int64]Status, len(statusNames))}
	for _, st := range KnownStatuses() {
		reg.byID[int64(st)] = st
	}
	return reg
}

func (r *Registry) ByID(id int64) (Status, error) {
	st, ok := r.byID[id]
	if !ok {
		return 0, ErrStatusNotFound
	}
	return st, nil
}

// Rows returns the registry contents in id order.
func (r *Registry) Rows() []StatusRow {
	out := make([]StatusRow, 0, len(r.byID))
	for _, st := range KnownStatuses() {
		if _, ok := r.byID[int64(st)]; ok {
			out = append(out, StatusRow{ID: int64(st), Name: st.String()})
		}
	}
	return out
}
