package orders

import (
	"context"
	"time"

	"storefront-orders/pkg/logger"
)

// Service owns the order workflows: checkout, cancellation, admin status
// progression and order queries.
//
// Money invariants:
// - wallet, stock and order writes of one workflow share one Tx
// - the wallet pays ChargedMinor (total minus discount) and a cancel refunds exactly that
// - audit, transaction and payment rows are append-only
type Service struct {
	store    Store
	registry *Registry
	guard    Guard
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(store Store, registry *Registry) *Service {
	return &Service{store: store, registry: registry, clock: time.Now}
}

// UseGuard installs a per-user checkout guard. nil disables it.
func (s *Service) UseGuard(g Guard) { s.guard = g }

// Requester identifies who asks for an order mutation.
type Requester struct {
	UserID int64
	Admin  bool
}

func (r Requester) owns(o Order) bool { return r.Admin || o.UserID == r.UserID }

// UpdateStatus moves an order along the fulfilment track and records the
// transition. It has no balance or stock effects; cancellation goes through Cancel.
func (s *Service) UpdateStatus(ctx context.Context, orderID, statusID int64) (Order, error) {
	target, err := s.registry.ByID(statusID)
	if err != nil {
		return Order{}, err
	}
	now := s.clock().UTC()

	var out Order
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if target == StatusCancelled || !CanTransition(o.Status, target) {
			return ErrInvalidTransition
		}
		if err := tx.UpdateOrderState(ctx, o.ID, target, o.PaymentStatus, now); err != nil {
			return err
		}
		past := o.Status
		if err := tx.AppendOrderAudit(ctx, &Audit{
			OrderID:    o.ID,
			PastStatus: &past,
			NewStatus:  target,
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		o.Status = target
		o.UpdatedAt = now
		out = o
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	logger.From(ctx).Info("order status updated", "order_id", orderID, "status", target.String())
	return out, nil
}

func (s *Service) GetOrders(ctx context.Context, f Filter) ([]Order, error) {
	return s.store.ListOrders(ctx, f)
}

func (s *Service) Statuses() []StatusRow { return s.registry.Rows() }
