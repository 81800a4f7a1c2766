package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-orders/internal/failure"
	"storefront-orders/internal/wallet"
	"storefront-orders/pkg/logger"
)

const reasonCancelled = "Order cancelled and refunded"

// Cancel reverses a checkout: the charged amount goes back to the wallet, stock
// is restored from the order items and the order moves to CANCELLED with payment
// REFUNDED. The order and its items are never deleted.
func (s *Service) Cancel(ctx context.Context, orderID int64, by Requester) (Order, error) {
	now := s.clock().UTC()

	var out Order
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !by.owns(o) {
			return ErrOrderNotFound
		}
		if o.Status == StatusCancelled {
			return ErrAlreadyCancelled
		}
		if !CanTransition(o.Status, StatusCancelled) {
			return ErrInvalidTransition
		}

		refund := o.ChargedMinor()
		if _, err := wallet.Credit(ctx, tx, o.UserID, refund, wallet.ReasonRefund, now); err != nil {
			if errors.Is(err, wallet.ErrWalletNotFound) {
				return failure.Wrapf(ErrIntegrity, "wallet of user %d for order %d", o.UserID, o.ID)
			}
			return err
		}

		items, err := tx.ListItems(ctx, o.ID)
		if err != nil {
			return err
		}
		if err := s.restoreStock(ctx, tx, items, now); err != nil {
			return err
		}

		if err := tx.UpdateOrderState(ctx, o.ID, StatusCancelled, PaymentRefunded, now); err != nil {
			return err
		}
		past := o.Status
		if err := tx.AppendOrderAudit(ctx, &Audit{
			OrderID:    o.ID,
			PastStatus: &past,
			NewStatus:  StatusCancelled,
			Reason:     reasonCancelled,
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		id := o.ID
		if err := tx.AppendTransaction(ctx, &wallet.Transaction{
			UserID:      o.UserID,
			OrderID:     &id,
			AmountMinor: refund,
			Type:        wallet.EntryTypeCredit,
			Status:      wallet.TransactionSuccess,
			Method:      wallet.PaymentMethodWallet,
			Description: fmt.Sprintf("Order cancellation refund for Order ID: %d", o.ID),
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		o.Status = StatusCancelled
		o.PaymentStatus = PaymentRefunded
		o.UpdatedAt = now
		o.Items = items
		out = o
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	logger.From(ctx).Info("order cancelled", "order_id", out.ID, "user_id", out.UserID, "refund_minor", out.ChargedMinor())
	return out, nil
}

func (s *Service) restoreStock(ctx context.Context, tx Tx, items []Item, now time.Time) error {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := tx.LockProducts(ctx, ids)
	if err != nil {
		return err
	}
	for _, it := range items {
		if _, ok := products[it.ProductID]; !ok {
			return failure.Wrapf(ErrIntegrity, "product %d of order item %d no longer exists", it.ProductID, it.ID)
		}
		if _, err := tx.AdjustStock(ctx, it.ProductID, it.Quantity, now); err != nil {
			return err
		}
	}
	return nil
}
