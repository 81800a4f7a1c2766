package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-orders/internal/cart"
	"storefront-orders/internal/catalog"
	"storefront-orders/internal/failure"
	"storefront-orders/internal/promo"
	"storefront-orders/internal/wallet"
	"storefront-orders/pkg/logger"
)

const (
	msgOrderPlaced     = "Order placed successfully."
	reasonAccepted     = "Order Accepted"
	descCheckoutOK     = "Order Checkout Successful"
	descCheckoutNoFund = "Insufficient wallet balance."
)

type AddressInput struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (a *AddressInput) provided() bool {
	return a != nil && strings.TrimSpace(a.Street) != "" && strings.TrimSpace(a.City) != ""
}

type CheckoutRequest struct {
	UserID    int64
	PromoCode string
	Address   *AddressInput
}

type CheckoutResult struct {
	OrderID       int64  `json:"order_id"`
	Message       string `json:"message"`
	TotalMinor    int64  `json:"total_minor"`
	DiscountMinor int64  `json:"discount_minor"`
	ChargedMinor  int64  `json:"charged_minor"`
}

// Checkout turns the user's cart into an order in one transaction: the promo is
// evaluated, the wallet is debited by the discounted amount, stock is decremented
// and the audit trail is written. On insufficient balance nothing is kept except
// one FAILED transaction row, written in its own unit of work.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (CheckoutResult, error) {
	if req.UserID <= 0 {
		return CheckoutResult{}, ErrUserNotFound
	}
	ctx = logger.WithAttrs(ctx, "user_id", req.UserID)

	if s.guard != nil {
		release, err := s.guard.Acquire(ctx, req.UserID)
		if err != nil {
			return CheckoutResult{}, err
		}
		defer release()
	}

	now := s.clock().UTC()
	var (
		res     CheckoutResult
		charged int64
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		r, err := s.checkout(ctx, tx, req, now, &charged)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if errors.Is(err, wallet.ErrInsufficientBalance) {
		s.recordFailedDebit(ctx, req.UserID, charged, now)
		return CheckoutResult{}, err
	}
	if err != nil {
		logger.From(ctx).Info("checkout rejected", "code", failure.CodeOf(err), "err", err)
		return CheckoutResult{}, err
	}

	logger.From(ctx).Info("checkout committed",
		"order_id", res.OrderID,
		"total_minor", res.TotalMinor,
		"discount_minor", res.DiscountMinor,
		"charged_minor", res.ChargedMinor,
	)
	return res, nil
}

func (s *Service) checkout(ctx context.Context, tx Tx, req CheckoutRequest, now time.Time, charged *int64) (CheckoutResult, error) {
	user, err := tx.GetUser(ctx, req.UserID)
	if err != nil {
		return CheckoutResult{}, err
	}

	lines, err := tx.ListCartLines(ctx, user.ID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if len(lines) == 0 {
		return CheckoutResult{}, ErrEmptyCart
	}
	total := cart.Total(lines)

	var discount int64
	if code := promo.NormalizeCode(req.PromoCode); code != "" {
		pc, err := tx.FindPromoCode(ctx, code)
		if err != nil {
			return CheckoutResult{}, err
		}
		discount, err = promo.Evaluate(&pc, promoLines(lines), total, now)
		if err != nil {
			return CheckoutResult{}, err
		}
	}
	*charged = chargedAmount(total, discount)

	addr, err := s.resolveAddress(ctx, tx, user.ID, req.Address, now)
	if err != nil {
		return CheckoutResult{}, err
	}

	if _, err := wallet.Debit(ctx, tx, user.ID, *charged, wallet.ReasonPurchase, now); err != nil {
		return CheckoutResult{}, err
	}

	o := Order{
		UserID:        user.ID,
		TotalMinor:    total,
		DiscountMinor: discount,
		PaymentStatus: PaymentPending,
		Status:        StatusPending,
		AddressID:     addr.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.InsertOrder(ctx, &o); err != nil {
		return CheckoutResult{}, err
	}

	if err := s.takeStock(ctx, tx, o.ID, lines, now); err != nil {
		return CheckoutResult{}, err
	}

	if err := tx.UpdateOrderState(ctx, o.ID, StatusProcessing, PaymentPaid, now); err != nil {
		return CheckoutResult{}, err
	}
	if err := tx.AppendOrderAudit(ctx, &Audit{
		OrderID:   o.ID,
		NewStatus: StatusProcessing,
		Reason:    reasonAccepted,
		CreatedAt: now,
	}); err != nil {
		return CheckoutResult{}, err
	}

	if err := tx.AppendPayment(ctx, &Payment{
		OrderID:     o.ID,
		AmountMinor: *charged,
		Status:      PaymentRecordSuccess,
		CreatedAt:   now,
	}); err != nil {
		return CheckoutResult{}, err
	}
	orderID := o.ID
	if err := tx.AppendTransaction(ctx, &wallet.Transaction{
		UserID:      user.ID,
		OrderID:     &orderID,
		AmountMinor: *charged,
		Type:        wallet.EntryTypeDebit,
		Status:      wallet.TransactionSuccess,
		Method:      wallet.PaymentMethodWallet,
		Description: descCheckoutOK,
		CreatedAt:   now,
	}); err != nil {
		return CheckoutResult{}, err
	}

	if err := tx.ClearCart(ctx, user.ID, now); err != nil {
		return CheckoutResult{}, err
	}

	return CheckoutResult{
		OrderID:       o.ID,
		Message:       msgOrderPlaced,
		TotalMinor:    total,
		DiscountMinor: discount,
		ChargedMinor:  *charged,
	}, nil
}

// takeStock snapshots each cart line into an order item and decrements stock.
// Product rows are locked in id order before any decrement.
func (s *Service) takeStock(ctx context.Context, tx Tx, orderID int64, lines []cart.Line, now time.Time) error {
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := tx.LockProducts(ctx, ids)
	if err != nil {
		return err
	}

	for _, l := range lines {
		if _, ok := products[l.ProductID]; !ok {
			return failure.Wrapf(ErrIntegrity, "product %d in cart line %d no longer exists", l.ProductID, l.ID)
		}
		if err := tx.InsertItem(ctx, &Item{
			OrderID:     orderID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			PriceMinor:  l.PriceMinor,
		}); err != nil {
			return err
		}
		if _, err := tx.AdjustStock(ctx, l.ProductID, -l.Quantity, now); err != nil {
			if errors.Is(err, catalog.ErrInsufficientStock) {
				return fmt.Errorf("%w: %s", err, l.ProductName)
			}
			return err
		}
	}
	return nil
}

func (s *Service) resolveAddress(ctx context.Context, tx Tx, userID int64, in *AddressInput, now time.Time) (Address, error) {
	if in.provided() {
		a := Address{
			UserID:     userID,
			Street:     strings.TrimSpace(in.Street),
			City:       strings.TrimSpace(in.City),
			State:      strings.TrimSpace(in.State),
			PostalCode: strings.TrimSpace(in.PostalCode),
			Country:    strings.TrimSpace(in.Country),
			CreatedAt:  now,
		}
		if err := tx.InsertAddress(ctx, &a); err != nil {
			return Address{}, err
		}
		return a, nil
	}
	a, ok, err := tx.LatestAddress(ctx, userID)
	if err != nil {
		return Address{}, err
	}
	if !ok {
		return Address{}, ErrNoAddressAvailable
	}
	return a, nil
}

// recordFailedDebit keeps the failed attempt on the financial log after the
// checkout tx rolled back. Failure to record is logged, not returned.
func (s *Service) recordFailedDebit(ctx context.Context, userID, amountMinor int64, now time.Time) {
	err := s.store.RunInTx(context.WithoutCancel(ctx), func(ctx context.Context, tx Tx) error {
		return tx.AppendTransaction(ctx, &wallet.Transaction{
			UserID:      userID,
			AmountMinor: amountMinor,
			Type:        wallet.EntryTypeDebit,
			Status:      wallet.TransactionFailed,
			Method:      wallet.PaymentMethodWallet,
			Description: descCheckoutNoFund,
			CreatedAt:   now,
		})
	})
	if err != nil {
		logger.From(ctx).Error("failed debit not recorded", "amount_minor", amountMinor, "err", err)
		return
	}
	logger.From(ctx).Warn("checkout declined: insufficient wallet balance", "amount_minor", amountMinor)
}

func promoLines(lines []cart.Line) []promo.Line {
	out := make([]promo.Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, promo.Line{ProductID: l.ProductID, Quantity: l.Quantity, PriceMinor: l.PriceMinor})
	}
	return out
}
