package orders

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"storefront-orders/internal/wallet"
)

func placeOrder(t *testing.T, f fixture, code string) CheckoutResult {
	t.Helper()
	res, err := f.checkout(userAlice, code)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	return res
}

func TestCancel_RestoresStockAndRefundsChargedAmount(t *testing.T) {
	f := newFixture()
	f.store.AddPromo(activeProductPromo("MUG20", "20", productMug))
	f.addToCart(userAlice, productMug, 3)    // 37.50, 20% off = 7.50
	f.addToCart(userAlice, productKettle, 1) // 40.00
	stockBefore := f.stockTotal()

	res := placeOrder(t, f, "MUG20")
	if res.ChargedMinor != 7750-750 {
		t.Fatalf("unexpected charge %d", res.ChargedMinor)
	}

	o, err := f.svc.Cancel(context.Background(), res.OrderID, Requester{UserID: userAlice})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if o.Status != StatusCancelled || o.PaymentStatus != PaymentRefunded {
		t.Fatalf("unexpected order state: %+v", o)
	}
	if f.stockTotal() != stockBefore {
		t.Fatalf("stock not restored: before=%d after=%d", stockBefore, f.stockTotal())
	}
	if w := f.store.Wallet(userAlice); w.BalanceMinor != 10000 {
		t.Fatalf("expected wallet back at 10000, got %d", w.BalanceMinor)
	}

	audits := f.store.OrderAudits()
	last := audits[len(audits)-1]
	if last.PastStatus == nil || *last.PastStatus != StatusProcessing || last.NewStatus != StatusCancelled || last.Reason != "Order cancelled and refunded" {
		t.Fatalf("unexpected cancel audit: %+v", last)
	}
	txs := f.store.Transactions()
	refund := txs[len(txs)-1]
	if refund.Type != wallet.EntryTypeCredit || refund.AmountMinor != res.ChargedMinor || refund.Description != "Order cancellation refund for Order ID: "+itoa(res.OrderID) {
		t.Fatalf("unexpected refund transaction: %+v", refund)
	}
	wa := f.store.WalletAudits()
	if got := wa[len(wa)-1]; got.Reason != wallet.ReasonRefund || got.AmountMinor != res.ChargedMinor {
		t.Fatalf("unexpected refund audit: %+v", got)
	}

	orders, _ := f.svc.GetOrders(context.Background(), Filter{OrderID: &res.OrderID})
	if len(orders) != 1 || len(orders[0].Items) != 2 {
		t.Fatalf("cancelled order and items must be kept")
	}
}

func TestCancel_TwiceIsRejectedWithoutSideEffects(t *testing.T) {
	f := newFixture()
	f.addToCart(userAlice, productMug, 1)
	res := placeOrder(t, f, "")

	if _, err := f.svc.Cancel(context.Background(), res.OrderID, Requester{UserID: userAlice}); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	balance := f.store.Wallet(userAlice).BalanceMinor
	stock := f.stockTotal()
	txCount := len(f.store.Transactions())

	_, err := f.svc.Cancel(context.Background(), res.OrderID, Requester{UserID: userAlice})
	if !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
	}
	if f.store.Wallet(userAlice).BalanceMinor != balance || f.stockTotal() != stock || len(f.store.Transactions()) != txCount {
		t.Fatalf("second cancel must not change state")
	}
}

func TestCancel_OwnershipAndExistence(t *testing.T) {
	f := newFixture()
	f.addToCart(userAlice, productMug, 1)
	res := placeOrder(t, f, "")

	if _, err := f.svc.Cancel(context.Background(), res.OrderID, Requester{UserID: userBob}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for non-owner, got %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), 9999, Requester{Admin: true}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), res.OrderID, Requester{UserID: userBob, Admin: true}); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
}

func TestCancel_DeliveredOrderIsNotCancellable(t *testing.T) {
	f := newFixture()
	f.addToCart(userAlice, productMug, 1)
	res := placeOrder(t, f, "")
	ctx := context.Background()

	for _, st := range []Status{StatusShipped, StatusDelivered} {
		if _, err := f.svc.UpdateStatus(ctx, res.OrderID, int64(st)); err != nil {
			t.Fatalf("update to %s: %v", st, err)
		}
	}
	if _, err := f.svc.Cancel(ctx, res.OrderID, Requester{UserID: userAlice}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCancel_MissingWalletIsIntegrityFailure(t *testing.T) {
	f := newFixture()
	f.addToCart(userAlice, productMug, 1)
	res := placeOrder(t, f, "")

	f.store.mu.Lock()
	delete(f.store.st.wallets, userAlice)
	f.store.mu.Unlock()

	_, err := f.svc.Cancel(context.Background(), res.OrderID, Requester{UserID: userAlice})
	if !errors.Is(err, ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got %v", err)
	}
	if f.store.Product(productMug).StockQuantity != 9 {
		t.Fatalf("stock must stay taken when cancel fails")
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
