package wallet

import (
	"context"
	"time"

	"storefront-orders/pkg/logger"
)

// Store is the persistence contract for the wallet service.
// RunInTx must give fn a Ledger whose writes commit or roll back together.
type Store interface {
	GetWallet(ctx context.Context, userID int64) (Wallet, error)
	RunInTx(ctx context.Context, fn func(ctx context.Context, l Ledger) error) error
	// ListTransactions returns the user's financial log, newest first.
	ListTransactions(ctx context.Context, userID int64, limit int) ([]Transaction, error)
	// SoftDeleteWallet marks a live wallet deleted and reports whether one was.
	SoftDeleteWallet(ctx context.Context, userID int64, now time.Time) (bool, error)
}

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Service exposes wallet reads and top-ups. Purchase debits and refunds are
// posted by the order workflows through Debit and Credit inside their own tx.
type Service struct {
	store Store
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now}
}

func (s *Service) Get(ctx context.Context, userID int64) (Wallet, error) {
	return s.store.GetWallet(ctx, userID)
}

// TopUp credits the wallet and records a TOPUP audit row atomically.
func (s *Service) TopUp(ctx context.Context, userID, amountMinor int64) (Wallet, error) {
	if amountMinor <= 0 {
		return Wallet{}, ErrInvalidAmount
	}
	now := s.clock().UTC()

	var out Wallet
	err := s.store.RunInTx(ctx, func(ctx context.Context, l Ledger) error {
		w, err := Credit(ctx, l, userID, amountMinor, ReasonTopUp, now)
		if err != nil {
			return err
		}
		out = w
		return nil
	})
	if err != nil {
		return Wallet{}, err
	}

	logger.From(ctx).Info("wallet topped up", "user_id", userID, "amount_minor", amountMinor, "balance_minor", out.BalanceMinor)
	return out, nil
}

// Delete soft-deletes the user's wallet. The balance and audit rows stay.
func (s *Service) Delete(ctx context.Context, userID int64) error {
	ok, err := s.store.SoftDeleteWallet(ctx, userID, s.clock().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return ErrWalletNotFound
	}
	logger.From(ctx).Info("wallet deleted", "user_id", userID)
	return nil
}

// History returns the user's most recent transactions. limit is clamped to
// (0, 200]; zero or negative means the default page of 50.
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]Transaction, error) {
	if _, err := s.store.GetWallet(ctx, userID); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	return s.store.ListTransactions(ctx, userID, limit)
}
