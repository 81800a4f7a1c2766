package wallet

import (
	"context"
	"time"
)

// Ledger is the in-transaction wallet contract. Implementations must row-lock
// the wallet in LockWallet and keep it locked until the enclosing tx ends.
type Ledger interface {
	LockWallet(ctx context.Context, userID int64) (Wallet, error)
	SetBalance(ctx context.Context, walletID, balanceMinor int64, now time.Time) error
	AppendWalletAudit(ctx context.Context, a *Audit) error
	AppendTransaction(ctx context.Context, t *Transaction) error
}

// Debit takes amountMinor from the user's wallet and records the audit row.
// It fails closed with ErrInsufficientBalance and leaves the wallet untouched.
func Debit(ctx context.Context, l Ledger, userID, amountMinor int64, reason Reason, now time.Time) (Wallet, error) {
	if amountMinor < 0 {
		return Wallet{}, ErrInvalidAmount
	}
	w, err := l.LockWallet(ctx, userID)
	if err != nil {
		return Wallet{}, err
	}
	if w.BalanceMinor < amountMinor {
		return w, ErrInsufficientBalance
	}
	return post(ctx, l, w, -amountMinor, EntryTypeDebit, reason, now)
}

// Credit adds amountMinor to the user's wallet and records the audit row.
func Credit(ctx context.Context, l Ledger, userID, amountMinor int64, reason Reason, now time.Time) (Wallet, error) {
	if amountMinor < 0 {
		return Wallet{}, ErrInvalidAmount
	}
	w, err := l.LockWallet(ctx, userID)
	if err != nil {
		return Wallet{}, err
	}
	return post(ctx, l, w, amountMinor, EntryTypeCredit, reason, now)
}

func post(ctx context.Context, l Ledger, w Wallet, delta int64, typ EntryType, reason Reason, now time.Time) (Wallet, error) {
	w.BalanceMinor += delta
	w.UpdatedAt = now
	if err := l.SetBalance(ctx, w.ID, w.BalanceMinor, now); err != nil {
		return Wallet{}, err
	}

	amount := delta
	if amount < 0 {
		amount = -amount
	}
	if err := l.AppendWalletAudit(ctx, &Audit{
		UserID:      w.UserID,
		WalletID:    w.ID,
		AmountMinor: amount,
		Type:        typ,
		Reason:      reason,
		CreatedAt:   now,
	}); err != nil {
		return Wallet{}, err
	}
	return w, nil
}
