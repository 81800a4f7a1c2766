package wallet

import (
	"time"

	"storefront-orders/internal/failure"
)

// Wallet is the user's prepaid balance, one per user.
// Invariant: BalanceMinor >= 0 after every operation, and every change to it is
// paired with an Audit row in the same transaction.
//
// A deleted wallet is kept for its audit history but is invisible to reads and
// cannot be locked, so it can neither pay nor receive.
type Wallet struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	BalanceMinor int64     `json:"balance_minor"`
	Deleted      bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

type Reason string

const (
	ReasonPurchase Reason = "PURCHASE"
	ReasonRefund   Reason = "REFUND"
	ReasonTopUp    Reason = "TOPUP"
)

// Audit is the internal balance ledger. Append-only; the stored balance is always
// the running sum of these rows.
type Audit struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	WalletID    int64     `json:"wallet_id"`
	AmountMinor int64     `json:"amount_minor"`
	Type        EntryType `json:"type"`
	Reason      Reason    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}

type TransactionStatus string

const (
	TransactionSuccess TransactionStatus = "SUCCESS"
	TransactionFailed  TransactionStatus = "FAILED"
)

type PaymentMethod string

const PaymentMethodWallet PaymentMethod = "WALLET"

// Transaction is the outward facing financial log (checkout success or failure,
// refunds). Append-only.
type Transaction struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"user_id"`
	OrderID     *int64            `json:"order_id,omitempty"`
	AmountMinor int64             `json:"amount_minor"`
	Type        EntryType         `json:"type"`
	Status      TransactionStatus `json:"status"`
	Method      PaymentMethod     `json:"method"`
	Description string            `json:"description"`
	CreatedAt   time.Time         `json:"created_at"`
}

var (
	ErrWalletNotFound      = failure.New(failure.KindNotFound, "wallet_not_found", "wallet not found")
	ErrInsufficientBalance = failure.New(failure.KindConflict, "insufficient_balance", "Insufficient wallet balance.")
	ErrInvalidAmount       = failure.New(failure.KindValidation, "invalid_amount", "amount must be positive")
)
