package wallet

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Store useful for tests.
// RunInTx holds the repo lock for the whole tx and restores a snapshot on error.
// It is not intended for production use.
type MemoryRepo struct {
	mu           sync.Mutex
	wallets      map[int64]Wallet // by user id
	audits       []Audit
	transactions []Transaction
	nextID       int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{wallets: make(map[int64]Wallet)}
}

// Seed creates a wallet for userID with the given balance.
func (r *MemoryRepo) Seed(userID, balanceMinor int64) Wallet {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	w := Wallet{ID: r.nextID, UserID: userID, BalanceMinor: balanceMinor}
	r.wallets[userID] = w
	return w
}

func (r *MemoryRepo) GetWallet(ctx context.Context, userID int64) (Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok || w.Deleted {
		return Wallet{}, ErrWalletNotFound
	}
	return w, nil
}

func (r *MemoryRepo) SoftDeleteWallet(ctx context.Context, userID int64, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok || w.Deleted {
		return false, nil
	}
	w.Deleted = true
	w.UpdatedAt = now
	r.wallets[userID] = w
	return true, nil
}

func (r *MemoryRepo) RunInTx(ctx context.Context, fn func(ctx context.Context, l Ledger) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wallets := maps.Clone(r.wallets)
	audits := slices.Clone(r.audits)
	txs := slices.Clone(r.transactions)
	nextID := r.nextID

	if err := fn(ctx, memoryLedger{r}); err != nil {
		r.wallets, r.audits, r.transactions, r.nextID = wallets, audits, txs, nextID
		return err
	}
	return nil
}

func (r *MemoryRepo) Audits() []Audit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.audits)
}

func (r *MemoryRepo) ListTransactions(ctx context.Context, userID int64, limit int) ([]Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Transaction
	for i := len(r.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		if r.transactions[i].UserID == userID {
			out = append(out, r.transactions[i])
		}
	}
	return out, nil
}

func (r *MemoryRepo) Transactions() []Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.transactions)
}

// memoryLedger runs with MemoryRepo.mu already held.
type memoryLedger struct{ r *MemoryRepo }

func (l memoryLedger) LockWallet(ctx context.Context, userID int64) (Wallet, error) {
	w, ok := l.r.wallets[userID]
	if !ok || w.Deleted {
		return Wallet{}, ErrWalletNotFound
	}
	return w, nil
}

func (l memoryLedger) SetBalance(ctx context.Context, walletID, balanceMinor int64, now time.Time) error {
	for uid, w := range l.r.wallets {
		if w.ID == walletID {
			w.BalanceMinor = balanceMinor
			w.UpdatedAt = now
			l.r.wallets[uid] = w
			return nil
		}
	}
	return ErrWalletNotFound
}

func (l memoryLedger) AppendWalletAudit(ctx context.Context, a *Audit) error {
	l.r.nextID++
	a.ID = l.r.nextID
	l.r.audits = append(l.r.audits, *a)
	return nil
}

func (l memoryLedger) AppendTransaction(ctx context.Context, t *Transaction) error {
	l.r.nextID++
	t.ID = l.r.nextID
	l.r.transactions = append(l.r.transactions, *t)
	return nil
}
