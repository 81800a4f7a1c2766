package orders

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"storefront-orders/internal/cart"
	"storefront-orders/internal/catalog"
	"storefront-orders/internal/promo"
	"storefront-orders/internal/wallet"
)

// MemoryStore is an in-memory Store useful for tests. RunInTx serializes all
// transactions and restores a snapshot when fn fails, which is enough to
// observe atomicity. It is not intended for production use.
type MemoryStore struct {
	mu sync.Mutex
	st memState
}

type memState struct {
	seq          int64
	users        map[int64]User
	lines        map[int64]cart.Line
	deletedLines map[int64]bool
	wallets      map[int64]wallet.Wallet // by user id
	walletAudits []wallet.Audit
	transactions []wallet.Transaction
	products     map[int64]catalog.Product
	addresses    []Address
	promos       map[string]promo.Code
	orders       map[int64]Order
	items        []Item
	orderAudits  []Audit
	payments     []Payment
	statuses     []StatusRow
}

func (s memState) clone() memState {
	out := s
	out.users = maps.Clone(s.users)
	out.lines = maps.Clone(s.lines)
	out.deletedLines = maps.Clone(s.deletedLines)
	out.wallets = maps.Clone(s.wallets)
	out.walletAudits = slices.Clone(s.walletAudits)
	out.transactions = slices.Clone(s.transactions)
	out.products = maps.Clone(s.products)
	out.addresses = slices.Clone(s.addresses)
	out.promos = maps.Clone(s.promos)
	out.orders = maps.Clone(s.orders)
	out.items = slices.Clone(s.items)
	out.orderAudits = slices.Clone(s.orderAudits)
	out.payments = slices.Clone(s.payments)
	out.statuses = slices.Clone(s.statuses)
	return out
}

func NewMemoryStore() *MemoryStore {
	st := memState{
		users:        make(map[int64]User),
		lines:        make(map[int64]cart.Line),
		deletedLines: make(map[int64]bool),
		wallets:      make(map[int64]wallet.Wallet),
		products:     make(map[int64]catalog.Product),
		promos:       make(map[string]promo.Code),
		orders:       make(map[int64]Order),
	}
	for _, s := range KnownStatuses() {
		st.statuses = append(st.statuses, StatusRow{ID: int64(s), Name: s.String()})
	}
	return &MemoryStore{st: st}
}

func (m *MemoryStore) next() int64 {
	m.st.seq++
	return m.st.seq
}

// --- seeding helpers ---

func (m *MemoryStore) AddUser(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.users[u.ID] = u
}

func (m *MemoryStore) AddProduct(p catalog.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.products[p.ID] = p
}

func (m *MemoryStore) RemoveProduct(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.st.products, id)
}

func (m *MemoryStore) SeedWallet(userID, balanceMinor int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.wallets[userID] = wallet.Wallet{ID: m.next(), UserID: userID, BalanceMinor: balanceMinor}
}

// DeleteWallet soft-deletes the user's wallet.
func (m *MemoryStore) DeleteWallet(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.st.wallets[userID]; ok {
		w.Deleted = true
		m.st.wallets[userID] = w
	}
}

// AddCartLine stores l with the product's current name and price unless set.
func (m *MemoryStore) AddCartLine(l cart.Line) cart.Line {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.st.products[l.ProductID]; ok {
		if l.ProductName == "" {
			l.ProductName = p.Name
		}
		if l.PriceMinor == 0 {
			l.PriceMinor = p.PriceMinor
		}
	}
	l.ID = m.next()
	m.st.lines[l.ID] = l
	return l
}

func (m *MemoryStore) AddAddress(a Address) Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.next()
	m.st.addresses = append(m.st.addresses, a)
	return a
}

func (m *MemoryStore) AddPromo(c promo.Code) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.next()
	m.st.promos[c.Code] = c
}

// SetStatuses replaces the status table, used to test registry validation.
func (m *MemoryStore) SetStatuses(rows []StatusRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.statuses = slices.Clone(rows)
}

// --- inspection helpers ---

func (m *MemoryStore) Product(id int64) catalog.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.products[id]
}

func (m *MemoryStore) Wallet(userID int64) wallet.Wallet {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.wallets[userID]
}

func (m *MemoryStore) Transactions() []wallet.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.st.transactions)
}

func (m *MemoryStore) WalletAudits() []wallet.Audit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.st.walletAudits)
}

func (m *MemoryStore) OrderAudits() []Audit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.st.orderAudits)
}

func (m *MemoryStore) Payments() []Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.st.payments)
}

func (m *MemoryStore) Addresses() []Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.st.addresses)
}

func (m *MemoryStore) OrderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.st.orders)
}

func (m *MemoryStore) CartLines(userID int64) []cart.Line {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memTx{m}.activeLines(userID)
}

// --- Store ---

func (m *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.st.clone()
	if err := fn(ctx, memTx{m}); err != nil {
		m.st = snapshot
		return err
	}
	return nil
}

func (m *MemoryStore) ListOrders(ctx context.Context, f Filter) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Order
	for _, o := range m.st.orders {
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		if f.OrderID != nil && o.ID != *f.OrderID {
			continue
		}
		o.Items = memTx{m}.itemsOf(o.ID)
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemoryStore) ListStatuses(ctx context.Context) ([]StatusRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.st.statuses), nil
}

// memTx runs with MemoryStore.mu held.
type memTx struct{ m *MemoryStore }

func (t memTx) activeLines(userID int64) []cart.Line {
	var out []cart.Line
	for id, l := range t.m.st.lines {
		if l.UserID == userID && !t.m.st.deletedLines[id] {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t memTx) itemsOf(orderID int64) []Item {
	var out []Item
	for _, it := range t.m.st.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out
}

func (t memTx) GetUser(ctx context.Context, userID int64) (User, error) {
	u, ok := t.m.st.users[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (t memTx) ListCartLines(ctx context.Context, userID int64) ([]cart.Line, error) {
	return t.activeLines(userID), nil
}

func (t memTx) ClearCart(ctx context.Context, userID int64, now time.Time) error {
	for id, l := range t.m.st.lines {
		if l.UserID == userID {
			t.m.st.deletedLines[id] = true
		}
	}
	return nil
}

func (t memTx) LatestAddress(ctx context.Context, userID int64) (Address, bool, error) {
	var (
		best  Address
		found bool
	)
	for _, a := range t.m.st.addresses {
		if a.UserID != userID {
			continue
		}
		if !found || !a.CreatedAt.Before(best.CreatedAt) {
			best, found = a, true
		}
	}
	return best, found, nil
}

func (t memTx) InsertAddress(ctx context.Context, a *Address) error {
	a.ID = t.m.next()
	t.m.st.addresses = append(t.m.st.addresses, *a)
	return nil
}

func (t memTx) FindPromoCode(ctx context.Context, code string) (promo.Code, error) {
	c, ok := t.m.st.promos[code]
	if !ok {
		return promo.Code{}, promo.ErrCodeNotFound
	}
	return c, nil
}

func (t memTx) InsertOrder(ctx context.Context, o *Order) error {
	o.ID = t.m.next()
	stored := *o
	stored.Items = nil
	t.m.st.orders[o.ID] = stored
	return nil
}

func (t memTx) InsertItem(ctx context.Context, it *Item) error {
	it.ID = t.m.next()
	t.m.st.items = append(t.m.st.items, *it)
	return nil
}

func (t memTx) LockOrder(ctx context.Context, orderID int64) (Order, error) {
	o, ok := t.m.st.orders[orderID]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (t memTx) ListItems(ctx context.Context, orderID int64) ([]Item, error) {
	return t.itemsOf(orderID), nil
}

func (t memTx) UpdateOrderState(ctx context.Context, orderID int64, status Status, payment PaymentStatus, now time.Time) error {
	o, ok := t.m.st.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = status
	o.PaymentStatus = payment
	o.UpdatedAt = now
	t.m.st.orders[orderID] = o
	return nil
}

func (t memTx) AppendOrderAudit(ctx context.Context, a *Audit) error {
	a.ID = t.m.next()
	t.m.st.orderAudits = append(t.m.st.orderAudits, *a)
	return nil
}

func (t memTx) AppendPayment(ctx context.Context, p *Payment) error {
	p.ID = t.m.next()
	t.m.st.payments = append(t.m.st.payments, *p)
	return nil
}

// wallet.Ledger

func (t memTx) LockWallet(ctx context.Context, userID int64) (wallet.Wallet, error) {
	w, ok := t.m.st.wallets[userID]
	if !ok || w.Deleted {
		return wallet.Wallet{}, wallet.ErrWalletNotFound
	}
	return w, nil
}

func (t memTx) SetBalance(ctx context.Context, walletID, balanceMinor int64, now time.Time) error {
	for uid, w := range t.m.st.wallets {
		if w.ID == walletID {
			w.BalanceMinor = balanceMinor
			w.UpdatedAt = now
			t.m.st.wallets[uid] = w
			return nil
		}
	}
	return wallet.ErrWalletNotFound
}

func (t memTx) AppendWalletAudit(ctx context.Context, a *wallet.Audit) error {
	a.ID = t.m.next()
	t.m.st.walletAudits = append(t.m.st.walletAudits, *a)
	return nil
}

func (t memTx) AppendTransaction(ctx context.Context, tr *wallet.Transaction) error {
	tr.ID = t.m.next()
	t.m.st.transactions = append(t.m.st.transactions, *tr)
	return nil
}

// catalog.StockLedger

func (t memTx) LockProducts(ctx context.Context, ids []int64) (map[int64]catalog.Product, error) {
	out := make(map[int64]catalog.Product, len(ids))
	for _, id := range catalog.LockOrder(ids) {
		if p, ok := t.m.st.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (t memTx) AdjustStock(ctx context.Context, productID, delta int64, now time.Time) (catalog.Product, error) {
	p, ok := t.m.st.products[productID]
	if !ok {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	if p.StockQuantity+delta < 0 {
		return catalog.Product{}, catalog.ErrInsufficientStock
	}
	p.StockQuantity += delta
	p.UpdatedAt = now
	t.m.st.products[productID] = p
	return p, nil
}
