package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-orders/internal/cart"
	"storefront-orders/internal/orders"
	"storefront-orders/internal/promo"
	"storefront-orders/pkg/utils"
)

// OrderStore is the ledger store behind checkout and cancellation.
type OrderStore struct {
	db *sql.DB
}

var (
	_ orders.Store = (*OrderStore)(nil)
	_ orders.Tx    = orderTx{}
)

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

func (s *OrderStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx orders.Tx) error) error {
	return utils.WithTx(ctx, s.db, utils.ReadCommitted(), func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, orderTx{txLedger{tx: tx}})
	})
}

func (s *OrderStore) ListStatuses(ctx context.Context) ([]orders.StatusRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM statuses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.StatusRow
	for rows.Next() {
		var r orders.StatusRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Description); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const orderColumns = `id, user_id, total_minor, discount_minor, payment_status, status_id, address_id, created_at, updated_at`

func (s *OrderStore) ListOrders(ctx context.Context, f orders.Filter) ([]orders.Order, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != nil {
		args = append(args, *f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.OrderID != nil {
		args = append(args, *f.OrderID)
		where = append(where, fmt.Sprintf("id = $%d", len(args)))
	}
	q := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var (
		out []orders.Order
		ids []int64
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	items, err := listItems(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

// orderTx is one checkout or cancellation unit of work.
type orderTx struct {
	txLedger
}

func (t orderTx) GetUser(ctx context.Context, userID int64) (orders.User, error) {
	var u orders.User
	err := t.tx.QueryRowContext(ctx, `SELECT id, name, email FROM users WHERE id = $1`, userID).
		Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orders.User{}, orders.ErrUserNotFound
		}
		return orders.User{}, err
	}
	return u, nil
}

func (t orderTx) ListCartLines(ctx context.Context, userID int64) ([]cart.Line, error) {
	return listCartLines(ctx, t.tx, userID, true)
}

func (t orderTx) ClearCart(ctx context.Context, userID int64, now time.Time) error {
	const q = `UPDATE cart_lines SET deleted = TRUE, updated_at = $2 WHERE user_id = $1 AND NOT deleted`
	if _, err := t.tx.ExecContext(ctx, q, userID, now); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (t orderTx) LatestAddress(ctx context.Context, userID int64) (orders.Address, bool, error) {
	const q = `
SELECT id, user_id, street, city, state, postal_code, country, created_at
FROM addresses
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT 1
`
	var a orders.Address
	err := t.tx.QueryRowContext(ctx, q, userID).Scan(
		&a.ID, &a.UserID, &a.Street, &a.City, &a.State, &a.PostalCode, &a.Country, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orders.Address{}, false, nil
		}
		return orders.Address{}, false, err
	}
	return a, true, nil
}

func (t orderTx) InsertAddress(ctx context.Context, a *orders.Address) error {
	const q = `
INSERT INTO addresses (user_id, street, city, state, postal_code, country, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`
	return t.tx.QueryRowContext(ctx, q,
		a.UserID, a.Street, a.City, a.State, a.PostalCode, a.Country, a.CreatedAt,
	).Scan(&a.ID)
}

func (t orderTx) FindPromoCode(ctx context.Context, code string) (promo.Code, error) {
	return findPromoByCode(ctx, t.tx, code)
}

func (t orderTx) InsertOrder(ctx context.Context, o *orders.Order) error {
	const q = `
INSERT INTO orders (user_id, total_minor, discount_minor, payment_status, status_id, address_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id
`
	return t.tx.QueryRowContext(ctx, q,
		o.UserID,
		o.TotalMinor,
		o.DiscountMinor,
		string(o.PaymentStatus),
		int64(o.Status),
		o.AddressID,
		o.CreatedAt,
		o.UpdatedAt,
	).Scan(&o.ID)
}

func (t orderTx) InsertItem(ctx context.Context, it *orders.Item) error {
	const q = `
INSERT INTO order_items (order_id, product_id, product_name, quantity, price_minor)
VALUES ($1,$2,$3,$4,$5)
RETURNING id
`
	return t.tx.QueryRowContext(ctx, q,
		it.OrderID, it.ProductID, it.ProductName, it.Quantity, it.PriceMinor,
	).Scan(&it.ID)
}

func (t orderTx) LockOrder(ctx context.Context, orderID int64) (orders.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	return scanOrder(t.tx.QueryRowContext(ctx, q, orderID))
}

func (t orderTx) ListItems(ctx context.Context, orderID int64) ([]orders.Item, error) {
	items, err := listItems(ctx, t.tx, []int64{orderID})
	if err != nil {
		return nil, err
	}
	return items[orderID], nil
}

func (t orderTx) UpdateOrderState(ctx context.Context, orderID int64, status orders.Status, payment orders.PaymentStatus, now time.Time) error {
	const q = `UPDATE orders SET status_id = $2, payment_status = $3, updated_at = $4 WHERE id = $1`
	res, err := t.tx.ExecContext(ctx, q, orderID, int64(status), string(payment), now)
	if err != nil {
		return fmt.Errorf("update order state: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return orders.ErrOrderNotFound
	}
	return nil
}

func (t orderTx) AppendOrderAudit(ctx context.Context, a *orders.Audit) error {
	const q = `
INSERT INTO order_audits (order_id, past_status_id, new_status_id, reason, created_at)
VALUES ($1,$2,$3,$4,$5)
RETURNING id
`
	var past sql.NullInt64
	if a.PastStatus != nil {
		past = sql.NullInt64{Int64: int64(*a.PastStatus), Valid: true}
	}
	return t.tx.QueryRowContext(ctx, q, a.OrderID, past, int64(a.NewStatus), a.Reason, a.CreatedAt).Scan(&a.ID)
}

func (t orderTx) AppendPayment(ctx context.Context, p *orders.Payment) error {
	const q = `
INSERT INTO payments (order_id, amount_minor, status, created_at)
VALUES ($1,$2,$3,$4)
RETURNING id
`
	return t.tx.QueryRowContext(ctx, q, p.OrderID, p.AmountMinor, string(p.Status), p.CreatedAt).Scan(&p.ID)
}

func scanOrder(row scanner) (orders.Order, error) {
	var (
		o       orders.Order
		payment string
		status  int64
	)
	err := row.Scan(&o.ID, &o.UserID, &o.TotalMinor, &o.DiscountMinor, &payment, &status, &o.AddressID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orders.Order{}, orders.ErrOrderNotFound
		}
		return orders.Order{}, err
	}
	o.PaymentStatus = orders.PaymentStatus(payment)
	o.Status = orders.Status(status)
	return o, nil
}

// listItems loads the items of the given orders keyed by order id.
func listItems(ctx context.Context, q querier, orderIDs []int64) (map[int64][]orders.Item, error) {
	const stmt = `
SELECT id, order_id, product_id, product_name, quantity, price_minor
FROM order_items
WHERE order_id = ANY($1)
ORDER BY order_id, id
`
	rows, err := q.QueryContext(ctx, stmt, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]orders.Item, len(orderIDs))
	for rows.Next() {
		var it orders.Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.PriceMinor); err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}
