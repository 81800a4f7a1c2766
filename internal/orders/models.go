package orders

import "time"

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Order is created once per checkout and never deleted; only its status and
// payment status move. TotalMinor and DiscountMinor are immutable.
type Order struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	TotalMinor    int64         `json:"total_minor"`
	DiscountMinor int64         `json:"discount_minor"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Status        Status        `json:"status"`
	AddressID     int64         `json:"address_id"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	Items []Item `json:"items,omitempty"`
}

// ChargedMinor is what the wallet paid for the order and what a cancellation refunds.
func (o Order) ChargedMinor() int64 {
	return chargedAmount(o.TotalMinor, o.DiscountMinor)
}

func chargedAmount(total, discount int64) int64 {
	if discount >= total {
		return 0
	}
	return total - discount
}

// Item is a point-in-time snapshot of a cart line. Never mutated.
type Item struct {
	ID          int64  `json:"id"`
	OrderID     int64  `json:"order_id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	PriceMinor  int64  `json:"price_minor"`
}

// Audit records one status transition. Append-only.
type Audit struct {
	ID         int64     `json:"id"`
	OrderID    int64     `json:"order_id"`
	PastStatus *Status   `json:"past_status"`
	NewStatus  Status    `json:"new_status"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type PaymentRecordStatus string

const PaymentRecordSuccess PaymentRecordStatus = "SUCCESS"

// Payment is appended for every successful checkout.
type Payment struct {
	ID          int64               `json:"id"`
	OrderID     int64               `json:"order_id"`
	AmountMinor int64               `json:"amount_minor"`
	Status      PaymentRecordStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
}

type Address struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	CreatedAt  time.Time `json:"created_at"`
}

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Filter narrows GetOrders; nil fields match everything.
type Filter struct {
	UserID  *int64
	OrderID *int64
}
