package reporting

import "time"

// TimeRange is half-open: From is included, To is not.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (r TimeRange) contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// OrdersSummaryRequest requests aggregated order metrics.
// UserID narrows the report to one customer.
type OrdersSummaryRequest struct {
	Range  TimeRange `json:"range"`
	UserID *int64    `json:"user_id,omitempty"`
}

type OrdersSummary struct {
	Range  TimeRange `json:"range"`
	UserID *int64    `json:"user_id,omitempty"`

	TotalOrders     int            `json:"total_orders"`
	OrdersByStatus  map[string]int `json:"orders_by_status"`
	CancelledOrders int            `json:"cancelled_orders"`

	// GrossMinor is the sum of pre-discount totals over every order.
	GrossMinor    int64 `json:"gross_minor"`
	DiscountMinor int64 `json:"discount_minor"`

	// ChargedMinor counts only orders that were not cancelled; RefundedMinor
	// is what cancellations returned to wallets.
	ChargedMinor        int64 `json:"charged_minor"`
	RefundedMinor       int64 `json:"refunded_minor"`
	AverageChargedMinor int64 `json:"average_charged_minor"`
}

// SpendSummaryRequest requests aggregated wallet movement.
// Amounts are derived from the immutable transactions log.
type SpendSummaryRequest struct {
	Range  TimeRange `json:"range"`
	UserID *int64    `json:"user_id,omitempty"`
}

type SpendSummary struct {
	Range  TimeRange `json:"range"`
	UserID *int64    `json:"user_id,omitempty"`

	TotalDebitMinor  int64 `json:"total_debit_minor"`
	TotalCreditMinor int64 `json:"total_credit_minor"`
	NetDeltaMinor    int64 `json:"net_delta_minor"`

	// Failed debits are checkouts rejected for insufficient balance.
	FailedDebits     int   `json:"failed_debits"`
	FailedDebitMinor int64 `json:"failed_debit_minor"`
}
