package reporting

import (
	"context"
	"errors"
	"time"

	"storefront-orders/internal/failure"
	"storefront-orders/internal/orders"
	"storefront-orders/internal/wallet"
)

var ErrInvalidRange = failure.New(failure.KindValidation, "invalid_range", "from and to are required and from must be before to")

// maxRange bounds a single report so an admin request cannot scan the whole history.
const maxRange = 366 * 24 * time.Hour

// Repository abstracts data access for reporting.
//
// IMPORTANT:
// - Implementations should query immutable sources when possible (orders, transactions).
// - Both ranges are half-open on created_at.
type Repository interface {
	ListOrdersCreated(ctx context.Context, from, to time.Time, userID *int64) ([]orders.Order, error)
	ListTransactionsCreated(ctx context.Context, from, to time.Time, userID *int64) ([]wallet.Transaction, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func validRange(r TimeRange) bool {
	if r.From.IsZero() || r.To.IsZero() || !r.To.After(r.From) {
		return false
	}
	return r.To.Sub(r.From) <= maxRange
}

func (s *Service) OrdersSummary(ctx context.Context, req OrdersSummaryRequest) (OrdersSummary, error) {
	if !validRange(req.Range) {
		return OrdersSummary{}, ErrInvalidRange
	}
	if s.repo == nil {
		return OrdersSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListOrdersCreated(ctx, req.Range.From, req.Range.To, req.UserID)
	if err != nil {
		return OrdersSummary{}, err
	}

	out := OrdersSummary{Range: req.Range, UserID: req.UserID, OrdersByStatus: map[string]int{}}
	for _, o := range rows {
		out.TotalOrders++
		out.OrdersByStatus[o.Status.String()]++
		out.GrossMinor += o.TotalMinor
		out.DiscountMinor += o.DiscountMinor
		if o.Status == orders.StatusCancelled {
			out.CancelledOrders++
			out.RefundedMinor += o.ChargedMinor()
			continue
		}
		out.ChargedMinor += o.ChargedMinor()
	}
	if kept := out.TotalOrders - out.CancelledOrders; kept > 0 {
		out.AverageChargedMinor = out.ChargedMinor / int64(kept)
	}
	return out, nil
}

func (s *Service) SpendSummary(ctx context.Context, req SpendSummaryRequest) (SpendSummary, error) {
	if !validRange(req.Range) {
		return SpendSummary{}, ErrInvalidRange
	}
	if s.repo == nil {
		return SpendSummary{}, errors.New("reporting: repository not configured")
	}

	txs, err := s.repo.ListTransactionsCreated(ctx, req.Range.From, req.Range.To, req.UserID)
	if err != nil {
		return SpendSummary{}, err
	}

	out := SpendSummary{Range: req.Range, UserID: req.UserID}
	for _, t := range txs {
		if t.Status == wallet.TransactionFailed {
			if t.Type == wallet.EntryTypeDebit {
				out.FailedDebits++
				out.FailedDebitMinor += t.AmountMinor
			}
			continue
		}
		switch t.Type {
		case wallet.EntryTypeDebit:
			out.TotalDebitMinor += t.AmountMinor
		case wallet.EntryTypeCredit:
			out.TotalCreditMinor += t.AmountMinor
		}
	}
	out.NetDeltaMinor = out.TotalCreditMinor - out.TotalDebitMinor
	return out, nil
}
