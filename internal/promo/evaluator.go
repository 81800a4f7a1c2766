package promo

import (
	"time"

	"github.com/shopspring/decimal"
)

// Line is the slice of a cart line the evaluator needs.
type Line struct {
	ProductID  int64
	Quantity   int64
	PriceMinor int64
}

var hundred = decimal.NewFromInt(100)

// Evaluate computes the discount in minor units for code applied to lines.
// It has no side effects. Arithmetic is decimal and rounded once, half-up, at the end.
func Evaluate(code *Code, lines []Line, orderTotalMinor int64, now time.Time) (int64, error) {
	if code == nil {
		return 0, ErrCodeNotFound
	}
	if !code.Usable(now) {
		return 0, ErrCodeNotActive
	}

	var raw decimal.Decimal
	switch code.Type {
	case TypeOrder:
		if code.MinOrderMinor != nil && orderTotalMinor < *code.MinOrderMinor {
			return 0, ErrMinimumNotMet
		}
		raw = decimal.NewFromInt(orderTotalMinor).Mul(code.DiscountPercentage).Div(hundred)

	case TypeProduct:
		for _, l := range lines {
			if code.ProductID == nil || l.ProductID != *code.ProductID {
				continue
			}
			lineTotal := decimal.NewFromInt(l.PriceMinor).Mul(decimal.NewFromInt(l.Quantity))
			raw = raw.Add(lineTotal.Mul(code.DiscountPercentage).Div(hundred))
		}
		if raw.IsZero() {
			return 0, ErrNoEligibleItems
		}

	default:
		return 0, ErrInvalidPromoType
	}

	discount := raw.Round(0).IntPart()
	if discount > orderTotalMinor {
		discount = orderTotalMinor
	}
	return discount, nil
}
