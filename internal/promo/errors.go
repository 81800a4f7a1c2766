package promo

import "storefront-orders/internal/failure"

var (
	ErrCodeNotFound     = failure.New(failure.KindNotFound, "promo_not_found", "Invalid promo code.")
	ErrCodeNotActive    = failure.New(failure.KindValidation, "promo_not_active", "Promo code is expired or not yet active.")
	ErrMinimumNotMet    = failure.New(failure.KindValidation, "promo_minimum_not_met", "Order amount does not meet the minimum requirement for this promo code.")
	ErrNoEligibleItems  = failure.New(failure.KindValidation, "promo_no_eligible_items", "Promo code does not apply to any items in the cart.")
	ErrInvalidPromoType = failure.New(failure.KindValidation, "promo_invalid_type", "Invalid promo type. Use 'PRODUCT' or 'ORDER'.")
	ErrInvalidPromo     = failure.New(failure.KindValidation, "promo_invalid", "invalid promo code definition")
	ErrCodeExists       = failure.New(failure.KindConflict, "promo_exists", "Promo code already exists!")
	ErrCodeTerminal     = failure.New(failure.KindConflict, "promo_terminal", "promo code can no longer change status")
)

func failureWith(sentinel *failure.Error, detail string) error {
	return failure.Wrapf(sentinel, "%s", detail)
}
