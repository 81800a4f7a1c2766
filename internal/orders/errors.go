package orders

import "storefront-orders/internal/failure"

var (
	ErrUserNotFound       = failure.New(failure.KindNotFound, "user_not_found", "user not found")
	ErrOrderNotFound      = failure.New(failure.KindNotFound, "order_not_found", "order not found")
	ErrStatusNotFound     = failure.New(failure.KindNotFound, "status_not_found", "status not found")
	ErrEmptyCart          = failure.New(failure.KindValidation, "empty_cart", "Cart is empty. Cannot proceed with checkout.")
	ErrNoAddressAvailable = failure.New(failure.KindValidation, "no_address", "No address found. Please provide an address.")
	ErrAlreadyCancelled   = failure.New(failure.KindConflict, "already_cancelled", "Order is already cancelled.")
	ErrInvalidTransition  = failure.New(failure.KindConflict, "invalid_transition", "order status transition not allowed")
	ErrCheckoutInProgress = failure.New(failure.KindConflict, "checkout_in_progress", "another checkout is in progress for this user")
	ErrIntegrity          = failure.New(failure.KindIntegrity, "integrity", "referenced record missing")
)
