package checkout

import "errors"

var (
	ErrInvalidConfiguration = errors.New("checkout: invalid configuration")
	ErrInvalidCycle         = errors.New("checkout: billing cycle must be positive")
	ErrInvalidCurrency      = errors.New("checkout: invalid currency")
	ErrNegativeQuantity     = errors.New("checkout: plan quantity must not be negative")
	ErrNoPlanSelected       = errors.New("checkout: no plan selected")

	// ErrInvalidCoupon is reported when the pricing service did not apply the
	// requested coupon even though the check itself succeeded.
	ErrInvalidCoupon = errors.New("checkout: coupon code is not valid")
)
