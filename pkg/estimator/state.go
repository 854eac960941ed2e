package estimator

import (
	"time"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
)

// State is an immutable snapshot of the checkout. Every change produces a new
// State with a higher Seq.
type State struct {
	Seq       uint64
	RequestID uint64

	// Config is the configuration the estimation was priced for.
	Config     checkout.SelectedConfiguration
	Current    checkout.CurrentSubscription
	Mode       checkout.Mode
	Modifiers  checkout.Modifiers
	Estimation checkout.Estimation
	Breakdown  checkout.CheckoutBreakdown
	LineItems  checkout.LineItems

	Loading bool
	// ZipCodeValid is false after the pricing service rejected the billing
	// zip code. The previous estimation is kept.
	ZipCodeValid bool
	CouponErr    error
	Err          error

	UpdatedAt time.Time
}

// Priced reports whether the state carries an estimation.
func (s State) Priced() bool {
	return s.Config.Cycle.Valid()
}
