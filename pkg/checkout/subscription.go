package checkout

import (
	"time"

	"github.com/dmitrymomot/checkoutkit/pkg/plans"
)

// CurrentSubscription is what the user holds right now: either a paid
// *Subscription or the FreeSubscription sentinel.
type CurrentSubscription interface {
	isCurrentSubscription()
}

// FreeSubscription marks a user without a paid subscription.
type FreeSubscription struct{}

func (FreeSubscription) isCurrentSubscription() {}

// Subscription is a read-only snapshot of an active paid subscription.
type Subscription struct {
	ID          string         `json:"id,omitempty"`
	PlanIDs     plans.PlanIDs  `json:"plan_ids"`
	Cycle       plans.Cycle    `json:"cycle"`
	Currency    plans.Currency `json:"currency"`
	PeriodStart time.Time      `json:"period_start"`
	PeriodEnd   time.Time      `json:"period_end"`
	Amount      int64          `json:"amount"`
	Discount    int64          `json:"discount"`
	Renew       bool           `json:"renew"`
}

func (*Subscription) isCurrentSubscription() {}

// IsFree reports whether current carries no paid subscription.
func IsFree(current CurrentSubscription) bool {
	_, ok := PaidSubscription(current)
	return !ok
}

// PaidSubscription unwraps the paid variant.
func PaidSubscription(current CurrentSubscription) (*Subscription, bool) {
	sub, ok := current.(*Subscription)
	if !ok || sub == nil {
		return nil, false
	}
	return sub, true
}

// HasPeriodEnd reports whether current is paid and its period end is known.
func HasPeriodEnd(current CurrentSubscription) bool {
	sub, ok := PaidSubscription(current)
	return ok && !sub.PeriodEnd.IsZero()
}
