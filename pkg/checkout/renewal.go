package checkout

import (
	"time"

	"github.com/dmitrymomot/checkoutkit/pkg/plans"
)

// RenewalKind selects the renewal disclosure wording.
type RenewalKind string

const (
	// RenewalRegular renews at the purchased terms.
	RenewalRegular RenewalKind = "regular"
	// RenewalTrial bills the first cycle once the trial ends.
	RenewalTrial RenewalKind = "trial"
	// RenewalScheduled starts the new terms at the end of the current period.
	RenewalScheduled RenewalKind = "scheduled"
	// RenewalVariableCycle renews at a different price or cycle than purchased.
	RenewalVariableCycle RenewalKind = "variable_cycle"
)

// RenewalNotice is structured renewal disclosure content. Wording and
// localization are left to the renderer.
type RenewalNotice struct {
	Kind                 RenewalKind    `json:"kind"`
	Mode                 Mode           `json:"mode"`
	Cycle                plans.Cycle    `json:"cycle"`
	RenewCycle           plans.Cycle    `json:"renew_cycle"`
	RenewAmount          int64          `json:"renew_amount"`
	Currency             plans.Currency `json:"currency"`
	FormattedRenewAmount string         `json:"formatted_renew_amount"`
	StartsAt             *time.Time     `json:"starts_at,omitempty"`
	TrialEndsAt          *time.Time     `json:"trial_ends_at,omitempty"`
}

// RenewalInput carries what NewRenewalNotice needs.
type RenewalInput struct {
	Breakdown  CheckoutBreakdown
	Estimation Estimation
	Modifiers  Modifiers
	Current    CurrentSubscription
	Now        time.Time
}

// NewRenewalNotice builds the renewal disclosure for a checkout.
func NewRenewalNotice(in RenewalInput) RenewalNotice {
	b := in.Breakdown
	n := RenewalNotice{
		Mode:                 b.Mode,
		Cycle:                b.Cycle,
		RenewCycle:           b.RenewCycle,
		RenewAmount:          b.RenewPrice,
		Currency:             b.Currency,
		FormattedRenewAmount: FormatAmount(b.RenewPrice, b.Currency),
	}

	switch {
	case b.Mode == ModeTrial:
		n.Kind = RenewalTrial
		if !in.Estimation.PeriodEnd.IsZero() {
			n.TrialEndsAt = timePtr(in.Estimation.PeriodEnd)
		}
	case in.Modifiers.IsScheduled || in.Modifiers.IsCustomBilling:
		n.Kind = RenewalScheduled
		if sub, ok := PaidSubscription(in.Current); ok && !sub.PeriodEnd.IsZero() {
			n.StartsAt = timePtr(sub.PeriodEnd)
		}
	case b.RenewPriceOverridden || b.RenewCycleOverridden:
		n.Kind = RenewalVariableCycle
		n.StartsAt = nextRenewal(in.Estimation, b.Cycle, in.Now)
	default:
		n.Kind = RenewalRegular
		n.StartsAt = nextRenewal(in.Estimation, b.Cycle, in.Now)
	}
	return n
}

// nextRenewal is the estimation's period end, or now plus one cycle when the
// estimation was computed locally and carries none.
func nextRenewal(est Estimation, cycle plans.Cycle, now time.Time) *time.Time {
	if !est.PeriodEnd.IsZero() {
		return timePtr(est.PeriodEnd)
	}
	if now.IsZero() || !cycle.Valid() {
		return nil
	}
	return timePtr(now.AddDate(0, int(cycle), 0))
}

func timePtr(t time.Time) *time.Time {
	return &t
}
