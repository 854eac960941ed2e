package checkout

import (
	"time"

	"github.com/dmitrymomot/checkoutkit/pkg/plans"
)

// TaxInclusive tells whether taxes are already part of the amount.
type TaxInclusive int

const (
	TaxExclusive TaxInclusive = 0
	TaxIncluded  TaxInclusive = 1
)

// Tax is one tax line returned by the pricing service. Rate is a percentage.
type Tax struct {
	Name   string  `json:"name"`
	Rate   float64 `json:"rate"`
	Amount int64   `json:"amount"`
}

// Coupon is the coupon the pricing service actually applied.
type Coupon struct {
	Code                      string `json:"code"`
	Description               string `json:"description,omitempty"`
	MaximumRedemptionsPerUser int    `json:"maximum_redemptions_per_user,omitempty"`
}

// OptimisticReason explains why an estimation was computed locally.
type OptimisticReason string

const (
	OptimisticNone        OptimisticReason = ""
	OptimisticForbidden   OptimisticReason = "forbidden"
	OptimisticLocalOnly   OptimisticReason = "local_only"
	OptimisticPlaceholder OptimisticReason = "placeholder"
)

// Estimation is a priced quote for a configuration, authoritative or optimistic.
// CouponDiscount is zero or negative.
type Estimation struct {
	Amount         int64 `json:"amount"`
	AmountDue      int64 `json:"amount_due"`
	CouponDiscount int64 `json:"coupon_discount"`
	Proration      int64 `json:"proration"`
	UnusedCredit   int64 `json:"unused_credit"`
	Credit         int64 `json:"credit"`
	Gift           int64 `json:"gift"`

	Cycle            plans.Cycle    `json:"cycle"`
	Currency         plans.Currency `json:"currency"`
	SubscriptionMode Mode           `json:"subscription_mode"`

	BaseRenewAmount *int64       `json:"base_renew_amount,omitempty"`
	RenewCycle      *plans.Cycle `json:"renew_cycle,omitempty"`
	PeriodEnd       time.Time    `json:"period_end"`

	Taxes        []Tax        `json:"taxes,omitempty"`
	TaxInclusive TaxInclusive `json:"tax_inclusive"`
	Coupon       *Coupon      `json:"coupon,omitempty"`

	Optimistic       bool             `json:"optimistic,omitempty"`
	OptimisticReason OptimisticReason `json:"optimistic_reason,omitempty"`
}

// OptimisticOptions tune NewOptimisticEstimation.
type OptimisticOptions struct {
	IsTrial bool
	Reason  OptimisticReason
}

// NewOptimisticEstimation synthesizes an estimation from the catalog alone.
// Forbidden configurations get zeroed amount due and period fields; trials owe
// nothing up front.
func NewOptimisticEstimation(cfg SelectedConfiguration, current CurrentSubscription, catalog plans.Catalog, opts OptimisticOptions) Estimation {
	amount := catalog.Price(cfg.PlanIDs, cfg.Cycle, cfg.Currency)
	mode := ResolveMode(cfg, current, catalog, ModeOptions{IsTrial: opts.IsTrial})

	reason := opts.Reason
	if reason == OptimisticNone {
		reason = OptimisticPlaceholder
	}

	est := Estimation{
		Amount:           amount,
		AmountDue:        amount,
		Cycle:            cfg.Cycle,
		Currency:         cfg.Currency,
		SubscriptionMode: mode,
		Optimistic:       true,
		OptimisticReason: reason,
	}
	if reason == OptimisticForbidden || mode == ModeTrial {
		est.AmountDue = 0
	}

	if plan, ok := catalog.PlanFromIDs(cfg.PlanIDs, cfg.Currency); ok &&
		plan.DefaultRenewCycle.Valid() && plan.DefaultRenewCycle != cfg.Cycle {
		renewCycle := plan.DefaultRenewCycle
		renewAmount := catalog.Price(cfg.PlanIDs, renewCycle, cfg.Currency)
		est.RenewCycle = &renewCycle
		est.BaseRenewAmount = &renewAmount
	}

	return est
}

// RenewTerms returns the renewal price and cycle, falling back to the purchased terms.
func (e Estimation) RenewTerms(amount int64) (price int64, cycle plans.Cycle, priceOverridden, cycleOverridden bool) {
	price, cycle = amount, e.Cycle
	if e.BaseRenewAmount != nil {
		price, priceOverridden = *e.BaseRenewAmount, true
	}
	if e.RenewCycle != nil && e.RenewCycle.Valid() {
		cycle, cycleOverridden = *e.RenewCycle, true
	}
	return price, cycle, priceOverridden, cycleOverridden
}
