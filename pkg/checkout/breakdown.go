package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/checkoutkit/pkg/plans"
)

// AggregateOptions tune Aggregate.
type AggregateOptions struct {
	IsTrial bool
}

// AddonBreakdown is the price allocation of one addon.
type AddonBreakdown struct {
	Name          string `json:"name"`
	Title         string `json:"title,omitempty"`
	Quantity      int    `json:"quantity"`
	PricePerCycle int64  `json:"price_per_cycle"`
	PricePerMonth int64  `json:"price_per_month"`
}

// TaxSummary folds the tax lines of an estimation.
type TaxSummary struct {
	Taxes     []Tax           `json:"taxes,omitempty"`
	Rate      decimal.Decimal `json:"rate"`
	Amount    int64           `json:"amount"`
	Inclusive bool            `json:"inclusive"`
	HasTax    bool            `json:"has_tax"`
}

// CheckoutBreakdown is the normalized pricing derived from an estimation and
// the catalog. Money is in minor units; per-month values are rounded half away
// from zero.
type CheckoutBreakdown struct {
	PlanName  string         `json:"plan_name,omitempty"`
	PlanTitle string         `json:"plan_title,omitempty"`
	IsPaid    bool           `json:"is_paid"`
	IsTrial   bool           `json:"is_trial"`
	Cycle     plans.Cycle    `json:"cycle"`
	Currency  plans.Currency `json:"currency"`
	Mode      Mode           `json:"mode"`

	AmountOptimistic int64 `json:"amount_optimistic"`
	Amount           int64 `json:"amount"`
	CouponDiscount   int64 `json:"coupon_discount"`

	WithDiscountPerCycle    int64 `json:"with_discount_per_cycle"`
	WithDiscountPerMonth    int64 `json:"with_discount_per_month"`
	WithoutDiscountPerCycle int64 `json:"without_discount_per_cycle"`
	WithoutDiscountPerMonth int64 `json:"without_discount_per_month"`

	DiscountPerCycle           int64 `json:"discount_per_cycle"`
	DiscountPercent            int   `json:"discount_percent"`
	OptimisticDiscountPerCycle int64 `json:"optimistic_discount_per_cycle"`
	OptimisticDiscountPercent  int   `json:"optimistic_discount_percent"`

	Addons         []AddonBreakdown `json:"addons,omitempty"`
	AddonsPerMonth int64            `json:"addons_per_month"`

	// HasAddons is set for any addon with a positive quantity, including
	// member addons folded into the members row.
	HasAddons bool `json:"has_addons"`

	MemberCount      int   `json:"member_count"`
	HasMemberPricing bool  `json:"has_member_pricing"`
	MembersPerMonth  int64 `json:"members_per_month"`
	MembersPerCycle  int64 `json:"members_per_cycle"`

	RenewPrice           int64       `json:"renew_price"`
	RenewCycle           plans.Cycle `json:"renew_cycle"`
	RenewPriceOverridden bool        `json:"renew_price_overridden"`
	RenewCycleOverridden bool        `json:"renew_cycle_overridden"`

	ViewPricePerMonth int64 `json:"view_price_per_month"`

	Tax TaxSummary `json:"tax"`
}

// EffectiveDiscountPercent is the discount shown to the user: trials preview
// the catalog discount since nothing is charged yet.
func (b CheckoutBreakdown) EffectiveDiscountPercent() int {
	if b.IsTrial {
		return b.OptimisticDiscountPercent
	}
	return b.DiscountPercent
}

// EffectiveDiscountPerCycle pairs with EffectiveDiscountPercent.
func (b CheckoutBreakdown) EffectiveDiscountPerCycle() int64 {
	if b.IsTrial {
		return b.OptimisticDiscountPerCycle
	}
	return b.DiscountPerCycle
}

// Aggregate turns est into a CheckoutBreakdown for cfg.
//
// In custom billing mode the pricing service reports only the incremental
// charge, so Amount is rebuilt from the catalog.
//
// Aggregate panics when cfg.Cycle is not positive or a member-priced plan
// grants no members.
func Aggregate(cfg SelectedConfiguration, est Estimation, catalog plans.Catalog, opts AggregateOptions) CheckoutBreakdown {
	cycle := cfg.Cycle
	divisor := perCycleDivisor(cycle)

	b := CheckoutBreakdown{
		Cycle:    cycle,
		Currency: cfg.Currency,
		Mode:     est.SubscriptionMode,
		IsTrial:  opts.IsTrial || est.SubscriptionMode == ModeTrial,
	}

	plan, hasPlan := catalog.PlanFromIDs(cfg.PlanIDs, cfg.Currency)
	if hasPlan {
		b.PlanName = plan.Name
		b.PlanTitle = plan.Title
		b.IsPaid = !plan.Free
	}

	b.AmountOptimistic = catalog.Price(cfg.PlanIDs, cycle, cfg.Currency)
	b.Amount = est.Amount
	if est.SubscriptionMode == ModeCustomBillings {
		b.Amount = b.AmountOptimistic
	}

	b.CouponDiscount = abs(est.CouponDiscount)
	b.WithDiscountPerCycle = b.Amount - b.CouponDiscount
	b.WithDiscountPerMonth = minorUnits(decimal.NewFromInt(b.WithDiscountPerCycle).Div(divisor))

	b.WithoutDiscountPerMonth = catalog.Price(cfg.PlanIDs, plans.Monthly, cfg.Currency)
	b.WithoutDiscountPerCycle = b.WithoutDiscountPerMonth * cycle.Months()

	b.DiscountPerCycle = min(b.WithoutDiscountPerCycle-b.WithDiscountPerCycle, b.WithoutDiscountPerCycle)
	b.DiscountPercent = percentOf(b.DiscountPerCycle, b.WithoutDiscountPerCycle)
	b.OptimisticDiscountPerCycle = min(b.WithoutDiscountPerCycle-(b.AmountOptimistic-b.CouponDiscount), b.WithoutDiscountPerCycle)
	b.OptimisticDiscountPercent = percentOf(b.OptimisticDiscountPerCycle, b.WithoutDiscountPerCycle)

	b.HasMemberPricing = hasPlan && plan.HasMemberPricing(cycle)
	b.MemberCount = plans.MemberCount(catalog, cfg.PlanIDs, cfg.Currency)

	addonsPerMonth := decimal.Zero
	for _, name := range cfg.PlanIDs.Names() {
		entry, ok := catalog.Entry(name, cfg.Currency)
		if !ok || !entry.IsAddon() {
			continue
		}
		if cfg.PlanIDs[name] > 0 {
			b.HasAddons = true
		}
		// Member addons are folded into the members row of per-seat plans.
		if b.HasMemberPricing && entry.Limits.MaxMembers > 0 {
			continue
		}
		qty := cfg.PlanIDs[name]
		price, _ := entry.PriceFor(cycle)
		perCycle := int64(qty) * price
		perMonth := decimal.NewFromInt(perCycle).Div(divisor)
		addonsPerMonth = addonsPerMonth.Add(perMonth)
		b.Addons = append(b.Addons, AddonBreakdown{
			Name:          entry.Name,
			Title:         entry.Title,
			Quantity:      qty,
			PricePerCycle: perCycle,
			PricePerMonth: minorUnits(perMonth),
		})
	}
	b.AddonsPerMonth = minorUnits(addonsPerMonth)

	var membersPerMonth decimal.Decimal
	if b.HasMemberPricing {
		if b.MemberCount <= 0 {
			panic(fmt.Sprintf("checkout: member-priced plan %s selected without members", plan.Name))
		}
		row := plan.PerMemberPricing[cycle]
		membersPerMonth = monthly(row, cycle).Mul(decimal.NewFromInt(int64(b.MemberCount)))
		b.MembersPerCycle = row * int64(b.MemberCount)
	} else {
		membersPerMonth = monthly(b.Amount, cycle).Sub(addonsPerMonth)
		b.MembersPerCycle = minorUnits(membersPerMonth.Mul(divisor))
	}
	b.MembersPerMonth = minorUnits(membersPerMonth)

	b.RenewPrice, b.RenewCycle, b.RenewPriceOverridden, b.RenewCycleOverridden = est.RenewTerms(b.Amount)

	if b.HasMemberPricing {
		b.ViewPricePerMonth = minorUnits(membersPerMonth.Div(decimal.NewFromInt(int64(b.MemberCount))))
	} else {
		b.ViewPricePerMonth = b.WithDiscountPerMonth
	}

	b.Tax = summarizeTaxes(est)
	return b
}

func summarizeTaxes(est Estimation) TaxSummary {
	s := TaxSummary{
		Rate:      decimal.Zero,
		Inclusive: est.TaxInclusive == TaxIncluded,
		HasTax:    len(est.Taxes) > 0,
	}
	if !s.HasTax {
		return s
	}
	s.Taxes = append([]Tax(nil), est.Taxes...)
	rate := decimal.Zero
	for _, tax := range est.Taxes {
		rate = rate.Add(decimal.NewFromFloat(tax.Rate))
		s.Amount += tax.Amount
	}
	s.Rate = rate.Round(4)
	return s
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
