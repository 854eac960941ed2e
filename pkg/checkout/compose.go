package checkout

import "time"

// ComposeInput is everything the line items are derived from.
type ComposeInput struct {
	Breakdown        CheckoutBreakdown
	Estimation       Estimation
	Modifiers        Modifiers
	Coupon           *CouponConfig
	Current          CurrentSubscription
	PaymentForbidden bool
	Now              time.Time
}

// Compose builds the full set of line items. It is pure: equal inputs give
// structurally equal output.
func Compose(in ComposeInput) LineItems {
	b, est, mod := in.Breakdown, in.Estimation, in.Modifiers
	paid := b.IsPaid

	planAmount := b.Amount
	if planAmount == 0 && b.IsTrial {
		planAmount = b.AmountOptimistic
	}

	discountPercent := b.EffectiveDiscountPercent()

	var coupon CouponItem
	if est.Coupon != nil {
		coupon.Code = est.Coupon.Code
		coupon.Description = est.Coupon.Description
	} else if in.Coupon != nil {
		coupon.Code = in.Coupon.Code
	}
	coupon.Item = Item{ItemCoupon, est.CouponDiscount != 0 && (in.Coupon == nil || !in.Coupon.Hidden)}
	coupon.Amount = est.CouponDiscount

	exclusiveTax := b.Tax.HasTax && !b.Tax.Inclusive
	inclusiveTax := b.Tax.HasTax && b.Tax.Inclusive

	var nextBilling time.Time
	if sub, ok := PaidSubscription(in.Current); ok {
		nextBilling = sub.PeriodEnd
	}

	notice := NewRenewalNotice(RenewalInput{
		Breakdown:  b,
		Estimation: est,
		Modifiers:  mod,
		Current:    in.Current,
		Now:        in.Now,
	})

	return LineItems{
		BillingCycleItem{Item{ItemBillingCycle, paid}, b.Cycle, b.ViewPricePerMonth, discountPercent},
		MembersItem{Item{ItemMembers, paid}, b.MemberCount, b.HasMemberPricing, b.MembersPerMonth, b.MembersPerCycle},
		AddonsItem{Item{ItemAddons, b.HasAddons}, b.Addons},
		PlanAmountItem{Item{ItemPlanAmount, paid}, b.Cycle, planAmount},
		DiscountItem{Item{ItemDiscount, discountPercent != 0 && !mod.IsCustomBilling}, discountPercent, -b.EffectiveDiscountPerCycle()},
		ProrationItem{Item{ItemProration, mod.IsProration && est.Proration != 0}, est.Proration},
		UnusedCreditItem{Item{ItemUnusedCredit, mod.IsCustomBilling && est.UnusedCredit < 0}, est.UnusedCredit},
		coupon,
		CreditItem{Item{ItemCredit, est.Credit != 0}, est.Credit},
		GiftItem{Item{ItemGift, est.Gift != 0}, est.Gift},
		PlanAmountWithDiscountItem{Item{ItemPlanAmountWithDiscount, exclusiveTax}, est.AmountDue - b.Tax.Amount},
		TaxExclusiveItem{Item{ItemTaxExclusive, exclusiveTax}, b.Tax.Taxes, b.Tax.Rate, b.Tax.Amount},
		NextBillingItem{Item{ItemNextBilling, mod.IsScheduled && HasPeriodEnd(in.Current)}, nextBilling},
		AmountDueItem{Item{ItemAmountDue, true}, est.AmountDue},
		RenewalNoticeItem{Item{ItemRenewalNotice, paid && !in.PaymentForbidden}, notice},
		TaxInclusiveItem{Item{ItemTaxInclusive, inclusiveTax}, b.Tax.Taxes, b.Tax.Rate, b.Tax.Amount},
	}
}
