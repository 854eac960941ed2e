package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/checkoutkit/pkg/plans"
)

// ItemType names a checkout line item.
type ItemType string

const (
	ItemBillingCycle           ItemType = "billingCycle"
	ItemMembers                ItemType = "members"
	ItemAddons                 ItemType = "addons"
	ItemPlanAmount             ItemType = "planAmount"
	ItemDiscount               ItemType = "discount"
	ItemProration              ItemType = "proration"
	ItemUnusedCredit           ItemType = "unusedCredit"
	ItemCoupon                 ItemType = "coupon"
	ItemCredit                 ItemType = "credit"
	ItemGift                   ItemType = "gift"
	ItemPlanAmountWithDiscount ItemType = "planAmountWithDiscount"
	ItemTaxExclusive           ItemType = "taxExclusive"
	ItemNextBilling            ItemType = "nextBilling"
	ItemAmountDue              ItemType = "amountDue"
	ItemRenewalNotice          ItemType = "renewalNotice"
	ItemTaxInclusive           ItemType = "taxInclusive"
)

// ItemTypes lists every item type in display order.
var ItemTypes = []ItemType{
	ItemBillingCycle,
	ItemMembers,
	ItemAddons,
	ItemPlanAmount,
	ItemDiscount,
	ItemProration,
	ItemUnusedCredit,
	ItemCoupon,
	ItemCredit,
	ItemGift,
	ItemPlanAmountWithDiscount,
	ItemTaxExclusive,
	ItemNextBilling,
	ItemAmountDue,
	ItemRenewalNotice,
	ItemTaxInclusive,
}

// LineItem is implemented by every item kind. The set is closed.
type LineItem interface {
	ItemType() ItemType
	IsVisible() bool
	accept(v Visitor)
}

// Item is the header shared by every kind.
type Item struct {
	Type    ItemType `json:"type"`
	Visible bool     `json:"visible"`
}

func (i Item) ItemType() ItemType { return i.Type }
func (i Item) IsVisible() bool    { return i.Visible }

type BillingCycleItem struct {
	Item
	Cycle           plans.Cycle `json:"cycle"`
	PricePerMonth   int64       `json:"price_per_month"`
	DiscountPercent int         `json:"discount_percent"`
}

type MembersItem struct {
	Item
	Count         int   `json:"count"`
	PerMember     bool  `json:"per_member"`
	PricePerMonth int64 `json:"price_per_month"`
	Amount        int64 `json:"amount"`
}

type AddonsItem struct {
	Item
	Addons []AddonBreakdown `json:"addons,omitempty"`
}

type PlanAmountItem struct {
	Item
	Cycle  plans.Cycle `json:"cycle"`
	Amount int64       `json:"amount"`
}

// DiscountItem carries the cycle discount as a negative amount.
type DiscountItem struct {
	Item
	Percent int   `json:"percent"`
	Amount  int64 `json:"amount"`
}

type ProrationItem struct {
	Item
	Amount int64 `json:"amount"`
}

type UnusedCreditItem struct {
	Item
	Amount int64 `json:"amount"`
}

type CouponItem struct {
	Item
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	Amount      int64  `json:"amount"`
}

type CreditItem struct {
	Item
	Amount int64 `json:"amount"`
}

type GiftItem struct {
	Item
	Amount int64 `json:"amount"`
}

// PlanAmountWithDiscountItem is the subtotal before exclusive taxes.
type PlanAmountWithDiscountItem struct {
	Item
	Amount int64 `json:"amount"`
}

type TaxExclusiveItem struct {
	Item
	Taxes  []Tax           `json:"taxes,omitempty"`
	Rate   decimal.Decimal `json:"rate"`
	Amount int64           `json:"amount"`
}

type NextBillingItem struct {
	Item
	Date time.Time `json:"date"`
}

type AmountDueItem struct {
	Item
	Amount int64 `json:"amount"`
}

type RenewalNoticeItem struct {
	Item
	Notice RenewalNotice `json:"notice"`
}

type TaxInclusiveItem struct {
	Item
	Taxes  []Tax           `json:"taxes,omitempty"`
	Rate   decimal.Decimal `json:"rate"`
	Amount int64           `json:"amount"`
}

// Visitor handles every item kind. Adding a kind adds a method, so existing
// renderers stop compiling until they handle it.
type Visitor interface {
	VisitBillingCycle(BillingCycleItem)
	VisitMembers(MembersItem)
	VisitAddons(AddonsItem)
	VisitPlanAmount(PlanAmountItem)
	VisitDiscount(DiscountItem)
	VisitProration(ProrationItem)
	VisitUnusedCredit(UnusedCreditItem)
	VisitCoupon(CouponItem)
	VisitCredit(CreditItem)
	VisitGift(GiftItem)
	VisitPlanAmountWithDiscount(PlanAmountWithDiscountItem)
	VisitTaxExclusive(TaxExclusiveItem)
	VisitNextBilling(NextBillingItem)
	VisitAmountDue(AmountDueItem)
	VisitRenewalNotice(RenewalNoticeItem)
	VisitTaxInclusive(TaxInclusiveItem)
}

func (i BillingCycleItem) accept(v Visitor)           { v.VisitBillingCycle(i) }
func (i MembersItem) accept(v Visitor)                { v.VisitMembers(i) }
func (i AddonsItem) accept(v Visitor)                 { v.VisitAddons(i) }
func (i PlanAmountItem) accept(v Visitor)             { v.VisitPlanAmount(i) }
func (i DiscountItem) accept(v Visitor)               { v.VisitDiscount(i) }
func (i ProrationItem) accept(v Visitor)              { v.VisitProration(i) }
func (i UnusedCreditItem) accept(v Visitor)           { v.VisitUnusedCredit(i) }
func (i CouponItem) accept(v Visitor)                 { v.VisitCoupon(i) }
func (i CreditItem) accept(v Visitor)                 { v.VisitCredit(i) }
func (i GiftItem) accept(v Visitor)                   { v.VisitGift(i) }
func (i PlanAmountWithDiscountItem) accept(v Visitor) { v.VisitPlanAmountWithDiscount(i) }
func (i TaxExclusiveItem) accept(v Visitor)           { v.VisitTaxExclusive(i) }
func (i NextBillingItem) accept(v Visitor)            { v.VisitNextBilling(i) }
func (i AmountDueItem) accept(v Visitor)              { v.VisitAmountDue(i) }
func (i RenewalNoticeItem) accept(v Visitor)          { v.VisitRenewalNotice(i) }
func (i TaxInclusiveItem) accept(v Visitor)           { v.VisitTaxInclusive(i) }

// LineItems holds exactly one item per kind, in display order.
// It is only built with an unkeyed literal in Compose.
type LineItems struct {
	BillingCycle           BillingCycleItem
	Members                MembersItem
	Addons                 AddonsItem
	PlanAmount             PlanAmountItem
	Discount               DiscountItem
	Proration              ProrationItem
	UnusedCredit           UnusedCreditItem
	Coupon                 CouponItem
	Credit                 CreditItem
	Gift                   GiftItem
	PlanAmountWithDiscount PlanAmountWithDiscountItem
	TaxExclusive           TaxExclusiveItem
	NextBilling            NextBillingItem
	AmountDue              AmountDueItem
	RenewalNotice          RenewalNoticeItem
	TaxInclusive           TaxInclusiveItem
}

// Items returns every item in display order.
func (l LineItems) Items() []LineItem {
	return []LineItem{
		l.BillingCycle,
		l.Members,
		l.Addons,
		l.PlanAmount,
		l.Discount,
		l.Proration,
		l.UnusedCredit,
		l.Coupon,
		l.Credit,
		l.Gift,
		l.PlanAmountWithDiscount,
		l.TaxExclusive,
		l.NextBilling,
		l.AmountDue,
		l.RenewalNotice,
		l.TaxInclusive,
	}
}

// Map indexes the items by type.
func (l LineItems) Map() map[ItemType]LineItem {
	items := l.Items()
	out := make(map[ItemType]LineItem, len(items))
	for _, item := range items {
		out[item.ItemType()] = item
	}
	return out
}

// Visible returns the visible items in display order.
func (l LineItems) Visible() []LineItem {
	var out []LineItem
	for _, item := range l.Items() {
		if item.IsVisible() {
			out = append(out, item)
		}
	}
	return out
}

// Accept walks the visible items in display order.
func (l LineItems) Accept(v Visitor) {
	for _, item := range l.Visible() {
		item.accept(v)
	}
}
