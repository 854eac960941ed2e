package pricecheck

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/plans"
)

const defaultTrialDays = 14

var (
	hundred          = decimal.NewFromInt(100)
	defaultZipFormat = regexp.MustCompile(`^[A-Z0-9-]{3,10}$`)
)

// LocalCoupon is a percentage coupon known to the LocalService.
type LocalCoupon struct {
	Code                      string
	Description               string
	Percent                   int
	MaximumRedemptionsPerUser int
}

// TaxRule lists the taxes charged for a billing country.
type TaxRule struct {
	Country   string
	Taxes     []TaxRate
	Inclusive bool
}

// TaxRate is a named percentage.
type TaxRate struct {
	Name string
	Rate float64
}

// LocalService is a catalog-backed Service for development and for serving
// the JSON pricing protocol without a billing backend. It prorates against
// the remaining share of the current period.
type LocalService struct {
	catalog       plans.Catalog
	subscriptions SubscriptionProvider
	coupons       map[string]LocalCoupon
	gifts         map[string]int64
	taxes         map[string]TaxRule
	credit        int64
	trialDays     int
	validZip      func(country, zip string) bool
	now           func() time.Time
}

// LocalOption configures a LocalService.
type LocalOption func(*LocalService)

func WithCoupons(coupons ...LocalCoupon) LocalOption {
	return func(s *LocalService) {
		for _, c := range coupons {
			if code := checkout.NormalizeCoupon(c.Code); code != "" {
				c.Code = code
				s.coupons[code] = c
			}
		}
	}
}

// WithGiftCode registers a gift code worth amount minor units.
func WithGiftCode(code string, amount int64) LocalOption {
	return func(s *LocalService) {
		if code = checkout.NormalizeCoupon(code); checkout.IsGiftCode(code) && amount > 0 {
			s.gifts[code] = amount
		}
	}
}

func WithTaxRules(rules ...TaxRule) LocalOption {
	return func(s *LocalService) {
		for _, r := range rules {
			addr := checkout.BillingAddress{CountryCode: r.Country}.Normalized()
			s.taxes[addr.CountryCode] = r
		}
	}
}

// WithAccountCredit applies a credit balance to every check.
func WithAccountCredit(amount int64) LocalOption {
	return func(s *LocalService) { s.credit = max(amount, 0) }
}

// WithSubscriptionProvider resolves the current subscription for requests
// that do not carry one.
func WithSubscriptionProvider(p SubscriptionProvider) LocalOption {
	return func(s *LocalService) { s.subscriptions = p }
}

func WithTrialDays(days int) LocalOption {
	return func(s *LocalService) {
		if days > 0 {
			s.trialDays = days
		}
	}
}

// WithZipCodeValidator replaces the default postal code check.
func WithZipCodeValidator(fn func(country, zip string) bool) LocalOption {
	return func(s *LocalService) {
		if fn != nil {
			s.validZip = fn
		}
	}
}

func WithServiceClock(now func() time.Time) LocalOption {
	return func(s *LocalService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewLocalService returns a Service pricing from catalog. It panics on a nil catalog.
func NewLocalService(catalog plans.Catalog, opts ...LocalOption) *LocalService {
	if catalog == nil {
		panic("pricecheck: NewLocalService: nil catalog")
	}
	s := &LocalService{
		catalog:   catalog,
		coupons:   make(map[string]LocalCoupon),
		gifts:     make(map[string]int64),
		taxes:     make(map[string]TaxRule),
		trialDays: defaultTrialDays,
		validZip: func(_, zip string) bool {
			return defaultZipFormat.MatchString(zip)
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckSubscription implements Service.
func (s *LocalService) CheckSubscription(ctx context.Context, req Request) (checkout.Estimation, error) {
	cfg := req.Config
	if err := cfg.Validate(); err != nil {
		return checkout.Estimation{}, errors.Join(ErrInvalidRequest, err)
	}
	addr := cfg.BillingAddress.Normalized()
	if addr.ZipCode != "" && !s.validZip(addr.CountryCode, addr.ZipCode) {
		return checkout.Estimation{}, ErrInvalidZipCode
	}

	current, err := s.current(ctx, req)
	if err != nil {
		return checkout.Estimation{}, err
	}
	if checkout.Classify(cfg, current, s.catalog) == checkout.EligibleForbidden {
		return checkout.Estimation{}, ErrUnsupportedConfiguration
	}

	now := s.now()
	mode := checkout.ResolveMode(cfg, current, s.catalog, checkout.ModeOptions{IsTrial: req.Trial})
	amount := s.catalog.Price(cfg.PlanIDs, cfg.Cycle, cfg.Currency)

	est := checkout.Estimation{
		Amount:           amount,
		Cycle:            cfg.Cycle,
		Currency:         cfg.Currency,
		SubscriptionMode: mode,
	}
	if c, ok := s.coupons[checkout.NormalizeCoupon(cfg.Coupon)]; ok && amount > 0 {
		est.CouponDiscount = -percentage(amount, decimal.NewFromInt(int64(c.Percent)))
		est.Coupon = &checkout.Coupon{
			Code:                      c.Code,
			Description:               c.Description,
			MaximumRedemptionsPerUser: c.MaximumRedemptionsPerUser,
		}
	}
	due := est.Amount + est.CouponDiscount

	sub, _ := checkout.PaidSubscription(current)
	switch mode {
	case checkout.ModeTrial:
		due = 0
		est.PeriodEnd = now.AddDate(0, 0, s.trialDays)
	case checkout.ModeScheduledChargedLater:
		due = 0
		est.PeriodEnd = periodStart(sub, now).AddDate(0, int(cfg.Cycle), 0)
	case checkout.ModeScheduledChargedImmediately:
		est.PeriodEnd = periodStart(sub, now).AddDate(0, int(cfg.Cycle), 0)
	case checkout.ModeCustomBillings:
		// Only the rest of the running period is billed; the pricing
		// aggregator rebuilds the full cycle amount from the catalog.
		left := remainingShare(sub, now)
		est.Amount = scale(amount, left)
		est.CouponDiscount = scale(est.CouponDiscount, left)
		est.UnusedCredit = -scale(sub.Amount, left)
		due = max(est.Amount+est.CouponDiscount+est.UnusedCredit, 0)
		est.PeriodEnd = periodStart(sub, now)
	default:
		if sub != nil && sub.Currency == cfg.Currency {
			est.Proration = -min(scale(sub.Amount, remainingShare(sub, now)), due)
			due += est.Proration
		}
		est.PeriodEnd = now.AddDate(0, int(cfg.Cycle), 0)
	}

	if value, ok := s.gifts[checkout.NormalizeCoupon(cfg.Coupon)]; ok {
		est.Gift = -min(value, due)
		due += est.Gift
	}
	if s.credit > 0 {
		est.Credit = -min(s.credit, due)
		due += est.Credit
	}

	due = s.applyTaxes(&est, addr.CountryCode, due)
	est.AmountDue = due

	if plan, ok := s.catalog.PlanFromIDs(cfg.PlanIDs, cfg.Currency); ok &&
		plan.DefaultRenewCycle.Valid() && plan.DefaultRenewCycle != cfg.Cycle {
		renewCycle := plan.DefaultRenewCycle
		renewAmount := s.catalog.Price(cfg.PlanIDs, renewCycle, cfg.Currency)
		est.RenewCycle = &renewCycle
		est.BaseRenewAmount = &renewAmount
	}

	return est, nil
}

// MultiCheck implements MultiChecker by pricing each request in turn.
func (s *LocalService) MultiCheck(ctx context.Context, reqs []Request) ([]checkout.Estimation, error) {
	out := make([]checkout.Estimation, len(reqs))
	for i, req := range reqs {
		est, err := s.CheckSubscription(ctx, req)
		if err != nil {
			return nil, err
		}
		out[i] = est
	}
	return out, nil
}

func (s *LocalService) current(ctx context.Context, req Request) (checkout.CurrentSubscription, error) {
	if req.Current != nil {
		return req.Current, nil
	}
	if s.subscriptions == nil {
		return checkout.FreeSubscription{}, nil
	}
	current, err := s.subscriptions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return checkout.FreeSubscription{}, nil
	}
	return current, nil
}

// applyTaxes records the taxes for country and returns the amount due with
// exclusive taxes added.
func (s *LocalService) applyTaxes(est *checkout.Estimation, country string, due int64) int64 {
	rule, ok := s.taxes[country]
	if !ok || len(rule.Taxes) == 0 || due <= 0 {
		return due
	}

	base := decimal.NewFromInt(due)
	if rule.Inclusive {
		est.TaxInclusive = checkout.TaxIncluded
		total := decimal.Zero
		for _, t := range rule.Taxes {
			total = total.Add(decimal.NewFromFloat(t.Rate))
		}
		base = base.Mul(hundred).Div(hundred.Add(total))
	}

	var added int64
	for _, t := range rule.Taxes {
		amount := base.Mul(decimal.NewFromFloat(t.Rate)).Div(hundred).Round(0).IntPart()
		est.Taxes = append(est.Taxes, checkout.Tax{Name: t.Name, Rate: t.Rate, Amount: amount})
		added += amount
	}
	if rule.Inclusive {
		return due
	}
	return due + added
}

func percentage(amount int64, percent decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(percent).Div(hundred).Round(0).IntPart()
}

func scale(amount int64, share decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(share).Round(0).IntPart()
}

// remainingShare is the unused fraction of the current period, in [0, 1].
func remainingShare(sub *checkout.Subscription, now time.Time) decimal.Decimal {
	if sub == nil {
		return decimal.Zero
	}
	total := sub.PeriodEnd.Sub(sub.PeriodStart)
	left := sub.PeriodEnd.Sub(now)
	switch {
	case total <= 0 || left <= 0:
		return decimal.Zero
	case left >= total:
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(left)).Div(decimal.NewFromInt(int64(total)))
}

// periodStart is when changed terms take effect: the end of the current period.
func periodStart(sub *checkout.Subscription, now time.Time) time.Time {
	if sub == nil || sub.PeriodEnd.IsZero() {
		return now
	}
	return sub.PeriodEnd
}
