package pricecheck_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/plans"
	"github.com/dmitrymomot/checkoutkit/pkg/pricecheck"
)

var localNow = time.Date(2026, time.November, 16, 0, 0, 0, 0, time.UTC)

func newLocal(t *testing.T, opts ...pricecheck.LocalOption) *pricecheck.LocalService {
	t.Helper()
	opts = append([]pricecheck.LocalOption{pricecheck.WithServiceClock(func() time.Time { return localNow })}, opts...)
	return pricecheck.NewLocalService(testCatalog(t), opts...)
}

func TestLocalService_Purchase(t *testing.T) {
	svc := newLocal(t,
		pricecheck.WithCoupons(pricecheck.LocalCoupon{Code: "spring", Description: "Spring sale", Percent: 20}),
	)
	ctx := context.Background()

	t.Run("regular", func(t *testing.T) {
		est, err := svc.CheckSubscription(ctx, request(plans.PlanIDs{"mail2022": 1}, plans.Yearly))
		require.NoError(t, err)
		assert.Equal(t, checkout.ModeRegular, est.SubscriptionMode)
		assert.Equal(t, int64(4788), est.Amount)
		assert.Equal(t, int64(4788), est.AmountDue)
		assert.Equal(t, localNow.AddDate(0, 12, 0), est.PeriodEnd)
		assert.False(t, est.Optimistic)
		assert.Nil(t, est.RenewCycle)
	})

	t.Run("coupon", func(t *testing.T) {
		req := request(plans.PlanIDs{"mail2022": 1}, plans.Yearly)
		req.Config.Coupon = "Spring"
		est, err := svc.CheckSubscription(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, int64(-958), est.CouponDiscount)
		assert.Equal(t, int64(3830), est.AmountDue)
		require.NotNil(t, est.Coupon)
		assert.Equal(t, "SPRING", est.Coupon.Code)
		assert.NoError(t, checkout.ValidateCoupon(req.Config.Coupon, est))
	})

	t.Run("unknown coupon is not applied", func(t *testing.T) {
		req := request(plans.PlanIDs{"mail2022": 1}, plans.Yearly)
		req.Config.Coupon = "WINTER"
		est, err := svc.CheckSubscription(ctx, req)
		require.NoError(t, err)
		assert.Zero(t, est.CouponDiscount)
		assert.Nil(t, est.Coupon)
		assert.ErrorIs(t, checkout.ValidateCoupon(req.Config.Coupon, est), checkout.ErrInvalidCoupon)
	})

	t.Run("trial", func(t *testing.T) {
		req := request(plans.PlanIDs{"mail2022": 1}, plans.Yearly)
		req.Trial = true
		est, err := svc.CheckSubscription(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, checkout.ModeTrial, est.SubscriptionMode)
		assert.Zero(t, est.AmountDue)
		assert.Equal(t, localNow.AddDate(0, 0, 14), est.PeriodEnd)
	})

	t.Run("variable cycle offer", func(t *testing.T) {
		est, err := svc.CheckSubscription(ctx, request(plans.PlanIDs{"bundle2022": 1}, plans.TwoYears))
		require.NoError(t, err)
		require.NotNil(t, est.RenewCycle)
		require.NotNil(t, est.BaseRenewAmount)
		assert.Equal(t, plans.Yearly, *est.RenewCycle)
		assert.Equal(t, int64(11988), *est.BaseRenewAmount)
	})
}

func TestLocalService_Changes(t *testing.T) {
	ctx := context.Background()
	end := time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC)

	t.Run("plan change is prorated", func(t *testing.T) {
		svc := newLocal(t)
		req := request(plans.PlanIDs{"bundle2022": 1}, plans.Yearly)
		req.Current = &checkout.Subscription{
			PlanIDs: plans.PlanIDs{"mail2022": 1}, Cycle: plans.Monthly, Currency: "EUR",
			PeriodStart: end.AddDate(0, 0, -30), PeriodEnd: end, Amount: 499, Renew: true,
		}

		est, err := svc.CheckSubscription(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, checkout.ModeRegular, est.SubscriptionMode)
		assert.Equal(t, int64(-250), est.Proration)
		assert.Equal(t, int64(11738), est.AmountDue)
	})

	t.Run("shorter cycle is charged later", func(t *testing.T) {
		svc := newLocal(t)
		req := request(plans.PlanIDs{"mail2022": 1}, plans.Monthly)
		req.Current = &checkout.Subscription{
			PlanIDs: plans.PlanIDs{"mail2022": 1}, Cycle: plans.Yearly, Currency: "EUR",
			PeriodStart: end.AddDate(-1, 0, 0), PeriodEnd: end, Amount: 4788, Renew: true,
		}

		est, err := svc.CheckSubscription(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, checkout.ModeScheduledChargedLater, est.SubscriptionMode)
		assert.Zero(t, est.AmountDue)
		assert.Equal(t, end.AddDate(0, 1, 0), est.PeriodEnd)
	})

	t.Run("added addon bills the rest of the period", func(t *testing.T) {
		svc := newLocal(t, pricecheck.WithSubscriptionProvider(staticProvider{current: &checkout.Subscription{
			PlanIDs: plans.PlanIDs{"mailpro2022": 1}, Cycle: plans.Yearly, Currency: "EUR",
			PeriodStart: localNow.AddDate(0, 0, -180), PeriodEnd: localNow.AddDate(0, 0, 180), Amount: 8388, Renew: true,
		}}))
		req := request(plans.PlanIDs{"mailpro2022": 1, "1domain-mailpro2022": 1}, plans.Yearly)

		est, err := svc.CheckSubscription(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, checkout.ModeCustomBillings, est.SubscriptionMode)
		assert.Equal(t, int64(5034), est.Amount)
		assert.Equal(t, int64(-4194), est.UnusedCredit)
		assert.Equal(t, int64(840), est.AmountDue)
		assert.Equal(t, localNow.AddDate(0, 0, 180), est.PeriodEnd)
	})
}

func TestLocalService_Adjustments(t *testing.T) {
	ctx := context.Background()
	req := request(plans.PlanIDs{"mail2022": 1}, plans.Yearly)

	t.Run("gift code", func(t *testing.T) {
		svc := newLocal(t, pricecheck.WithGiftCode("abcd-1234-efgh", 1000))
		req := req
		req.Config.Coupon = "ABCD-1234-EFGH"
		est, err := svc.CheckSubscription(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, int64(-1000), est.Gift)
		assert.Equal(t, int64(3788), est.AmountDue)
		assert.Nil(t, est.Coupon)
	})

	t.Run("account credit", func(t *testing.T) {
		svc := newLocal(t, pricecheck.WithAccountCredit(10000))
		est, err := svc.CheckSubscription(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, int64(-4788), est.Credit)
		assert.Zero(t, est.AmountDue)
	})

	t.Run("exclusive tax", func(t *testing.T) {
		svc := newLocal(t, pricecheck.WithTaxRules(pricecheck.TaxRule{Country: "ch", Taxes: []pricecheck.TaxRate{{Name: "VAT", Rate: 8.1}}}))
		req := req
		req.Config.BillingAddress = checkout.BillingAddress{CountryCode: "CH", ZipCode: "8001"}
		est, err := svc.CheckSubscription(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, checkout.TaxExclusive, est.TaxInclusive)
		require.Len(t, est.Taxes, 1)
		assert.Equal(t, int64(388), est.Taxes[0].Amount)
		assert.Equal(t, int64(5176), est.AmountDue)
	})

	t.Run("inclusive tax", func(t *testing.T) {
		svc := newLocal(t, pricecheck.WithTaxRules(pricecheck.TaxRule{Country: "DE", Inclusive: true, Taxes: []pricecheck.TaxRate{{Name: "MwSt", Rate: 19}}}))
		req := req
		req.Config.BillingAddress = checkout.BillingAddress{CountryCode: "DE", ZipCode: "10115"}
		est, err := svc.CheckSubscription(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, checkout.TaxIncluded, est.TaxInclusive)
		require.Len(t, est.Taxes, 1)
		assert.Equal(t, int64(764), est.Taxes[0].Amount)
		assert.Equal(t, int64(4788), est.AmountDue)
	})
}

func TestLocalService_Rejections(t *testing.T) {
	ctx := context.Background()
	svc := newLocal(t)

	req := request(plans.PlanIDs{"mail2022": 1}, plans.Yearly)
	req.Config.BillingAddress = checkout.BillingAddress{CountryCode: "CH", ZipCode: "80#1"}
	_, err := svc.CheckSubscription(ctx, req)
	assert.ErrorIs(t, err, pricecheck.ErrInvalidZipCode)

	_, err = svc.CheckSubscription(ctx, request(plans.PlanIDs{"mailpro2022": 1, "1domain-mailpro2022": 11}, plans.Yearly))
	assert.ErrorIs(t, err, pricecheck.ErrUnsupportedConfiguration)

	_, err = svc.CheckSubscription(ctx, request(plans.PlanIDs{"mail2022": 1}, -1))
	assert.ErrorIs(t, err, pricecheck.ErrInvalidRequest)

	t.Run("custom zip validator", func(t *testing.T) {
		svc := newLocal(t, pricecheck.WithZipCodeValidator(func(country, zip string) bool {
			return country == "CH" && len(zip) == 4
		}))
		req := request(plans.PlanIDs{"mail2022": 1}, plans.Yearly)
		req.Config.BillingAddress = checkout.BillingAddress{CountryCode: "CH", ZipCode: "80011"}
		_, err := svc.CheckSubscription(ctx, req)
		assert.ErrorIs(t, err, pricecheck.ErrInvalidZipCode)
	})

	t.Run("multi check stops at the first failure", func(t *testing.T) {
		ok := request(plans.PlanIDs{"mail2022": 1}, plans.Yearly)
		ests, err := svc.MultiCheck(ctx, []pricecheck.Request{ok, ok})
		require.NoError(t, err)
		assert.Len(t, ests, 2)

		_, err = svc.MultiCheck(ctx, []pricecheck.Request{ok, req})
		assert.ErrorIs(t, err, pricecheck.ErrInvalidZipCode)
	})
}
