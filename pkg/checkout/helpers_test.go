package checkout_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/plans"
)

func testCatalog(t *testing.T) *plans.MemoryCatalog {
	t.Helper()
	catalog, err := plans.NewMemoryCatalog(
		plans.PlanEntry{
			Name: "free", Type: plans.TypePlan, Currency: "EUR", Free: true,
			Pricing: map[plans.Cycle]int64{plans.Monthly: 0, plans.Yearly: 0, plans.TwoYears: 0},
			Limits:  plans.Limits{MaxMembers: 1},
		},
		plans.PlanEntry{
			Name: "mail2022", Title: "Mail Plus", Type: plans.TypePlan, Currency: "EUR",
			Pricing: map[plans.Cycle]int64{plans.Monthly: 499, plans.Yearly: 4788, plans.TwoYears: 8376},
			Limits:  plans.Limits{MaxMembers: 1},
		},
		plans.PlanEntry{
			Name: "bundle2022", Title: "Unlimited", Type: plans.TypePlan, Currency: "EUR",
			Pricing:           map[plans.Cycle]int64{plans.Monthly: 1299, plans.Yearly: 11988, plans.TwoYears: 19176},
			Limits:            plans.Limits{MaxMembers: 1},
			DefaultRenewCycle: plans.Yearly,
		},
		plans.PlanEntry{
			Name: "bundle2022", Title: "Unlimited", Type: plans.TypePlan, Currency: "CHF",
			Pricing: map[plans.Cycle]int64{plans.Monthly: 1299, plans.Yearly: 11988, plans.TwoYears: 19176},
			Limits:  plans.Limits{MaxMembers: 1},
		},
		plans.PlanEntry{
			Name: "mailpro2022", Title: "Mail Essentials", Type: plans.TypePlan, Currency: "EUR",
			Pricing:          map[plans.Cycle]int64{plans.Monthly: 799, plans.Yearly: 8388, plans.TwoYears: 15576},
			PerMemberPricing: map[plans.Cycle]int64{plans.Monthly: 799, plans.Yearly: 8388, plans.TwoYears: 15576},
			Limits:           plans.Limits{MaxMembers: 1},
		},
		plans.PlanEntry{
			Name: "1member-mailpro2022", Title: "Extra user", Type: plans.TypeAddon, Currency: "EUR",
			Pricing:          map[plans.Cycle]int64{plans.Monthly: 799, plans.Yearly: 8388, plans.TwoYears: 15576},
			Limits:           plans.Limits{MaxMembers: 1},
			AddonFor:         []string{"mailpro2022"},
			MaxAddonQuantity: 500,
		},
		plans.PlanEntry{
			Name: "1domain-mailpro2022", Title: "Extra domain", Type: plans.TypeAddon, Currency: "EUR",
			Pricing:          map[plans.Cycle]int64{plans.Monthly: 150, plans.Yearly: 1680, plans.TwoYears: 3120},
			Limits:           plans.Limits{MaxDomains: 1},
			AddonFor:         []string{"mailpro2022"},
			MaxAddonQuantity: 10,
		},
	)
	require.NoError(t, err)
	return catalog
}

var periodEnd = time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC)

func paidSubscription(ids plans.PlanIDs, cycle plans.Cycle, currency plans.Currency) *checkout.Subscription {
	return &checkout.Subscription{
		ID:          "sub_1",
		PlanIDs:     ids,
		Cycle:       cycle,
		Currency:    currency,
		PeriodStart: periodEnd.AddDate(0, -int(cycle), 0),
		PeriodEnd:   periodEnd,
		Renew:       true,
	}
}

func selected(ids plans.PlanIDs, cycle plans.Cycle, currency plans.Currency) checkout.SelectedConfiguration {
	return checkout.SelectedConfiguration{PlanIDs: ids, Cycle: cycle, Currency: currency}
}
