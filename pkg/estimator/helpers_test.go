package estimator_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/estimator"
	"github.com/dmitrymomot/checkoutkit/pkg/plans"
	"github.com/dmitrymomot/checkoutkit/pkg/pricecheck"
)

var (
	now       = time.Date(2026, time.November, 16, 0, 0, 0, 0, time.UTC)
	periodEnd = time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC)
)

func testCatalog(t *testing.T) *plans.MemoryCatalog {
	t.Helper()
	catalog, err := plans.NewMemoryCatalog(
		plans.PlanEntry{
			Name: "free", Type: plans.TypePlan, Currency: "EUR", Free: true,
			Pricing: map[plans.Cycle]int64{plans.Monthly: 0, plans.Yearly: 0},
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
	)
	require.NoError(t, err)
	return catalog
}

func selection(ids plans.PlanIDs, cycle plans.Cycle) checkout.SelectedConfiguration {
	return checkout.SelectedConfiguration{PlanIDs: ids, Cycle: cycle, Currency: "EUR"}
}

func paid(ids plans.PlanIDs, cycle plans.Cycle, amount int64, start time.Time) *checkout.Subscription {
	return &checkout.Subscription{
		PlanIDs:     ids,
		Cycle:       cycle,
		Currency:    "EUR",
		PeriodStart: start,
		PeriodEnd:   periodEnd,
		Amount:      amount,
		Renew:       true,
	}
}

func newLocal(t *testing.T, opts ...pricecheck.LocalOption) *pricecheck.LocalService {
	t.Helper()
	opts = append([]pricecheck.LocalOption{pricecheck.WithServiceClock(func() time.Time { return now })}, opts...)
	return pricecheck.NewLocalService(testCatalog(t), opts...)
}

func newEngine(t *testing.T, svc pricecheck.Service, source estimator.SubscriptionSource, opts ...estimator.Option) *estimator.Engine {
	t.Helper()
	catalog := testCatalog(t)
	opts = append([]estimator.Option{estimator.WithClock(func() time.Time { return now })}, opts...)
	e := estimator.New(catalog, pricecheck.New(svc, catalog), source, opts...)
	require.NoError(t, e.Init(context.Background()))
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// countingService wraps a service, counts calls, and can hold calls for one
// cycle until release is closed.
type countingService struct {
	pricecheck.Service
	calls   atomic.Int32
	block   plans.Cycle
	started chan pricecheck.Request
	release chan struct{}
}

func newCountingService(svc pricecheck.Service) *countingService {
	return &countingService{
		Service: svc,
		started: make(chan pricecheck.Request, 16),
		release: make(chan struct{}),
	}
}

func (s *countingService) CheckSubscription(ctx context.Context, req pricecheck.Request) (checkout.Estimation, error) {
	s.calls.Add(1)
	if s.block != 0 && req.Config.Cycle == s.block {
		s.started <- req
		select {
		case <-s.release:
		case <-ctx.Done():
			return checkout.Estimation{}, ctx.Err()
		}
	}
	return s.Service.CheckSubscription(ctx, req)
}

type failingService struct {
	err error
}

func (s failingService) CheckSubscription(context.Context, pricecheck.Request) (checkout.Estimation, error) {
	return checkout.Estimation{}, s.err
}

type sourceFunc func(ctx context.Context) (checkout.CurrentSubscription, error)

func (f sourceFunc) Current(ctx context.Context) (checkout.CurrentSubscription, error) {
	return f(ctx)
}
