package pricecheck_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/plans"
	"github.com/dmitrymomot/checkoutkit/pkg/pricecheck"
)

type checkResult struct {
	est checkout.Estimation
	err error
}

func checkAsync(ctx context.Context, c *pricecheck.Checker, req pricecheck.Request) <-chan checkResult {
	out := make(chan checkResult, 1)
	go func() {
		est, err := c.CheckOne(ctx, req)
		out <- checkResult{est, err}
	}()
	return out
}

func outcome(m *pricecheck.Metrics, name string) float64 {
	return testutil.ToFloat64(m.Requests.WithLabelValues(name))
}

func TestChecker_Coalescing(t *testing.T) {
	svc := newBlockingService()
	metrics := pricecheck.NewMetrics(prometheus.NewRegistry())
	c := pricecheck.New(svc, testCatalog(t), pricecheck.WithMetrics(metrics))
	req := request(plans.PlanIDs{"mail2022": 1}, plans.Yearly)

	first := checkAsync(context.Background(), c, req)
	<-svc.started

	second := checkAsync(context.Background(), c, req)
	require.Eventually(t, func() bool {
		return outcome(metrics, pricecheck.OutcomeCoalesced) == 1
	}, time.Second, 5*time.Millisecond)

	close(svc.release)
	r1, r2 := <-first, <-second
	require.NoError(t, r1.err)
	require.NoError(t, r2.err)

	assert.Equal(t, int32(1), svc.calls.Load())
	assert.Equal(t, r1.est, r2.est)
	assert.Equal(t, int64(4788), r1.est.Amount)
	assert.Equal(t, float64(1), outcome(metrics, pricecheck.OutcomeNetwork))

	t.Run("later checks hit the cache", func(t *testing.T) {
		est, err := c.CheckOne(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, r1.est, est)
		assert.Equal(t, int32(1), svc.calls.Load())
		assert.Equal(t, float64(1), outcome(metrics, pricecheck.OutcomeHit))

		cached, ok := c.GetCached(req)
		require.True(t, ok)
		assert.Equal(t, est, cached)
	})
}

func TestChecker_AbortedWaiterDoesNotFailOthers(t *testing.T) {
	svc := newBlockingService()
	c := pricecheck.New(svc, testCatalog(t))
	req := request(plans.PlanIDs{"mail2022": 1}, plans.Yearly)

	ctx, cancel := context.WithCancel(context.Background())
	aborted := checkAsync(ctx, c, req)
	<-svc.started
	other := checkAsync(context.Background(), c, req)

	cancel()
	r1 := <-aborted
	assert.ErrorIs(t, r1.err, context.Canceled)

	close(svc.release)
	r2 := <-other
	require.NoError(t, r2.err)
	assert.Equal(t, int64(4788), r2.est.Amount)
	assert.Equal(t, int32(1), svc.calls.Load())

	_, ok := c.GetCached(req)
	assert.True(t, ok)
}

func TestChecker_LocalDecisions(t *testing.T) {
	svc := &fakeService{}
	metrics := pricecheck.NewMetrics(nil)
	c := pricecheck.New(svc, testCatalog(t), pricecheck.WithMetrics(metrics))

	t.Run("forbidden", func(t *testing.T) {
		est, err := c.CheckOne(context.Background(), request(plans.PlanIDs{"mail2022": 1}, plans.SixMonths))
		require.NoError(t, err)
		assert.True(t, est.Optimistic)
		assert.Equal(t, checkout.OptimisticForbidden, est.OptimisticReason)
		assert.Zero(t, est.AmountDue)
		assert.True(t, est.PeriodEnd.IsZero())
		assert.Equal(t, float64(1), outcome(metrics, pricecheck.OutcomeForbidden))
	})

	t.Run("free plan", func(t *testing.T) {
		est, err := c.CheckOne(context.Background(), request(plans.PlanIDs{"free": 1}, plans.Monthly))
		require.NoError(t, err)
		assert.Equal(t, checkout.OptimisticLocalOnly, est.OptimisticReason)
		assert.Zero(t, est.Amount)
		assert.Equal(t, float64(1), outcome(metrics, pricecheck.OutcomeLocal))
	})

	t.Run("extra rules", func(t *testing.T) {
		deny := func(checkout.SelectedConfiguration, checkout.CurrentSubscription, plans.Catalog) (checkout.Eligibility, bool) {
			return checkout.EligibleForbidden, true
		}
		strict := pricecheck.New(svc, testCatalog(t), pricecheck.WithEligibilityRules(deny))
		est, err := strict.CheckOne(context.Background(), request(plans.PlanIDs{"mail2022": 1}, plans.Yearly))
		require.NoError(t, err)
		assert.Equal(t, checkout.OptimisticForbidden, est.OptimisticReason)
	})

	assert.Zero(t, svc.calls.Load())
}

func TestChecker_CurrentSubscriptionIsolation(t *testing.T) {
	now := time.Date(2026, time.November, 16, 0, 0, 0, 0, time.UTC)
	svc := &countingService{Service: pricecheck.NewLocalService(testCatalog(t),
		pricecheck.WithServiceClock(func() time.Time { return now }),
	)}
	c := pricecheck.New(svc, testCatalog(t))

	req := request(plans.PlanIDs{"bundle2022": 1}, plans.TwoYears)
	req.Current = checkout.FreeSubscription{}
	free, err := c.CheckOne(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, checkout.ModeRegular, free.SubscriptionMode)

	req.Current = &checkout.Subscription{
		PlanIDs:     plans.PlanIDs{"bundle2022": 1},
		Cycle:       plans.Yearly,
		Currency:    "EUR",
		PeriodStart: now.AddDate(0, -1, 0),
		PeriodEnd:   now.AddDate(0, 11, 0),
		Amount:      11988,
		Renew:       true,
	}
	paid, err := c.CheckOne(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, checkout.ModeScheduledChargedImmediately, paid.SubscriptionMode)
	assert.Equal(t, int32(2), svc.calls.Load())

	again, err := c.CheckOne(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, paid, again)
	assert.Equal(t, int32(2), svc.calls.Load(), "same subscription terms are served from cache")
}

func TestChecker_Errors(t *testing.T) {
	t.Run("invalid configuration", func(t *testing.T) {
		c := pricecheck.New(&fakeService{}, testCatalog(t))
		_, err := c.CheckOne(context.Background(), request(plans.PlanIDs{"mail2022": 1}, 0))
		assert.ErrorIs(t, err, pricecheck.ErrInvalidRequest)
		assert.ErrorIs(t, err, checkout.ErrInvalidCycle)
	})

	t.Run("service error is returned and not cached", func(t *testing.T) {
		svc := &fakeService{err: pricecheck.ErrInvalidZipCode}
		metrics := pricecheck.NewMetrics(nil)
		c := pricecheck.New(svc, testCatalog(t), pricecheck.WithMetrics(metrics))
		req := request(plans.PlanIDs{"mail2022": 1}, plans.Yearly)

		_, err := c.CheckOne(context.Background(), req)
		assert.ErrorIs(t, err, pricecheck.ErrInvalidZipCode)
		_, err = c.CheckOne(context.Background(), req)
		assert.ErrorIs(t, err, pricecheck.ErrInvalidZipCode)

		assert.Equal(t, int32(2), svc.calls.Load())
		assert.Equal(t, float64(2), outcome(metrics, pricecheck.OutcomeError))
		_, ok := c.GetCached(req)
		assert.False(t, ok)
	})

	t.Run("silent failure leaves a nil slot", func(t *testing.T) {
		svc := &fakeService{err: pricecheck.ErrInvalidZipCode}
		c := pricecheck.New(svc, testCatalog(t))

		silent := request(plans.PlanIDs{"mail2022": 1}, plans.Yearly)
		silent.Silent = true
		local := request(plans.PlanIDs{"free": 1}, plans.Monthly)

		results, err := c.Check(context.Background(), silent, local)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Nil(t, results[0])
		require.NotNil(t, results[1])
		assert.Equal(t, checkout.OptimisticLocalOnly, results[1].OptimisticReason)
	})
}

func TestChecker_Groups(t *testing.T) {
	svc := newBlockingService()
	c := pricecheck.New(svc, testCatalog(t))
	group := c.NewGroupID()
	require.NotEmpty(t, group)
	assert.NotEqual(t, group, c.NewGroupID())

	monthly := request(plans.PlanIDs{"mail2022": 1}, plans.Monthly)
	yearly := request(plans.PlanIDs{"mail2022": 1}, plans.Yearly)
	for _, r := range []*pricecheck.Request{&monthly, &yearly} {
		r.Group = group
		r.Silent = true
	}

	done := make(chan []*checkout.Estimation, 1)
	go func() {
		results, _ := c.Check(context.Background(), monthly, yearly)
		done <- results
	}()

	<-svc.started
	assert.True(t, c.IsGroupPending(group))
	assert.False(t, c.IsGroupPending("other"))

	close(svc.release)
	results := <-done
	require.Len(t, results, 2)
	assert.NotNil(t, results[0])
	assert.NotNil(t, results[1])
	assert.Eventually(t, func() bool { return !c.IsGroupPending(group) }, time.Second, 5*time.Millisecond)
}

func TestChecker_Batch(t *testing.T) {
	svc := &batchService{}
	c := pricecheck.New(svc, testCatalog(t))

	results, err := c.Check(context.Background(),
		request(plans.PlanIDs{"mail2022": 1}, plans.Monthly),
		request(plans.PlanIDs{"mail2022": 1}, plans.Yearly),
		request(plans.PlanIDs{"mail2022": 1}, plans.Yearly),
	)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, int32(1), svc.batches.Load())
	assert.Equal(t, []int{2}, svc.sizes)
	assert.Zero(t, svc.calls.Load())
	assert.Equal(t, int64(100), results[0].Amount)
	assert.Equal(t, int64(200), results[1].Amount)
	assert.Equal(t, results[1], results[2])

	t.Run("single miss skips the batch endpoint", func(t *testing.T) {
		_, err := c.CheckOne(context.Background(), request(plans.PlanIDs{"mail2022": 1}, plans.TwoYears))
		require.NoError(t, err)
		assert.Equal(t, int32(1), svc.batches.Load())
		assert.Equal(t, int32(1), svc.calls.Load())
	})
}

func TestChecker_Store(t *testing.T) {
	req := request(plans.PlanIDs{"mail2022": 1}, plans.Yearly)
	shared := checkout.Estimation{Amount: 4000, AmountDue: 4000, Cycle: plans.Yearly, Currency: "EUR"}

	t.Run("shared hit", func(t *testing.T) {
		store := &mockStore{}
		store.On("Get", mock.Anything, req.Key()).Return(shared, true, nil).Once()
		svc := &fakeService{}
		metrics := pricecheck.NewMetrics(nil)
		c := pricecheck.New(svc, testCatalog(t), pricecheck.WithStore(store), pricecheck.WithMetrics(metrics))

		est, err := c.CheckOne(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, shared, est)

		est, err = c.CheckOne(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, shared, est)

		assert.Zero(t, svc.calls.Load())
		assert.Equal(t, float64(1), outcome(metrics, pricecheck.OutcomeSharedHit))
		assert.Equal(t, float64(1), outcome(metrics, pricecheck.OutcomeHit))
		store.AssertExpectations(t)
	})

	t.Run("network results are written through", func(t *testing.T) {
		store := &mockStore{}
		store.On("Get", mock.Anything, req.Key()).Return(checkout.Estimation{}, false, nil)
		store.On("Set", mock.Anything, req.Key(), mock.AnythingOfType("checkout.Estimation")).Return(nil)
		svc := &fakeService{}
		c := pricecheck.New(svc, testCatalog(t), pricecheck.WithStore(store))

		est, err := c.CheckOne(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, int64(4788), est.Amount)
		store.AssertCalled(t, "Set", mock.Anything, req.Key(), est)
	})

	t.Run("store errors fall through to the service", func(t *testing.T) {
		store := &mockStore{}
		store.On("Get", mock.Anything, req.Key()).Return(checkout.Estimation{}, false, assert.AnError)
		store.On("Set", mock.Anything, req.Key(), mock.Anything).Return(assert.AnError)
		svc := &fakeService{}
		c := pricecheck.New(svc, testCatalog(t), pricecheck.WithStore(store))

		est, err := c.CheckOne(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, int64(4788), est.Amount)
		assert.Equal(t, int32(1), svc.calls.Load())
	})
}

func TestChecker_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)}
	svc := &fakeService{}
	c := pricecheck.New(svc, testCatalog(t),
		pricecheck.WithClock(clock.Now),
		pricecheck.WithCacheTTL(time.Minute),
	)
	req := request(plans.PlanIDs{"mail2022": 1}, plans.Yearly)

	_, err := c.CheckOne(context.Background(), req)
	require.NoError(t, err)
	_, ok := c.GetCached(req)
	require.True(t, ok)

	clock.Advance(2 * time.Minute)
	_, ok = c.GetCached(req)
	assert.False(t, ok)

	_, err = c.CheckOne(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(2), svc.calls.Load())

	c.Invalidate()
	_, ok = c.GetCached(req)
	assert.False(t, ok)
}

func TestNew_Panics(t *testing.T) {
	assert.Panics(t, func() { pricecheck.New(nil, testCatalog(t)) })
	assert.Panics(t, func() { pricecheck.New(&fakeService{}, nil) })
	assert.Panics(t, func() { pricecheck.WithCacheSize(0) })
	assert.Panics(t, func() { pricecheck.WithRequestTimeout(0) })
}

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := pricecheck.NewMetrics(reg)
	metrics.Requests.WithLabelValues(pricecheck.OutcomeHit).Inc()
	metrics.NetworkSeconds.Observe(0.1)

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Panics(t, func() { pricecheck.NewMetrics(reg) })
}
