package pricecheck_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/plans"
	"github.com/dmitrymomot/checkoutkit/pkg/pricecheck"
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
		plans.PlanEntry{
			Name: "mailpro2022", Title: "Mail Essentials", Type: plans.TypePlan, Currency: "EUR",
			Pricing:          map[plans.Cycle]int64{plans.Monthly: 799, plans.Yearly: 8388},
			PerMemberPricing: map[plans.Cycle]int64{plans.Monthly: 799, plans.Yearly: 8388},
			Limits:           plans.Limits{MaxMembers: 1},
		},
		plans.PlanEntry{
			Name: "1domain-mailpro2022", Title: "Extra domain", Type: plans.TypeAddon, Currency: "EUR",
			Pricing:          map[plans.Cycle]int64{plans.Monthly: 150, plans.Yearly: 1680},
			Limits:           plans.Limits{MaxDomains: 1},
			AddonFor:         []string{"mailpro2022"},
			MaxAddonQuantity: 10,
		},
	)
	require.NoError(t, err)
	return catalog
}

func request(ids plans.PlanIDs, cycle plans.Cycle) pricecheck.Request {
	return pricecheck.Request{
		Config: checkout.SelectedConfiguration{PlanIDs: ids, Cycle: cycle, Currency: "EUR"},
	}
}

// fakeService prices every request at the catalog-independent amount 4788.
// With release set, calls block until it is closed.
type fakeService struct {
	calls   atomic.Int32
	started chan pricecheck.Request
	release chan struct{}
	err     error
}

func newBlockingService() *fakeService {
	return &fakeService{
		started: make(chan pricecheck.Request, 16),
		release: make(chan struct{}),
	}
}

func (s *fakeService) CheckSubscription(ctx context.Context, req pricecheck.Request) (checkout.Estimation, error) {
	s.calls.Add(1)
	if s.started != nil {
		s.started <- req
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return checkout.Estimation{}, ctx.Err()
		}
	}
	if s.err != nil {
		return checkout.Estimation{}, s.err
	}
	return checkout.Estimation{
		Amount:    4788,
		AmountDue: 4788,
		Cycle:     req.Config.Cycle,
		Currency:  req.Config.Currency,
	}, nil
}

// batchService also implements pricecheck.MultiChecker.
type batchService struct {
	fakeService
	batches atomic.Int32
	sizes   []int
	mu      sync.Mutex
}

func (s *batchService) MultiCheck(ctx context.Context, reqs []pricecheck.Request) ([]checkout.Estimation, error) {
	s.batches.Add(1)
	s.mu.Lock()
	s.sizes = append(s.sizes, len(reqs))
	s.mu.Unlock()

	out := make([]checkout.Estimation, len(reqs))
	for i, req := range reqs {
		out[i] = checkout.Estimation{Amount: int64(100 * (i + 1)), Cycle: req.Config.Cycle, Currency: req.Config.Currency}
	}
	return out, nil
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) (checkout.Estimation, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(checkout.Estimation), args.Bool(1), args.Error(2)
}

func (m *mockStore) Set(ctx context.Context, key string, est checkout.Estimation) error {
	args := m.Called(ctx, key, est)
	return args.Error(0)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type staticProvider struct {
	current checkout.CurrentSubscription
}

func (p staticProvider) Current(context.Context) (checkout.CurrentSubscription, error) {
	return p.current, nil
}

// countingService counts calls to a wrapped service.
type countingService struct {
	pricecheck.Service
	calls atomic.Int32
}

func (s *countingService) CheckSubscription(ctx context.Context, req pricecheck.Request) (checkout.Estimation, error) {
	s.calls.Add(1)
	return s.Service.CheckSubscription(ctx, req)
}
