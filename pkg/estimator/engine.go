package estimator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/checkoutkit/pkg/broadcast"
	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/logger"
	"github.com/dmitrymomot/checkoutkit/pkg/plans"
	"github.com/dmitrymomot/checkoutkit/pkg/pricecheck"
)

// Engine drives one checkout session. It prices the selected configuration,
// derives the breakdown and line items, and publishes each result as a State.
// Only the most recent selection may update the state.
//
// All methods are safe for concurrent use.
type Engine struct {
	catalog plans.Catalog
	checker Checker
	source  SubscriptionSource
	opts    options
	bus     *broadcast.MemoryBroadcaster[State]

	state       atomic.Pointer[State]
	requestID   atomic.Uint64
	prefetching atomic.Int32

	mu            sync.Mutex
	baseCtx       context.Context
	current       checkout.CurrentSubscription
	selected      checkout.SelectedConfiguration
	cancelCheck   context.CancelFunc
	pendingAddr   *checkout.BillingAddress
	addrTimer     *time.Timer
	addrGen       uint64
	prefetchGroup pricecheck.GroupID
	seq           uint64
	closed        bool
}

// New creates an Engine. A nil source means the customer is on the free plan.
// Panics if catalog or checker is nil.
func New(catalog plans.Catalog, checker Checker, source SubscriptionSource, opts ...Option) *Engine {
	if catalog == nil {
		panic("estimator: catalog is required")
	}
	if checker == nil {
		panic("estimator: checker is required")
	}
	if source == nil {
		source = StaticSource{}
	}

	o := options{
		logger:   logger.Discard(),
		debounce: DefaultAddressDebounce,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With(logger.Component("estimator"))

	e := &Engine{
		catalog: catalog,
		checker: checker,
		source:  source,
		opts:    o,
		bus:     broadcast.NewMemoryBroadcaster[State](1),
		baseCtx: context.Background(),
		current: checkout.FreeSubscription{},
	}
	e.state.Store(&State{Current: e.current, ZipCodeValid: true})
	return e
}

// Init loads the current subscription. Debounced work started later runs on
// a context derived from ctx that is never cancelled.
func (e *Engine) Init(ctx context.Context) error {
	current, err := e.source.Current(ctx)
	if err != nil {
		return errors.Join(ErrLoadSubscription, err)
	}
	if current == nil {
		current = checkout.FreeSubscription{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.baseCtx = context.WithoutCancel(ctx)
	e.current = current
	e.publishLocked(func(s *State) {
		s.Current = current
	})
	return nil
}

// State returns the latest snapshot.
func (e *Engine) State() State {
	return *e.state.Load()
}

// Selected returns the configuration the customer is editing, including a
// billing address that is still being debounced.
func (e *Engine) Selected() checkout.SelectedConfiguration {
	e.mu.Lock()
	defer e.mu.Unlock()
	cfg := e.selected.Clone()
	if e.pendingAddr != nil {
		cfg.BillingAddress = *e.pendingAddr
	}
	return cfg
}

// Subscribe streams state snapshots, starting with the latest one. Slow
// subscribers only see the newest state.
func (e *Engine) Subscribe(ctx context.Context) broadcast.Subscriber[State] {
	return e.bus.Subscribe(ctx)
}

// SelectNewPlan prices cfg and publishes the result. It aborts the previous
// selection's check, even when cfg itself is invalid; a selection overtaken
// by a newer one returns ErrSuperseded and leaves the state alone.
//
// A rejected zip code is not an error: the previous estimation stays and the
// state reports ZipCodeValid false.
func (e *Engine) SelectNewPlan(ctx context.Context, cfg checkout.SelectedConfiguration) (State, error) {
	cfg = cfg.Clone()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return State{}, ErrClosed
	}
	if e.pendingAddr != nil {
		if cfg.BillingAddress == e.selected.BillingAddress {
			cfg.BillingAddress = *e.pendingAddr
		}
		e.stopAddressTimerLocked()
		e.pendingAddr = nil
	}

	// Any new selection, valid or not, supersedes the running check.
	if e.cancelCheck != nil {
		e.cancelCheck()
		e.cancelCheck = nil
	}
	id := e.requestID.Add(1)

	if err := cfg.Validate(); err != nil {
		st := e.publishLocked(func(s *State) {
			s.Loading = false
			s.RequestID = id
			s.Err = err
		})
		e.mu.Unlock()
		return st, err
	}

	e.selected = cfg
	checkCtx, cancel := context.WithCancel(ctx)
	e.cancelCheck = cancel
	current := e.current
	e.publishLocked(func(s *State) {
		s.Loading = true
		s.RequestID = id
	})
	e.mu.Unlock()

	est, err := e.checker.CheckOne(checkCtx, pricecheck.Request{
		Config:  cfg,
		Current: current,
		Trial:   e.opts.trial && checkout.IsFree(current),
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	defer cancel()

	if id != e.requestID.Load() || e.closed {
		return *e.state.Load(), ErrSuperseded
	}
	e.cancelCheck = nil

	switch {
	case err == nil:
		return e.publishLocked(func(s *State) {
			e.apply(s, cfg, current, est)
		}), nil

	case errors.Is(err, pricecheck.ErrInvalidZipCode):
		e.opts.logger.DebugContext(ctx, "billing zip code rejected",
			logger.Currency(string(cfg.Currency)),
		)
		return e.publishLocked(func(s *State) {
			s.Loading = false
			s.ZipCodeValid = false
			s.Err = nil
		}), nil

	case ctx.Err() != nil:
		return e.publishLocked(func(s *State) {
			s.Loading = false
		}), ctx.Err()

	default:
		e.opts.logger.WarnContext(ctx, "price check failed",
			logger.Plan(cfg.PlanIDs.Key()),
			logger.Cycle(int(cfg.Cycle)),
			logger.Error(err),
		)
		return e.publishLocked(func(s *State) {
			s.Loading = false
			s.Err = err
		}), err
	}
}

// SetBillingAddress re-prices the current selection with addr once the
// address stops changing for the debounce interval. A SelectNewPlan call in
// between flushes the pending address into that selection.
func (e *Engine) SetBillingAddress(addr checkout.BillingAddress) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	e.stopAddressTimerLocked()
	e.pendingAddr = &addr
	e.addrGen++
	gen := e.addrGen
	e.addrTimer = time.AfterFunc(e.opts.debounce, func() {
		e.flushAddress(gen)
	})
}

func (e *Engine) flushAddress(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.addrGen || e.pendingAddr == nil {
		e.mu.Unlock()
		return
	}
	e.addrTimer = nil
	if !e.selected.Cycle.Valid() {
		// Nothing priced yet; the address rides along with the first selection.
		e.mu.Unlock()
		return
	}
	addr := *e.pendingAddr
	e.pendingAddr = nil
	cfg := e.selected.WithBillingAddress(addr)
	ctx := e.baseCtx
	e.mu.Unlock()

	if _, err := e.SelectNewPlan(ctx, cfg); err != nil && !errors.Is(err, ErrSuperseded) && !errors.Is(err, ErrClosed) {
		e.opts.logger.WarnContext(ctx, "billing address update failed", logger.Error(err))
	}
}

// stopAddressTimerLocked cancels the debounce timer and invalidates a timer
// callback that already fired. The pending address is kept.
func (e *Engine) stopAddressTimerLocked() {
	if e.addrTimer != nil {
		e.addrTimer.Stop()
		e.addrTimer = nil
	}
	e.addrGen++
}

// PrefetchCycles warms the cache for the selection priced at other cycles.
// The requests run in the background as one group; IsPrefetching reports
// whether it is still running.
func (e *Engine) PrefetchCycles(ctx context.Context, cycles ...plans.Cycle) pricecheck.GroupID {
	e.mu.Lock()
	base := e.selected.Clone()
	current := e.current
	group := e.checker.NewGroupID()
	e.prefetchGroup = group
	e.mu.Unlock()

	if base.PlanIDs.IsEmpty() || !base.Cycle.Valid() {
		return group
	}

	reqs := make([]pricecheck.Request, 0, len(cycles))
	for _, cycle := range cycles {
		if cycle == base.Cycle || !cycle.Valid() {
			continue
		}
		reqs = append(reqs, pricecheck.Request{
			Config:  base.WithCycle(cycle),
			Current: current,
			Trial:   e.opts.trial && checkout.IsFree(current),
			Silent:  true,
			Group:   group,
		})
	}
	if len(reqs) == 0 {
		return group
	}

	e.prefetching.Add(1)
	go func() {
		defer e.prefetching.Add(-1)
		if _, err := e.checker.Check(ctx, reqs...); err != nil {
			e.opts.logger.DebugContext(ctx, "cycle prefetch stopped", logger.Error(err))
		}
	}()
	return group
}

// IsPrefetching reports whether the latest prefetch group is still running.
func (e *Engine) IsPrefetching() bool {
	if e.prefetching.Load() > 0 {
		return true
	}
	e.mu.Lock()
	group := e.prefetchGroup
	e.mu.Unlock()
	return group != "" && e.checker.IsGroupPending(group)
}

// Close aborts the running check and pending address update, and closes all
// subscriptions.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	if e.cancelCheck != nil {
		e.cancelCheck()
		e.cancelCheck = nil
	}
	e.stopAddressTimerLocked()
	e.pendingAddr = nil
	e.mu.Unlock()

	return e.bus.Close()
}

// apply derives everything shown to the customer from a fresh estimation.
func (e *Engine) apply(s *State, cfg checkout.SelectedConfiguration, current checkout.CurrentSubscription, est checkout.Estimation) {
	mod := checkout.ModifiersFor(est)
	breakdown := checkout.Aggregate(cfg, est, e.catalog, checkout.AggregateOptions{
		IsTrial: est.SubscriptionMode == checkout.ModeTrial,
	})

	s.Config = cfg
	s.Current = current
	s.Mode = est.SubscriptionMode
	s.Modifiers = mod
	s.Estimation = est
	s.Breakdown = breakdown
	s.LineItems = checkout.Compose(checkout.ComposeInput{
		Breakdown:        breakdown,
		Estimation:       est,
		Modifiers:        mod,
		Coupon:           e.couponConfig(cfg),
		Current:          current,
		PaymentForbidden: e.opts.paymentForbidden,
		Now:              e.opts.now(),
	})
	s.Loading = false
	s.ZipCodeValid = true
	s.Err = nil
	s.CouponErr = nil
	if !est.Optimistic {
		s.CouponErr = checkout.ValidateCoupon(cfg.Coupon, est)
	}
}

func (e *Engine) couponConfig(cfg checkout.SelectedConfiguration) *checkout.CouponConfig {
	c := e.opts.coupon
	if c == nil || cfg.Coupon == "" {
		return nil
	}
	if checkout.NormalizeCoupon(c.Code) != checkout.NormalizeCoupon(cfg.Coupon) {
		return nil
	}
	return c
}

// publishLocked copies the latest state, applies mutate, and publishes the
// result. e.mu must be held.
func (e *Engine) publishLocked(mutate func(*State)) State {
	next := *e.state.Load()
	mutate(&next)
	e.seq++
	next.Seq = e.seq
	next.UpdatedAt = e.opts.now()
	e.state.Store(&next)

	if err := e.bus.Broadcast(context.Background(), next); err != nil && !errors.Is(err, broadcast.ErrClosed) {
		e.opts.logger.Warn("state broadcast failed", logger.Error(err))
	}
	return next
}
