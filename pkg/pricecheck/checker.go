package pricecheck

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/checkoutkit/pkg/async"
	"github.com/dmitrymomot/checkoutkit/pkg/cache"
	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/logger"
	"github.com/dmitrymomot/checkoutkit/pkg/plans"
)

// maxParallelChecks bounds concurrent service calls when the service cannot batch.
const maxParallelChecks = 8

type estimationFuture = async.Future[checkout.Estimation]

// Checker prices configurations through a Service, with an in-process cache,
// an optional shared Store, and coalescing of identical in-flight requests.
// Configurations that are forbidden or priced locally never reach the
// service. Returned estimations share slices and pointers with the cache and
// must be treated as read-only.
type Checker struct {
	service Service
	catalog plans.Catalog
	opts    options
	cache   *cache.LRUCache[string, checkout.Estimation]
	groups  *async.Group
	log     *slog.Logger

	mu       sync.Mutex
	inflight map[string]*estimationFuture
}

type pendingCall struct {
	key     string
	req     Request
	future  *estimationFuture
	resolve func(checkout.Estimation, error)
}

// New returns a Checker. It panics when service or catalog is nil.
func New(service Service, catalog plans.Catalog, opts ...Option) *Checker {
	if service == nil {
		panic("pricecheck: New: nil service")
	}
	if catalog == nil {
		panic("pricecheck: New: nil catalog")
	}

	o := options{
		logger:    logger.Discard(),
		cacheSize: defaultCacheSize,
		cacheTTL:  defaultCacheTTL,
		timeout:   defaultRequestTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = NewMetrics(nil)
	}

	return &Checker{
		service:  service,
		catalog:  catalog,
		opts:     o,
		cache:    cache.NewLRUCache[string, checkout.Estimation](o.cacheSize, cache.WithTTL(o.cacheTTL), cache.WithClock(o.now)),
		groups:   async.NewGroup(),
		log:      o.logger.With(logger.Component("pricecheck")),
		inflight: make(map[string]*estimationFuture),
	}
}

// Check prices every request and returns the estimations positionally.
// A failed silent request leaves a nil slot; any other failure fails the call.
// Giving up on ctx does not cancel service calls other waiters depend on.
func (c *Checker) Check(ctx context.Context, reqs ...Request) ([]*checkout.Estimation, error) {
	futures := make([]*estimationFuture, len(reqs))
	var calls []*pendingCall

	for i, req := range reqs {
		f, call := c.lookup(ctx, req)
		if call != nil {
			calls = append(calls, call)
		}
		if req.Group != "" {
			c.groups.Add(string(req.Group), f)
		}
		futures[i] = f
	}
	c.start(ctx, calls)

	results := make([]*checkout.Estimation, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range futures {
		g.Go(func() error {
			est, err := f.AwaitContext(gctx)
			if err == nil {
				results[i] = &est
				return nil
			}
			if reqs[i].Silent && ctx.Err() == nil {
				if gctx.Err() == nil {
					c.log.WarnContext(ctx, "silent price check failed",
						logger.CheckKey(reqs[i].Key()),
						logger.Error(err),
					)
				}
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CheckOne prices a single request. Silent is ignored.
func (c *Checker) CheckOne(ctx context.Context, req Request) (checkout.Estimation, error) {
	req.Silent = false
	results, err := c.Check(ctx, req)
	if err != nil {
		return checkout.Estimation{}, err
	}
	return *results[0], nil
}

// GetCached returns the in-process cached estimation for req.
func (c *Checker) GetCached(req Request) (checkout.Estimation, bool) {
	return c.cache.Get(req.Key())
}

// IsGroupPending reports whether any request tagged with group is unresolved.
func (c *Checker) IsGroupPending(group GroupID) bool {
	return c.groups.IsPending(string(group))
}

func (c *Checker) NewGroupID() GroupID {
	return GroupID(uuid.NewString())
}

// Invalidate drops the in-process cache. In-flight requests and the shared
// store are left alone.
func (c *Checker) Invalidate() {
	c.cache.Clear()
}

// lookup resolves req without the network when possible. Otherwise it
// returns the in-flight future for the same key, or registers a new one and
// the call that will complete it.
func (c *Checker) lookup(ctx context.Context, req Request) (*estimationFuture, *pendingCall) {
	if err := req.Config.Validate(); err != nil {
		return async.Resolved(checkout.Estimation{}, errors.Join(ErrInvalidRequest, err)), nil
	}

	current := req.current()
	switch verdict := checkout.Classify(req.Config, current, c.catalog, c.opts.rules...); verdict {
	case checkout.EligibleForbidden, checkout.EligibleLocal:
		outcome := OutcomeLocal
		if verdict == checkout.EligibleForbidden {
			outcome = OutcomeForbidden
		}
		c.served(ctx, req.Key(), outcome)
		est := checkout.NewOptimisticEstimation(req.Config, current, c.catalog, checkout.OptimisticOptions{
			IsTrial: req.Trial,
			Reason:  verdict.OptimisticReason(),
		})
		return async.Resolved(est, nil), nil
	}

	key := req.Key()
	if est, ok := c.cache.Get(key); ok {
		c.served(ctx, key, OutcomeHit)
		return async.Resolved(est, nil), nil
	}
	if est, ok := c.fromStore(ctx, key); ok {
		c.cache.Put(key, est)
		c.served(ctx, key, OutcomeSharedHit)
		return async.Resolved(est, nil), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.inflight[key]; ok {
		c.served(ctx, key, OutcomeCoalesced)
		return f, nil
	}
	if est, ok := c.cache.Get(key); ok {
		c.served(ctx, key, OutcomeHit)
		return async.Resolved(est, nil), nil
	}

	f, resolve := async.NewPromise[checkout.Estimation]()
	c.inflight[key] = f
	return f, &pendingCall{key: key, req: req, future: f, resolve: resolve}
}

func (c *Checker) fromStore(ctx context.Context, key string) (checkout.Estimation, bool) {
	if c.opts.store == nil {
		return checkout.Estimation{}, false
	}
	est, ok, err := c.opts.store.Get(ctx, key)
	if err != nil {
		c.log.WarnContext(ctx, "estimation store read failed", logger.CheckKey(key), logger.Error(err))
		return checkout.Estimation{}, false
	}
	return est, ok
}

// start runs calls on a context detached from the caller, so one waiter
// giving up does not fail the others.
func (c *Checker) start(ctx context.Context, calls []*pendingCall) {
	if len(calls) == 0 {
		return
	}
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.timeout)

	if multi, ok := c.service.(MultiChecker); ok && len(calls) > 1 {
		go func() {
			defer cancel()
			c.runBatch(callCtx, multi, calls)
		}()
		return
	}

	go func() {
		defer cancel()
		var g errgroup.Group
		g.SetLimit(maxParallelChecks)
		for _, call := range calls {
			g.Go(func() error {
				start := time.Now()
				est, err := c.service.CheckSubscription(callCtx, call.req)
				c.opts.metrics.NetworkSeconds.Observe(time.Since(start).Seconds())
				c.finish(callCtx, call, est, err)
				return nil
			})
		}
		_ = g.Wait()
	}()
}

func (c *Checker) runBatch(ctx context.Context, multi MultiChecker, calls []*pendingCall) {
	reqs := make([]Request, len(calls))
	for i, call := range calls {
		reqs[i] = call.req
	}

	start := time.Now()
	results, err := multi.MultiCheck(ctx, reqs)
	c.opts.metrics.NetworkSeconds.Observe(time.Since(start).Seconds())
	if err == nil && len(results) != len(calls) {
		err = ErrBatchMismatch
	}

	for i, call := range calls {
		if err != nil {
			c.finish(ctx, call, checkout.Estimation{}, err)
			continue
		}
		c.finish(ctx, call, results[i], nil)
	}
}

// finish caches a successful result, retires the in-flight entry and wakes
// the waiters, in that order, so a new request never misses both.
func (c *Checker) finish(ctx context.Context, call *pendingCall, est checkout.Estimation, err error) {
	if err != nil {
		c.opts.metrics.observe(OutcomeError)
		c.log.DebugContext(ctx, "price check failed", logger.CheckKey(call.key), logger.Error(err))
	} else {
		c.served(ctx, call.key, OutcomeNetwork)
		c.cache.Put(call.key, est)
		if c.opts.store != nil {
			if serr := c.opts.store.Set(ctx, call.key, est); serr != nil {
				c.log.WarnContext(ctx, "estimation store write failed", logger.CheckKey(call.key), logger.Error(serr))
			}
		}
	}

	c.mu.Lock()
	if c.inflight[call.key] == call.future {
		delete(c.inflight, call.key)
	}
	c.mu.Unlock()

	call.resolve(est, err)
}

func (c *Checker) served(ctx context.Context, key, outcome string) {
	c.opts.metrics.observe(outcome)
	c.log.DebugContext(ctx, "price check served", logger.CheckKey(key), logger.Outcome(outcome))
}
