package pricecheck

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
)

const (
	defaultCacheSize      = 256
	defaultCacheTTL       = 10 * time.Minute
	defaultRequestTimeout = 15 * time.Second
)

// Option configures a Checker.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	cacheSize int
	cacheTTL  time.Duration
	timeout   time.Duration
	store     Store
	rules     []checkout.EligibilityRule
	metrics   *Metrics
	now       func() time.Time
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCacheSize bounds the in-process cache. It panics on a non-positive size.
func WithCacheSize(n int) Option {
	if n <= 0 {
		panic("pricecheck: WithCacheSize: size must be > 0")
	}
	return func(o *options) { o.cacheSize = n }
}

// WithCacheTTL expires cached estimations. Zero keeps them until evicted.
func WithCacheTTL(d time.Duration) Option {
	if d < 0 {
		panic("pricecheck: WithCacheTTL: negative duration")
	}
	return func(o *options) { o.cacheTTL = d }
}

// WithRequestTimeout bounds each pricing service call. The call is detached
// from the caller's context, so this is the only deadline it gets.
func WithRequestTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("pricecheck: WithRequestTimeout: duration must be > 0")
	}
	return func(o *options) { o.timeout = d }
}

// WithStore adds a shared second-level cache.
func WithStore(s Store) Option {
	return func(o *options) { o.store = s }
}

// WithEligibilityRules adds rules that run after the built-in eligibility checks.
func WithEligibilityRules(rules ...checkout.EligibilityRule) Option {
	return func(o *options) {
		for _, r := range rules {
			if r != nil {
				o.rules = append(o.rules, r)
			}
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithClock replaces time.Now for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
