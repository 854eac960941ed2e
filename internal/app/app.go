package app

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/checkoutkit/internal/api"
	"github.com/dmitrymomot/checkoutkit/pkg/httpserver"
	"github.com/dmitrymomot/checkoutkit/pkg/logger"
	"github.com/dmitrymomot/checkoutkit/pkg/plans"
	"github.com/dmitrymomot/checkoutkit/pkg/pricecheck"
	"github.com/dmitrymomot/checkoutkit/pkg/ratelimiter"
	"github.com/dmitrymomot/checkoutkit/pkg/redis"
	"github.com/dmitrymomot/checkoutkit/pkg/requestid"
)

// App owns the long-lived checkoutd dependencies.
type App struct {
	cfg      Config
	log      *slog.Logger
	catalog  *plans.MemoryCatalog
	local    *pricecheck.LocalService
	service  pricecheck.Service
	checker  *pricecheck.Checker
	registry *prometheus.Registry
	redis    *goredis.Client
	store    *redis.EstimationStore
	limits   *ratelimiter.MemoryStore
	limiter  *ratelimiter.Bucket
}

// NewLogger builds the process logger from cfg. Records logged with a request
// context carry its request ID.
func NewLogger(cfg Config) (*slog.Logger, error) {
	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, cfg.ServiceName),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if cfg.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return nil, errors.Join(ErrInvalidLevel, err)
		}
		opts = append(opts, logger.WithLevel(level))
	}
	return logger.New(opts...), nil
}

// New loads the catalog, connects Redis when configured, and builds the
// pricing stack.
func New(ctx context.Context, cfg Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = logger.Discard()
	}

	catalog, err := plans.LoadYAML(ctx, cfg.CatalogPath)
	if err != nil {
		return nil, errors.Join(ErrLoadCatalog, err)
	}

	a := &App{
		cfg:      cfg,
		log:      log,
		catalog:  catalog,
		local:    pricecheck.NewLocalService(catalog, localOptions(cfg)...),
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.service = a.local
	if cfg.PricingURL != "" {
		a.service = pricecheck.NewHTTPService(cfg.PricingURL, httpOptions(cfg)...)
	}

	checkerOpts := []pricecheck.Option{
		pricecheck.WithLogger(log),
		pricecheck.WithMetrics(pricecheck.NewMetrics(a.registry)),
	}
	if cfg.CacheSize > 0 {
		checkerOpts = append(checkerOpts, pricecheck.WithCacheSize(cfg.CacheSize))
	}
	if cfg.CacheTTL > 0 {
		checkerOpts = append(checkerOpts, pricecheck.WithCacheTTL(cfg.CacheTTL))
	}
	if cfg.RequestTimeout > 0 {
		checkerOpts = append(checkerOpts, pricecheck.WithRequestTimeout(cfg.RequestTimeout))
	}

	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, errors.Join(ErrConnectRedis, err)
		}
		a.redis = client
		a.store = redis.NewEstimationStoreFromConfig(client, cfg.Redis)
		checkerOpts = append(checkerOpts, pricecheck.WithStore(a.store))
		log.InfoContext(ctx, "shared estimation cache enabled")
	}

	a.checker = pricecheck.New(a.service, catalog, checkerOpts...)

	if cfg.RateLimit.Enabled() {
		a.limits = ratelimiter.NewMemoryStore()
		a.limiter, err = ratelimiter.NewBucket(a.limits, cfg.RateLimit)
		if err != nil {
			_ = a.Close()
			return nil, errors.Join(ErrRateLimit, err)
		}
	}

	log.InfoContext(ctx, "checkout service ready",
		slog.Int("currencies", len(catalog.Currencies())),
		slog.Bool("remote_pricing", cfg.PricingURL != ""),
	)
	return a, nil
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	var ready []httpserver.Check
	if a.store != nil {
		ready = append(ready, httpserver.Check{Name: "redis", Fn: a.store.Ping})
	}
	return api.NewRouter(api.Deps{
		Catalog:  a.catalog,
		Checker:  a.checker,
		Pricing:  a.local,
		Logger:   a.log,
		Gatherer: a.registry,
		Metrics:  api.NewMetrics(a.registry),
		Ready:    ready,
		Limiter:  a.limiterOrNil(),
	})
}

// limiterOrNil keeps a nil *Bucket from becoming a non-nil interface.
func (a *App) limiterOrNil() ratelimiter.Limiter {
	if a.limiter == nil {
		return nil
	}
	return a.limiter
}

// Run serves the API until ctx is done.
func (a *App) Run(ctx context.Context) error {
	srv := httpserver.NewFromConfig(a.cfg.HTTP, httpserver.WithLogger(a.log))
	return srv.Run(ctx, a.Handler())
}

// Close stops the rate limit sweep and releases the Redis connection.
func (a *App) Close() error {
	if a.limits != nil {
		a.limits.Close()
	}
	if a.redis == nil {
		return nil
	}
	return a.redis.Close()
}

func localOptions(cfg Config) []pricecheck.LocalOption {
	opts := []pricecheck.LocalOption{}
	if cfg.TrialDays > 0 {
		opts = append(opts, pricecheck.WithTrialDays(cfg.TrialDays))
	}

	coupons := make([]pricecheck.LocalCoupon, 0, len(cfg.Coupons))
	for _, code := range slices.Sorted(maps.Keys(cfg.Coupons)) {
		coupons = append(coupons, pricecheck.LocalCoupon{Code: code, Percent: cfg.Coupons[code]})
	}
	if len(coupons) > 0 {
		opts = append(opts, pricecheck.WithCoupons(coupons...))
	}

	for _, code := range slices.Sorted(maps.Keys(cfg.GiftCodes)) {
		opts = append(opts, pricecheck.WithGiftCode(code, cfg.GiftCodes[code]))
	}

	rules := make([]pricecheck.TaxRule, 0, len(cfg.TaxRates))
	for _, country := range slices.Sorted(maps.Keys(cfg.TaxRates)) {
		rules = append(rules, pricecheck.TaxRule{
			Country:   country,
			Taxes:     []pricecheck.TaxRate{{Name: cfg.TaxName, Rate: cfg.TaxRates[country]}},
			Inclusive: cfg.TaxInclusive,
		})
	}
	if len(rules) > 0 {
		opts = append(opts, pricecheck.WithTaxRules(rules...))
	}
	return opts
}

func httpOptions(cfg Config) []pricecheck.HTTPOption {
	client := &http.Client{
		Timeout:   cfg.PricingTimeout,
		Transport: requestid.Transport{},
	}
	opts := []pricecheck.HTTPOption{pricecheck.WithHTTPClient(client)}
	if cfg.PricingToken != "" {
		opts = append(opts, pricecheck.WithHeader("Authorization", "Bearer "+cfg.PricingToken))
	}
	return opts
}
