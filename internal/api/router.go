package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/checkoutkit/pkg/httpserver"
	"github.com/dmitrymomot/checkoutkit/pkg/logger"
	"github.com/dmitrymomot/checkoutkit/pkg/plans"
	"github.com/dmitrymomot/checkoutkit/pkg/pricecheck"
	"github.com/dmitrymomot/checkoutkit/pkg/ratelimiter"
	"github.com/dmitrymomot/checkoutkit/pkg/requestid"
)

// Catalog is the catalog view the API lists plans from.
type Catalog interface {
	plans.Catalog
	Entries(currency plans.Currency) []plans.PlanEntry
	Currencies() []plans.Currency
}

// Deps are the collaborators of the HTTP API. Catalog, Checker and Pricing
// are required.
type Deps struct {
	Catalog Catalog
	Checker *pricecheck.Checker
	// Pricing serves the /v1/check protocol routes.
	Pricing pricecheck.Service

	Logger   *slog.Logger
	Gatherer prometheus.Gatherer
	Metrics  *Metrics
	Ready    []httpserver.Check
	Now      func() time.Time
	// Limiter throttles the /v1 routes per client address. Nil disables it.
	Limiter  ratelimiter.Limiter
}

type handler struct {
	catalog Catalog
	checker *pricecheck.Checker
	pricing pricecheck.Service
	log     *slog.Logger
	now     func() time.Time
}

// NewRouter builds the checkoutd routes. Panics if a required dependency is
// missing.
func NewRouter(d Deps) http.Handler {
	if d.Catalog == nil || d.Checker == nil || d.Pricing == nil {
		panic("api: catalog, checker and pricing are required")
	}
	if d.Logger == nil {
		d.Logger = logger.Discard()
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	if d.Metrics == nil {
		d.Metrics = NewMetrics(nil)
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	h := &handler{
		catalog: d.Catalog,
		checker: d.Checker,
		pricing: d.Pricing,
		log:     d.Logger.With(logger.Component("api")),
		now:     d.Now,
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RealIP,
		requestid.Middleware,
		d.Metrics.Middleware,
		requestLogger(h.log),
		middleware.Recoverer,
	)

	r.Get("/healthz", httpserver.HealthCheckHandler(h.log))
	r.Get("/readyz", httpserver.HealthCheckHandler(h.log, d.Ready...))
	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(ratelimiter.Middleware(d.Limiter, ratelimiter.WithErrorResponder(h.rateLimited)))
		}
		r.Get("/plans", h.listPlans)
		r.Post("/estimate", h.estimate)
		r.Post("/check", h.check)
		r.Post("/check/batch", h.checkBatch)
	})

	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			level := slog.LevelDebug
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			log.Log(r.Context(), level, "request served",
				slog.String("method", r.Method),
				slog.String("route", routePattern(r)),
				slog.Int("status", ww.Status()),
				logger.Duration(time.Since(start)),
			)
		})
	}
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
