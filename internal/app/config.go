package app

import (
	"time"

	"github.com/dmitrymomot/checkoutkit/pkg/httpserver"
	"github.com/dmitrymomot/checkoutkit/pkg/ratelimiter"
	"github.com/dmitrymomot/checkoutkit/pkg/redis"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "CHECKOUT_"

// Config is the checkoutd configuration, read from CHECKOUT_* variables.
type Config struct {
	Env         string `env:"ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"checkoutd"`
	LogLevel    string `env:"LOG_LEVEL"`

	CatalogPath string `env:"CATALOG_PATH,required"`

	// PricingURL points at a remote pricing backend. Empty prices locally
	// from the catalog.
	PricingURL     string        `env:"PRICING_URL"`
	PricingToken   string        `env:"PRICING_TOKEN"`
	PricingTimeout time.Duration `env:"PRICING_TIMEOUT" envDefault:"8s"`

	CacheSize      int           `env:"CACHE_SIZE" envDefault:"256"`
	CacheTTL       time.Duration `env:"CACHE_TTL" envDefault:"10m"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`

	// Local pricing rules. Maps are written as KEY:VALUE pairs separated by
	// commas, e.g. CHECKOUT_COUPONS=SPRING:20,WELCOME:10.
	TrialDays    int                `env:"TRIAL_DAYS" envDefault:"14"`
	Coupons      map[string]int     `env:"COUPONS"`
	GiftCodes    map[string]int64   `env:"GIFT_CODES"`
	TaxRates     map[string]float64 `env:"TAX_RATES"`
	TaxName      string             `env:"TAX_NAME" envDefault:"VAT"`
	TaxInclusive bool               `env:"TAX_INCLUSIVE"`

	HTTP      httpserver.Config
	Redis     redis.Config
	RateLimit ratelimiter.Config
}
