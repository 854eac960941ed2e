package redis

import "time"

// Config holds the connection and estimation cache settings.
// An empty ConnectionURL disables the shared cache.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                                      // e.g. "redis://:password@localhost:6379/0"
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`            // connection attempts before giving up
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`           // pause between attempts
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`         // overall deadline for Connect
	KeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"checkoutkit:est:"` // namespace for estimation keys
	EstimationTTL  time.Duration `env:"REDIS_ESTIMATION_TTL" envDefault:"10m"`          // lifetime of a cached estimation
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool {
	return c.ConnectionURL != ""
}
