// Package config loads typed configuration from environment variables.
//
// Load parses a struct through github.com/caarlos0/env/v11 tags after
// reading dotenv files with github.com/joho/godotenv. Process variables
// always win over dotenv values.
//
//	type Config struct {
//		Env   string       `env:"ENV" envDefault:"development"`
//		Redis redis.Config `envPrefix:""`
//	}
//
//	cfg := config.MustLoad[Config](config.WithPrefix("CHECKOUT_"), config.WithEnvFiles(".env", ".env.local"))
//
// WithEnvironment parses a fixed map instead of the process environment,
// which keeps tests independent of the host.
package config
