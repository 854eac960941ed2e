package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Option configures Load.
type Option func(*options)

type options struct {
	prefix      string
	files       []string
	environment map[string]string
}

// WithPrefix prepends prefix to every variable name, e.g. "CHECKOUT_".
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithEnvFiles loads the given dotenv files before parsing. Missing files are
// skipped and variables already set in the process win. Without this option
// Load reads ".env" from the working directory.
func WithEnvFiles(paths ...string) Option {
	return func(o *options) { o.files = append(o.files, paths...) }
}

// WithEnvironment parses vars instead of the process environment. Dotenv
// files are not read.
func WithEnvironment(vars map[string]string) Option {
	return func(o *options) { o.environment = vars }
}

// Load parses environment variables into a new T using its env tags.
//
//	type Config struct {
//		Addr     string        `env:"HTTP_ADDR" envDefault:":8080"`
//		Catalog  string        `env:"CATALOG_PATH,required"`
//		Debounce time.Duration `env:"ADDRESS_DEBOUNCE" envDefault:"500ms"`
//	}
//
//	cfg, err := config.Load[Config](config.WithPrefix("CHECKOUT_"))
func Load[T any](opts ...Option) (T, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.environment == nil {
		files := o.files
		if len(files) == 0 {
			files = []string{".env"}
		}
		if err := loadEnvFiles(files...); err != nil {
			var zero T
			return zero, err
		}
	}

	cfg, err := env.ParseAsWithOptions[T](env.Options{
		Prefix:      o.prefix,
		Environment: o.environment,
	})
	if err != nil {
		var zero T
		return zero, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad works like Load but panics on failure. Use it in main.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return cfg
}

func loadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Join(ErrEnvFile, fmt.Errorf("%s: %w", path, err))
		}
	}
	return nil
}
