package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
)

const (
	defaultKeyPrefix = "checkoutkit:est:"
	defaultTTL       = 10 * time.Minute
)

// EstimationStore keeps estimations as JSON strings so several processes
// share price check results. It satisfies pricecheck.Store.
type EstimationStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// StoreOption configures an EstimationStore.
type StoreOption func(*EstimationStore)

func WithKeyPrefix(prefix string) StoreOption {
	return func(s *EstimationStore) { s.prefix = prefix }
}

// WithTTL sets the key expiry. Zero stores keys without expiry.
func WithTTL(d time.Duration) StoreOption {
	if d < 0 {
		panic("redis: WithTTL: negative duration")
	}
	return func(s *EstimationStore) { s.ttl = d }
}

// NewEstimationStore wraps client. It panics on a nil client.
func NewEstimationStore(client redis.UniversalClient, opts ...StoreOption) *EstimationStore {
	if client == nil {
		panic("redis: NewEstimationStore: nil client")
	}
	s := &EstimationStore{client: client, prefix: defaultKeyPrefix, ttl: defaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewEstimationStoreFromConfig applies the prefix and TTL from cfg.
func NewEstimationStoreFromConfig(client redis.UniversalClient, cfg Config) *EstimationStore {
	opts := make([]StoreOption, 0, 2)
	if cfg.KeyPrefix != "" {
		opts = append(opts, WithKeyPrefix(cfg.KeyPrefix))
	}
	if cfg.EstimationTTL > 0 {
		opts = append(opts, WithTTL(cfg.EstimationTTL))
	}
	return NewEstimationStore(client, opts...)
}

// Get returns ok=false without an error when key is missing.
func (s *EstimationStore) Get(ctx context.Context, key string) (checkout.Estimation, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return checkout.Estimation{}, false, nil
	}
	if err != nil {
		return checkout.Estimation{}, false, errors.Join(ErrStoreRead, err)
	}

	var est checkout.Estimation
	if err := json.Unmarshal(raw, &est); err != nil {
		return checkout.Estimation{}, false, errors.Join(ErrStoreDecode, err)
	}
	return est, true, nil
}

func (s *EstimationStore) Set(ctx context.Context, key string, est checkout.Estimation) error {
	raw, err := json.Marshal(est)
	if err != nil {
		return errors.Join(ErrStoreWrite, err)
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, s.ttl).Err(); err != nil {
		return errors.Join(ErrStoreWrite, err)
	}
	return nil
}

// Ping reports whether the server behind the store answers. It serves as
// the readiness check of the estimation cache.
func (s *EstimationStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes key. A missing key is not an error.
func (s *EstimationStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Join(ErrStoreWrite, err)
	}
	return nil
}
