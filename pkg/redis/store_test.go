package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/checkoutkit/pkg/checkout"
	"github.com/dmitrymomot/checkoutkit/pkg/plans"
	"github.com/dmitrymomot/checkoutkit/pkg/redis"
)

// unreachableClient points at a port nothing listens on.
func unreachableClient(t *testing.T) *goredis.Client {
	t.Helper()
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestEstimationStore_Unreachable(t *testing.T) {
	store := redis.NewEstimationStore(unreachableClient(t))
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "k")
	assert.False(t, ok)
	assert.ErrorIs(t, err, redis.ErrStoreRead)

	assert.ErrorIs(t, store.Set(ctx, "k", checkout.Estimation{}), redis.ErrStoreWrite)
	assert.ErrorIs(t, store.Delete(ctx, "k"), redis.ErrStoreWrite)
	assert.ErrorIs(t, store.Ping(ctx), redis.ErrStoreUnavailable)
}

func TestEstimationStore_Panics(t *testing.T) {
	assert.Panics(t, func() { redis.NewEstimationStore(nil) })
	assert.Panics(t, func() { redis.WithTTL(-time.Second) })
}

func TestConnect_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := redis.Connect(ctx, redis.Config{})
	assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)

	_, err = redis.Connect(ctx, redis.Config{ConnectionURL: "http://nope", ConnectTimeout: time.Second})
	assert.ErrorIs(t, err, redis.ErrInvalidConnectionURL)

	_, err = redis.Connect(ctx, redis.Config{
		ConnectionURL:  "redis://127.0.0.1:1/0",
		RetryAttempts:  2,
		RetryInterval:  10 * time.Millisecond,
		ConnectTimeout: 2 * time.Second,
	})
	assert.ErrorIs(t, err, redis.ErrNotReady)

	assert.False(t, redis.Config{}.Enabled())
	assert.True(t, redis.Config{ConnectionURL: "redis://localhost:6379/0"}.Enabled())
}

// TestEstimationStore_Live runs against the server in REDIS_URL.
func TestEstimationStore_Live(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()

	client, err := redis.Connect(ctx, redis.Config{ConnectionURL: url, RetryAttempts: 1, ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	prefix := "checkoutkit:test:" + t.Name() + ":"
	store := redis.NewEstimationStoreFromConfig(client, redis.Config{KeyPrefix: prefix, EstimationTTL: time.Minute})
	require.NoError(t, store.Ping(ctx))

	renew := plans.Yearly
	want := checkout.Estimation{
		Amount:           19176,
		AmountDue:        19176,
		Cycle:            plans.TwoYears,
		Currency:         "EUR",
		SubscriptionMode: checkout.ModeScheduledChargedImmediately,
		RenewCycle:       &renew,
		PeriodEnd:        time.Date(2028, time.December, 1, 0, 0, 0, 0, time.UTC),
		Taxes:            []checkout.Tax{{Name: "VAT", Rate: 8.1, Amount: 1553}},
	}

	_, ok, err := store.Get(ctx, "bundle")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "bundle", want))
	got, ok, err := store.Get(ctx, "bundle")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	ttl, err := client.TTL(ctx, prefix+"bundle").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, client.Set(ctx, prefix+"broken", "{", time.Minute).Err())
	_, _, err = store.Get(ctx, "broken")
	assert.ErrorIs(t, err, redis.ErrStoreDecode)

	require.NoError(t, store.Delete(ctx, "bundle"))
	require.NoError(t, store.Delete(ctx, "broken"))
	_, ok, err = store.Get(ctx, "bundle")
	require.NoError(t, err)
	assert.False(t, ok)
}
