package ratelimiter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/checkoutkit/pkg/ratelimiter"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func serve(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/estimate", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("limits per client address", func(t *testing.T) {
		t.Parallel()
		b, _, _ := newBucket(t, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second})
		h := ratelimiter.Middleware(b)(okHandler)

		rec := serve(h, "10.0.0.1:5000")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))

		rec = serve(h, "10.0.0.1:5001")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))

		rec = serve(h, "10.0.0.2:5000")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("empty key is not limited", func(t *testing.T) {
		t.Parallel()
		b, _, _ := newBucket(t, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Minute})
		h := ratelimiter.Middleware(b, ratelimiter.WithKeyFunc(func(*http.Request) string { return "" }))(okHandler)

		for range 3 {
			assert.Equal(t, http.StatusNoContent, serve(h, "10.0.0.1:5000").Code)
		}
	})

	t.Run("custom responder", func(t *testing.T) {
		t.Parallel()
		var gotErr error
		h := ratelimiter.Middleware(failingLimiter{},
			ratelimiter.WithErrorResponder(func(w http.ResponseWriter, _ *http.Request, _ ratelimiter.Result, err error) {
				gotErr = err
				w.WriteHeader(http.StatusServiceUnavailable)
			}),
		)(okHandler)

		rec := serve(h, "10.0.0.1:5000")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Error(t, gotErr)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	})
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimiter.Result, error) {
	return ratelimiter.Result{}, errors.New("store down")
}

func TestKeyFuncs(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:443"
	req.Header.Set("X-API-Key", "k1")
	assert.Equal(t, "203.0.113.7", ratelimiter.ClientIP(req))

	req.RemoteAddr = "203.0.113.7"
	assert.Equal(t, "203.0.113.7", ratelimiter.ClientIP(req))

	apiKey := func(r *http.Request) string { return r.Header.Get("X-API-Key") }
	empty := func(*http.Request) string { return "" }
	assert.Equal(t, "k1:203.0.113.7", ratelimiter.Composite(apiKey, empty, ratelimiter.ClientIP)(req))

	req.Header.Set("X-API-Key", strings.Repeat("x", 80))
	hashed := ratelimiter.Composite(apiKey, ratelimiter.ClientIP)(req)
	assert.NotEmpty(t, hashed)
	assert.LessOrEqual(t, len(hashed), 13)
}
