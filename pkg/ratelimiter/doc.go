// Package ratelimiter throttles callers with a token bucket.
//
// A Bucket takes tokens from a Store keyed by caller. MemoryStore keeps the
// buckets in process and drops the ones that sat idle for an hour.
// Middleware wraps an http.Handler and answers 429 Too Many Requests once a
// caller's bucket is empty:
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       60,
//		RefillRate:     1,
//		RefillInterval: time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	r.Use(ratelimiter.Middleware(limiter))
//
// Responses carry X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset, plus Retry-After when the request was denied.
package ratelimiter
