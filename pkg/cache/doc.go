// Package cache provides a generic, thread-safe LRU cache with optional
// per-entry expiry.
//
// The price-check coalescer keeps authoritative estimations here, keyed by the
// normalized request key, so repeated lookups of the same configuration never
// reach the pricing service while the entry is fresh.
//
// # Usage
//
//	c := cache.NewLRUCache[string, checkout.Estimation](512, cache.WithTTL(10*time.Minute))
//
//	c.Put(req.Key(), est)
//	if est, ok := c.Get(req.Key()); ok {
//		// fresh hit
//	}
//
// Entries are evicted when the cache is over capacity (least recently used
// first) or when their TTL has elapsed. Expired entries are dropped lazily on
// access. All operations are O(1) except Len, which purges expired entries.
package cache
