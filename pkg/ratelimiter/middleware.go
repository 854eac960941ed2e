package ratelimiter

import (
	"context"
	"hash/fnv"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
)

const maxKeyLength = 64

// Limiter is what Middleware needs from a Bucket.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// KeyFunc extracts a rate limit key from the request. An empty key skips
// limiting.
type KeyFunc func(r *http.Request) string

// ClientIP keys requests by the remote host. Put it behind a real-IP
// middleware when running behind a proxy.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Composite joins the non-empty keys of fns. Keys longer than 64 bytes are
// hashed with FNV-1a.
func Composite(fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			if key := fn(r); key != "" {
				parts = append(parts, key)
			}
		}
		combined := strings.Join(parts, ":")
		if len(combined) <= maxKeyLength {
			return combined
		}
		h := fnv.New64a()
		_, _ = h.Write([]byte(combined))
		return strconv.FormatUint(h.Sum64(), 36)
	}
}

// ErrorResponder writes the response for a denied request, or for a limiter
// failure when err is not nil.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, res Result, err error)

type middlewareOptions struct {
	key     KeyFunc
	respond ErrorResponder
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareOptions)

func WithKeyFunc(fn KeyFunc) MiddlewareOption {
	return func(o *middlewareOptions) {
		if fn != nil {
			o.key = fn
		}
	}
}

func WithErrorResponder(fn ErrorResponder) MiddlewareOption {
	return func(o *middlewareOptions) {
		if fn != nil {
			o.respond = fn
		}
	}
}

// Middleware takes one token per request and answers 429 once the bucket for
// the request key is empty. It sets the X-RateLimit-* headers on every
// limited response.
func Middleware(limiter Limiter, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	o := middlewareOptions{key: ClientIP, respond: defaultResponder}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := o.key(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := limiter.Allow(r.Context(), key)
			if err != nil {
				o.respond(w, r, res, err)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed() {
				if secs := int(math.Ceil(res.RetryAfter().Seconds())); secs > 0 {
					h.Set("Retry-After", strconv.Itoa(secs))
				}
				o.respond(w, r, res, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func defaultResponder(w http.ResponseWriter, _ *http.Request, _ Result, err error) {
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
}
