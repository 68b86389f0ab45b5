package httpapi

import (
	"net/http"

	"golang.org/x/time/rate"
)

// rateLimitMiddleware admits requests under a single shared token bucket
// ahead of the Dispatch Layer, protecting the one decoder lease from a burst
// of concurrent callers before it ever reaches the queue.
//
// Adapted from examples/middleware/rate-limiting's TokenBucketLimiter: that
// example wraps rate.Limiter per-caller with its own stats bookkeeping; this
// service has exactly one shared resource to protect (the decoder), so one
// process-wide limiter is enough and the stats counters are dropped in favor
// of pkg/metrics' RequestsTotal.
func rateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeJSON(w, http.StatusTooManyRequests, errorBody{Detail: "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
