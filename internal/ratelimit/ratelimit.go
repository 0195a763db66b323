// Package ratelimit provides an http.Handler middleware combining a
// token-bucket request rate limit with a concurrency semaphore, used to
// protect the pipeline and the upstream it forwards to.
package ratelimit

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"
)

// Config configures the middleware. A zero value for either field
// disables that half of the limiter.
type Config struct {
	// RequestsPerSecond is the sustained token-bucket refill rate. Zero
	// disables the rate limiter.
	RequestsPerSecond float64

	// MaxConcurrent caps the number of in-flight requests. Zero
	// disables the concurrency limiter.
	MaxConcurrent int
}

// Middleware wraps next with cfg's limits. A request that exceeds the
// rate limit waits for a token (bounded by the request's own context);
// a request that would exceed the concurrency limit is rejected
// immediately with 503 rather than queued, since queuing indefinitely
// would tie up the accepting goroutine.
func Middleware(cfg Config, next http.Handler) http.Handler {
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	var sem chan struct{}
	if cfg.MaxConcurrent > 0 {
		sem = make(chan struct{}, cfg.MaxConcurrent)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter != nil {
			if err := limiter.Wait(r.Context()); err != nil {
				status := http.StatusTooManyRequests
				if r.Context().Err() == context.Canceled {
					return
				}
				http.Error(w, "Rate limit exceeded", status)
				return
			}
		}

		if sem != nil {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			default:
				http.Error(w, "Too many concurrent requests", http.StatusServiceUnavailable)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
