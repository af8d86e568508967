package bianapi

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces requests against the API with a token bucket.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter returns nil when rps is not positive, which disables pacing.
func NewLimiter(rps float64, burst int) *Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until a request can be made without exceeding the rate limit.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
