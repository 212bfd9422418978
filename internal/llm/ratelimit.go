package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited spaces out calls to the wrapped client.
type RateLimited struct {
	next    Client
	limiter *rate.Limiter
}

// WithRateLimit wraps next so that at most rps calls start per second, with
// bursts of up to burst calls. rps <= 0 disables limiting.
func WithRateLimit(next Client, rps float64, burst int) Client {
	if rps <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (r *RateLimited) Complete(ctx context.Context, req Request) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm rate limit: %w", err)
	}
	return r.next.Complete(ctx, req)
}

func (r *RateLimited) Stream(ctx context.Context, req Request, onToken TokenFunc) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm rate limit: %w", err)
	}
	return r.next.Stream(ctx, req, onToken)
}
