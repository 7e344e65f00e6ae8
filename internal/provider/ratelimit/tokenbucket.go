package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"cointether/internal/provider"
)

// NewLimiter builds a token bucket allowing perMinute requests with the given burst.
func NewLimiter(perMinute int, burst int) *rate.Limiter {
	if burst <= 0 {
		burst = 1
	}
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

// TokenBucketProvider wraps a Provider and gates calls using a token bucket.
type TokenBucketProvider struct {
	P  provider.Provider
	TB *rate.Limiter
}

func (t *TokenBucketProvider) Name() string { return t.P.Name() }

func (t *TokenBucketProvider) Fetch(ctx context.Context, symbols []string) (provider.Snapshot, error) {
	if t.TB != nil {
		if err := t.TB.Wait(ctx); err != nil {
			// Wait also fails early when the deadline would expire before a token frees up.
			return provider.Snapshot{}, &provider.Error{Provider: t.P.Name(), Kind: provider.KindTimeout, Err: err}
		}
	}
	return t.P.Fetch(ctx, symbols)
}

// Wrap applies the configured limits: a token bucket when perMinute is set,
// otherwise a minimum interval when minInterval is positive.
func Wrap(p provider.Provider, perMinute, burst int, minInterval time.Duration) provider.Provider {
	switch {
	case perMinute > 0:
		return &TokenBucketProvider{P: p, TB: NewLimiter(perMinute, burst)}
	case minInterval > 0:
		return &MinInterval{P: p, Interval: minInterval}
	default:
		return p
	}
}
