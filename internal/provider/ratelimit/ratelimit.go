package ratelimit

import (
	"context"
	"sync"
	"time"

	"cointether/internal/provider"
)

// MinInterval wraps a provider and enforces a minimum time between calls.
// Concurrent calls will wait until the interval has elapsed since the last call,
// or return early if the context is canceled.
type MinInterval struct {
	P        provider.Provider
	Interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

func (m *MinInterval) Name() string { return m.P.Name() }

func (m *MinInterval) Fetch(ctx context.Context, symbols []string) (provider.Snapshot, error) {
	if m.Interval > 0 {
		m.mu.Lock()
		wait := time.Until(m.last.Add(m.Interval))
		m.mu.Unlock()
		if wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return provider.Snapshot{}, m.canceled(ctx)
			case <-t.C:
			}
		}
	}
	snap, err := m.P.Fetch(ctx, symbols)
	if m.Interval > 0 {
		m.mu.Lock()
		m.last = time.Now()
		m.mu.Unlock()
	}
	return snap, err
}

func (m *MinInterval) canceled(ctx context.Context) error {
	return &provider.Error{Provider: m.P.Name(), Kind: provider.KindTimeout, Err: ctx.Err()}
}
