// Package valuation merges holdings with the latest prices and records the
// resulting aggregate value over time.
package valuation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"cointether/internal/holdings"
	"cointether/internal/logging"
	"cointether/internal/provider"
)

// Source names where the prices of a Result came from.
type Source string

const (
	SourceProvider Source = "provider"
	SourceCache    Source = "cache"
	SourceNone     Source = "none"
)

// Result is one evaluation of an owner's portfolio.
type Result struct {
	Owner       string    `json:"owner"`
	Rows        []Row     `json:"rows"`
	Total       Total     `json:"total"`
	Source      Source    `json:"source"`
	Stale       bool      `json:"stale"`
	CapturedAt  time.Time `json:"captured_at"`
	EvaluatedAt time.Time `json:"evaluated_at"`
	// ProviderErr is set when the remote fetch failed and cached prices were used.
	ProviderErr error `json:"-"`
	// Warnings collects non-fatal persistence failures of this evaluation.
	Warnings []error `json:"-"`
}

// NoPriceData reports whether no row could be priced although some holdings
// exist, e.g. an empty cache while the provider is unreachable.
func (r Result) NoPriceData() bool {
	if len(r.Rows) == 0 {
		return false
	}
	for _, row := range r.Rows {
		if row.Available {
			return false
		}
	}
	return true
}

// Engine is the valuation and price-synchronization orchestrator.
//
// Evaluations of the same owner are serialized. Concurrent Refresh calls for
// one owner share a single evaluation.
type Engine struct {
	provider provider.Provider
	cache    SnapshotCache
	history  HistoryRecorder
	holdings HoldingsLister
	logger   *logging.Logger
	now      func() time.Time

	locks  ownerLocks
	flight singleflight.Group
}

type Option func(*Engine)

// WithClock replaces time.Now for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithHoldings sets the store Refresh reads holdings from.
func WithHoldings(h HoldingsLister) Option {
	return func(e *Engine) { e.holdings = h }
}

func New(p provider.Provider, c SnapshotCache, h HistoryRecorder, logger *logging.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.NewSilent()
	}
	e := &Engine{
		provider: p,
		cache:    c,
		history:  h,
		logger:   logger,
		now:      time.Now,
		locks:    ownerLocks{m: map[string]*ownerLock{}},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate fetches fresh prices for holdings and values them. When the fetch
// fails the cached snapshot is used instead, the result is marked stale and no
// history sample is recorded. Evaluate never fails.
func (e *Engine) Evaluate(ctx context.Context, owner string, hs []holdings.Holding) Result {
	unlock := e.locks.lock(owner)
	defer unlock()

	res := Result{Owner: owner, Source: SourceNone, EvaluatedAt: e.now().UTC()}
	tickers := Tickers(hs)
	if len(tickers) == 0 {
		res.Rows, res.Total = Value(provider.Snapshot{}, hs)
		return res
	}

	snap, err := e.provider.Fetch(ctx, tickers)
	if err != nil {
		res.ProviderErr = err
		res.Stale = true
		res.Source = SourceCache
		e.logger.Warn().Err(err).Str("owner", owner).Str("provider", e.provider.Name()).
			Msg("price refresh failed, using cached prices")

		loaded := e.cache.Load()
		if loaded.Degraded {
			res.Warnings = append(res.Warnings, fmt.Errorf("price cache unavailable: %w", loaded.Err))
		}
		res.CapturedAt = loaded.Snapshot.CapturedAt
		res.Rows, res.Total = Value(loaded.Snapshot, hs)
		return res
	}

	res.Source = SourceProvider
	res.CapturedAt = snap.CapturedAt
	if err := e.cache.Store(snap); err != nil {
		res.Warnings = append(res.Warnings, err)
		e.logger.Warn().Err(err).Str("owner", owner).Msg("price cache not stored")
	}

	res.Rows, res.Total = Value(snap, hs)
	if err := e.history.Append(owner, res.EvaluatedAt, res.Total.A); err != nil {
		res.Warnings = append(res.Warnings, err)
		e.logger.Warn().Err(err).Str("owner", owner).Msg("history sample not recorded")
	}

	e.logger.Info().
		Str("owner", owner).
		Int("rows", len(res.Rows)).
		Str("total_a", res.Total.A.String()).
		Msg("portfolio refreshed")
	return res
}

// ErrNoHoldingsStore is returned by Refresh when the engine was built without WithHoldings.
var ErrNoHoldingsStore = errors.New("valuation: no holdings store configured")

// Refresh reads owner's holdings and evaluates them. A Refresh that starts
// while another one for the same owner is in flight waits for it and returns
// its result.
func (e *Engine) Refresh(ctx context.Context, owner string) (Result, error) {
	if e.holdings == nil {
		return Result{}, ErrNoHoldingsStore
	}
	v, err, shared := e.flight.Do(owner, func() (any, error) {
		hs, err := e.holdings.ListHoldings(ctx, owner)
		if err != nil {
			return Result{}, fmt.Errorf("list holdings for %s: %w", owner, err)
		}
		return e.Evaluate(ctx, owner, hs), nil
	})
	if err != nil {
		return Result{}, err
	}
	res := v.(Result)
	if shared {
		e.logger.Debug().Str("owner", owner).Msg("refresh joined an in-flight evaluation")
		res.Rows = append([]Row(nil), res.Rows...)
		res.Warnings = append([]error(nil), res.Warnings...)
	}
	return res, nil
}

// Revalue prices holdings against the cached snapshot only. It performs no
// fetch and records no history.
func (e *Engine) Revalue(owner string, hs []holdings.Holding) Result {
	unlock := e.locks.lock(owner)
	defer unlock()

	loaded := e.cache.Load()
	res := Result{Owner: owner, Source: SourceCache, Stale: true, EvaluatedAt: e.now().UTC(), CapturedAt: loaded.Snapshot.CapturedAt}
	if loaded.Degraded {
		res.Warnings = append(res.Warnings, fmt.Errorf("price cache unavailable: %w", loaded.Err))
	}
	res.Rows, res.Total = Value(loaded.Snapshot, hs)
	return res
}

type ownerLock struct {
	sync.Mutex
	refs int
}

// ownerLocks hands out one mutex per owner and forgets it once unused.
type ownerLocks struct {
	mu sync.Mutex
	m  map[string]*ownerLock
}

func (l *ownerLocks) lock(owner string) (unlock func()) {
	l.mu.Lock()
	ol, ok := l.m[owner]
	if !ok {
		ol = &ownerLock{}
		l.m[owner] = ol
	}
	ol.refs++
	l.mu.Unlock()

	ol.Lock()
	return func() {
		ol.Unlock()
		l.mu.Lock()
		ol.refs--
		if ol.refs == 0 {
			delete(l.m, owner)
		}
		l.mu.Unlock()
	}
}
