package valuation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"cointether/internal/holdings"
	"cointether/internal/provider"
	"cointether/internal/provider/cache"
)

// SnapshotCache is the durable last-known price snapshot.
//
//go:generate mockgen -package=valuation_test -destination=mock_deps_test.go -source=deps.go
type SnapshotCache interface {
	Load() cache.LoadResult
	Store(s provider.Snapshot) error
}

// HistoryRecorder appends aggregate value samples per owner.
type HistoryRecorder interface {
	Append(owner string, ts time.Time, value decimal.Decimal) error
}

// HoldingsLister reads an owner's holdings in display order.
type HoldingsLister interface {
	ListHoldings(ctx context.Context, owner string) ([]holdings.Holding, error)
}
