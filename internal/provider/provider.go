package provider

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the normalized price of one ticker in both display currencies.
type Quote struct {
	Symbol string          `json:"symbol"`
	PriceA decimal.Decimal `json:"price_a"`
	PriceB decimal.Decimal `json:"price_b"`
	Image  string          `json:"image,omitempty"`
}

// Snapshot is one complete set of prices. It is replaced as a whole, never merged.
type Snapshot struct {
	Quotes     map[string]Quote `json:"quotes"`
	CapturedAt time.Time        `json:"captured_at"`
}

// NewSnapshot builds a snapshot keyed by each quote's symbol.
func NewSnapshot(capturedAt time.Time, quotes ...Quote) Snapshot {
	m := make(map[string]Quote, len(quotes))
	for _, q := range quotes {
		m[q.Symbol] = q
	}
	return Snapshot{Quotes: m, CapturedAt: capturedAt}
}

func (s Snapshot) Get(symbol string) (Quote, bool) {
	q, ok := s.Quotes[symbol]
	return q, ok
}

func (s Snapshot) Len() int      { return len(s.Quotes) }
func (s Snapshot) IsEmpty() bool { return len(s.Quotes) == 0 }

// Clone returns a copy that shares no map with s.
func (s Snapshot) Clone() Snapshot {
	m := make(map[string]Quote, len(s.Quotes))
	for k, v := range s.Quotes {
		m[k] = v
	}
	return Snapshot{Quotes: m, CapturedAt: s.CapturedAt}
}

// Symbols lists the snapshot's tickers in alphabetical order.
func (s Snapshot) Symbols() []string {
	out := make([]string, 0, len(s.Quotes))
	for k := range s.Quotes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Provider turns a set of tickers into a price snapshot with a single remote call.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, symbols []string) (Snapshot, error)
}
