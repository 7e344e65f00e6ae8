package valuation

import (
	"github.com/shopspring/decimal"

	"cointether/internal/holdings"
	"cointether/internal/provider"
	"cointether/internal/symbols"
)

// Row is the valuation of one holding. When Available is false the quote is
// missing from the active snapshot and both values are zero.
type Row struct {
	Holding   holdings.Holding `json:"holding"`
	Quote     *provider.Quote  `json:"quote,omitempty"`
	Available bool             `json:"available"`
	ValueA    decimal.Decimal  `json:"value_a"`
	ValueB    decimal.Decimal  `json:"value_b"`
	// Err is a *symbols.UnknownSymbolError when the ticker is not supported.
	Err error `json:"-"`
}

// Total sums the row values in both currencies.
type Total struct {
	A decimal.Decimal `json:"a"`
	B decimal.Decimal `json:"b"`
}

// Value prices holdings against snap. It never mutates its inputs, and rows
// keep the order of holdings.
func Value(snap provider.Snapshot, hs []holdings.Holding) ([]Row, Total) {
	rows := make([]Row, 0, len(hs))
	total := Total{A: decimal.Zero, B: decimal.Zero}
	for _, h := range hs {
		sym := symbols.Normalize(h.Symbol)
		row := Row{Holding: h, ValueA: decimal.Zero, ValueB: decimal.Zero, Err: symbols.Check(sym)}
		if q, ok := snap.Get(sym); ok && row.Err == nil {
			row.Quote = &q
			row.Available = true
			row.ValueA = h.Quantity.Mul(q.PriceA)
			row.ValueB = h.Quantity.Mul(q.PriceB)
			total.A = total.A.Add(row.ValueA)
			total.B = total.B.Add(row.ValueB)
		}
		rows = append(rows, row)
	}
	return rows, total
}

// Tickers returns the distinct normalized tickers of hs in first-seen order.
func Tickers(hs []holdings.Holding) []string {
	seen := make(map[string]struct{}, len(hs))
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		sym := symbols.Normalize(h.Symbol)
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}
