// Package aggregate derives presentation data from valued portfolio rows.
package aggregate

import (
	"math"
	"sort"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"cointether/internal/symbols"
	"cointether/internal/valuation"
)

// Slice is one coin's part of the portfolio value.
type Slice struct {
	Symbol   string          `json:"symbol"`
	CoinName string          `json:"coin_name"`
	Value    decimal.Decimal `json:"value"`
	// Share is the fraction of the total, between 0 and 1.
	Share decimal.Decimal `json:"share"`
}

// Distribution groups priced rows by ticker and returns each ticker's share of
// the primary-currency total, largest first. Unpriced and zero-value rows are
// left out.
func Distribution(rows []valuation.Row) []Slice {
	bySymbol := map[string]*Slice{}
	total := decimal.Zero
	for _, r := range rows {
		if !r.Available || !r.ValueA.IsPositive() {
			continue
		}
		sym := symbols.Normalize(r.Holding.Symbol)
		s, ok := bySymbol[sym]
		if !ok {
			s = &Slice{Symbol: sym, CoinName: r.Holding.CoinName, Value: decimal.Zero}
			bySymbol[sym] = s
		}
		s.Value = s.Value.Add(r.ValueA)
		total = total.Add(r.ValueA)
	}

	out := make([]Slice, 0, len(bySymbol))
	for _, s := range bySymbol {
		s.Share = s.Value.DivRound(total, 6)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// Filter keeps rows whose coin name or ticker contains query, ignoring case.
// An empty query keeps every row.
func Filter(rows []valuation.Row, query string) []valuation.Row {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return rows
	}
	out := make([]valuation.Row, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Holding.CoinName), q) ||
			strings.Contains(strings.ToLower(r.Holding.Symbol), q) {
			out = append(out, r)
		}
	}
	return out
}

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// FormatMoney renders amount in currency, e.g. "$115,000.00". Currencies
// unknown to go-money, and amounts whose minor units overflow int64, fall
// back to "<amount> <CODE>" with two decimals.
func FormatMoney(amount decimal.Decimal, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	if minor.LessThan(minInt64) || minor.GreaterThan(maxInt64) {
		return amount.StringFixed(2) + " " + code
	}
	return money.New(minor.IntPart(), code).Display()
}
