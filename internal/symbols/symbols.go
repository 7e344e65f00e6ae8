// Package symbols maps short ticker symbols to CoinGecko coin identifiers.
package symbols

import (
	"fmt"
	"sort"
	"strings"
)

var tickerToID = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"DOGE":  "dogecoin",
	"SOL":   "solana",
	"ADA":   "cardano",
	"BNB":   "binancecoin",
	"XRP":   "ripple",
	"MATIC": "matic-network",
	"LTC":   "litecoin",
	"DOT":   "polkadot",
	"SHIB":  "shiba-inu",
	"AVAX":  "avalanche-2",
	"TRX":   "tron",
	"UNI":   "uniswap",
	"XLM":   "stellar",
}

// UnknownSymbolError reports a ticker the registry does not recognize.
type UnknownSymbolError struct {
	Symbol string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("unknown symbol %q", e.Symbol)
}

// Normalize upper-cases and trims a ticker.
func Normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// ID returns the provider identifier for ticker.
func ID(ticker string) (string, bool) {
	id, ok := tickerToID[Normalize(ticker)]
	return id, ok
}

func Known(ticker string) bool {
	_, ok := ID(ticker)
	return ok
}

// Check returns an *UnknownSymbolError when ticker is not in the registry.
func Check(ticker string) error {
	if !Known(ticker) {
		return &UnknownSymbolError{Symbol: Normalize(ticker)}
	}
	return nil
}

// Resolve maps provider identifiers back to normalized tickers, silently
// dropping tickers the registry does not know.
func Resolve(tickers []string) map[string]string {
	out := make(map[string]string, len(tickers))
	for _, t := range tickers {
		sym := Normalize(t)
		if id, ok := tickerToID[sym]; ok {
			out[id] = sym
		}
	}
	return out
}

// Tickers lists every supported ticker in alphabetical order.
func Tickers() []string {
	out := make([]string, 0, len(tickerToID))
	for t := range tickerToID {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
