package provider

import "github.com/shopspring/decimal"

// Converter derives the secondary currency price from the primary one.
type Converter interface {
	Currency() string
	Convert(primary decimal.Decimal) decimal.Decimal
}

// FixedRate converts with a constant multiplier. It is an approximation:
// no independent price is fetched for the secondary currency.
type FixedRate struct {
	To   string
	Rate decimal.Decimal
}

func NewFixedRate(currency string, rate float64) FixedRate {
	return FixedRate{To: currency, Rate: decimal.NewFromFloat(rate)}
}

func (f FixedRate) Currency() string { return f.To }

func (f FixedRate) Convert(primary decimal.Decimal) decimal.Decimal {
	return primary.Mul(f.Rate)
}
