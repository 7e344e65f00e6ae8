// Package report formats a valued portfolio as a Markdown summary and renders
// it for the terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"cointether/internal/aggregate"
	"cointether/internal/valuation"
)

// Markdown returns the summary of res: totals, one table row per holding and
// the per-coin distribution.
func Markdown(res valuation.Result, curA, curB string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Portfolio of %s\n\n", res.Owner)
	fmt.Fprintf(&b, "Evaluated %s", res.EvaluatedAt.Format(time.RFC1123))
	if res.Stale {
		fmt.Fprintf(&b, " with cached prices from %s", res.CapturedAt.Format(time.RFC1123))
	}
	b.WriteString(".\n\n")

	b.WriteString("## Totals\n\n")
	fmt.Fprintf(&b, "- %s: **%s**\n", curA, aggregate.FormatMoney(res.Total.A, curA))
	fmt.Fprintf(&b, "- %s: **%s**\n\n", curB, aggregate.FormatMoney(res.Total.B, curB))

	b.WriteString("## Holdings\n\n")
	if len(res.Rows) == 0 {
		b.WriteString("No holdings.\n\n")
	} else {
		fmt.Fprintf(&b, "| Coin | Symbol | Quantity | Value %s | Value %s |\n", curA, curB)
		b.WriteString("|---|---|---:|---:|---:|\n")
		for _, row := range res.Rows {
			va, vb := "n/a", "n/a"
			if row.Available {
				va, vb = aggregate.FormatMoney(row.ValueA, curA), aggregate.FormatMoney(row.ValueB, curB)
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				escape(row.Holding.CoinName), escape(row.Holding.Symbol), row.Holding.Quantity, va, vb)
		}
		b.WriteString("\n")
	}

	if slices := aggregate.Distribution(res.Rows); len(slices) > 0 {
		b.WriteString("## Distribution\n\n")
		for _, s := range slices {
			fmt.Fprintf(&b, "- %s: %s%%\n", s.Symbol, s.Share.Shift(2).StringFixed(1))
		}
		b.WriteString("\n")
	}

	if res.NoPriceData() {
		b.WriteString("> No price data available.\n")
	}
	return b.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Render styles md for a terminal. style is a glamour standard style name
// such as "dark", "light" or "notty".
func Render(md, style string, width int) (string, error) {
	if style == "" {
		style = "auto"
	}
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
