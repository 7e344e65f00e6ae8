package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"cointether/internal/aggregate"
	"cointether/internal/chart"
	"cointether/internal/symbols"
)

type valueCmd struct {
	*env
	owner, query string
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "refresh prices and value an owner's portfolio" }
func (*valueCmd) Usage() string {
	return `value -owner <user> [-q <filter>]

  Fetches current prices in one request, values every holding in both
  currencies and records the total in the owner's history. When the price
  provider is unreachable the last cached prices are used and nothing is
  recorded.
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "Owner to value (required)")
	f.StringVar(&c.query, "q", "", "Only show rows whose coin name or ticker contains this text")
}

func (c *valueCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.owner == "" {
		fmt.Fprintln(os.Stderr, "Error: -owner is required.")
		return subcommands.ExitUsageError
	}

	a, err := c.open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	res, err := a.Engine.Refresh(ctx, c.owner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	curA, curB := a.PrimaryCurrency(), a.SecondaryCurrency()
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "COIN\tSYMBOL\tQUANTITY\tPRICE %s\tPRICE %s\tVALUE %s\tVALUE %s\n", curA, curB, curA, curB)
	for _, row := range aggregate.Filter(res.Rows, c.query) {
		if !row.Available {
			fmt.Fprintf(w, "%s\t%s\t%s\tn/a\tn/a\t-\t-\n", row.Holding.CoinName, row.Holding.Symbol, row.Holding.Quantity)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Holding.CoinName, row.Holding.Symbol, row.Holding.Quantity,
			row.Quote.PriceA, row.Quote.PriceB,
			aggregate.FormatMoney(row.ValueA, curA), aggregate.FormatMoney(row.ValueB, curB))
	}
	w.Flush()

	fmt.Fprintf(c.out, "\nTotal: %s / %s\n", aggregate.FormatMoney(res.Total.A, curA), aggregate.FormatMoney(res.Total.B, curB))
	if res.Stale {
		fmt.Fprintf(c.out, "Prices are cached from %s: %v\n", res.CapturedAt.Format("2006-01-02 15:04:05"), res.ProviderErr)
	}
	if res.NoPriceData() {
		fmt.Fprintln(c.out, "No price data available.")
	}
	for _, row := range res.Rows {
		if row.Err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", row.Err)
		}
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", warn)
	}
	return subcommands.ExitSuccess
}

type historyCmd struct {
	*env
	owner string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "print an owner's recorded portfolio totals" }
func (*historyCmd) Usage() string    { return "history -owner <user>\n" }

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "Owner whose history to print (required)")
}

func (c *historyCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.owner == "" {
		fmt.Fprintln(os.Stderr, "Error: -owner is required.")
		return subcommands.ExitUsageError
	}

	a, err := c.open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	samples, err := a.History.Series(c.owner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading history: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, s := range samples {
		fmt.Fprintf(c.out, "%s\t%s\n", s.Timestamp.Format("2006-01-02T15:04:05Z07:00"), aggregate.FormatMoney(s.Value, a.PrimaryCurrency()))
	}
	return subcommands.ExitSuccess
}

type chartCmd struct {
	*env
	owner, file, kind string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "render the value trend or holdings distribution as PNG" }
func (*chartCmd) Usage() string {
	return `chart -owner <user> -out <file.png> [-kind history|distribution]

  history plots the recorded totals; distribution uses cached prices and
  never contacts the price provider.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "Owner to chart (required)")
	f.StringVar(&c.file, "out", "", "Output PNG file (required)")
	f.StringVar(&c.kind, "kind", "history", "Chart kind: history or distribution")
}

func (c *chartCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.owner == "" || c.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -owner and -out are required.")
		return subcommands.ExitUsageError
	}
	if c.kind != "history" && c.kind != "distribution" {
		fmt.Fprintf(os.Stderr, "Error: unknown -kind %q\n", c.kind)
		return subcommands.ExitUsageError
	}

	a, err := c.open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	var png []byte
	switch c.kind {
	case "history":
		samples, err := a.History.Series(c.owner)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading history: %v\n", err)
			return subcommands.ExitFailure
		}
		png, err = chart.RenderHistory(samples, a.PrimaryCurrency())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	case "distribution":
		hs, err := a.Holdings.ListHoldings(ctx, c.owner)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing holdings: %v\n", err)
			return subcommands.ExitFailure
		}
		png, err = chart.RenderDistribution(aggregate.Distribution(a.Engine.Revalue(c.owner, hs).Rows))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	if err := os.WriteFile(c.file, png, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", c.file, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type symbolsCmd struct {
	*env
}

func (*symbolsCmd) Name() string           { return "symbols" }
func (*symbolsCmd) Synopsis() string       { return "list the supported tickers" }
func (*symbolsCmd) Usage() string          { return "symbols\n" }
func (*symbolsCmd) SetFlags(*flag.FlagSet) {}

func (c *symbolsCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	for _, t := range symbols.Tickers() {
		id, _ := symbols.ID(t)
		fmt.Fprintf(w, "%s\t%s\n", t, id)
	}
	w.Flush()
	return subcommands.ExitSuccess
}
