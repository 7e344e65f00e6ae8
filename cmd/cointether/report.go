package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"cointether/internal/report"
	"cointether/internal/valuation"
)

type reportCmd struct {
	*env
	owner, file, style string
	cached             bool
	width              int
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print or export a Markdown portfolio report" }
func (*reportCmd) Usage() string {
	return `report -owner <user> [-cached] [-out report.md] [-style dark|light|notty] [-width N]

  Values the portfolio and renders a summary. With -out the raw Markdown is
  written to the file instead. -cached values against cached prices only.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "Owner to report on (required)")
	f.BoolVar(&c.cached, "cached", false, "Use cached prices; do not contact the provider or record history")
	f.StringVar(&c.file, "out", "", "Write Markdown to this file instead of the terminal")
	f.StringVar(&c.style, "style", "auto", "Terminal style")
	f.IntVar(&c.width, "width", 100, "Word wrap width")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	hs, err := a.Holdings.ListHoldings(ctx, c.owner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing holdings: %v\n", err)
		return subcommands.ExitFailure
	}
	var res valuation.Result
	if c.cached {
		res = a.Engine.Revalue(c.owner, hs)
	} else {
		res = a.Engine.Evaluate(ctx, c.owner, hs)
	}
	md := report.Markdown(res, a.PrimaryCurrency(), a.SecondaryCurrency())

	if c.file != "" {
		if err := os.WriteFile(c.file, []byte(md), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", c.file, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	out, err := report.Render(md, c.style, c.width)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprint(c.out, out)
	return subcommands.ExitSuccess
}
