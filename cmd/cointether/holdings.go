package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cointether/internal/holdings"
	"cointether/internal/symbols"
)

type addCmd struct {
	*env
	owner, name, symbol, qty string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a coin holding to an owner's wallet" }
func (*addCmd) Usage() string {
	return `add -owner <user> -symbol <ticker> -qty <quantity> [-name <coin name>]

  Records a new holding. Tickers outside the supported list are accepted but
  will show as unavailable when valued.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "Owner of the holding (required)")
	f.StringVar(&c.name, "name", "", "Display name of the coin (default: the ticker)")
	f.StringVar(&c.symbol, "symbol", "", "Ticker symbol, e.g. BTC (required)")
	f.StringVar(&c.qty, "qty", "", "Quantity held (required)")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.owner == "" || c.symbol == "" || c.qty == "" {
		fmt.Fprintln(os.Stderr, "Error: -owner, -symbol and -qty are required.")
		return subcommands.ExitUsageError
	}
	qty, err := decimal.NewFromString(c.qty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid quantity %q: %v\n", c.qty, err)
		return subcommands.ExitUsageError
	}
	if c.name == "" {
		c.name = symbols.Normalize(c.symbol)
	}

	a, err := c.open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	h, err := a.Holdings.Insert(ctx, holdings.Holding{Owner: c.owner, CoinName: c.name, Symbol: c.symbol, Quantity: qty})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding holding: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := symbols.Check(h.Symbol); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; it will not be priced.\n", err)
	}
	fmt.Fprintln(c.out, h.ID)
	return subcommands.ExitSuccess
}

type updateCmd struct {
	*env
	id, qty string
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "change the quantity of a holding" }
func (*updateCmd) Usage() string    { return "update -id <holding id> -qty <quantity>\n" }

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Holding id as printed by add or list (required)")
	f.StringVar(&c.qty, "qty", "", "New quantity (required)")
}

func (c *updateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := uuid.Parse(c.id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -id %q: %v\n", c.id, err)
		return subcommands.ExitUsageError
	}
	qty, err := decimal.NewFromString(c.qty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid quantity %q: %v\n", c.qty, err)
		return subcommands.ExitUsageError
	}

	a, err := c.open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.Holdings.UpdateQuantity(ctx, id, qty); err != nil {
		fmt.Fprintf(os.Stderr, "Error updating holding: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type removeCmd struct {
	*env
	id string
}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "delete a holding" }
func (*removeCmd) Usage() string    { return "remove -id <holding id>\n" }

func (c *removeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Holding id as printed by add or list (required)")
}

func (c *removeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := uuid.Parse(c.id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -id %q: %v\n", c.id, err)
		return subcommands.ExitUsageError
	}

	a, err := c.open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.Holdings.Delete(ctx, id); err != nil {
		fmt.Fprintf(os.Stderr, "Error removing holding: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type listCmd struct {
	*env
	owner string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list an owner's holdings without pricing them" }
func (*listCmd) Usage() string    { return "list -owner <user>\n" }

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "Owner to list (required)")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOIN\tSYMBOL\tQUANTITY")
	for _, h := range hs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", h.ID, h.CoinName, strings.ToUpper(h.Symbol), h.Quantity)
	}
	w.Flush()
	return subcommands.ExitSuccess
}
