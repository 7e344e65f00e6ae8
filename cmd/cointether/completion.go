package main

import (
	"flag"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"cointether/internal/symbols"
)

// completion describes every subcommand and its flags for shell completion.
// Tickers, chart kinds and output files get dedicated predictors.
func completion(cmds []subcommands.Command) *complete.Command {
	special := map[string]complete.Predictor{
		"symbol": predict.Set(symbols.Tickers()),
		"kind":   predict.Set{"history", "distribution"},
		"style":  predict.Set{"auto", "dark", "light", "notty"},
	}

	root := &complete.Command{Sub: map[string]*complete.Command{}}
	for _, c := range cmds {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)

		sub := &complete.Command{Flags: map[string]complete.Predictor{}}
		fs.VisitAll(func(f *flag.Flag) {
			switch {
			case special[f.Name] != nil:
				sub.Flags[f.Name] = special[f.Name]
			case isBool(f):
				sub.Flags[f.Name] = predict.Nothing
			case f.Name == "out":
				sub.Flags[f.Name] = predict.Files("*")
			default:
				sub.Flags[f.Name] = predict.Something
			}
		})
		root.Sub[c.Name()] = sub
	}
	return root
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
