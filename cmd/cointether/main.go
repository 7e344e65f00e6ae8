// Command cointether manages holdings and values portfolios from the terminal.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path"

	"github.com/google/subcommands"

	"cointether/internal/app"
	"cointether/internal/config"
	"cointether/internal/logging"
)

var configPath = flag.String("config", "", "Path to the TOML config file (default: cointether.toml when present)")

// env is shared by every command: where output goes and how the app is built.
type env struct {
	out  io.Writer
	open func() (*app.App, error)
}

func openFromFlags() (*app.App, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, logging.New(cfg.Logging.Level))
}

func commands(e *env) []subcommands.Command {
	return []subcommands.Command{
		&addCmd{env: e},
		&updateCmd{env: e},
		&removeCmd{env: e},
		&listCmd{env: e},
		&valueCmd{env: e},
		&historyCmd{env: e},
		&chartCmd{env: e},
		&symbolsCmd{env: e},
		&pricesCmd{env: e},
		&reportCmd{env: e},
	}
}

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	e := &env{out: os.Stdout, open: openFromFlags}
	cmds := commands(e)
	for _, c := range cmds {
		commander.Register(c, "")
	}
	// Answers and exits when invoked by the shell with COMP_LINE set.
	completion(cmds).Complete(path.Base(os.Args[0]))

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
