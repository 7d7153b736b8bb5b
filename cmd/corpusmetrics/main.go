package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/soomaali-corpus/corpusmetrics/cmd/corpusmetrics/commands"
	"github.com/soomaali-corpus/corpusmetrics/internal/foundation/errors"
	"github.com/soomaali-corpus/corpusmetrics/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("corpusmetrics"),
		kong.Description("Layered metrics aggregation for the Somali corpus collection pipelines"),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	global := &commands.Global{Logger: slog.Default()}
	if err := ctx.Run(global, cli); err != nil {
		adapter := errors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
		fmt.Fprintln(os.Stderr, adapter.FormatError(err))
		adapter.LogError(err)
		os.Exit(adapter.ExitCodeFor(err))
	}
}
