package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"corpusmetrics.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init        InitCmd        `cmd:"" help:"Initialize a new configuration file"`
	Validate    ValidateCmd    `cmd:"" help:"Validate exported run documents and report warnings"`
	Aggregate   AggregateCmd   `cmd:"" help:"Aggregate metrics across sources"`
	Export      ExportCmd      `cmd:"" help:"Convert a run document to Prometheus text format"`
	Daemon      DaemonCmd      `cmd:"" help:"Run the aggregation daemon"`
	CollectDemo CollectDemoCmd `cmd:"" name:"collect-demo" help:"Run a demo collection and export its metrics"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}
