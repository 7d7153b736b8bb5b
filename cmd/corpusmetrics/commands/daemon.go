package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/soomaali-corpus/corpusmetrics/internal/config"
	"github.com/soomaali-corpus/corpusmetrics/internal/daemon"
	"github.com/soomaali-corpus/corpusmetrics/internal/runstore"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	Once bool `help:"Refresh once and exit instead of staying resident"`
}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}

	store, err := runstore.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dmn := daemon.New(cfg, store)

	if cfg.Daemon.NATS.Enabled {
		pub, err := daemon.NewPublisher(cfg.Daemon.NATS)
		if err != nil {
			return fmt.Errorf("connect summary publisher: %w", err)
		}
		defer pub.Close()
		dmn.SetPublisher(pub)
	}

	if d.Once {
		summary, err := dmn.Refresh(ctx)
		if err != nil {
			return err
		}
		slog.Info("Refresh complete", "sources", len(summary.Sources), "total_volume", summary.TotalVolume)
		return nil
	}

	if err := dmn.Run(ctx); err != nil {
		return err
	}

	slog.Info("Daemon stopped")
	return nil
}
