package commands

import (
	"fmt"
	"os"

	"github.com/soomaali-corpus/corpusmetrics/internal/config"
	"github.com/soomaali-corpus/corpusmetrics/internal/export"
)

// ExportCmd implements the 'export' command.
type ExportCmd struct {
	Path   string `arg:"" help:"Run document to convert"`
	Output string `short:"o" help:"Directory to write the .prom file into (defaults to stdout)"`
}

func (e *ExportCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}

	doc, err := export.ReadDocument(e.Path)
	if err != nil {
		return err
	}

	exporter := export.NewPromTextExporter(cfg.Export.Prometheus.Namespace)

	if e.Output != "" {
		path, err := exporter.ExportFile(e.Output, doc)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	}

	return exporter.Write(os.Stdout, doc)
}
