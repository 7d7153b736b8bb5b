package commands

import (
	"fmt"
	"path/filepath"

	"github.com/soomaali-corpus/corpusmetrics/internal/config"
	"github.com/soomaali-corpus/corpusmetrics/internal/export"
	"github.com/soomaali-corpus/corpusmetrics/internal/foundation/errors"
	"github.com/soomaali-corpus/corpusmetrics/internal/metrics"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct {
	Paths  []string `arg:"" optional:"" help:"Run documents to validate (defaults to the configured metrics directory)"`
	Strict bool     `help:"Treat validation warnings as errors"`
}

func (v *ValidateCmd) Run(_ *Global, root *CLI) error {
	paths := v.Paths
	if len(paths) == 0 {
		cfg, err := config.Load(root.Config)
		if err != nil {
			return err
		}
		paths, err = filepath.Glob(filepath.Join(cfg.MetricsDir, "*_processing.json"))
		if err != nil {
			return err
		}
	}

	if len(paths) == 0 {
		fmt.Println("no run documents found")
		return nil
	}

	var unreadable, warned int
	for _, path := range paths {
		doc, err := export.ReadDocument(path)
		if err != nil {
			unreadable++
			fmt.Printf("FAIL  %s: %v\n", path, err)
			continue
		}

		warnings := doc.ValidationWarnings
		if doc.LayeredMetrics != nil {
			warnings = metrics.ValidateLayered(*doc.LayeredMetrics)
		}

		if len(warnings) == 0 {
			fmt.Printf("OK    %s (%s, %s)\n", path, doc.Source, doc.PipelineType)
			continue
		}

		warned++
		fmt.Printf("WARN  %s (%s, %s)\n", path, doc.Source, doc.PipelineType)
		for _, w := range warnings {
			fmt.Printf("      - %s\n", w)
		}
	}

	if unreadable > 0 {
		return errors.ValidationError(fmt.Sprintf("%d of %d documents could not be read", unreadable, len(paths))).Build()
	}
	if v.Strict && warned > 0 {
		return errors.ValidationError(fmt.Sprintf("%d of %d documents carry warnings", warned, len(paths))).Build()
	}
	return nil
}
