package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soomaali-corpus/corpusmetrics/internal/foundation/errors"
	"github.com/soomaali-corpus/corpusmetrics/internal/metrics"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpusmetrics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: bbc_somali
    pipeline_type: web_scraping
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "./metrics", cfg.MetricsDir)
	require.True(t, cfg.Export.IncludeLayered())
	require.Equal(t, "./metrics", cfg.Export.Prometheus.Dir)
	require.Equal(t, "corpusmetrics", cfg.Export.Prometheus.Namespace)
	require.Equal(t, 2*time.Second, cfg.Daemon.Debounce)
	require.Equal(t, 15*time.Minute, cfg.Daemon.ExportInterval)
	require.Equal(t, "nats://localhost:4222", cfg.Daemon.NATS.URL)
	require.Equal(t, "corpusmetrics.summary", cfg.Daemon.NATS.Subject)
	require.Equal(t, "./corpusmetrics.db", cfg.Store.Path)
}

func TestLegacyOnlyDisablesLayeredExport(t *testing.T) {
	path := writeConfig(t, `
export:
  legacy_only: true
sources:
  - name: bbc_somali
    pipeline_type: web_scraping
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.False(t, cfg.Export.IncludeLayered())
}

func TestLoadRejectsUnknownPipelineType(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: bbc_somali
    pipeline_type: satellite_uplink
`)

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
	require.Contains(t, err.Error(), "satellite_uplink")
}

func TestLoadRejectsDuplicateSource(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: bbc_somali
    pipeline_type: web_scraping
  - name: bbc_somali
    pipeline_type: web_scraping
`)

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate source")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("CORPUS_METRICS_DIR", "/var/lib/corpus")
	path := writeConfig(t, `
metrics_dir: ${CORPUS_METRICS_DIR}
sources:
  - name: voa_somali
    pipeline_type: web_scraping
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/corpus", cfg.MetricsDir)
}

func TestSourceType(t *testing.T) {
	cfg := &Config{Sources: []SourceConfig{
		{Name: "wikipedia_so_dump", PipelineType: metrics.PipelineFileProcessing},
	}}

	pt, ok := cfg.SourceType("wikipedia_so_dump")
	require.True(t, ok)
	require.Equal(t, metrics.PipelineFileProcessing, pt)

	_, ok = cfg.SourceType("unknown")
	require.False(t, ok)
}

func TestInitRefusesOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpusmetrics.yaml")

	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	// The generated example must itself load cleanly.
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Sources, 4)
}
