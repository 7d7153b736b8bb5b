package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/soomaali-corpus/corpusmetrics/internal/foundation/errors"
	"github.com/soomaali-corpus/corpusmetrics/internal/metrics"
)

// Config represents the application configuration
type Config struct {
	MetricsDir string         `yaml:"metrics_dir"`
	Sources    []SourceConfig `yaml:"sources"`
	Export     ExportConfig   `yaml:"export"`
	Daemon     DaemonConfig   `yaml:"daemon"`
	Store      StoreConfig    `yaml:"store"`
}

// SourceConfig declares a known corpus source and its pipeline type.
// Run documents from undeclared sources are still accepted; the declaration
// exists so aggregation can report sources that produced no runs.
type SourceConfig struct {
	Name         string               `yaml:"name"`
	PipelineType metrics.PipelineType `yaml:"pipeline_type"`
}

// ExportConfig controls how run documents and summaries are written.
// Layered output is the default contract; legacy_only is the explicit
// opt-out for consumers that predate the layered schema.
type ExportConfig struct {
	LegacyOnly bool             `yaml:"legacy_only"`
	Prometheus PrometheusConfig `yaml:"prometheus"`
}

// IncludeLayered reports whether exported documents carry the layered section.
func (e ExportConfig) IncludeLayered() bool { return !e.LegacyOnly }

// PrometheusConfig controls the Prometheus text exposition output.
type PrometheusConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Dir       string `yaml:"dir,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`
}

// DaemonConfig controls the long-running aggregation daemon.
type DaemonConfig struct {
	Watch          bool          `yaml:"watch"`
	Debounce       time.Duration `yaml:"debounce,omitempty"`
	ExportInterval time.Duration `yaml:"export_interval,omitempty"`
	NATS           NATSConfig    `yaml:"nats"`
}

// NATSConfig controls publishing aggregate summaries to NATS.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// StoreConfig controls run history persistence.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env files if present; missing files are fine
	_ = godotenv.Load(".env", ".env.local")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigError(fmt.Sprintf("configuration file not found: %s", configPath)).
			WithContext("path", configPath).
			WithContext("hint", "run 'corpusmetrics init' to create a starter configuration").
			UserAction().
			Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration").
			WithContext("path", configPath).
			Build()
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.MetricsDir == "" {
		c.MetricsDir = "./metrics"
	}
	if c.Export.Prometheus.Dir == "" {
		c.Export.Prometheus.Dir = c.MetricsDir
	}
	if c.Export.Prometheus.Namespace == "" {
		c.Export.Prometheus.Namespace = "corpusmetrics"
	}
	if c.Daemon.Debounce <= 0 {
		c.Daemon.Debounce = 2 * time.Second
	}
	if c.Daemon.ExportInterval <= 0 {
		c.Daemon.ExportInterval = 15 * time.Minute
	}
	if c.Daemon.NATS.URL == "" {
		c.Daemon.NATS.URL = "nats://localhost:4222"
	}
	if c.Daemon.NATS.Subject == "" {
		c.Daemon.NATS.Subject = "corpusmetrics.summary"
	}
	if c.Store.Path == "" {
		c.Store.Path = "./corpusmetrics.db"
	}
}

// Validate checks the configuration for errors that would otherwise surface
// deep inside aggregation or export.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Sources))
	for _, src := range c.Sources {
		if src.Name == "" {
			return errors.ConfigError("source entry missing name").
				UserAction().
				Build()
		}
		if _, dup := seen[src.Name]; dup {
			return errors.ConfigError(fmt.Sprintf("duplicate source %q", src.Name)).
				WithContext("source", src.Name).
				Build()
		}
		seen[src.Name] = struct{}{}
		if !src.PipelineType.Valid() {
			return errors.ConfigError(fmt.Sprintf("source %q has unknown pipeline type %q", src.Name, src.PipelineType)).
				WithContext("source", src.Name).
				WithContext("pipeline_type", string(src.PipelineType)).
				WithContext("hint", "use one of: web_scraping, file_processing, stream_processing").
				UserAction().
				Build()
		}
	}
	return nil
}

// SourceType returns the declared pipeline type for a source name,
// or ok=false when the source is not declared.
func (c *Config) SourceType(name string) (metrics.PipelineType, bool) {
	for _, src := range c.Sources {
		if src.Name == name {
			return src.PipelineType, true
		}
	}
	return "", false
}
