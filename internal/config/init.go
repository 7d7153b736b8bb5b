package config

import (
	"fmt"
	"os"
)

const exampleConfig = `# corpusmetrics configuration
metrics_dir: ./metrics

sources:
  - name: bbc_somali
    pipeline_type: web_scraping
  - name: voa_somali
    pipeline_type: web_scraping
  - name: wikipedia_so_dump
    pipeline_type: file_processing
  - name: radio_mogadishu
    pipeline_type: stream_processing

export:
  legacy_only: false
  prometheus:
    enabled: true
    dir: ./metrics
    namespace: corpusmetrics

daemon:
  watch: true
  debounce: 2s
  export_interval: 15m
  nats:
    enabled: false
    url: nats://localhost:4222
    subject: corpusmetrics.summary

store:
  path: ./corpusmetrics.db
`

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
