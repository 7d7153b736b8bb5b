package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/soomaali-corpus/corpusmetrics/internal/foundation/errors"
	"github.com/soomaali-corpus/corpusmetrics/internal/metrics"
)

// Schema versions for exported metrics documents. Evolution is additive-only
// within a major version: 1.0 flat statistics, 2.0 flat plus semantics and
// deprecation annotations, 3.0 adds the layered view.
const (
	SchemaVersionFlat     = "1.0"
	SchemaVersionSemantic = "2.0"
	SchemaVersionLayered  = "3.0"
)

// LegacyMetrics is the backward-compatible flat view embedded in every
// export for consumers that predate the layered model.
type LegacyMetrics struct {
	Statistics          map[string]any    `json:"statistics"`
	Semantics           map[string]string `json:"_metric_semantics,omitempty"`
	DeprecationWarnings []string          `json:"_deprecation_warnings,omitempty"`
}

// Document is one pipeline run's exported metrics. The underscore-prefixed
// fields and layered_metrics.{connectivity,extraction,quality,volume} are the
// stable contract the dashboard generator reads.
type Document struct {
	SchemaVersion      string                  `json:"_schema_version"`
	PipelineType       metrics.PipelineType    `json:"_pipeline_type"`
	Timestamp          time.Time               `json:"_timestamp"`
	RunID              string                  `json:"_run_id"`
	Source             string                  `json:"_source"`
	LayeredMetrics     *metrics.LayeredMetrics `json:"layered_metrics,omitempty"`
	LegacyMetrics      LegacyMetrics           `json:"legacy_metrics"`
	ValidationWarnings []string                `json:"_validation_warnings,omitempty"`
}

// JSONExporter serializes finalized runs to versioned JSON files.
type JSONExporter struct {
	dir            string
	includeLayered bool
	compat         CompatContext
	now            func() time.Time
}

// NewJSONExporter creates an exporter writing into dir. includeLayered
// disables the layered section for legacy-only consumers.
func NewJSONExporter(dir string, includeLayered bool) *JSONExporter {
	return &JSONExporter{
		dir:            dir,
		includeLayered: includeLayered,
		compat:         DefaultCompatContext(),
		now:            time.Now,
	}
}

// BuildDocument assembles the export document for a finalized collector.
// Cross-layer validation warnings are embedded, never fatal here.
func (e *JSONExporter) BuildDocument(c *metrics.Collector) Document {
	lm := c.Layered()
	snap := c.Snapshot()

	// A legacy-only document carries no layered section, so it must not
	// advertise the layered schema version.
	schema := SchemaVersionLayered
	if !e.includeLayered {
		schema = SchemaVersionSemantic
	}

	doc := Document{
		SchemaVersion: schema,
		PipelineType:  lm.PipelineType,
		Timestamp:     e.now().UTC(),
		RunID:         lm.RunID,
		Source:        lm.Source,
		LegacyMetrics: LegacyMetrics{
			Statistics:          snap.Statistics,
			Semantics:           snap.Semantics,
			DeprecationWarnings: snap.DeprecationWarnings,
		},
		ValidationWarnings: metrics.ValidateLayered(lm),
	}
	if e.includeLayered {
		doc.LayeredMetrics = &lm
	}
	return doc
}

// Export writes the run's document to {run_id}_processing.json and returns
// the written path.
func (e *JSONExporter) Export(c *metrics.Collector) (string, error) {
	doc := e.BuildDocument(c)
	path := filepath.Join(e.dir, DocumentFileName(doc.RunID))
	if err := WriteDocument(path, doc); err != nil {
		return "", err
	}
	return path, nil
}

// DocumentFileName returns the conventional file name for a run's JSON export.
func DocumentFileName(runID string) string {
	return runID + "_processing.json"
}

// WriteDocument marshals doc and writes it atomically enough for a metrics
// directory consumed by pollers: write then rename.
func WriteDocument(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.WrapError(err, errors.CategoryExport, "marshal metrics document").
			WithContext("run_id", doc.RunID).Build()
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryExport, "write metrics document").
			WithContext("path", path).Build()
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.WrapError(err, errors.CategoryExport, "rename metrics document").
			WithContext("path", path).Build()
	}
	return nil
}

// ReadDocument loads and version-dispatches one exported metrics file.
func ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, errors.WrapError(err, errors.CategoryExport, "read metrics document").
			WithContext("path", path).Build()
	}
	return ParseDocument(data)
}

// ParseDocument decodes an exported document of any supported schema version.
// 1.0 and 2.0 files carry only flat statistics; their legacy metric names are
// normalized to canonical names through the default compatibility context so
// downstream aggregation sees one vocabulary.
func ParseDocument(data []byte) (Document, error) {
	var header struct {
		SchemaVersion string `json:"_schema_version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return Document{}, errors.WrapError(err, errors.CategoryExport, "parse metrics document").Build()
	}

	switch header.SchemaVersion {
	case SchemaVersionLayered:
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, errors.WrapError(err, errors.CategoryExport, "parse layered metrics document").Build()
		}
		return doc, nil
	case SchemaVersionFlat, SchemaVersionSemantic:
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, errors.WrapError(err, errors.CategoryExport, "parse legacy metrics document").Build()
		}
		DefaultCompatContext().NormalizeStatistics(doc.PipelineType, doc.LegacyMetrics.Statistics)
		return doc, nil
	case "":
		return Document{}, errors.ExportError("metrics document has no _schema_version").Build()
	default:
		return Document{}, errors.ExportError(fmt.Sprintf("unsupported schema version %q", header.SchemaVersion)).Build()
	}
}

// SourceMetricsFromDocument flattens a parsed document into the aggregation
// input shape: source identity, volume, and metric values.
func SourceMetricsFromDocument(doc Document) (source, runID string, pt metrics.PipelineType, values map[string]float64, volume int64) {
	values = make(map[string]float64)
	for name, raw := range doc.LegacyMetrics.Statistics {
		switch v := raw.(type) {
		case float64:
			values[name] = v
		case int64:
			values[name] = float64(v)
		case json.Number:
			if f, err := v.Float64(); err == nil {
				values[name] = f
			}
		}
	}
	if doc.LayeredMetrics != nil {
		lm := *doc.LayeredMetrics
		values[metrics.MetricQualityPassRate] = lm.Quality.QualityPassRate()
		values[metrics.MetricDeduplicationRate] = lm.Quality.DeduplicationRate()
		values[metrics.MetricRecordsWritten] = float64(lm.Volume.RecordsWritten)
		values[metrics.MetricBytesDownloaded] = float64(lm.Volume.BytesDownloaded)
		if lm.Extraction != nil {
			for name, value := range lm.Extraction.DerivedRates() {
				values[name] = value
			}
		}
		volume = lm.Volume.RecordsWritten
	} else if v, ok := values[metrics.MetricRecordsWritten]; ok {
		volume = int64(v)
	}
	return doc.Source, doc.RunID, doc.PipelineType, values, volume
}
