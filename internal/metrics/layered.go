package metrics

import (
	"encoding/json"
	"fmt"
)

// LayeredMetrics is the four-tier decomposition of one pipeline run:
// Connectivity (could we reach the source), Extraction (did the strategy
// work), Quality (did the content survive filtering), Volume (what did we
// actually keep). It replaces the single ambiguous "success rate" the legacy
// flat statistics carried.
type LayeredMetrics struct {
	RunID        string       `json:"run_id"`
	Source       string       `json:"source"`
	PipelineType PipelineType `json:"pipeline_type"`

	Connectivity ConnectivityMetrics `json:"connectivity"`
	Extraction   ExtractionMetrics   `json:"extraction"`
	Quality      QualityMetrics      `json:"quality"`
	Volume       VolumeMetrics       `json:"volume"`
}

// layeredDoc is the wire shape; extraction stays raw until the pipeline type
// is known so the correct variant can be decoded.
type layeredDoc struct {
	RunID        string              `json:"run_id"`
	Source       string              `json:"source"`
	PipelineType PipelineType        `json:"pipeline_type"`
	Connectivity ConnectivityMetrics `json:"connectivity"`
	Extraction   json.RawMessage     `json:"extraction"`
	Quality      QualityMetrics      `json:"quality"`
	Volume       VolumeMetrics       `json:"volume"`
}

// MarshalJSON implements json.Marshaler.
func (lm LayeredMetrics) MarshalJSON() ([]byte, error) {
	extraction, err := json.Marshal(lm.Extraction)
	if err != nil {
		return nil, fmt.Errorf("marshal extraction layer: %w", err)
	}
	return json.Marshal(layeredDoc{
		RunID:        lm.RunID,
		Source:       lm.Source,
		PipelineType: lm.PipelineType,
		Connectivity: lm.Connectivity,
		Extraction:   extraction,
		Quality:      lm.Quality,
		Volume:       lm.Volume,
	})
}

// UnmarshalJSON implements json.Unmarshaler, dispatching the extraction layer
// to the variant declared by pipeline_type.
func (lm *LayeredMetrics) UnmarshalJSON(data []byte) error {
	var doc layeredDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if !doc.PipelineType.Valid() {
		return fmt.Errorf("unknown pipeline type: %q", doc.PipelineType)
	}
	extraction, err := UnmarshalExtraction(doc.PipelineType, doc.Extraction)
	if err != nil {
		return err
	}
	lm.RunID = doc.RunID
	lm.Source = doc.Source
	lm.PipelineType = doc.PipelineType
	lm.Connectivity = doc.Connectivity
	lm.Extraction = extraction
	lm.Quality = doc.Quality
	lm.Volume = doc.Volume
	return nil
}

// ValidateLayered runs per-layer local validation plus cross-layer consistency
// checks. All findings are warnings: a run should still produce usable output
// even when a counter is slightly off upstream. Hard failures belong to
// construction (NewExtraction) and aggregation (the compatibility gate).
func ValidateLayered(lm LayeredMetrics) []string {
	var warnings []string

	appendLayer := func(layer string, ws []string) {
		for _, w := range ws {
			warnings = append(warnings, layer+": "+w)
		}
	}
	_, ws := lm.Connectivity.Validate()
	appendLayer("connectivity", ws)
	if lm.Extraction != nil {
		_, ws = lm.Extraction.Validate()
		appendLayer("extraction", ws)
	} else {
		warnings = append(warnings, "extraction: layer is missing")
	}
	_, ws = lm.Quality.Validate()
	appendLayer("quality", ws)
	_, ws = lm.Volume.Validate()
	appendLayer("volume", ws)

	// Volume cannot exceed what survived filtering.
	if lm.Volume.RecordsWritten > lm.Quality.RecordsPassedFilters {
		warnings = append(warnings, fmt.Sprintf(
			"volume.records_written (%d) exceeds quality.records_passed_filters (%d)",
			lm.Volume.RecordsWritten, lm.Quality.RecordsPassedFilters))
	}

	// A run that never connected cannot have extracted anything.
	if !lm.Connectivity.ConnectionSuccessful && extractionActivity(lm.Extraction) {
		warnings = append(warnings, "extraction counters are non-zero although the connection never succeeded")
	}

	// The extraction layer's per-item output feeds quality.records_received.
	if produced, known := extractionOutput(lm.Extraction); known && produced != lm.Quality.RecordsReceived {
		warnings = append(warnings, fmt.Sprintf(
			"extraction output (%d) does not match quality.records_received (%d)",
			produced, lm.Quality.RecordsReceived))
	}

	return warnings
}

// extractionActivity reports whether any extraction counter is non-zero.
func extractionActivity(em ExtractionMetrics) bool {
	switch e := em.(type) {
	case WebScrapingExtraction:
		return e.HTTPRequestsAttempted > 0 || e.PagesParsed > 0 || e.ContentExtracted > 0
	case FileProcessingExtraction:
		return e.FilesProcessed > 0 || e.RecordsExtracted > 0
	case StreamProcessingExtraction:
		return e.BatchesAttempted > 0 || e.RecordsFetched > 0
	}
	return false
}

// extractionOutput returns the per-item record count the extraction layer
// handed to the quality layer. Web scraping has no record-granular output
// (pages are not records), so the check is skipped for it.
func extractionOutput(em ExtractionMetrics) (int64, bool) {
	switch e := em.(type) {
	case FileProcessingExtraction:
		return e.RecordsExtracted, true
	case StreamProcessingExtraction:
		return e.RecordsFetched, true
	}
	return 0, false
}
