package metrics

import "fmt"

// PipelineType identifies the data-acquisition strategy for a source.
// Extraction-layer metrics are only comparable between runs that share a
// pipeline type; the aggregation layer enforces this.
type PipelineType string

const (
	// PipelineWebScraping covers HTTP fetch plus HTML parsing sources (BBC Somali).
	PipelineWebScraping PipelineType = "web_scraping"
	// PipelineFileProcessing covers bulk dump extraction (Wikipedia, Språkbanken).
	PipelineFileProcessing PipelineType = "file_processing"
	// PipelineStreamProcessing covers streamed dataset reads (HuggingFace).
	PipelineStreamProcessing PipelineType = "stream_processing"
)

// Valid reports whether pt is one of the known pipeline types.
func (pt PipelineType) Valid() bool {
	switch pt {
	case PipelineWebScraping, PipelineFileProcessing, PipelineStreamProcessing:
		return true
	}
	return false
}

func (pt PipelineType) String() string { return string(pt) }

// ParsePipelineType converts a string into a PipelineType, rejecting unknowns.
func ParsePipelineType(s string) (PipelineType, error) {
	pt := PipelineType(s)
	if !pt.Valid() {
		return "", fmt.Errorf("unknown pipeline type: %q", s)
	}
	return pt, nil
}
