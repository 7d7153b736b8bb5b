package logfields

import (
	"errors"
	"testing"
)

func TestAttrKeys(t *testing.T) {
	cases := []struct {
		name string
		key  string
		got  string
	}{
		{"run id", KeyRunID, RunID("abc").Key},
		{"source", KeySource, Source("bbc_somali").Key},
		{"pipeline type", KeyPipelineType, PipelineType("web_scraping").Key},
		{"metric", KeyMetric, Metric("quality_pass_rate").Key},
		{"path", KeyPath, Path("/tmp/x.json").Key},
		{"duration", KeyDurationMS, DurationMS(12.5).Key},
		{"total volume", KeyTotalVolume, TotalVolume(99).Key},
		{"error", KeyError, Error(errors.New("boom")).Key},
	}
	for _, tc := range cases {
		if tc.got != tc.key {
			t.Errorf("%s: expected key %q, got %q", tc.name, tc.key, tc.got)
		}
	}
}

func TestErrorAttrValues(t *testing.T) {
	if v := Error(nil).Value.String(); v != "" {
		t.Errorf("nil error should render empty, got %q", v)
	}
	if v := Error(errors.New("boom")).Value.String(); v != "boom" {
		t.Errorf("expected 'boom', got %q", v)
	}
}
