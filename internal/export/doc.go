// Package export serializes run metrics to the two formats downstream
// consumers read: schema-versioned JSON documents (one per run, consumed by
// the dashboard generator and the aggregation workflow) and Prometheus text
// exposition files (consumed by file-based service discovery).
//
// Schema evolution is additive-only within a major version. The reader
// accepts 1.0 (flat), 2.0 (flat plus semantics) and 3.0 (layered) documents;
// legacy metric names in old files are normalized to the canonical vocabulary
// through an explicit CompatContext value.
package export
