// Package daemon keeps the corpus-wide aggregate view current: it watches
// the metrics directory for exported run documents, records run history,
// and rebuilds the summary on file changes and on a periodic schedule.
package daemon
