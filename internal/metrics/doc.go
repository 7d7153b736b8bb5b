// Package metrics defines the layered metric model for corpus collection runs
// and the per-run Collector that produces it.
//
// A run's observations split into four layers: Connectivity (reaching the
// source), Extraction (the acquisition strategy, one variant per pipeline
// type), Quality (filtering) and Volume (what was kept). The extraction layer
// is a closed set of variants; constructing the wrong variant for a declared
// pipeline type fails immediately rather than producing a record with zeroed
// fields.
//
// Layer records are frozen at run end and consumed by the aggregate and
// export packages. Validation distinguishes soft warnings, which are
// accumulated and embedded in exports, from construction failures, which are
// hard errors.
package metrics
