// Package aggregate combines finalized per-source run metrics into
// statistically defensible cross-source aggregates.
//
// The package exists to prevent one specific historical mistake: averaging a
// web-scraping HTTP success rate with file-processing and stream rates as if
// they measured the same thing. Every aggregation call therefore passes a
// compatibility gate first: universal metrics (quality pass rate, volume
// counts) combine across any source mix, while extraction-layer metrics only
// combine within one pipeline type. Weighted methods use records_written as the
// weight so each source influences the aggregate in proportion to how much
// of the corpus it actually produced.
//
// Inputs are immutable snapshots; aggregation is a pure computation that
// returns new Result values with a per-source breakdown for auditability.
package aggregate
