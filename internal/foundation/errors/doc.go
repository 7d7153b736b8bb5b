// Package errors provides classified errors for the corpus metrics engine.
//
// Errors carry a category (what subsystem or contract failed), a severity
// (whether the caller should stop), and a retry strategy. The distinction that
// matters most here is between validation warnings, which are accumulated and
// surfaced in exported artifacts without halting a run, and compatibility
// violations, which always fail the calling operation because silently
// averaging semantically mismatched metrics produces misleading numbers.
package errors
