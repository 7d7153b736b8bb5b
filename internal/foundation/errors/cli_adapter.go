package errors

import (
	"fmt"
	"log/slog"
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI commands.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if classified, ok := AsClassified(err); ok {
		return a.exitCodeFromClassified(classified)
	}

	// Fallback for unclassified errors
	return 1
}

// exitCodeFromClassified maps ClassifiedError to exit codes.
func (a *CLIErrorAdapter) exitCodeFromClassified(err *ClassifiedError) int {
	switch err.Category() {
	case CategoryValidation:
		return 2 // Invalid usage or malformed input
	case CategoryCompatibility:
		return 3 // Semantically mismatched aggregation inputs
	case CategoryNotFound:
		return 4
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryExport, CategoryStore:
		return 8 // Persistence/serialization error
	case CategoryDaemon, CategoryRuntime:
		return 12 // Runtime error
	case CategoryInternal:
		return 10 // Internal error
	default:
		return 1 // General error
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	classified, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}

	if a.verbose {
		return classified.Error()
	}

	// Compatibility violations keep the full message even non-verbose: naming
	// the conflicting metric and pipeline types is the whole point of the check.
	if classified.IsCategory(CategoryCompatibility) {
		return fmt.Sprintf("Error: %s", classified.Message())
	}

	return fmt.Sprintf("Error: %s (use -v for details)", classified.Message())
}

// LogError logs an error with severity-appropriate level.
func (a *CLIErrorAdapter) LogError(err error) {
	if err == nil {
		return
	}
	if classified, ok := AsClassified(err); ok {
		switch classified.Severity() {
		case SeverityWarning:
			a.logger.Warn(classified.Message(), "category", classified.Category(), "error", classified.Cause())
		case SeverityInfo:
			a.logger.Info(classified.Message(), "category", classified.Category())
		default:
			a.logger.Error(classified.Message(), "category", classified.Category(), "error", classified.Cause())
		}
		return
	}
	a.logger.Error("command failed", "error", err)
}
