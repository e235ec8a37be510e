// Package logging assembles structured slog loggers and formatting helpers used
// across scrapurr.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so recorder code can tag log
// lines with the run identifier, capture target, and pipeline step. Every run
// also appends a JSON copy of its records to a per-run file under the
// configured log directory; CleanupOldLogs prunes those files.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape as the rest of the system.
package logging
