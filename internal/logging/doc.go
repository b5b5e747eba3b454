// Package logging assembles structured slog loggers and formatting helpers used
// across labelprint.
//
// It owns the console/JSON handlers, centralizes level and output plumbing, and
// exposes context-aware helpers so pipeline code can tag log lines with the
// run ID and SKU being processed. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
//
// The interactive session writes prompts and reports to stdout, so loggers
// built from configuration send full output to the state-dir log file and only
// warnings and errors to stderr.
package logging
