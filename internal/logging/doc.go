// Package logging assembles the structured slog loggers used across Casper.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and mirrors configured output to a log file under the configured
// log directory. The package also provides a no-op logger for tests.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits log lines with the same shape.
package logging
