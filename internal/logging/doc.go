// Package logging configures slog handlers and shared structured-logging
// helpers. Console output renders a compact single-line format; JSON output
// uses lowercase level names and RFC3339 timestamps.
package logging
