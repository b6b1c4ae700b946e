// Package logging provides structured logging utilities for the avail CLI.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
// All diagnostics go to stderr so that stdout stays reserved for the
// availability output itself.
package logging
