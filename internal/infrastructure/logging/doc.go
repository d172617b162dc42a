// Package logging provides structured logging built on log/slog.
//
// All components receive a *Logger (usually narrowed with With) rather than
// using a package-level logger, so tests can substitute their own.
package logging
