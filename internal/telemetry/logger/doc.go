// Package logger provides structured logging for lingvo.
//
// It wraps log/slog:
//
//   - logger.go: handler construction, levels, process-wide default
//   - context.go: request ID propagation through context.Context
//   - redact.go: masking of credentials, passwords and Authorization values
//
// Logs go to stderr so that command output on stdout stays machine readable.
package logger
