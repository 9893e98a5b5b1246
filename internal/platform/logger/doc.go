// Package logger provides structured logging for the application.
//
// It builds a log/slog JSON (or text) handler from configuration and
// carries request-scoped loggers through context.Context.
package logger
