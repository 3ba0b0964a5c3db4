// Package logger provides structured logging for the card flow engine and the
// sandbox server.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels, and carries request-scoped loggers through a
// context.Context.
package logger
