// Package logging provides structured logging configuration for swaggerstub.
//
// This package wraps log/slog to provide consistent logging across the ledger,
// resolver and interception session. It supports configurable log levels and
// output formats.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    Format: logging.FormatText,
//	})
//
//	logger.Debug("resolved", "action", "get", "path", "/v2/pets/1", "status", 200)
//
// # Integration
//
// Components should accept a *slog.Logger in their constructor or via an option.
// If no logger is provided, use logging.Nop() for a no-op logger.
package logging
