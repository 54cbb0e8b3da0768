// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different
// environments (development vs production). The core pipeline packages do
// no printing of their own; everything user-visible goes through a logger
// built here by the command layer.
//
// # Run Correlation
//
// WithRunID attaches a unique run_id field to the logger so every line of a
// single invocation can be correlated, which matters when traces for tens
// of thousands of table entries are being emitted.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log = logger.WithRunID(log)
//	log.Info("table parsed")
package logger
