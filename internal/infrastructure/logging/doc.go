// Package logging provides structured logging for Limbx Core.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Durations written as "42.512s" instead of nanoseconds
//   - Component child loggers (engine, mqtt, api, roster)
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	eng := logger.Component("engine")
//	eng.Info("instance created", "circuit", "rockfit_1")
//	logger.Warn("no light command topic", "device", "r4")
//
// Packages that log accept a small Logger interface (Debug, Info, Warn,
// Error) so *Logger, *slog.Logger and test doubles all satisfy it.
package logging
