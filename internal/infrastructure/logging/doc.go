// Package logging provides structured logging for SmartHome Core.
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
//   - Component loggers for auth, devices, automations and database
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, file
//	  file:
//	    path: "./logs/app.log"
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	devices := logger.Component("devices")
//	devices.Info("device created", "id", 7)
//
// # Security
//
// Never log passwords or session tokens.
package logging
