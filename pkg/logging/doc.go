// Package logging provides structured logging utilities for servicemaker.
//
// # Overview
//
// This package wraps the standard library slog package with project defaults
// for consistent logging across all pipeline components. It supports
// environment-based log level configuration, module/version context injection,
// and automatic source location tracking for debug logs.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: Detailed diagnostic information with source location
//   - INFO: General informational messages (default)
//   - WARN/WARNING: Warning messages for potentially problematic situations
//   - ERROR: Error messages for failures requiring attention
//
// # Usage
//
//	func main() {
//	    logging.SetDefaultStructuredLoggerWithLevel("servicemaker", version, "info")
//	    slog.Info("packaging project", "home", home)
//	}
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls logging verbosity when no
// explicit level is passed:
//
//	LOG_LEVEL=debug servicemaker package --project-home ./svc
//
// # Output Format
//
// All logs are written to stderr in JSON format:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "step completed",
//	    "module": "servicemaker",
//	    "version": "v0.4.0",
//	    "step": "build"
//	}
//
// Stdout is left to the external engines and to the final run summary.
package logging
