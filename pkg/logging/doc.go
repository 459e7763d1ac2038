// Package logging provides structured logging utilities for the recipe builder.
//
// # Overview
//
// This package wraps the standard library slog package with project defaults
// and conventions for consistent logging across all components. It supports
// environment-based log level configuration, module/version context injection,
// and automatic source location tracking for debug logs.
//
// # Features
//
//   - Structured JSON logging to stderr
//   - Environment-based log level configuration (LOG_LEVEL)
//   - Automatic module and version context
//   - Source location tracking for debug logs
//   - Flexible log level parsing
//   - Integration with standard library log package
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
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("cprpkg", "v1.0.0")
//	    defer slog.Info("application started")
//
//	    // Use slog as normal
//	    slog.Info("processing request", "id", "req-123")
//	    slog.Debug("detailed state", "data", complexObject)
//	    slog.Error("operation failed", "error", err)
//	}
//
// Creating a custom logger:
//
//	logger := logging.NewStructuredLogger("cprpkg", "v2.0.0", "debug")
//	logger.Info("build starting", "recipe", "cpr/1.2.0")
//
// Setting explicit log level:
//
//	logging.SetDefaultStructuredLoggerWithLevel("cprpkg", "v1.0.0", "warn")
//
// Converting standard library logger:
//
//	stdLogger := logging.NewLogLogger(slog.LevelInfo, false)
//	stdLogger.Println("legacy log message")
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls logging verbosity:
//
//	LOG_LEVEL=debug cprpkg create
//	LOG_LEVEL=error cprpkg deps
//
// If LOG_LEVEL is not set, defaults to INFO level.
//
// # Output Format
//
// All logs are written to stderr in JSON format:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "build started",
//	    "module": "cprpkg",
//	    "version": "v1.0.0",
//	    "recipe": "cpr/1.2.0"
//	}
//
// Debug logs include source location:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "DEBUG",
//	    "source": {
//	        "function": "builder.(*Builder).Make",
//	        "file": "builder.go",
//	        "line": 45
//	    },
//	    "msg": "rendering build command",
//	    "module": "cprpkg",
//	    "version": "v1.0.0"
//	}
//
// # Best Practices
//
// 1. Set default logger early in main():
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("myapp", version)
//	    defer slog.Info("application started")
//	    // ...
//	}
//
// 2. Include context in log messages:
//
//	slog.Info("artifacts collected",
//	    "files", 12,
//	    "package_dir", "/tmp/pkg",
//	    "duration_ms", 125,
//	)
//
// 3. Use appropriate log levels:
//
//	slog.Debug("copy rule matched", "pattern", p) // Development/troubleshooting
//	slog.Info("build started")                  // Normal operations
//	slog.Warn("copy rule matched no files")     // Potential issues
//	slog.Error("cmake exited non-zero")         // Errors requiring action
//
// 4. Log errors with context:
//
//	slog.Error("build failed",
//	    "error", err,
//	    "build_id", buildID,
//	    "exit_code", code,
//	)
//
// # Integration
//
// This package is used by:
//   - pkg/cli - CLI command logging
//   - pkg/builder - Build pipeline logging
//   - pkg/executor - Subprocess logging
//   - pkg/packager - Artifact collection logging
//
// All components share consistent logging format and configuration.
package logging
