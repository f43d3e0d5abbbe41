// Package logging provides structured logging for routecost.
//
// The package wraps log/slog with:
//   - JSON and text output formats
//   - Level parsing from configuration strings
//   - Context-aware logging that picks up request and model IDs
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//	logger.SetDefault()
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "estimate computed", "model", "gpt-4o")
//
// Packages that do not receive a Logger explicitly log through
// slog.Default() with a "component" attribute, so calling SetDefault
// once at startup routes all output through the configured handler.
package logging
