// Package lwlog provides structured protocol logging for the LWM2M server
// core.
//
// This package defines the Logger interface and Event types for capturing
// registration-lifecycle, DM-transaction, and observation events. It is
// separate from operational logging (slog) - protocol capture provides a
// complete machine-readable event trace for debugging and analysis.
//
// # Basic Usage
//
// Applications configure logging by passing a Logger implementation to
// server.New:
//
//	// For development: log to console via slog
//	logger := lwlog.NewSlogAdapter(slog.Default())
//
//	// For production: write to a binary file
//	logger, _ := lwlog.NewFileLogger("/var/log/lwm2m/server.llog")
//
//	// Both: use MultiLogger
//	logger := lwlog.NewMultiLogger(
//	    lwlog.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
//	srv := server.New(engine, socket, cfg, logger)
//
// # File Format
//
// Log files use CBOR encoding. Reader provides filtered iteration for
// offline analysis.
package lwlog
