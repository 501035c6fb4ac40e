// ============================================================================
// mLANG - Front end for a small imperative language
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating foundation loggers
// Author:      msto63
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	mlerror "github.com/msto63/mlang/foundation/core/error"
	mllog "github.com/msto63/mlang/foundation/core/log"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name
	ServiceName string

	// Log level (trace, debug, info, warn, error, fatal)
	Level string

	// Output format: json, text, console or logfmt (default: json)
	Format string

	// Correlation ID attached to every entry (optional)
	RunID string

	// Primary output (default: stderr)
	Output io.Writer

	// Additional outputs besides the primary one, e.g. a log file
	AdditionalOutputs []io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "json",
	}
}

// NewLogger creates a new foundation logger
func NewLogger(cfg LoggerConfig) *mllog.Logger {
	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}
	if len(cfg.AdditionalOutputs) > 0 {
		output = io.MultiWriter(append([]io.Writer{output}, cfg.AdditionalOutputs...)...)
	}

	logger := mllog.NewWithConfig(mllog.Config{
		Level:  parseLevel(cfg.Level),
		Format: parseFormat(cfg.Format),
		Output: output,
		Name:   cfg.ServiceName,
	})
	if cfg.RunID != "" {
		logger = logger.WithRunID(cfg.RunID)
	}
	return logger
}

// OpenLogFile opens path for appending, creating it and its directory
func OpenLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, mlerror.Wrap(err, "failed to create log directory").
			WithCode(mlerror.CodeIOError).
			WithOperation("logging.OpenLogFile").
			WithDetail("path", path)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, mlerror.Wrap(err, "failed to open log file").
			WithCode(mlerror.CodeIOError).
			WithOperation("logging.OpenLogFile").
			WithDetail("path", path)
	}
	return f, nil
}

// parseLevel converts a string level to mllog.Level, falling back to info
func parseLevel(level string) mllog.Level {
	l, err := mllog.ParseLevel(level)
	if err != nil {
		return mllog.LevelInfo
	}
	return l
}

// parseFormat converts a string format to mllog.Format, falling back to JSON
func parseFormat(format string) mllog.Format {
	f, err := mllog.ParseFormat(strings.TrimSpace(format))
	if err != nil {
		return mllog.FormatJSON
	}
	return f
}
