// ============================================================================
// mLANG - Front end for a small imperative language
// ============================================================================
//
// Package:     logging
// Description: Logger configuration derived from the application config
// Author:      msto63
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package logging

import (
	"github.com/msto63/mlang/pkg/core/config"
)

// ConfigFor derives a logger configuration from the [general] section.
// verbose forces debug level. The log file is opened by the caller.
func ConfigFor(cfg *config.Config, serviceName string, verbose bool) LoggerConfig {
	lc := DefaultLoggerConfig(serviceName)
	lc.Level = cfg.General.LogLevel
	lc.Format = cfg.General.LogFormat
	if verbose {
		lc.Level = "debug"
	}
	return lc
}
