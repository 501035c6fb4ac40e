// File: level.go
// Title: Log Levels
// Description: Ordered log levels with their display names, the aliases
//              accepted from configuration files and terminal colors.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with standard log levels
// - 2026-10-18 v0.2.0: Dropped audit level
// - 2026-10-18 v0.3.0: Table-driven names, coded parse errors

package log

import (
	"strings"

	mlerror "github.com/msto63/mlang/foundation/core/error"
)

// Level orders entries by importance. An entry is written when its level
// is at least the logger's minimum.
type Level int

const (
	// LevelTrace carries per-token lexer events
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	// LevelWarn marks a failed operation the program recovers from,
	// e.g. a source file that does not parse
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]struct {
	name  string
	abbr  string
	color string
}{
	LevelTrace: {"trace", "TRC", "\033[37m"},
	LevelDebug: {"debug", "DBG", "\033[36m"},
	LevelInfo:  {"info", "INF", "\033[32m"},
	LevelWarn:  {"warn", "WRN", "\033[33m"},
	LevelError: {"error", "ERR", "\033[31m"},
	LevelFatal: {"fatal", "FTL", "\033[35m"},
}

var levelAliases = map[string]Level{
	"trace": LevelTrace, "trc": LevelTrace,
	"debug": LevelDebug, "dbg": LevelDebug,
	"info": LevelInfo, "inf": LevelInfo,
	"warn": LevelWarn, "warning": LevelWarn, "wrn": LevelWarn,
	"error": LevelError, "err": LevelError,
	"fatal": LevelFatal, "ftl": LevelFatal,
}

func (l Level) known() bool {
	return l >= LevelTrace && l <= LevelFatal
}

func (l Level) String() string {
	if !l.known() {
		return "unknown"
	}
	return levelNames[l].name
}

func (l Level) abbrev() string {
	if !l.known() {
		return "???"
	}
	return levelNames[l].abbr
}

func (l Level) color() string {
	if !l.known() {
		return colorReset
	}
	return levelNames[l].color
}

// ParseLevel accepts a level name or its three-letter abbreviation in any
// case. Unknown input yields LevelInfo and an INVALID_CONFIG error.
func ParseLevel(s string) (Level, error) {
	if l, ok := levelAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l, nil
	}
	return LevelInfo, mlerror.Newf("unknown log level %q", s).
		WithCode(mlerror.CodeInvalidConfig).
		WithOperation("log.ParseLevel")
}
