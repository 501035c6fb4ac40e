// File: logger.go
// Title: Structured Logger
// Description: Leveled logger with persistent fields, a per-run
//              correlation ID and a mapping from structured error
//              severities to log levels. Derived loggers share one sink,
//              so concurrent writers never interleave lines.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging
// - 2026-10-18 v0.2.0: Run ID context, serialized writes, dropped async mode
// - 2026-10-18 v0.3.0: Immutable loggers over a shared sink

package log

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"

	mlerror "github.com/msto63/mlang/foundation/core/error"
)

// Config configures NewWithConfig
type Config struct {
	Level  Level
	Format Format
	Output io.Writer // default: stderr
	Name   string
}

// sink is the destination shared by a logger and everything derived from it
type sink struct {
	mu        sync.Mutex
	out       io.Writer
	formatter Formatter
	min       Level
}

func (s *sink) write(e *Entry) {
	line, err := s.formatter.Format(e)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.Write(line)
}

// Logger writes structured entries. A Logger is never modified after
// construction; With* methods return new loggers.
type Logger struct {
	sink   *sink
	name   string
	runID  string
	fields Fields
}

// NewWithConfig creates a logger from cfg
func NewWithConfig(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		sink: &sink{out: out, formatter: newFormatter(cfg.Format), min: cfg.Level},
		name: cfg.Name,
	}
}

// Discard returns a logger that drops every entry
func Discard() *Logger {
	return NewWithConfig(Config{Level: LevelFatal + 1, Output: io.Discard})
}

var fallback = NewWithConfig(Config{Level: LevelInfo, Format: FormatText, Name: "mlang"})

// Default returns the logger used by components constructed without one.
// It writes text at info level to stderr.
func Default() *Logger {
	return fallback
}

func (l *Logger) derive() *Logger {
	c := *l
	c.fields = make(Fields, len(l.fields)+1)
	for k, v := range l.fields {
		c.fields[k] = v
	}
	return &c
}

// WithField returns a logger that adds key=value to every entry
func (l *Logger) WithField(key string, value interface{}) *Logger {
	c := l.derive()
	c.fields[key] = value
	return c
}

// WithRunID returns a logger that tags every entry with runID
func (l *Logger) WithRunID(runID string) *Logger {
	c := l.derive()
	c.runID = runID
	return c
}

// Enabled reports whether entries at level are written
func (l *Logger) Enabled(level Level) bool {
	return level >= l.sink.min
}

// Trace, Debug, Info and Warn write msg at their level
func (l *Logger) Trace(msg string, fields ...Fields) { l.emit(LevelTrace, msg, nil, 0, fields) }
func (l *Logger) Debug(msg string, fields ...Fields) { l.emit(LevelDebug, msg, nil, 0, fields) }
func (l *Logger) Info(msg string, fields ...Fields)  { l.emit(LevelInfo, msg, nil, 0, fields) }
func (l *Logger) Warn(msg string, fields ...Fields)  { l.emit(LevelWarn, msg, nil, 0, fields) }

// WarnWithErr logs msg with err attached at warn level
func (l *Logger) WarnWithErr(msg string, err error, fields ...Fields) {
	l.emit(LevelWarn, msg, err, 0, fields)
}

// ErrorWithErr logs msg with err attached at error level
func (l *Logger) ErrorWithErr(msg string, err error, fields ...Fields) {
	l.emit(LevelError, msg, err, 0, fields)
}

// LogError logs err with its own message. For structured errors the level
// follows the severity (low: info, medium: warn, otherwise error) and the
// code, operation and details become error_* fields. Plain errors log at
// error level.
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}

	var se *mlerror.Error
	if !errors.As(err, &se) {
		l.emit(LevelError, err.Error(), err, 0, nil)
		return
	}

	fields := Fields{
		"error_code":     se.Code().String(),
		"error_severity": se.Severity().String(),
	}
	if op := se.Operation(); op != "" {
		fields["error_operation"] = op
	}
	for k, v := range se.Details() {
		fields["error_"+k] = v
	}

	level := LevelError
	switch se.Severity() {
	case mlerror.SeverityLow:
		level = LevelInfo
	case mlerror.SeverityMedium:
		level = LevelWarn
	}
	l.emit(level, err.Error(), err, 0, []Fields{fields})
}

// StartTimer starts timing operation; see Timer
func (l *Logger) StartTimer(operation string) *Timer {
	return &Timer{logger: l, operation: operation, start: time.Now(), fields: Fields{}}
}

func (l *Logger) emit(level Level, msg string, err error, elapsed time.Duration, extra []Fields) {
	if !l.Enabled(level) {
		return
	}

	e := &Entry{
		Time:     time.Now(),
		Level:    level,
		Message:  msg,
		Logger:   l.name,
		RunID:    l.runID,
		Fields:   make(Fields, len(l.fields)),
		Err:      err,
		Duration: elapsed,
	}
	for k, v := range l.fields {
		e.Fields[k] = v
	}
	for _, set := range extra {
		for k, v := range set {
			e.Fields[k] = v
		}
	}
	l.sink.write(e)
}
