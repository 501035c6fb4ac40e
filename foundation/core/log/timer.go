// File: timer.go
// Title: Operation Timer
// Description: Times one operation and logs its outcome with the elapsed
//              duration attached to the entry.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with performance timing
// - 2026-10-18 v0.2.0: Duration recorded on the entry instead of a field
// - 2026-10-18 v0.3.0: Single finish path for success and failure

package log

import "time"

// Timer measures one operation. Success is logged at debug level as
// "<operation> completed", failure at warn level as "<operation> failed".
// Only the first Stop or StopWithError has an effect.
type Timer struct {
	logger    *Logger
	operation string
	start     time.Time
	fields    Fields
	done      bool
}

// WithField adds a field to the final entry
func (t *Timer) WithField(key string, value interface{}) *Timer {
	t.fields[key] = value
	return t
}

// Stop logs success and returns the elapsed time, or 0 if already stopped
func (t *Timer) Stop() time.Duration {
	return t.finish(nil)
}

// StopWithError logs the failure with err and returns the elapsed time,
// or 0 if already stopped
func (t *Timer) StopWithError(err error) time.Duration {
	return t.finish(err)
}

func (t *Timer) finish(err error) time.Duration {
	if t.done {
		return 0
	}
	t.done = true
	elapsed := time.Since(t.start)

	t.fields["operation"] = t.operation
	level, msg := LevelDebug, t.operation+" completed"
	if err != nil {
		t.fields["success"] = false
		level, msg = LevelWarn, t.operation+" failed"
	}
	t.logger.emit(level, msg, err, elapsed, []Fields{t.fields})
	return elapsed
}
