// File: entry.go
// Title: Log Entry
// Description: A single log record and the flattening of it into the
//              ordered key/value pairs every formatter renders.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with comprehensive log entry structure
// - 2026-10-18 v0.2.0: Run ID replaces request/user context
// - 2026-10-18 v0.3.0: Ordered pair view shared by the formatters

package log

import (
	"sort"
	"time"
)

// Fields are key/value pairs attached to an entry
type Fields map[string]interface{}

// Entry is one log record
type Entry struct {
	Time     time.Time
	Level    Level
	Message  string
	Logger   string
	RunID    string // correlates the entries of one CLI invocation
	Fields   Fields
	Err      error
	Duration time.Duration // set by timers, zero otherwise
}

type pair struct {
	key   string
	value interface{}
}

// userPairs returns the entry fields sorted by key. Error values are
// replaced by their message.
func (e *Entry) userPairs() []pair {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]pair, len(keys))
	for i, k := range keys {
		v := e.Fields[k]
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		pairs[i] = pair{k, v}
	}
	return pairs
}

func (e *Entry) durationMillis() float64 {
	return float64(e.Duration.Microseconds()) / 1000
}
