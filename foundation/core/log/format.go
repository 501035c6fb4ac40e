// File: format.go
// Title: Log Formats
// Description: JSON lines for machines, a compact text layout for people,
//              the same text colored by level for terminals, and logfmt.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with multiple output formats
// - 2026-10-18 v0.2.0: Sorted fields, run ID output
// - 2026-10-18 v0.3.0: Formatters rebuilt on the shared pair view

package log

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	mlerror "github.com/msto63/mlang/foundation/core/error"
)

// Format selects a Formatter
type Format int

const (
	FormatJSON Format = iota
	FormatText
	FormatConsole
	FormatLogfmt
)

var formatNames = map[Format]string{
	FormatJSON:    "json",
	FormatText:    "text",
	FormatConsole: "console",
	FormatLogfmt:  "logfmt",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFormat maps a format name to its Format. Unknown names yield
// FormatJSON and an INVALID_CONFIG error.
func ParseFormat(s string) (Format, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for f, name := range formatNames {
		if name == want {
			return f, nil
		}
	}
	return FormatJSON, mlerror.Newf("unknown log format %q", s).
		WithCode(mlerror.CodeInvalidConfig).
		WithOperation("log.ParseFormat")
}

// Formatter renders an entry as one output line including the newline
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

func newFormatter(f Format) Formatter {
	switch f {
	case FormatText:
		return textFormatter{clock: "15:04:05"}
	case FormatConsole:
		return consoleFormatter{textFormatter{clock: "15:04:05"}}
	case FormatLogfmt:
		return logfmtFormatter{}
	default:
		return jsonFormatter{}
	}
}

const colorReset = "\033[0m"

type jsonFormatter struct{}

func (jsonFormatter) Format(e *Entry) ([]byte, error) {
	obj := make(map[string]interface{}, len(e.Fields)+8)
	for _, p := range e.userPairs() {
		obj[p.key] = p.value
	}
	obj["timestamp"] = e.Time.Format(time.RFC3339)
	obj["level"] = e.Level.String()
	obj["message"] = e.Message
	if e.Logger != "" {
		obj["logger"] = e.Logger
	}
	if e.RunID != "" {
		obj["run_id"] = e.RunID
	}
	if e.Err != nil {
		obj["error"] = e.Err.Error()
		if details := structuredError(e.Err); details != nil {
			obj["error_details"] = details
		}
	}
	if e.Duration > 0 {
		obj["duration_ms"] = e.durationMillis()
	}

	line, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}

// structuredError decodes the JSON form of errors that provide one,
// without the stack trace
func structuredError(err error) map[string]interface{} {
	m, ok := err.(json.Marshaler)
	if !ok {
		return nil
	}
	raw, mErr := m.MarshalJSON()
	if mErr != nil {
		return nil
	}
	var out map[string]interface{}
	if json.Unmarshal(raw, &out) != nil {
		return nil
	}
	delete(out, "stack_trace")
	return out
}

// textFormatter writes "15:04:05 [INF] {name} (run=3f2c9a10) message [k=v ...]".
// An empty clock layout omits the time.
type textFormatter struct {
	clock string
}

func (f textFormatter) Format(e *Entry) ([]byte, error) {
	var b strings.Builder
	if f.clock != "" {
		b.WriteString(e.Time.Format(f.clock))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "[%s]", e.Level.abbrev())
	if e.Logger != "" {
		fmt.Fprintf(&b, " {%s}", e.Logger)
	}
	if e.RunID != "" {
		id := e.RunID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(&b, " (run=%s)", id)
	}
	b.WriteByte(' ')
	b.WriteString(e.Message)

	if pairs := e.userPairs(); len(pairs) > 0 {
		b.WriteString(" [")
		for i, p := range pairs {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%s=%v", p.key, p.value)
		}
		b.WriteByte(']')
	}
	if e.Err != nil {
		fmt.Fprintf(&b, " error=%q", e.Err.Error())
	}
	if e.Duration > 0 {
		fmt.Fprintf(&b, " duration=%s", e.Duration)
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

type consoleFormatter struct {
	text textFormatter
}

func (f consoleFormatter) Format(e *Entry) ([]byte, error) {
	line, err := f.text.Format(e)
	if err != nil {
		return nil, err
	}
	body := strings.TrimSuffix(string(line), "\n")
	return []byte(e.Level.color() + body + colorReset + "\n"), nil
}

type logfmtFormatter struct{}

func (logfmtFormatter) Format(e *Entry) ([]byte, error) {
	pairs := []pair{
		{"timestamp", e.Time.Format(time.RFC3339)},
		{"level", e.Level.String()},
		{"message", e.Message},
	}
	if e.Logger != "" {
		pairs = append(pairs, pair{"logger", e.Logger})
	}
	if e.RunID != "" {
		pairs = append(pairs, pair{"run_id", e.RunID})
	}
	pairs = append(pairs, e.userPairs()...)
	if e.Err != nil {
		pairs = append(pairs, pair{"error", e.Err.Error()})
	}
	if e.Duration > 0 {
		pairs = append(pairs, pair{"duration_ms", strconv.FormatFloat(e.durationMillis(), 'f', 3, 64)})
	}

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(logfmtValue(p.value))
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// logfmtValue quotes values that are empty or contain spaces, quotes or '='
func logfmtValue(v interface{}) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
