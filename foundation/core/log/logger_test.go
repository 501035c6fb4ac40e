// File: logger_test.go
// Title: Logger Tests
// Description: Tests for level filtering, derived loggers, formatters,
//              timers and structured error logging.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial logger tests
// - 2026-10-18 v0.2.0: Run ID, timer and LogError tests
// - 2026-10-18 v0.3.0: Shared sink and coded parse errors

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	mlerror "github.com/msto63/mlang/foundation/core/error"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewWithConfig(Config{Level: level, Format: format, Output: buf, Name: "test"}), buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatJSON)

	logger.Trace("hidden")
	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	logger.ErrorWithErr("shown too", errors.New("boom"))

	lines := decodeLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %s", len(lines), buf.String())
	}
	if lines[0]["level"] != "warn" || lines[1]["level"] != "error" {
		t.Errorf("Unexpected levels: %v, %v", lines[0]["level"], lines[1]["level"])
	}
	if logger.Enabled(LevelInfo) || !logger.Enabled(LevelWarn) {
		t.Error("Enabled() should follow the minimum level")
	}
}

func TestLogger_DerivedLoggers(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatJSON)

	child := logger.WithField("component", "parser").WithRunID("3f2c9a10-aaaa-bbbb-cccc-000000000000")
	child.Info("parsed", Fields{"statements": 3, "component": "lexer"})
	logger.Info("parent")

	lines := decodeLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0]["component"] != "lexer" {
		t.Errorf("Call fields should override context fields, got %v", lines[0]["component"])
	}
	if lines[0]["statements"] != float64(3) {
		t.Errorf("Expected statements=3, got %v", lines[0]["statements"])
	}
	if lines[0]["run_id"] != "3f2c9a10-aaaa-bbbb-cccc-000000000000" {
		t.Errorf("Expected run_id, got %v", lines[0]["run_id"])
	}
	if _, ok := lines[1]["component"]; ok {
		t.Error("WithField must not modify the parent logger")
	}
	if _, ok := lines[1]["run_id"]; ok {
		t.Error("WithRunID must not modify the parent logger")
	}
	if lines[1]["logger"] != "test" {
		t.Errorf("Expected logger=test, got %v", lines[1]["logger"])
	}
}

func TestLogger_ReservedKeysWin(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)
	logger.Info("real", Fields{"message": "fake", "level": "fatal"})

	line := decodeLines(t, buf)[0]
	if line["message"] != "real" || line["level"] != "info" {
		t.Errorf("Fields must not replace message or level: %v", line)
	}
}

func TestFormatters(t *testing.T) {
	at := time.Date(2026, 10, 18, 9, 30, 5, 0, time.UTC)
	entry := &Entry{
		Time:    at,
		Level:   LevelInfo,
		Message: "tokenized",
		Logger:  "mlang",
		RunID:   "3f2c9a10-aaaa",
		Fields:  Fields{"tokens": 5, "file": "loop.ml", "note": "two words"},
	}

	tests := []struct {
		name      string
		formatter Formatter
		want      string
	}{
		{"text", textFormatter{clock: "15:04:05"},
			"09:30:05 [INF] {mlang} (run=3f2c9a10) tokenized [file=loop.ml note=two words tokens=5]\n"},
		{"text without clock", textFormatter{},
			"[INF] {mlang} (run=3f2c9a10) tokenized [file=loop.ml note=two words tokens=5]\n"},
		{"logfmt", logfmtFormatter{},
			`timestamp=2026-10-18T09:30:05Z level=info message=tokenized logger=mlang run_id=3f2c9a10-aaaa file=loop.ml note="two words" tokens=5` + "\n"},
		{"console", consoleFormatter{textFormatter{}},
			"\033[32m[INF] {mlang} (run=3f2c9a10) tokenized [file=loop.ml note=two words tokens=5]\033[0m\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.formatter.Format(entry)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, string(got))
			}
		})
	}
}

func TestLogfmtFormatter_ErrorAndDuration(t *testing.T) {
	entry := &Entry{
		Level:    LevelWarn,
		Message:  "parse failed",
		Fields:   Fields{"empty": ""},
		Err:      errors.New(`expected "DONE"`),
		Duration: 1500 * time.Microsecond,
	}
	got, _ := logfmtFormatter{}.Format(entry)

	for _, want := range []string{`message="parse failed"`, `empty=""`, `error="expected \"DONE\""`, "duration_ms=1.500"} {
		if !strings.Contains(string(got), want) {
			t.Errorf("Expected %s in %q", want, string(got))
		}
	}
}

func TestLogger_LogError(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatJSON)

	syntax := mlerror.New("expected ENDIF").
		WithCode(mlerror.CodeSyntax).
		WithOperation("lang.Parse").
		WithDetail("line", 4)
	logger.LogError(syntax)
	logger.LogError(mlerror.New("could not read").WithCode(mlerror.CodeIOError))
	logger.LogError(mlerror.New("store broken").WithCode(mlerror.CodeDatabaseError))
	logger.LogError(errors.New("plain failure"))
	logger.LogError(nil)

	lines := decodeLines(t, buf)
	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines, got %d", len(lines))
	}

	wantLevels := []string{"info", "warn", "error", "error"}
	for i, want := range wantLevels {
		if lines[i]["level"] != want {
			t.Errorf("Line %d: expected level %s, got %v", i, want, lines[i]["level"])
		}
	}
	if lines[0]["error_code"] != "LANG_SYNTAX" || lines[0]["error_operation"] != "lang.Parse" {
		t.Errorf("Unexpected error fields: %v", lines[0])
	}
	if lines[0]["error_line"] != float64(4) {
		t.Errorf("Expected error_line 4, got %v", lines[0]["error_line"])
	}
	details, ok := lines[0]["error_details"].(map[string]interface{})
	if !ok || details["code"] != "LANG_SYNTAX" {
		t.Errorf("Expected error_details for structured error, got %v", lines[0]["error_details"])
	}
	if _, ok := details["stack_trace"]; ok {
		t.Error("error_details must not carry the stack trace")
	}
	if _, ok := lines[3]["error_details"]; ok {
		t.Error("Plain errors have no error_details")
	}
}

func TestLogger_ConcurrentWrites(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.WithField("worker", n).Info("tick")
		}(i)
	}
	wg.Wait()

	if got := len(decodeLines(t, buf)); got != 20 {
		t.Errorf("Expected 20 intact lines, got %d", got)
	}
}

func TestTimer(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatJSON)

	timer := logger.StartTimer("parse").WithField("file", "a.ml")
	time.Sleep(time.Millisecond)
	if d := timer.Stop(); d <= 0 {
		t.Errorf("Expected positive duration, got %v", d)
	}
	if d := timer.Stop(); d != 0 {
		t.Errorf("Second Stop should return 0, got %v", d)
	}

	failing := logger.StartTimer("tokenize")
	failing.StopWithError(errors.New("bad input"))
	if d := failing.Stop(); d != 0 {
		t.Errorf("Stop after StopWithError should return 0, got %v", d)
	}

	lines := decodeLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0]["message"] != "parse completed" || lines[0]["level"] != "debug" || lines[0]["file"] != "a.ml" {
		t.Errorf("Unexpected completion entry: %v", lines[0])
	}
	if _, ok := lines[0]["duration_ms"]; !ok {
		t.Error("Expected duration_ms on completion entry")
	}
	if lines[1]["message"] != "tokenize failed" || lines[1]["level"] != "warn" ||
		lines[1]["success"] != false || lines[1]["error"] != "bad input" {
		t.Errorf("Unexpected failure entry: %v", lines[1])
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	levels := map[string]Level{"trace": LevelTrace, "DEBUG": LevelDebug, "warning": LevelWarn, " err ": LevelError, "FTL": LevelFatal}
	for in, want := range levels {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if l, err := ParseLevel("loud"); !mlerror.HasCode(err, mlerror.CodeInvalidConfig) || l != LevelInfo {
		t.Errorf("ParseLevel(loud) = %v, %v; want info and INVALID_CONFIG", l, err)
	}

	formats := map[string]Format{"json": FormatJSON, "Text": FormatText, "console": FormatConsole, " logfmt": FormatLogfmt}
	for in, want := range formats {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if f, err := ParseFormat("xml"); !mlerror.HasCode(err, mlerror.CodeInvalidConfig) || f != FormatJSON {
		t.Errorf("ParseFormat(xml) = %v, %v; want json and INVALID_CONFIG", f, err)
	}

	if Level(42).String() != "unknown" || Level(42).abbrev() != "???" || Format(9).String() != "unknown" {
		t.Error("Out-of-range values should render as unknown")
	}
}

func TestDiscardAndDefault(t *testing.T) {
	logger := Discard()
	if logger.Enabled(LevelFatal) {
		t.Error("Discard logger should not enable any level")
	}
	logger.ErrorWithErr("dropped", errors.New("boom"))

	if Default() == nil || Default().Enabled(LevelDebug) || !Default().Enabled(LevelInfo) {
		t.Error("Default logger should log from info level")
	}
}
