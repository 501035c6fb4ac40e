package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	mlerror "github.com/msto63/mlang/foundation/core/error"
	"github.com/msto63/mlang/internal/store"
)

type runResult struct {
	stdout string
	stderr string
	err    error
}

// testEnv writes a config whose history lives in a temp directory
func testEnv(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()
	cfgPath = filepath.Join(dir, "mlang.toml")
	content := fmt.Sprintf(`[general]
log_level = "error"
log_format = "text"

[output]
format = "tree"
color = false

[history]
enabled = true
path = %q
`, filepath.Join(dir, "history.db"))

	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return dir, cfgPath
}

func writeSource(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer

	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	defer resetFlags(rootCmd)

	err := Execute()
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestVersion(t *testing.T) {
	_, cfg := testEnv(t)
	res := run(t, "", "--config", cfg, "version")

	if res.err != nil {
		t.Fatalf("version failed: %v", res.err)
	}
	if !strings.HasPrefix(res.stdout, "mlang v0.2.0\n") || !strings.Contains(res.stdout, "Language:   1.0.0") {
		t.Errorf("Unexpected version output:\n%s", res.stdout)
	}
}

func TestParse(t *testing.T) {
	dir, cfg := testEnv(t)
	path := writeSource(t, dir, "prog.ml", "LET x = 1\nPRINT x\n")

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"tree", "", []string{"parse", path}, "Block (2)\n  LetStatement x\n"},
		{"compact", "", []string{"parse", "--format", "compact", path}, "LET x = 1\nPRINT x\n"},
		{"stdin", "PRINT 2 + 3 * 4", []string{"parse", "-f", "compact"}, "PRINT 2 + (3 * 4)\n"},
		{"stats", "", []string{"parse", "-f", "compact", "--stats", path}, "ok 2 statements, 7 tokens, 1 variables, depth 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, tt.stdin, append([]string{"--config", cfg}, tt.args...)...)
			if res.err != nil {
				t.Fatalf("parse failed: %v\n%s", res.err, res.stderr)
			}
			if !strings.Contains(res.stdout, tt.want) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.want, res.stdout)
			}
		})
	}
}

func TestLogFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "mlang.log")
	cfg := filepath.Join(dir, "mlang.toml")
	content := fmt.Sprintf("[general]\nlog_level = \"error\"\nlog_format = \"logfmt\"\nlog_file = %q\n\n[history]\nenabled = false\n", logPath)
	if err := os.WriteFile(cfg, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	res := run(t, "PRINT 1", "--config", cfg, "-v", "parse")
	if res.err != nil {
		t.Fatalf("parse failed: %v\n%s", res.err, res.stderr)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Log file not written: %v", err)
	}
	for _, want := range []string{`message="configuration loaded"`, `message="parse completed"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Expected %s in log file, got:\n%s", want, data)
		}
		if !strings.Contains(res.stderr, want) {
			t.Errorf("Expected %s on stderr too, got:\n%s", want, res.stderr)
		}
	}

	blocked := filepath.Join(dir, "blocked.toml")
	content = fmt.Sprintf("[general]\nlog_file = %q\n", filepath.Join(cfg, "mlang.log"))
	if err := os.WriteFile(blocked, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	res = run(t, "PRINT 1", "--config", blocked, "parse")
	if ExitCode(res.err) != 4 || !strings.Contains(res.stderr, "Error [IO_ERROR]") {
		t.Errorf("Expected IO_ERROR with exit code 4, got %d: %s", ExitCode(res.err), res.stderr)
	}
}

func TestParse_JSONStats(t *testing.T) {
	_, cfg := testEnv(t)
	res := run(t, "READ n\nWHILE n > 0\n  LET n = n - 1\nDONE\n", "--config", cfg, "parse", "--json")
	if res.err != nil {
		t.Fatalf("parse failed: %v", res.err)
	}

	var stats map[string]int
	if err := json.Unmarshal([]byte(res.stdout), &stats); err != nil {
		t.Fatalf("Invalid JSON: %v\n%s", err, res.stdout)
	}
	if stats["statements"] != 3 || stats["max_depth"] != 2 || stats["variables"] != 1 {
		t.Errorf("Unexpected stats: %v", stats)
	}
}

func TestParse_SyntaxError(t *testing.T) {
	dir, cfg := testEnv(t)
	path := writeSource(t, dir, "bad.ml", "LET x = 10\nPRINT x + )\n")

	res := run(t, "", "--config", cfg, "parse", path)

	if !mlerror.HasCode(res.err, mlerror.CodeSyntax) {
		t.Fatalf("Expected LANG_SYNTAX, got %v", res.err)
	}
	if code := ExitCode(res.err); code != 2 {
		t.Errorf("Expected exit code 2, got %d", code)
	}
	if !strings.Contains(res.stderr, path+":2:11: error[unexpected-token]") {
		t.Errorf("Expected diagnostic on stderr, got:\n%s", res.stderr)
	}
	if !strings.Contains(res.stderr, "     |           ^") {
		t.Errorf("Expected caret under column 11, got:\n%s", res.stderr)
	}
	if strings.Contains(res.stderr, "Error") {
		t.Errorf("Diagnostic must not be printed twice:\n%s", res.stderr)
	}
	if res.stdout != "" {
		t.Errorf("Expected no tree output, got:\n%s", res.stdout)
	}
}

func TestParse_MissingFile(t *testing.T) {
	dir, cfg := testEnv(t)
	res := run(t, "", "--config", cfg, "parse", filepath.Join(dir, "nope.ml"))

	if !mlerror.HasCode(res.err, mlerror.CodeNotFound) {
		t.Fatalf("Expected NOT_FOUND, got %v", res.err)
	}
	if ExitCode(res.err) != 1 {
		t.Errorf("Expected exit code 1, got %d", ExitCode(res.err))
	}
	if !strings.HasPrefix(res.stderr, "Error [NOT_FOUND]: ") {
		t.Errorf("Unexpected stderr: %q", res.stderr)
	}
}

func TestParse_MissingFileVerbose(t *testing.T) {
	dir, cfg := testEnv(t)
	path := filepath.Join(dir, "nope.ml")
	res := run(t, "", "--config", cfg, "-v", "parse", path)

	if ExitCode(res.err) != 1 {
		t.Fatalf("Expected exit code 1, got %d (%v)", ExitCode(res.err), res.err)
	}
	for _, want := range []string{"Error [NOT_FOUND]: ", "Code: NOT_FOUND", "Severity: low", "Details: {path=" + path + "}"} {
		if !strings.Contains(res.stderr, want) {
			t.Errorf("Expected %q in stderr, got:\n%s", want, res.stderr)
		}
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeSource(t, dir, "mlang.toml", "[parser]\nmax_depth = -1\n")

	res := run(t, "", "--config", cfg, "version")
	if ExitCode(res.err) != 3 {
		t.Errorf("Expected exit code 3 for invalid config, got %d (%v)", ExitCode(res.err), res.err)
	}
}

func TestCheck(t *testing.T) {
	dir, cfg := testEnv(t)
	good := writeSource(t, dir, "good.ml", "LABEL top\nGOTO top\n")
	bad := writeSource(t, dir, "bad.ml", "IF x > 1\n  PRINT x\n")

	res := run(t, "", "--config", cfg, "check", good, bad)

	if ExitCode(res.err) != 2 {
		t.Errorf("Expected exit code 2, got %d (%v)", ExitCode(res.err), res.err)
	}
	if !strings.Contains(res.stdout, good+": ok (2 statements)") {
		t.Errorf("Expected ok line for good file, got:\n%s", res.stdout)
	}
	if !strings.Contains(res.stderr, bad+":") || !strings.Contains(res.stderr, "1 of 2 file(s) failed") {
		t.Errorf("Unexpected stderr:\n%s", res.stderr)
	}

	quiet := run(t, "", "--config", cfg, "check", "-q", good)
	if quiet.err != nil || quiet.stdout != "" {
		t.Errorf("Quiet check should print nothing, got %q (%v)", quiet.stdout, quiet.err)
	}
}

func TestTokens(t *testing.T) {
	_, cfg := testEnv(t)

	res := run(t, "LET a = 1 # 2", "--config", cfg, "tokens")
	if res.err != nil {
		t.Fatalf("tokens failed: %v", res.err)
	}
	if !strings.Contains(res.stdout, "1:11      UNKNOWN") {
		t.Errorf("Expected UNKNOWN token row, got:\n%s", res.stdout)
	}
	if res.stderr != "1 invalid character(s)\n" {
		t.Errorf("Unexpected stderr: %q", res.stderr)
	}

	res = run(t, "x <= 1", "--config", cfg, "tokens", "--json")
	var tokens []tokenJSON
	if err := json.Unmarshal([]byte(res.stdout), &tokens); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(tokens) != 4 || tokens[1].Text != "<=" || tokens[3].Kind != "END" {
		t.Errorf("Unexpected tokens: %+v", tokens)
	}
}

func TestHistory(t *testing.T) {
	dir, cfg := testEnv(t)
	good := writeSource(t, dir, "good.ml", "PRINT 1\n")
	bad := writeSource(t, dir, "bad.ml", "PRINT (1\n")

	run(t, "", "--config", cfg, "parse", good)
	run(t, "", "--config", cfg, "parse", bad)
	run(t, "", "--config", cfg, "--no-history", "parse", good)

	res := run(t, "", "--config", cfg, "history", "list", "--json")
	if res.err != nil {
		t.Fatalf("history list failed: %v", res.err)
	}
	var records []store.Record
	if err := json.Unmarshal([]byte(res.stdout), &records); err != nil {
		t.Fatalf("Invalid JSON: %v\n%s", err, res.stdout)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].SourcePath != bad || records[0].Success || records[0].ErrorCode != "LANG_SYNTAX" {
		t.Errorf("Unexpected newest record: %+v", records[0])
	}
	if records[0].RunID == records[1].RunID || records[0].RunID == "" {
		t.Error("Each invocation should carry its own run ID")
	}

	failed := run(t, "", "--config", cfg, "history", "list", "--failed")
	if !strings.Contains(failed.stdout, "LANG_SYNTAX") || strings.Contains(failed.stdout, good) {
		t.Errorf("Unexpected failed list:\n%s", failed.stdout)
	}

	show := run(t, "", "--config", cfg, "history", "show", records[1].ID[:8])
	if show.err != nil || !strings.Contains(show.stdout, "Statements:  1") {
		t.Errorf("Unexpected show output (%v):\n%s", show.err, show.stdout)
	}

	stats := run(t, "", "--config", cfg, "history", "stats")
	if !strings.Contains(stats.stdout, "Parses:    2 (1 ok, 1 failed)") {
		t.Errorf("Unexpected stats output:\n%s", stats.stdout)
	}

	prune := run(t, "", "--config", cfg, "history", "prune", "--older-than", "1ns")
	if prune.stdout != "deleted 2 record(s) older than 1ns\n" {
		t.Errorf("Unexpected prune output: %q", prune.stdout)
	}

	empty := run(t, "", "--config", cfg, "history", "list")
	if empty.stdout != "no records\n" {
		t.Errorf("Expected empty history, got %q", empty.stdout)
	}

	missing := run(t, "", "--config", cfg, "history", "show", "ffffffff")
	if !mlerror.HasCode(missing.err, mlerror.CodeNotFound) {
		t.Errorf("Expected NOT_FOUND, got %v", missing.err)
	}
}

func TestConfigShow(t *testing.T) {
	_, cfg := testEnv(t)

	res := run(t, "", "--config", cfg, "config", "show", "--format", "yaml")
	if res.err != nil {
		t.Fatalf("config show failed: %v", res.err)
	}
	if !strings.Contains(res.stdout, "max_depth: 256") || !strings.Contains(res.stdout, "color: false") {
		t.Errorf("Unexpected YAML:\n%s", res.stdout)
	}

	bad := run(t, "", "--config", cfg, "config", "show", "--format", "ini")
	if !mlerror.HasCode(bad.err, mlerror.CodeInvalidInput) {
		t.Errorf("Expected INVALID_INPUT, got %v", bad.err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.New("plain"), 1},
		{mlerror.New("x").WithCode(mlerror.CodeSyntax), 2},
		{reported(mlerror.New("x").WithCode(mlerror.CodeDatabaseError)), 4},
	}

	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestDoctor(t *testing.T) {
	_, cfg := testEnv(t)

	res := run(t, "", "--config", cfg, "doctor")
	if res.err != nil {
		t.Fatalf("doctor failed: %v\n%s", res.err, res.stdout)
	}
	for _, want := range []string{"config", "history-db", "history-dir", "parser", "mlang 0.2.0: healthy (4 checks)"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("Expected %q in doctor output:\n%s", want, res.stdout)
		}
	}
}
