package render

import (
	"strings"
	"testing"

	mlerror "github.com/msto63/mlang/foundation/core/error"
	mllog "github.com/msto63/mlang/foundation/core/log"
	"github.com/msto63/mlang/foundation/lang"
	mlparser "github.com/msto63/mlang/foundation/lang/parser"
)

func newEngine(t *testing.T, opts lang.Options) *lang.Engine {
	t.Helper()
	opts.Logger = mllog.Discard()
	engine, err := lang.NewEngine(opts)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

func TestNew_Format(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"tree", FormatTree},
		{"compact", FormatCompact},
		{"", FormatTree},
		{"json", FormatTree},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := New(Options{Format: tt.in}).Format(); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	r := New(Options{})
	out := r.Tokens(mlparser.Tokenize("LET x = 1 & 2"))

	want := "POS       KIND        TEXT\n" +
		"1:1       KEYWORD     LET\n" +
		"1:5       IDENTIFIER  x\n" +
		"1:7       OPERATOR    =\n" +
		"1:9       NUMBER      1\n" +
		"1:11      UNKNOWN     ?\n" +
		"1:13      NUMBER      2\n" +
		"1:14      END         \n"

	if out != want {
		t.Errorf("Unexpected token table:\n%q\nwant:\n%q", out, want)
	}
}

func TestProgram(t *testing.T) {
	result, err := newEngine(t, lang.Options{}).Parse("LET x = 1\nIF x > 0 PRINT x ENDIF")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	compact := New(Options{Format: FormatCompact}).Program(result.Program)
	if compact != "LET x = 1\nIF x > 0 PRINT x ENDIF\n" {
		t.Errorf("Unexpected compact output: %q", compact)
	}

	tree := New(Options{Format: FormatTree}).Program(result.Program)
	if !strings.HasPrefix(tree, "Block (2)\n") || !strings.Contains(tree, "IfStatement") {
		t.Errorf("Unexpected tree output:\n%s", tree)
	}

	if got := New(Options{}).Program(nil); got != "<nil>\n" {
		t.Errorf("Expected <nil>, got %q", got)
	}
}

func TestStats(t *testing.T) {
	out := New(Options{}).Stats(lang.Stats{Statements: 3, Tokens: 12, Variables: 2, MaxDepth: 2, UnresolvedGotos: 1}, 0)
	want := "ok 3 statements, 12 tokens, 2 variables, depth 2, 1 unresolved GOTO\n"
	if out != want {
		t.Errorf("Expected %q, got %q", want, out)
	}
}

func TestDiagnostic_SyntaxError(t *testing.T) {
	source := "LET x = 10\nPRINT x + )\n"
	_, err := newEngine(t, lang.Options{}).Parse(source)
	if err == nil {
		t.Fatal("Expected parse error")
	}

	out := New(Options{}).Diagnostic("prog.ml", source, err)
	want := "prog.ml:2:11: error[unexpected-token]: expected expression, found PAREN())\n" +
		"   2 | PRINT x + )\n" +
		"     |           ^\n"

	if out != want {
		t.Errorf("Unexpected diagnostic:\n%s\nwant:\n%s", out, want)
	}
}

func TestDiagnostic_TabsKeepAlignment(t *testing.T) {
	source := "\tPRINT )"
	_, err := newEngine(t, lang.Options{}).Parse(source)
	if err == nil {
		t.Fatal("Expected parse error")
	}

	out := New(Options{}).Diagnostic("", source, err)
	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[0], "<input>:1:8:") {
		t.Errorf("Unexpected header: %q", lines[0])
	}
	if lines[2] != "     | \t      ^" {
		t.Errorf("Unexpected caret line: %q", lines[2])
	}
}

func TestDiagnostic_OtherErrors(t *testing.T) {
	_, err := newEngine(t, lang.Options{MaxInputLength: 4}).Parse("PRINT 1")
	if err == nil {
		t.Fatal("Expected input limit error")
	}

	out := New(Options{}).Diagnostic("big.ml", "PRINT 1", err)
	if !strings.HasPrefix(out, "big.ml: error[LANG_INPUT_TOO_LARGE]: ") {
		t.Errorf("Unexpected diagnostic: %q", out)
	}

	if got := New(Options{}).Diagnostic("x", "", nil); got != "" {
		t.Errorf("Expected empty diagnostic for nil error, got %q", got)
	}

	plain := New(Options{}).Diagnostic("x", "", mlerror.New("boom"))
	if plain != "x: error: boom\n" {
		t.Errorf("Unexpected plain diagnostic: %q", plain)
	}
}

func TestColorOutput(t *testing.T) {
	r := New(Options{Color: true})
	out := r.Tokens(mlparser.Tokenize("PRINT 1"))
	if !strings.Contains(out, "PRINT") {
		t.Errorf("Colored output lost token text: %q", out)
	}
}
