// ============================================================================
// mLANG - Front end for a small imperative language
// ============================================================================
//
// Package:     render
// Description: Terminal rendering of tokens, syntax trees and diagnostics
// Author:      msto63
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	mlerror "github.com/msto63/mlang/foundation/core/error"
	"github.com/msto63/mlang/foundation/lang"
	mlast "github.com/msto63/mlang/foundation/lang/ast"
	mlparser "github.com/msto63/mlang/foundation/lang/parser"
)

// Output formats for syntax trees
const (
	FormatTree    = "tree"
	FormatCompact = "compact"
)

// Options configures a Renderer
type Options struct {
	Format string
	Color  bool
}

// Renderer turns front end results into terminal text. With color disabled
// the output is plain and stable, which is what tests and pipes get.
type Renderer struct {
	format string
	color  bool
}

// New creates a renderer. An unknown format falls back to tree.
func New(opts Options) *Renderer {
	format := opts.Format
	if format != FormatCompact {
		format = FormatTree
	}
	return &Renderer{format: format, color: opts.Color}
}

// Format returns the effective tree format
func (r *Renderer) Format() string {
	return r.format
}

func (r *Renderer) paint(style lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return style.Render(text)
}

// Tokens renders a token table with one row per token
func (r *Renderer) Tokens(tokens []mlparser.Token) string {
	var b strings.Builder

	b.WriteString(r.paint(HeaderStyle, fmt.Sprintf("%-9s %-11s %s", "POS", "KIND", "TEXT")))
	b.WriteString("\n")

	for _, tok := range tokens {
		pos := fmt.Sprintf("%-9s", fmt.Sprintf("%d:%d", tok.Line, tok.Column))
		kind := fmt.Sprintf("%-11s", tok.Kind)
		text := tok.Text
		if tok.Kind == mlparser.Unknown && text == "" {
			text = "?"
		}
		b.WriteString(r.paint(PositionStyle, pos))
		b.WriteString(" ")
		b.WriteString(r.paint(KindStyle(tok.Kind), kind))
		b.WriteString(" ")
		b.WriteString(r.paint(KindStyle(tok.Kind), text))
		b.WriteString("\n")
	}

	return b.String()
}

// Program renders a syntax tree in the configured format. The compact
// format prints one top-level statement per line as source text.
func (r *Renderer) Program(program *mlast.Block) string {
	if program == nil {
		return mlast.ASTToString(nil)
	}
	if r.format == FormatCompact {
		if program.IsEmpty() {
			return ""
		}
		return program.String() + "\n"
	}
	return mlast.ASTToString(program)
}

// Stats renders a one-line summary of a successful parse
func (r *Renderer) Stats(stats lang.Stats, elapsed time.Duration) string {
	line := fmt.Sprintf("%d statements, %d tokens, %d variables, depth %d",
		stats.Statements, stats.Tokens, stats.Variables, stats.MaxDepth)
	if stats.UnresolvedGotos > 0 {
		line += fmt.Sprintf(", %d unresolved GOTO", stats.UnresolvedGotos)
	}
	if elapsed > 0 {
		line += fmt.Sprintf(" (%s)", elapsed.Round(time.Microsecond))
	}
	return r.paint(OKStyle, "ok") + " " + line + "\n"
}

// Diagnostic renders err for the given source. Syntax errors show the
// offending line with a caret under the column; other errors print their
// code and message.
func (r *Renderer) Diagnostic(path, source string, err error) string {
	if err == nil {
		return ""
	}
	if path == "" {
		path = "<input>"
	}

	synErr, ok := lang.SyntaxErrorOf(err)
	if !ok {
		label := "error"
		if code := mlerror.GetCode(err); code != mlerror.CodeUnknown {
			label = "error[" + code.String() + "]"
		}
		return fmt.Sprintf("%s: %s: %s\n", path, r.paint(ErrorLabelStyle, label), err.Error())
	}

	line, col := synErr.Found.Line, synErr.Found.Column
	msg := fmt.Sprintf("expected %s, found %s", synErr.Expected, synErr.Found)
	if synErr.Message != "" {
		msg += " (" + synErr.Message + ")"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d: %s: %s\n", path, line, col,
		r.paint(ErrorLabelStyle, "error["+synErr.Category.String()+"]"), msg)

	text, found := sourceLine(source, line)
	if !found {
		return b.String()
	}

	gutter := fmt.Sprintf("%4d | ", line)
	blank := strings.Repeat(" ", len(gutter)-2) + "| "
	b.WriteString(r.paint(GutterStyle, gutter))
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(r.paint(GutterStyle, blank))
	b.WriteString(caretPadding(text, col))
	b.WriteString(r.paint(CaretStyle, "^"))
	b.WriteString("\n")

	return b.String()
}

// sourceLine returns the 1-based line of source without its newline
func sourceLine(source string, line int) (string, bool) {
	if line < 1 {
		return "", false
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[line-1], "\r"), true
}

// caretPadding keeps tabs so the caret lines up in the terminal
func caretPadding(text string, col int) string {
	var b strings.Builder
	runes := []rune(text)
	for i := 0; i < col-1; i++ {
		if i < len(runes) && runes[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
