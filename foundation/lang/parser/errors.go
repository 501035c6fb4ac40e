// File: errors.go
// Title: mLANG Lexical and Syntax Errors
// Description: Typed failures reported by the lexer and parser. A syntax
//              error names the expected construct and the offending token.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-18
// Modified: 2026-10-18
//
// Change History:
// - 2026-10-18 v0.1.0: Initial implementation

package parser

import "fmt"

// Category groups syntax errors by cause
type Category int

const (
	CategoryUnexpectedToken Category = iota
	CategoryMissingTerminator
	CategoryLexical
	CategoryLiteralOverflow
	CategoryNestingTooDeep
)

func (c Category) String() string {
	switch c {
	case CategoryUnexpectedToken:
		return "unexpected-token"
	case CategoryMissingTerminator:
		return "missing-terminator"
	case CategoryLexical:
		return "lexical"
	case CategoryLiteralOverflow:
		return "literal-overflow"
	case CategoryNestingTooDeep:
		return "nesting-too-deep"
	default:
		return "unknown"
	}
}

// LexicalError records a character that starts no valid token
type LexicalError struct {
	Char   rune
	Offset int
	Line   int
	Column int
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("lexical error at line %d, column %d: unexpected character %q", e.Line, e.Column, e.Char)
}

// SyntaxError is returned by the parser for the first token that does not
// fit the grammar
type SyntaxError struct {
	Category Category
	Expected string // Construct the parser was looking for
	Found    Token  // Token under the cursor
	Message  string // Optional extra context
}

func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("parse error at line %d, column %d: expected %s, found %s",
		e.Found.Line, e.Found.Column, e.Expected, e.Found)
	if e.Message != "" {
		msg += " (" + e.Message + ")"
	}
	return msg
}
