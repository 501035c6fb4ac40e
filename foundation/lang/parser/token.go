// File: token.go
// Title: mLANG Token Model
// Description: Token kinds, the token value type and the fixed keyword
//              and operator tables of the mLANG language.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-25 v0.1.0: Initial token definitions
// - 2026-10-18 v0.2.0: Seven-kind token model for mLANG

package parser

import (
	"fmt"

	mlast "github.com/msto63/mlang/foundation/lang/ast"
)

// Kind classifies a token
type Kind int

const (
	Keyword Kind = iota
	Identifier
	Number
	Operator
	Paren
	End
	Unknown
)

// String returns the diagnostic label of the kind
func (k Kind) String() string {
	switch k {
	case Keyword:
		return "KEYWORD"
	case Identifier:
		return "IDENTIFIER"
	case Number:
		return "NUMBER"
	case Operator:
		return "OPERATOR"
	case Paren:
		return "PAREN"
	case End:
		return "END"
	case Unknown:
		return "UNKNOWN"
	default:
		return fmt.Sprintf("KIND(%d)", int(k))
	}
}

// Keywords of the language. Matching is case-sensitive.
const (
	KeywordLabel = "LABEL"
	KeywordGoto  = "GOTO"
	KeywordLet   = "LET"
	KeywordRead  = "READ"
	KeywordPrint = "PRINT"
	KeywordIf    = "IF"
	KeywordEndif = "ENDIF"
	KeywordElse  = "ELSE"
	KeywordWhile = "WHILE"
	KeywordDone  = "DONE"
)

var keywords = map[string]bool{
	KeywordLabel: true,
	KeywordGoto:  true,
	KeywordLet:   true,
	KeywordRead:  true,
	KeywordPrint: true,
	KeywordIf:    true,
	KeywordEndif: true,
	KeywordElse:  true,
	KeywordWhile: true,
	KeywordDone:  true,
}

// IsKeyword reports whether word is a reserved keyword
func IsKeyword(word string) bool {
	return keywords[word]
}

// Token is a lexical unit. Position fields are diagnostic metadata and do
// not take part in Equal.
type Token struct {
	Kind   Kind   // Token classification
	Text   string // Raw lexeme; empty for End and Unknown
	Offset int    // Byte offset in input (0-based)
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// String renders the token as KIND(text)
func (t Token) String() string {
	return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
}

// Equal compares kind and text only
func (t Token) Equal(other Token) bool {
	return t.Kind == other.Kind && t.Text == other.Text
}

// Is reports whether the token has the given kind and text
func (t Token) Is(kind Kind, text string) bool {
	return t.Kind == kind && t.Text == text
}

// IsKeyword reports whether the token is the given keyword
func (t Token) IsKeyword(word string) bool {
	return t.Is(Keyword, word)
}

// Pos converts the token position to an AST position
func (t Token) Pos() mlast.Position {
	return mlast.Position{Offset: t.Offset, Line: t.Line, Column: t.Column}
}
