// File: lexer.go
// Title: mLANG Lexical Analyzer (Tokenizer)
// Description: Converts mLANG source text into a finite token slice in a
//              single left-to-right scan. Uses maximal munch for
//              operators, identifiers and numbers. Characters that start
//              no token become Unknown tokens and are recorded as lexical
//              errors; the scan never aborts.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-25 v0.1.0: Initial lexer implementation
// - 2026-10-18 v0.2.0: mLANG keyword and operator set, lexical error list

package parser

import (
	"unicode/utf8"

	mllog "github.com/msto63/mlang/foundation/core/log"
)

// Lexer performs lexical analysis of mLANG input
type Lexer struct {
	input    string // Input string
	position int    // Current position in input (points to current char)
	readPos  int    // Current reading position (after current char)
	ch       byte   // Current char under examination
	line     int    // Current line number (1-based)
	column   int    // Current column number (1-based)

	errors []*LexicalError
	logger *mllog.Logger
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// WithLogger makes the lexer log every token at trace level
func (l *Lexer) WithLogger(logger *mllog.Logger) *Lexer {
	l.logger = logger
	return l
}

// Errors returns the lexical errors recorded so far
func (l *Lexer) Errors() []*LexicalError {
	return l.errors
}

// Tokenize reads the remaining input. The result ends with exactly one End token.
func (l *Lexer) Tokenize() []Token {
	tokens := make([]Token, 0, len(l.input)/2+1)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == End {
			return tokens
		}
	}
}

// Tokenize converts source into tokens
func Tokenize(source string) []Token {
	return NewLexer(source).Tokenize()
}

// NextToken returns the next token. Once End has been returned every
// further call returns End again.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{Offset: l.position, Line: l.line, Column: l.column}

	switch {
	case l.atEnd():
		tok.Kind = End
	case isLetter(l.ch):
		tok.Text = l.readWhile(isAlnum)
		if IsKeyword(tok.Text) {
			tok.Kind = Keyword
		} else {
			tok.Kind = Identifier
		}
	case isDigit(l.ch):
		tok.Kind = Number
		tok.Text = l.readWhile(isDigit)
	case l.ch == '(' || l.ch == ')':
		tok.Kind = Paren
		tok.Text = string(l.ch)
		l.readChar()
	case isOperatorStart(l.ch):
		if op, ok := l.readOperator(); ok {
			tok.Kind = Operator
			tok.Text = op
		} else {
			tok.Kind = Unknown
		}
	default:
		tok.Kind = Unknown
		l.skipUnknownRune(tok)
	}

	if l.logger != nil && l.logger.Enabled(mllog.LevelTrace) {
		l.logger.Trace("token", mllog.Fields{
			"kind":   tok.Kind.String(),
			"text":   tok.Text,
			"line":   tok.Line,
			"column": tok.Column,
		})
	}

	return tok
}

// readOperator consumes a two-character operator if one matches, otherwise
// a single-character one. A lone & or | is consumed and reported.
func (l *Lexer) readOperator() (string, bool) {
	start := Token{Offset: l.position, Line: l.line, Column: l.column}

	if next := l.peekChar(); next != 0 {
		pair := string([]byte{l.ch, next})
		switch pair {
		case "==", "!=", "<=", ">=", "&&", "||":
			l.readChar()
			l.readChar()
			return pair, true
		}
	}

	ch := l.ch
	if ch == '&' || ch == '|' {
		l.recordError(start)
		l.readChar()
		return "", false
	}

	l.readChar()
	return string(ch), true
}

// skipUnknownRune consumes one whole UTF-8 sequence as a single Unknown
// token so the column advances by one per character
func (l *Lexer) skipUnknownRune(at Token) {
	r, size := utf8.DecodeRuneInString(l.input[l.position:])
	l.recordRune(at, r)
	for i := 0; i < size; i++ {
		l.readChar()
	}
	l.column -= size - 1
}

func (l *Lexer) recordError(at Token) {
	l.recordRune(at, rune(l.ch))
}

func (l *Lexer) recordRune(at Token, r rune) {
	l.errors = append(l.errors, &LexicalError{
		Char:   r,
		Offset: at.Offset,
		Line:   at.Line,
		Column: at.Column,
	})
}

// readChar reads the next character and advances position
func (l *Lexer) readChar() {
	if l.ch == '\n' && !l.atEnd() {
		l.line++
		l.column = 0
	}

	if l.readPos >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
	} else {
		l.ch = l.input[l.readPos]
		l.position = l.readPos
	}
	l.readPos++
	l.column++
}

// peekChar returns the next character without advancing, 0 at end of input
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && (l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r') {
		l.readChar()
	}
}

func (l *Lexer) readWhile(accept func(byte) bool) string {
	start := l.position
	for !l.atEnd() && accept(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlnum(ch byte) bool {
	return isLetter(ch) || isDigit(ch)
}

func isOperatorStart(ch byte) bool {
	switch ch {
	case '=', '!', '<', '>', '+', '-', '*', '/', '%', '&', '|':
		return true
	}
	return false
}
