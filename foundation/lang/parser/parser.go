// File: parser.go
// Title: mLANG Recursive Descent Parser
// Description: Converts a token slice into the program's root block using
//              one function per grammar rule. Blocks end by keyword
//              lookahead against a caller-supplied terminator set.
//              Arithmetic is left-associative with * / % binding tighter
//              than + -; a single comparison or logical operator is
//              allowed only in IF and WHILE conditions. The first syntax
//              error aborts the parse.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-25 v0.1.0: Initial parser implementation
// - 2026-10-18 v0.2.0: mLANG statement grammar, token-slice cursor, depth limit

package parser

import (
	"fmt"
	"strconv"
	"strings"

	mllog "github.com/msto63/mlang/foundation/core/log"
	mlast "github.com/msto63/mlang/foundation/lang/ast"
)

// DefaultMaxDepth bounds the nesting of blocks and parentheses
const DefaultMaxDepth = 256

// Parser implements recursive descent parsing for mLANG. A Parser keeps
// cursor state between calls and must not be shared between goroutines.
type Parser struct {
	tokens  []Token
	pos     int
	depth   int
	logger  *mllog.Logger
	options Options
}

// Options configures parser behavior
type Options struct {
	Logger   *mllog.Logger
	MaxDepth int
}

// New creates a new mLANG parser with the given options
func New(opts Options) (*Parser, error) {
	if opts.MaxDepth < 0 {
		return nil, fmt.Errorf("max depth must not be negative: %d", opts.MaxDepth)
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = mllog.Discard()
	}

	return &Parser{
		logger:  opts.Logger.WithField("component", "parser"),
		options: opts,
	}, nil
}

// Parse consumes tokens up to End and returns the root block, or the first
// syntax error and no block.
func (p *Parser) Parse(tokens []Token) (*mlast.Block, error) {
	p.tokens = tokens
	p.pos = 0
	p.depth = 0

	p.logger.Debug("parse started", mllog.Fields{"tokens": len(tokens)})

	program, err := p.parseBlock()
	if err != nil {
		p.logger.Debug("parse failed", mllog.Fields{"error": err.Error()})
		return nil, err
	}

	p.logger.Debug("parse completed", mllog.Fields{"statements": len(program.Statements)})
	return program, nil
}

// Parse parses tokens with default options
func Parse(tokens []Token) (*mlast.Block, error) {
	p, _ := New(Options{})
	return p.Parse(tokens)
}

// ParseString tokenizes and parses source with default options
func ParseString(source string) (*mlast.Block, error) {
	return Parse(Tokenize(source))
}

// Cursor

// current returns the token under the cursor, or End past the last token
func (p *Parser) current() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return p.endToken()
}

// peek returns the token after the cursor without moving
func (p *Parser) peek() Token {
	if p.current().Kind == End || p.pos+1 >= len(p.tokens) {
		return p.endToken()
	}
	return p.tokens[p.pos+1]
}

// advance moves one token forward, never past End, and returns the new current token
func (p *Parser) advance() Token {
	if p.current().Kind != End {
		p.pos++
	}
	return p.current()
}

// match advances if the current token has the given kind
func (p *Parser) match(kind Kind) bool {
	if p.current().Kind != kind {
		return false
	}
	p.advance()
	return true
}

// endToken synthesizes End for token slices that lack one
func (p *Parser) endToken() Token {
	for i := len(p.tokens) - 1; i >= 0; i-- {
		if p.tokens[i].Kind == End {
			return p.tokens[i]
		}
	}
	end := Token{Kind: End, Line: 1, Column: 1}
	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]
		end.Offset = last.Offset + len(last.Text)
		end.Line = last.Line
		end.Column = last.Column + len(last.Text)
	}
	return end
}

func (p *Parser) isOperator(ops ...string) bool {
	cur := p.current()
	if cur.Kind != Operator {
		return false
	}
	for _, op := range ops {
		if cur.Text == op {
			return true
		}
	}
	return false
}

// Errors

func (p *Parser) errorAt(tok Token, category Category, expected, message string) *SyntaxError {
	if tok.Kind == Unknown {
		category = CategoryLexical
		if message == "" {
			message = "invalid character"
		}
	}
	return &SyntaxError{Category: category, Expected: expected, Found: tok, Message: message}
}

func (p *Parser) unexpected(expected string) *SyntaxError {
	return p.errorAt(p.current(), CategoryUnexpectedToken, expected, "")
}

func (p *Parser) enter() error {
	p.depth++
	if p.depth > p.options.MaxDepth {
		return p.errorAt(p.current(), CategoryNestingTooDeep, "shallower nesting",
			fmt.Sprintf("nesting exceeds %d levels", p.options.MaxDepth))
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// expectKeyword consumes the given keyword. A missing block terminator at
// end of input is reported as such.
func (p *Parser) expectKeyword(word string) error {
	cur := p.current()
	if cur.IsKeyword(word) {
		p.advance()
		return nil
	}
	if cur.Kind == End {
		return p.errorAt(cur, CategoryMissingTerminator, word, "")
	}
	return p.unexpected(word)
}

func (p *Parser) expectIdentifier(context string) (Token, error) {
	cur := p.current()
	if !p.match(Identifier) {
		return cur, p.unexpected("identifier " + context)
	}
	return cur, nil
}

// Grammar

// parseBlock collects statements until End or one of the terminator
// keywords. The terminator itself is left for the caller.
func (p *Parser) parseBlock(terminators ...string) (*mlast.Block, error) {
	block := &mlast.Block{Statements: []mlast.Stmt{}, Pos: p.current().Pos()}

	for {
		cur := p.current()
		if cur.Kind == End {
			if len(terminators) > 0 {
				return nil, p.errorAt(cur, CategoryMissingTerminator, strings.Join(terminators, " or "), "")
			}
			return block, nil
		}
		if cur.Kind == Keyword && isOneOf(cur.Text, terminators) {
			return block, nil
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
}

func (p *Parser) parseStatement() (mlast.Stmt, error) {
	cur := p.current()

	switch cur.Kind {
	case Keyword:
		switch cur.Text {
		case KeywordLet:
			return p.parseLet()
		case KeywordRead:
			return p.parseRead()
		case KeywordPrint:
			return p.parsePrint()
		case KeywordIf:
			return p.parseIf()
		case KeywordWhile:
			return p.parseWhile()
		case KeywordLabel:
			return p.parseLabel()
		case KeywordGoto:
			return p.parseGoto()
		case KeywordElse, KeywordEndif:
			return nil, p.errorAt(cur, CategoryUnexpectedToken, "statement", cur.Text+" without matching IF")
		case KeywordDone:
			return nil, p.errorAt(cur, CategoryUnexpectedToken, "statement", "DONE without matching WHILE")
		}
	case Identifier:
		if next := p.peek(); next.Is(Operator, "=") {
			return p.parseAssignment()
		}
		return nil, p.errorAt(p.peek(), CategoryUnexpectedToken, "= after "+cur.Text, "")
	case Operator:
		if mlast.IsComparison(cur.Text) {
			return nil, p.errorAt(cur, CategoryUnexpectedToken, "statement",
				"comparison operators are only allowed in IF and WHILE conditions")
		}
	}

	return nil, p.unexpected("statement")
}

// LetStmt := "LET" Identifier [ "=" Expression ]
func (p *Parser) parseLet() (mlast.Stmt, error) {
	pos := p.current().Pos()
	p.advance()

	name, err := p.expectIdentifier("after LET")
	if err != nil {
		return nil, err
	}

	stmt := &mlast.LetStatement{Name: name.Text, Pos: pos}
	if p.isOperator("=") {
		p.advance()
		init, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Initializer = init
	}
	return stmt, nil
}

// Assign := Identifier "=" Expression
func (p *Parser) parseAssignment() (mlast.Stmt, error) {
	name := p.current()
	p.advance() // identifier
	p.advance() // =

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &mlast.Assignment{Name: name.Text, Value: value, Pos: name.Pos()}, nil
}

// ReadStmt := "READ" Identifier
func (p *Parser) parseRead() (mlast.Stmt, error) {
	pos := p.current().Pos()
	p.advance()

	name, err := p.expectIdentifier("after READ")
	if err != nil {
		return nil, err
	}
	return &mlast.ReadStatement{Name: name.Text, Pos: pos}, nil
}

// PrintStmt := "PRINT" Expression
func (p *Parser) parsePrint() (mlast.Stmt, error) {
	pos := p.current().Pos()
	p.advance()

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &mlast.PrintStatement{Value: value, Pos: pos}, nil
}

// IfStmt := "IF" Condition Block(ELSE|ENDIF) [ "ELSE" Block(ENDIF) ] "ENDIF"
func (p *Parser) parseIf() (mlast.Stmt, error) {
	pos := p.current().Pos()
	p.advance()

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}

	then, err := p.parseBlock(KeywordElse, KeywordEndif)
	if err != nil {
		return nil, err
	}

	stmt := &mlast.IfStatement{Condition: cond, Then: then, Pos: pos}

	if p.current().IsKeyword(KeywordElse) {
		p.advance()
		els, err := p.parseBlock(KeywordEndif)
		if err != nil {
			return nil, err
		}
		stmt.Else = els
	}

	if err := p.expectKeyword(KeywordEndif); err != nil {
		return nil, err
	}
	return stmt, nil
}

// WhileStmt := "WHILE" Condition Block(DONE) "DONE"
func (p *Parser) parseWhile() (mlast.Stmt, error) {
	pos := p.current().Pos()
	p.advance()

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}

	body, err := p.parseBlock(KeywordDone)
	if err != nil {
		return nil, err
	}

	if err := p.expectKeyword(KeywordDone); err != nil {
		return nil, err
	}
	return &mlast.WhileStatement{Condition: cond, Body: body, Pos: pos}, nil
}

// LabelStmt := "LABEL" Identifier
func (p *Parser) parseLabel() (mlast.Stmt, error) {
	pos := p.current().Pos()
	p.advance()

	name, err := p.expectIdentifier("after LABEL")
	if err != nil {
		return nil, err
	}
	return &mlast.LabelStatement{Name: name.Text, Pos: pos}, nil
}

// GotoStmt := "GOTO" Identifier
func (p *Parser) parseGoto() (mlast.Stmt, error) {
	pos := p.current().Pos()
	p.advance()

	name, err := p.expectIdentifier("after GOTO")
	if err != nil {
		return nil, err
	}
	return &mlast.GotoStatement{Name: name.Text, Pos: pos}, nil
}

// Condition := Expression [ CompOp Expression ]
func (p *Parser) parseCondition() (mlast.Expr, error) {
	left, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if !p.isOperator(mlast.ComparisonOperators...) {
		return left, nil
	}

	op := p.current().Text
	p.advance()

	right, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.isOperator(mlast.ComparisonOperators...) {
		return nil, p.errorAt(p.current(), CategoryUnexpectedToken, "end of condition",
			"comparison operators do not chain")
	}

	return &mlast.BinaryExpression{Left: left, Operator: op, Right: right, Pos: left.Position()}, nil
}

// Expression := Term { ("+" | "-") Term }
func (p *Parser) parseExpression() (mlast.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.isOperator("+", "-") {
		op := p.current().Text
		p.advance()

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &mlast.BinaryExpression{Left: left, Operator: op, Right: right, Pos: left.Position()}
	}
	return left, nil
}

// Term := Factor { ("*" | "/" | "%") Factor }
func (p *Parser) parseTerm() (mlast.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for p.isOperator("*", "/", "%") {
		op := p.current().Text
		p.advance()

		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &mlast.BinaryExpression{Left: left, Operator: op, Right: right, Pos: left.Position()}
	}
	return left, nil
}

// Factor := Number | Identifier | "(" Expression ")"
func (p *Parser) parseFactor() (mlast.Expr, error) {
	cur := p.current()

	switch {
	case cur.Kind == Number:
		value, err := strconv.ParseInt(cur.Text, 10, 64)
		if err != nil {
			return nil, p.errorAt(cur, CategoryLiteralOverflow, "integer literal in 64-bit range", "")
		}
		p.advance()
		return &mlast.IntegerLiteral{Value: value, Pos: cur.Pos()}, nil

	case cur.Kind == Identifier:
		p.advance()
		return &mlast.Variable{Name: cur.Text, Pos: cur.Pos()}, nil

	case cur.Is(Paren, "("):
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()

		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if !p.current().Is(Paren, ")") {
			return nil, p.unexpected(")")
		}
		p.advance()
		return inner, nil
	}

	return nil, p.unexpected("expression")
}

func isOneOf(s string, list []string) bool {
	for _, v := range list {
		if s == v {
			return true
		}
	}
	return false
}
