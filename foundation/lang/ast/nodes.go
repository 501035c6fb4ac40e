// File: nodes.go
// Title: mLANG AST Node Definitions
// Description: Defines the closed set of AST node types produced by the
//              mLANG parser: integer expressions, the eight statement
//              kinds and the block that sequences them. Nodes render
//              themselves as source text and validate their own shape.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-25 v0.1.0: Initial AST node definitions
// - 2026-10-18 v0.2.0: Statement/expression variants for the mLANG grammar

package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Node represents the base interface for all AST nodes
type Node interface {
	// String returns the node rendered as mLANG source
	String() string

	// Accept implements the visitor pattern
	Accept(visitor Visitor) interface{}

	// Position returns the source position of the node's first token
	Position() Position

	// Validate checks the node's own shape, not its children
	Validate() error
}

// Expr is implemented by the three expression variants only
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by the eight statement variants only
type Stmt interface {
	Node
	stmtNode()
}

// Position represents a position in the source code
type Position struct {
	Offset int // Byte offset (0-based)
	Line   int // Line number (1-based)
	Column int // Column number (1-based)
}

// IsValid reports whether the position was set by the parser
func (p Position) IsValid() bool {
	return p.Line > 0
}

// String returns "line:column"
func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Operators accepted inside arithmetic expressions
var ArithmeticOperators = []string{"+", "-", "*", "/", "%"}

// Operators accepted once per IF/WHILE condition
var ComparisonOperators = []string{"==", "!=", "<", "<=", ">", ">=", "&&", "||"}

// IsArithmetic reports whether op is an arithmetic operator
func IsArithmetic(op string) bool {
	return contains(ArithmeticOperators, op)
}

// IsComparison reports whether op is a comparison or logical operator
func IsComparison(op string) bool {
	return contains(ComparisonOperators, op)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// IsIdentifier reports whether name is a letter followed by ASCII letters or digits
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if !isLetter && !(isDigit && i > 0) {
			return false
		}
	}
	return true
}

// Expression types

// IntegerLiteral represents a decimal integer literal
type IntegerLiteral struct {
	Value int64    // Converted literal value
	Pos   Position // Source position
}

// Variable represents a reference to a named variable
type Variable struct {
	Name string   // Variable name
	Pos  Position // Source position
}

// BinaryExpression represents an infix operation
type BinaryExpression struct {
	Left     Expr     // Left operand
	Operator string   // Arithmetic or comparison operator
	Right    Expr     // Right operand
	Pos      Position // Position of the left operand
}

// Statement types

// LetStatement declares a variable with an optional initializer
type LetStatement struct {
	Name        string   // Declared variable
	Initializer Expr     // nil for a bare declaration
	Pos         Position // Position of LET
}

// Assignment assigns a new value to an existing variable
type Assignment struct {
	Name  string   // Target variable
	Value Expr     // Assigned expression
	Pos   Position // Position of the variable name
}

// ReadStatement reads an integer from input into a variable
type ReadStatement struct {
	Name string   // Target variable
	Pos  Position // Position of READ
}

// PrintStatement prints the value of an expression
type PrintStatement struct {
	Value Expr     // Printed expression
	Pos   Position // Position of PRINT
}

// IfStatement represents IF ... [ELSE ...] ENDIF
type IfStatement struct {
	Condition Expr     // Guard
	Then      *Block   // Statements before ELSE or ENDIF
	Else      *Block   // nil when no ELSE was written
	Pos       Position // Position of IF
}

// WhileStatement represents WHILE ... DONE
type WhileStatement struct {
	Condition Expr     // Loop guard
	Body      *Block   // Loop body
	Pos       Position // Position of WHILE
}

// LabelStatement marks a jump target. The name is not checked for uniqueness.
type LabelStatement struct {
	Name string   // Label name
	Pos  Position // Position of LABEL
}

// GotoStatement jumps to a label. The target is not resolved by the parser.
type GotoStatement struct {
	Name string   // Target label name
	Pos  Position // Position of GOTO
}

// Block is an ordered list of statements; the order is execution order
type Block struct {
	Statements []Stmt   // Statements in program order
	Pos        Position // Position of the first statement, or of the enclosing keyword
}

// IntegerLiteral implementation

func (il *IntegerLiteral) String() string {
	return strconv.FormatInt(il.Value, 10)
}

func (il *IntegerLiteral) Accept(visitor Visitor) interface{} {
	return visitor.VisitIntegerLiteral(il)
}

func (il *IntegerLiteral) Position() Position {
	return il.Pos
}

func (il *IntegerLiteral) Validate() error {
	if il.Value < 0 {
		return fmt.Errorf("integer literal at %s is negative: %d", il.Pos, il.Value)
	}
	return nil
}

func (il *IntegerLiteral) exprNode() {}

// Variable implementation

func (v *Variable) String() string {
	return v.Name
}

func (v *Variable) Accept(visitor Visitor) interface{} {
	return visitor.VisitVariable(v)
}

func (v *Variable) Position() Position {
	return v.Pos
}

func (v *Variable) Validate() error {
	return validateName("variable", v.Name, v.Pos)
}

func (v *Variable) exprNode() {}

// BinaryExpression implementation

// String renders nested binary operands in parentheses so that the output
// parses back to the same tree
func (be *BinaryExpression) String() string {
	return operandString(be.Left) + " " + be.Operator + " " + operandString(be.Right)
}

func operandString(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	if _, ok := e.(*BinaryExpression); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func (be *BinaryExpression) Accept(visitor Visitor) interface{} {
	return visitor.VisitBinaryExpression(be)
}

func (be *BinaryExpression) Position() Position {
	return be.Pos
}

func (be *BinaryExpression) Validate() error {
	if be.Left == nil || be.Right == nil {
		return fmt.Errorf("binary expression at %s is missing an operand", be.Pos)
	}
	if !IsArithmetic(be.Operator) && !IsComparison(be.Operator) {
		return fmt.Errorf("binary expression at %s has unknown operator %q", be.Pos, be.Operator)
	}
	for _, side := range []Expr{be.Left, be.Right} {
		if inner, ok := side.(*BinaryExpression); ok && IsComparison(inner.Operator) {
			return fmt.Errorf("binary expression at %s nests comparison %q", be.Pos, inner.Operator)
		}
	}
	return nil
}

func (be *BinaryExpression) exprNode() {}

// LetStatement implementation

func (ls *LetStatement) String() string {
	if ls.Initializer == nil {
		return "LET " + ls.Name
	}
	return "LET " + ls.Name + " = " + ls.Initializer.String()
}

func (ls *LetStatement) Accept(visitor Visitor) interface{} {
	return visitor.VisitLetStatement(ls)
}

func (ls *LetStatement) Position() Position {
	return ls.Pos
}

func (ls *LetStatement) Validate() error {
	if err := validateName("LET target", ls.Name, ls.Pos); err != nil {
		return err
	}
	return validateArithmetic("LET initializer", ls.Initializer, ls.Pos)
}

func (ls *LetStatement) stmtNode() {}

// HasInitializer reports whether the declaration assigns a value
func (ls *LetStatement) HasInitializer() bool {
	return ls.Initializer != nil
}

// Assignment implementation

func (a *Assignment) String() string {
	return a.Name + " = " + exprString(a.Value)
}

func (a *Assignment) Accept(visitor Visitor) interface{} {
	return visitor.VisitAssignment(a)
}

func (a *Assignment) Position() Position {
	return a.Pos
}

func (a *Assignment) Validate() error {
	if err := validateName("assignment target", a.Name, a.Pos); err != nil {
		return err
	}
	if a.Value == nil {
		return fmt.Errorf("assignment at %s has no value", a.Pos)
	}
	return validateArithmetic("assigned value", a.Value, a.Pos)
}

func (a *Assignment) stmtNode() {}

// ReadStatement implementation

func (rs *ReadStatement) String() string {
	return "READ " + rs.Name
}

func (rs *ReadStatement) Accept(visitor Visitor) interface{} {
	return visitor.VisitReadStatement(rs)
}

func (rs *ReadStatement) Position() Position {
	return rs.Pos
}

func (rs *ReadStatement) Validate() error {
	return validateName("READ target", rs.Name, rs.Pos)
}

func (rs *ReadStatement) stmtNode() {}

// PrintStatement implementation

func (ps *PrintStatement) String() string {
	return "PRINT " + exprString(ps.Value)
}

func (ps *PrintStatement) Accept(visitor Visitor) interface{} {
	return visitor.VisitPrintStatement(ps)
}

func (ps *PrintStatement) Position() Position {
	return ps.Pos
}

func (ps *PrintStatement) Validate() error {
	if ps.Value == nil {
		return fmt.Errorf("PRINT at %s has no value", ps.Pos)
	}
	return validateArithmetic("PRINT value", ps.Value, ps.Pos)
}

func (ps *PrintStatement) stmtNode() {}

// IfStatement implementation

func (is *IfStatement) String() string {
	var sb strings.Builder
	sb.WriteString("IF ")
	sb.WriteString(exprString(is.Condition))
	writeInline(&sb, is.Then)
	if is.Else != nil {
		sb.WriteString(" ELSE")
		writeInline(&sb, is.Else)
	}
	sb.WriteString(" ENDIF")
	return sb.String()
}

func (is *IfStatement) Accept(visitor Visitor) interface{} {
	return visitor.VisitIfStatement(is)
}

func (is *IfStatement) Position() Position {
	return is.Pos
}

func (is *IfStatement) Validate() error {
	if is.Condition == nil {
		return fmt.Errorf("IF at %s has no condition", is.Pos)
	}
	if is.Then == nil {
		return fmt.Errorf("IF at %s has no then block", is.Pos)
	}
	return nil
}

func (is *IfStatement) stmtNode() {}

// HasElse reports whether an ELSE branch was written
func (is *IfStatement) HasElse() bool {
	return is.Else != nil
}

// WhileStatement implementation

func (ws *WhileStatement) String() string {
	var sb strings.Builder
	sb.WriteString("WHILE ")
	sb.WriteString(exprString(ws.Condition))
	writeInline(&sb, ws.Body)
	sb.WriteString(" DONE")
	return sb.String()
}

func (ws *WhileStatement) Accept(visitor Visitor) interface{} {
	return visitor.VisitWhileStatement(ws)
}

func (ws *WhileStatement) Position() Position {
	return ws.Pos
}

func (ws *WhileStatement) Validate() error {
	if ws.Condition == nil {
		return fmt.Errorf("WHILE at %s has no condition", ws.Pos)
	}
	if ws.Body == nil {
		return fmt.Errorf("WHILE at %s has no body", ws.Pos)
	}
	return nil
}

func (ws *WhileStatement) stmtNode() {}

// LabelStatement implementation

func (ls *LabelStatement) String() string {
	return "LABEL " + ls.Name
}

func (ls *LabelStatement) Accept(visitor Visitor) interface{} {
	return visitor.VisitLabelStatement(ls)
}

func (ls *LabelStatement) Position() Position {
	return ls.Pos
}

func (ls *LabelStatement) Validate() error {
	return validateName("label", ls.Name, ls.Pos)
}

func (ls *LabelStatement) stmtNode() {}

// GotoStatement implementation

func (gs *GotoStatement) String() string {
	return "GOTO " + gs.Name
}

func (gs *GotoStatement) Accept(visitor Visitor) interface{} {
	return visitor.VisitGotoStatement(gs)
}

func (gs *GotoStatement) Position() Position {
	return gs.Pos
}

func (gs *GotoStatement) Validate() error {
	return validateName("GOTO target", gs.Name, gs.Pos)
}

func (gs *GotoStatement) stmtNode() {}

// Block implementation

// String renders one statement per line
func (b *Block) String() string {
	lines := make([]string, len(b.Statements))
	for i, stmt := range b.Statements {
		lines[i] = stmtString(stmt)
	}
	return strings.Join(lines, "\n")
}

func (b *Block) Accept(visitor Visitor) interface{} {
	return visitor.VisitBlock(b)
}

func (b *Block) Position() Position {
	return b.Pos
}

func (b *Block) Validate() error {
	for i, stmt := range b.Statements {
		if stmt == nil {
			return fmt.Errorf("block at %s has nil statement at index %d", b.Pos, i)
		}
	}
	return nil
}

// Len returns the number of statements in the block
func (b *Block) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Statements)
}

// IsEmpty reports whether the block has no statements
func (b *Block) IsEmpty() bool {
	return b.Len() == 0
}

// Helpers

func exprString(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}

func stmtString(s Stmt) string {
	if s == nil {
		return "<nil>"
	}
	return s.String()
}

func writeInline(sb *strings.Builder, b *Block) {
	if b == nil {
		return
	}
	for _, stmt := range b.Statements {
		sb.WriteByte(' ')
		sb.WriteString(stmtString(stmt))
	}
}

func validateName(what, name string, pos Position) error {
	if !IsIdentifier(name) {
		return fmt.Errorf("%s at %s has invalid name %q", what, pos, name)
	}
	return nil
}

// validateArithmetic rejects comparison operators outside IF/WHILE conditions
func validateArithmetic(what string, e Expr, pos Position) error {
	if be, ok := e.(*BinaryExpression); ok && IsComparison(be.Operator) {
		return fmt.Errorf("%s at %s uses comparison operator %q", what, pos, be.Operator)
	}
	return nil
}
