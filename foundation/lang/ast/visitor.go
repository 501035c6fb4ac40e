// File: visitor.go
// Title: mLANG AST Visitor and Traversal Utilities
// Description: Visitor interface with one method per node variant, an
//              indented tree printer, depth-first inspection, validation,
//              node collection, deep copies and position-independent
//              structural equality.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-25 v0.1.0: Initial visitor pattern implementation
// - 2026-10-18 v0.2.0: Inspect, Equal and per-variant visitor for mLANG

package ast

import (
	"fmt"
	"strings"
)

// Visitor defines the interface for AST visitors. Adding a node variant
// adds a method here, so every visitor must handle it.
type Visitor interface {
	VisitBlock(block *Block) interface{}

	VisitIntegerLiteral(expr *IntegerLiteral) interface{}
	VisitVariable(expr *Variable) interface{}
	VisitBinaryExpression(expr *BinaryExpression) interface{}

	VisitLetStatement(stmt *LetStatement) interface{}
	VisitAssignment(stmt *Assignment) interface{}
	VisitReadStatement(stmt *ReadStatement) interface{}
	VisitPrintStatement(stmt *PrintStatement) interface{}
	VisitIfStatement(stmt *IfStatement) interface{}
	VisitWhileStatement(stmt *WhileStatement) interface{}
	VisitLabelStatement(stmt *LabelStatement) interface{}
	VisitGotoStatement(stmt *GotoStatement) interface{}
}

// Inspect traverses the tree depth-first, calling fn for every node before
// its children. Children are visited in declaration order. If fn returns
// false the children of that node are skipped.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Block:
		for _, stmt := range n.Statements {
			if stmt != nil {
				Inspect(stmt, fn)
			}
		}
	case *BinaryExpression:
		inspectExpr(n.Left, fn)
		inspectExpr(n.Right, fn)
	case *LetStatement:
		inspectExpr(n.Initializer, fn)
	case *Assignment:
		inspectExpr(n.Value, fn)
	case *PrintStatement:
		inspectExpr(n.Value, fn)
	case *IfStatement:
		inspectExpr(n.Condition, fn)
		inspectBlock(n.Then, fn)
		inspectBlock(n.Else, fn)
	case *WhileStatement:
		inspectExpr(n.Condition, fn)
		inspectBlock(n.Body, fn)
	case *IntegerLiteral, *Variable, *ReadStatement, *LabelStatement, *GotoStatement:
		// leaves
	default:
		panic(fmt.Sprintf("ast.Inspect: unexpected node type %T", node))
	}
}

func inspectExpr(e Expr, fn func(Node) bool) {
	if e != nil {
		Inspect(e, fn)
	}
}

func inspectBlock(b *Block, fn func(Node) bool) {
	if b != nil {
		Inspect(b, fn)
	}
}

// StringVisitor renders an AST as an indented tree
type StringVisitor struct {
	builder strings.Builder
	indent  int
}

// NewStringVisitor creates a new string visitor
func NewStringVisitor() *StringVisitor {
	return &StringVisitor{}
}

// String returns the accumulated output
func (sv *StringVisitor) String() string {
	return sv.builder.String()
}

// Reset clears the output
func (sv *StringVisitor) Reset() {
	sv.builder.Reset()
	sv.indent = 0
}

func (sv *StringVisitor) line(format string, args ...interface{}) {
	sv.builder.WriteString(strings.Repeat("  ", sv.indent))
	fmt.Fprintf(&sv.builder, format, args...)
	sv.builder.WriteByte('\n')
}

func (sv *StringVisitor) child(label string, node Node) {
	sv.indent++
	if label != "" {
		sv.line("%s:", label)
		sv.indent++
	}
	if node == nil {
		sv.line("<nil>")
	} else {
		node.Accept(sv)
	}
	if label != "" {
		sv.indent--
	}
	sv.indent--
}

func (sv *StringVisitor) VisitBlock(block *Block) interface{} {
	sv.line("Block (%d)", len(block.Statements))
	for _, stmt := range block.Statements {
		sv.child("", stmt)
	}
	return nil
}

func (sv *StringVisitor) VisitIntegerLiteral(expr *IntegerLiteral) interface{} {
	sv.line("IntegerLiteral %d", expr.Value)
	return nil
}

func (sv *StringVisitor) VisitVariable(expr *Variable) interface{} {
	sv.line("Variable %s", expr.Name)
	return nil
}

func (sv *StringVisitor) VisitBinaryExpression(expr *BinaryExpression) interface{} {
	sv.line("BinaryExpression %s", expr.Operator)
	sv.child("", expr.Left)
	sv.child("", expr.Right)
	return nil
}

func (sv *StringVisitor) VisitLetStatement(stmt *LetStatement) interface{} {
	sv.line("LetStatement %s", stmt.Name)
	if stmt.Initializer != nil {
		sv.child("", stmt.Initializer)
	}
	return nil
}

func (sv *StringVisitor) VisitAssignment(stmt *Assignment) interface{} {
	sv.line("Assignment %s", stmt.Name)
	sv.child("", stmt.Value)
	return nil
}

func (sv *StringVisitor) VisitReadStatement(stmt *ReadStatement) interface{} {
	sv.line("ReadStatement %s", stmt.Name)
	return nil
}

func (sv *StringVisitor) VisitPrintStatement(stmt *PrintStatement) interface{} {
	sv.line("PrintStatement")
	sv.child("", stmt.Value)
	return nil
}

func (sv *StringVisitor) VisitIfStatement(stmt *IfStatement) interface{} {
	sv.line("IfStatement")
	sv.child("Condition", stmt.Condition)
	sv.child("Then", blockNode(stmt.Then))
	if stmt.Else != nil {
		sv.child("Else", stmt.Else)
	}
	return nil
}

func (sv *StringVisitor) VisitWhileStatement(stmt *WhileStatement) interface{} {
	sv.line("WhileStatement")
	sv.child("Condition", stmt.Condition)
	sv.child("Body", blockNode(stmt.Body))
	return nil
}

func (sv *StringVisitor) VisitLabelStatement(stmt *LabelStatement) interface{} {
	sv.line("LabelStatement %s", stmt.Name)
	return nil
}

func (sv *StringVisitor) VisitGotoStatement(stmt *GotoStatement) interface{} {
	sv.line("GotoStatement %s", stmt.Name)
	return nil
}

// blockNode avoids wrapping a nil *Block in a non-nil Node
func blockNode(b *Block) Node {
	if b == nil {
		return nil
	}
	return b
}

// ASTToString renders node as an indented tree
func ASTToString(node Node) string {
	if node == nil {
		return "<nil>\n"
	}
	sv := NewStringVisitor()
	node.Accept(sv)
	return sv.String()
}

// ValidateAST validates every node in the tree and returns all violations
func ValidateAST(node Node) []error {
	var errs []error
	Inspect(node, func(n Node) bool {
		if err := n.Validate(); err != nil {
			errs = append(errs, err)
		}
		return true
	})
	return errs
}

// Collection holds the nodes of a tree grouped by role
type Collection struct {
	Statements []Stmt
	Variables  []string // distinct names, first-use order
	Literals   []int64
	Labels     []*LabelStatement
	Gotos      []*GotoStatement
	MaxDepth   int // deepest block nesting; the root block is depth 1
}

// UnresolvedGotos returns the gotos whose target names no label. The parser
// does not perform this check.
func (c *Collection) UnresolvedGotos() []*GotoStatement {
	labels := make(map[string]bool, len(c.Labels))
	for _, l := range c.Labels {
		labels[l.Name] = true
	}
	var out []*GotoStatement
	for _, g := range c.Gotos {
		if !labels[g.Name] {
			out = append(out, g)
		}
	}
	return out
}

// CollectNodes walks the tree and groups its nodes
func CollectNodes(node Node) *Collection {
	c := &Collection{}
	seen := make(map[string]bool)

	addVar := func(name string) {
		if !seen[name] {
			seen[name] = true
			c.Variables = append(c.Variables, name)
		}
	}

	var walk func(n Node, depth int)
	walk = func(n Node, depth int) {
		Inspect(n, func(child Node) bool {
			switch v := child.(type) {
			case *Block:
				if child != n {
					walk(v, depth+1)
					return false
				}
				if depth > c.MaxDepth {
					c.MaxDepth = depth
				}
			case Stmt:
				c.Statements = append(c.Statements, v)
				switch s := v.(type) {
				case *LetStatement:
					addVar(s.Name)
				case *Assignment:
					addVar(s.Name)
				case *ReadStatement:
					addVar(s.Name)
				case *LabelStatement:
					c.Labels = append(c.Labels, s)
				case *GotoStatement:
					c.Gotos = append(c.Gotos, s)
				}
			case *Variable:
				addVar(v.Name)
			case *IntegerLiteral:
				c.Literals = append(c.Literals, v.Value)
			}
			return true
		})
	}
	walk(node, 1)
	return c
}

// Equal reports whether two trees have the same shape and values.
// Source positions are ignored.
func Equal(a, b Node) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}

	switch x := a.(type) {
	case *Block:
		y, ok := b.(*Block)
		if !ok || len(x.Statements) != len(y.Statements) {
			return false
		}
		for i := range x.Statements {
			if !Equal(x.Statements[i], y.Statements[i]) {
				return false
			}
		}
		return true
	case *IntegerLiteral:
		y, ok := b.(*IntegerLiteral)
		return ok && x.Value == y.Value
	case *Variable:
		y, ok := b.(*Variable)
		return ok && x.Name == y.Name
	case *BinaryExpression:
		y, ok := b.(*BinaryExpression)
		return ok && x.Operator == y.Operator && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *LetStatement:
		y, ok := b.(*LetStatement)
		return ok && x.Name == y.Name && Equal(x.Initializer, y.Initializer)
	case *Assignment:
		y, ok := b.(*Assignment)
		return ok && x.Name == y.Name && Equal(x.Value, y.Value)
	case *ReadStatement:
		y, ok := b.(*ReadStatement)
		return ok && x.Name == y.Name
	case *PrintStatement:
		y, ok := b.(*PrintStatement)
		return ok && Equal(x.Value, y.Value)
	case *IfStatement:
		y, ok := b.(*IfStatement)
		return ok && Equal(x.Condition, y.Condition) &&
			Equal(blockNode(x.Then), blockNode(y.Then)) &&
			Equal(blockNode(x.Else), blockNode(y.Else))
	case *WhileStatement:
		y, ok := b.(*WhileStatement)
		return ok && Equal(x.Condition, y.Condition) && Equal(blockNode(x.Body), blockNode(y.Body))
	case *LabelStatement:
		y, ok := b.(*LabelStatement)
		return ok && x.Name == y.Name
	case *GotoStatement:
		y, ok := b.(*GotoStatement)
		return ok && x.Name == y.Name
	default:
		panic(fmt.Sprintf("ast.Equal: unexpected node type %T", a))
	}
}

// CloneBlock returns a deep copy of b, positions included
func CloneBlock(b *Block) *Block {
	if b == nil {
		return nil
	}
	out := &Block{Statements: make([]Stmt, len(b.Statements)), Pos: b.Pos}
	for i, stmt := range b.Statements {
		out.Statements[i] = cloneStmt(stmt)
	}
	return out
}

func cloneStmt(s Stmt) Stmt {
	switch x := s.(type) {
	case *LetStatement:
		c := *x
		c.Initializer = cloneExpr(x.Initializer)
		return &c
	case *Assignment:
		c := *x
		c.Value = cloneExpr(x.Value)
		return &c
	case *ReadStatement:
		c := *x
		return &c
	case *PrintStatement:
		c := *x
		c.Value = cloneExpr(x.Value)
		return &c
	case *IfStatement:
		c := *x
		c.Condition = cloneExpr(x.Condition)
		c.Then = CloneBlock(x.Then)
		c.Else = CloneBlock(x.Else)
		return &c
	case *WhileStatement:
		c := *x
		c.Condition = cloneExpr(x.Condition)
		c.Body = CloneBlock(x.Body)
		return &c
	case *LabelStatement:
		c := *x
		return &c
	case *GotoStatement:
		c := *x
		return &c
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("ast.CloneBlock: unexpected statement type %T", s))
	}
}

func cloneExpr(e Expr) Expr {
	switch x := e.(type) {
	case *IntegerLiteral:
		c := *x
		return &c
	case *Variable:
		c := *x
		return &c
	case *BinaryExpression:
		c := *x
		c.Left = cloneExpr(x.Left)
		c.Right = cloneExpr(x.Right)
		return &c
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("ast.CloneBlock: unexpected expression type %T", e))
	}
}

// isNil catches both nil interfaces and interfaces holding typed nil pointers
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *Block:
		return v == nil
	case *IntegerLiteral:
		return v == nil
	case *Variable:
		return v == nil
	case *BinaryExpression:
		return v == nil
	case *LetStatement:
		return v == nil
	case *Assignment:
		return v == nil
	case *ReadStatement:
		return v == nil
	case *PrintStatement:
		return v == nil
	case *IfStatement:
		return v == nil
	case *WhileStatement:
		return v == nil
	case *LabelStatement:
		return v == nil
	case *GotoStatement:
		return v == nil
	}
	return false
}
