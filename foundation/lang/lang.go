// File: lang.go
// Title: mLANG Main Interface and Engine
// Description: Provides the mLANG engine, the high-level API that turns
//              source text into tokens and an AST. Enforces input and
//              nesting limits, times every parse and converts syntax
//              errors into structured foundation errors.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-25 v0.1.0: Initial engine implementation
// - 2026-10-18 v0.2.0: mLANG front end, structured syntax errors, parse stats

package lang

import (
	"errors"
	"time"

	mlerror "github.com/msto63/mlang/foundation/core/error"
	mllog "github.com/msto63/mlang/foundation/core/log"
	mlast "github.com/msto63/mlang/foundation/lang/ast"
	mlparser "github.com/msto63/mlang/foundation/lang/parser"
)

// DefaultMaxInputLength is the largest accepted source in bytes
const DefaultMaxInputLength = 64 * 1024

// Engine coordinates lexing and parsing. It holds no per-parse state and
// may be used from several goroutines.
type Engine struct {
	logger  *mllog.Logger
	options Options
}

// Options configures the engine
type Options struct {
	// Logger for engine operations (optional, defaults to the default logger)
	Logger *mllog.Logger

	// MaxInputLength limits source size in bytes (default: 64 KiB)
	MaxInputLength int

	// MaxDepth limits nesting of blocks and parentheses (default: 256)
	MaxDepth int
}

// Stats summarizes a parsed program
type Stats struct {
	Tokens          int `json:"tokens"`
	Statements      int `json:"statements"`
	Variables       int `json:"variables"`
	Literals        int `json:"literals"`
	Labels          int `json:"labels"`
	Gotos           int `json:"gotos"`
	UnresolvedGotos int `json:"unresolved_gotos"`
	MaxDepth        int `json:"max_depth"`
}

// Result is the outcome of a successful parse
type Result struct {
	Program  *mlast.Block
	Tokens   []mlparser.Token
	Stats    Stats
	Duration time.Duration
}

// NewEngine creates a new engine with the specified options
func NewEngine(opts ...Options) (*Engine, error) {
	options := Options{
		Logger:         mllog.Default(),
		MaxInputLength: DefaultMaxInputLength,
		MaxDepth:       mlparser.DefaultMaxDepth,
	}

	if len(opts) > 0 {
		provided := opts[0]
		if provided.Logger != nil {
			options.Logger = provided.Logger
		}
		if provided.MaxInputLength < 0 || provided.MaxDepth < 0 {
			return nil, mlerror.New("limits must not be negative").
				WithCode(mlerror.CodeInvalidConfig).
				WithOperation("lang.NewEngine").
				WithDetail("max_input_length", provided.MaxInputLength).
				WithDetail("max_depth", provided.MaxDepth)
		}
		if provided.MaxInputLength > 0 {
			options.MaxInputLength = provided.MaxInputLength
		}
		if provided.MaxDepth > 0 {
			options.MaxDepth = provided.MaxDepth
		}
	}

	engine := &Engine{
		logger:  options.Logger.WithField("component", "lang-engine"),
		options: options,
	}

	engine.logger.Debug("engine initialized", mllog.Fields{
		"maxInputLength": options.MaxInputLength,
		"maxDepth":       options.MaxDepth,
	})

	return engine, nil
}

// Options returns the effective options
func (e *Engine) Options() Options {
	return e.options
}

// Tokenize converts source into tokens. Invalid characters become Unknown
// tokens; only oversized input is an error.
func (e *Engine) Tokenize(source string) ([]mlparser.Token, error) {
	if err := e.validateInput(source); err != nil {
		return nil, err
	}
	return mlparser.NewLexer(source).WithLogger(e.logger).Tokenize(), nil
}

// Parse tokenizes and parses source. It returns either a complete result
// or a structured error and no result.
func (e *Engine) Parse(source string) (*Result, error) {
	if err := e.validateInput(source); err != nil {
		e.logger.LogError(err)
		return nil, err
	}

	timer := e.logger.StartTimer("parse").WithField("bytes", len(source))

	lexer := mlparser.NewLexer(source).WithLogger(e.logger)
	tokens := lexer.Tokenize()

	p, err := mlparser.New(mlparser.Options{Logger: e.logger, MaxDepth: e.options.MaxDepth})
	if err != nil {
		return nil, mlerror.Wrap(err, "failed to initialize parser").WithCode(mlerror.CodeInternal)
	}

	program, err := p.Parse(tokens)
	if err != nil {
		wrapped := e.wrapParseError(err, lexer.Errors())
		timer.WithField("error_code", wrapped.Code().String()).StopWithError(wrapped)
		return nil, wrapped
	}

	result := &Result{
		Program: program,
		Tokens:  tokens,
		Stats:   computeStats(program, len(tokens)),
	}

	timer.WithField("statements", result.Stats.Statements)
	result.Duration = timer.Stop()

	return result, nil
}

// Validate parses source and discards the tree
func (e *Engine) Validate(source string) error {
	_, err := e.Parse(source)
	return err
}

func (e *Engine) validateInput(source string) error {
	if len(source) > e.options.MaxInputLength {
		return mlerror.Newf("input exceeds maximum length: %d > %d", len(source), e.options.MaxInputLength).
			WithCode(mlerror.CodeInputTooLarge).
			WithOperation("lang.Parse").
			WithDetail("length", len(source)).
			WithDetail("limit", e.options.MaxInputLength)
	}
	return nil
}

// wrapParseError attaches the error code and position details. The
// *parser.SyntaxError stays reachable through errors.As.
func (e *Engine) wrapParseError(err error, lexErrs []*mlparser.LexicalError) *mlerror.Error {
	var synErr *mlparser.SyntaxError
	if !errors.As(err, &synErr) {
		return mlerror.Wrap(err, "parse failed").WithCode(mlerror.CodeInternal).WithOperation("lang.Parse")
	}

	wrapped := mlerror.Wrap(err, "invalid program").
		WithCode(codeForCategory(synErr.Category)).
		WithOperation("lang.Parse").
		WithDetail("line", synErr.Found.Line).
		WithDetail("column", synErr.Found.Column).
		WithDetail("expected", synErr.Expected).
		WithDetail("found", synErr.Found.String()).
		WithDetail("category", synErr.Category.String())

	if synErr.Category == mlparser.CategoryLexical {
		for _, lexErr := range lexErrs {
			if lexErr.Offset == synErr.Found.Offset {
				wrapped.WithDetail("char", string(lexErr.Char))
				break
			}
		}
	}

	return wrapped
}

func codeForCategory(category mlparser.Category) mlerror.Code {
	switch category {
	case mlparser.CategoryLexical:
		return mlerror.CodeLexical
	case mlparser.CategoryLiteralOverflow:
		return mlerror.CodeLiteralOverflow
	case mlparser.CategoryNestingTooDeep:
		return mlerror.CodeNesting
	default:
		return mlerror.CodeSyntax
	}
}

func computeStats(program *mlast.Block, tokens int) Stats {
	c := mlast.CollectNodes(program)
	return Stats{
		Tokens:          tokens,
		Statements:      len(c.Statements),
		Variables:       len(c.Variables),
		Literals:        len(c.Literals),
		Labels:          len(c.Labels),
		Gotos:           len(c.Gotos),
		UnresolvedGotos: len(c.UnresolvedGotos()),
		MaxDepth:        c.MaxDepth,
	}
}

// SyntaxErrorOf extracts the parser error from err, if any
func SyntaxErrorOf(err error) (*mlparser.SyntaxError, bool) {
	var synErr *mlparser.SyntaxError
	ok := errors.As(err, &synErr)
	return synErr, ok
}
