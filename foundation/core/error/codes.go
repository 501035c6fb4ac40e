// File: codes.go
// Title: Error Code Definitions
// Description: Defines standardized error codes for consistent error
//              classification across the mLANG toolchain: language front end,
//              configuration, history storage and file handling.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2026-10-18 v0.2.0: Language front end codes, removed service codes
// - 2026-10-18 v0.3.0: Dropped VALIDATION_FAILED

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"

	// Language front end
	CodeSyntax          Code = "LANG_SYNTAX"
	CodeLexical         Code = "LANG_LEXICAL"
	CodeLiteralOverflow Code = "LANG_LITERAL_OVERFLOW"
	CodeNesting         Code = "LANG_NESTING"
	CodeInputTooLarge   Code = "LANG_INPUT_TOO_LARGE"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"

	// Storage and files
	CodeDatabaseError Code = "DATABASE_ERROR"
	CodeIOError       Code = "IO_ERROR"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeSyntax, CodeLexical, CodeLiteralOverflow, CodeNesting, CodeInputTooLarge:
		return "language"
	case CodeConfigError, CodeInvalidConfig:
		return "configuration"
	case CodeDatabaseError, CodeIOError:
		return "storage"
	case CodeInvalidInput:
		return "validation"
	default:
		return "generic"
	}
}

// ExitCode returns the process exit status the CLI uses for this code
func (c Code) ExitCode() int {
	switch c.Category() {
	case "language":
		return 2
	case "configuration":
		return 3
	case "storage":
		return 4
	default:
		return 1
	}
}
