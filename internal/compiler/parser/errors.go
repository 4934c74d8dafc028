// Package parser turns directive text and generic parameter declarations into
// shape nodes. It is a small recursive descent parser over lexer tokens that
// slices raw source text for Rust types and bounds instead of modelling them.
package parser

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/derivewhere/internal/compiler/ast"
	"github.com/conduit-lang/derivewhere/internal/compiler/errors"
	"github.com/conduit-lang/derivewhere/internal/compiler/lexer"
)

// ErrorType represents different categories of parse errors
type ErrorType int

const (
	// ErrorSyntax represents a malformed attribute
	ErrorSyntax ErrorType = iota
	// ErrorDelimiter represents a bad separator after a top-level option
	ErrorDelimiter
	// ErrorGeneric represents a malformed bound clause or generic parameter
	ErrorGeneric
)

// ParseError represents an error encountered during parsing
type ParseError struct {
	Type     ErrorType
	Message  string
	Location ast.SourceLocation
	Token    lexer.Token
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("Parse error at %d:%d: %s (near '%s')",
		e.Location.Line, e.Location.Column, e.Message, e.Token.Lexeme)
}

// Diagnostic converts the parse error into a catalogue diagnostic
func (e *ParseError) Diagnostic() *errors.CompilerError {
	switch e.Type {
	case ErrorDelimiter:
		return errors.NewDelimiter(e.Location)
	case ErrorGeneric:
		return errors.NewGenericSyntax(e.Location, e.Message)
	default:
		return errors.NewAttributeSyntax(e.Location, e.Message)
	}
}

// NewParseError creates a new parse error positioned relative to base
func NewParseError(typ ErrorType, message string, token lexer.Token, base ast.SourceLocation) ParseError {
	return ParseError{
		Type:     typ,
		Message:  message,
		Location: base.Offset(token.Line, token.Column),
		Token:    token,
	}
}

// lexDiagnostic converts the first lexical error into a diagnostic
func lexDiagnostic(typ ErrorType, lexErrors []lexer.LexError, base ast.SourceLocation) *errors.CompilerError {
	le := lexErrors[0]
	pe := ParseError{
		Type:     typ,
		Message:  lowerFirst(le.Message),
		Location: base.Offset(le.Line, le.Column),
		Token:    lexer.Token{Type: lexer.TOKEN_ERROR, Lexeme: le.Lexeme},
	}
	return pe.Diagnostic()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
