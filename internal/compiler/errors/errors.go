// Package errors provides the closed catalogue of derivewhere diagnostics.
// Every diagnostic carries an error code, a category, a fixed message and the
// location of the offending directive or item, and formats either for a
// terminal or as JSON for tooling.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/conduit-lang/derivewhere/internal/compiler/ast"
)

// ErrorCode represents a unique diagnostic code
type ErrorCode string

// ErrorCategory represents the category of a diagnostic
type ErrorCategory string

const (
	// CategoryItem represents unsupported item shapes (ITM100-199)
	CategoryItem ErrorCategory = "item"
	// CategoryAttribute represents malformed or conflicting options (ATR200-299)
	CategoryAttribute ErrorCategory = "attribute"
	// CategoryTrait represents trait list errors (TRT300-399)
	CategoryTrait ErrorCategory = "trait"
	// CategoryGeneric represents bound clause errors (GEN400-499)
	CategoryGeneric ErrorCategory = "generic"
	// CategoryDefault represents default variant errors (DEF500-599)
	CategoryDefault ErrorCategory = "default"
	// CategorySchema represents malformed item description files (SCH600-699)
	CategorySchema ErrorCategory = "schema"
)

// ErrorSeverity indicates the severity level of a diagnostic
type ErrorSeverity string

const (
	// SeverityError indicates a diagnostic that aborts generation
	SeverityError ErrorSeverity = "error"
)

// CompilerError is a structured diagnostic
type CompilerError struct {
	// Code is the unique error code (e.g., "ATR207")
	Code ErrorCode `json:"code"`
	// Type is a machine-readable error type identifier
	Type string `json:"type"`
	// Category is the error category
	Category ErrorCategory `json:"category"`
	// Severity is the error severity level
	Severity ErrorSeverity `json:"severity"`
	// Message is the primary error message
	Message string `json:"message"`
	// Location is the source location of the error
	Location ast.SourceLocation `json:"location"`
	// File is the source file name (optional)
	File string `json:"file,omitempty"`
	// Suggestion provides a hint for fixing the error (optional)
	Suggestion string `json:"suggestion,omitempty"`
	// Documentation is a URL to detailed error documentation
	Documentation string `json:"documentation,omitempty"`
}

// Error implements the error interface
func (e *CompilerError) Error() string {
	return FormatCompact(e)
}

// Format returns a human-readable error message for terminal output
func (e *CompilerError) Format() string {
	return FormatError(e)
}

// ToJSON returns the error as a JSON string
func (e *CompilerError) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// WithFile sets the source file name for the error
func (e *CompilerError) WithFile(file string) *CompilerError {
	e.File = file
	return e
}

// WithSuggestion sets a suggestion for fixing the error
func (e *CompilerError) WithSuggestion(suggestion string) *CompilerError {
	e.Suggestion = suggestion
	return e
}

// ErrorList is a collection of diagnostics, one per failed item
type ErrorList []*CompilerError

// Error implements the error interface
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	return FormatErrorList(el)
}

// HasErrors returns true if the list contains any errors
func (el ErrorList) HasErrors() bool {
	for _, err := range el {
		if err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ToJSON returns all errors as a JSON array
func (el ErrorList) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(el, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// As extracts a *CompilerError from an error chain
func As(err error) (*CompilerError, bool) {
	var ce *CompilerError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// documentationURL returns the documentation URL for an error code
func documentationURL(code ErrorCode) string {
	return fmt.Sprintf("https://docs.conduit-lang.org/derivewhere/errors/%s", code)
}

// newError creates a new CompilerError with the given parameters
func newError(
	code ErrorCode,
	typ string,
	category ErrorCategory,
	message string,
	loc ast.SourceLocation,
) *CompilerError {
	return &CompilerError{
		Code:          code,
		Type:          typ,
		Category:      category,
		Severity:      SeverityError,
		Message:       message,
		Location:      loc,
		File:          loc.File,
		Documentation: documentationURL(code),
	}
}
