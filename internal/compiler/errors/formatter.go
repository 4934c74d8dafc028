package errors

import (
	"fmt"
	"strings"
)

// FormatError returns a human-readable error message for terminal output
func FormatError(e *CompilerError) string {
	var b strings.Builder

	file := e.File
	if file == "" {
		file = "<input>"
	}

	fmt.Fprintf(&b, "%s %s in %s\n", severityIcon(e.Severity), categoryDisplayName(e.Category), file)
	fmt.Fprintf(&b, "Line %d, Column %d: [%s]\n", e.Location.Line, e.Location.Column, e.Code)
	fmt.Fprintf(&b, "  %s\n", e.Message)

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n💡 %s\n", e.Suggestion)
	}

	if e.Documentation != "" {
		fmt.Fprintf(&b, "\nLearn more: %s\n", e.Documentation)
	}

	return b.String()
}

// FormatErrorList returns a formatted string of all errors
func FormatErrorList(errors ErrorList) string {
	if len(errors) == 0 {
		return "no errors"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generation failed with %d error(s)\n\n", len(errors))

	for i, err := range errors {
		if i > 0 {
			b.WriteString("\n" + strings.Repeat("-", 80) + "\n\n")
		}
		b.WriteString(err.Format())
	}

	return b.String()
}

// FormatCompact returns a compact one-line error format
func FormatCompact(e *CompilerError) string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s [%s]",
		file, e.Location.Line, e.Location.Column,
		e.Severity, e.Message, e.Code)
}

// severityIcon returns the icon for a severity level
func severityIcon(severity ErrorSeverity) string {
	switch severity {
	case SeverityError:
		return "❌"
	default:
		return "❓"
	}
}

// categoryDisplayName returns a human-readable category name
func categoryDisplayName(category ErrorCategory) string {
	switch category {
	case CategoryItem:
		return "Unsupported Item"
	case CategoryAttribute:
		return "Attribute Error"
	case CategoryTrait:
		return "Trait Error"
	case CategoryGeneric:
		return "Bound Error"
	case CategoryDefault:
		return "Default Error"
	case CategorySchema:
		return "Item Description Error"
	default:
		return "Error"
	}
}
