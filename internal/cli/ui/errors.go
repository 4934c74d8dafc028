package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/conduit-lang/derivewhere/internal/compiler/errors"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized error message with suggestions and help commands
//
// Example output:
//
//	❌ UNKNOWN TRAIT
//	   No derivable trait named 'Clnoe'.
//
//	   Did you mean: Clone?
//
//	   → See all traits: derivewhere traits
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch opts.Level {
	case ErrorLevelWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
		bodyColor = color.New(color.FgYellow)
		symbol = "⚠️"
	case ErrorLevelInfo:
		headerColor = color.New(color.FgCyan, color.Bold)
		bodyColor = color.New(color.FgCyan)
		symbol = "ℹ️"
	default:
		headerColor = color.New(color.FgRed, color.Bold)
		bodyColor = color.New(color.FgRed)
		symbol = "❌"
	}

	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s\n", symbol, strings.ToUpper(opts.Context))
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Problem != "" && opts.Context != "" {
		bodyColor.Fprintf(&b, "   %s\n", opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		bodyColor.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// Diagnostic renders a derive_where diagnostic with its source position
//
// Example output:
//
//	❌ ITM101
//	   items/user.dw.yaml:2:5: derive-where doesn't support unit structs, ...
//
//	   → Use `#[derive(..)]` instead
func Diagnostic(e *errors.CompilerError, noColor bool) string {
	file := e.File
	if file == "" {
		file = "<input>"
	}

	opts := ErrorOptions{
		Level:   ErrorLevelError,
		Context: string(e.Code),
		Problem: fmt.Sprintf("%s:%d:%d: %s", file, e.Location.Line, e.Location.Column, e.Message),
		NoColor: noColor,
	}
	if e.Suggestion != "" {
		opts.HelpCommands = append(opts.HelpCommands, e.Suggestion)
	}
	if e.Documentation != "" {
		opts.HelpCommands = append(opts.HelpCommands, "Learn more: "+e.Documentation)
	}
	return FormatError(opts)
}

// WriteDiagnostics writes every diagnostic followed by a blank line
func WriteDiagnostics(w io.Writer, list errors.ErrorList, noColor bool) {
	for _, e := range list {
		fmt.Fprintln(w, Diagnostic(e, noColor))
	}
}

// GenerateError creates a standardized generation failure
func GenerateError(message string, noColor bool) string {
	opts := ErrorOptions{
		Level:   ErrorLevelError,
		Context: "GENERATION FAILED",
		Problem: message,
		HelpCommands: []string{
			"Check without writing: derivewhere check",
			"Get help: derivewhere generate --help",
		},
		NoColor: noColor,
	}
	return FormatError(opts)
}

// StaleError reports generated files that no longer match their sources
func StaleError(files []string, noColor bool) string {
	opts := ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "OUTPUT OUT OF DATE",
		Problem:     fmt.Sprintf("%d generated file(s) differ from their descriptions.", len(files)),
		Consequence: strings.Join(files, "\n   "),
		HelpCommands: []string{
			"Regenerate: derivewhere generate",
		},
		NoColor: noColor,
	}
	return FormatError(opts)
}

// UnknownTraitError reports a trait name that is not derivable
func UnknownTraitError(name string, suggestions []string, noColor bool) string {
	opts := ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "UNKNOWN TRAIT",
		Problem:     fmt.Sprintf("No derivable trait named '%s'.", name),
		Suggestions: suggestions,
		HelpCommands: []string{
			"See all traits: derivewhere traits",
		},
		NoColor: noColor,
	}
	return FormatError(opts)
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	opts := ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: message,
		HelpCommands: []string{
			"View config: cat derivewhere.yml",
			"Create one: derivewhere init",
		},
		NoColor: noColor,
	}
	return FormatError(opts)
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelWarning,
		Problem: message,
		NoColor: noColor,
	})
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelInfo,
		Problem: message,
		NoColor: noColor,
	})
}
