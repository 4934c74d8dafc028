// Package tooling provides a programmatic API for IDE integration via LSP.
// It keeps open item descriptions parsed and expanded, and answers
// diagnostics, hover, completion and symbol queries against them.
package tooling

import (
	"fmt"
	"sync"

	"github.com/conduit-lang/derivewhere/internal/compiler/codegen"
	"github.com/conduit-lang/derivewhere/internal/compiler/errors"
	"github.com/conduit-lang/derivewhere/internal/compiler/schema"
	"github.com/conduit-lang/derivewhere/internal/compiler/traits"
)

// API provides thread-safe access to derivewhere for IDE integration.
type API struct {
	documents map[string]*Document
	docsMutex sync.RWMutex

	symbolIndex *SymbolIndex
	expander    *codegen.Expander

	config *Config
}

// Config holds configuration for the tooling API
type Config struct {
	// Traits are the generation options used to expand open documents
	Traits traits.Options
}

// Document is an open item description together with everything derived
// from it
type Document struct {
	URI     string
	Content string
	Version int

	// File is nil when the description itself is malformed
	File *schema.File

	// Outputs holds the generated impls per item name
	Outputs map[string]*codegen.Output
	// Rejected holds the diagnostic of every item that failed to expand
	Rejected map[string]*errors.CompilerError

	Diagnostics errors.ErrorList
	Symbols     []*Symbol
}

// Position represents a position in a document (zero-based for LSP compatibility)
type Position struct {
	Line      int // Zero-based line number
	Character int // Zero-based character offset
}

// Range represents a range in a document
type Range struct {
	Start Position
	End   Position
}

// Location represents a source location with URI and range
type Location struct {
	URI   string
	Range Range
}

// Symbol represents a named entity of a description
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Range Range

	// Type is the field type or the item kind
	Type string

	// ContainerName is the enclosing item or variant
	ContainerName string

	Detail string
}

// SymbolKind categorizes symbols for IDE display
type SymbolKind int

const (
	// SymbolKindItem is a struct, enum or union
	SymbolKindItem SymbolKind = iota
	// SymbolKindVariant is an enum variant
	SymbolKindVariant
	// SymbolKindField is a field of a struct, union or variant
	SymbolKindField
)

// Hover represents hover information for a symbol
type Hover struct {
	// Contents is the hover text (markdown formatted)
	Contents string
	Range    Range
}

// CompletionItem represents a completion suggestion
type CompletionItem struct {
	Label         string
	Kind          CompletionKind
	Detail        string
	Documentation string
	InsertText    string
	SortText      string
}

// CompletionKind categorizes completion items
type CompletionKind int

const (
	// CompletionKindKeyword is a description key or option keyword
	CompletionKindKeyword CompletionKind = iota
	// CompletionKindTrait is a derivable trait
	CompletionKindTrait
	// CompletionKindValue is an enumerated value such as an item kind
	CompletionKindValue
	// CompletionKindSnippet is a code snippet
	CompletionKindSnippet
)

// Diagnostic represents an error in a description
type Diagnostic struct {
	Range    Range
	Severity DiagnosticSeverity
	Code     string
	Message  string
	Source   string
}

// DiagnosticSeverity indicates the severity of a diagnostic
type DiagnosticSeverity int

const (
	// DiagnosticSeverityError represents an error diagnostic
	DiagnosticSeverityError DiagnosticSeverity = iota
	// DiagnosticSeverityWarning represents a warning diagnostic
	DiagnosticSeverityWarning
	// DiagnosticSeverityInfo represents an informational diagnostic
	DiagnosticSeverityInfo
	// DiagnosticSeverityHint represents a hint diagnostic
	DiagnosticSeverityHint
)

// DiagnosticSource names the producer of diagnostics
const DiagnosticSource = "derivewhere"

// NewAPI creates a new tooling API instance with default generation options
func NewAPI() *API {
	return NewAPIWithConfig(&Config{})
}

// NewAPIWithConfig creates a new tooling API with custom configuration
func NewAPIWithConfig(config *Config) *API {
	return &API{
		documents:   make(map[string]*Document),
		symbolIndex: NewSymbolIndex(),
		expander:    codegen.NewExpander(config.Traits),
		config:      config,
	}
}

// ParseFile parses and expands a description and caches the result
func (a *API) ParseFile(uri, content string) (*Document, error) {
	doc := a.analyze(uri, content)

	a.docsMutex.Lock()
	a.documents[uri] = doc
	a.docsMutex.Unlock()

	a.symbolIndex.Index(uri, doc.Symbols)
	return doc, nil
}

// UpdateDocument updates an existing document with new content
func (a *API) UpdateDocument(uri, content string, version int) (*Document, error) {
	a.docsMutex.Lock()
	oldDoc, exists := a.documents[uri]
	if exists && oldDoc.Content == content {
		oldDoc.Version = version
		a.docsMutex.Unlock()
		return oldDoc, nil
	}
	a.docsMutex.Unlock()

	// analysis runs without the lock
	doc := a.analyze(uri, content)
	doc.Version = version

	a.docsMutex.Lock()
	a.documents[uri] = doc
	a.docsMutex.Unlock()

	a.symbolIndex.Index(uri, doc.Symbols)
	return doc, nil
}

// analyze parses and expands content. Every item is expanded even when an
// earlier one fails.
func (a *API) analyze(uri, content string) *Document {
	doc := &Document{
		URI:      uri,
		Content:  content,
		Version:  1,
		Outputs:  make(map[string]*codegen.Output),
		Rejected: make(map[string]*errors.CompilerError),
	}

	file, err := schema.Parse(uri, []byte(content))
	if err != nil {
		if ce, ok := errors.As(err); ok {
			doc.Diagnostics = append(doc.Diagnostics, ce)
		}
		return doc
	}
	doc.File = file

	for _, decl := range file.Items {
		out, err := a.expander.Expand(decl)
		if err != nil {
			if ce, ok := errors.As(err); ok {
				doc.Diagnostics = append(doc.Diagnostics, ce)
				doc.Rejected[decl.Ident] = ce
			}
			continue
		}
		doc.Outputs[decl.Ident] = out
	}

	doc.Symbols = extractSymbols(file)
	return doc
}

// GetDocument retrieves a cached document
func (a *API) GetDocument(uri string) (*Document, bool) {
	a.docsMutex.RLock()
	defer a.docsMutex.RUnlock()

	doc, exists := a.documents[uri]
	return doc, exists
}

// CloseDocument removes a document from the cache
func (a *API) CloseDocument(uri string) {
	a.docsMutex.Lock()
	delete(a.documents, uri)
	a.docsMutex.Unlock()

	a.symbolIndex.RemoveDocument(uri)
}

// GetDiagnostics returns diagnostics for a document
func (a *API) GetDiagnostics(uri string) []Diagnostic {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil
	}

	diagnostics := make([]Diagnostic, 0, len(doc.Diagnostics))
	for _, err := range doc.Diagnostics {
		start := toPosition(err.Location.Line, err.Location.Column)
		diagnostics = append(diagnostics, Diagnostic{
			Range:    Range{Start: start, End: wordEnd(doc.Content, start)},
			Severity: DiagnosticSeverityError,
			Code:     string(err.Code),
			Message:  err.Message,
			Source:   DiagnosticSource,
		})
	}

	return diagnostics
}

// GetHover returns hover information for a position in a document.
// Returns (nil, nil) if nothing is found at the position.
func (a *API) GetHover(uri string, pos Position) (*Hover, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	if hover := a.traitHover(doc, pos); hover != nil {
		return hover, nil
	}

	symbol := findSymbolAtPosition(doc, pos)
	if symbol == nil {
		return nil, nil //nolint:nilnil // nil hover is valid when no symbol at position
	}

	return buildHover(doc, symbol), nil
}

// GetCompletions returns completion items for a position in a document
func (a *API) GetCompletions(uri string, pos Position) ([]CompletionItem, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	context := getCompletionContext(doc, pos)
	return a.buildCompletions(context), nil
}

// GetDefinition returns the definition location of the symbol at a
// position. A field whose type names a described item resolves to that
// item. Returns (nil, nil) if no symbol is found at the position.
func (a *API) GetDefinition(uri string, pos Position) (*Location, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	symbol := findSymbolAtPosition(doc, pos)
	if symbol == nil {
		return nil, nil //nolint:nilnil // nil location is valid when no symbol at position
	}

	if symbol.Kind == SymbolKindField {
		if def := a.symbolIndex.FindDefinition(baseTypeName(symbol.Type)); def != nil {
			return &Location{URI: def.URI, Range: def.Range}, nil
		}
	}

	return &Location{URI: uri, Range: symbol.Range}, nil
}

// GetReferences returns all symbols sharing the name of the symbol at a
// position
func (a *API) GetReferences(uri string, pos Position) ([]Location, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	symbol := findSymbolAtPosition(doc, pos)
	if symbol == nil {
		return []Location{}, nil
	}

	refs := a.symbolIndex.FindReferences(symbol.Name)
	if refs == nil {
		return []Location{}, nil
	}
	return refs, nil
}

// GetDocumentSymbols returns all symbols in a document
func (a *API) GetDocumentSymbols(uri string) ([]*Symbol, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}
	return doc.Symbols, nil
}

// SearchSymbols searches symbols across every open document
func (a *API) SearchSymbols(query string) []*IndexedSymbol {
	return a.symbolIndex.SearchSymbols(query)
}

// GetGenerated returns the generated code of one item
func (a *API) GetGenerated(uri, item string) (string, bool) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return "", false
	}
	out, ok := doc.Outputs[item]
	if !ok {
		return "", false
	}
	return out.String(), true
}

// toPosition converts a one-based line and column to an LSP position
func toPosition(line, column int) Position {
	pos := Position{Line: line - 1, Character: column - 1}
	if pos.Line < 0 {
		pos.Line = 0
	}
	if pos.Character < 0 {
		pos.Character = 0
	}
	return pos
}
