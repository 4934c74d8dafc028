package tooling

import (
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/conduit-lang/derivewhere/internal/compiler/ast"
	"github.com/conduit-lang/derivewhere/internal/compiler/schema"
)

// SymbolIndex maintains a searchable index of all symbols across documents
type SymbolIndex struct {
	// symbols maps symbol name to all definitions
	symbols map[string][]*IndexedSymbol
	mutex   sync.RWMutex
}

// IndexedSymbol represents a symbol with its location
type IndexedSymbol struct {
	URI   string
	Range Range
	*Symbol
}

// NewSymbolIndex creates a new symbol index
func NewSymbolIndex() *SymbolIndex {
	return &SymbolIndex{
		symbols: make(map[string][]*IndexedSymbol),
	}
}

// Index replaces the symbols of a document
func (si *SymbolIndex) Index(uri string, symbols []*Symbol) {
	si.mutex.Lock()
	defer si.mutex.Unlock()

	si.removeDocumentLocked(uri)

	for _, sym := range symbols {
		si.symbols[sym.Name] = append(si.symbols[sym.Name], &IndexedSymbol{
			URI:    uri,
			Range:  sym.Range,
			Symbol: sym,
		})
	}
}

// RemoveDocument removes all symbols from a document
func (si *SymbolIndex) RemoveDocument(uri string) {
	si.mutex.Lock()
	defer si.mutex.Unlock()

	si.removeDocumentLocked(uri)
}

func (si *SymbolIndex) removeDocumentLocked(uri string) {
	for name, syms := range si.symbols {
		filtered := make([]*IndexedSymbol, 0, len(syms))
		for _, sym := range syms {
			if sym.URI != uri {
				filtered = append(filtered, sym)
			}
		}
		if len(filtered) > 0 {
			si.symbols[name] = filtered
		} else {
			delete(si.symbols, name)
		}
	}
}

// FindDefinition finds the item definition of a name
func (si *SymbolIndex) FindDefinition(name string) *IndexedSymbol {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	for _, sym := range si.symbols[name] {
		if sym.Kind == SymbolKindItem {
			return sym
		}
	}
	return nil
}

// FindReferences finds all symbols with a name
func (si *SymbolIndex) FindReferences(name string) []Location {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	syms, ok := si.symbols[name]
	if !ok {
		return nil
	}

	locations := make([]Location, len(syms))
	for i, sym := range syms {
		locations[i] = Location{URI: sym.URI, Range: sym.Range}
	}
	return locations
}

// SearchSymbols searches for symbols matching a query across all
// documents. The match is a case-insensitive substring match.
func (si *SymbolIndex) SearchSymbols(query string) []*IndexedSymbol {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	query = strings.ToLower(query)
	result := make([]*IndexedSymbol, 0)

	for name, syms := range si.symbols {
		if query == "" || strings.Contains(strings.ToLower(name), query) {
			result = append(result, syms...)
		}
	}

	return result
}

// extractSymbols lists the items of a description with their variants
// and fields
func extractSymbols(file *schema.File) []*Symbol {
	symbols := make([]*Symbol, 0)

	for _, item := range file.Items {
		symbols = append(symbols, &Symbol{
			Name:   item.Ident,
			Kind:   SymbolKindItem,
			Range:  lineRange(item.Loc),
			Type:   item.Kind.String(),
			Detail: item.Kind.String() + " " + item.Ident + item.Generics.TypeGenerics(),
		})
		symbols = append(symbols, fieldSymbols(item.Ident, item.Fields)...)

		for _, variant := range item.Variants {
			symbols = append(symbols, &Symbol{
				Name:          variant.Ident,
				Kind:          SymbolKindVariant,
				Range:         lineRange(variant.Loc),
				Type:          variant.Fields.Style.String(),
				ContainerName: item.Ident,
				Detail:        item.Ident + "::" + variant.Ident,
			})
			symbols = append(symbols, fieldSymbols(item.Ident+"::"+variant.Ident, variant.Fields)...)
		}
	}

	return symbols
}

func fieldSymbols(container string, fields ast.FieldList) []*Symbol {
	symbols := make([]*Symbol, 0, len(fields.Fields))
	for i, field := range fields.Fields {
		name := field.Ident
		if name == "" {
			name = strconv.Itoa(i)
		}
		symbols = append(symbols, &Symbol{
			Name:          name,
			Kind:          SymbolKindField,
			Range:         lineRange(field.Loc),
			Type:          field.Type,
			ContainerName: container,
			Detail:        name + ": " + field.Type,
		})
	}
	return symbols
}

// lineRange spans from a location to the end of a long line. Clients
// clamp the end to the actual line length.
func lineRange(loc ast.SourceLocation) Range {
	start := toPosition(loc.Line, loc.Column)
	return Range{Start: start, End: Position{Line: start.Line, Character: 1 << 16}}
}

// findSymbolAtPosition returns the innermost symbol containing pos
func findSymbolAtPosition(doc *Document, pos Position) *Symbol {
	var found *Symbol
	for _, sym := range doc.Symbols {
		if positionInRange(pos, sym.Range) {
			found = sym
		}
	}
	return found
}

// positionInRange checks if a position is within a range
func positionInRange(pos Position, r Range) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}
	return true
}

// baseTypeName strips references, lifetimes and generic arguments from a
// field type: `&'a Vec<T>` gives `Vec`.
func baseTypeName(typ string) string {
	typ = strings.TrimSpace(typ)
	for strings.HasPrefix(typ, "&") {
		typ = strings.TrimSpace(typ[1:])
		if strings.HasPrefix(typ, "'") {
			if i := strings.IndexByte(typ, ' '); i >= 0 {
				typ = strings.TrimSpace(typ[i:])
			}
		}
		typ = strings.TrimPrefix(typ, "mut ")
	}
	if i := strings.IndexAny(typ, "<([;"); i >= 0 {
		typ = typ[:i]
	}
	if i := strings.LastIndex(typ, "::"); i >= 0 {
		typ = typ[i+2:]
	}
	return strings.TrimSpace(typ)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordAt returns the identifier under pos together with its range
func wordAt(content string, pos Position) (string, Range) {
	lines := strings.Split(content, "\n")
	if pos.Line < 0 || pos.Line >= len(lines) {
		return "", Range{}
	}
	line := []rune(lines[pos.Line])
	if pos.Character > len(line) {
		return "", Range{}
	}

	start, end := pos.Character, pos.Character
	for start > 0 && isWordRune(line[start-1]) {
		start--
	}
	for end < len(line) && isWordRune(line[end]) {
		end++
	}
	if start == end {
		return "", Range{}
	}
	return string(line[start:end]), Range{
		Start: Position{Line: pos.Line, Character: start},
		End:   Position{Line: pos.Line, Character: end},
	}
}

// wordEnd returns the end of the word starting at pos, or one character
// past pos when there is none
func wordEnd(content string, pos Position) Position {
	_, r := wordAt(content, Position{Line: pos.Line, Character: pos.Character + 1})
	if r.End.Character > pos.Character {
		return r.End
	}
	return Position{Line: pos.Line, Character: pos.Character + 1}
}
