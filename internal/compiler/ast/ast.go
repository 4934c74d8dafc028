// Package ast defines the raw shape of a Rust item as handed to derivewhere:
// the item kind, its generics, its fields or variants and the already-parsed
// derive_where directives attached to each of them.
package ast

import (
	"fmt"
	"strings"
)

// SourceLocation tracks the position of a node in the item description
type SourceLocation struct {
	File   string // Source file (optional)
	Line   int    // Line number (1-indexed)
	Column int    // Column number (1-indexed)
}

// String renders the location as file:line:column
func (l SourceLocation) String() string {
	file := l.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", file, l.Line, l.Column)
}

// Offset returns a location shifted by the given line and column delta.
// Columns are only shifted when staying on the same line.
func (l SourceLocation) Offset(line, column int) SourceLocation {
	if line > 1 {
		return SourceLocation{File: l.File, Line: l.Line + line - 1, Column: column}
	}
	return SourceLocation{File: l.File, Line: l.Line, Column: l.Column + column - 1}
}

// Node is the base interface for all shape nodes
type Node interface {
	Location() SourceLocation
	node()
}

// ItemKind is the kind of Rust item
type ItemKind int

const (
	// ItemStruct is a struct or tuple struct
	ItemStruct ItemKind = iota
	// ItemEnum is a tagged union
	ItemEnum
	// ItemUnion is a C-style untagged union
	ItemUnion
)

// String returns the Rust keyword for the kind
func (k ItemKind) String() string {
	switch k {
	case ItemStruct:
		return "struct"
	case ItemEnum:
		return "enum"
	case ItemUnion:
		return "union"
	default:
		return "unknown"
	}
}

// FieldsStyle is the syntactic form of a body
type FieldsStyle int

const (
	// FieldsNamed is `{ a: T, b: U }`
	FieldsNamed FieldsStyle = iota
	// FieldsUnnamed is `(T, U)`
	FieldsUnnamed
	// FieldsUnit has no body at all
	FieldsUnit
)

// String returns the description name of the style
func (s FieldsStyle) String() string {
	switch s {
	case FieldsNamed:
		return "named"
	case FieldsUnnamed:
		return "tuple"
	case FieldsUnit:
		return "unit"
	default:
		return "unknown"
	}
}

// ItemDecl is the raw shape of an annotated item
type ItemDecl struct {
	Kind     ItemKind
	Ident    string
	Generics Generics
	Attrs    []*Directive
	Fields   FieldList      // struct and union bodies
	Variants []*VariantDecl // enum variants in declaration order
	Loc      SourceLocation
}

func (i *ItemDecl) node() {}

// Location returns the source location of the item
func (i *ItemDecl) Location() SourceLocation {
	return i.Loc
}

// VariantDecl is one enum variant
type VariantDecl struct {
	Ident  string
	Attrs  []*Directive
	Fields FieldList
	Loc    SourceLocation
}

func (v *VariantDecl) node() {}

// Location returns the source location of the variant
func (v *VariantDecl) Location() SourceLocation {
	return v.Loc
}

// FieldList is a body together with its style
type FieldList struct {
	Style  FieldsStyle
	Fields []*FieldDecl
}

// FieldDecl is a single field. Ident is empty for positional fields.
type FieldDecl struct {
	Ident string
	Type  string
	Attrs []*Directive
	Loc   SourceLocation
}

func (f *FieldDecl) node() {}

// Location returns the source location of the field
func (f *FieldDecl) Location() SourceLocation {
	return f.Loc
}

// GenericKind distinguishes generic parameter kinds
type GenericKind int

const (
	// GenericLifetime is `'a`
	GenericLifetime GenericKind = iota
	// GenericType is `T`
	GenericType
	// GenericConst is `const N: usize`
	GenericConst
)

// GenericParam is a single declared generic parameter
type GenericParam struct {
	Kind      GenericKind
	Name      string   // `'a`, `T` or `N`
	Bounds    []string // inline bounds, e.g. ["Clone", "'static"]
	ConstType string   // type of a const parameter
	Default   string   // default value or type, never emitted in impls
}

// Generics holds the declared generics and where predicates of an item
type Generics struct {
	Params []GenericParam
	Where  []string
}

// IsEmpty reports whether no generic parameters are declared
func (g Generics) IsEmpty() bool {
	return len(g.Params) == 0
}

// ImplGenerics renders the parameter list for `impl<...>`, including
// inline bounds but without defaults.
func (g Generics) ImplGenerics() string {
	if g.IsEmpty() {
		return ""
	}

	params := make([]string, 0, len(g.Params))
	for _, p := range g.Params {
		switch p.Kind {
		case GenericConst:
			params = append(params, fmt.Sprintf("const %s: %s", p.Name, p.ConstType))
		default:
			if len(p.Bounds) > 0 {
				params = append(params, fmt.Sprintf("%s: %s", p.Name, strings.Join(p.Bounds, " + ")))
			} else {
				params = append(params, p.Name)
			}
		}
	}
	return "<" + strings.Join(params, ", ") + ">"
}

// TypeGenerics renders the argument list for `Ident<...>`
func (g Generics) TypeGenerics() string {
	if g.IsEmpty() {
		return ""
	}

	names := make([]string, 0, len(g.Params))
	for _, p := range g.Params {
		names = append(names, p.Name)
	}
	return "<" + strings.Join(names, ", ") + ">"
}
