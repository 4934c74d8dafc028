package ast

import "strings"

// Directive is one parsed `derive_where(...)` attribute. Everything before an
// optional `;` is a list of nested metas, everything after it is a list of
// where predicates.
type Directive struct {
	Nested     []*Meta
	Predicates []*Predicate
	HasBounds  bool // a `;` separator was present
	Loc        SourceLocation
}

func (d *Directive) node() {}

// Location returns the source location of the directive
func (d *Directive) Location() SourceLocation {
	return d.Loc
}

// MetaKind distinguishes the syntactic forms of a nested meta
type MetaKind int

const (
	// MetaPath is a bare path such as `Clone` or `skip`
	MetaPath MetaKind = iota
	// MetaList is a path followed by a parenthesized list, `skip(Debug)`
	MetaList
	// MetaNameValue is `name = "literal"`
	MetaNameValue
	// MetaLiteral is a bare literal
	MetaLiteral
)

// Meta is a single nested item of a directive
type Meta struct {
	Kind   MetaKind
	Path   string  // `Clone`, `crate`, `::zeroize::Zeroize`
	Nested []*Meta // MetaList only
	Value  string  // MetaNameValue and MetaLiteral
	Quoted bool    // Value was a string literal
	Loc    SourceLocation
}

func (m *Meta) node() {}

// Location returns the source location of the meta
func (m *Meta) Location() SourceLocation {
	return m.Loc
}

// IsPath reports whether the meta is the bare path name
func (m *Meta) IsPath(name string) bool {
	return m.Kind == MetaPath && m.Path == name
}

// Ident returns the last path segment
func (m *Meta) Ident() string {
	if i := strings.LastIndex(m.Path, "::"); i >= 0 {
		return m.Path[i+2:]
	}
	return m.Path
}

// PredicateKind distinguishes where predicate forms
type PredicateKind int

const (
	// PredicateType is `Type: Bounds` or a bare `Type`
	PredicateType PredicateKind = iota
	// PredicateLifetime is `'a: 'b`
	PredicateLifetime
)

// Predicate is one entry of a bound clause
type Predicate struct {
	Kind    PredicateKind
	Bounded string   // the bounded type or lifetime as written
	Bounds  []string // explicit bounds, empty means "bind to the trait"
	Loc     SourceLocation
}

func (p *Predicate) node() {}

// Location returns the source location of the predicate
func (p *Predicate) Location() SourceLocation {
	return p.Loc
}

// String renders the predicate as Rust source
func (p *Predicate) String() string {
	if len(p.Bounds) == 0 {
		return p.Bounded
	}
	return p.Bounded + ": " + strings.Join(p.Bounds, " + ")
}
