package shape

import (
	"strconv"
	"strings"

	"github.com/conduit-lang/derivewhere/internal/compiler/ast"
	"github.com/conduit-lang/derivewhere/internal/compiler/attr"
)

// Kind is the body form of a Data
type Kind int

const (
	// KindStruct is a body with named fields
	KindStruct Kind = iota
	// KindTuple is a body with positional fields
	KindTuple
	// KindUnit is a body without fields, only valid for variants
	KindUnit
	// KindUnion is the named body of a union
	KindUnion
)

// Field is one field of a Data
type Field struct {
	Member    string // field name or positional index
	Named     bool
	Type      string
	Attr      attr.FieldAttr
	Loc       ast.SourceLocation
	skipInner attr.Skip
}

// Skip reports whether the field is skipped for the trait, either by its
// own skip directive or by the skip_inner of its item or variant
func (f *Field) Skip(t attr.Trait) bool {
	return f.Attr.Skip.Covers(t) || f.skipInner.Covers(t)
}

// SelfIdent is the binding of the field in the `self` pattern
func (f *Field) SelfIdent() string {
	return "__" + bindingName(f.Member)
}

// OtherIdent is the binding of the field in the `__other` pattern
func (f *Field) OtherIdent() string {
	return "__other_" + bindingName(f.Member)
}

// Name is the field name without a raw identifier prefix
func (f *Field) Name() string {
	return bindingName(f.Member)
}

func bindingName(member string) string {
	return strings.TrimPrefix(member, "r#")
}

// Data is one concrete body: a struct, a union or one enum variant
type Data struct {
	Ident     string // item or variant name
	Path      string // `Test` or `Test::A`
	Kind      Kind
	Fields    []*Field
	SkipInner attr.Skip
	Variant   bool
	Default   bool // marked `default`, variants only
	Index     int  // declaration index, variants only
	Loc       ast.SourceLocation
}

// HasFields reports whether the body declares at least one field
func (d *Data) HasFields() bool {
	return len(d.Fields) > 0
}

// Included returns the fields not skipped for the trait, in order
func (d *Data) Included(t attr.Trait) []*Field {
	fields := make([]*Field, 0, len(d.Fields))
	for _, f := range d.Fields {
		if !f.Skip(t) {
			fields = append(fields, f)
		}
	}
	return fields
}

// AnySkip reports whether the body or any of its fields carries a skip
func (d *Data) AnySkip() bool {
	if !d.SkipInner.IsNone() {
		return true
	}
	for _, f := range d.Fields {
		if !f.Attr.Skip.IsNone() {
			return true
		}
	}
	return false
}

// AnyFqs reports whether any field uses `Zeroize(fqs)`
func (d *Data) AnyFqs() bool {
	for _, f := range d.Fields {
		if f.Attr.ZeroizeFqs {
			return true
		}
	}
	return false
}

// SelfPattern matches `self` and binds every field used by the trait by
// reference. Fields skipped for the trait are matched with `_`.
func (d *Data) SelfPattern(t attr.Trait) string {
	return d.pattern(t, "ref ", (*Field).SelfIdent)
}

// OtherPattern matches `__other` like SelfPattern
func (d *Data) OtherPattern(t attr.Trait) string {
	return d.pattern(t, "ref ", (*Field).OtherIdent)
}

// MutPattern matches `self` binding fields by mutable reference
func (d *Data) MutPattern(t attr.Trait) string {
	return d.pattern(t, "ref mut ", (*Field).SelfIdent)
}

// WildcardPattern matches the body without binding anything
func (d *Data) WildcardPattern() string {
	switch d.Kind {
	case KindStruct, KindUnion:
		return d.Path + " { .. }"
	case KindTuple:
		return d.Path + "(..)"
	default:
		return d.Path
	}
}

func (d *Data) pattern(t attr.Trait, mode string, ident func(*Field) string) string {
	return d.Construct(func(f *Field) string {
		if f.Skip(t) {
			return "_"
		}
		return mode + ident(f)
	})
}

// Construct renders the body with each field set to value(field):
// `Test { a: v }`, `Test(v)` or `Test`.
func (d *Data) Construct(value func(*Field) string) string {
	switch d.Kind {
	case KindStruct, KindUnion:
		if len(d.Fields) == 0 {
			return d.Path + " { }"
		}
		parts := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			parts[i] = f.Member + ": " + value(f)
		}
		return d.Path + " { " + strings.Join(parts, ", ") + " }"
	case KindTuple:
		parts := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			parts[i] = value(f)
		}
		return d.Path + "(" + strings.Join(parts, ", ") + ")"
	default:
		return d.Path
	}
}

func newData(ident, path string, fields ast.FieldList, skipInner attr.Skip, scope attr.FieldScope) (*Data, error) {
	data := &Data{Ident: ident, Path: path, SkipInner: skipInner}

	switch {
	case scope.Union:
		data.Kind = KindUnion
	case fields.Style == ast.FieldsNamed:
		data.Kind = KindStruct
	case fields.Style == ast.FieldsUnnamed:
		data.Kind = KindTuple
	default:
		data.Kind = KindUnit
		return data, nil
	}

	scope.SkipInner = skipInner
	for i, decl := range fields.Fields {
		fieldAttr, err := attr.ParseFieldAttr(decl.Attrs, scope)
		if err != nil {
			return nil, err
		}

		field := &Field{
			Member:    decl.Ident,
			Named:     decl.Ident != "",
			Type:      decl.Type,
			Attr:      *fieldAttr,
			Loc:       decl.Loc,
			skipInner: skipInner,
		}
		if !field.Named {
			field.Member = strconv.Itoa(i)
		}
		data.Fields = append(data.Fields, field)
	}

	return data, nil
}
