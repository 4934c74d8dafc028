package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/conduit-lang/derivewhere/internal/compiler/ast"
	"github.com/conduit-lang/derivewhere/internal/compiler/attr"
	"github.com/conduit-lang/derivewhere/internal/compiler/errors"
	"github.com/conduit-lang/derivewhere/internal/compiler/parser"
	"github.com/conduit-lang/derivewhere/internal/compiler/traits"
	"github.com/conduit-lang/derivewhere/internal/format"
)

func directives(t *testing.T, sources ...string) []*ast.Directive {
	t.Helper()
	result := make([]*ast.Directive, 0, len(sources))
	for i, source := range sources {
		d, err := parser.ParseDirective(source, ast.SourceLocation{File: "items.dw.yaml", Line: i + 1, Column: 1})
		require.NoError(t, err, source)
		result = append(result, d)
	}
	return result
}

func testStruct(t *testing.T, attrs ...string) *ast.ItemDecl {
	return &ast.ItemDecl{
		Kind:     ast.ItemStruct,
		Ident:    "Test",
		Generics: ast.Generics{Params: []ast.GenericParam{{Kind: ast.GenericType, Name: "T"}}},
		Attrs:    directives(t, attrs...),
		Fields: ast.FieldList{Style: ast.FieldsNamed, Fields: []*ast.FieldDecl{
			{Ident: "field", Type: "core::marker::PhantomData<T>"},
		}},
		Loc: ast.SourceLocation{File: "items.dw.yaml", Line: 1, Column: 1},
	}
}

func TestExpandStruct(t *testing.T) {
	out, err := NewExpander(traits.Options{}).Expand(testStruct(t, "derive_where(Clone, Copy; T)"))
	require.NoError(t, err)

	expected := `impl<T> ::core::clone::Clone for Test<T>
where T: ::core::clone::Clone
{
    #[inline]
    fn clone(&self) -> Self {
        match self {
            Test { field: ref __field } => Test { field: ::core::clone::Clone::clone(__field) },
        }
    }
}

impl<T> ::core::marker::Copy for Test<T>
where T: ::core::marker::Copy
{ }
`

	assert.Equal(t, "Test", out.Item)
	require.Len(t, out.Impls, 2)
	assert.Equal(t, attr.Clone, out.Impls[0].Trait)
	assert.Equal(t, "::core::marker::Copy", out.Impls[1].Path)
	assert.Equal(t, expected, out.String())
}

func TestExpandEnumDefault(t *testing.T) {
	decl := &ast.ItemDecl{
		Kind:     ast.ItemEnum,
		Ident:    "Test",
		Generics: ast.Generics{Params: []ast.GenericParam{{Kind: ast.GenericLifetime, Name: "'a"}, {Kind: ast.GenericType, Name: "T", Bounds: []string{"Copy"}}, {Kind: ast.GenericConst, Name: "N", ConstType: "usize", Default: "1"}}},
		Attrs:    directives(t, "derive_where(Default)"),
		Variants: []*ast.VariantDecl{
			{Ident: "A", Fields: ast.FieldList{Style: ast.FieldsUnnamed, Fields: []*ast.FieldDecl{{Type: "&'a [T; N]"}}}},
			{Ident: "B", Fields: ast.FieldList{Style: ast.FieldsNamed, Fields: []*ast.FieldDecl{{Ident: "a", Type: "T"}}}, Attrs: directives(t, "derive_where(default)")},
		},
	}

	out, err := NewExpander(traits.Options{}, WithFormat(&format.Config{UseTabs: true})).Expand(decl)
	require.NoError(t, err)

	expected := "impl<'a, T: Copy, const N: usize> ::core::default::Default for Test<'a, T, N>\n" +
		"{\n" +
		"\tfn default() -> Self {\n" +
		"\t\tTest::B { a: ::core::default::Default::default() }\n" +
		"\t}\n" +
		"}\n"
	assert.Equal(t, expected, out.String())
}

func TestWhereClause(t *testing.T) {
	tests := []struct {
		name   string
		where  []string
		source string
		want   string
	}{
		{"no bounds", nil, "derive_where(Debug)", ""},
		{"item where only", []string{"T: Sized"}, "derive_where(Debug)", "where T: Sized"},
		{"bare type", nil, "derive_where(Debug; T)", "where T: ::core::fmt::Debug"},
		{"explicit bounds", nil, "derive_where(Debug; T, U: Super + 'static)", "where T: ::core::fmt::Debug, U: Super + 'static"},
		{"merged", []string{"T: Sized"}, "derive_where(Debug; Vec<T>: Clone)", "where T: Sized, Vec<T>: Clone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decl := testStruct(t, tt.source)
			decl.Generics.Where = tt.where

			out, err := NewExpander(traits.Options{}).Expand(decl)
			require.NoError(t, err)
			require.Len(t, out.Impls, 1)

			header := "impl<T> ::core::fmt::Debug for Test<T>\n"
			if tt.want == "" {
				assert.Contains(t, out.Impls[0].Code, header+"{\n")
			} else {
				assert.Contains(t, out.Impls[0].Code, header+tt.want+"\n{\n")
			}
		})
	}
}

func TestExpandOrder(t *testing.T) {
	opts := traits.Options{Features: attr.Features{Zeroize: true, ZeroizeOnDrop: true}}
	decl := testStruct(t, "derive_where(Clone, Debug; T)", "derive_where(ZeroizeOnDrop)", "derive_where(Clone)")

	out, err := NewExpander(opts).Expand(decl)
	require.NoError(t, err)

	var paths []string
	for _, impl := range out.Impls {
		paths = append(paths, impl.Path)
	}
	assert.Equal(t, []string{
		"::core::clone::Clone",
		"::core::fmt::Debug",
		"::zeroize::ZeroizeOnDrop",
		"::core::ops::Drop",
		"::core::clone::Clone",
	}, paths)

	assert.Equal(t, "impl<T> ::zeroize::ZeroizeOnDrop for Test<T>\n{ }\n", out.Impls[2].Code)
	assert.Contains(t, out.Impls[3].Code, "use ::zeroize::__internal::AssertZeroizeOnDrop;")
	assert.Contains(t, out.Impls[0].Code, "where T: ::core::clone::Clone")
	assert.NotContains(t, out.Impls[4].Code, "where")
}

// A wrapper skipping its only field behaves like a unit: every instance
// compares equal, hashes nothing and prints only its name.
func TestExpandSkipInnerWrapper(t *testing.T) {
	decl := testStruct(t, "derive_where(Debug, Hash, Ord, PartialEq, PartialOrd)", "derive_where(skip_inner)")
	decl.Fields = ast.FieldList{Style: ast.FieldsUnnamed, Fields: []*ast.FieldDecl{
		{Type: "core::marker::PhantomData<T>"},
	}}

	out, err := NewExpander(traits.Options{}).Expand(decl)
	require.NoError(t, err)
	require.Len(t, out.Impls, 5)

	code := make(map[string]string)
	for _, impl := range out.Impls {
		code[impl.Path] = impl.Code
		assert.NotContains(t, impl.Code, "ref __0", impl.Path)
	}
	flat := func(path string) string {
		return strings.Join(strings.Fields(code[path]), " ")
	}

	debug := flat("::core::fmt::Debug")
	assert.Contains(t, debug, `Test(_) => { let mut __builder = ::core::fmt::Formatter::debug_tuple(__f, "Test"); ::core::fmt::DebugTuple::finish(&mut __builder) }`)

	assert.Contains(t, flat("::core::hash::Hash"), "match self { Test(_) => { } }")
	assert.Contains(t, flat("::core::cmp::PartialEq"), "(Test(_), Test(_)) => true,")
	assert.Contains(t, flat("::core::cmp::PartialOrd"), "(Test(_), Test(_)) => ::core::option::Option::Some(::core::cmp::Ordering::Equal),")

	expected := `impl<T> ::core::cmp::Ord for Test<T>
{
    #[inline]
    fn cmp(&self, __other: &Self) -> ::core::cmp::Ordering {
        match (self, __other) {
            (Test(_), Test(_)) =>
                ::core::cmp::Ordering::Equal,
        }
    }
}
`
	assert.Equal(t, expected, code["::core::cmp::Ord"])
}

func TestExpandRejects(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	decl := testStruct(t, "derive_where(Clone)")
	decl.Fields = ast.FieldList{Style: ast.FieldsUnit}

	out, err := NewExpander(traits.Options{}, WithLogger(zap.New(core))).Expand(decl)
	assert.Nil(t, out)

	ce, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrUnitStruct, ce.Code)
	assert.Equal(t, 1, logs.FilterMessage("item rejected").Len())
}

func TestNewExpanderDefaults(t *testing.T) {
	e := NewExpander(traits.Options{})
	assert.Equal(t, traits.StrategyOrdinal, e.Options().Strategy)
}
