package tooling

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/derivewhere/internal/compiler/attr"
	"github.com/conduit-lang/derivewhere/internal/compiler/traits"
)

const testURI = "models.dw.yaml"

const testSource = `items:
  - name: Wrapper
    generics: [T]
    attrs: ["derive_where(Clone, Debug; T)"]
    fields:
      - {name: inner, type: Inner}
  - name: Inner
    kind: enum
    attrs: ["derive_where(Clone)"]
    variants:
      - name: A
      - name: B
`

func openTestDocument(t *testing.T) *API {
	t.Helper()
	api := NewAPI()
	_, err := api.ParseFile(testURI, testSource)
	require.NoError(t, err)
	return api
}

// at returns the position of the first occurrence of needle on a line
func at(t *testing.T, line int, needle string) Position {
	t.Helper()
	lines := strings.Split(testSource, "\n")
	i := strings.Index(lines[line], needle)
	require.GreaterOrEqual(t, i, 0, "%q not on line %d", needle, line)
	return Position{Line: line, Character: i}
}

func TestParseFile(t *testing.T) {
	api := openTestDocument(t)

	doc, ok := api.GetDocument(testURI)
	require.True(t, ok)
	require.NotNil(t, doc.File)
	assert.Len(t, doc.File.Items, 2)

	assert.Contains(t, doc.Outputs, "Wrapper")
	assert.NotContains(t, doc.Outputs, "Inner")
	require.Contains(t, doc.Rejected, "Inner")
	assert.Equal(t, "ITM100", string(doc.Rejected["Inner"].Code))

	var names []string
	for _, sym := range doc.Symbols {
		names = append(names, sym.Name)
	}
	assert.Equal(t, []string{"Wrapper", "inner", "Inner", "A", "B"}, names)
}

func TestGetDiagnostics(t *testing.T) {
	api := openTestDocument(t)

	diagnostics := api.GetDiagnostics(testURI)
	require.Len(t, diagnostics, 1)
	assert.Equal(t, "ITM100", diagnostics[0].Code)
	assert.Equal(t, DiagnosticSource, diagnostics[0].Source)
	assert.Equal(t, Range{Start: Position{Line: 6, Character: 4}, End: Position{Line: 6, Character: 8}}, diagnostics[0].Range)

	assert.Nil(t, api.GetDiagnostics("unknown.dw.yaml"))
}

func TestGetDiagnosticsMalformed(t *testing.T) {
	api := NewAPI()
	doc, err := api.ParseFile("bad.dw.yaml", "items:\n  - kind: struct\n")
	require.NoError(t, err)
	assert.Nil(t, doc.File)
	assert.Empty(t, doc.Symbols)

	diagnostics := api.GetDiagnostics("bad.dw.yaml")
	require.Len(t, diagnostics, 1)
	assert.Equal(t, "SCH600", diagnostics[0].Code)
	assert.Contains(t, diagnostics[0].Message, "item without `name`")
}

func TestUpdateDocument(t *testing.T) {
	api := openTestDocument(t)
	before, _ := api.GetDocument(testURI)

	same, err := api.UpdateDocument(testURI, testSource, 2)
	require.NoError(t, err)
	assert.Same(t, before, same)
	assert.Equal(t, 2, same.Version)

	fixed := strings.Replace(testSource, "kind: enum", "kind: enum\n    generics: [U]", 1)
	updated, err := api.UpdateDocument(testURI, fixed, 3)
	require.NoError(t, err)
	assert.NotSame(t, before, updated)
	assert.Equal(t, 3, updated.Version)
	assert.Empty(t, updated.Diagnostics)
	assert.Contains(t, updated.Outputs, "Inner")
}

func TestCloseDocument(t *testing.T) {
	api := openTestDocument(t)
	require.NotEmpty(t, api.SearchSymbols("Wrapper"))

	api.CloseDocument(testURI)

	_, ok := api.GetDocument(testURI)
	assert.False(t, ok)
	assert.Empty(t, api.SearchSymbols("Wrapper"))
}

func TestGetHoverItem(t *testing.T) {
	api := openTestDocument(t)

	hover, err := api.GetHover(testURI, at(t, 1, "Wrapper"))
	require.NoError(t, err)
	require.NotNil(t, hover)
	assert.Contains(t, hover.Contents, "struct Wrapper<T>")
	assert.Contains(t, hover.Contents, "impl<T> ::core::clone::Clone for Wrapper<T>")

	rejected, err := api.GetHover(testURI, at(t, 6, "Inner"))
	require.NoError(t, err)
	require.NotNil(t, rejected)
	assert.Contains(t, rejected.Contents, "**ITM100**")
	assert.NotContains(t, rejected.Contents, "**Generated**")
}

func TestGetHoverTrait(t *testing.T) {
	api := openTestDocument(t)
	pos := at(t, 3, "Debug")
	pos.Character += 2

	hover, err := api.GetHover(testURI, pos)
	require.NoError(t, err)
	require.NotNil(t, hover)
	assert.Contains(t, hover.Contents, "::core::fmt::Debug")
	assert.Contains(t, hover.Contents, "can be skipped")
	assert.Equal(t, pos.Character-2, hover.Range.Start.Character)
	assert.Equal(t, pos.Character+3, hover.Range.End.Character)
}

func TestGetHoverNoSymbol(t *testing.T) {
	api := openTestDocument(t)

	hover, err := api.GetHover(testURI, Position{Line: 0, Character: 1})
	require.NoError(t, err)
	assert.Nil(t, hover)

	_, err = api.GetHover("missing.dw.yaml", Position{})
	assert.Error(t, err)
}

func TestGetDefinition(t *testing.T) {
	api := openTestDocument(t)

	loc, err := api.GetDefinition(testURI, at(t, 5, "inner"))
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, testURI, loc.URI)
	assert.Equal(t, 6, loc.Range.Start.Line, "field type resolves to the described item")

	self, err := api.GetDefinition(testURI, at(t, 10, "A"))
	require.NoError(t, err)
	assert.Equal(t, 10, self.Range.Start.Line)

	none, err := api.GetDefinition(testURI, Position{Line: 0})
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestGetReferences(t *testing.T) {
	api := openTestDocument(t)
	_, err := api.ParseFile("other.dw.yaml", "items:\n  - name: Other\n    generics: [T]\n    attrs: [\"derive_where(Debug)\"]\n    fields:\n      - {name: inner, type: T}\n")
	require.NoError(t, err)

	refs, err := api.GetReferences(testURI, at(t, 5, "inner"))
	require.NoError(t, err)
	assert.Len(t, refs, 2)

	none, err := api.GetReferences(testURI, Position{Line: 0})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetDocumentSymbols(t *testing.T) {
	api := openTestDocument(t)

	symbols, err := api.GetDocumentSymbols(testURI)
	require.NoError(t, err)
	require.Len(t, symbols, 5)

	field := symbols[1]
	assert.Equal(t, SymbolKindField, field.Kind)
	assert.Equal(t, "Wrapper", field.ContainerName)
	assert.Equal(t, "inner: Inner", field.Detail)

	variant := symbols[3]
	assert.Equal(t, SymbolKindVariant, variant.Kind)
	assert.Equal(t, "Inner::A", variant.Detail)
	assert.Equal(t, "unit", variant.Type)
}

func TestGetGenerated(t *testing.T) {
	api := openTestDocument(t)

	code, ok := api.GetGenerated(testURI, "Wrapper")
	require.True(t, ok)
	assert.Contains(t, code, "impl<T> ::core::fmt::Debug for Wrapper<T>")

	_, ok = api.GetGenerated(testURI, "Inner")
	assert.False(t, ok)
}

func labels(items []CompletionItem) []string {
	result := make([]string, len(items))
	for i, item := range items {
		result[i] = item.Label
	}
	return result
}

func TestGetCompletions(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		features attr.Features
		contains []string
		excludes []string
	}{
		{"keys", "    ", attr.Features{}, []string{"name", "variants", "derive_where"}, []string{"Clone"}},
		{"kind values", "    kind: ", attr.Features{}, []string{"struct", "enum", "union"}, []string{"named"}},
		{"style values", "        style: ", attr.Features{}, []string{"tuple"}, []string{"enum"}},
		{"traits", `    attrs: ["derive_where(Clone, `, attr.Features{}, []string{"Debug", "PartialOrd", "skip", "default"}, []string{"Zeroize", "crate"}},
		{"zeroize traits", `    attrs: ["derive_where(`, attr.Features{Zeroize: true}, []string{"Zeroize", "ZeroizeOnDrop", "crate", "fqs"}, nil},
		{"skip group", `        attrs: ["derive_where(skip(Debug, `, attr.Features{}, []string{"Debug", "Hash"}, []string{"Clone", "Copy", "skip"}},
		{"closed directive", `    attrs: ["derive_where(Clone)", `, attr.Features{}, nil, []string{"Clone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := NewAPIWithConfig(&Config{Traits: traits.Options{Features: tt.features}})
			content := "items:\n" + tt.line
			_, err := api.ParseFile(testURI, content)
			require.NoError(t, err)

			items, err := api.GetCompletions(testURI, Position{Line: 1, Character: len(tt.line)})
			require.NoError(t, err)

			got := labels(items)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}

func TestGetCompletionsBounds(t *testing.T) {
	api := NewAPI()
	line := `    attrs: ["derive_where(Clone; `
	_, err := api.ParseFile(testURI, "items:\n"+line)
	require.NoError(t, err)

	items, err := api.GetCompletions(testURI, Position{Line: 1, Character: len(line)})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBaseTypeName(t *testing.T) {
	tests := map[string]string{
		"Inner":                  "Inner",
		"&'a Vec<T>":             "Vec",
		"&mut Inner":             "Inner",
		"::core::option::Option": "Option",
		"[u8; 32]":               "",
		"crate::models::User<T>": "User",
	}
	for input, want := range tests {
		assert.Equal(t, want, baseTypeName(input), input)
	}
}

func TestPositionInRange(t *testing.T) {
	r := Range{Start: Position{Line: 1, Character: 4}, End: Position{Line: 1, Character: 10}}

	assert.True(t, positionInRange(Position{Line: 1, Character: 4}, r))
	assert.True(t, positionInRange(Position{Line: 1, Character: 10}, r))
	assert.False(t, positionInRange(Position{Line: 1, Character: 3}, r))
	assert.False(t, positionInRange(Position{Line: 2, Character: 5}, r))
}

func TestThreadSafety(t *testing.T) {
	api := NewAPI()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uri := fmt.Sprintf("file%d.dw.yaml", i)
			_, _ = api.ParseFile(uri, testSource)
			_, _ = api.UpdateDocument(uri, testSource+"\n", 2)
			_ = api.GetDiagnostics(uri)
			_, _ = api.GetHover(uri, Position{Line: 1, Character: 10})
			_ = api.SearchSymbols("inner")
		}(i)
	}
	wg.Wait()

	assert.Len(t, api.SearchSymbols("Wrapper"), 10)
}

func BenchmarkParseFile(b *testing.B) {
	api := NewAPI()
	for i := 0; i < b.N; i++ {
		_, _ = api.ParseFile(testURI, testSource)
	}
}
