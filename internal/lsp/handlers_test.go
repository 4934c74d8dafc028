package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.lsp.dev/protocol"

	"github.com/conduit-lang/derivewhere/internal/tooling"
)

func TestConvertCompletionKind(t *testing.T) {
	tests := []struct {
		input    tooling.CompletionKind
		expected protocol.CompletionItemKind
	}{
		{tooling.CompletionKindKeyword, protocol.CompletionItemKindKeyword},
		{tooling.CompletionKindTrait, protocol.CompletionItemKindInterface},
		{tooling.CompletionKindValue, protocol.CompletionItemKindEnumMember},
		{tooling.CompletionKindSnippet, protocol.CompletionItemKindSnippet},
		{tooling.CompletionKind(42), protocol.CompletionItemKindText},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, convertCompletionKind(tt.input))
	}
}

func TestConvertSymbolKind(t *testing.T) {
	assert.Equal(t, protocol.SymbolKindStruct, convertSymbolKind(tooling.SymbolKindItem))
	assert.Equal(t, protocol.SymbolKindEnumMember, convertSymbolKind(tooling.SymbolKindVariant))
	assert.Equal(t, protocol.SymbolKindField, convertSymbolKind(tooling.SymbolKindField))
	assert.Equal(t, protocol.SymbolKindObject, convertSymbolKind(tooling.SymbolKind(42)))
}

func TestConvertRange(t *testing.T) {
	r := convertRange(tooling.Range{
		Start: tooling.Position{Line: 1, Character: 4},
		End:   tooling.Position{Line: 1, Character: 9},
	})
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 4},
		End:   protocol.Position{Line: 1, Character: 9},
	}, r)

	assert.Equal(t, tooling.Position{Line: 3, Character: 7}, toolingPosition(protocol.Position{Line: 3, Character: 7}))
}
