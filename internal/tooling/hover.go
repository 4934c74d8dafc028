package tooling

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/derivewhere/internal/compiler/attr"
)

var traitDocs = map[attr.Trait]string{
	attr.Clone:         "Duplicates the value field by field. On unions it requires `Copy` and copies `*self`.",
	attr.Copy:          "Marker impl. Requires `Clone`.",
	attr.Debug:         "Formats through `debug_struct` or `debug_tuple`. Skipped fields are left out.",
	attr.Default:       "Builds the item from defaulted fields. Enums need one variant marked `default`.",
	attr.Eq:            "Marker impl. Requires `PartialEq`.",
	attr.Hash:          "Hashes the discriminant of enums, then every non-skipped field.",
	attr.Ord:           "Compares discriminants first, then non-skipped fields in declaration order.",
	attr.PartialEq:     "Compares discriminants first, then non-skipped fields.",
	attr.PartialOrd:    "Like `Ord` but returns an `Option<Ordering>`.",
	attr.Zeroize:       "Zeroizes every non-skipped field in place.",
	attr.ZeroizeOnDrop: "Zeroizes every non-skipped field when the value is dropped.",
}

// traitHover describes a trait name under the cursor
func (a *API) traitHover(doc *Document, pos Position) *Hover {
	word, r := wordAt(doc.Content, pos)
	if word == "" {
		return nil
	}
	t, ok := attr.Lookup(word, a.config.Traits.Features)
	if !ok {
		return nil
	}

	var content strings.Builder
	fmt.Fprintf(&content, "```rust\n%s\n```\n\n", t.Path(""))
	content.WriteString(traitDocs[t])
	if t.SupportsSkip() {
		content.WriteString("\n\n*Fields can be skipped for this trait.*")
	}
	return &Hover{Contents: content.String(), Range: r}
}

// buildHover creates hover information for a symbol. Items show their
// generated impls.
func buildHover(doc *Document, symbol *Symbol) *Hover {
	var content strings.Builder

	content.WriteString("```rust\n")
	switch symbol.Kind {
	case SymbolKindItem:
		content.WriteString(symbol.Detail)
	case SymbolKindVariant:
		fmt.Fprintf(&content, "%s // %s", symbol.Detail, symbol.Type)
	case SymbolKindField:
		content.WriteString(symbol.Detail)
	}
	content.WriteString("\n```\n")

	if symbol.ContainerName != "" {
		fmt.Fprintf(&content, "\n*In:* `%s`\n", symbol.ContainerName)
	}

	if symbol.Kind == SymbolKindItem {
		if out, ok := doc.Outputs[symbol.Name]; ok {
			content.WriteString("\n---\n\n**Generated**\n\n```rust\n")
			content.WriteString(out.String())
			content.WriteString("```\n")
		} else if d, ok := doc.Rejected[symbol.Name]; ok {
			fmt.Fprintf(&content, "\n**%s**: %s\n", d.Code, d.Message)
		}
	}

	return &Hover{
		Contents: content.String(),
		Range:    symbol.Range,
	}
}
