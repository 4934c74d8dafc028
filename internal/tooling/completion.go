package tooling

import (
	"strings"

	"github.com/conduit-lang/derivewhere/internal/compiler/attr"
)

// CompletionContext describes the context at a completion position
type CompletionContext struct {
	Kind CompletionContextKind

	// Key is the description key being completed for value contexts
	Key string
}

// CompletionContextKind categorizes the completion context
type CompletionContextKind int

const (
	// CompletionContextUnknown represents an unknown context
	CompletionContextUnknown CompletionContextKind = iota
	// CompletionContextKey is the start of a description key
	CompletionContextKey
	// CompletionContextValue is the value of an enumerated key
	CompletionContextValue
	// CompletionContextDirective is the trait list of a derive_where
	CompletionContextDirective
	// CompletionContextSkip is the trait list of skip or skip_inner
	CompletionContextSkip
	// CompletionContextBounds is the bound clause after `;`
	CompletionContextBounds
)

var descriptionKeys = []struct {
	name   string
	detail string
}{
	{"items", "list of item descriptions"},
	{"name", "item, variant or field name"},
	{"kind", "struct, enum or union"},
	{"generics", "generic parameters in declaration order"},
	{"where", "where predicates of the item"},
	{"attrs", "attributes, derive_where(..) entries are applied"},
	{"fields", "fields of a struct, union or variant"},
	{"variants", "variants of an enum"},
	{"style", "named, tuple or unit body"},
	{"type", "Rust type of a field"},
}

var enumeratedValues = map[string][]string{
	"kind":  {"struct", "enum", "union"},
	"style": {"named", "tuple", "unit"},
}

// getCompletionContext determines the completion context at a position
func getCompletionContext(doc *Document, pos Position) *CompletionContext {
	lines := strings.Split(doc.Content, "\n")
	if pos.Line >= len(lines) {
		return &CompletionContext{Kind: CompletionContextUnknown}
	}

	line := lines[pos.Line]
	if pos.Character > len(line) {
		pos.Character = len(line)
	}
	prefix := line[:pos.Character]

	if open := strings.LastIndex(prefix, "derive_where("); open >= 0 {
		inner := prefix[open+len("derive_where("):]
		if !closed(inner) {
			switch {
			case strings.Contains(inner, ";"):
				return &CompletionContext{Kind: CompletionContextBounds}
			case openGroup(inner, "skip_inner(") || openGroup(inner, "skip("):
				return &CompletionContext{Kind: CompletionContextSkip}
			default:
				return &CompletionContext{Kind: CompletionContextDirective}
			}
		}
	}

	trimmed := strings.TrimLeft(prefix, " -{")
	if key, _, found := strings.Cut(trimmed, ":"); found {
		key = strings.TrimSpace(key)
		if _, ok := enumeratedValues[key]; ok {
			return &CompletionContext{Kind: CompletionContextValue, Key: key}
		}
		return &CompletionContext{Kind: CompletionContextUnknown}
	}

	return &CompletionContext{Kind: CompletionContextKey}
}

// closed reports whether the directive's own parenthesis is closed
func closed(inner string) bool {
	depth := 1
	for _, r := range inner {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

// openGroup reports whether the cursor is inside an unclosed name(..)
func openGroup(inner, name string) bool {
	i := strings.LastIndex(inner, name)
	return i >= 0 && !strings.Contains(inner[i:], ")")
}

// buildCompletions builds completion items based on context
func (a *API) buildCompletions(context *CompletionContext) []CompletionItem {
	features := a.config.Traits.Features

	switch context.Kind {
	case CompletionContextKey:
		return keyCompletions()
	case CompletionContextValue:
		return valueCompletions(context.Key)
	case CompletionContextDirective:
		return append(traitCompletions(features, false), optionCompletions(features)...)
	case CompletionContextSkip:
		return traitCompletions(features, true)
	default:
		return nil
	}
}

func keyCompletions() []CompletionItem {
	items := make([]CompletionItem, 0, len(descriptionKeys)+1)
	for _, key := range descriptionKeys {
		items = append(items, CompletionItem{
			Label:      key.name,
			Kind:       CompletionKindKeyword,
			Detail:     key.detail,
			InsertText: key.name + ": ",
		})
	}
	items = append(items, CompletionItem{
		Label:         "derive_where",
		Kind:          CompletionKindSnippet,
		Detail:        "derive_where entry",
		Documentation: "Implements the listed traits with bounds on the given types only.",
		InsertText:    `"derive_where(${1:Clone}; ${2:T})"$0`,
		SortText:      "~",
	})
	return items
}

func valueCompletions(key string) []CompletionItem {
	values := enumeratedValues[key]
	items := make([]CompletionItem, 0, len(values))
	for _, v := range values {
		items = append(items, CompletionItem{Label: v, Kind: CompletionKindValue, Detail: key})
	}
	return items
}

// traitCompletions lists the available traits, only those that support
// skipping when skipOnly is set
func traitCompletions(features attr.Features, skipOnly bool) []CompletionItem {
	traits := attr.Traits(features)
	items := make([]CompletionItem, 0, len(traits))
	for _, t := range traits {
		if skipOnly && !t.SupportsSkip() {
			continue
		}
		items = append(items, CompletionItem{
			Label:         t.String(),
			Kind:          CompletionKindTrait,
			Detail:        t.Path(""),
			Documentation: traitDocs[t],
		})
	}
	return items
}

func optionCompletions(features attr.Features) []CompletionItem {
	items := []CompletionItem{
		{Label: "skip", Kind: CompletionKindKeyword, Detail: "skip a field for all or some traits", InsertText: "skip($0)"},
		{Label: "skip_inner", Kind: CompletionKindKeyword, Detail: "skip every field of an item or variant", InsertText: "skip_inner($0)"},
		{Label: "default", Kind: CompletionKindKeyword, Detail: "mark the variant returned by Default"},
	}
	if features.ZeroizeEnabled() {
		items = append(items,
			CompletionItem{Label: "crate", Kind: CompletionKindKeyword, Detail: "path of the zeroize crate", InsertText: "crate = $0"},
			CompletionItem{Label: "fqs", Kind: CompletionKindKeyword, Detail: "zeroize the field through its fully qualified path"},
		)
	}
	for i := range items {
		items[i].SortText = "z" + items[i].Label
	}
	return items
}
