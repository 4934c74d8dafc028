package traits

import (
	"fmt"

	"github.com/conduit-lang/derivewhere/internal/compiler/attr"
	"github.com/conduit-lang/derivewhere/internal/compiler/shape"
)

type debugTrait struct{ base }

func (debugTrait) SupportsSkip() bool { return true }

func (debugTrait) BuildSignature(_ Context, _ *shape.Item, body string) string {
	return lines(
		"fn fmt(&self, __f: &mut ::core::fmt::Formatter<'_>) -> ::core::fmt::Result {",
		matchSelf(body),
		"}",
	)
}

func (debugTrait) BuildBody(_ Context, data *shape.Data) string {
	pattern := data.SelfPattern(attr.Debug)

	var builder, helper string
	switch data.Kind {
	case shape.KindStruct:
		builder, helper = "debug_struct", "::core::fmt::DebugStruct"
	case shape.KindTuple:
		builder, helper = "debug_tuple", "::core::fmt::DebugTuple"
	default:
		return fmt.Sprintf("%s => ::core::fmt::Formatter::write_str(__f, %q),", pattern, data.Ident)
	}

	calls := []string{
		pattern + " => {",
		fmt.Sprintf("let mut __builder = ::core::fmt::Formatter::%s(__f, %q);", builder, data.Ident),
	}
	for _, f := range data.Included(attr.Debug) {
		if data.Kind == shape.KindStruct {
			calls = append(calls, fmt.Sprintf("%s::field(&mut __builder, %q, %s);", helper, f.Name(), f.SelfIdent()))
		} else {
			calls = append(calls, fmt.Sprintf("%s::field(&mut __builder, %s);", helper, f.SelfIdent()))
		}
	}
	calls = append(calls, helper+"::finish(&mut __builder)", "}")

	return lines(calls...)
}
