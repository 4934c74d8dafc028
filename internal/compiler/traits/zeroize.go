package traits

import (
	"github.com/conduit-lang/derivewhere/internal/compiler/attr"
	"github.com/conduit-lang/derivewhere/internal/compiler/shape"
)

type zeroizeTrait struct{ base }

func (zeroizeTrait) SupportsSkip() bool { return true }

func (zeroizeTrait) BuildSignature(ctx Context, _ *shape.Item, body string) string {
	return lines(
		"fn zeroize(&mut self) {",
		"use "+ctx.Path()+";",
		matchSelf(body),
		"}",
	)
}

// BuildBody calls `zeroize` as a method, or through the trait path for
// fields marked `Zeroize(fqs)`
func (zeroizeTrait) BuildBody(ctx Context, data *shape.Data) string {
	calls := []string{data.MutPattern(attr.Zeroize) + " => {"}
	for _, f := range data.Included(attr.Zeroize) {
		if f.Attr.ZeroizeFqs {
			calls = append(calls, ctx.Path()+"::zeroize("+f.SelfIdent()+");")
		} else {
			calls = append(calls, f.SelfIdent()+".zeroize();")
		}
	}
	calls = append(calls, "}")

	return lines(calls...)
}

// zeroizeOnDropTrait implements `ZeroizeOnDrop` when the zeroize_on_drop
// feature is enabled. Otherwise it only implements `Drop` in terms of
// `Zeroize`, which must then be implemented as well.
type zeroizeOnDropTrait struct{}

func (zeroizeOnDropTrait) SupportsSkip() bool { return true }

func (zeroizeOnDropTrait) ImplPath(ctx Context) string {
	if ctx.Options.Features.ZeroizeOnDrop {
		return ctx.Path()
	}
	return "::core::ops::Drop"
}

func (zeroizeOnDropTrait) BoundPath(ctx Context) string {
	if ctx.Options.Features.ZeroizeOnDrop {
		return ctx.Path()
	}
	return attr.Zeroize.Path(ctx.Trait.Crate)
}

func (zeroizeOnDropTrait) BuildSignature(ctx Context, _ *shape.Item, _ string) string {
	if ctx.Options.Features.ZeroizeOnDrop {
		return ""
	}
	return lines(
		"fn drop(&mut self) {",
		attr.Zeroize.Path(ctx.Trait.Crate)+"::zeroize(self);",
		"}",
	)
}

func (zeroizeOnDropTrait) BuildBody(_ Context, data *shape.Data) string {
	calls := []string{data.MutPattern(attr.ZeroizeOnDrop) + " => {"}
	for _, f := range data.Included(attr.ZeroizeOnDrop) {
		calls = append(calls, f.SelfIdent()+".zeroize_or_on_drop();")
	}
	calls = append(calls, "}")

	return lines(calls...)
}

// AdditionalImpl emits the `Drop` impl that zeroizes every field, or
// asserts at compile time that the field zeroizes itself on drop
func (zeroizeOnDropTrait) AdditionalImpl(ctx Context, _ *shape.Item, body string) (string, string, bool) {
	if !ctx.Options.Features.ZeroizeOnDrop {
		return "", "", false
	}

	internal := ctx.Trait.CratePath() + "::__internal"
	code := lines(
		"fn drop(&mut self) {",
		"use "+internal+"::AssertZeroizeOnDrop;",
		"use "+internal+"::AssertZeroize;",
		matchSelf(body),
		"}",
	)
	return "::core::ops::Drop", code, true
}
