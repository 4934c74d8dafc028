package traits

import (
	"github.com/conduit-lang/derivewhere/internal/compiler/attr"
	"github.com/conduit-lang/derivewhere/internal/compiler/shape"
)

type cloneTrait struct{ base }

func (cloneTrait) SupportsSkip() bool { return false }

func (cloneTrait) BuildSignature(_ Context, item *shape.Item, body string) string {
	// A union cannot be matched on, it is copied instead. The assertion
	// keeps the impl from compiling unless the union is also Copy.
	if item.IsUnion() {
		return lines(
			"#[inline]",
			"fn clone(&self) -> Self {",
			"struct __AssertCopy<__T: ::core::marker::Copy + ?::core::marker::Sized>(::core::marker::PhantomData<__T>);",
			"let _: __AssertCopy<Self>;",
			"*self",
			"}",
		)
	}

	return lines(
		"#[inline]",
		"fn clone(&self) -> Self {",
		matchSelf(body),
		"}",
	)
}

func (cloneTrait) BuildBody(ctx Context, data *shape.Data) string {
	if data.Kind == shape.KindUnion {
		return ""
	}

	clone := ctx.Path() + "::clone"
	value := data.Construct(func(f *shape.Field) string {
		return clone + "(" + f.SelfIdent() + ")"
	})
	return data.SelfPattern(attr.Clone) + " => " + value + ","
}

// markerTrait is a trait without items: Copy and Eq
type markerTrait struct {
	base
	trait attr.Trait
}

func (m markerTrait) SupportsSkip() bool { return m.trait.SupportsSkip() }

func (markerTrait) BuildSignature(Context, *shape.Item, string) string { return "" }

func (markerTrait) BuildBody(Context, *shape.Data) string { return "" }
