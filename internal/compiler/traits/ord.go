package traits

import (
	"fmt"

	"github.com/conduit-lang/derivewhere/internal/compiler/attr"
	"github.com/conduit-lang/derivewhere/internal/compiler/shape"
)

// orderTrait generates Ord and PartialOrd, which only differ in the method
// name and in wrapping every result in `Option`
type orderTrait struct {
	base
	trait  attr.Trait
	method string
	output string
	equal  string
	wrap   func(string) string
}

var ord = orderTrait{
	trait:  attr.Ord,
	method: "cmp",
	output: "::core::cmp::Ordering",
	equal:  "::core::cmp::Ordering::Equal",
	wrap:   func(s string) string { return s },
}

var partialOrd = orderTrait{
	trait:  attr.PartialOrd,
	method: "partial_cmp",
	output: "::core::option::Option<::core::cmp::Ordering>",
	equal:  "::core::option::Option::Some(::core::cmp::Ordering::Equal)",
	wrap:   func(s string) string { return "::core::option::Option::Some(" + s + ")" },
}

func (o orderTrait) SupportsSkip() bool { return true }

func (o orderTrait) BuildSignature(ctx Context, item *shape.Item, body string) string {
	header := fmt.Sprintf("fn %s(&self, __other: &Self) -> %s {", o.method, o.output)

	if !item.Enum {
		return lines(
			"#[inline]",
			header,
			"match (self, __other) {",
			body,
			"}",
			"}",
		)
	}

	return lines(
		"#[inline]",
		header,
		o.discriminants(ctx),
		"if __self_disc == __other_disc {",
		"match (self, __other) {",
		body,
		catchAllArm(ctx.Options, item, o.equal),
		"}",
		"} else {",
		o.compareVariants(ctx, item),
		"}",
		"}",
	)
}

func (o orderTrait) BuildBody(ctx Context, data *shape.Data) string {
	if !pairArm(data) {
		return ""
	}

	return lines(
		"("+data.SelfPattern(o.trait)+", "+data.OtherPattern(o.trait)+") =>",
		o.chain(ctx, data.Included(o.trait))+",",
	)
}

// chain compares fields in order and returns the first result that is not
// equal
func (o orderTrait) chain(ctx Context, fields []*shape.Field) string {
	if len(fields) == 0 {
		return o.equal
	}

	f := fields[0]
	return lines(
		fmt.Sprintf("match %s::%s(%s, %s) {", ctx.Path(), o.method, f.SelfIdent(), f.OtherIdent()),
		o.equal+" => "+o.chain(ctx, fields[1:])+",",
		"__cmp => __cmp,",
		"}",
	)
}

func (o orderTrait) discriminants(ctx Context) string {
	if ctx.Options.Strategy == StrategyIntrinsic {
		return lines(
			"let __self_disc = ::core::intrinsics::discriminant_value(&self);",
			"let __other_disc = ::core::intrinsics::discriminant_value(&__other);",
		)
	}
	return lines(
		"let __self_disc = ::core::mem::discriminant(self);",
		"let __other_disc = ::core::mem::discriminant(__other);",
	)
}

// compareVariants orders two different variants by declaration order
func (o orderTrait) compareVariants(ctx Context, item *shape.Item) string {
	call := ctx.Path() + "::" + o.method

	switch ctx.Options.Strategy {
	case StrategyIntrinsic:
		return call + "(&__self_disc, &__other_disc)"
	case StrategyPairwise:
		return o.pairwise(ctx, item)
	default:
		return call + "(&unsafe { ::core::mem::transmute::<_, isize>(__self_disc) }, &unsafe { ::core::mem::transmute::<_, isize>(__other_disc) })"
	}
}

// pairwise spells out the ordering of every pair of distinct variants
func (o orderTrait) pairwise(ctx Context, item *shape.Item) string {
	arms := []string{"match self {"}

	for _, v := range item.Variants {
		arms = append(arms, v.SelfPattern(o.trait)+" =>", "match __other {")
		for _, other := range item.Variants {
			if other.Index == v.Index {
				continue
			}
			result := "::core::cmp::Ordering::Less"
			if other.Index < v.Index {
				result = "::core::cmp::Ordering::Greater"
			}
			arms = append(arms, other.OtherPattern(o.trait)+" => "+o.wrap(result)+",")
		}
		arms = append(arms, unreachableArm(ctx.Options), "},")
	}

	return lines(append(arms, "}")...)
}
