package traits

import (
	"strings"

	"github.com/conduit-lang/derivewhere/internal/compiler/attr"
	"github.com/conduit-lang/derivewhere/internal/compiler/shape"
)

type partialEqTrait struct{ base }

func (partialEqTrait) SupportsSkip() bool { return true }

func (partialEqTrait) BuildSignature(ctx Context, item *shape.Item, body string) string {
	if !item.Enum {
		return lines(
			"#[inline]",
			"fn eq(&self, __other: &Self) -> bool {",
			"match (self, __other) {",
			body,
			"}",
			"}",
		)
	}

	return lines(
		"#[inline]",
		"fn eq(&self, __other: &Self) -> bool {",
		"if ::core::mem::discriminant(self) == ::core::mem::discriminant(__other) {",
		"match (self, __other) {",
		body,
		catchAllArm(ctx.Options, item, "true"),
		"}",
		"} else {",
		"false",
		"}",
		"}",
	)
}

func (partialEqTrait) BuildBody(ctx Context, data *shape.Data) string {
	if !pairArm(data) {
		return ""
	}

	eq := ctx.Path() + "::eq"
	terms := []string{"true"}
	for _, f := range data.Included(attr.PartialEq) {
		terms = append(terms, eq+"("+f.SelfIdent()+", "+f.OtherIdent()+")")
	}

	return lines(
		"("+data.SelfPattern(attr.PartialEq)+", "+data.OtherPattern(attr.PartialEq)+") =>",
		strings.Join(terms, " && ")+",",
	)
}
