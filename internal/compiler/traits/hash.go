package traits

import (
	"github.com/conduit-lang/derivewhere/internal/compiler/attr"
	"github.com/conduit-lang/derivewhere/internal/compiler/shape"
)

type hashTrait struct{ base }

func (hashTrait) SupportsSkip() bool { return true }

func (hashTrait) BuildSignature(_ Context, _ *shape.Item, body string) string {
	return lines(
		"fn hash<__H: ::core::hash::Hasher>(&self, __state: &mut __H) {",
		matchSelf(body),
		"}",
	)
}

// BuildBody hashes the variant discriminant first so that variants with
// equal fields hash differently
func (hashTrait) BuildBody(ctx Context, data *shape.Data) string {
	hash := ctx.Path() + "::hash"

	calls := []string{data.SelfPattern(attr.Hash) + " => {"}
	if data.Variant {
		calls = append(calls, hash+"(&::core::mem::discriminant(self), __state);")
	}
	for _, f := range data.Included(attr.Hash) {
		calls = append(calls, hash+"("+f.SelfIdent()+", __state);")
	}
	calls = append(calls, "}")

	return lines(calls...)
}
