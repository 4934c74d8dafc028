package traits

import (
	"github.com/conduit-lang/derivewhere/internal/compiler/shape"
)

type defaultTrait struct{ base }

func (defaultTrait) SupportsSkip() bool { return false }

func (defaultTrait) BuildSignature(_ Context, _ *shape.Item, body string) string {
	return lines(
		"fn default() -> Self {",
		body,
		"}",
	)
}

// BuildBody constructs the struct, or the variant marked `default`
func (defaultTrait) BuildBody(ctx Context, data *shape.Data) string {
	if data.Variant && !data.Default {
		return ""
	}

	value := ctx.Path() + "::default()"
	return data.Construct(func(*shape.Field) string { return value })
}
