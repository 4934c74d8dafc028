// Package traits holds one generator per derivable trait. A generator turns
// an assembled item into the text of the trait's impl body; the surrounding
// impl header and where clause are composed by codegen.
package traits

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/derivewhere/internal/compiler/attr"
	"github.com/conduit-lang/derivewhere/internal/compiler/shape"
)

// Strategy selects how Ord and PartialOrd compare enum discriminants
type Strategy string

const (
	// StrategyOrdinal transmutes `mem::discriminant` to isize
	StrategyOrdinal Strategy = "ordinal"
	// StrategyIntrinsic uses the nightly `discriminant_value` intrinsic
	StrategyIntrinsic Strategy = "intrinsic"
	// StrategyPairwise matches every pair of variants explicitly and never
	// emits unsafe code
	StrategyPairwise Strategy = "pairwise"
)

// Strategies lists every valid strategy
var Strategies = []Strategy{StrategyOrdinal, StrategyIntrinsic, StrategyPairwise}

// ParseStrategy validates a strategy name. The empty string selects
// StrategyOrdinal.
func ParseStrategy(name string) (Strategy, error) {
	if name == "" {
		return StrategyOrdinal, nil
	}
	for _, s := range Strategies {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown strategy %q, expected one of ordinal, intrinsic, pairwise", name)
}

// Options are the generation settings shared by every generator
type Options struct {
	Strategy Strategy
	Features attr.Features
}

// Context is the trait being generated together with the options
type Context struct {
	Trait   attr.DeriveTrait
	Options Options
}

// Path is the fully qualified path of the trait being generated
func (c Context) Path() string {
	return c.Trait.Path()
}

// Generator produces the impl of one trait
type Generator interface {
	// SupportsSkip reports whether fields can be skipped for this trait
	SupportsSkip() bool
	// ImplPath is the path after `impl<..>` in the primary block
	ImplPath(ctx Context) string
	// BoundPath is the bound added for a bare type in a bound clause
	BoundPath(ctx Context) string
	// BuildSignature wraps the combined bodies of all Data in the method
	BuildSignature(ctx Context, item *shape.Item, body string) string
	// BuildBody builds the match arm (or expression) for one Data
	BuildBody(ctx Context, data *shape.Data) string
	// AdditionalImpl returns a second impl block emitted after the primary one
	AdditionalImpl(ctx Context, item *shape.Item, body string) (path, code string, ok bool)
}

var generators = map[attr.Trait]Generator{
	attr.Clone:         cloneTrait{},
	attr.Copy:          markerTrait{trait: attr.Copy},
	attr.Debug:         debugTrait{},
	attr.Default:       defaultTrait{},
	attr.Eq:            markerTrait{trait: attr.Eq},
	attr.Hash:          hashTrait{},
	attr.Ord:           ord,
	attr.PartialEq:     partialEqTrait{},
	attr.PartialOrd:    partialOrd,
	attr.Zeroize:       zeroizeTrait{},
	attr.ZeroizeOnDrop: zeroizeOnDropTrait{},
}

// Lookup returns the generator of a trait
func Lookup(t attr.Trait) (Generator, bool) {
	g, ok := generators[t]
	return g, ok
}

// base provides the defaults most generators share
type base struct{}

func (base) ImplPath(ctx Context) string {
	return ctx.Path()
}

func (base) BoundPath(ctx Context) string {
	return ctx.Path()
}

func (base) AdditionalImpl(Context, *shape.Item, string) (string, string, bool) {
	return "", "", false
}

// lines joins the non-empty parts with newlines
func lines(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

// matchSelf wraps arms in `match self { .. }`
func matchSelf(body string) string {
	return lines("match self {", body, "}")
}

// unreachableArm is the catch-all of a match whose remaining cases cannot
// occur. Only the pairwise strategy avoids unsafe code.
func unreachableArm(opts Options) string {
	if opts.Strategy == StrategyPairwise {
		return `_ => ::core::unreachable!("comparing variants yielded unexpected results"),`
	}
	return "_ => unsafe { ::core::hint::unreachable_unchecked() },"
}

// catchAllArm is the `_` arm closing a `match (self, __other)` over enum
// variants once every variant with fields has its own arm
func catchAllArm(opts Options, item *shape.Item, equal string) string {
	switch {
	case item.AnyFieldless():
		return "_ => " + equal + ","
	case len(item.Variants) > 1:
		return unreachableArm(opts)
	default:
		return ""
	}
}

// pairArm reports whether data gets its own arm in a `match (self, __other)`
func pairArm(data *shape.Data) bool {
	return !data.Variant || data.HasFields()
}

// Bodies builds the body of every Data of the item and joins them in
// declaration order
func Bodies(g Generator, ctx Context, item *shape.Item) string {
	datas := item.Datas()
	bodies := make([]string, 0, len(datas))
	for _, data := range datas {
		bodies = append(bodies, g.BuildBody(ctx, data))
	}
	return lines(bodies...)
}
