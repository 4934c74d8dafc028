// Package codegen composes the impl blocks for an item. For every
// derive_where entry and every trait it requests, it merges the item's own
// where predicates with the entry's bound clause, asks the trait generator
// for the method bodies and emits the primary impl block followed by the
// optional additional block.
package codegen

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/conduit-lang/derivewhere/internal/compiler/ast"
	"github.com/conduit-lang/derivewhere/internal/compiler/attr"
	"github.com/conduit-lang/derivewhere/internal/compiler/shape"
	"github.com/conduit-lang/derivewhere/internal/compiler/traits"
	"github.com/conduit-lang/derivewhere/internal/format"
)

// Impl is one emitted impl block
type Impl struct {
	Trait attr.Trait
	Path  string // path after `impl<..>`
	Code  string
}

// Output is the expansion of one item
type Output struct {
	Item  string
	Impls []Impl
}

// String joins every impl block, separated by blank lines
func (o *Output) String() string {
	blocks := make([]string, len(o.Impls))
	for i, impl := range o.Impls {
		blocks[i] = strings.TrimRight(impl.Code, "\n")
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// Option configures an Expander
type Option func(*Expander)

// WithLogger sets the logger, zap.NewNop() by default
func WithLogger(logger *zap.Logger) Option {
	return func(e *Expander) {
		e.logger = logger
	}
}

// WithFormat sets the indentation of the emitted code
func WithFormat(config *format.Config) Option {
	return func(e *Expander) {
		e.format = config
	}
}

// Expander turns item declarations into impl blocks. It holds no mutable
// state and can be shared between goroutines.
type Expander struct {
	opts   traits.Options
	format *format.Config
	logger *zap.Logger
}

// NewExpander creates an Expander generating with opts
func NewExpander(opts traits.Options, options ...Option) *Expander {
	if opts.Strategy == "" {
		opts.Strategy = traits.StrategyOrdinal
	}

	e := &Expander{
		opts:   opts,
		format: format.DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Options returns the generation options
func (e *Expander) Options() traits.Options {
	return e.opts
}

// Expand validates decl and generates every requested impl. The first
// diagnostic aborts the expansion and no output is produced.
func (e *Expander) Expand(decl *ast.ItemDecl) (*Output, error) {
	input, err := shape.Assemble(decl, e.opts.Features)
	if err != nil {
		e.logger.Debug("item rejected",
			zap.String("item", decl.Ident),
			zap.Stringer("location", decl.Loc),
			zap.Error(err),
		)
		return nil, err
	}

	return e.ExpandInput(input)
}

// ExpandInput generates every requested impl of an assembled item
func (e *Expander) ExpandInput(input *shape.Input) (*Output, error) {
	output := &Output{Item: input.Item.Ident}
	formatter := format.New(e.format)

	for _, entry := range input.DeriveWheres {
		for _, dt := range entry.Traits {
			g, ok := traits.Lookup(dt.Trait)
			if !ok {
				return nil, fmt.Errorf("no generator for trait %s", dt.Trait)
			}

			ctx := traits.Context{Trait: dt, Options: e.opts}
			where := whereClause(input.Generics, entry, g.BoundPath(ctx))
			body := traits.Bodies(g, ctx, input.Item)

			primary := implBlock(input, g.ImplPath(ctx), where, g.BuildSignature(ctx, input.Item, body))
			output.Impls = append(output.Impls, Impl{
				Trait: dt.Trait,
				Path:  g.ImplPath(ctx),
				Code:  formatter.Format(primary),
			})

			if path, code, ok := g.AdditionalImpl(ctx, input.Item, body); ok {
				output.Impls = append(output.Impls, Impl{
					Trait: dt.Trait,
					Path:  path,
					Code:  formatter.Format(implBlock(input, path, where, code)),
				})
			}
		}
	}

	e.logger.Debug("item expanded",
		zap.String("item", output.Item),
		zap.Int("impls", len(output.Impls)),
	)

	return output, nil
}

// implBlock renders `impl<..> path for Item<..> where .. { code }`
func implBlock(input *shape.Input, path, where, code string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "impl%s %s for %s%s\n", input.Generics.ImplGenerics(), path, input.Item.Ident, input.Generics.TypeGenerics())
	if where != "" {
		sb.WriteString(where)
		sb.WriteString("\n")
	}

	if code == "" {
		sb.WriteString("{ }\n")
		return sb.String()
	}

	sb.WriteString("{\n")
	sb.WriteString(code)
	sb.WriteString("\n}\n")
	return sb.String()
}

// whereClause merges the item's own where predicates with the bound clause
// of the entry. A bare type in the bound clause is bound by the trait.
func whereClause(generics ast.Generics, entry *attr.DeriveWhere, bound string) string {
	predicates := make([]string, 0, len(generics.Where)+len(entry.Predicates))
	predicates = append(predicates, generics.Where...)

	for _, p := range entry.Predicates {
		if len(p.Bounds) == 0 {
			predicates = append(predicates, p.Bounded+": "+bound)
			continue
		}
		predicates = append(predicates, p.String())
	}

	if len(predicates) == 0 {
		return ""
	}
	return "where " + strings.Join(predicates, ", ")
}
