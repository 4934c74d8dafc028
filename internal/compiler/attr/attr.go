package attr

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/derivewhere/internal/compiler/ast"
	"github.com/conduit-lang/derivewhere/internal/compiler/errors"
	"github.com/conduit-lang/derivewhere/internal/compiler/lexer"
	utilstrings "github.com/conduit-lang/derivewhere/internal/util/strings"
)

const (
	optionSkip      = "skip"
	optionSkipInner = "skip_inner"
	optionDefault   = "default"
	optionCrate     = "crate"
	optionFqs       = "fqs"
)

// ItemAttr is the item-level configuration
type ItemAttr struct {
	SkipInner    Skip
	DeriveWheres []*DeriveWhere
}

// ParseItemAttr builds the item-level configuration from its directives.
// A directive consisting of a single `skip_inner` option configures skipping,
// every other directive is a derive_where entry.
func ParseItemAttr(decl *ast.ItemDecl, features Features) (*ItemAttr, error) {
	attr := &ItemAttr{}

	for _, directive := range decl.Attrs {
		if isSkipInner(directive) {
			meta := directive.Nested[0]
			if decl.Kind != ast.ItemStruct {
				return nil, errors.NewUnknownOption(meta.Loc)
			}
			if err := attr.SkipInner.add(meta, Skip{}, features); err != nil {
				return nil, err
			}
			continue
		}

		entry, err := parseDeriveWhere(directive, features)
		if err != nil {
			return nil, err
		}
		attr.DeriveWheres = append(attr.DeriveWheres, entry)
	}

	if len(attr.DeriveWheres) == 0 {
		return nil, errors.NewOptionRequired(decl.Loc, "derive_where")
	}

	return attr, nil
}

func isSkipInner(directive *ast.Directive) bool {
	return !directive.HasBounds &&
		len(directive.Nested) == 1 &&
		(directive.Nested[0].Kind == ast.MetaPath || directive.Nested[0].Kind == ast.MetaList) &&
		directive.Nested[0].Path == optionSkipInner
}

// parseDeriveWhere parses one `derive_where(Trait, ..; Predicate, ..)` entry
func parseDeriveWhere(directive *ast.Directive, features Features) (*DeriveWhere, error) {
	if len(directive.Nested) == 0 {
		return nil, errors.NewTraitSyntax(directive.Loc, Names(features))
	}

	entry := &DeriveWhere{Loc: directive.Loc}

	for _, meta := range directive.Nested {
		dt, err := parseDeriveTrait(meta, features)
		if err != nil {
			return nil, err
		}
		if entry.Contains(dt.Trait) {
			return nil, errors.NewOptionDuplicate(meta.Loc, dt.Trait.String())
		}
		entry.Traits = append(entry.Traits, dt)
	}

	for _, predicate := range directive.Predicates {
		if predicate.Kind != ast.PredicateType {
			return nil, errors.NewUnsupportedPredicate(predicate.Loc)
		}
		entry.Predicates = append(entry.Predicates, predicate)
	}

	return entry, nil
}

// parseDeriveTrait parses one trait of an entry with its options
func parseDeriveTrait(meta *ast.Meta, features Features) (DeriveTrait, error) {
	switch meta.Kind {
	case ast.MetaPath, ast.MetaList:
	default:
		return DeriveTrait{}, errors.NewTraitSyntax(meta.Loc, Names(features))
	}

	t, err := resolveTrait(meta, features)
	if err != nil {
		return DeriveTrait{}, err
	}
	dt := DeriveTrait{Trait: t, Loc: meta.Loc}

	if meta.Kind == ast.MetaPath {
		return dt, nil
	}

	if !t.RequiresZeroize() {
		return DeriveTrait{}, errors.NewTraitOptions(meta.Loc, t.String())
	}
	if len(meta.Nested) == 0 {
		return DeriveTrait{}, errors.NewOptionRequired(meta.Loc, t.String())
	}

	crateSet := false
	for _, option := range meta.Nested {
		if option.Kind != ast.MetaNameValue || option.Path != optionCrate {
			return DeriveTrait{}, errors.NewTraitOption(option.Loc, t.String())
		}
		if crateSet {
			return DeriveTrait{}, errors.NewOptionDuplicate(option.Loc, optionCrate)
		}
		if !option.Quoted {
			return DeriveTrait{}, errors.NewCratePath(option.Loc, fmt.Sprintf("found `%s`", option.Value))
		}
		if reason, ok := validatePath(option.Value); !ok {
			return DeriveTrait{}, errors.NewCratePath(option.Loc, reason)
		}
		dt.Crate = option.Value
		crateSet = true
	}

	return dt, nil
}

// resolveTrait looks up the trait named by a path or list meta
func resolveTrait(meta *ast.Meta, features Features) (Trait, error) {
	if t, ok := Lookup(meta.Path, features); ok {
		return t, nil
	}

	available := Names(features)
	err := errors.NewUnsupportedTrait(meta.Loc, available)
	if match := utilstrings.FindBestMatch(meta.Path, available, nil); match != "" {
		err = err.WithSuggestion(fmt.Sprintf("Did you mean `%s`?", match))
	}
	return 0, err
}

// validatePath checks a crate path such as `::zeroize` or `my::zeroize`
func validatePath(path string) (string, bool) {
	if path == "" {
		return "found empty string", false
	}

	segments := strings.Split(strings.TrimPrefix(path, "::"), "::")
	for _, segment := range segments {
		if !lexer.IsValidIdentifier(segment) {
			return fmt.Sprintf("found `%s`", path), false
		}
	}
	return "", true
}

// VariantAttr is the variant-level configuration
type VariantAttr struct {
	Default   bool
	SkipInner Skip
}

// DefaultAccumulator counts default markers across all variants of an enum
type DefaultAccumulator struct {
	count  int
	first  ast.SourceLocation
	second ast.SourceLocation
}

// Mark records one default marker
func (a *DefaultAccumulator) Mark(loc ast.SourceLocation) {
	switch a.count {
	case 0:
		a.first = loc
	case 1:
		a.second = loc
	}
	a.count++
}

// Count returns the number of recorded markers
func (a *DefaultAccumulator) Count() int {
	return a.count
}

// Check validates the markers once every variant has been visited
func (a *DefaultAccumulator) Check(entries []*DeriveWhere, itemLoc ast.SourceLocation) error {
	if !AnyContains(entries, Default) {
		if a.count > 0 {
			return errors.NewDefaultWithoutTrait(a.first)
		}
		return nil
	}

	switch {
	case a.count == 0:
		return errors.NewDefaultMissing(itemLoc)
	case a.count > 1:
		return errors.NewDefaultDuplicate(a.second)
	default:
		return nil
	}
}

// ParseVariantAttr builds the configuration of one enum variant. Default
// markers are recorded in acc and validated by the caller.
func ParseVariantAttr(directives []*ast.Directive, features Features, acc *DefaultAccumulator) (*VariantAttr, error) {
	attr := &VariantAttr{}

	err := eachOption(directives, func(meta *ast.Meta) error {
		switch meta.Path {
		case optionDefault:
			if meta.Kind != ast.MetaPath {
				return errors.NewOptionSyntax(meta.Loc)
			}
			if attr.Default {
				return errors.NewOptionDuplicate(meta.Loc, optionDefault)
			}
			attr.Default = true
			acc.Mark(meta.Loc)
			return nil
		case optionSkipInner:
			return attr.SkipInner.add(meta, Skip{}, features)
		default:
			return errors.NewUnknownOption(meta.Loc)
		}
	})
	if err != nil {
		return nil, err
	}

	return attr, nil
}

// FieldAttr is the field-level configuration
type FieldAttr struct {
	Skip       Skip
	ZeroizeFqs bool
}

// FieldScope describes where a field lives
type FieldScope struct {
	SkipInner Skip // skip_inner of the enclosing item or variant
	Union     bool
	Features  Features
}

// ParseFieldAttr builds the configuration of one field
func ParseFieldAttr(directives []*ast.Directive, scope FieldScope) (*FieldAttr, error) {
	attr := &FieldAttr{}

	err := eachOption(directives, func(meta *ast.Meta) error {
		switch {
		case meta.Path == optionSkip && !scope.Union:
			return attr.Skip.add(meta, scope.SkipInner, scope.Features)
		case meta.Path == Zeroize.String() && scope.Features.ZeroizeEnabled() && !scope.Union:
			return attr.addZeroize(meta)
		default:
			return errors.NewUnknownOption(meta.Loc)
		}
	})
	if err != nil {
		return nil, err
	}

	return attr, nil
}

// addZeroize parses `Zeroize(fqs)`
func (f *FieldAttr) addZeroize(meta *ast.Meta) error {
	if meta.Kind != ast.MetaList {
		return errors.NewOptionRequired(meta.Loc, Zeroize.String())
	}
	if len(meta.Nested) == 0 {
		return errors.NewOptionRequired(meta.Loc, Zeroize.String())
	}

	for _, option := range meta.Nested {
		if !option.IsPath(optionFqs) {
			return errors.NewTraitOption(option.Loc, Zeroize.String())
		}
		if f.ZeroizeFqs {
			return errors.NewOptionDuplicate(option.Loc, optionFqs)
		}
		f.ZeroizeFqs = true
	}
	return nil
}

// eachOption visits the options of variant or field directives. Bound
// clauses and empty directives are only valid at item level.
func eachOption(directives []*ast.Directive, visit func(*ast.Meta) error) error {
	for _, directive := range directives {
		if directive.HasBounds {
			return errors.NewAttributeSyntax(directive.Loc, "bound clauses are only allowed on items")
		}
		if len(directive.Nested) == 0 {
			return errors.NewOptionRequired(directive.Loc, "derive_where")
		}
		for _, meta := range directive.Nested {
			if meta.Kind == ast.MetaLiteral {
				return errors.NewOptionSyntax(meta.Loc)
			}
			if err := visit(meta); err != nil {
				return err
			}
		}
	}
	return nil
}
