package attr

import (
	"github.com/conduit-lang/derivewhere/internal/compiler/ast"
	"github.com/conduit-lang/derivewhere/internal/compiler/errors"
)

// SkipKind distinguishes the skip forms
type SkipKind int

const (
	// SkipNone means nothing is skipped
	SkipNone SkipKind = iota
	// SkipAll skips for every trait that supports skipping
	SkipAll
	// SkipTraits skips only for the listed traits
	SkipTraits
)

// Skip is the resolved skip directive of a field, or the skip_inner
// directive of an item or variant
type Skip struct {
	Kind   SkipKind
	Traits []Trait
	Loc    ast.SourceLocation // first directive that set the skip
}

// IsNone reports whether nothing is skipped
func (s Skip) IsNone() bool {
	return s.Kind == SkipNone
}

// Covers reports whether the skip applies to the trait
func (s Skip) Covers(t Trait) bool {
	switch s.Kind {
	case SkipAll:
		return t.SupportsSkip()
	case SkipTraits:
		return s.contains(t)
	default:
		return false
	}
}

func (s Skip) contains(t Trait) bool {
	for _, st := range s.Traits {
		if st == t {
			return true
		}
	}
	return false
}

// add merges one `skip` or `skip_inner` meta into the directive. inherited is
// the skip_inner of the enclosing item or variant, if any.
func (s *Skip) add(meta *ast.Meta, inherited Skip, features Features) error {
	name := meta.Path

	switch meta.Kind {
	case ast.MetaPath:
		switch {
		case inherited.Kind == SkipAll:
			return errors.NewSkipAll(meta.Loc)
		case s.Kind == SkipAll:
			return errors.NewOptionDuplicate(meta.Loc, name)
		case s.Kind == SkipTraits:
			return errors.NewSkipAll(meta.Loc)
		}
		s.Kind = SkipAll
		s.Traits = nil
		s.Loc = meta.Loc
		return nil

	case ast.MetaList:
		if len(meta.Nested) == 0 {
			return errors.NewOptionRequired(meta.Loc, name)
		}
		if s.Kind == SkipAll || inherited.Kind == SkipAll {
			return errors.NewSkipAll(meta.Loc)
		}
		if s.Kind == SkipNone {
			s.Kind = SkipTraits
			s.Loc = meta.Loc
		}

		for _, nested := range meta.Nested {
			if nested.Kind != ast.MetaPath {
				return errors.NewOptionSyntax(nested.Loc)
			}
			t, err := resolveTrait(nested, features)
			if err != nil {
				return err
			}
			if !t.SupportsSkip() {
				return errors.NewSkipSupport(nested.Loc, t.String())
			}
			if s.contains(t) || inherited.contains(t) {
				return errors.NewSkipDuplicate(nested.Loc, t.String())
			}
			s.Traits = append(s.Traits, t)
		}
		return nil

	default:
		return errors.NewOptionSyntax(meta.Loc)
	}
}
