// Package attr turns parsed derive_where directives into the configuration
// model: requested traits with their bound clauses, skip directives, default
// markers and Zeroize options.
package attr

import (
	"fmt"

	"github.com/conduit-lang/derivewhere/internal/compiler/ast"
)

// Trait is one of the closed set of traits derivewhere can implement
type Trait int

const (
	Clone Trait = iota
	Copy
	Debug
	Default
	Eq
	Hash
	Ord
	PartialEq
	PartialOrd
	Zeroize
	ZeroizeOnDrop
)

// DefaultZeroizeCrate is the crate path used when no `crate` option is given
const DefaultZeroizeCrate = "::zeroize"

type traitInfo struct {
	name         string
	path         string // empty for traits living in the zeroize crate
	supportsSkip bool
	zeroize      bool
}

var traitTable = [...]traitInfo{
	Clone:         {name: "Clone", path: "::core::clone::Clone"},
	Copy:          {name: "Copy", path: "::core::marker::Copy"},
	Debug:         {name: "Debug", path: "::core::fmt::Debug", supportsSkip: true},
	Default:       {name: "Default", path: "::core::default::Default"},
	Eq:            {name: "Eq", path: "::core::cmp::Eq"},
	Hash:          {name: "Hash", path: "::core::hash::Hash", supportsSkip: true},
	Ord:           {name: "Ord", path: "::core::cmp::Ord", supportsSkip: true},
	PartialEq:     {name: "PartialEq", path: "::core::cmp::PartialEq", supportsSkip: true},
	PartialOrd:    {name: "PartialOrd", path: "::core::cmp::PartialOrd", supportsSkip: true},
	Zeroize:       {name: "Zeroize", supportsSkip: true, zeroize: true},
	ZeroizeOnDrop: {name: "ZeroizeOnDrop", supportsSkip: true, zeroize: true},
}

// String returns the trait name as written in directives
func (t Trait) String() string {
	if int(t) < len(traitTable) {
		return traitTable[t].name
	}
	return fmt.Sprintf("Trait(%d)", int(t))
}

// SupportsSkip reports whether fields may be skipped for the trait
func (t Trait) SupportsSkip() bool {
	return traitTable[t].supportsSkip
}

// RequiresZeroize reports whether the trait is only available with the
// zeroize feature
func (t Trait) RequiresZeroize() bool {
	return traitTable[t].zeroize
}

// Path returns the fully qualified trait path. crate is only used for the
// zeroize traits.
func (t Trait) Path(crate string) string {
	if traitTable[t].zeroize {
		if crate == "" {
			crate = DefaultZeroizeCrate
		}
		return crate + "::" + traitTable[t].name
	}
	return traitTable[t].path
}

// Features are the optional trait families enabled by configuration
type Features struct {
	Zeroize       bool `mapstructure:"zeroize" yaml:"zeroize"`
	ZeroizeOnDrop bool `mapstructure:"zeroize_on_drop" yaml:"zeroize_on_drop"`
}

// ZeroizeEnabled reports whether the zeroize traits are available.
// ZeroizeOnDrop support implies Zeroize.
func (f Features) ZeroizeEnabled() bool {
	return f.Zeroize || f.ZeroizeOnDrop
}

// Traits returns the traits available under the given features in
// catalogue order
func Traits(features Features) []Trait {
	traits := make([]Trait, 0, len(traitTable))
	for i := range traitTable {
		t := Trait(i)
		if t.RequiresZeroize() && !features.ZeroizeEnabled() {
			continue
		}
		traits = append(traits, t)
	}
	return traits
}

// Names returns the names of the traits available under the given features
func Names(features Features) []string {
	traits := Traits(features)
	names := make([]string, len(traits))
	for i, t := range traits {
		names[i] = t.String()
	}
	return names
}

// Lookup resolves a trait name under the given features
func Lookup(name string, features Features) (Trait, bool) {
	for _, t := range Traits(features) {
		if t.String() == name {
			return t, true
		}
	}
	return 0, false
}

// DeriveTrait is one requested trait of a derive_where entry
type DeriveTrait struct {
	Trait Trait
	Crate string // zeroize crate path; empty means DefaultZeroizeCrate
	Loc   ast.SourceLocation
}

// CratePath returns the zeroize crate path in effect
func (d DeriveTrait) CratePath() string {
	if d.Crate == "" {
		return DefaultZeroizeCrate
	}
	return d.Crate
}

// Path returns the fully qualified path of the requested trait
func (d DeriveTrait) Path() string {
	return d.Trait.Path(d.Crate)
}

// DeriveWhere is one item-level derive_where entry: a non-empty trait list
// and an optional bound clause.
type DeriveWhere struct {
	Traits     []DeriveTrait
	Predicates []*ast.Predicate
	Loc        ast.SourceLocation
}

// Contains reports whether the entry requests the trait
func (d *DeriveWhere) Contains(t Trait) bool {
	for _, dt := range d.Traits {
		if dt.Trait == t {
			return true
		}
	}
	return false
}

// AnyContains reports whether any entry requests the trait
func AnyContains(entries []*DeriveWhere, t Trait) bool {
	for _, entry := range entries {
		if entry.Contains(t) {
			return true
		}
	}
	return false
}
