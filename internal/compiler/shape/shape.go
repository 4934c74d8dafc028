// Package shape assembles a validated Item from a raw item declaration and
// its derive_where configuration. Every rejection of an item happens here;
// trait generators can rely on an assembled Input being well formed.
package shape

import (
	"github.com/conduit-lang/derivewhere/internal/compiler/ast"
	"github.com/conduit-lang/derivewhere/internal/compiler/attr"
	"github.com/conduit-lang/derivewhere/internal/compiler/errors"
)

// Item is either a single body or an enum with one body per variant
type Item struct {
	Ident    string
	Enum     bool
	Data     *Data   // struct, tuple struct or union
	Variants []*Data // enum variants in declaration order
}

// Datas returns every body of the item in declaration order
func (i *Item) Datas() []*Data {
	if i.Enum {
		return i.Variants
	}
	return []*Data{i.Data}
}

// IsUnion reports whether the item is a union
func (i *Item) IsUnion() bool {
	return !i.Enum && i.Data.Kind == KindUnion
}

// AnyFieldless reports whether some variant declares no fields
func (i *Item) AnyFieldless() bool {
	for _, d := range i.Datas() {
		if !d.HasFields() {
			return true
		}
	}
	return false
}

func (i *Item) anySkip() bool {
	for _, d := range i.Datas() {
		if d.AnySkip() {
			return true
		}
	}
	return false
}

func (i *Item) anyFqs() bool {
	for _, d := range i.Datas() {
		if d.AnyFqs() {
			return true
		}
	}
	return false
}

// Input is an assembled item ready for generation
type Input struct {
	DeriveWheres []*attr.DeriveWhere
	Generics     ast.Generics
	Item         *Item
	Loc          ast.SourceLocation
}

// Assemble validates decl and builds its Input. It never returns a partial
// result: the first violation is returned as a diagnostic.
func Assemble(decl *ast.ItemDecl, features attr.Features) (*Input, error) {
	itemAttr, err := attr.ParseItemAttr(decl, features)
	if err != nil {
		return nil, err
	}

	input := &Input{
		DeriveWheres: itemAttr.DeriveWheres,
		Generics:     decl.Generics,
		Item:         &Item{Ident: decl.Ident},
		Loc:          decl.Loc,
	}

	switch decl.Kind {
	case ast.ItemStruct:
		if decl.Fields.Style == ast.FieldsUnit {
			return nil, errors.NewUnitStruct(decl.Loc)
		}
		data, err := newData(decl.Ident, decl.Ident, decl.Fields, itemAttr.SkipInner, attr.FieldScope{Features: features})
		if err != nil {
			return nil, err
		}
		data.Loc = decl.Loc
		input.Item.Data = data

	case ast.ItemEnum:
		if len(decl.Variants) == 0 {
			return nil, errors.NewUnsupportedItem(decl.Loc)
		}
		variants, err := assembleVariants(decl, itemAttr.DeriveWheres, features)
		if err != nil {
			return nil, err
		}
		input.Item.Enum = true
		input.Item.Variants = variants

	case ast.ItemUnion:
		for _, entry := range itemAttr.DeriveWheres {
			for _, dt := range entry.Traits {
				if dt.Trait != attr.Clone && dt.Trait != attr.Copy {
					return nil, errors.NewUnionTrait(dt.Loc)
				}
			}
		}
		if decl.Fields.Style != ast.FieldsNamed || len(decl.Fields.Fields) == 0 {
			return nil, errors.NewUnsupportedItem(decl.Loc)
		}
		data, err := newData(decl.Ident, decl.Ident, decl.Fields, attr.Skip{}, attr.FieldScope{Union: true, Features: features})
		if err != nil {
			return nil, err
		}
		data.Loc = decl.Loc
		input.Item.Data = data

	default:
		return nil, errors.NewUnsupportedItem(decl.Loc)
	}

	if !input.worthDeriving(features) {
		return nil, errors.NewUnsupportedItem(decl.Loc)
	}

	return input, nil
}

// assembleVariants builds one Data per variant and checks the default
// markers once all variants are known
func assembleVariants(decl *ast.ItemDecl, entries []*attr.DeriveWhere, features attr.Features) ([]*Data, error) {
	var defaults attr.DefaultAccumulator
	variants := make([]*Data, 0, len(decl.Variants))

	for i, variant := range decl.Variants {
		variantAttr, err := attr.ParseVariantAttr(variant.Attrs, features, &defaults)
		if err != nil {
			return nil, err
		}

		data, err := newData(variant.Ident, decl.Ident+"::"+variant.Ident, variant.Fields,
			variantAttr.SkipInner, attr.FieldScope{Features: features})
		if err != nil {
			return nil, err
		}
		data.Variant = true
		data.Default = variantAttr.Default
		data.Index = i
		data.Loc = variant.Loc
		variants = append(variants, data)
	}

	if err := defaults.Check(entries, decl.Loc); err != nil {
		return nil, err
	}
	return variants, nil
}

// worthDeriving rejects items std's derive already handles: no generics,
// no skips, no enum Default and no `Zeroize(fqs)`
func (in *Input) worthDeriving(features attr.Features) bool {
	return !in.Generics.IsEmpty() ||
		in.Item.anySkip() ||
		(in.Item.Enum && attr.AnyContains(in.DeriveWheres, attr.Default)) ||
		(features.ZeroizeEnabled() && in.Item.anyFqs())
}
