package errors

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/derivewhere/internal/compiler/ast"
)

// Item shape error codes (ITM100-199)
const (
	// ErrUnsupportedItem indicates an item std's derive already handles
	ErrUnsupportedItem ErrorCode = "ITM100"
	// ErrUnitStruct indicates a unit struct
	ErrUnitStruct ErrorCode = "ITM101"
	// ErrUnionTrait indicates a trait other than Clone or Copy on a union
	ErrUnionTrait ErrorCode = "ITM102"
)

// Attribute error codes (ATR200-299)
const (
	// ErrAttributeSyntax wraps a directive parser diagnostic
	ErrAttributeSyntax ErrorCode = "ATR200"
	// ErrUnknownOption indicates an option not valid in its position
	ErrUnknownOption ErrorCode = "ATR201"
	// ErrTraitOptions indicates options on a trait without any
	ErrTraitOptions ErrorCode = "ATR202"
	// ErrTraitOption indicates an option the trait does not know
	ErrTraitOption ErrorCode = "ATR203"
	// ErrOptionSyntax indicates a malformed option
	ErrOptionSyntax ErrorCode = "ATR204"
	// ErrOptionRequired indicates an option list that must not be empty
	ErrOptionRequired ErrorCode = "ATR205"
	// ErrOptionDuplicate indicates the same option given twice
	ErrOptionDuplicate ErrorCode = "ATR206"
	// ErrSkipAll indicates a constrained skip next to an unconstrained one
	ErrSkipAll ErrorCode = "ATR207"
	// ErrSkipDuplicate indicates a trait named twice in skip constraints
	ErrSkipDuplicate ErrorCode = "ATR208"
	// ErrSkipSupport indicates a skip constraint on a trait without skip support
	ErrSkipSupport ErrorCode = "ATR209"
	// ErrCratePath indicates an invalid `crate` path
	ErrCratePath ErrorCode = "ATR210"
)

// Trait list error codes (TRT300-399)
const (
	// ErrUnsupportedTrait indicates an unknown trait name
	ErrUnsupportedTrait ErrorCode = "TRT300"
	// ErrTraitSyntax indicates a trait given in an unsupported form
	ErrTraitSyntax ErrorCode = "TRT301"
	// ErrDelimiter indicates a bad separator after a trait
	ErrDelimiter ErrorCode = "TRT302"
)

// Bound clause error codes (GEN400-499)
const (
	// ErrUnsupportedPredicate indicates a lifetime predicate
	ErrUnsupportedPredicate ErrorCode = "GEN400"
	// ErrGenericSyntax indicates a malformed bound clause
	ErrGenericSyntax ErrorCode = "GEN401"
)

// Default variant error codes (DEF500-599)
const (
	// ErrDefaultWithoutTrait indicates a `default` marker without Default
	ErrDefaultWithoutTrait ErrorCode = "DEF500"
	// ErrDefaultMissing indicates no variant marked `default`
	ErrDefaultMissing ErrorCode = "DEF501"
	// ErrDefaultDuplicate indicates several variants marked `default`
	ErrDefaultDuplicate ErrorCode = "DEF502"
)

// Item description error codes (SCH600-699)
const (
	// ErrSchema indicates a malformed item description
	ErrSchema ErrorCode = "SCH600"
)

// NewUnsupportedItem creates an ITM100 error
func NewUnsupportedItem(loc ast.SourceLocation) *CompilerError {
	return newError(
		ErrUnsupportedItem,
		"unsupported_item",
		CategoryItem,
		"derive-where doesn't support items without generics, `skip` attributes or `enum`s "+
			"implementing `Default`, as this can already be handled by standard `#[derive(..)]`",
		loc,
	).WithSuggestion("Use `#[derive(..)]` instead")
}

// NewUnitStruct creates an ITM101 error
func NewUnitStruct(loc ast.SourceLocation) *CompilerError {
	return newError(
		ErrUnitStruct,
		"unit_struct",
		CategoryItem,
		"derive-where doesn't support unit structs, as this can already be handled by "+
			"standard `#[derive(..)]`",
		loc,
	).WithSuggestion("Use `#[derive(..)]` instead")
}

// NewUnionTrait creates an ITM102 error
func NewUnionTrait(loc ast.SourceLocation) *CompilerError {
	return newError(
		ErrUnionTrait,
		"union_trait",
		CategoryItem,
		"traits other than `Clone` and `Copy` aren't supported by unions",
		loc,
	)
}

// NewAttributeSyntax creates an ATR200 error wrapping a parser diagnostic
func NewAttributeSyntax(loc ast.SourceLocation, reason string) *CompilerError {
	return newError(
		ErrAttributeSyntax,
		"attribute_syntax",
		CategoryAttribute,
		fmt.Sprintf("unexpected attribute syntax, %s", reason),
		loc,
	)
}

// NewUnknownOption creates an ATR201 error
func NewUnknownOption(loc ast.SourceLocation) *CompilerError {
	return newError(
		ErrUnknownOption,
		"unknown_option",
		CategoryAttribute,
		"unknown option",
		loc,
	)
}

// NewTraitOptions creates an ATR202 error
func NewTraitOptions(loc ast.SourceLocation, trait string) *CompilerError {
	return newError(
		ErrTraitOptions,
		"trait_options",
		CategoryAttribute,
		fmt.Sprintf("`%s` doesn't support any options", trait),
		loc,
	)
}

// NewTraitOption creates an ATR203 error
func NewTraitOption(loc ast.SourceLocation, trait string) *CompilerError {
	return newError(
		ErrTraitOption,
		"trait_option",
		CategoryAttribute,
		fmt.Sprintf("`%s` doesn't support this option", trait),
		loc,
	)
}

// NewOptionSyntax creates an ATR204 error
func NewOptionSyntax(loc ast.SourceLocation) *CompilerError {
	return newError(
		ErrOptionSyntax,
		"option_syntax",
		CategoryAttribute,
		"unexpected option syntax",
		loc,
	)
}

// NewOptionRequired creates an ATR205 error
func NewOptionRequired(loc ast.SourceLocation, option string) *CompilerError {
	return newError(
		ErrOptionRequired,
		"option_required",
		CategoryAttribute,
		fmt.Sprintf("`%s` requires an option", option),
		loc,
	)
}

// NewOptionDuplicate creates an ATR206 error
func NewOptionDuplicate(loc ast.SourceLocation, option string) *CompilerError {
	return newError(
		ErrOptionDuplicate,
		"option_duplicate",
		CategoryAttribute,
		fmt.Sprintf("duplicate `%s` option", option),
		loc,
	)
}

// NewSkipAll creates an ATR207 error
func NewSkipAll(loc ast.SourceLocation) *CompilerError {
	return newError(
		ErrSkipAll,
		"skip_all",
		CategoryAttribute,
		"unexpected constraint on `skip` when unconstrained `skip` already used",
		loc,
	)
}

// NewSkipDuplicate creates an ATR208 error
func NewSkipDuplicate(loc ast.SourceLocation, trait string) *CompilerError {
	return newError(
		ErrSkipDuplicate,
		"skip_duplicate",
		CategoryAttribute,
		fmt.Sprintf("duplicate `%s` constraint on `skip`", trait),
		loc,
	)
}

// NewSkipSupport creates an ATR209 error
func NewSkipSupport(loc ast.SourceLocation, trait string) *CompilerError {
	return newError(
		ErrSkipSupport,
		"skip_support",
		CategoryAttribute,
		fmt.Sprintf("unsupported `%s` constraint on `skip`", trait),
		loc,
	)
}

// NewCratePath creates an ATR210 error
func NewCratePath(loc ast.SourceLocation, reason string) *CompilerError {
	return newError(
		ErrCratePath,
		"crate_path",
		CategoryAttribute,
		fmt.Sprintf("expected path, %s", reason),
		loc,
	)
}

// NewUnsupportedTrait creates a TRT300 error
func NewUnsupportedTrait(loc ast.SourceLocation, available []string) *CompilerError {
	return newError(
		ErrUnsupportedTrait,
		"unsupported_trait",
		CategoryTrait,
		fmt.Sprintf("unsupported trait, expected one of %s", strings.Join(available, ", ")),
		loc,
	)
}

// NewTraitSyntax creates a TRT301 error
func NewTraitSyntax(loc ast.SourceLocation, available []string) *CompilerError {
	return newError(
		ErrTraitSyntax,
		"trait_syntax",
		CategoryTrait,
		fmt.Sprintf("unsupported trait syntax, expected one of %s", strings.Join(available, ", ")),
		loc,
	)
}

// NewDelimiter creates a TRT302 error
func NewDelimiter(loc ast.SourceLocation) *CompilerError {
	return newError(
		ErrDelimiter,
		"delimiter",
		CategoryTrait,
		"expected `;` or `,`",
		loc,
	)
}

// NewUnsupportedPredicate creates a GEN400 error
func NewUnsupportedPredicate(loc ast.SourceLocation) *CompilerError {
	return newError(
		ErrUnsupportedPredicate,
		"unsupported_predicate",
		CategoryGeneric,
		"only type predicates are supported",
		loc,
	)
}

// NewGenericSyntax creates a GEN401 error
func NewGenericSyntax(loc ast.SourceLocation, reason string) *CompilerError {
	return newError(
		ErrGenericSyntax,
		"generic_syntax",
		CategoryGeneric,
		fmt.Sprintf("expected type to bind to, %s", reason),
		loc,
	)
}

// NewDefaultWithoutTrait creates a DEF500 error
func NewDefaultWithoutTrait(loc ast.SourceLocation) *CompilerError {
	return newError(
		ErrDefaultWithoutTrait,
		"default_without_trait",
		CategoryDefault,
		"`default` is only supported if `Default` is being implemented",
		loc,
	)
}

// NewDefaultMissing creates a DEF501 error
func NewDefaultMissing(loc ast.SourceLocation) *CompilerError {
	return newError(
		ErrDefaultMissing,
		"default_missing",
		CategoryDefault,
		"required `default` option on a variant if `Default` is being implemented",
		loc,
	).WithSuggestion("Mark exactly one variant with `#[derive_where(default)]`")
}

// NewDefaultDuplicate creates a DEF502 error
func NewDefaultDuplicate(loc ast.SourceLocation) *CompilerError {
	return newError(
		ErrDefaultDuplicate,
		"default_duplicate",
		CategoryDefault,
		"multiple `default` options in enum",
		loc,
	)
}

// NewSchemaError creates an SCH600 error
func NewSchemaError(loc ast.SourceLocation, reason string) *CompilerError {
	return newError(
		ErrSchema,
		"schema",
		CategorySchema,
		"invalid item description, "+reason,
		loc,
	)
}
