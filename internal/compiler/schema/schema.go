// Package schema loads item description files. An item description is a
// YAML document listing Rust items (structs, enums and unions) together
// with their generics, fields and derive_where attributes, standing in for
// the item a derive macro would receive from the compiler.
package schema

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/derivewhere/internal/compiler/ast"
	"github.com/conduit-lang/derivewhere/internal/compiler/errors"
	"github.com/conduit-lang/derivewhere/internal/compiler/parser"
)

// Extension is the file suffix of item description files
const Extension = ".dw.yaml"

// File is a loaded item description file
type File struct {
	Path  string
	Items []*ast.ItemDecl
}

type document struct {
	Items []rawItem `yaml:"items"`
}

type rawItem struct {
	Name     string       `yaml:"name"`
	Kind     string       `yaml:"kind"`
	Generics []yaml.Node  `yaml:"generics"`
	Where    []string     `yaml:"where"`
	Attrs    []yaml.Node  `yaml:"attrs"`
	Style    string       `yaml:"style"`
	Fields   []rawField   `yaml:"fields"`
	Variants []rawVariant `yaml:"variants"`
	node     *yaml.Node
}

func (s *rawItem) UnmarshalYAML(node *yaml.Node) error {
	type plain rawItem
	if err := node.Decode((*plain)(s)); err != nil {
		return err
	}
	s.node = node
	return nil
}

type rawVariant struct {
	Name   string      `yaml:"name"`
	Style  string      `yaml:"style"`
	Attrs  []yaml.Node `yaml:"attrs"`
	Fields []rawField  `yaml:"fields"`
	node   *yaml.Node
}

func (s *rawVariant) UnmarshalYAML(node *yaml.Node) error {
	type plain rawVariant
	if err := node.Decode((*plain)(s)); err != nil {
		return err
	}
	s.node = node
	return nil
}

type rawField struct {
	Name  string      `yaml:"name"`
	Type  string      `yaml:"type"`
	Attrs []yaml.Node `yaml:"attrs"`
	node  *yaml.Node
}

func (s *rawField) UnmarshalYAML(node *yaml.Node) error {
	type plain rawField
	if err := node.Decode((*plain)(s)); err != nil {
		return err
	}
	s.node = node
	return nil
}

// LoadFile reads and parses an item description file
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(path, data)
}

// Read parses an item description from r
func Read(path string, r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse parses the item description data read from path. Attribute and
// generic parameter text is parsed as well; the first error is returned as
// a diagnostic pointing into the file.
func Parse(path string, data []byte) (*File, error) {
	file := &File{Path: path}
	if len(bytes.TrimSpace(data)) == 0 {
		return file, nil
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, yamlError(path, err)
	}

	l := &loader{path: path}
	for i := range doc.Items {
		decl, err := l.item(&doc.Items[i])
		if err != nil {
			return nil, err
		}
		file.Items = append(file.Items, decl)
	}

	return file, nil
}

type loader struct {
	path string
}

// location returns the position of a node's value. Quoted scalars start one
// column after the quote.
func (l *loader) location(node *yaml.Node) ast.SourceLocation {
	loc := ast.SourceLocation{File: l.path}
	if node == nil {
		return loc
	}
	loc.Line, loc.Column = node.Line, node.Column
	if node.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		loc.Column++
	}
	return loc
}

func (l *loader) fail(node *yaml.Node, format string, args ...any) error {
	return errors.NewSchemaError(l.location(node), fmt.Sprintf(format, args...))
}

func (l *loader) item(raw *rawItem) (*ast.ItemDecl, error) {
	if raw.Name == "" {
		return nil, l.fail(raw.node, "item without `name`")
	}

	decl := &ast.ItemDecl{Ident: raw.Name, Loc: l.location(raw.node)}

	switch raw.Kind {
	case "", "struct":
		decl.Kind = ast.ItemStruct
	case "enum":
		decl.Kind = ast.ItemEnum
	case "union":
		decl.Kind = ast.ItemUnion
	default:
		return nil, l.fail(raw.node, "unknown kind %q, expected struct, enum or union", raw.Kind)
	}

	for i := range raw.Generics {
		node := &raw.Generics[i]
		param, err := parser.ParseGenericParam(node.Value, l.location(node))
		if err != nil {
			return nil, err
		}
		decl.Generics.Params = append(decl.Generics.Params, param)
	}
	decl.Generics.Where = raw.Where

	attrs, err := l.attrs(raw.Attrs)
	if err != nil {
		return nil, err
	}
	decl.Attrs = attrs

	if decl.Kind == ast.ItemEnum {
		if raw.Style != "" || len(raw.Fields) > 0 {
			return nil, l.fail(raw.node, "enum `%s` declares fields, use `variants`", raw.Name)
		}
		for i := range raw.Variants {
			variant, err := l.variant(&raw.Variants[i])
			if err != nil {
				return nil, err
			}
			decl.Variants = append(decl.Variants, variant)
		}
		return decl, nil
	}

	if len(raw.Variants) > 0 {
		return nil, l.fail(raw.node, "%s `%s` declares variants", decl.Kind, raw.Name)
	}
	fields, err := l.fields(raw.node, raw.Style, raw.Fields)
	if err != nil {
		return nil, err
	}
	decl.Fields = fields

	return decl, nil
}

func (l *loader) variant(raw *rawVariant) (*ast.VariantDecl, error) {
	if raw.Name == "" {
		return nil, l.fail(raw.node, "variant without `name`")
	}

	attrs, err := l.attrs(raw.Attrs)
	if err != nil {
		return nil, err
	}
	fields, err := l.fields(raw.node, raw.Style, raw.Fields)
	if err != nil {
		return nil, err
	}

	return &ast.VariantDecl{
		Ident:  raw.Name,
		Attrs:  attrs,
		Fields: fields,
		Loc:    l.location(raw.node),
	}, nil
}

// fields builds a field list. Without an explicit style, fields that all
// have names are named and fields without names are positional; no fields
// at all is a unit body.
func (l *loader) fields(node *yaml.Node, style string, raws []rawField) (ast.FieldList, error) {
	list := ast.FieldList{}

	switch style {
	case "named":
		list.Style = ast.FieldsNamed
	case "tuple":
		list.Style = ast.FieldsUnnamed
	case "unit":
		if len(raws) > 0 {
			return list, l.fail(node, "unit body declares fields")
		}
		list.Style = ast.FieldsUnit
		return list, nil
	case "":
		switch {
		case len(raws) == 0:
			list.Style = ast.FieldsUnit
			return list, nil
		case raws[0].Name != "":
			list.Style = ast.FieldsNamed
		default:
			list.Style = ast.FieldsUnnamed
		}
	default:
		return list, l.fail(node, "unknown style %q, expected named, tuple or unit", style)
	}

	for i := range raws {
		raw := &raws[i]
		switch {
		case raw.Type == "":
			return list, l.fail(raw.node, "field without `type`")
		case list.Style == ast.FieldsNamed && raw.Name == "":
			return list, l.fail(raw.node, "field without `name` in a named body")
		case list.Style == ast.FieldsUnnamed && raw.Name != "":
			return list, l.fail(raw.node, "named field `%s` in a tuple body", raw.Name)
		}

		attrs, err := l.attrs(raw.Attrs)
		if err != nil {
			return list, err
		}
		list.Fields = append(list.Fields, &ast.FieldDecl{
			Ident: raw.Name,
			Type:  raw.Type,
			Attrs: attrs,
			Loc:   l.location(raw.node),
		})
	}

	return list, nil
}

// attrs parses attribute strings. Attributes with another path, such as
// `#[doc = ".."]`, are accepted and ignored.
func (l *loader) attrs(nodes []yaml.Node) ([]*ast.Directive, error) {
	var directives []*ast.Directive
	for i := range nodes {
		node := &nodes[i]
		if node.Kind != yaml.ScalarNode {
			return nil, l.fail(node, "attribute must be a string")
		}

		directive, ok, err := parser.ParseAttribute(node.Value, l.location(node))
		if err != nil {
			return nil, err
		}
		if ok {
			directives = append(directives, directive)
		}
	}
	return directives, nil
}

// yamlError converts a yaml.v3 error such as "yaml: line 3: ..." into a
// diagnostic
func yamlError(path string, err error) error {
	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	loc := ast.SourceLocation{File: path}

	var line int
	if n, _ := fmt.Sscanf(msg, "line %d:", &line); n == 1 {
		loc.Line = line
		loc.Column = 1
		msg = strings.TrimSpace(msg[strings.Index(msg, ":")+1:])
	}

	return errors.NewSchemaError(loc, msg)
}
