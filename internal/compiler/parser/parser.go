package parser

import (
	"github.com/conduit-lang/derivewhere/internal/compiler/ast"
	"github.com/conduit-lang/derivewhere/internal/compiler/errors"
	"github.com/conduit-lang/derivewhere/internal/compiler/lexer"
)

// DeriveWhere is the attribute path derivewhere reacts to
const DeriveWhere = "derive_where"

// ParseAttribute parses one attribute written at loc. ok is false when the
// attribute is not a derive_where attribute and should be ignored.
func ParseAttribute(text string, loc ast.SourceLocation) (directive *ast.Directive, ok bool, err error) {
	tokens, lexErrors := lexer.New(text).ScanTokens()
	if len(lexErrors) > 0 {
		return nil, true, lexDiagnostic(ErrorSyntax, lexErrors, loc)
	}

	directive, ok, parseErrors := New(text, tokens, loc).ParseAttribute()
	if len(parseErrors) > 0 {
		return nil, true, parseErrors[0].Diagnostic()
	}
	return directive, ok, nil
}

// ParseDirective parses text that must be a derive_where attribute
func ParseDirective(text string, loc ast.SourceLocation) (*ast.Directive, error) {
	directive, ok, err := ParseAttribute(text, loc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewAttributeSyntax(loc, "expected `derive_where`")
	}
	return directive, nil
}

// ParseGenericParam parses one generic parameter declaration written at loc
func ParseGenericParam(text string, loc ast.SourceLocation) (ast.GenericParam, error) {
	tokens, lexErrors := lexer.New(text).ScanTokens()
	if len(lexErrors) > 0 {
		return ast.GenericParam{}, lexDiagnostic(ErrorGeneric, lexErrors, loc)
	}

	param, parseErrors := New(text, tokens, loc).ParseGenericParam()
	if len(parseErrors) > 0 {
		pe := parseErrors[0]
		pe.Type = ErrorGeneric
		return ast.GenericParam{}, pe.Diagnostic()
	}
	return param, nil
}

// Parser transforms a token stream into directive and generic nodes
type Parser struct {
	source  string
	base    ast.SourceLocation
	tokens  []lexer.Token
	current int
	errors  []ParseError
}

// New creates a new parser for the given token stream. source must be the
// text the tokens were scanned from; base is where that text starts.
func New(source string, tokens []lexer.Token, base ast.SourceLocation) *Parser {
	return &Parser{
		source: source,
		base:   base,
		tokens: tokens,
		errors: make([]ParseError, 0),
	}
}

// ParseAttribute parses `#[derive_where(...)]` or `derive_where(...)`.
// The boolean result is false if the attribute has a different path, in
// which case it is not parsed any further.
func (p *Parser) ParseAttribute() (*ast.Directive, bool, []ParseError) {
	bracketed := false
	if p.match(lexer.TOKEN_HASH) {
		p.match(lexer.TOKEN_BANG)
		if p.consume(lexer.TOKEN_LBRACKET, "expected `[` after `#`").Type == lexer.TOKEN_ERROR {
			return nil, true, p.errors
		}
		bracketed = true
	}

	start := p.peek()
	path, ok := p.parsePath()
	if !ok {
		return nil, true, p.errors
	}
	if path != DeriveWhere {
		return nil, false, nil
	}

	if p.consume(lexer.TOKEN_LPAREN, "expected `(` after `derive_where`").Type == lexer.TOKEN_ERROR {
		return nil, true, p.errors
	}

	directive := &ast.Directive{Loc: p.location(start)}

	nested, ok := p.parseTopLevelMetas()
	if !ok {
		return nil, true, p.errors
	}
	directive.Nested = nested

	if p.match(lexer.TOKEN_SEMICOLON) {
		directive.HasBounds = true
		predicates, ok := p.parsePredicates()
		if !ok {
			return nil, true, p.errors
		}
		directive.Predicates = predicates
	}

	if p.consume(lexer.TOKEN_RPAREN, "expected `)`").Type == lexer.TOKEN_ERROR {
		return nil, true, p.errors
	}
	if bracketed && p.consume(lexer.TOKEN_RBRACKET, "expected `]`").Type == lexer.TOKEN_ERROR {
		return nil, true, p.errors
	}
	if !p.isAtEnd() {
		p.error(ErrorSyntax, p.peek(), "unexpected trailing input")
		return nil, true, p.errors
	}

	return directive, true, nil
}

// ParseGenericParam parses one declared generic parameter:
// `'a: 'b`, `T: Bound = Default` or `const N: usize = 1`.
func (p *Parser) ParseGenericParam() (ast.GenericParam, []ParseError) {
	var param ast.GenericParam

	switch {
	case p.check(lexer.TOKEN_LIFETIME):
		param.Kind = ast.GenericLifetime
		param.Name = p.advance().Lexeme
		if p.match(lexer.TOKEN_COLON) {
			bounds, ok := p.parseBounds(ErrorGeneric)
			if !ok {
				return param, p.errors
			}
			param.Bounds = bounds
		}

	case p.match(lexer.TOKEN_CONST):
		param.Kind = ast.GenericConst
		name := p.consume(lexer.TOKEN_IDENTIFIER, "expected const parameter name")
		if name.Type == lexer.TOKEN_ERROR {
			return param, p.errors
		}
		param.Name = name.Lexeme
		if p.consume(lexer.TOKEN_COLON, "expected `:` after const parameter name").Type == lexer.TOKEN_ERROR {
			return param, p.errors
		}
		typ, ok := p.scanUntil(ErrorGeneric, lexer.TOKEN_EQUAL)
		if !ok {
			return param, p.errors
		}
		if typ == "" {
			p.error(ErrorGeneric, p.peek(), "expected const parameter type")
			return param, p.errors
		}
		param.ConstType = typ

	default:
		param.Kind = ast.GenericType
		name := p.consume(lexer.TOKEN_IDENTIFIER, "expected generic parameter")
		if name.Type == lexer.TOKEN_ERROR {
			return param, p.errors
		}
		param.Name = name.Lexeme
		if p.match(lexer.TOKEN_COLON) {
			bounds, ok := p.parseBounds(ErrorGeneric, lexer.TOKEN_EQUAL)
			if !ok {
				return param, p.errors
			}
			param.Bounds = bounds
		}
	}

	if p.match(lexer.TOKEN_EQUAL) {
		if param.Kind == ast.GenericLifetime {
			p.error(ErrorGeneric, p.previous(), "lifetimes can't have defaults")
			return param, p.errors
		}
		def, ok := p.scanUntil(ErrorGeneric)
		if !ok {
			return param, p.errors
		}
		if def == "" {
			p.error(ErrorGeneric, p.peek(), "expected default after `=`")
			return param, p.errors
		}
		param.Default = def
	}

	if !p.isAtEnd() {
		p.error(ErrorGeneric, p.peek(), "unexpected trailing input")
	}
	return param, p.errors
}

// parseTopLevelMetas parses the options or traits before an optional `;`
func (p *Parser) parseTopLevelMetas() ([]*ast.Meta, bool) {
	metas := make([]*ast.Meta, 0)

	for !p.check(lexer.TOKEN_RPAREN) && !p.check(lexer.TOKEN_SEMICOLON) && !p.isAtEnd() {
		meta, ok := p.parseMeta()
		if !ok {
			return nil, false
		}
		metas = append(metas, meta)

		if p.match(lexer.TOKEN_COMMA) {
			continue
		}
		if p.check(lexer.TOKEN_RPAREN) || p.check(lexer.TOKEN_SEMICOLON) || p.isAtEnd() {
			break
		}
		p.error(ErrorDelimiter, p.peek(), "expected `;` or `,`")
		return nil, false
	}

	return metas, true
}

// parseNestedMetas parses the comma separated list inside `path(...)`
func (p *Parser) parseNestedMetas() ([]*ast.Meta, bool) {
	metas := make([]*ast.Meta, 0)

	for !p.check(lexer.TOKEN_RPAREN) && !p.isAtEnd() {
		meta, ok := p.parseMeta()
		if !ok {
			return nil, false
		}
		metas = append(metas, meta)

		if !p.match(lexer.TOKEN_COMMA) && !p.check(lexer.TOKEN_RPAREN) {
			p.error(ErrorSyntax, p.peek(), "expected `,` or `)`")
			return nil, false
		}
	}

	return metas, true
}

// parseMeta parses a path, a list, a name-value pair or a literal
func (p *Parser) parseMeta() (*ast.Meta, bool) {
	start := p.peek()

	switch start.Type {
	case lexer.TOKEN_STRING:
		p.advance()
		return &ast.Meta{
			Kind:   ast.MetaLiteral,
			Value:  start.Literal.(string),
			Quoted: true,
			Loc:    p.location(start),
		}, true
	case lexer.TOKEN_NUMBER:
		p.advance()
		return &ast.Meta{Kind: ast.MetaLiteral, Value: start.Lexeme, Loc: p.location(start)}, true
	}

	path, ok := p.parsePath()
	if !ok {
		return nil, false
	}
	meta := &ast.Meta{Kind: ast.MetaPath, Path: path, Loc: p.location(start)}

	switch {
	case p.match(lexer.TOKEN_LPAREN):
		nested, ok := p.parseNestedMetas()
		if !ok {
			return nil, false
		}
		if p.consume(lexer.TOKEN_RPAREN, "expected `)`").Type == lexer.TOKEN_ERROR {
			return nil, false
		}
		meta.Kind = ast.MetaList
		meta.Nested = nested

	case p.match(lexer.TOKEN_EQUAL):
		value := p.peek()
		switch value.Type {
		case lexer.TOKEN_STRING:
			meta.Value = value.Literal.(string)
			meta.Quoted = true
		case lexer.TOKEN_NUMBER:
			meta.Value = value.Lexeme
		default:
			p.error(ErrorSyntax, value, "expected literal after `=`")
			return nil, false
		}
		p.advance()
		meta.Kind = ast.MetaNameValue
	}

	return meta, true
}

// parsePath parses `ident`, `a::b` or `::a::b`
func (p *Parser) parsePath() (string, bool) {
	path := ""
	if p.match(lexer.TOKEN_PATH_SEP) {
		path = "::"
	}

	for {
		segment := p.consume(lexer.TOKEN_IDENTIFIER, "expected identifier")
		if segment.Type == lexer.TOKEN_ERROR {
			return "", false
		}
		path += segment.Lexeme

		if !p.match(lexer.TOKEN_PATH_SEP) {
			return path, true
		}
		path += "::"
	}
}

// parsePredicates parses the bound clause after `;`
func (p *Parser) parsePredicates() ([]*ast.Predicate, bool) {
	predicates := make([]*ast.Predicate, 0)

	for !p.check(lexer.TOKEN_RPAREN) && !p.isAtEnd() {
		predicate, ok := p.parsePredicate()
		if !ok {
			return nil, false
		}
		predicates = append(predicates, predicate)

		if p.match(lexer.TOKEN_COMMA) {
			continue
		}
		if !p.check(lexer.TOKEN_RPAREN) && !p.isAtEnd() {
			p.error(ErrorGeneric, p.peek(), "expected `,` or `)`")
			return nil, false
		}
	}

	return predicates, true
}

// parsePredicate parses `Type`, `Type: Bound + ...` or `'a: 'b`
func (p *Parser) parsePredicate() (*ast.Predicate, bool) {
	start := p.peek()
	predicate := &ast.Predicate{Kind: ast.PredicateType, Loc: p.location(start)}

	if start.Type == lexer.TOKEN_LIFETIME {
		p.advance()
		predicate.Kind = ast.PredicateLifetime
		predicate.Bounded = start.Lexeme
	} else {
		bounded, ok := p.scanUntil(ErrorGeneric, lexer.TOKEN_COLON, lexer.TOKEN_COMMA)
		if !ok {
			return nil, false
		}
		if bounded == "" {
			p.error(ErrorGeneric, start, "expected type")
			return nil, false
		}
		predicate.Bounded = bounded
	}

	if p.match(lexer.TOKEN_COLON) {
		bounds, ok := p.parseBounds(ErrorGeneric, lexer.TOKEN_COMMA)
		if !ok {
			return nil, false
		}
		predicate.Bounds = bounds
	}

	return predicate, true
}

// parseBounds parses `A + B + ...` until one of the stop tokens
func (p *Parser) parseBounds(typ ErrorType, stops ...lexer.TokenType) ([]string, bool) {
	bounds := make([]string, 0)
	stops = append(stops, lexer.TOKEN_PLUS)

	for {
		at := p.peek()
		bound, ok := p.scanUntil(typ, stops...)
		if !ok {
			return nil, false
		}
		if bound == "" {
			p.error(typ, at, "expected bound")
			return nil, false
		}
		bounds = append(bounds, bound)

		if !p.match(lexer.TOKEN_PLUS) {
			return bounds, true
		}
	}
}

// scanUntil consumes balanced tokens until one of stops, an unbalanced `)`
// or the end of input, and returns the raw source text it covered.
func (p *Parser) scanUntil(typ ErrorType, stops ...lexer.TokenType) (string, bool) {
	first := p.peek()
	last := first
	consumed := false
	closers := make([]lexer.TokenType, 0)

	for !p.isAtEnd() {
		tok := p.peek()
		if len(closers) == 0 {
			if tok.Type == lexer.TOKEN_RPAREN || tok.Type == lexer.TOKEN_RBRACKET {
				break
			}
			if containsType(stops, tok.Type) {
				break
			}
		}

		switch tok.Type {
		case lexer.TOKEN_LT:
			closers = append(closers, lexer.TOKEN_GT)
		case lexer.TOKEN_LPAREN:
			closers = append(closers, lexer.TOKEN_RPAREN)
		case lexer.TOKEN_LBRACKET:
			closers = append(closers, lexer.TOKEN_RBRACKET)
		case lexer.TOKEN_LBRACE:
			closers = append(closers, lexer.TOKEN_RBRACE)
		case lexer.TOKEN_GT, lexer.TOKEN_RPAREN, lexer.TOKEN_RBRACKET, lexer.TOKEN_RBRACE:
			if len(closers) == 0 || closers[len(closers)-1] != tok.Type {
				p.error(typ, tok, "unbalanced `"+tok.Lexeme+"`")
				return "", false
			}
			closers = closers[:len(closers)-1]
		}

		last = p.advance()
		consumed = true
	}

	if len(closers) > 0 {
		p.error(typ, p.peek(), "unexpected end of input")
		return "", false
	}
	if !consumed {
		return "", true
	}
	return p.source[first.Offset:last.End()], true
}

func containsType(types []lexer.TokenType, t lexer.TokenType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// Helper methods

// location converts a token position into a source location
func (p *Parser) location(token lexer.Token) ast.SourceLocation {
	return p.base.Offset(token.Line, token.Column)
}

// peek returns the current token without consuming it
func (p *Parser) peek() lexer.Token {
	if len(p.tokens) == 0 {
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	if p.current >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current]
}

// previous returns the most recently consumed token
func (p *Parser) previous() lexer.Token {
	if len(p.tokens) == 0 || p.current == 0 {
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	return p.tokens[p.current-1]
}

// advance consumes the current token and returns it
func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

// check returns true if the current token matches the given type
func (p *Parser) check(tokenType lexer.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == tokenType
}

// match consumes the token if it matches any of the given types
func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// consume advances if the next token matches, otherwise reports an error
func (p *Parser) consume(tokenType lexer.TokenType, message string) lexer.Token {
	if p.check(tokenType) {
		return p.advance()
	}

	p.error(ErrorSyntax, p.peek(), message)
	return lexer.Token{Type: lexer.TOKEN_ERROR}
}

// isAtEnd returns true if we've reached the end of the token stream
func (p *Parser) isAtEnd() bool {
	return p.current >= len(p.tokens) || p.tokens[p.current].Type == lexer.TOKEN_EOF
}

// error records a parse error
func (p *Parser) error(typ ErrorType, token lexer.Token, message string) {
	p.errors = append(p.errors, NewParseError(typ, message, token, p.base))
}
