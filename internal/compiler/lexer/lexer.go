// Package lexer tokenizes the Rust fragments derivewhere reads: directive
// text such as `derive_where(Clone; T)` and generic parameter declarations.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
)

// Lexer tokenizes directive and generic text.
//
// Lexer instances are not thread-safe. Each goroutine must create its own
// Lexer via New().
type Lexer struct {
	source  string     // Source text to tokenize
	start   int        // Start position of current token
	current int        // Current position in source
	line    int        // Current line number (1-indexed)
	column  int        // Current column number (1-indexed)
	tokens  []Token    // Collected tokens
	errors  []LexError // Collected errors
}

// New creates a new Lexer for the given source text
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: make([]Token, 0),
		errors: make([]LexError, 0),
	}
}

// ScanTokens tokenizes the entire source and returns tokens and errors
func (l *Lexer) ScanTokens() ([]Token, []LexError) {
	for !l.isAtEnd() {
		l.start = l.current
		l.scanToken()
	}

	l.tokens = append(l.tokens, Token{
		Type:   TOKEN_EOF,
		Offset: l.current,
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens, l.errors
}

// scanToken processes the next token
func (l *Lexer) scanToken() {
	c := l.advance()

	switch {
	case c == '(' || c == ')' || c == '{' || c == '}' || c == '[' || c == ']':
		l.scanDelimiter(c)
	case c == ',' || c == ';' || c == '+' || c == '?' || c == '&' ||
		c == '*' || c == '#' || c == '!' || c == '.' || c == '<' || c == '>':
		l.scanSimpleOperator(c)
	case c == ':' || c == '=' || c == '-':
		l.scanCompoundOperator(c)
	case c == '\'':
		l.lifetime()
	case c == '"':
		l.string()
	case c == ' ' || c == '\r' || c == '\t':
		// Ignore whitespace
	case c == '\n':
		l.line++
		l.column = 1
	default:
		l.scanDefault(c)
	}
}

// scanDelimiter handles delimiter tokens: ( ) { } [ ]
func (l *Lexer) scanDelimiter(c byte) {
	switch c {
	case '(':
		l.addToken(TOKEN_LPAREN)
	case ')':
		l.addToken(TOKEN_RPAREN)
	case '{':
		l.addToken(TOKEN_LBRACE)
	case '}':
		l.addToken(TOKEN_RBRACE)
	case '[':
		l.addToken(TOKEN_LBRACKET)
	case ']':
		l.addToken(TOKEN_RBRACKET)
	}
}

// scanSimpleOperator handles single-character punctuation
func (l *Lexer) scanSimpleOperator(c byte) {
	switch c {
	case ',':
		l.addToken(TOKEN_COMMA)
	case ';':
		l.addToken(TOKEN_SEMICOLON)
	case '+':
		l.addToken(TOKEN_PLUS)
	case '?':
		l.addToken(TOKEN_QUESTION)
	case '&':
		l.addToken(TOKEN_AMPERSAND)
	case '*':
		l.addToken(TOKEN_STAR)
	case '#':
		l.addToken(TOKEN_HASH)
	case '!':
		l.addToken(TOKEN_BANG)
	case '.':
		l.addToken(TOKEN_DOT)
	case '<':
		l.addToken(TOKEN_LT)
	case '>':
		// `>>` is always two tokens so nested generics close one at a time
		l.addToken(TOKEN_GT)
	}
}

// scanCompoundOperator handles punctuation that may span two characters
func (l *Lexer) scanCompoundOperator(c byte) {
	switch c {
	case ':':
		if l.match(':') {
			l.addToken(TOKEN_PATH_SEP)
		} else {
			l.addToken(TOKEN_COLON)
		}
	case '=':
		if l.match('>') {
			l.addToken(TOKEN_FAT_ARROW)
		} else {
			l.addToken(TOKEN_EQUAL)
		}
	case '-':
		if l.match('>') {
			l.addToken(TOKEN_ARROW)
		} else {
			l.addToken(TOKEN_MINUS)
		}
	}
}

// scanDefault handles identifiers, numbers and unexpected characters
func (l *Lexer) scanDefault(c byte) {
	switch {
	case l.isDigit(c):
		l.number()
	case l.isAlpha(c):
		l.identifier()
	default:
		l.addError(fmt.Sprintf("Unexpected character '%c'", c))
	}
}

// lifetime handles `'a` style lifetimes. The leading quote is consumed.
func (l *Lexer) lifetime() {
	if !l.isAlpha(l.peek()) {
		l.addError("Expected lifetime name after '")
		return
	}
	for l.isAlphaNumeric(l.peek()) {
		l.advance()
	}
	if l.peek() == '\'' {
		l.advance()
		l.addError("Character literals are not supported")
		return
	}
	l.addToken(TOKEN_LIFETIME)
}

// string handles string literals. The opening quote is consumed.
func (l *Lexer) string() {
	startLine := l.line
	startColumn := l.column - 1
	value := strings.Builder{}

	for !l.isAtEnd() && l.peek() != '"' {
		if l.peek() == '\\' {
			l.advance()
			if l.isAtEnd() {
				break
			}

			escaped := l.advance()
			switch escaped {
			case 'n':
				value.WriteByte('\n')
			case 't':
				value.WriteByte('\t')
			case '\\':
				value.WriteByte('\\')
			case '"':
				value.WriteByte('"')
			default:
				value.WriteByte('\\')
				value.WriteByte(escaped)
			}
		} else if l.peek() == '\n' {
			value.WriteByte('\n')
			l.line++
			l.column = 0
			l.advance()
		} else {
			value.WriteByte(l.advance())
		}
	}

	if l.isAtEnd() {
		l.addError(fmt.Sprintf("Unterminated string starting at %d:%d", startLine, startColumn))
		return
	}

	// Consume closing "
	l.advance()

	l.tokens = append(l.tokens, Token{
		Type:    TOKEN_STRING,
		Lexeme:  l.source[l.start:l.current],
		Literal: value.String(),
		Offset:  l.start,
		Line:    startLine,
		Column:  startColumn,
	})
}

// number handles integer literals with an optional type suffix (`8u32`)
func (l *Lexer) number() {
	for l.isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	digitsEnd := l.current
	for l.isAlphaNumeric(l.peek()) {
		l.advance()
	}

	digits := strings.ReplaceAll(l.source[l.start:digitsEnd], "_", "")
	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		l.addError(fmt.Sprintf("Invalid integer literal: %s", digits))
		return
	}
	l.addTokenWithLiteral(TOKEN_NUMBER, value)
}

// identifier handles identifiers, keywords and the `_` placeholder
func (l *Lexer) identifier() {
	for l.isAlphaNumeric(l.peek()) {
		l.advance()
	}

	text := l.source[l.start:l.current]
	if text == "_" {
		l.addToken(TOKEN_UNDERSCORE)
		return
	}

	tokenType, isKeyword := Keywords[text]
	if !isKeyword {
		tokenType = TOKEN_IDENTIFIER
	}
	l.addToken(tokenType)
}

// Helper methods

// isAtEnd checks if we've reached the end of the source
func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

// advance consumes and returns the current character
func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	c := l.source[l.current]
	l.current++
	l.column++
	return c
}

// match checks if the current character matches expected and consumes it
func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.source[l.current] != expected {
		return false
	}
	l.current++
	l.column++
	return true
}

// peek returns the current character without consuming it
func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

// isDigit checks if a character is a digit
func (l *Lexer) isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isAlpha checks if a character is alphabetic or underscore
func (l *Lexer) isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		c == '_'
}

// isAlphaNumeric checks if a character is alphanumeric or underscore
func (l *Lexer) isAlphaNumeric(c byte) bool {
	return l.isAlpha(c) || l.isDigit(c)
}

// addToken adds a token with the current lexeme
func (l *Lexer) addToken(tokenType TokenType) {
	l.addTokenWithLiteral(tokenType, nil)
}

// addTokenWithLiteral adds a token with a literal value
func (l *Lexer) addTokenWithLiteral(tokenType TokenType, literal interface{}) {
	lexeme := l.source[l.start:l.current]
	l.tokens = append(l.tokens, Token{
		Type:    tokenType,
		Lexeme:  lexeme,
		Literal: literal,
		Offset:  l.start,
		Line:    l.line,
		Column:  l.column - (l.current - l.start),
	})
}

// addError records a lexical error
func (l *Lexer) addError(message string) {
	lexeme := ""
	if l.start < len(l.source) {
		end := l.current
		if end > l.start+20 {
			end = l.start + 20
		}
		lexeme = l.source[l.start:end]
	}

	l.errors = append(l.errors, LexError{
		Message: message,
		Line:    l.line,
		Column:  l.column - (l.current - l.start),
		Lexeme:  lexeme,
	})
}

// IsKeyword checks if a string is a reserved word
func IsKeyword(s string) bool {
	_, ok := Keywords[s]
	return ok
}

// IsValidIdentifier checks if a string is a plain Rust identifier
func IsValidIdentifier(s string) bool {
	if s == "" || s == "_" {
		return false
	}
	l := New(s)
	if !l.isAlpha(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !l.isAlphaNumeric(s[i]) {
			return false
		}
	}
	return !IsKeyword(s)
}
