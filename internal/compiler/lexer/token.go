package lexer

import "fmt"

// TokenType represents the type of a token in directive and generic text
type TokenType int

const (
	// TOKEN_EOF marks the end of the token stream.
	TOKEN_EOF TokenType = iota
	// TOKEN_ERROR represents a lexical error encountered during scanning.
	TOKEN_ERROR

	// Literals and names
	TOKEN_IDENTIFIER // Clone, skip, T, zeroize
	TOKEN_LIFETIME   // 'a, 'static, '_
	TOKEN_STRING     // "::zeroize"
	TOKEN_NUMBER     // 0, 42usize

	// Keywords
	TOKEN_CONST // const
	TOKEN_FOR   // for
	TOKEN_DYN   // dyn
	TOKEN_IMPL  // impl
	TOKEN_WHERE // where

	// Delimiters
	TOKEN_LPAREN   // (
	TOKEN_RPAREN   // )
	TOKEN_LBRACE   // {
	TOKEN_RBRACE   // }
	TOKEN_LBRACKET // [
	TOKEN_RBRACKET // ]
	TOKEN_LT       // <
	TOKEN_GT       // >

	// Punctuation
	TOKEN_COMMA      // ,
	TOKEN_SEMICOLON  // ;
	TOKEN_COLON      // :
	TOKEN_PATH_SEP   // ::
	TOKEN_EQUAL      // =
	TOKEN_PLUS       // +
	TOKEN_MINUS      // -
	TOKEN_QUESTION   // ?
	TOKEN_AMPERSAND  // &
	TOKEN_STAR       // *
	TOKEN_ARROW      // ->
	TOKEN_FAT_ARROW  // =>
	TOKEN_HASH       // #
	TOKEN_BANG       // !
	TOKEN_DOT        // .
	TOKEN_UNDERSCORE // _
)

// TokenTypeNames maps token types to their string representations
var TokenTypeNames = map[TokenType]string{
	TOKEN_EOF:        "EOF",
	TOKEN_ERROR:      "ERROR",
	TOKEN_IDENTIFIER: "IDENTIFIER",
	TOKEN_LIFETIME:   "LIFETIME",
	TOKEN_STRING:     "STRING",
	TOKEN_NUMBER:     "NUMBER",
	TOKEN_CONST:      "CONST",
	TOKEN_FOR:        "FOR",
	TOKEN_DYN:        "DYN",
	TOKEN_IMPL:       "IMPL",
	TOKEN_WHERE:      "WHERE",
	TOKEN_LPAREN:     "LPAREN",
	TOKEN_RPAREN:     "RPAREN",
	TOKEN_LBRACE:     "LBRACE",
	TOKEN_RBRACE:     "RBRACE",
	TOKEN_LBRACKET:   "LBRACKET",
	TOKEN_RBRACKET:   "RBRACKET",
	TOKEN_LT:         "LT",
	TOKEN_GT:         "GT",
	TOKEN_COMMA:      "COMMA",
	TOKEN_SEMICOLON:  "SEMICOLON",
	TOKEN_COLON:      "COLON",
	TOKEN_PATH_SEP:   "PATH_SEP",
	TOKEN_EQUAL:      "EQUAL",
	TOKEN_PLUS:       "PLUS",
	TOKEN_MINUS:      "MINUS",
	TOKEN_QUESTION:   "QUESTION",
	TOKEN_AMPERSAND:  "AMPERSAND",
	TOKEN_STAR:       "STAR",
	TOKEN_ARROW:      "ARROW",
	TOKEN_FAT_ARROW:  "FAT_ARROW",
	TOKEN_HASH:       "HASH",
	TOKEN_BANG:       "BANG",
	TOKEN_DOT:        "DOT",
	TOKEN_UNDERSCORE: "UNDERSCORE",
}

// String returns the string representation of a token type
func (t TokenType) String() string {
	if name, ok := TokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", t)
}

// Token represents a single lexical token
type Token struct {
	Type    TokenType   // The type of the token
	Lexeme  string      // The raw text of the token
	Literal interface{} // The parsed value (strings and numbers)
	Offset  int         // Byte offset of the token in the source
	Line    int         // Line number (1-indexed)
	Column  int         // Column number (1-indexed)
}

// String returns a string representation of the token
func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s '%s' (%v) at %d:%d",
			t.Type.String(), t.Lexeme, t.Literal, t.Line, t.Column)
	}
	return fmt.Sprintf("%s '%s' at %d:%d",
		t.Type.String(), t.Lexeme, t.Line, t.Column)
}

// End returns the byte offset just past the token
func (t Token) End() int {
	return t.Offset + len(t.Lexeme)
}

// Keywords maps reserved words to their token types
var Keywords = map[string]TokenType{
	"const": TOKEN_CONST,
	"for":   TOKEN_FOR,
	"dyn":   TOKEN_DYN,
	"impl":  TOKEN_IMPL,
	"where": TOKEN_WHERE,
}

// LexError represents an error encountered during lexical analysis
type LexError struct {
	Message string // Error message
	Line    int    // Line number where error occurred
	Column  int    // Column number where error occurred
	Lexeme  string // The problematic text
}

// Error implements the error interface
func (e LexError) Error() string {
	return fmt.Sprintf("Lexical error at %d:%d: %s (near '%s')",
		e.Line, e.Column, e.Message, e.Lexeme)
}
