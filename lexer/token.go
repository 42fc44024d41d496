// Package lexer tokenizes template source.
//
// The lexer is state-sensitive: raw text between constructs is emitted as
// a single Raw token, and the interior of an expression or block construct
// is tokenized into identifiers, literals and punctuation. Comment
// interiors are consumed here and never reach the parser as content.
package lexer

import (
	"fmt"

	"github.com/quilltpl/quill/syntax"
)

// TokenType represents the type of a token.
type TokenType int

const (
	// Raw text between constructs
	TokenRaw TokenType = iota

	// Delimiters
	TokenBeginExpr    // {{
	TokenEndExpr      // }}
	TokenBeginBlock   // {%
	TokenEndBlock     // %}
	TokenBeginComment // {#
	TokenEndComment   // #}

	// Literals
	TokenIdent   // identifier
	TokenString  // "string"
	TokenInteger // 123
	TokenFloat   // 123.45

	// Punctuation
	TokenDot         // .
	TokenQuestionDot // ?.
	TokenPipe        // |
	TokenColon       // :
	TokenComma       // ,

	// Keywords (detected from identifiers)
	TokenIf
	TokenElif
	TokenElse
	TokenEndif
	TokenFor
	TokenIn
	TokenEndfor
	TokenInclude
	TokenWith
	TokenTrue
	TokenFalse
)

// Token represents a single token from the lexer.
type Token struct {
	Type  TokenType
	Value string // the token value (for idents, strings, numbers, raw text)
	Span  Span   // source location
}

// Span represents a location range in source code.
type Span = syntax.Span

// String returns a debug representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Type, t.Value)
}

var tokenTypeNames = map[TokenType]string{
	TokenRaw:          "Raw",
	TokenBeginExpr:    "BeginExpr",
	TokenEndExpr:      "EndExpr",
	TokenBeginBlock:   "BeginBlock",
	TokenEndBlock:     "EndBlock",
	TokenBeginComment: "BeginComment",
	TokenEndComment:   "EndComment",
	TokenIdent:        "Ident",
	TokenString:       "String",
	TokenInteger:      "Int",
	TokenFloat:        "Float",
	TokenDot:          "Dot",
	TokenQuestionDot:  "QuestionDot",
	TokenPipe:         "Pipe",
	TokenColon:        "Colon",
	TokenComma:        "Comma",
	TokenIf:           "If",
	TokenElif:         "Elif",
	TokenElse:         "Else",
	TokenEndif:        "Endif",
	TokenFor:          "For",
	TokenIn:           "In",
	TokenEndfor:       "Endfor",
	TokenInclude:      "Include",
	TokenWith:         "With",
	TokenTrue:         "True",
	TokenFalse:        "False",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// keywords maps identifier text to keyword token types.
var keywords = map[string]TokenType{
	"if":      TokenIf,
	"elif":    TokenElif,
	"else":    TokenElse,
	"endif":   TokenEndif,
	"for":     TokenFor,
	"in":      TokenIn,
	"endfor":  TokenEndfor,
	"include": TokenInclude,
	"with":    TokenWith,
	"true":    TokenTrue,
	"false":   TokenFalse,
}
