package lexer

import (
	"strconv"
	"strings"

	"github.com/quilltpl/quill/internal/errors"
	"github.com/quilltpl/quill/syntax"
)

// Lexer tokenizes template source code.
type Lexer struct {
	source    string // original source
	pos       int    // current position in source
	start     int    // start position of current token
	line      uint16 // current line (1-indexed)
	col       uint16 // current column (0-indexed at line start)
	startLine uint16
	startCol  uint16
	syntax    syntax.Syntax
	begins    []syntax.Pattern

	// State tracking
	state      lexerState
	active     syntax.Kind // construct being lexed while in block state
	endComment bool        // a comment interior is waiting to be consumed
	afterDot   bool        // the previous token was a path separator
}

type lexerState int

const (
	stateRaw lexerState = iota
	stateBlock
)

// New creates a new Lexer for the given input.
func New(input string, s syntax.Syntax) *Lexer {
	return &Lexer{
		source: input,
		line:   1,
		syntax: s,
		begins: s.BeginPatterns(),
	}
}

// Tokenize returns all tokens from the input.
func Tokenize(input string, s syntax.Syntax) ([]Token, error) {
	return New(input, s).All()
}

// All collects all tokens into a slice.
func (l *Lexer) All() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			break
		}
		tokens = append(tokens, *tok)
	}
	return tokens, nil
}

// Next returns the next token, or nil at end of input.
func (l *Lexer) Next() (*Token, error) {
	if l.endComment {
		return l.finishComment()
	}
	switch l.state {
	case stateRaw:
		return l.tokenizeRaw()
	default:
		return l.tokenizeBlock()
	}
}

// tokenizeRaw scans raw text up to the next begin delimiter. It emits the
// preceding text as a Raw token, or the begin token itself when a
// delimiter starts at the current position.
func (l *Lexer) tokenizeRaw() (*Token, error) {
	if l.atEnd() {
		return nil, nil
	}
	l.markStart()
	rest := l.rest()
	for i := 0; i < len(rest); i++ {
		kind, length := l.matchBegin(rest[i:])
		if length == 0 {
			continue
		}
		if i > 0 {
			// Emit the raw text first; the delimiter is picked up by
			// the next call.
			value := l.advance(i)
			tok := l.makeToken(TokenRaw, value)
			return &tok, nil
		}
		l.advance(length)
		return l.beginConstruct(kind)
	}
	value := l.advance(len(rest))
	tok := l.makeToken(TokenRaw, value)
	return &tok, nil
}

// matchBegin tests the begin patterns against s in longest-first order.
func (l *Lexer) matchBegin(s string) (syntax.Kind, int) {
	for _, p := range l.begins {
		if strings.HasPrefix(s, p.Text) {
			return p.Kind, len(p.Text)
		}
	}
	return 0, 0
}

func (l *Lexer) beginConstruct(kind syntax.Kind) (*Token, error) {
	var typ TokenType
	switch kind {
	case syntax.KindExpr:
		typ = TokenBeginExpr
		l.state = stateBlock
	case syntax.KindBlock:
		typ = TokenBeginBlock
		l.state = stateBlock
	default:
		typ = TokenBeginComment
		l.endComment = true
	}
	l.active = kind
	l.afterDot = false
	tok := l.makeToken(typ, "")
	return &tok, nil
}

// finishComment consumes the comment interior and emits the EndComment
// token covering the closing delimiter.
func (l *Lexer) finishComment() (*Token, error) {
	end := l.syntax.EndComment
	idx := strings.Index(l.rest(), end)
	if idx < 0 {
		l.markStart()
		l.advance(len(l.rest()))
		return nil, l.syntaxError(errors.UnclosedDelimiter, "comment is never closed")
	}
	l.advance(idx)
	l.markStart()
	l.advance(len(end))
	l.endComment = false
	tok := l.makeToken(TokenEndComment, "")
	return &tok, nil
}

// tokenizeBlock lexes the interior of an expression or block construct.
func (l *Lexer) tokenizeBlock() (*Token, error) {
	l.skipWhitespace()
	l.markStart()
	if l.atEnd() {
		return nil, l.syntaxError(errors.UnclosedDelimiter, "%s is never closed", l.active)
	}

	end := l.syntax.End(l.active)
	if strings.HasPrefix(l.rest(), end) {
		l.advance(len(end))
		l.state = stateRaw
		l.afterDot = false
		typ := TokenEndExpr
		if l.active == syntax.KindBlock {
			typ = TokenEndBlock
		}
		tok := l.makeToken(typ, "")
		return &tok, nil
	}

	c := l.rest()[0]
	switch {
	case c == '"':
		return l.lexString()
	case isDigit(c):
		return l.lexNumber()
	case isIdentStart(c):
		return l.lexIdent()
	}

	l.afterDot = false
	switch c {
	case '?':
		if strings.HasPrefix(l.rest(), "?.") {
			l.advance(2)
			l.afterDot = true
			tok := l.makeToken(TokenQuestionDot, "")
			return &tok, nil
		}
	case '.':
		l.advance(1)
		l.afterDot = true
		tok := l.makeToken(TokenDot, "")
		return &tok, nil
	case '|':
		l.advance(1)
		tok := l.makeToken(TokenPipe, "")
		return &tok, nil
	case ':':
		l.advance(1)
		tok := l.makeToken(TokenColon, "")
		return &tok, nil
	case ',':
		l.advance(1)
		tok := l.makeToken(TokenComma, "")
		return &tok, nil
	}
	l.advance(1)
	return nil, l.syntaxError(errors.UnexpectedToken, "unexpected character %q", c)
}

// lexString lexes a double-quoted string literal with backslash escapes.
func (l *Lexer) lexString() (*Token, error) {
	l.afterDot = false
	l.advance(1) // opening quote
	var sb strings.Builder
	for {
		if l.atEnd() {
			return nil, l.syntaxError(errors.UnclosedDelimiter, "string is never closed")
		}
		c := l.rest()[0]
		switch c {
		case '"':
			l.advance(1)
			tok := l.makeToken(TokenString, sb.String())
			return &tok, nil
		case '\\':
			if len(l.rest()) < 2 {
				l.advance(1)
				return nil, l.syntaxError(errors.UnclosedDelimiter, "string is never closed")
			}
			esc := l.rest()[1]
			l.advance(2)
			switch esc {
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			default:
				return nil, l.syntaxError(errors.InvalidEscape, "invalid escape \\%c in string", esc)
			}
		default:
			sb.WriteByte(c)
			l.advance(1)
		}
	}
}

// lexNumber lexes an integer or float literal. After a path separator only
// plain digit runs are accepted, so that lorem.123.ipsum tokenizes as a
// path rather than swallowing "123." as the start of a float.
func (l *Lexer) lexNumber() (*Token, error) {
	insidePath := l.afterDot
	l.afterDot = false
	rest := l.rest()

	n := 0
	for n < len(rest) && isDigit(rest[n]) {
		n++
	}

	isFloat := false
	if !insidePath {
		if n+1 < len(rest) && rest[n] == '.' && isDigit(rest[n+1]) {
			isFloat = true
			n += 2
			for n < len(rest) && isDigit(rest[n]) {
				n++
			}
		}
		if n < len(rest) && (rest[n] == 'e' || rest[n] == 'E') {
			isFloat = true
			m := n + 1
			if m < len(rest) && (rest[m] == '+' || rest[m] == '-') {
				m++
			}
			if m >= len(rest) || !isDigit(rest[m]) {
				l.advance(m)
				return nil, l.syntaxError(errors.InvalidNumber, "exponent has no digits")
			}
			n = m
			for n < len(rest) && isDigit(rest[n]) {
				n++
			}
		}
	}

	value := l.advance(n)
	if isFloat {
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return nil, l.syntaxError(errors.InvalidNumber, "invalid float %q", value)
		}
		tok := l.makeToken(TokenFloat, value)
		return &tok, nil
	}
	if _, err := strconv.ParseInt(value, 10, 64); err != nil {
		return nil, l.syntaxError(errors.InvalidNumber, "integer %s is too large", value)
	}
	tok := l.makeToken(TokenInteger, value)
	return &tok, nil
}

// lexIdent lexes an identifier or keyword.
func (l *Lexer) lexIdent() (*Token, error) {
	l.afterDot = false
	rest := l.rest()
	n := 1
	for n < len(rest) && isIdentPart(rest[n]) {
		n++
	}
	value := l.advance(n)
	if typ, ok := keywords[value]; ok {
		tok := l.makeToken(typ, value)
		return &tok, nil
	}
	tok := l.makeToken(TokenIdent, value)
	return &tok, nil
}

// Helper methods

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.source)
}

func (l *Lexer) rest() string {
	if l.pos >= len(l.source) {
		return ""
	}
	return l.source[l.pos:]
}

func (l *Lexer) advance(n int) string {
	if n <= 0 {
		return ""
	}
	start := l.pos
	end := l.pos + n
	if end > len(l.source) {
		end = len(l.source)
	}

	skipped := l.source[start:end]
	for _, c := range skipped {
		if c == '\n' {
			l.line++
			l.col = 0
		} else {
			if l.col < 65535 {
				l.col++
			}
		}
	}
	l.pos = end
	return skipped
}

func (l *Lexer) markStart() {
	l.start = l.pos
	l.startLine = l.line
	l.startCol = l.col
}

func (l *Lexer) span() Span {
	return Span{
		StartLine:   l.startLine,
		StartCol:    l.startCol,
		StartOffset: uint32(l.start),
		EndLine:     l.line,
		EndCol:      l.col,
		EndOffset:   uint32(l.pos),
	}
}

func (l *Lexer) makeToken(typ TokenType, value string) Token {
	return Token{
		Type:  typ,
		Value: value,
		Span:  l.span(),
	}
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() {
		c := l.rest()[0]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			l.advance(1)
		} else {
			break
		}
	}
}

func (l *Lexer) syntaxError(kind errors.Kind, format string, args ...any) error {
	return errors.Newf(kind, format, args...).WithSpan(l.span())
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
