package parser

import (
	"fmt"
	"strconv"

	"github.com/quilltpl/quill/internal/errors"
	"github.com/quilltpl/quill/lexer"
	"github.com/quilltpl/quill/syntax"
	"github.com/quilltpl/quill/value"
)

const (
	// maxNesting bounds the depth of nested if/for blocks.
	maxNesting = 64
	// maxFilterChain bounds the number of pipeline elements per expression.
	maxFilterChain = 32
	// maxFilterArgs bounds the positional arguments of one filter call.
	maxFilterArgs = 4
)

// Parser parses a token stream into a template AST.
type Parser struct {
	tokens   []lexer.Token
	pos      int
	depth    int
	lastSpan Span
}

// Parse tokenizes and parses a template source.
func Parse(source string, s syntax.Syntax) (*Template, error) {
	tokens, err := lexer.Tokenize(source, s)
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens}
	return p.parse()
}

func (p *Parser) parse() (*Template, error) {
	children, err := p.subparse(nil, "")
	if err != nil {
		return nil, err
	}
	return &Template{
		Children: children,
		span:     p.expandSpan(Span{StartLine: 1}),
	}, nil
}

// subparse parses statements until end of input or, when stop is
// non-nil, until a block opens with a terminator token matched by stop.
// The opening delimiter of the terminator block is consumed; the
// terminator token itself is left for the caller. expected names the
// terminator for the unexpected-EOF message.
func (p *Parser) subparse(stop func(lexer.TokenType) bool, expected string) ([]Stmt, error) {
	var stmts []Stmt

	for {
		tok := p.advance()
		if tok == nil {
			if expected != "" {
				return nil, p.errorf(errors.UnbalancedBlock, "unexpected end of input, expected %s", expected)
			}
			return stmts, nil
		}

		switch tok.Type {
		case lexer.TokenRaw:
			stmts = append(stmts, &EmitRaw{Raw: tok.Value, span: tok.Span})

		case lexer.TokenBeginExpr:
			span := tok.Span
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.TokenEndExpr, "end of expression"); err != nil {
				return nil, err
			}
			stmts = append(stmts, &EmitExpr{Expr: expr, span: p.expandSpan(span)})

		case lexer.TokenBeginComment:
			if _, err := p.expect(lexer.TokenEndComment, "end of comment"); err != nil {
				return nil, err
			}

		case lexer.TokenBeginBlock:
			current := p.current()
			if current == nil {
				return nil, p.errorf(errors.UnexpectedToken, "unexpected end of input, expected keyword")
			}
			if stop != nil && stop(current.Type) {
				return stmts, nil
			}
			stmt, err := p.parseStmt()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
			if _, err := p.expect(lexer.TokenEndBlock, "end of block"); err != nil {
				return nil, err
			}

		default:
			return nil, p.errorf(errors.UnexpectedToken, "unexpected token %s", tok.Type)
		}
	}
}

func (p *Parser) parseStmt() (Stmt, error) {
	tok := p.advance()
	switch tok.Type {
	case lexer.TokenIf:
		return p.parseIfStmt(tok.Span)
	case lexer.TokenFor:
		return p.parseForStmt(tok.Span)
	case lexer.TokenInclude:
		return p.parseIncludeStmt(tok.Span)
	case lexer.TokenElif, lexer.TokenElse, lexer.TokenEndif, lexer.TokenEndfor:
		return nil, p.errorAt(tok.Span, errors.UnbalancedBlock, "%s without a matching open block", tok.Value)
	case lexer.TokenIdent:
		return nil, p.errorAt(tok.Span, errors.UnknownKeyword, "unknown block keyword %q", tok.Value)
	default:
		return nil, p.errorAt(tok.Span, errors.UnexpectedToken, "unexpected %s, expected keyword", tokenDescription(tok))
	}
}

func (p *Parser) parseIfStmt(span Span) (Stmt, error) {
	if err := p.enterBlock(); err != nil {
		return nil, err
	}
	defer p.leaveBlock()

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenEndBlock, "end of block"); err != nil {
		return nil, err
	}

	trueBody, err := p.subparse(func(t lexer.TokenType) bool {
		return t == lexer.TokenElif || t == lexer.TokenElse || t == lexer.TokenEndif
	}, "endif")
	if err != nil {
		return nil, err
	}

	var falseBody []Stmt
	switch tok := p.advance(); tok.Type {
	case lexer.TokenEndif:
		// no else branch

	case lexer.TokenElse:
		if _, err := p.expect(lexer.TokenEndBlock, "end of block"); err != nil {
			return nil, err
		}
		falseBody, err = p.subparse(func(t lexer.TokenType) bool {
			return t == lexer.TokenEndif
		}, "endif")
		if err != nil {
			return nil, err
		}
		p.advance() // consume endif

	case lexer.TokenElif:
		nested, err := p.parseIfStmt(tok.Span)
		if err != nil {
			return nil, err
		}
		falseBody = []Stmt{nested}
	}

	return &IfCond{
		Expr:      expr,
		TrueBody:  trueBody,
		FalseBody: falseBody,
		span:      p.expandSpan(span),
	}, nil
}

func (p *Parser) parseForStmt(span Span) (Stmt, error) {
	if err := p.enterBlock(); err != nil {
		return nil, err
	}
	defer p.leaveBlock()

	first, err := p.expectIdent("loop variable")
	if err != nil {
		return nil, err
	}
	keyVar, valueVar := "", first.Value
	if p.skip(lexer.TokenComma) {
		second, err := p.expectIdent("loop variable")
		if err != nil {
			return nil, err
		}
		keyVar, valueVar = first.Value, second.Value
		if keyVar == valueVar {
			return nil, p.errorAt(second.Span, errors.DuplicateLoopVar, "loop variable %q is bound twice", keyVar)
		}
	}

	if _, err := p.expect(lexer.TokenIn, "in"); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenEndBlock, "end of block"); err != nil {
		return nil, err
	}

	body, err := p.subparse(func(t lexer.TokenType) bool {
		return t == lexer.TokenEndfor
	}, "endfor")
	if err != nil {
		return nil, err
	}
	p.advance() // consume endfor

	return &ForLoop{
		KeyVar:   keyVar,
		ValueVar: valueVar,
		Iter:     iter,
		Body:     body,
		span:     p.expandSpan(span),
	}, nil
}

func (p *Parser) parseIncludeStmt(span Span) (Stmt, error) {
	name, err := p.expect(lexer.TokenString, "template name string")
	if err != nil {
		return nil, err
	}

	var with Expr
	if p.skip(lexer.TokenWith) {
		with, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	return &Include{
		Name: name.Value,
		With: with,
		span: p.expandSpan(span),
	}, nil
}

// --- Expression Parsing ---

// parseExpr parses a path followed by an optional filter pipeline.
func (p *Parser) parseExpr() (Expr, error) {
	expr, err := p.parsePath()
	if err != nil {
		return nil, err
	}

	chain := 0
	for p.skip(lexer.TokenPipe) {
		chain++
		if chain > maxFilterChain {
			return nil, p.errorf(errors.NestingTooDeep, "filter chain exceeds %d elements", maxFilterChain)
		}
		name, err := p.expectIdent("filter name")
		if err != nil {
			return nil, err
		}
		var args []Expr
		if p.skip(lexer.TokenColon) {
			for {
				arg, err := p.parseArg()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if !p.skip(lexer.TokenComma) {
					break
				}
			}
			if len(args) > maxFilterArgs {
				return nil, p.errorAt(name.Span, errors.FilterArity, "filter %s takes at most %d arguments", name.Value, maxFilterArgs)
			}
		}
		expr = &FilterCall{
			Name: name.Value,
			Expr: expr,
			Args: args,
			span: p.expandSpan(name.Span),
		}
	}
	return expr, nil
}

func (p *Parser) parsePath() (Expr, error) {
	first, err := p.expectIdent("identifier")
	if err != nil {
		return nil, err
	}
	segments := []PathSegment{{Key: first.Value}}

	for p.matchesAny(lexer.TokenDot, lexer.TokenQuestionDot) {
		sep := p.advance()
		optional := sep.Type == lexer.TokenQuestionDot

		tok := p.advance()
		if tok == nil {
			return nil, p.errorf(errors.UnexpectedToken, "unexpected end of input, expected path segment")
		}
		switch tok.Type {
		case lexer.TokenIdent:
			segments = append(segments, PathSegment{Key: tok.Value, Optional: optional})
		case lexer.TokenInteger:
			index, err := strconv.ParseInt(tok.Value, 10, 64)
			if err != nil {
				return nil, p.errorAt(tok.Span, errors.InvalidNumber, "integer %s is too large", tok.Value)
			}
			segments = append(segments, PathSegment{Index: index, IsIndex: true, Optional: optional})
		default:
			return nil, p.errorAt(tok.Span, errors.UnexpectedToken, "unexpected %s, expected path segment", tokenDescription(tok))
		}
	}

	return &Path{
		Segments: segments,
		span:     p.expandSpan(first.Span),
	}, nil
}

// parseArg parses one filter argument: a literal or a path.
func (p *Parser) parseArg() (Expr, error) {
	tok := p.current()
	if tok == nil {
		return nil, p.errorf(errors.UnexpectedToken, "unexpected end of input, expected filter argument")
	}
	switch tok.Type {
	case lexer.TokenIdent:
		return p.parsePath()
	case lexer.TokenInteger:
		p.advance()
		i, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, p.errorAt(tok.Span, errors.InvalidNumber, "integer %s is too large", tok.Value)
		}
		return &Literal{Value: value.FromInt(i), span: tok.Span}, nil
	case lexer.TokenFloat:
		p.advance()
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.errorAt(tok.Span, errors.InvalidNumber, "invalid float %q", tok.Value)
		}
		return &Literal{Value: value.FromFloat(f), span: tok.Span}, nil
	case lexer.TokenString:
		p.advance()
		return &Literal{Value: value.FromString(tok.Value), span: tok.Span}, nil
	case lexer.TokenTrue:
		p.advance()
		return &Literal{Value: value.FromBool(true), span: tok.Span}, nil
	case lexer.TokenFalse:
		p.advance()
		return &Literal{Value: value.FromBool(false), span: tok.Span}, nil
	default:
		return nil, p.errorAt(tok.Span, errors.UnexpectedToken, "unexpected %s, expected filter argument", tokenDescription(tok))
	}
}

// --- Helpers ---

func (p *Parser) current() *lexer.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) advance() *lexer.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	tok := &p.tokens[p.pos]
	p.lastSpan = tok.Span
	p.pos++
	return tok
}

func (p *Parser) currentSpan() Span {
	if tok := p.current(); tok != nil {
		return tok.Span
	}
	return p.lastSpan
}

func (p *Parser) expandSpan(start Span) Span {
	return Span{
		StartLine:   start.StartLine,
		StartCol:    start.StartCol,
		StartOffset: start.StartOffset,
		EndLine:     p.lastSpan.EndLine,
		EndCol:      p.lastSpan.EndCol,
		EndOffset:   p.lastSpan.EndOffset,
	}
}

func (p *Parser) expect(typ lexer.TokenType, expected string) (*lexer.Token, error) {
	tok := p.advance()
	if tok == nil {
		return nil, p.errorf(errors.UnexpectedToken, "unexpected end of input, expected %s", expected)
	}
	if tok.Type != typ {
		return nil, p.errorAt(tok.Span, errors.UnexpectedToken, "unexpected %s, expected %s", tokenDescription(tok), expected)
	}
	return tok, nil
}

func (p *Parser) expectIdent(expected string) (*lexer.Token, error) {
	return p.expect(lexer.TokenIdent, expected)
}

func (p *Parser) skip(typ lexer.TokenType) bool {
	if tok := p.current(); tok != nil && tok.Type == typ {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchesAny(types ...lexer.TokenType) bool {
	tok := p.current()
	if tok == nil {
		return false
	}
	for _, t := range types {
		if tok.Type == t {
			return true
		}
	}
	return false
}

func (p *Parser) enterBlock() error {
	p.depth++
	if p.depth > maxNesting {
		return p.errorf(errors.NestingTooDeep, "blocks nested deeper than %d levels", maxNesting)
	}
	return nil
}

func (p *Parser) leaveBlock() {
	p.depth--
}

func (p *Parser) errorf(kind errors.Kind, format string, args ...any) error {
	return p.errorAt(p.currentSpan(), kind, format, args...)
}

func (p *Parser) errorAt(span Span, kind errors.Kind, format string, args ...any) error {
	return errors.Newf(kind, format, args...).WithSpan(span)
}

func tokenDescription(tok *lexer.Token) string {
	switch tok.Type {
	case lexer.TokenIdent:
		return fmt.Sprintf("identifier %q", tok.Value)
	case lexer.TokenString:
		return "string"
	case lexer.TokenInteger:
		return "integer"
	case lexer.TokenFloat:
		return "float"
	case lexer.TokenRaw:
		return "raw text"
	case lexer.TokenEndExpr:
		return "end of expression"
	case lexer.TokenEndBlock:
		return "end of block"
	default:
		return fmt.Sprintf("`%s`", tok.Type)
	}
}
