// Package syntax holds the configurable delimiters and source spans shared
// by the lexer, compiler and engine.
package syntax

import (
	"fmt"
	"sort"
)

// Kind identifies which construct a delimiter opens.
type Kind int

const (
	KindExpr Kind = iota
	KindBlock
	KindComment
)

func (k Kind) String() string {
	switch k {
	case KindExpr:
		return "expression"
	case KindBlock:
		return "block"
	case KindComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Syntax holds the three delimiter pairs for template constructs.
//
// The zero value is not useful; use Default or New followed by the
// Expr, Block and Comment builder methods.
type Syntax struct {
	BeginExpr    string
	EndExpr      string
	BeginBlock   string
	EndBlock     string
	BeginComment string
	EndComment   string
}

// Default returns the default delimiters: {{ }}, {% %} and {# #}.
func Default() Syntax {
	return Syntax{
		BeginExpr:    "{{",
		EndExpr:      "}}",
		BeginBlock:   "{%",
		EndBlock:     "%}",
		BeginComment: "{#",
		EndComment:   "#}",
	}
}

// New is an alias for Default, as the starting point of the builder methods.
func New() Syntax {
	return Default()
}

// Expr sets the expression delimiters. Empty strings panic.
func (s Syntax) Expr(begin, end string) Syntax {
	checkDelim(begin, end)
	s.BeginExpr = begin
	s.EndExpr = end
	return s
}

// Block sets the block delimiters. Empty strings panic.
func (s Syntax) Block(begin, end string) Syntax {
	checkDelim(begin, end)
	s.BeginBlock = begin
	s.EndBlock = end
	return s
}

// Comment sets the comment delimiters. Empty strings panic.
func (s Syntax) Comment(begin, end string) Syntax {
	checkDelim(begin, end)
	s.BeginComment = begin
	s.EndComment = end
	return s
}

func checkDelim(begin, end string) {
	if begin == "" || end == "" {
		panic("syntax: delimiters must be non-empty")
	}
}

// End returns the closing delimiter for the given construct.
func (s Syntax) End(k Kind) string {
	switch k {
	case KindExpr:
		return s.EndExpr
	case KindBlock:
		return s.EndBlock
	case KindComment:
		return s.EndComment
	default:
		panic(fmt.Sprintf("syntax: invalid kind %d", k))
	}
}

// Pattern is a begin delimiter paired with the construct it opens.
type Pattern struct {
	Kind Kind
	Text string
}

// BeginPatterns returns the begin delimiters sorted by decreasing length.
// Testing them in order at a source position implements longest-match-wins
// for delimiters that share a prefix.
func (s Syntax) BeginPatterns() []Pattern {
	patterns := []Pattern{
		{KindExpr, s.BeginExpr},
		{KindBlock, s.BeginBlock},
		{KindComment, s.BeginComment},
	}
	for _, p := range patterns {
		if p.Text == "" {
			panic("syntax: delimiters must be non-empty")
		}
	}
	sort.SliceStable(patterns, func(i, j int) bool {
		return len(patterns[i].Text) > len(patterns[j].Text)
	})
	return patterns
}
