// Package parser builds an abstract syntax tree from the token stream.
package parser

import (
	"github.com/quilltpl/quill/lexer"
	"github.com/quilltpl/quill/value"
)

// Span represents a location range in source code.
type Span = lexer.Span

// Node is the interface implemented by all AST nodes.
type Node interface {
	node()
	Span() Span
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmt()
}

// Expr represents an expression node.
type Expr interface {
	Node
	expr()
}

// --- Statement Types ---

// Template is the root node of a parsed template.
type Template struct {
	Children []Stmt
	span     Span
}

func (t *Template) node()      {}
func (t *Template) stmt()      {}
func (t *Template) Span() Span { return t.span }

// EmitRaw outputs raw template text.
type EmitRaw struct {
	Raw  string
	span Span
}

func (e *EmitRaw) node()      {}
func (e *EmitRaw) stmt()      {}
func (e *EmitRaw) Span() Span { return e.span }

// EmitExpr outputs an expression result.
type EmitExpr struct {
	Expr Expr
	span Span
}

func (e *EmitExpr) node()      {}
func (e *EmitExpr) stmt()      {}
func (e *EmitExpr) Span() Span { return e.span }

// IfCond represents an if/elif/else condition. An elif chain is
// represented as a nested IfCond in the false body of its parent.
type IfCond struct {
	Expr      Expr
	TrueBody  []Stmt
	FalseBody []Stmt
	span      Span
}

func (i *IfCond) node()      {}
func (i *IfCond) stmt()      {}
func (i *IfCond) Span() Span { return i.span }

// ForLoop represents a for loop. KeyVar is empty for the one-variable
// form.
type ForLoop struct {
	KeyVar   string
	ValueVar string
	Iter     Expr
	Body     []Stmt
	span     Span
}

func (f *ForLoop) node()      {}
func (f *ForLoop) stmt()      {}
func (f *ForLoop) Span() Span { return f.span }

// Include renders another registered template, optionally with a context
// override.
type Include struct {
	Name string
	With Expr // nil when no override is given
	span Span
}

func (i *Include) node()      {}
func (i *Include) stmt()      {}
func (i *Include) Span() Span { return i.span }

// --- Expression Types ---

// PathSegment is one step of a path. It is either a string key or an
// integer index, and may be optional (preceded by `?.`).
type PathSegment struct {
	Key      string
	Index    int64
	IsIndex  bool
	Optional bool
}

// Path navigates the scope by a dotted segment sequence. The first
// segment is always a key and never optional.
type Path struct {
	Segments []PathSegment
	span     Span
}

func (p *Path) node()      {}
func (p *Path) expr()      {}
func (p *Path) Span() Span { return p.span }

// Literal is a constant value.
type Literal struct {
	Value value.Value
	span  Span
}

func (l *Literal) node()      {}
func (l *Literal) expr()      {}
func (l *Literal) Span() Span { return l.span }

// FilterCall applies a named filter (or, in the terminal pipeline
// position, a formatter) to the result of the inner expression.
type FilterCall struct {
	Name string
	Expr Expr
	Args []Expr
	span Span
}

func (f *FilterCall) node()      {}
func (f *FilterCall) expr()      {}
func (f *FilterCall) Span() Span { return f.span }
