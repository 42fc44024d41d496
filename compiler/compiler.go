package compiler

import (
	"fmt"

	"github.com/quilltpl/quill/internal/errors"
	"github.com/quilltpl/quill/parser"
)

// maxExprLen bounds the source length of a single expression in bytes.
const maxExprLen = 128

// pending marks a jump target that is fixed up later.
const pending = -1

// Compile lowers a parsed template to a program.
func Compile(tmpl *parser.Template, name, source string) (*Program, error) {
	c := &compiler{}
	if err := c.stmts(tmpl.Children); err != nil {
		return nil, err
	}
	p := &Program{Name: name, Source: source, Instrs: c.instrs}
	validate(p)
	return p, nil
}

type compiler struct {
	instrs []Instr
}

func (c *compiler) emit(in Instr) int {
	c.instrs = append(c.instrs, in)
	return len(c.instrs) - 1
}

func (c *compiler) next() int {
	return len(c.instrs)
}

func (c *compiler) stmts(stmts []parser.Stmt) error {
	for _, stmt := range stmts {
		if err := c.stmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) stmt(stmt parser.Stmt) error {
	switch s := stmt.(type) {
	case *parser.EmitRaw:
		c.emit(Instr{Op: OpEmitRaw, Text: s.Raw, Span: s.Span()})
		return nil
	case *parser.EmitExpr:
		return c.emitExpr(s)
	case *parser.IfCond:
		return c.ifCond(s)
	case *parser.ForLoop:
		return c.forLoop(s)
	case *parser.Include:
		return c.include(s)
	default:
		panic(fmt.Sprintf("compiler: unknown statement %T", stmt))
	}
}

// emitExpr compiles an expression statement. A terminal pipeline element
// without arguments is not compiled as a filter application: its name is
// carried on the EMIT_EXPR instruction and resolved at render time,
// where it may name either a filter or a formatter.
func (c *compiler) emitExpr(s *parser.EmitExpr) error {
	if err := c.checkExprLen(s.Expr); err != nil {
		return err
	}
	expr := s.Expr
	tail := ""
	if call, ok := expr.(*parser.FilterCall); ok && len(call.Args) == 0 {
		tail = call.Name
		expr = call.Expr
	}
	if err := c.expr(expr); err != nil {
		return err
	}
	c.emit(Instr{Op: OpEmitExpr, Text: tail, Span: s.Span()})
	return nil
}

func (c *compiler) ifCond(s *parser.IfCond) error {
	if err := c.checkExprLen(s.Expr); err != nil {
		return err
	}
	if err := c.expr(s.Expr); err != nil {
		return err
	}
	c.emit(Instr{Op: OpTestTruthy, Span: s.Expr.Span()})
	jumpFalse := c.emit(Instr{Op: OpJumpIfFalse, Target: pending, Span: s.Expr.Span()})

	if err := c.stmts(s.TrueBody); err != nil {
		return err
	}

	if len(s.FalseBody) == 0 {
		c.instrs[jumpFalse].Target = c.next()
		return nil
	}

	jumpEnd := c.emit(Instr{Op: OpJump, Target: pending, Span: s.Span()})
	c.instrs[jumpFalse].Target = c.next()
	if err := c.stmts(s.FalseBody); err != nil {
		return err
	}
	c.instrs[jumpEnd].Target = c.next()
	return nil
}

// forLoop lays out a loop as:
//
//	PUSH_*       (iterable expression)
//	FOR_BEGIN    -> end
//	  body
//	FOR_NEXT     -> begin | end
//	end: POP_SCOPE
//
// FOR_BEGIN pushes the loop frame even for an empty iterable, so the
// frame is unconditionally popped by the trailing POP_SCOPE.
func (c *compiler) forLoop(s *parser.ForLoop) error {
	if err := c.checkExprLen(s.Iter); err != nil {
		return err
	}
	if err := c.expr(s.Iter); err != nil {
		return err
	}
	forBegin := c.emit(Instr{
		Op:       OpForBegin,
		KeyVar:   s.KeyVar,
		ValueVar: s.ValueVar,
		Target:   pending,
		Span:     s.Span(),
	})
	begin := c.next()

	if err := c.stmts(s.Body); err != nil {
		return err
	}

	c.emit(Instr{Op: OpForNext, Begin: begin, Target: pending, Span: s.Span()})
	end := c.next()
	c.instrs[forBegin].Target = end
	c.instrs[end-1].Target = end
	c.emit(Instr{Op: OpPopScope, Span: s.Span()})
	return nil
}

func (c *compiler) include(s *parser.Include) error {
	if s.With != nil {
		if err := c.checkExprLen(s.With); err != nil {
			return err
		}
		if err := c.expr(s.With); err != nil {
			return err
		}
	}
	c.emit(Instr{Op: OpInclude, Text: s.Name, HasWith: s.With != nil, Span: s.Span()})
	return nil
}

func (c *compiler) expr(expr parser.Expr) error {
	switch e := expr.(type) {
	case *parser.Path:
		c.emit(Instr{Op: OpPushValue, Path: e.Segments, Span: e.Span()})
		return nil
	case *parser.Literal:
		c.emit(Instr{Op: OpPushLiteral, Literal: e.Value, Span: e.Span()})
		return nil
	case *parser.FilterCall:
		if err := c.expr(e.Expr); err != nil {
			return err
		}
		for _, arg := range e.Args {
			if err := c.expr(arg); err != nil {
				return err
			}
		}
		c.emit(Instr{Op: OpApplyFilter, Text: e.Name, Argc: len(e.Args), Span: e.Span()})
		return nil
	default:
		panic(fmt.Sprintf("compiler: unknown expression %T", expr))
	}
}

func (c *compiler) checkExprLen(expr parser.Expr) error {
	span := expr.Span()
	if int(span.EndOffset)-int(span.StartOffset) > maxExprLen {
		return errors.Newf(errors.NestingTooDeep, "expression exceeds %d bytes", maxExprLen).WithSpan(span)
	}
	return nil
}

// validate panics when a branch instruction targets an index outside the
// program. Such a program is a compiler bug, not a user error.
func validate(p *Program) {
	for i, in := range p.Instrs {
		switch in.Op {
		case OpJump, OpJumpIfFalse, OpForBegin, OpForNext:
			if in.Target < 0 || in.Target > len(p.Instrs) {
				panic(fmt.Sprintf("compiler: instruction %d targets %d outside program of %d", i, in.Target, len(p.Instrs)))
			}
			if in.Op == OpForNext && (in.Begin < 0 || in.Begin > len(p.Instrs)) {
				panic(fmt.Sprintf("compiler: instruction %d loops to %d outside program of %d", i, in.Begin, len(p.Instrs)))
			}
		}
	}
}
