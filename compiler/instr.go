// Package compiler lowers a template AST to a linear instruction stream.
package compiler

import (
	"fmt"

	"github.com/quilltpl/quill/parser"
	"github.com/quilltpl/quill/syntax"
	"github.com/quilltpl/quill/value"
)

// Op identifies an instruction.
type Op int

const (
	// OpEmitRaw writes literal template text to the sink.
	OpEmitRaw Op = iota
	// OpEmitExpr pops a value and writes it through a formatter. Text
	// optionally names the terminal pipeline element, resolved at render
	// time to a filter or formatter; empty means the default formatter.
	OpEmitExpr
	// OpPushValue resolves Path against the scope stack and pushes the
	// result.
	OpPushValue
	// OpPushLiteral pushes Literal.
	OpPushLiteral
	// OpApplyFilter pops Argc arguments, then the receiver, calls the
	// filter named by Text and pushes the result.
	OpApplyFilter
	// OpTestTruthy pops a value and pushes its boolean projection.
	OpTestTruthy
	// OpJumpIfFalse pops a boolean and jumps to Target when false.
	OpJumpIfFalse
	// OpJump jumps to Target.
	OpJump
	// OpForBegin pops the iterable, pushes a loop frame binding KeyVar
	// and ValueVar, and starts the first iteration; an empty iterable
	// jumps straight to Target.
	OpForBegin
	// OpForNext advances the loop frame; it jumps to Begin for the next
	// iteration or to Target when exhausted.
	OpForNext
	// OpInclude renders the registered template named by Text; when
	// HasWith is set, the context override is popped first.
	OpInclude
	// OpPopScope pops the top scope frame.
	OpPopScope
)

var opNames = map[Op]string{
	OpEmitRaw:     "EMIT_RAW",
	OpEmitExpr:    "EMIT_EXPR",
	OpPushValue:   "PUSH_VALUE",
	OpPushLiteral: "PUSH_LITERAL",
	OpApplyFilter: "APPLY_FILTER",
	OpTestTruthy:  "TEST_TRUTHY",
	OpJumpIfFalse: "JUMP_IF_FALSE",
	OpJump:        "JUMP",
	OpForBegin:    "FOR_BEGIN",
	OpForNext:     "FOR_NEXT",
	OpInclude:     "INCLUDE",
	OpPopScope:    "POP_SCOPE",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", op)
}

// Instr is one instruction. Only the fields relevant to the op are set.
// Jump targets are absolute instruction indices.
type Instr struct {
	Op       Op
	Text     string               // raw bytes, filter/formatter name or template name
	Path     []parser.PathSegment // OpPushValue
	Literal  value.Value          // OpPushLiteral
	Argc     int                  // OpApplyFilter
	Target   int                  // jump destination
	Begin    int                  // OpForNext loop entry
	KeyVar   string               // OpForBegin, empty for one-variable loops
	ValueVar string               // OpForBegin
	HasWith  bool                 // OpInclude
	Span     syntax.Span
}

// Program is the immutable compiled form of a template.
type Program struct {
	Name   string
	Source string
	Instrs []Instr
}
