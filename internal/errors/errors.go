// Package errors defines the error type shared by all engine packages.
package errors

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/quilltpl/quill/syntax"
)

// Kind describes the type of error.
type Kind int

const (
	// Syntactic errors from the lexer and parser.
	UnexpectedToken Kind = iota
	UnclosedDelimiter
	InvalidEscape
	InvalidNumber
	UnknownKeyword

	// Compile-time semantic errors.
	DuplicateLoopVar
	UnbalancedBlock
	NestingTooDeep

	// Render-time errors.
	NotFound
	OutOfRange
	CannotIndex
	NotIterable
	Filter
	FilterArity
	FilterType
	FilterNotFound
	FormatterNotFound
	NotFormattable
	TemplateNotFound
	MaxIncludeDepth
	IO
)

func (k Kind) String() string {
	switch k {
	case UnexpectedToken:
		return "unexpected token"
	case UnclosedDelimiter:
		return "unclosed delimiter"
	case InvalidEscape:
		return "invalid escape"
	case InvalidNumber:
		return "invalid number"
	case UnknownKeyword:
		return "unknown keyword"
	case DuplicateLoopVar:
		return "duplicate loop variable"
	case UnbalancedBlock:
		return "unbalanced block"
	case NestingTooDeep:
		return "nesting too deep"
	case NotFound:
		return "not found"
	case OutOfRange:
		return "out of range"
	case CannotIndex:
		return "cannot index"
	case NotIterable:
		return "not iterable"
	case Filter:
		return "filter error"
	case FilterArity:
		return "wrong filter arity"
	case FilterType:
		return "wrong filter type"
	case FilterNotFound:
		return "filter not found"
	case FormatterNotFound:
		return "formatter not found"
	case NotFormattable:
		return "not formattable"
	case TemplateNotFound:
		return "template not found"
	case MaxIncludeDepth:
		return "max include depth"
	case IO:
		return "io error"
	default:
		return "error"
	}
}

// Error is an error that occurred during template compilation or rendering.
type Error struct {
	Kind    Kind
	Message string
	Span    *syntax.Span
	Name    string // template name
	Source  string // template source, for pretty display
	cause   error
}

// New creates a new error.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf creates a new error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new IO error wrapping err.
func Wrap(err error) *Error {
	return &Error{Kind: IO, Message: err.Error(), cause: err}
}

func (e *Error) Error() string {
	if e.Span != nil {
		return fmt.Sprintf("%s: %s (in %s:%d)", e.Kind, e.Message, e.displayName(), e.Span.StartLine)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithSpan attaches span information, if not already set.
func (e *Error) WithSpan(span syntax.Span) *Error {
	if e.Span == nil {
		e.Span = &span
	}
	return e
}

// WithName attaches a template name, if not already set.
func (e *Error) WithName(name string) *Error {
	if e.Name == "" {
		e.Name = name
	}
	return e
}

// WithSource attaches the template source, if not already set.
func (e *Error) WithSource(source string) *Error {
	if e.Source == "" {
		e.Source = source
	}
	return e
}

func (e *Error) displayName() string {
	if e.Name == "" {
		return "<anonymous>"
	}
	return e.Name
}

// Format implements fmt.Formatter. The %+v verb renders the pretty
// multi-line form with the offending source line and a caret underline.
func (e *Error) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('+') {
		e.formatPretty(f)
		return
	}
	_, _ = fmt.Fprint(f, e.Error())
}

// Pretty returns the multi-line form of the error.
func (e *Error) Pretty() string {
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "%+v", e)
	return sb.String()
}

func (e *Error) formatPretty(f fmt.State) {
	if e.Span == nil || e.Source == "" {
		_, _ = fmt.Fprint(f, e.Error())
		return
	}

	lines := strings.Split(e.Source, "\n")
	lineIdx := int(e.Span.StartLine) - 1
	if lineIdx >= len(lines) {
		lineIdx = len(lines) - 1
	}
	text := ""
	if lineIdx >= 0 {
		text = lines[lineIdx]
	}

	num := fmt.Sprintf("%d", lineIdx+1)
	pad := strings.Repeat(" ", len(num))
	col := int(e.Span.StartCol)
	width := caretWidth(e.Span, text)
	underline := strings.Repeat(" ", min(col, displayWidth(text))) + strings.Repeat("^", width)

	_, _ = fmt.Fprintf(f, "%s\n", e.Kind)
	_, _ = fmt.Fprintf(f, " %s--> %s:%d:%d\n", pad, e.displayName(), lineIdx+1, col+1)
	_, _ = fmt.Fprintf(f, " %s |\n", pad)
	_, _ = fmt.Fprintf(f, " %s | %s\n", num, text)
	_, _ = fmt.Fprintf(f, " %s | %s\n", pad, underline)
	_, _ = fmt.Fprintf(f, " %s |\n", pad)
	_, _ = fmt.Fprintf(f, " %s = reason: %s", pad, e.Message)
}

func caretWidth(span *syntax.Span, line string) int {
	if span.StartLine != span.EndLine {
		// Multi-line span: underline to the end of the first line.
		w := displayWidth(line) - int(span.StartCol)
		if w < 1 {
			return 1
		}
		return w
	}
	w := int(span.EndCol) - int(span.StartCol)
	if w < 1 {
		return 1
	}
	return w
}

// displayWidth approximates terminal width as the code point count.
func displayWidth(s string) int {
	return utf8.RuneCountInString(s)
}
