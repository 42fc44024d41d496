// Package quill is a small embeddable text-templating engine.
//
// Templates mix literal text, value-substitution expressions with filter
// pipelines, and control-flow blocks (conditionals, loops, includes).
// An Engine stores named templates and renders them against caller
// supplied data.
//
// # Quick Start
//
//	engine := quill.New()
//	engine.AddTemplate("hello", "Hello {{ user.name }}!")
//	tmpl, _ := engine.GetTemplate("hello")
//	result, _ := tmpl.Render(map[string]any{
//		"user": map[string]any{"name": "John Smith"},
//	})
//	fmt.Println(result) // Output: Hello John Smith!
//
// # Template Syntax
//
// Key syntax elements:
//   - Expressions: {{ user.name }} with optional chaining {{ user?.name }}
//   - Filters: {{ name | upper }}, chained {{ name | trim | upper }}, and
//     with arguments {{ s | repeat:3 }} for a filter added with AddFilter
//   - Conditionals: {% if x %}...{% elif y %}...{% else %}...{% endif %}
//   - Loops: {% for v in xs %}...{% endfor %} and {% for k, v in m %}
//   - Includes: {% include "other" %} and {% include "other" with item %}
//   - Comments: {# note #}
//
// The three delimiter pairs are configurable via the syntax package:
//
//	engine := quill.NewWithSyntax(syntax.New().Expr("<?", "?>"))
//
// # Error Handling
//
// All template errors are *quill.Error values carrying a kind, the
// template name and a source span. The %+v verb renders a multi-line
// form with the offending line underlined.
package quill

// Re-export commonly used types from subpackages
import (
	"github.com/quilltpl/quill/internal/errors"
	"github.com/quilltpl/quill/syntax"
	"github.com/quilltpl/quill/value"
)

// Value is a dynamically typed value in the template engine.
type Value = value.Value

// ValueKind describes the type of a Value.
type ValueKind = value.ValueKind

// Common value kinds
const (
	KindNone   = value.KindNone
	KindBool   = value.KindBool
	KindInt    = value.KindInt
	KindFloat  = value.KindFloat
	KindString = value.KindString
	KindList   = value.KindList
	KindMap    = value.KindMap
)

// Value constructors
var (
	None       = value.None
	FromBool   = value.FromBool
	FromInt    = value.FromInt
	FromFloat  = value.FromFloat
	FromString = value.FromString
	FromSlice  = value.FromSlice
	FromMap    = value.FromMap
	FromAny    = value.FromAny
	NewMap     = value.NewMap
	MapOf      = value.MapOf
)

// Error is the error type returned by all engine operations.
type Error = errors.Error

// ErrorKind describes the type of an Error.
type ErrorKind = errors.Kind

// Error kinds
const (
	ErrUnexpectedToken   = errors.UnexpectedToken
	ErrUnclosedDelimiter = errors.UnclosedDelimiter
	ErrInvalidEscape     = errors.InvalidEscape
	ErrInvalidNumber     = errors.InvalidNumber
	ErrUnknownKeyword    = errors.UnknownKeyword
	ErrDuplicateLoopVar  = errors.DuplicateLoopVar
	ErrUnbalancedBlock   = errors.UnbalancedBlock
	ErrNestingTooDeep    = errors.NestingTooDeep
	ErrNotFound          = errors.NotFound
	ErrOutOfRange        = errors.OutOfRange
	ErrCannotIndex       = errors.CannotIndex
	ErrNotIterable       = errors.NotIterable
	ErrFilter            = errors.Filter
	ErrFilterArity       = errors.FilterArity
	ErrFilterType        = errors.FilterType
	ErrFilterNotFound    = errors.FilterNotFound
	ErrFormatterNotFound = errors.FormatterNotFound
	ErrNotFormattable    = errors.NotFormattable
	ErrTemplateNotFound  = errors.TemplateNotFound
	ErrMaxIncludeDepth   = errors.MaxIncludeDepth
	ErrIO                = errors.IO
)

// Syntax holds the configurable delimiter pairs.
type Syntax = syntax.Syntax

// DefaultSyntax returns the default delimiters: {{ }}, {% %} and {# #}.
func DefaultSyntax() Syntax {
	return syntax.Default()
}
