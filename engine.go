package quill

import (
	"io"
	"sync"

	"github.com/quilltpl/quill/compiler"
	"github.com/quilltpl/quill/internal/errors"
	"github.com/quilltpl/quill/parser"
	"github.com/quilltpl/quill/syntax"
	"github.com/quilltpl/quill/value"
)

// FilterFunc transforms a value inside an expression pipeline. The
// receiver is the piped value; args holds the filter arguments in
// source order.
type FilterFunc func(val value.Value, args []value.Value) (value.Value, error)

// FormatterFunc writes the final rendering of a value to the output.
type FormatterFunc func(w io.Writer, val value.Value) error

// ResolverFunc supplies root-scope values by name for lazy rendering.
// The second return reports whether the name is known.
type ResolverFunc func(name string) (value.Value, bool)

// FunctionKind reports what is registered under a function name.
type FunctionKind int

const (
	// FunctionNone means the name is unregistered.
	FunctionNone FunctionKind = iota
	// FunctionFilter means the name refers to a filter.
	FunctionFilter
	// FunctionFormatter means the name refers to a formatter.
	FunctionFormatter
)

// function is either a filter or a formatter, never both. The two share
// one namespace so that a terminal pipeline element can resolve to
// either.
type function struct {
	kind      FunctionKind
	filter    FilterFunc
	formatter FormatterFunc
}

// defaultMaxIncludeDepth bounds include recursion unless overridden.
const defaultMaxIncludeDepth = 64

// Engine stores named templates together with the filters and
// formatters they can call. An Engine is safe for concurrent use; the
// Template handles it returns stay valid after further mutation of the
// engine.
type Engine struct {
	syntax syntax.Syntax

	mu               sync.RWMutex
	templates        map[string]*compiler.Program
	functions        map[string]function
	defaultFormatter FormatterFunc
	maxIncludeDepth  int
}

// New creates an engine with the default delimiters and the built-in
// filters registered.
func New() *Engine {
	engine := Empty()
	registerDefaults(engine)
	return engine
}

// NewWithSyntax creates an engine like New but with custom delimiters.
func NewWithSyntax(s syntax.Syntax) *Engine {
	engine := New()
	engine.syntax = s
	return engine
}

// Empty creates an engine with the default delimiters and no filters
// or formatters at all.
func Empty() *Engine {
	return &Engine{
		syntax:           syntax.Default(),
		templates:        map[string]*compiler.Program{},
		functions:        map[string]function{},
		defaultFormatter: defaultFormatter,
		maxIncludeDepth:  defaultMaxIncludeDepth,
	}
}

// AddTemplate compiles source and registers it under name, replacing
// any previous template with that name. Syntax errors are reported
// immediately and leave the engine unchanged.
func (e *Engine) AddTemplate(name, source string) error {
	prog, err := e.compile(name, source)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.templates[name] = prog
	e.mu.Unlock()
	return nil
}

// RemoveTemplate removes the named template. It reports whether a
// template was registered under that name.
func (e *Engine) RemoveTemplate(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.templates[name]
	delete(e.templates, name)
	return ok
}

// GetTemplate returns a handle for the named template.
func (e *Engine) GetTemplate(name string) (*Template, error) {
	e.mu.RLock()
	prog, ok := e.templates[name]
	e.mu.RUnlock()
	if !ok {
		return nil, errors.Newf(errors.TemplateNotFound, "template %q does not exist", name).WithName(name)
	}
	return &Template{engine: e, prog: prog}, nil
}

// Compile compiles source into an anonymous template handle without
// registering it. The template can still include registered templates.
func (e *Engine) Compile(source string) (*Template, error) {
	return e.CompileNamed("", source)
}

// CompileNamed is Compile with a name used in error messages.
func (e *Engine) CompileNamed(name, source string) (*Template, error) {
	prog, err := e.compile(name, source)
	if err != nil {
		return nil, err
	}
	return &Template{engine: e, prog: prog}, nil
}

func (e *Engine) compile(name, source string) (*compiler.Program, error) {
	tmpl, err := parser.Parse(source, e.syntax)
	if err != nil {
		return nil, attach(err, name, source)
	}
	prog, err := compiler.Compile(tmpl, name, source)
	if err != nil {
		return nil, attach(err, name, source)
	}
	return prog, nil
}

// AddFilter registers fn as a filter under name, displacing whatever
// the name referred to before. It returns the prior registration kind.
func (e *Engine) AddFilter(name string, fn FilterFunc) FunctionKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	prior := e.functions[name].kind
	e.functions[name] = function{kind: FunctionFilter, filter: fn}
	return prior
}

// AddFormatter registers fn as a formatter under name, displacing
// whatever the name referred to before. It returns the prior
// registration kind.
func (e *Engine) AddFormatter(name string, fn FormatterFunc) FunctionKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	prior := e.functions[name].kind
	e.functions[name] = function{kind: FunctionFormatter, formatter: fn}
	return prior
}

// RemoveFunction unregisters the filter or formatter under name and
// returns what was removed.
func (e *Engine) RemoveFunction(name string) FunctionKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	prior := e.functions[name].kind
	delete(e.functions, name)
	return prior
}

// SetDefaultFormatter replaces the formatter used when an expression
// names no terminal formatter.
func (e *Engine) SetDefaultFormatter(fn FormatterFunc) {
	e.mu.Lock()
	e.defaultFormatter = fn
	e.mu.Unlock()
}

// SetMaxIncludeDepth bounds transitive includes. A render whose include
// chain exceeds depth fails with ErrMaxIncludeDepth.
func (e *Engine) SetMaxIncludeDepth(depth int) {
	e.mu.Lock()
	e.maxIncludeDepth = depth
	e.mu.Unlock()
}

// lookupFunction returns the registration under name.
func (e *Engine) lookupFunction(name string) function {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.functions[name]
}

// lookupTemplate fetches a registered program for includes.
func (e *Engine) lookupTemplate(name string) (*compiler.Program, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	prog, ok := e.templates[name]
	return prog, ok
}

func (e *Engine) renderConfig() (FormatterFunc, int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.defaultFormatter, e.maxIncludeDepth
}

// attach stamps the template name and source onto err for pretty
// printing, without clobbering values set deeper in the pipeline.
func attach(err error, name, source string) error {
	if terr, ok := err.(*errors.Error); ok {
		return terr.WithName(name).WithSource(source)
	}
	return err
}
