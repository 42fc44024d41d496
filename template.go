package quill

import (
	"io"
	"strings"

	"github.com/quilltpl/quill/compiler"
	"github.com/quilltpl/quill/value"
)

// Template is a handle to a compiled template. Handles are cheap and
// stay usable even after the engine replaces or removes the template
// they were fetched from.
type Template struct {
	engine *Engine
	prog   *compiler.Program
}

// Name returns the name the template was registered or compiled under.
// Anonymous templates have an empty name.
func (t *Template) Name() string {
	return t.prog.Name
}

// Source returns the template source text.
func (t *Template) Source() string {
	return t.prog.Source
}

// Render renders the template against context and returns the output.
// The context is converted with value.FromAny; pass a map[string]any,
// a value.Value map, or any struct-free composition of both.
func (t *Template) Render(context any) (string, error) {
	return t.RenderValue(value.FromAny(context))
}

// RenderValue is Render for a context that is already a Value.
func (t *Template) RenderValue(context value.Value) (string, error) {
	var sb strings.Builder
	if err := t.RenderValueToWriter(context, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderToWriter renders the template against context, streaming the
// output to w.
func (t *Template) RenderToWriter(context any, w io.Writer) error {
	return t.RenderValueToWriter(value.FromAny(context), w)
}

// RenderValueToWriter is RenderToWriter for a Value context.
func (t *Template) RenderValueToWriter(context value.Value, w io.Writer) error {
	r := newRenderer(t.engine)
	return r.renderRoot(t.prog, rootScope{ctx: context}, w)
}

// RenderFromFn renders the template with root names supplied lazily by
// resolve. Each name is resolved at most once per render; the result,
// including a miss, is cached for later lookups of the same name.
func (t *Template) RenderFromFn(resolve ResolverFunc, w io.Writer) error {
	r := newRenderer(t.engine)
	return r.renderRoot(t.prog, newLazyScope(resolve), w)
}
