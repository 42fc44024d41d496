package quill

import (
	"io"
	"strconv"

	"github.com/quilltpl/quill/compiler"
	"github.com/quilltpl/quill/internal/errors"
	"github.com/quilltpl/quill/parser"
	"github.com/quilltpl/quill/syntax"
	"github.com/quilltpl/quill/value"
)

// scope is one frame of the name-resolution stack. Lookups walk the
// stack innermost first.
type scope interface {
	lookup(name string) (value.Value, bool)
}

// rootScope resolves names against the render context.
type rootScope struct {
	ctx value.Value
}

func (s rootScope) lookup(name string) (value.Value, bool) {
	m, ok := s.ctx.AsMap()
	if !ok {
		return value.Value{}, false
	}
	return m.Get(name)
}

// lazyScope resolves names through a caller function, remembering each
// answer so the function runs at most once per name and render.
type lazyScope struct {
	resolve ResolverFunc
	cache   map[string]cachedValue
}

type cachedValue struct {
	val value.Value
	ok  bool
}

func newLazyScope(resolve ResolverFunc) *lazyScope {
	return &lazyScope{resolve: resolve, cache: map[string]cachedValue{}}
}

func (s *lazyScope) lookup(name string) (value.Value, bool) {
	if c, ok := s.cache[name]; ok {
		return c.val, c.ok
	}
	val, ok := s.resolve(name)
	s.cache[name] = cachedValue{val: val, ok: ok}
	return val, ok
}

// loopScope binds the loop variables of one active for loop. A nil keys
// slice means keys are the iteration indexes.
type loopScope struct {
	keyVar   string
	valueVar string
	keys     []value.Value
	items    []value.Value
	index    int
}

func (s *loopScope) lookup(name string) (value.Value, bool) {
	switch name {
	case s.valueVar:
		return s.items[s.index], true
	case s.keyVar:
		if s.keyVar == "" {
			return value.Value{}, false
		}
		if s.keys == nil {
			return value.FromInt(int64(s.index)), true
		}
		return s.keys[s.index], true
	}
	return value.Value{}, false
}

// errWriter latches the first write error and swallows all output after
// it, so the instruction loop never has to check writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return len(p), nil
	}
	n, err := ew.w.Write(p)
	if err != nil {
		ew.err = err
	}
	return n, nil
}

// renderer executes compiled programs. One renderer serves one render
// call, carrying the engine configuration captured at its start.
type renderer struct {
	engine           *Engine
	defaultFormatter FormatterFunc
	maxIncludeDepth  int
}

func newRenderer(e *Engine) *renderer {
	formatter, maxDepth := e.renderConfig()
	return &renderer{engine: e, defaultFormatter: formatter, maxIncludeDepth: maxDepth}
}

func (r *renderer) renderRoot(prog *compiler.Program, root scope, w io.Writer) error {
	ew := &errWriter{w: w}
	if err := r.run(prog, []scope{root}, ew, 0); err != nil {
		return err
	}
	if ew.err != nil {
		return errors.Wrap(ew.err)
	}
	return nil
}

// run executes one program against the given scope stack. Every error
// leaving run carries the program's name and source, so the innermost
// template of an include chain wins.
func (r *renderer) run(prog *compiler.Program, scopes []scope, w *errWriter, depth int) error {
	var stack []value.Value

	push := func(v value.Value) {
		stack = append(stack, v)
	}
	pop := func() value.Value {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	for pc := 0; pc < len(prog.Instrs); pc++ {
		in := prog.Instrs[pc]
		switch in.Op {
		case compiler.OpEmitRaw:
			_, _ = w.Write([]byte(in.Text))

		case compiler.OpEmitExpr:
			if err := r.emit(w, pop(), in.Text, in.Span); err != nil {
				return attach(err, prog.Name, prog.Source)
			}

		case compiler.OpPushValue:
			v, err := resolvePath(scopes, in.Path, in.Span)
			if err != nil {
				return attach(err, prog.Name, prog.Source)
			}
			push(v)

		case compiler.OpPushLiteral:
			push(in.Literal)

		case compiler.OpApplyFilter:
			args := make([]value.Value, in.Argc)
			for i := in.Argc - 1; i >= 0; i-- {
				args[i] = pop()
			}
			v, err := r.applyFilter(in.Text, pop(), args, in.Span)
			if err != nil {
				return attach(err, prog.Name, prog.Source)
			}
			push(v)

		case compiler.OpTestTruthy:
			push(value.FromBool(pop().Truthy()))

		case compiler.OpJumpIfFalse:
			b, _ := pop().AsBool()
			if !b {
				pc = in.Target - 1
			}

		case compiler.OpJump:
			pc = in.Target - 1

		case compiler.OpForBegin:
			frame, err := newLoopScope(pop(), in.KeyVar, in.ValueVar, in.Span)
			if err != nil {
				return attach(err, prog.Name, prog.Source)
			}
			scopes = append(scopes, frame)
			if len(frame.items) == 0 {
				pc = in.Target - 1
			}

		case compiler.OpForNext:
			frame := scopes[len(scopes)-1].(*loopScope)
			frame.index++
			if frame.index < len(frame.items) {
				pc = in.Begin - 1
			} else {
				pc = in.Target - 1
			}

		case compiler.OpInclude:
			var override value.Value
			if in.HasWith {
				override = pop()
			}
			if err := r.include(in, scopes, override, w, depth); err != nil {
				return attach(err, prog.Name, prog.Source)
			}

		case compiler.OpPopScope:
			scopes = scopes[:len(scopes)-1]
		}
	}
	return nil
}

// emit writes a value through the terminal pipeline element. An empty
// tail means the default formatter; otherwise the name resolves to a
// filter followed by the default formatter, or directly to a formatter.
func (r *renderer) emit(w *errWriter, v value.Value, tail string, span syntax.Span) error {
	if tail != "" {
		fn := r.engine.lookupFunction(tail)
		switch fn.kind {
		case FunctionFilter:
			filtered, err := r.callFilter(tail, fn.filter, v, nil, span)
			if err != nil {
				return err
			}
			v = filtered
		case FunctionFormatter:
			return r.format(w, fn.formatter, v, span)
		default:
			return errors.Newf(errors.FormatterNotFound, "%q is neither a filter nor a formatter", tail).WithSpan(span)
		}
	}
	return r.format(w, r.defaultFormatter, v, span)
}

func (r *renderer) format(w *errWriter, fn FormatterFunc, v value.Value, span syntax.Span) error {
	if err := fn(w, v); err != nil {
		if terr, ok := err.(*errors.Error); ok {
			return terr.WithSpan(span)
		}
		return errors.Wrap(err).WithSpan(span)
	}
	return nil
}

func (r *renderer) applyFilter(name string, v value.Value, args []value.Value, span syntax.Span) (value.Value, error) {
	fn := r.engine.lookupFunction(name)
	switch fn.kind {
	case FunctionFilter:
		return r.callFilter(name, fn.filter, v, args, span)
	case FunctionFormatter:
		return value.Value{}, errors.Newf(errors.FilterType, "%q is a formatter, expected a filter", name).WithSpan(span)
	default:
		return value.Value{}, errors.Newf(errors.FilterNotFound, "filter %q does not exist", name).WithSpan(span)
	}
}

func (r *renderer) callFilter(name string, fn FilterFunc, v value.Value, args []value.Value, span syntax.Span) (value.Value, error) {
	out, err := fn(v, args)
	if err != nil {
		if terr, ok := err.(*errors.Error); ok {
			return value.Value{}, terr.WithSpan(span)
		}
		return value.Value{}, errors.Newf(errors.Filter, "filter %s: %s", name, err).WithSpan(span)
	}
	return out, nil
}

func (r *renderer) include(in compiler.Instr, scopes []scope, override value.Value, w *errWriter, depth int) error {
	if depth+1 > r.maxIncludeDepth {
		return errors.Newf(errors.MaxIncludeDepth, "reached the maximum include depth of %d", r.maxIncludeDepth).WithSpan(in.Span)
	}
	prog, ok := r.engine.lookupTemplate(in.Text)
	if !ok {
		return errors.Newf(errors.TemplateNotFound, "template %q does not exist", in.Text).WithSpan(in.Span)
	}
	sub := scopes
	if in.HasWith {
		sub = []scope{rootScope{ctx: override}}
	}
	return r.run(prog, sub, w, depth+1)
}

// newLoopScope materializes the iteration sequence for a for loop.
// Lists iterate over items with index keys, maps over entries in
// insertion order, strings over characters. Iterating none yields no
// iterations at all.
func newLoopScope(iter value.Value, keyVar, valueVar string, span syntax.Span) (*loopScope, error) {
	frame := &loopScope{keyVar: keyVar, valueVar: valueVar}
	switch iter.Kind() {
	case value.KindList:
		items, _ := iter.AsList()
		frame.items = items
	case value.KindMap:
		m, _ := iter.AsMap()
		keys := m.Keys()
		frame.keys = make([]value.Value, len(keys))
		frame.items = make([]value.Value, len(keys))
		for i, key := range keys {
			item, _ := m.Get(key)
			frame.keys[i] = value.FromString(key)
			frame.items[i] = item
		}
	case value.KindString:
		s, _ := iter.AsString()
		for _, r := range s {
			frame.items = append(frame.items, value.FromString(string(r)))
		}
	case value.KindNone:
		// Nothing to iterate.
	default:
		return nil, errors.Newf(errors.NotIterable, "cannot iterate over a %s", iter.Kind()).WithSpan(span)
	}
	return frame, nil
}

// resolvePath resolves a path expression against the scope stack. The
// head segment walks the stack innermost first; later segments index
// into the resolved value.
func resolvePath(scopes []scope, path []parser.PathSegment, span syntax.Span) (value.Value, error) {
	head := path[0]
	v, ok := lookupName(scopes, head.Key)
	if !ok {
		return value.Value{}, errors.Newf(errors.NotFound, "variable %q is not found in this scope", head.Key).WithSpan(span)
	}
	for _, seg := range path[1:] {
		if v.IsNone() && seg.Optional {
			return value.None(), nil
		}
		next, err := resolveSegment(v, seg, span)
		if err != nil {
			return value.Value{}, err
		}
		v = next
	}
	return v, nil
}

func lookupName(scopes []scope, name string) (value.Value, bool) {
	for i := len(scopes) - 1; i >= 0; i-- {
		if v, ok := scopes[i].lookup(name); ok {
			return v, true
		}
	}
	return value.Value{}, false
}

func resolveSegment(v value.Value, seg parser.PathSegment, span syntax.Span) (value.Value, error) {
	switch v.Kind() {
	case value.KindMap:
		m, _ := v.AsMap()
		key := seg.Key
		if seg.IsIndex {
			// Integer segments address maps by their decimal string.
			key = strconv.FormatInt(seg.Index, 10)
		}
		item, ok := m.Get(key)
		if !ok {
			return value.Value{}, errors.Newf(errors.NotFound, "key %q is not found in this map", key).WithSpan(span)
		}
		return item, nil
	case value.KindList:
		items, _ := v.AsList()
		if !seg.IsIndex {
			return value.Value{}, errors.Newf(errors.CannotIndex, "cannot index a list by name %q", seg.Key).WithSpan(span)
		}
		if seg.Index < 0 || seg.Index >= int64(len(items)) {
			return value.Value{}, errors.Newf(errors.OutOfRange, "index %d is out of range for a list of %d", seg.Index, len(items)).WithSpan(span)
		}
		return items[seg.Index], nil
	default:
		return value.Value{}, errors.Newf(errors.CannotIndex, "cannot index a %s", v.Kind()).WithSpan(span)
	}
}
