package parser

import (
	"strings"
	"testing"

	"github.com/quilltpl/quill/internal/errors"
	"github.com/quilltpl/quill/syntax"
	"github.com/quilltpl/quill/value"
)

func parse(t *testing.T, source string) *Template {
	t.Helper()
	tmpl, err := Parse(source, syntax.Default())
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", source, err)
	}
	return tmpl
}

func TestParseRawOnly(t *testing.T) {
	tmpl := parse(t, "Hello World")
	if len(tmpl.Children) != 1 {
		t.Fatalf("got %d children, want 1", len(tmpl.Children))
	}
	raw, ok := tmpl.Children[0].(*EmitRaw)
	if !ok {
		t.Fatalf("child is %T, want *EmitRaw", tmpl.Children[0])
	}
	if raw.Raw != "Hello World" {
		t.Errorf("raw = %q, want %q", raw.Raw, "Hello World")
	}
}

func TestParseEmitExpr(t *testing.T) {
	tmpl := parse(t, "Hello {{ user.name }}!")
	if len(tmpl.Children) != 3 {
		t.Fatalf("got %d children, want 3", len(tmpl.Children))
	}
	emit, ok := tmpl.Children[1].(*EmitExpr)
	if !ok {
		t.Fatalf("child 1 is %T, want *EmitExpr", tmpl.Children[1])
	}
	path, ok := emit.Expr.(*Path)
	if !ok {
		t.Fatalf("expr is %T, want *Path", emit.Expr)
	}
	if len(path.Segments) != 2 || path.Segments[0].Key != "user" || path.Segments[1].Key != "name" {
		t.Errorf("unexpected segments %+v", path.Segments)
	}
}

func TestParsePathSegments(t *testing.T) {
	tmpl := parse(t, "{{ a.123.b?.0 }}")
	path := tmpl.Children[0].(*EmitExpr).Expr.(*Path)
	want := []PathSegment{
		{Key: "a"},
		{Index: 123, IsIndex: true},
		{Key: "b"},
		{Index: 0, IsIndex: true, Optional: true},
	}
	if len(path.Segments) != len(want) {
		t.Fatalf("got %d segments, want %d", len(path.Segments), len(want))
	}
	for i, seg := range path.Segments {
		if seg != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, seg, want[i])
		}
	}
}

func TestParseFilterPipeline(t *testing.T) {
	tmpl := parse(t, `{{ name | trim | pad:3,"x" }}`)
	pad, ok := tmpl.Children[0].(*EmitExpr).Expr.(*FilterCall)
	if !ok {
		t.Fatal("outermost expr is not a filter call")
	}
	if pad.Name != "pad" || len(pad.Args) != 2 {
		t.Fatalf("outer call = %s/%d args, want pad/2", pad.Name, len(pad.Args))
	}
	if lit, ok := pad.Args[0].(*Literal); !ok || !lit.Value.Equal(value.FromInt(3)) {
		t.Errorf("arg 0 = %v, want literal 3", pad.Args[0])
	}
	if lit, ok := pad.Args[1].(*Literal); !ok || !lit.Value.Equal(value.FromString("x")) {
		t.Errorf("arg 1 = %v, want literal \"x\"", pad.Args[1])
	}
	trim, ok := pad.Expr.(*FilterCall)
	if !ok || trim.Name != "trim" || len(trim.Args) != 0 {
		t.Fatalf("inner call = %v, want trim/0 args", pad.Expr)
	}
	if _, ok := trim.Expr.(*Path); !ok {
		t.Errorf("pipeline head is %T, want *Path", trim.Expr)
	}
}

func TestParseFilterArgKinds(t *testing.T) {
	tmpl := parse(t, `{{ a | f:1,2.5,"s",other.path }}`)
	call := tmpl.Children[0].(*EmitExpr).Expr.(*FilterCall)
	if len(call.Args) != 4 {
		t.Fatalf("got %d args, want 4", len(call.Args))
	}
	if _, ok := call.Args[3].(*Path); !ok {
		t.Errorf("arg 3 is %T, want *Path", call.Args[3])
	}
}

func TestParseIfElse(t *testing.T) {
	tmpl := parse(t, "{% if x %}Y{% else %}N{% endif %}")
	cond := tmpl.Children[0].(*IfCond)
	if len(cond.TrueBody) != 1 || len(cond.FalseBody) != 1 {
		t.Fatalf("bodies = %d/%d, want 1/1", len(cond.TrueBody), len(cond.FalseBody))
	}
	if raw := cond.TrueBody[0].(*EmitRaw); raw.Raw != "Y" {
		t.Errorf("true body = %q, want Y", raw.Raw)
	}
	if raw := cond.FalseBody[0].(*EmitRaw); raw.Raw != "N" {
		t.Errorf("false body = %q, want N", raw.Raw)
	}
}

func TestParseElifDesugar(t *testing.T) {
	tmpl := parse(t, "{% if a %}1{% elif b %}2{% elif c %}3{% else %}4{% endif %}")
	outer := tmpl.Children[0].(*IfCond)
	second, ok := outer.FalseBody[0].(*IfCond)
	if !ok {
		t.Fatal("elif did not desugar to a nested if")
	}
	third, ok := second.FalseBody[0].(*IfCond)
	if !ok {
		t.Fatal("second elif did not desugar")
	}
	if len(third.FalseBody) != 1 {
		t.Fatalf("innermost false body has %d stmts, want 1", len(third.FalseBody))
	}
	if raw := third.FalseBody[0].(*EmitRaw); raw.Raw != "4" {
		t.Errorf("else body = %q, want 4", raw.Raw)
	}
}

func TestParseForLoop(t *testing.T) {
	tmpl := parse(t, "{% for v in xs %}{{ v }},{% endfor %}")
	loop := tmpl.Children[0].(*ForLoop)
	if loop.KeyVar != "" || loop.ValueVar != "v" {
		t.Errorf("vars = %q/%q, want \"\"/v", loop.KeyVar, loop.ValueVar)
	}
	if len(loop.Body) != 2 {
		t.Errorf("body has %d stmts, want 2", len(loop.Body))
	}
}

func TestParseForLoopTwoVars(t *testing.T) {
	tmpl := parse(t, "{% for k, v in m.items %}x{% endfor %}")
	loop := tmpl.Children[0].(*ForLoop)
	if loop.KeyVar != "k" || loop.ValueVar != "v" {
		t.Errorf("vars = %q/%q, want k/v", loop.KeyVar, loop.ValueVar)
	}
}

func TestParseInclude(t *testing.T) {
	tmpl := parse(t, `{% include "header.txt" %}`)
	inc := tmpl.Children[0].(*Include)
	if inc.Name != "header.txt" || inc.With != nil {
		t.Errorf("include = %q with %v, want header.txt without context", inc.Name, inc.With)
	}
}

func TestParseIncludeWith(t *testing.T) {
	tmpl := parse(t, `{% include "row.txt" with item %}`)
	inc := tmpl.Children[0].(*Include)
	if inc.Name != "row.txt" || inc.With == nil {
		t.Fatalf("include = %q with %v, want row.txt with context", inc.Name, inc.With)
	}
	if _, ok := inc.With.(*Path); !ok {
		t.Errorf("with expr is %T, want *Path", inc.With)
	}
}

func TestParseCommentDiscarded(t *testing.T) {
	tmpl := parse(t, "a{# hidden #}b")
	if len(tmpl.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(tmpl.Children))
	}
}

func TestParseNestedBlocks(t *testing.T) {
	tmpl := parse(t, "{% for v in xs %}{% if v %}{{ v }}{% endif %}{% endfor %}")
	loop := tmpl.Children[0].(*ForLoop)
	if _, ok := loop.Body[0].(*IfCond); !ok {
		t.Errorf("loop body is %T, want *IfCond", loop.Body[0])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		source string
		kind   errors.Kind
	}{
		{"{% if x %}Y", errors.UnbalancedBlock},
		{"{% for v in xs %}Y", errors.UnbalancedBlock},
		{"{% endif %}", errors.UnbalancedBlock},
		{"{% endfor %}", errors.UnbalancedBlock},
		{"{% else %}", errors.UnbalancedBlock},
		{"{% frobnicate x %}", errors.UnknownKeyword},
		{"{% for v, v in xs %}{% endfor %}", errors.DuplicateLoopVar},
		{"{{ }}", errors.UnexpectedToken},
		{"{{ a. }}", errors.UnexpectedToken},
		{"{{ a | }}", errors.UnexpectedToken},
		{"{{ a | f: }}", errors.UnexpectedToken},
		{`{% include name %}`, errors.UnexpectedToken},
		{"{{ a | f:1,2,3,4,5 }}", errors.FilterArity},
	}
	for _, test := range tests {
		_, err := Parse(test.source, syntax.Default())
		if err == nil {
			t.Errorf("Parse(%q) succeeded, want %s error", test.source, test.kind)
			continue
		}
		terr, ok := err.(*errors.Error)
		if !ok {
			t.Errorf("Parse(%q) error type %T, want *errors.Error", test.source, err)
			continue
		}
		if terr.Kind != test.kind {
			t.Errorf("Parse(%q) kind = %s, want %s", test.source, terr.Kind, test.kind)
		}
	}
}

func TestParseNestingTooDeep(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 65; i++ {
		sb.WriteString("{% if x %}")
	}
	for i := 0; i < 65; i++ {
		sb.WriteString("{% endif %}")
	}
	_, err := Parse(sb.String(), syntax.Default())
	terr, ok := err.(*errors.Error)
	if !ok || terr.Kind != errors.NestingTooDeep {
		t.Fatalf("err = %v, want nesting too deep", err)
	}
}

func TestParseFilterChainTooLong(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("{{ a")
	for i := 0; i < 33; i++ {
		sb.WriteString(" | f")
	}
	sb.WriteString(" }}")
	_, err := Parse(sb.String(), syntax.Default())
	terr, ok := err.(*errors.Error)
	if !ok || terr.Kind != errors.NestingTooDeep {
		t.Fatalf("err = %v, want nesting too deep", err)
	}
}

func TestParseNestingAtLimit(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 64; i++ {
		sb.WriteString("{% if x %}")
	}
	for i := 0; i < 64; i++ {
		sb.WriteString("{% endif %}")
	}
	if _, err := Parse(sb.String(), syntax.Default()); err != nil {
		t.Fatalf("64 nested blocks should parse, got %v", err)
	}
}
