package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/quilltpl/quill/syntax"
)

func TestErrorString(t *testing.T) {
	err := Newf(NotFound, "variable %q is not found in this scope", "user")
	want := `not found: variable "user" is not found in this scope`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorStringWithSpan(t *testing.T) {
	err := New(UnexpectedToken, "expected identifier").
		WithSpan(syntax.Span{StartLine: 3, EndLine: 3}).
		WithName("page.txt")
	want := "unexpected token: expected identifier (in page.txt:3)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestAnonymousName(t *testing.T) {
	err := New(NotFound, "x").WithSpan(syntax.Span{StartLine: 1, EndLine: 1})
	if !strings.Contains(err.Error(), "<anonymous>") {
		t.Errorf("Error() = %q, want anonymous display name", err.Error())
	}
}

func TestWithSetsOnlyOnce(t *testing.T) {
	first := syntax.Span{StartLine: 1, StartOffset: 1, EndLine: 1, EndOffset: 2}
	second := syntax.Span{StartLine: 9, StartOffset: 9, EndLine: 9, EndOffset: 10}
	err := New(NotFound, "x").WithSpan(first).WithSpan(second).
		WithName("inner.txt").WithName("outer.txt").
		WithSource("inner source").WithSource("outer source")
	if err.Span.StartLine != 1 {
		t.Errorf("span line = %d, want the first span kept", err.Span.StartLine)
	}
	if err.Name != "inner.txt" {
		t.Errorf("name = %q, want inner.txt", err.Name)
	}
	if err.Source != "inner source" {
		t.Errorf("source = %q, want inner source", err.Source)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause)
	if err.Kind != IO {
		t.Errorf("kind = %s, want io error", err.Kind)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped cause is not reachable via errors.Is")
	}
}

func TestPretty(t *testing.T) {
	source := "Hello {{ user }}"
	err := Newf(NotFound, "variable %q is not found in this scope", "user").
		WithSpan(syntax.Span{
			StartLine: 1, StartCol: 9, StartOffset: 9,
			EndLine: 1, EndCol: 13, EndOffset: 13,
		}).
		WithName("hello.txt").
		WithSource(source)
	want := strings.Join([]string{
		"not found",
		"  --> hello.txt:1:10",
		"   |",
		" 1 | Hello {{ user }}",
		"   |          ^^^^",
		"   |",
		`   = reason: variable "user" is not found in this scope`,
	}, "\n")
	if got := err.Pretty(); got != want {
		t.Errorf("Pretty() =\n%s\nwant\n%s", got, want)
	}
}

func TestPrettySecondLine(t *testing.T) {
	source := "line one\n{{ bad }}"
	err := New(NotFound, "nope").
		WithSpan(syntax.Span{
			StartLine: 2, StartCol: 3, StartOffset: 12,
			EndLine: 2, EndCol: 6, EndOffset: 15,
		}).
		WithSource(source)
	pretty := err.Pretty()
	if !strings.Contains(pretty, " 2 | {{ bad }}") {
		t.Errorf("pretty output does not show line 2:\n%s", pretty)
	}
	if !strings.Contains(pretty, "^^^") {
		t.Errorf("pretty output has no caret underline:\n%s", pretty)
	}
}

func TestPrettyWithoutSpanFallsBack(t *testing.T) {
	err := New(TemplateNotFound, `template "x" does not exist`)
	if got := err.Pretty(); got != err.Error() {
		t.Errorf("Pretty() = %q, want plain %q", got, err.Error())
	}
}

func TestPlainVerb(t *testing.T) {
	err := New(NotFound, "x").
		WithSpan(syntax.Span{StartLine: 1, EndLine: 1}).
		WithSource("{{ y }}")
	if got := fmt.Sprintf("%v", err); got != err.Error() {
		t.Errorf("%%v = %q, want %q", got, err.Error())
	}
}

func TestKindStrings(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{UnexpectedToken, "unexpected token"},
		{UnclosedDelimiter, "unclosed delimiter"},
		{NestingTooDeep, "nesting too deep"},
		{FilterNotFound, "filter not found"},
		{MaxIncludeDepth, "max include depth"},
		{IO, "io error"},
	}
	for _, test := range tests {
		if got := test.kind.String(); got != test.want {
			t.Errorf("Kind(%d) = %q, want %q", test.kind, got, test.want)
		}
	}
}
