package syntax

import "testing"

func TestDefaultDelimiters(t *testing.T) {
	s := Default()
	if s.BeginExpr != "{{" || s.EndExpr != "}}" {
		t.Errorf("expr delimiters = %q %q", s.BeginExpr, s.EndExpr)
	}
	if s.BeginBlock != "{%" || s.EndBlock != "%}" {
		t.Errorf("block delimiters = %q %q", s.BeginBlock, s.EndBlock)
	}
	if s.BeginComment != "{#" || s.EndComment != "#}" {
		t.Errorf("comment delimiters = %q %q", s.BeginComment, s.EndComment)
	}
}

func TestBuilderOverrides(t *testing.T) {
	s := New().Expr("<?", "?>").Comment("/*", "*/")
	if s.BeginExpr != "<?" || s.EndExpr != "?>" {
		t.Errorf("expr delimiters = %q %q", s.BeginExpr, s.EndExpr)
	}
	if s.BeginBlock != "{%" {
		t.Errorf("block delimiter changed to %q", s.BeginBlock)
	}
	if s.BeginComment != "/*" || s.EndComment != "*/" {
		t.Errorf("comment delimiters = %q %q", s.BeginComment, s.EndComment)
	}
}

func TestBuilderRejectsEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("empty delimiter did not panic")
		}
	}()
	New().Expr("", "}}")
}

func TestEnd(t *testing.T) {
	s := Default()
	tests := []struct {
		kind Kind
		want string
	}{
		{KindExpr, "}}"},
		{KindBlock, "%}"},
		{KindComment, "#}"},
	}
	for _, test := range tests {
		if got := s.End(test.kind); got != test.want {
			t.Errorf("End(%s) = %q, want %q", test.kind, got, test.want)
		}
	}
}

func TestBeginPatternsLongestFirst(t *testing.T) {
	s := New().Expr("{{{", "}}}")
	patterns := s.BeginPatterns()
	if len(patterns) != 3 {
		t.Fatalf("got %d patterns, want 3", len(patterns))
	}
	if patterns[0].Text != "{{{" || patterns[0].Kind != KindExpr {
		t.Errorf("first pattern = %+v, want the longest", patterns[0])
	}
	for i := 1; i < len(patterns); i++ {
		if len(patterns[i].Text) > len(patterns[i-1].Text) {
			t.Errorf("patterns not sorted by decreasing length: %v", patterns)
		}
	}
}

func TestSpanText(t *testing.T) {
	source := "abc{{ x }}"
	span := Span{StartOffset: 6, EndOffset: 7}
	if got := span.Text(source); got != "x" {
		t.Errorf("Text = %q, want x", got)
	}
	clipped := Span{StartOffset: 6, EndOffset: 99}
	if got := clipped.Text(source); got != "x }}" {
		t.Errorf("clipped Text = %q, want %q", got, "x }}")
	}
}

func TestSpanJoin(t *testing.T) {
	a := Span{StartLine: 1, StartCol: 2, StartOffset: 2, EndLine: 1, EndCol: 5, EndOffset: 5}
	b := Span{StartLine: 2, StartCol: 0, StartOffset: 8, EndLine: 2, EndCol: 4, EndOffset: 12}
	joined := a.Join(b)
	if joined.StartOffset != 2 || joined.EndOffset != 12 {
		t.Errorf("joined offsets = %d..%d, want 2..12", joined.StartOffset, joined.EndOffset)
	}
	if joined.EndLine != 2 || joined.EndCol != 4 {
		t.Errorf("joined end = %d:%d, want 2:4", joined.EndLine, joined.EndCol)
	}
	if got := b.Join(a); got != joined {
		t.Errorf("Join is not symmetric: %+v vs %+v", got, joined)
	}
}

func TestSpanLen(t *testing.T) {
	if got := (Span{StartOffset: 3, EndOffset: 7}).Len(); got != 4 {
		t.Errorf("Len = %d, want 4", got)
	}
	if got := (Span{StartOffset: 7, EndOffset: 3}).Len(); got != 0 {
		t.Errorf("inverted Len = %d, want 0", got)
	}
}
