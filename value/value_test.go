package value

import (
	"testing"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		val  Value
		kind ValueKind
	}{
		{None(), KindNone},
		{Value{}, KindNone},
		{FromBool(true), KindBool},
		{FromInt(42), KindInt},
		{FromFloat(1.5), KindFloat},
		{FromString("x"), KindString},
		{FromSlice(nil), KindList},
		{FromMap(nil), KindMap},
	}
	for _, test := range tests {
		if got := test.val.Kind(); got != test.kind {
			t.Errorf("%s Kind() = %s, want %s", test.val.Repr(), got, test.kind)
		}
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		val  Value
		want bool
	}{
		{None(), false},
		{FromBool(false), false},
		{FromBool(true), true},
		{FromInt(0), false},
		{FromInt(-1), true},
		{FromFloat(0), false},
		{FromFloat(0.25), true},
		{FromString(""), false},
		{FromString("0"), true},
		{FromSlice(nil), false},
		{FromSlice([]Value{FromInt(1)}), true},
		{FromMap(NewMap()), false},
		{FromMap(MapOf("a", 1)), true},
	}
	for _, test := range tests {
		if got := test.val.Truthy(); got != test.want {
			t.Errorf("%s Truthy() = %v, want %v", test.val.Repr(), got, test.want)
		}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{None(), None(), true},
		{FromInt(1), FromInt(1), true},
		{FromInt(1), FromFloat(1), false},
		{FromString("a"), FromString("a"), true},
		{FromString("a"), FromString("b"), false},
		{FromSlice([]Value{FromInt(1), FromInt(2)}), FromSlice([]Value{FromInt(1), FromInt(2)}), true},
		{FromSlice([]Value{FromInt(1)}), FromSlice([]Value{FromInt(1), FromInt(2)}), false},
		{FromMap(MapOf("a", 1, "b", 2)), FromMap(MapOf("b", 2, "a", 1)), true},
		{FromMap(MapOf("a", 1)), FromMap(MapOf("a", 2)), false},
	}
	for _, test := range tests {
		if got := test.a.Equal(test.b); got != test.want {
			t.Errorf("%s Equal %s = %v, want %v", test.a.Repr(), test.b.Repr(), got, test.want)
		}
	}
}

func TestMapInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Set("z", FromInt(1))
	m.Set("a", FromInt(2))
	m.Set("m", FromInt(3))
	want := []string{"z", "a", "m"}
	keys := m.Keys()
	if len(keys) != len(want) {
		t.Fatalf("got %d keys, want %d", len(keys), len(want))
	}
	for i, key := range keys {
		if key != want[i] {
			t.Errorf("key %d = %q, want %q", i, key, want[i])
		}
	}
}

func TestMapUpdateKeepsPosition(t *testing.T) {
	m := NewMap()
	m.Set("a", FromInt(1))
	m.Set("b", FromInt(2))
	m.Set("a", FromInt(3))
	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	if m.Keys()[0] != "a" {
		t.Errorf("first key = %q, want a", m.Keys()[0])
	}
	if v, _ := m.Get("a"); !v.Equal(FromInt(3)) {
		t.Errorf("a = %s, want 3", v.Repr())
	}
}

func TestFromAnyScalars(t *testing.T) {
	tests := []struct {
		in   any
		want Value
	}{
		{nil, None()},
		{true, FromBool(true)},
		{7, FromInt(7)},
		{int32(7), FromInt(7)},
		{uint16(7), FromInt(7)},
		{2.5, FromFloat(2.5)},
		{float32(0.5), FromFloat(0.5)},
		{"s", FromString("s")},
		{FromInt(9), FromInt(9)},
	}
	for _, test := range tests {
		if got := FromAny(test.in); !got.Equal(test.want) {
			t.Errorf("FromAny(%v) = %s, want %s", test.in, got.Repr(), test.want.Repr())
		}
	}
}

func TestFromAnySortsGoMapKeys(t *testing.T) {
	v := FromAny(map[string]any{"c": 3, "a": 1, "b": 2})
	m, ok := v.AsMap()
	if !ok {
		t.Fatalf("FromAny map = %s, want a map", v.Repr())
	}
	want := []string{"a", "b", "c"}
	for i, key := range m.Keys() {
		if key != want[i] {
			t.Errorf("key %d = %q, want %q", i, key, want[i])
		}
	}
}

func TestFromAnyNested(t *testing.T) {
	v := FromAny(map[string]any{
		"user": map[string]any{"name": "John Smith"},
		"tags": []any{"a", 1},
	})
	m, _ := v.AsMap()
	user, ok := m.Get("user")
	if !ok {
		t.Fatal("user missing")
	}
	um, _ := user.AsMap()
	if name, _ := um.Get("name"); !name.Equal(FromString("John Smith")) {
		t.Errorf("name = %s", name.Repr())
	}
	tags, _ := m.Get("tags")
	list, ok := tags.AsList()
	if !ok || len(list) != 2 {
		t.Fatalf("tags = %s, want a two-item list", tags.Repr())
	}
	if !list[1].Equal(FromInt(1)) {
		t.Errorf("tags[1] = %s, want 1", list[1].Repr())
	}
}

func TestFromAnyUnsupported(t *testing.T) {
	type opaque struct{ x int }
	if got := FromAny(opaque{x: 1}); !got.IsNone() {
		t.Errorf("FromAny(struct) = %s, want none", got.Repr())
	}
	if got := FromAny(map[int]any{1: "a"}); !got.IsNone() {
		t.Errorf("FromAny(int-keyed map) = %s, want none", got.Repr())
	}
}

func TestRepr(t *testing.T) {
	tests := []struct {
		val  Value
		want string
	}{
		{None(), "none"},
		{FromBool(true), "true"},
		{FromInt(-3), "-3"},
		{FromFloat(2.5), "2.5"},
		{FromString("a\"b"), `"a\"b"`},
		{FromSlice([]Value{FromInt(1), FromString("x")}), `[1, "x"]`},
		{FromMap(MapOf("a", 1)), `{"a": 1}`},
	}
	for _, test := range tests {
		if got := test.val.Repr(); got != test.want {
			t.Errorf("Repr = %q, want %q", got, test.want)
		}
	}
}
