// Package value defines the dynamically typed data model rendered by
// templates.
//
// A Value is one of seven kinds: none, bool, integer, float, string, list
// or map. Maps preserve insertion order, which is observable through loop
// iteration. Values are constructed with the From* functions or converted
// from arbitrary Go data with FromAny.
package value

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ValueKind describes the type of a Value.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
)

func (k ValueKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a dynamically typed template value.
//
// The zero Value is none.
type Value struct {
	// one of: nil, bool, int64, float64, string, []Value, *Map
	data any
}

// None returns the none value.
func None() Value {
	return Value{}
}

// FromBool creates a bool Value.
func FromBool(b bool) Value {
	return Value{data: b}
}

// FromInt creates an integer Value.
func FromInt(i int64) Value {
	return Value{data: i}
}

// FromFloat creates a float Value.
func FromFloat(f float64) Value {
	return Value{data: f}
}

// FromString creates a string Value.
func FromString(s string) Value {
	return Value{data: s}
}

// FromSlice creates a list Value. The slice is not copied.
func FromSlice(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{data: items}
}

// FromMap creates a map Value. The map is not copied.
func FromMap(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{data: m}
}

// Kind returns the kind of the value.
func (v Value) Kind() ValueKind {
	switch v.data.(type) {
	case nil:
		return KindNone
	case bool:
		return KindBool
	case int64:
		return KindInt
	case float64:
		return KindFloat
	case string:
		return KindString
	case []Value:
		return KindList
	case *Map:
		return KindMap
	default:
		panic(fmt.Sprintf("value: invalid payload %T", v.data))
	}
}

// IsNone reports whether the value is none.
func (v Value) IsNone() bool {
	return v.data == nil
}

// AsBool returns the bool payload.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.data.(bool)
	return b, ok
}

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, bool) {
	i, ok := v.data.(int64)
	return i, ok
}

// AsFloat returns the float payload.
func (v Value) AsFloat() (float64, bool) {
	f, ok := v.data.(float64)
	return f, ok
}

// AsString returns the string payload.
func (v Value) AsString() (string, bool) {
	s, ok := v.data.(string)
	return s, ok
}

// AsList returns the list payload.
func (v Value) AsList() ([]Value, bool) {
	l, ok := v.data.([]Value)
	return l, ok
}

// AsMap returns the map payload.
func (v Value) AsMap() (*Map, bool) {
	m, ok := v.data.(*Map)
	return m, ok
}

// Truthy returns the boolean projection of the value used by conditionals.
// None, false, zero numbers and empty strings, lists and maps are false;
// everything else, including NaN, is true.
func (v Value) Truthy() bool {
	switch data := v.data.(type) {
	case nil:
		return false
	case bool:
		return data
	case int64:
		return data != 0
	case float64:
		// NaN compares unequal to zero and so is truthy; -0.0 is not.
		return data != 0
	case string:
		return data != ""
	case []Value:
		return len(data) > 0
	case *Map:
		return data.Len() > 0
	default:
		panic(fmt.Sprintf("value: invalid payload %T", v.data))
	}
}

// Equal reports structural equality. Values of different kinds are never
// equal; maps compare by key set and per-key values, ignoring insertion
// order.
func (v Value) Equal(other Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch data := v.data.(type) {
	case nil:
		return true
	case bool:
		return data == other.data.(bool)
	case int64:
		return data == other.data.(int64)
	case float64:
		return data == other.data.(float64)
	case string:
		return data == other.data.(string)
	case []Value:
		otherList := other.data.([]Value)
		if len(data) != len(otherList) {
			return false
		}
		for i := range data {
			if !data[i].Equal(otherList[i]) {
				return false
			}
		}
		return true
	case *Map:
		otherMap := other.data.(*Map)
		if data.Len() != otherMap.Len() {
			return false
		}
		for _, key := range data.Keys() {
			item, _ := data.Get(key)
			otherItem, ok := otherMap.Get(key)
			if !ok || !item.Equal(otherItem) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("value: invalid payload %T", v.data))
	}
}

// Repr returns a debug representation of the value.
func (v Value) Repr() string {
	switch data := v.data.(type) {
	case nil:
		return "none"
	case bool:
		return strconv.FormatBool(data)
	case int64:
		return strconv.FormatInt(data, 10)
	case float64:
		return strconv.FormatFloat(data, 'f', -1, 64)
	case string:
		return strconv.Quote(data)
	case []Value:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, item := range data {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(item.Repr())
		}
		sb.WriteByte(']')
		return sb.String()
	case *Map:
		var sb strings.Builder
		sb.WriteByte('{')
		for i, key := range data.Keys() {
			if i > 0 {
				sb.WriteString(", ")
			}
			item, _ := data.Get(key)
			sb.WriteString(strconv.Quote(key))
			sb.WriteString(": ")
			sb.WriteString(item.Repr())
		}
		sb.WriteByte('}')
		return sb.String()
	default:
		panic(fmt.Sprintf("value: invalid payload %T", v.data))
	}
}

// FromAny converts arbitrary Go data to a Value. Supported inputs are nil,
// booleans, integers, floats, strings, Value, *Map, []Value, slices,
// arrays and string-keyed maps of supported types. Go maps have no
// iteration order, so their keys are sorted. Unsupported types convert to
// none.
func FromAny(data any) Value {
	switch d := data.(type) {
	case nil:
		return None()
	case Value:
		return d
	case *Map:
		return FromMap(d)
	case bool:
		return FromBool(d)
	case int:
		return FromInt(int64(d))
	case int8:
		return FromInt(int64(d))
	case int16:
		return FromInt(int64(d))
	case int32:
		return FromInt(int64(d))
	case int64:
		return FromInt(d)
	case uint:
		return FromInt(int64(d))
	case uint8:
		return FromInt(int64(d))
	case uint16:
		return FromInt(int64(d))
	case uint32:
		return FromInt(int64(d))
	case uint64:
		return FromInt(int64(d))
	case float32:
		return FromFloat(float64(d))
	case float64:
		return FromFloat(d)
	case string:
		return FromString(d)
	case []Value:
		return FromSlice(d)
	case []any:
		items := make([]Value, len(d))
		for i, item := range d {
			items[i] = FromAny(item)
		}
		return FromSlice(items)
	case map[string]any:
		keys := make([]string, 0, len(d))
		for key := range d {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, key := range keys {
			m.Set(key, FromAny(d[key]))
		}
		return FromMap(m)
	case map[string]Value:
		keys := make([]string, 0, len(d))
		for key := range d {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, key := range keys {
			m.Set(key, d[key])
		}
		return FromMap(m)
	}

	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return None()
		}
		return FromAny(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := range items {
			items[i] = FromAny(rv.Index(i).Interface())
		}
		return FromSlice(items)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return None()
		}
		keys := make([]string, 0, rv.Len())
		for _, key := range rv.MapKeys() {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		m := NewMap()
		for _, key := range keys {
			m.Set(key, FromAny(rv.MapIndex(reflect.ValueOf(key)).Interface()))
		}
		return FromMap(m)
	}
	return None()
}
