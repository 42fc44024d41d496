package quill

import (
	"strings"
	"unicode/utf8"

	"github.com/quilltpl/quill/internal/errors"
	"github.com/quilltpl/quill/value"
)

// FilterArgs wraps the argument list handed to a filter with typed
// accessors. Each accessor fails with a wrong-filter-type error when
// the argument has a different kind, and with a wrong-filter-arity
// error when it is absent.
type FilterArgs []value.Value

func (a FilterArgs) at(i int) (value.Value, error) {
	if i >= len(a) {
		return value.Value{}, errors.Newf(errors.FilterArity, "argument %d is missing", i)
	}
	return a[i], nil
}

// Int returns argument i as an integer.
func (a FilterArgs) Int(i int) (int64, error) {
	v, err := a.at(i)
	if err != nil {
		return 0, err
	}
	n, ok := v.AsInt()
	if !ok {
		return 0, errors.Newf(errors.FilterType, "argument %d is a %s, expected an integer", i, v.Kind())
	}
	return n, nil
}

// Float returns argument i as a float. Integer arguments convert.
func (a FilterArgs) Float(i int) (float64, error) {
	v, err := a.at(i)
	if err != nil {
		return 0, err
	}
	if f, ok := v.AsFloat(); ok {
		return f, nil
	}
	if n, ok := v.AsInt(); ok {
		return float64(n), nil
	}
	return 0, errors.Newf(errors.FilterType, "argument %d is a %s, expected a float", i, v.Kind())
}

// String returns argument i as a string.
func (a FilterArgs) String(i int) (string, error) {
	v, err := a.at(i)
	if err != nil {
		return "", err
	}
	s, ok := v.AsString()
	if !ok {
		return "", errors.Newf(errors.FilterType, "argument %d is a %s, expected a string", i, v.Kind())
	}
	return s, nil
}

// Bool returns argument i as a bool.
func (a FilterArgs) Bool(i int) (bool, error) {
	v, err := a.at(i)
	if err != nil {
		return false, err
	}
	b, ok := v.AsBool()
	if !ok {
		return false, errors.Newf(errors.FilterType, "argument %d is a %s, expected a bool", i, v.Kind())
	}
	return b, nil
}

// List returns argument i as a list.
func (a FilterArgs) List(i int) ([]value.Value, error) {
	v, err := a.at(i)
	if err != nil {
		return nil, err
	}
	l, ok := v.AsList()
	if !ok {
		return nil, errors.Newf(errors.FilterType, "argument %d is a %s, expected a list", i, v.Kind())
	}
	return l, nil
}

// Map returns argument i as a map.
func (a FilterArgs) Map(i int) (*value.Map, error) {
	v, err := a.at(i)
	if err != nil {
		return nil, err
	}
	m, ok := v.AsMap()
	if !ok {
		return nil, errors.Newf(errors.FilterType, "argument %d is a %s, expected a map", i, v.Kind())
	}
	return m, nil
}

// Built-in filter implementations registered by New.

func noArgs(name string, args []value.Value) error {
	if len(args) != 0 {
		return errors.Newf(errors.FilterArity, "%s takes no arguments", name)
	}
	return nil
}

// filterUpper implements the built-in `upper` filter.
func filterUpper(val value.Value, args []value.Value) (value.Value, error) {
	if err := noArgs("upper", args); err != nil {
		return value.Value{}, err
	}
	if s, ok := val.AsString(); ok {
		return value.FromString(strings.ToUpper(s)), nil
	}
	return val, nil
}

// filterLower implements the built-in `lower` filter.
func filterLower(val value.Value, args []value.Value) (value.Value, error) {
	if err := noArgs("lower", args); err != nil {
		return value.Value{}, err
	}
	if s, ok := val.AsString(); ok {
		return value.FromString(strings.ToLower(s)), nil
	}
	return val, nil
}

// filterTrim implements the built-in `trim` filter.
func filterTrim(val value.Value, args []value.Value) (value.Value, error) {
	if err := noArgs("trim", args); err != nil {
		return value.Value{}, err
	}
	if s, ok := val.AsString(); ok {
		return value.FromString(strings.TrimSpace(s)), nil
	}
	return val, nil
}

// filterFirst implements the built-in `first` filter. For lists it
// returns the first item, for strings the first character and for maps
// the first key in insertion order. Empty inputs yield none.
func filterFirst(val value.Value, args []value.Value) (value.Value, error) {
	if err := noArgs("first", args); err != nil {
		return value.Value{}, err
	}
	switch val.Kind() {
	case value.KindList:
		items, _ := val.AsList()
		if len(items) == 0 {
			return value.None(), nil
		}
		return items[0], nil
	case value.KindString:
		s, _ := val.AsString()
		if s == "" {
			return value.None(), nil
		}
		r, _ := utf8.DecodeRuneInString(s)
		return value.FromString(string(r)), nil
	case value.KindMap:
		m, _ := val.AsMap()
		if m.Len() == 0 {
			return value.None(), nil
		}
		return value.FromString(m.Keys()[0]), nil
	default:
		return value.Value{}, errors.Newf(errors.FilterType, "cannot take the first of a %s", val.Kind())
	}
}

// filterLast implements the built-in `last` filter.
func filterLast(val value.Value, args []value.Value) (value.Value, error) {
	if err := noArgs("last", args); err != nil {
		return value.Value{}, err
	}
	switch val.Kind() {
	case value.KindList:
		items, _ := val.AsList()
		if len(items) == 0 {
			return value.None(), nil
		}
		return items[len(items)-1], nil
	case value.KindString:
		s, _ := val.AsString()
		if s == "" {
			return value.None(), nil
		}
		r, _ := utf8.DecodeLastRuneInString(s)
		return value.FromString(string(r)), nil
	case value.KindMap:
		m, _ := val.AsMap()
		if m.Len() == 0 {
			return value.None(), nil
		}
		return value.FromString(m.Keys()[m.Len()-1]), nil
	default:
		return value.Value{}, errors.Newf(errors.FilterType, "cannot take the last of a %s", val.Kind())
	}
}

// filterLen implements the built-in `len` filter. Strings count
// characters, not bytes.
func filterLen(val value.Value, args []value.Value) (value.Value, error) {
	if err := noArgs("len", args); err != nil {
		return value.Value{}, err
	}
	switch val.Kind() {
	case value.KindList:
		items, _ := val.AsList()
		return value.FromInt(int64(len(items))), nil
	case value.KindString:
		s, _ := val.AsString()
		return value.FromInt(int64(utf8.RuneCountInString(s))), nil
	case value.KindMap:
		m, _ := val.AsMap()
		return value.FromInt(int64(m.Len())), nil
	default:
		return value.Value{}, errors.Newf(errors.FilterType, "a %s has no length", val.Kind())
	}
}
