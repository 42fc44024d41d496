package value

import "fmt"

// Walker is implemented by foreign serialization trees that can describe
// themselves to a Builder. It is the bridge for data sources such as
// decoded JSON or YAML documents that expose ordered maps, lists and
// scalars but are not already Values.
type Walker interface {
	Walk(b *Builder) error
}

// FromWalker converts a foreign tree to a Value by walking it.
func FromWalker(w Walker) (Value, error) {
	b := &Builder{}
	if err := w.Walk(b); err != nil {
		return None(), err
	}
	return b.Value()
}

// Builder assembles a Value from a stream of scalar, list and map events.
// Misuse, such as a map value without a preceding Key, returns an error
// from the offending call and poisons the builder.
type Builder struct {
	stack  []*builderFrame
	result Value
	done   bool
	err    error
}

type builderFrame struct {
	// exactly one of list or m is active
	list    []Value
	m       *Map
	isMap   bool
	key     string
	pending bool
}

// None records a none value.
func (b *Builder) None() error {
	return b.push(None())
}

// Bool records a bool value.
func (b *Builder) Bool(v bool) error {
	return b.push(FromBool(v))
}

// Int records an integer value.
func (b *Builder) Int(v int64) error {
	return b.push(FromInt(v))
}

// Float records a float value.
func (b *Builder) Float(v float64) error {
	return b.push(FromFloat(v))
}

// String records a string value.
func (b *Builder) String(v string) error {
	return b.push(FromString(v))
}

// BeginList opens a list. Every value recorded until the matching EndList
// becomes an element.
func (b *Builder) BeginList() error {
	if err := b.check(); err != nil {
		return err
	}
	b.stack = append(b.stack, &builderFrame{list: []Value{}})
	return nil
}

// EndList closes the innermost open list.
func (b *Builder) EndList() error {
	if err := b.check(); err != nil {
		return err
	}
	frame := b.top()
	if frame == nil || frame.isMap {
		return b.fail("EndList without open list")
	}
	b.stack = b.stack[:len(b.stack)-1]
	return b.push(FromSlice(frame.list))
}

// BeginMap opens a map. Entries are recorded as Key followed by one value.
func (b *Builder) BeginMap() error {
	if err := b.check(); err != nil {
		return err
	}
	b.stack = append(b.stack, &builderFrame{m: NewMap(), isMap: true})
	return nil
}

// Key records the key of the next map entry.
func (b *Builder) Key(key string) error {
	if err := b.check(); err != nil {
		return err
	}
	frame := b.top()
	if frame == nil || !frame.isMap {
		return b.fail("Key without open map")
	}
	if frame.pending {
		return b.fail("Key while a map value is pending")
	}
	frame.key = key
	frame.pending = true
	return nil
}

// EndMap closes the innermost open map.
func (b *Builder) EndMap() error {
	if err := b.check(); err != nil {
		return err
	}
	frame := b.top()
	if frame == nil || !frame.isMap {
		return b.fail("EndMap without open map")
	}
	if frame.pending {
		return b.fail("EndMap while a map value is pending")
	}
	b.stack = b.stack[:len(b.stack)-1]
	return b.push(FromMap(frame.m))
}

// Value returns the assembled Value. It fails if the walk recorded no
// value, left a container open, or misused the builder.
func (b *Builder) Value() (Value, error) {
	if b.err != nil {
		return None(), b.err
	}
	if len(b.stack) > 0 {
		return None(), fmt.Errorf("value: walk left %d container(s) open", len(b.stack))
	}
	if !b.done {
		return None(), fmt.Errorf("value: walk recorded no value")
	}
	return b.result, nil
}

func (b *Builder) push(v Value) error {
	if err := b.check(); err != nil {
		return err
	}
	frame := b.top()
	if frame == nil {
		if b.done {
			return b.fail("multiple root values")
		}
		b.result = v
		b.done = true
		return nil
	}
	if frame.isMap {
		if !frame.pending {
			return b.fail("map value without Key")
		}
		frame.m.Set(frame.key, v)
		frame.pending = false
		return nil
	}
	frame.list = append(frame.list, v)
	return nil
}

func (b *Builder) top() *builderFrame {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *Builder) check() error {
	return b.err
}

func (b *Builder) fail(msg string) error {
	b.err = fmt.Errorf("value: %s", msg)
	return b.err
}
