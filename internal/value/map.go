package value

import "fmt"

// mapEntry is one insertion-ordered key/value pair of a Map.
type mapEntry struct {
	key Value
	val Value
}

// Map is an insertion-ordered Value→Value mapping. Keys are
// compared with Value.Equals, which is identity-based for interned
// scalars and reference-based otherwise, matching 's equality
// rules.
type Map struct {
	entries []mapEntry
}

// NewMap constructs an empty Map.
func NewMap() *Map {
	return &Map{}
}

func (m *Map) Type() string { return "Map" }
func (m *Map) String() string {
	s := "{"
	for i, e := range m.entries {
		if i > 0 {
			s += ", "
		}
		s += e.key.String() + ": " + e.val.String()
	}
	return s + "}"
}
func (m *Map) Equals(other Value) bool {
	return m == other
}

func (m *Map) indexOf(key Value) int {
	for i, e := range m.entries {
		if e.key.Equals(key) {
			return i
		}
	}
	return -1
}

// Put inserts or updates key→val, preserving insertion order of first
// appearance.
func (m *Map) Put(key, val Value) {
	if i := m.indexOf(key); i >= 0 {
		m.entries[i].val = val
		return
	}
	m.entries = append(m.entries, mapEntry{key, val})
}

// Lookup returns the value for key, if present.
func (m *Map) Lookup(key Value) (Value, bool) {
	if i := m.indexOf(key); i >= 0 {
		return m.entries[i].val, true
	}
	return nil, false
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.entries) }

// Keys returns the keys in insertion order.
func (m *Map) Keys() []Value {
	keys := make([]Value, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.key
	}
	return keys
}

func (m *Map) Get(name string) (Value, bool) {
	switch name {
	case "len":
		return boundMethod(m, func(self Value, _ []Value) (Value, error) {
			return NewNumber(float64(self.(*Map).Len())), nil
		}), true
	case "get":
		return boundMethod(m, mapGet), true
	case "set":
		return boundMethod(m, mapSet), true
	case "has":
		return boundMethod(m, mapHas), true
	case "keys":
		return boundMethod(m, func(self Value, _ []Value) (Value, error) {
			return NewList(self.(*Map).Keys()), nil
		}), true
	case "iter":
		return boundMethod(m, func(self Value, _ []Value) (Value, error) {
			return mapIter(self.(*Map)), nil
		}), true
	case "equals":
		return boundMethod(m, func(self Value, args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("equals expects 1 argument")
			}
			return NewBoolean(self.Equals(args[0])), nil
		}), true
	}
	return nil, false
}

func (*Map) Set(name string, _ Value) error {
	return fmt.Errorf("cannot set %q on Map; use set(key, value)", name)
}

func mapGet(self Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("get expects 1 argument")
	}
	v, ok := self.(*Map).Lookup(args[0])
	if !ok {
		return NewNull(), nil
	}
	return v, nil
}

func mapSet(self Value, args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("set expects 2 arguments")
	}
	self.(*Map).Put(args[0], args[1])
	return NewNull(), nil
}

func mapHas(self Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("has expects 1 argument")
	}
	_, ok := self.(*Map).Lookup(args[0])
	return NewBoolean(ok), nil
}

func mapIter(m *Map) *NativeFn {
	i := 0
	return &NativeFn{
		Name: "mapIter",
		Fn: func(_ []Value) (Value, error) {
			if i >= len(m.entries) {
				return NewNull(), nil
			}
			e := m.entries[i]
			i++
			return NewList([]Value{e.key, e.val}), nil
		},
	}
}
