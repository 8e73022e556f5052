package value

import "fmt"

// List is an ordered, mutable sequence of Value.
type List struct {
	Elems []Value
}

// NewList wraps elems as a List value. The slice is taken by reference;
// callers that need an independent copy should clone it first.
func NewList(elems []Value) *List {
	return &List{Elems: elems}
}

func (l *List) Type() string { return "List" }
func (l *List) String() string {
	s := "["
	for i, e := range l.Elems {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + "]"
}
func (l *List) Equals(other Value) bool {
	return l == other // reference identity
}

func (l *List) Get(name string) (Value, bool) {
	switch name {
	case "len":
		return boundMethod(l, func(self Value, _ []Value) (Value, error) {
			return NewNumber(float64(len(self.(*List).Elems))), nil
		}), true
	case "get":
		return boundMethod(l, listGet), true
	case "set":
		return boundMethod(l, listSet), true
	case "push":
		return boundMethod(l, listPush), true
	case "pop":
		return boundMethod(l, listPop), true
	case "iter":
		return boundMethod(l, func(self Value, _ []Value) (Value, error) {
			return listIter(self.(*List)), nil
		}), true
	case "sorted":
		return boundMethod(l, listSorted), true
	case "join":
		return boundMethod(l, listJoin), true
	case "equals":
		return boundMethod(l, func(self Value, args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("equals expects 1 argument")
			}
			return NewBoolean(self.Equals(args[0])), nil
		}), true
	}
	return nil, false
}

func (l *List) Set(name string, _ Value) error {
	return fmt.Errorf("cannot set %q on List; use push/set(index, value)", name)
}

func listIndex(args []Value, length int) (int, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("expects an index argument")
	}
	n, ok := args[0].(Number)
	if !ok {
		return 0, fmt.Errorf("index must be a Number")
	}
	idx := int(n.v)
	if idx < 0 || idx >= length {
		return 0, fmt.Errorf("index %d out of range [0, %d)", idx, length)
	}
	return idx, nil
}

func listGet(self Value, args []Value) (Value, error) {
	l := self.(*List)
	idx, err := listIndex(args, len(l.Elems))
	if err != nil {
		return nil, err
	}
	return l.Elems[idx], nil
}

func listSet(self Value, args []Value) (Value, error) {
	l := self.(*List)
	if len(args) != 2 {
		return nil, fmt.Errorf("set expects 2 arguments")
	}
	idx, err := listIndex(args[:1], len(l.Elems))
	if err != nil {
		return nil, err
	}
	l.Elems[idx] = args[1]
	return NewNull(), nil
}

func listPush(self Value, args []Value) (Value, error) {
	l := self.(*List)
	l.Elems = append(l.Elems, args...)
	return NewNumber(float64(len(l.Elems))), nil
}

func listPop(self Value, _ []Value) (Value, error) {
	l := self.(*List)
	if len(l.Elems) == 0 {
		return NewNull(), nil
	}
	last := l.Elems[len(l.Elems)-1]
	l.Elems = l.Elems[:len(l.Elems)-1]
	return last, nil
}

func listIter(l *List) *NativeFn {
	i := 0
	return &NativeFn{
		Name: "listIter",
		Fn: func(_ []Value) (Value, error) {
			if i >= len(l.Elems) {
				return NewNull(), nil
			}
			v := l.Elems[i]
			i++
			return v, nil
		},
	}
}

func listSorted(self Value, _ []Value) (Value, error) {
	l := self.(*List)
	cp := make([]Value, len(l.Elems))
	copy(cp, l.Elems)
	Sort(cp)
	return NewList(cp), nil
}

func listJoin(self Value, args []Value) (Value, error) {
	l := self.(*List)
	sep := ""
	if len(args) == 1 {
		s, ok := args[0].(String)
		if !ok {
			return nil, fmt.Errorf("join separator must be a String")
		}
		sep = s.v
	}
	out := ""
	for i, e := range l.Elems {
		if i > 0 {
			out += sep
		}
		out += e.String()
	}
	return NewString(out), nil
}
