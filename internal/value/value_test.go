package value

import "testing"

func TestScalarInterning(t *testing.T) {
	a := NewNumber(3.5)
	b := NewNumber(3.5)
	if a != b {
		t.Error("equal numbers should share identity")
	}

	s1 := NewString("hello")
	s2 := NewString("hello")
	if s1 != s2 {
		t.Error("equal strings should share identity")
	}

	if NewBoolean(true) != NewBoolean(true) {
		t.Error("equal booleans should share identity")
	}
	if NewNull() != NewNull() {
		t.Error("Null should be a singleton")
	}
}

func TestStructFixedKeys(t *testing.T) {
	s := NewStruct("Point", map[string]Value{"x": NewNumber(1), "y": NewNumber(2)}, []string{"x", "y"})

	if err := s.Set("x", NewNumber(5)); err != nil {
		t.Fatalf("setting an existing field should succeed: %v", err)
	}
	if v, _ := s.Get("x"); v.(Number).Raw() != 5 {
		t.Error("Set should update the field value")
	}

	if err := s.Set("z", NewNumber(9)); err == nil {
		t.Error("setting a missing key should be a runtime error")
	}
}

func TestListReferenceEquality(t *testing.T) {
	l1 := NewList([]Value{NewNumber(1)})
	l2 := NewList([]Value{NewNumber(1)})
	if l1.Equals(l2) {
		t.Error("distinct List values should not be equal by reference identity")
	}
	if !l1.Equals(l1) {
		t.Error("a List should equal itself")
	}
}

func TestMapInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Put(NewString("a"), NewNumber(1))
	m.Put(NewString("b"), NewNumber(2))
	m.Put(NewNumber(3), NewNumber(4))

	keys := m.Keys()
	if len(keys) != 3 || keys[0].String() != "a" || keys[1].String() != "b" {
		t.Fatalf("unexpected key order: %v", keys)
	}

	m.Put(NewString("a"), NewNumber(99))
	if m.Len() != 3 {
		t.Fatalf("re-putting an existing key should not grow the map, got len %d", m.Len())
	}
	v, _ := m.Lookup(NewString("a"))
	if v.(Number).Raw() != 99 {
		t.Error("re-putting an existing key should update its value")
	}
}

func TestContinuationDoneFlag(t *testing.T) {
	calls := 0
	c := &Continuation{
		Resume: func(arg Value) (Value, bool, error) {
			calls++
			return NewNumber(float64(calls)), calls >= 2, nil
		},
	}

	v1, _ := c.Call(NewNull())
	if v1.(Number).Raw() != 1 || c.Done {
		t.Fatalf("first resume should yield 1 and not be done")
	}
	v2, _ := c.Call(NewNull())
	if v2.(Number).Raw() != 2 || !c.Done {
		t.Fatalf("second resume should yield 2 and mark done")
	}
	v3, _ := c.Call(NewNull())
	if _, ok := v3.(Null); !ok {
		t.Fatalf("calling a done continuation should return Null, got %v", v3)
	}
	if calls != 2 {
		t.Fatalf("resume should not be invoked again once done, calls=%d", calls)
	}
}

func TestNumberBitwiseShift(t *testing.T) {
	n := NewNumber(-1)
	m, _ := n.(Number).Get("shiftRightArith")
	res, err := m.(*NativeFn).Call([]Value{NewNumber(1)})
	if err != nil {
		t.Fatal(err)
	}
	// shiftRightArith is specified as a logical shift, so -1 (all bits
	// set as uint32) >> 1 should be a large positive number, not -1.
	if res.(Number).Raw() <= 0 {
		t.Errorf("shiftRightArith should behave as a logical shift, got %v", res)
	}
}
