// Package value implements the Ursa runtime value model: a tagged sum
// of variants with interned immutable scalars, abstract-object
// get/set/iter dispatch, and host round-tripping.
//
// The Number/String interning tables are package-level maps, not fields
// on runtime.Runtime, unlike the globals Struct and id counter that
// package explicitly avoids holding as statics. That's deliberate: the
// cache is content-addressed (keyed by the scalar's own value) and
// read-mostly, so sharing one interned Number{3} across independently
// constructed Runtimes is harmless, where sharing a globals Struct or id
// counter across them would leak state between unrelated program runs.
package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is the common interface implemented by every runtime value. It
// intentionally avoids a bare interface{} payload so that dispatch stays
// type-safe.
type Value interface {
	// Type returns the variant's tag (e.g. "Number", "List").
	Type() string
	// String renders the value for printing/debugging.
	String() string
	// Equals implements identity-or-interned-identity comparison.
	Equals(other Value) bool
}

// Object is implemented by every abstract-object variant: Struct, List,
// Map, String, Number, Boolean, Null, NativeObject. It exposes member
// access by name, including callable methods (len, get, set, push, ...).
type Object interface {
	Value
	// Get looks up a member by name. Data members and bound methods are
	// both returned this way; ok is false for a missing member.
	Get(name string) (Value, bool)
	// Set assigns a data member by name. Implementations that have no
	// mutable members (scalars) return an error unconditionally.
	Set(name string, v Value) error
}

// Iterable describes a variant with an Iter method whose returned NativeFn
// produces the next element on each call, or Null when exhausted. No
// variant in this package implements it; List, Map and String expose
// iteration through their `iter` member instead.
type Iterable interface {
	Iter() *NativeFn
}

// ---------------------------------------------------------------------
// Null
// ---------------------------------------------------------------------

// Null is the sole Null value; construction always yields the interned
// singleton (see NewNull).
type Null struct{}

func (Null) Type() string   { return "Null" }
func (Null) String() string { return "null" }
func (Null) Equals(other Value) bool {
	_, ok := other.(Null)
	return ok
}

var nullValue = Null{}

// NewNull returns the interned Null value.
func NewNull() Value { return nullValue }

func (n Null) Get(name string) (Value, bool) {
	switch name {
	case "equals":
		return boundMethod(n, nullEquals), true
	}
	return nil, false
}

func (Null) Set(name string, _ Value) error {
	return fmt.Errorf("cannot set %q on Null", name)
}

func nullEquals(self Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("equals expects 1 argument, got %d", len(args))
	}
	return NewBoolean(self.Equals(args[0])), nil
}

// ---------------------------------------------------------------------
// Boolean
// ---------------------------------------------------------------------

// Boolean is a boolean value; scalars are interned, so two
// Booleans constructed with the same raw bool share identity.
type Boolean struct {
	v bool
}

func (b Boolean) Type() string { return "Boolean" }
func (b Boolean) String() string {
	if b.v {
		return "true"
	}
	return "false"
}
func (b Boolean) Equals(other Value) bool {
	ob, ok := other.(Boolean)
	return ok && ob.v == b.v
}

// Raw returns the underlying Go bool.
func (b Boolean) Raw() bool { return b.v }

var (
	trueValue  = Boolean{true}
	falseValue = Boolean{false}
)

// NewBoolean returns the interned Boolean for v.
func NewBoolean(v bool) Value {
	if v {
		return trueValue
	}
	return falseValue
}

func (b Boolean) Get(name string) (Value, bool) {
	switch name {
	case "equals":
		return boundMethod(b, boolEquals), true
	case "toString":
		return boundMethod(b, func(self Value, _ []Value) (Value, error) {
			return NewString(self.String()), nil
		}), true
	}
	return nil, false
}

func (Boolean) Set(name string, _ Value) error {
	return fmt.Errorf("cannot set %q on Boolean", name)
}

func boolEquals(self Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("equals expects 1 argument, got %d", len(args))
	}
	return NewBoolean(self.Equals(args[0])), nil
}

// ---------------------------------------------------------------------
// Number
// ---------------------------------------------------------------------

// Number is an IEEE-754 double value, interned by float64 equality (so 0
// and -0 share one entry, and NaN is never found again).
type Number struct {
	v float64
}

func (n Number) Type() string { return "Number" }
func (n Number) String() string {
	return strconv.FormatFloat(n.v, 'g', -1, 64)
}
func (n Number) Equals(other Value) bool {
	on, ok := other.(Number)
	return ok && on.v == n.v
}

// Raw returns the underlying float64.
func (n Number) Raw() float64 { return n.v }

var numberInterning = map[float64]Number{}

// NewNumber returns the interned Number for v.
func NewNumber(v float64) Value {
	if n, ok := numberInterning[v]; ok {
		return n
	}
	n := Number{v}
	numberInterning[v] = n
	return n
}

func (n Number) Get(name string) (Value, bool) {
	switch name {
	case "add":
		return boundMethod(n, numBinOp(func(a, b float64) float64 { return a + b })), true
	case "sub":
		return boundMethod(n, numBinOp(func(a, b float64) float64 { return a - b })), true
	case "mul":
		return boundMethod(n, numBinOp(func(a, b float64) float64 { return a * b })), true
	case "div":
		return boundMethod(n, numBinOp(func(a, b float64) float64 { return a / b })), true
	case "mod":
		return boundMethod(n, numBinOp(func(a, b float64) float64 {
			ai, bi := int64(a), int64(b)
			if bi == 0 {
				return 0
			}
			return float64(ai % bi)
		})), true
	case "equals":
		return boundMethod(n, numEquals), true
	case "lt":
		return boundMethod(n, numCompare(func(a, b float64) bool { return a < b })), true
	case "lte":
		return boundMethod(n, numCompare(func(a, b float64) bool { return a <= b })), true
	case "gt":
		return boundMethod(n, numCompare(func(a, b float64) bool { return a > b })), true
	case "gte":
		return boundMethod(n, numCompare(func(a, b float64) bool { return a >= b })), true
	case "and":
		return boundMethod(n, numBitOp(func(a, b int32) int32 { return a & b })), true
	case "or":
		return boundMethod(n, numBitOp(func(a, b int32) int32 { return a | b })), true
	case "xor":
		return boundMethod(n, numBitOp(func(a, b int32) int32 { return a ^ b })), true
	case "shiftLeft":
		return boundMethod(n, numShift(func(a int32, b uint32) int32 { return a << (b & 31) })), true
	case "shiftRightArith":
		// shiftRightArith corresponds to a logical right
		// shift (matching a common modern dynamic-language runtime), not
		// a sign-extending arithmetic shift; the name is inherited as-is.
		return boundMethod(n, func(self Value, args []Value) (Value, error) {
			a, b, err := numOperands(self, args)
			if err != nil {
				return nil, err
			}
			return NewNumber(float64(uint32(int32(a)) >> (uint32(int32(b)) & 31))), nil
		}), true
	case "not":
		return boundMethod(n, func(self Value, _ []Value) (Value, error) {
			return NewNumber(float64(^int32(n.v))), nil
		}), true
	case "toString":
		return boundMethod(n, func(self Value, _ []Value) (Value, error) {
			return NewString(self.String()), nil
		}), true
	}
	return nil, false
}

func (Number) Set(name string, _ Value) error {
	return fmt.Errorf("cannot set %q on Number", name)
}

func numOperands(self Value, args []Value) (float64, float64, error) {
	if len(args) != 1 {
		return 0, 0, fmt.Errorf("expects 1 argument, got %d", len(args))
	}
	other, ok := args[0].(Number)
	if !ok {
		return 0, 0, fmt.Errorf("expected a Number, got %s", args[0].Type())
	}
	return self.(Number).v, other.v, nil
}

func numBinOp(op func(a, b float64) float64) NativeGoFn {
	return func(self Value, args []Value) (Value, error) {
		a, b, err := numOperands(self, args)
		if err != nil {
			return nil, err
		}
		return NewNumber(op(a, b)), nil
	}
}

func numCompare(op func(a, b float64) bool) NativeGoFn {
	return func(self Value, args []Value) (Value, error) {
		a, b, err := numOperands(self, args)
		if err != nil {
			return nil, err
		}
		return NewBoolean(op(a, b)), nil
	}
}

func numBitOp(op func(a, b int32) int32) NativeGoFn {
	return func(self Value, args []Value) (Value, error) {
		a, b, err := numOperands(self, args)
		if err != nil {
			return nil, err
		}
		return NewNumber(float64(op(int32(a), int32(b)))), nil
	}
}

func numShift(op func(a int32, b uint32) int32) NativeGoFn {
	return func(self Value, args []Value) (Value, error) {
		a, b, err := numOperands(self, args)
		if err != nil {
			return nil, err
		}
		return NewNumber(float64(op(int32(a), uint32(int32(b))))), nil
	}
}

func numEquals(self Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("equals expects 1 argument, got %d", len(args))
	}
	return NewBoolean(self.Equals(args[0])), nil
}

// ---------------------------------------------------------------------
// String
// ---------------------------------------------------------------------

// String is an Ursa string value, interned by raw content.
type String struct {
	v string
}

func (s String) Type() string   { return "String" }
func (s String) String() string { return s.v }
func (s String) Equals(other Value) bool {
	os, ok := other.(String)
	return ok && os.v == s.v
}

// Raw returns the underlying Go string.
func (s String) Raw() string { return s.v }

var stringInterning = map[string]String{}

// NewString returns the interned String for v.
func NewString(v string) Value {
	if s, ok := stringInterning[v]; ok {
		return s
	}
	s := String{v}
	stringInterning[v] = s
	return s
}

func (s String) Get(name string) (Value, bool) {
	switch name {
	case "len":
		return boundMethod(s, func(self Value, _ []Value) (Value, error) {
			return NewNumber(float64(len([]rune(self.(String).v)))), nil
		}), true
	case "equals":
		return boundMethod(s, func(self Value, args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("equals expects 1 argument")
			}
			return NewBoolean(self.Equals(args[0])), nil
		}), true
	case "concat":
		return boundMethod(s, func(self Value, args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("concat expects 1 argument")
			}
			other, ok := args[0].(String)
			if !ok {
				return nil, fmt.Errorf("concat expects a String argument")
			}
			return NewString(self.(String).v + other.v), nil
		}), true
	case "slice":
		return boundMethod(s, stringSlice), true
	case "split":
		return boundMethod(s, stringSplit), true
	case "toUpper":
		return boundMethod(s, func(self Value, _ []Value) (Value, error) {
			return NewString(strings.ToUpper(self.(String).v)), nil
		}), true
	case "toLower":
		return boundMethod(s, func(self Value, _ []Value) (Value, error) {
			return NewString(strings.ToLower(self.(String).v)), nil
		}), true
	case "lt":
		return boundMethod(s, func(self Value, args []Value) (Value, error) {
			other, err := requireString(args)
			if err != nil {
				return nil, err
			}
			return NewBoolean(self.(String).v < other), nil
		}), true
	case "iter":
		return boundMethod(s, func(self Value, _ []Value) (Value, error) {
			return stringIter(self.(String)), nil
		}), true
	case "toString":
		return boundMethod(s, func(self Value, _ []Value) (Value, error) {
			return self, nil
		}), true
	}
	return nil, false
}

func (String) Set(name string, _ Value) error {
	return fmt.Errorf("cannot set %q on String", name)
}

func requireString(args []Value) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expects 1 argument, got %d", len(args))
	}
	s, ok := args[0].(String)
	if !ok {
		return "", fmt.Errorf("expected a String, got %s", args[0].Type())
	}
	return s.v, nil
}

func stringSlice(self Value, args []Value) (Value, error) {
	runes := []rune(self.(String).v)
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("slice expects 1 or 2 arguments")
	}
	start, ok := args[0].(Number)
	if !ok {
		return nil, fmt.Errorf("slice start must be a Number")
	}
	end := float64(len(runes))
	if len(args) == 2 {
		e, ok := args[1].(Number)
		if !ok {
			return nil, fmt.Errorf("slice end must be a Number")
		}
		end = e.v
	}
	lo, hi := clampRange(int(start.v), int(end), len(runes))
	return NewString(string(runes[lo:hi])), nil
}

func clampRange(lo, hi, length int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > length {
		hi = length
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

func stringSplit(self Value, args []Value) (Value, error) {
	sep, err := requireString(args)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(self.(String).v, sep)
	elems := make([]Value, len(parts))
	for i, p := range parts {
		elems[i] = NewString(p)
	}
	return NewList(elems), nil
}

func stringIter(s String) *NativeFn {
	runes := []rune(s.v)
	i := 0
	return &NativeFn{
		Name: "stringIter",
		Fn: func(_ []Value) (Value, error) {
			if i >= len(runes) {
				return NewNull(), nil
			}
			r := runes[i]
			i++
			return NewString(string(r)), nil
		},
	}
}

// ---------------------------------------------------------------------
// Joint scalar helper
// ---------------------------------------------------------------------

// Sort orders a slice of Values using Number/String ordered comparisons
//. Other variants compare equal to each other and sort stable.
func Sort(vs []Value) {
	sort.SliceStable(vs, func(i, j int) bool {
		return Less(vs[i], vs[j])
	})
}

// Less implements the ordered comparison used by Sort and the `sorted`
// builtin method.
func Less(a, b Value) bool {
	switch av := a.(type) {
	case Number:
		if bv, ok := b.(Number); ok {
			return av.v < bv.v
		}
	case String:
		if bv, ok := b.(String); ok {
			return av.v < bv.v
		}
	}
	return false
}

// boundMethod wraps a NativeGoFn bound to self into a callable NativeFn
// value so Object.Get can return it directly.
func boundMethod(self Value, fn NativeGoFn) *NativeFn {
	return &NativeFn{
		Name: "<method>",
		Fn: func(args []Value) (Value, error) {
			return fn(self, args)
		},
	}
}

// NativeGoFn is the Go-side shape of a method bound to a receiver.
type NativeGoFn func(self Value, args []Value) (Value, error)
