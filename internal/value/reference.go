package value

import "fmt"

// Reference is an lvalue supporting get/set.
type Reference interface {
	Get() Value
	Set(v Value) error
}

// LocalRef addresses a slot in a frame's local array. Frame is an opaque
// slot-array handle supplied by internal/interp (see SlotArray).
type LocalRef struct {
	Frame SlotArray
	Index int
	// Mutable mirrors whether the underlying Location was declared with
	// `var`; a non-var Local rejects all subsequent Set.
	Mutable bool
}

// SlotArray is the minimal capability internal/interp's Frame exposes to
// satisfy LocalRef/CaptureRef without internal/value importing
// internal/interp.
type SlotArray interface {
	GetSlot(index int) Value
	SetSlot(index int, v Value)
}

func (r LocalRef) Get() Value { return r.Frame.GetSlot(r.Index) }
func (r LocalRef) Set(v Value) error {
	if !r.Mutable {
		return fmt.Errorf("cannot assign to non-'var' local")
	}
	r.Frame.SetSlot(r.Index, v)
	return nil
}

// CaptureRef addresses a capture cell recorded at closure creation.
type CaptureRef struct {
	Cell    *Cell
	Mutable bool
}

func (r CaptureRef) Get() Value { return r.Cell.V }
func (r CaptureRef) Set(v Value) error {
	if !r.Mutable {
		return fmt.Errorf("cannot assign to non-'var' capture")
	}
	r.Cell.V = v
	return nil
}

// PropertyRef addresses a named member of an Object. NewPropertyRef
// validates the name exists at creation, so construction itself can fail.
type PropertyRef struct {
	Object Object
	Name   string
}

// NewPropertyRef validates that name exists on obj before returning a
// usable reference.
func NewPropertyRef(obj Object, name string) (PropertyRef, error) {
	if _, ok := obj.Get(name); !ok {
		return PropertyRef{}, fmt.Errorf("invalid property %q", name)
	}
	return PropertyRef{Object: obj, Name: name}, nil
}

func (r PropertyRef) Get() Value {
	v, _ := r.Object.Get(r.Name)
	return v
}

func (r PropertyRef) Set(v Value) error {
	return r.Object.Set(r.Name, v)
}
