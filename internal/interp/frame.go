package interp

import (
	"github.com/ursalang/ursa/internal/instr"
	"github.com/ursalang/ursa/internal/value"
)

// Frame holds one activation's mutable state: local and capture slots
// (each a Cell, so a closure captures the cell itself rather than a
// value snapshot) plus a memory map recording every instruction's
// already-computed result, keyed by its id. One Frame backs an entire
// Fn/Generator call, including every Let nested inside its body (Ursa's
// locals form one flat, growable stack per call, not one array per
// block).
type Frame struct {
	Locals   []*value.Cell
	Captures []*value.Cell
	Memory   map[instr.ID]value.Value
	FnName   string
}

// NewFrame builds a Frame with numLocals slots pre-filled with fresh
// empty cells (Null), ready to receive SetLocal writes as the call's
// parameters and Let bindings are evaluated.
func NewFrame(numLocals int, captures []*value.Cell, fnName string) *Frame {
	locals := make([]*value.Cell, numLocals)
	for i := range locals {
		locals[i] = value.NewCell(value.NewNull())
	}
	return &Frame{
		Locals:   locals,
		Captures: captures,
		Memory:   make(map[instr.ID]value.Value),
		FnName:   fnName,
	}
}

// GetSlot/SetSlot satisfy value.SlotArray so value.LocalRef can address a
// Frame's locals without internal/value depending on this package.
func (f *Frame) GetSlot(index int) value.Value {
	if index < 0 || index >= len(f.Locals) {
		return value.NewNull()
	}
	return f.Locals[index].V
}

func (f *Frame) SetSlot(index int, v value.Value) {
	f.ensureLocal(index)
	f.Locals[index].V = v
}

// cellFor returns the Cell backing local slot index, growing Locals if
// needed. Used when building a closure's Captures list: the closure
// shares this exact Cell pointer with the enclosing frame, so later
// writes to the local are visible inside the closure and vice versa.
func (f *Frame) cellFor(index int) *value.Cell {
	f.ensureLocal(index)
	return f.Locals[index]
}

// ensureLocal grows Locals (with fresh cells) so index is addressable;
// used when a Let nested deeper than any sibling seen so far opens.
func (f *Frame) ensureLocal(index int) {
	for index >= len(f.Locals) {
		f.Locals = append(f.Locals, value.NewCell(value.NewNull()))
	}
}

// freshLocals replaces the cells at [depth, depth+n) with new, empty
// ones: a LetBlock's entry, so a binding that captures itself (or a
// sibling) closes over the right, still-empty cell rather than one left
// over from an earlier iteration or a sibling Let at the same depth.
func (f *Frame) freshLocals(depth, n int) {
	f.ensureLocal(depth + n - 1)
	for i := depth; i < depth+n; i++ {
		f.Locals[i] = value.NewCell(value.NewNull())
	}
}

// Clone produces the independent Frame a Launch forks: every local and
// capture cell is copied into a new box holding the same Value (so
// reassigning one side's variable is invisible to the other, while a
// shared container Value like a List remains the same object on both
// sides per the concurrency model), and Memory is copied so the forked
// body can still read whatever outer expression results were already
// computed before the launch.
func (f *Frame) Clone() *Frame {
	locals := make([]*value.Cell, len(f.Locals))
	for i, c := range f.Locals {
		locals[i] = value.NewCell(c.V)
	}
	captures := make([]*value.Cell, len(f.Captures))
	for i, c := range f.Captures {
		captures[i] = value.NewCell(c.V)
	}
	mem := make(map[instr.ID]value.Value, len(f.Memory))
	for k, v := range f.Memory {
		mem[k] = v
	}
	return &Frame{Locals: locals, Captures: captures, Memory: mem, FnName: f.FnName}
}
