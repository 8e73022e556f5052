package instr

import (
	"fmt"

	"github.com/ursalang/ursa/internal/value"
)

// Stream is the flattened instruction sequence produced by
// internal/flatten for one compilation unit; nested Fn/Generator bodies
// are laid out inline in the same stream between their BlockOpen and
// BlockClose.
// Literals is the constant pool Literal instructions index into.
type Stream struct {
	Instrs   []Instruction
	Literals []value.Value

	// indexByID supports O(1) id->index lookup for the interpreter and
	// for block-matching validation.
	indexByID map[ID]int

	// closeIndexByOpen maps a BlockOpen's id to the stream index of its
	// matching BlockClose; built lazily on first CloseIndexOf call.
	closeIndexByOpen map[ID]int
}

// NewStream creates an empty Stream ready to receive instructions via
// Append.
func NewStream() *Stream {
	return &Stream{indexByID: make(map[ID]int)}
}

// Append adds instr to the stream, recording its index for IndexOf.
func (s *Stream) Append(i Instruction) {
	s.indexByID[i.ResultID()] = len(s.Instrs)
	s.Instrs = append(s.Instrs, i)
}

// AddLiteral appends v to the literal pool and returns its index; equal
// values are not deduplicated.
func (s *Stream) AddLiteral(v value.Value) int {
	s.Literals = append(s.Literals, v)
	return len(s.Literals) - 1
}

// IndexOf returns the stream index of the instruction with the given id.
func (s *Stream) IndexOf(id ID) (int, bool) {
	i, ok := s.indexByID[id]
	return i, ok
}

// At returns the instruction with the given id.
func (s *Stream) At(id ID) Instruction {
	i, ok := s.indexByID[id]
	if !ok {
		return nil
	}
	return s.Instrs[i]
}

// Validate checks that every instruction id is unique, and that every BlockOpen has exactly one
// matching BlockClose (an If may additionally carry an ElseBlock whose
// close is aliased to the if's own open).
func (s *Stream) Validate() error {
	seen := make(map[ID]bool, len(s.Instrs))
	var openStack []ID
	opened := make(map[ID]bool)
	closed := make(map[ID]bool)

	for _, in := range s.Instrs {
		if seen[in.ResultID()] {
			return fmt.Errorf("duplicate instruction id %%%d", in.ResultID())
		}
		seen[in.ResultID()] = true

		switch v := in.(type) {
		case *BlockOpen:
			openStack = append(openStack, v.ID)
			opened[v.ID] = true
		case *ElseBlock:
			// Does not push a new close obligation of its own beyond the
			// one already pending for the enclosing If.
		case *BlockClose:
			if len(openStack) == 0 {
				return fmt.Errorf("unmatched close %%%d: no open block", v.ID)
			}
			top := openStack[len(openStack)-1]
			if top != v.MatchingOpen {
				return fmt.Errorf("close %%%d matches %%%d but innermost open is %%%d", v.ID, v.MatchingOpen, top)
			}
			openStack = openStack[:len(openStack)-1]
			closed[v.MatchingOpen] = true
		}
	}
	if len(openStack) != 0 {
		return fmt.Errorf("unclosed blocks remain: %v", openStack)
	}
	for id := range opened {
		if !closed[id] {
			return fmt.Errorf("block %%%d never closed", id)
		}
	}
	return nil
}

// CloseIndexOf returns the stream index of the BlockClose matching the
// BlockOpen with the given id (an ElseBlock's id is not mapped; pass its
// IfBlockID to find the If's terminal close), building and caching the
// open->close index map on first use via the same nesting-stack walk
// Validate uses.
func (s *Stream) CloseIndexOf(openID ID) (int, bool) {
	if s.closeIndexByOpen == nil {
		s.closeIndexByOpen = make(map[ID]int, len(s.Instrs))
		var openStack []ID
		for i, in := range s.Instrs {
			switch v := in.(type) {
			case *BlockOpen:
				openStack = append(openStack, v.ID)
			case *BlockClose:
				if len(openStack) > 0 {
					top := openStack[len(openStack)-1]
					openStack = openStack[:len(openStack)-1]
					s.closeIndexByOpen[top] = i
				}
			}
		}
	}
	i, ok := s.closeIndexByOpen[openID]
	return i, ok
}

// FnEntry is the instr-package implementation of value.Body: a pointer
// into a Stream at the index of the Fn/Generator's CallableBlock open
// instruction. internal/interp uses this to locate a closure's body
// without internal/value depending on internal/instr.
type FnEntry struct {
	Stream    *Stream
	OpenIndex int
}

func (f *FnEntry) bodyMarker() {}

var _ value.Body = (*FnEntry)(nil)
