package instr

import (
	"bytes"
	"testing"

	"github.com/ursalang/ursa/internal/value"
)

func buildSimpleIfStream() *Stream {
	s := NewStream()
	litIdx := s.AddLiteral(value.NewBoolean(true))
	s.Append(&Literal{base{0}, litIdx})
	s.Append(&BlockOpen{base{1}, IfBlock{CondID: 0}})
	litIdx2 := s.AddLiteral(value.NewNumber(1))
	s.Append(&Literal{base{2}, litIdx2})
	s.Append(&BlockClose{base{3}, 1, "If"})
	return s
}

func TestStreamValidateMatchedBlocks(t *testing.T) {
	s := buildSimpleIfStream()
	if err := s.Validate(); err != nil {
		t.Fatalf("expected a valid stream, got: %v", err)
	}
}

func TestStreamValidateDetectsUnclosedBlock(t *testing.T) {
	s := NewStream()
	s.Append(&BlockOpen{base{0}, LoopBlock{LocalsDepth: 0}})
	if err := s.Validate(); err == nil {
		t.Fatal("expected an error for an unclosed block")
	}
}

func TestStreamValidateDetectsDuplicateID(t *testing.T) {
	s := NewStream()
	s.Append(&Literal{base{0}, 0})
	s.Append(&Literal{base{0}, 0})
	if err := s.Validate(); err == nil {
		t.Fatal("expected an error for a duplicate id")
	}
}

func TestDisassembleIndentsBlocks(t *testing.T) {
	s := buildSimpleIfStream()
	var buf bytes.Buffer
	NewDisassembler(s, &buf).Disassemble()
	if buf.Len() == 0 {
		t.Fatal("expected non-empty disassembly")
	}
}

func TestEncodeJSONRoundTripsCounts(t *testing.T) {
	s := buildSimpleIfStream()
	data, err := EncodeJSON(s)
	if err != nil {
		t.Fatal(err)
	}
	litCount, instrCount, err := DecodeJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if litCount != len(s.Literals) || instrCount != len(s.Instrs) {
		t.Fatalf("round trip mismatch: got (%d,%d), want (%d,%d)", litCount, instrCount, len(s.Literals), len(s.Instrs))
	}
}
