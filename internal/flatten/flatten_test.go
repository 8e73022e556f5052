package flatten

import (
	"testing"

	"github.com/ursalang/ursa/internal/compiler"
	"github.com/ursalang/ursa/internal/instr"
	"github.com/ursalang/ursa/internal/runtime"
	"github.com/ursalang/ursa/internal/sexpr"
)

func mustFlatten(t *testing.T, src string) (*instr.Stream, *runtime.Runtime) {
	t.Helper()
	rt := runtime.New()
	rt.Freeze()
	n, err := sexpr.Read(src)
	if err != nil {
		t.Fatalf("sexpr.Read: %v", err)
	}
	c := compiler.New(rt, "test.ursa", src)
	tree, cerrs := c.Compile(n)
	if len(cerrs) != 0 {
		t.Fatalf("unexpected compile errors: %v", cerrs)
	}
	fl := New(rt, "test.ursa", src)
	stream, ferrs := fl.Flatten(tree)
	if len(ferrs) != 0 {
		t.Fatalf("unexpected flatten errors: %v", ferrs)
	}
	if err := stream.Validate(); err != nil {
		t.Fatalf("stream failed validation: %v", err)
	}
	return stream, rt
}

func TestFlattenLiteral(t *testing.T) {
	stream, _ := mustFlatten(t, `3`)
	if len(stream.Instrs) != 1 {
		t.Fatalf("expected a single Literal instruction, got %d", len(stream.Instrs))
	}
	if _, ok := stream.Instrs[0].(*instr.Literal); !ok {
		t.Fatalf("expected *instr.Literal, got %T", stream.Instrs[0])
	}
}

func TestFlattenLetEmitsSetLocalThenBody(t *testing.T) {
	stream, _ := mustFlatten(t, `["let",[["const","a","Num",3]],"a"]`)
	var sawSetLocal, sawLocal bool
	for _, in := range stream.Instrs {
		switch v := in.(type) {
		case *instr.SetLocal:
			sawSetLocal = true
			if v.Idx != 0 {
				t.Fatalf("expected SetLocal idx 0, got %d", v.Idx)
			}
		case *instr.Local:
			sawLocal = true
			if !sawSetLocal {
				t.Fatalf("Local read should come after SetLocal in instruction order")
			}
		}
	}
	if !sawSetLocal || !sawLocal {
		t.Fatalf("expected both SetLocal and Local in stream, got %v", stream.Instrs)
	}
}

func TestFlattenIfProducesMatchedBlocksWithElseID(t *testing.T) {
	stream, _ := mustFlatten(t, `["if",true,1,2]`)
	var open *instr.BlockOpen
	for _, in := range stream.Instrs {
		if b, ok := in.(*instr.BlockOpen); ok {
			open = b
			break
		}
	}
	if open == nil {
		t.Fatalf("expected a BlockOpen in the stream")
	}
	ifBlock, ok := open.Variant.(*instr.IfBlock)
	if !ok {
		t.Fatalf("expected *instr.IfBlock variant, got %T", open.Variant)
	}
	if ifBlock.ElseID == 0 {
		t.Fatalf("expected a non-zero ElseID for a two-armed if")
	}
	var sawElse bool
	for _, in := range stream.Instrs {
		if e, ok := in.(*instr.ElseBlock); ok {
			sawElse = true
			if e.IfBlockID != open.ID {
				t.Fatalf("expected ElseBlock to reference the If's open id")
			}
		}
	}
	if !sawElse {
		t.Fatalf("expected an ElseBlock instruction")
	}
}

func TestFlattenLoopWithBreakValidates(t *testing.T) {
	stream, _ := mustFlatten(t, `["loop",["break",1]]`)
	var sawBreak, sawContinue bool
	for _, in := range stream.Instrs {
		switch in.(type) {
		case *instr.Break:
			sawBreak = true
		case *instr.Continue:
			sawContinue = true
		}
	}
	if !sawBreak {
		t.Fatalf("expected a Break instruction")
	}
	if !sawContinue {
		t.Fatalf("expected the synthesized trailing Continue instruction")
	}
}

func TestFlattenFnBodyInlinedWithTrailingReturn(t *testing.T) {
	stream, _ := mustFlatten(t, `["fn",[],null,3]`)
	var open *instr.BlockOpen
	var ret *instr.Return
	for _, in := range stream.Instrs {
		switch v := in.(type) {
		case *instr.BlockOpen:
			if _, ok := v.Variant.(instr.CallableBlock); ok {
				open = v
			}
		case *instr.Return:
			ret = v
		}
	}
	if open == nil {
		t.Fatalf("expected a CallableBlock BlockOpen")
	}
	if ret == nil {
		t.Fatalf("expected a synthesized trailing Return")
	}
	if ret.Fn != open.ID {
		t.Fatalf("expected Return.Fn to reference the callable's open id")
	}
}

func TestFlattenRecursiveLetCapturesCellBeforeInit(t *testing.T) {
	// let rec f = fn(n) { if n then f(n) else 0 } in f
	src := `["let",[["const","f","Any",["fn",[["n","Num"]],null,["if","n",["f","n"],0]]]],"f"]`
	stream, _ := mustFlatten(t, src)

	var letOpenIdx, fnOpenIdx int = -1, -1
	for i, in := range stream.Instrs {
		if b, ok := in.(*instr.BlockOpen); ok {
			switch b.Variant.(type) {
			case *instr.LetBlock:
				letOpenIdx = i
			case instr.CallableBlock:
				fnOpenIdx = i
			}
		}
	}
	if letOpenIdx == -1 || fnOpenIdx == -1 {
		t.Fatalf("expected both a LetBlock and a CallableBlock open")
	}
	if fnOpenIdx < letOpenIdx {
		t.Fatalf("the fn's body should be flattened after the Let opens (its binding slot must exist first)")
	}
}
