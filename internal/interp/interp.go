// Package interp implements the cooperative, single-threaded instruction
// stepper: it walks an internal/instr.Stream, maintaining a stack of
// States (Frame + instruction pointer), threading closures, generators,
// and launched tasks through the same stepping primitive.
package interp

import (
	"fmt"

	"github.com/ursalang/ursa/internal/ast"
	"github.com/ursalang/ursa/internal/errsrc"
	"github.com/ursalang/ursa/internal/instr"
	"github.com/ursalang/ursa/internal/value"
)

// Interp runs one program's flattened instruction stream(s). It carries
// no mutable state of its own beyond file/source (used to render runtime
// errors); all execution state lives in States/Frames so that launched
// tasks and generators can be stepped independently.
type Interp struct {
	file   string
	source string
}

// New returns an Interp that attributes runtime errors to file/source.
func New(file, source string) *Interp {
	return &Interp{file: file, source: source}
}

// Run executes stream from its first instruction as the top-level
// program and returns its final value: the value of the last instruction
// appended by the flattener (there is no top-level Return).
func (ip *Interp) Run(stream *instr.Stream) (value.Value, error) {
	frame := NewFrame(0, nil, "main")
	st := newState(stream, 0, frame, nil)
	return ip.runToCompletion(st)
}

// stepOutcome reports what executing one instruction did, distinguishing
// plain forward progress from the two ways a State's instruction stream
// can suspend.
type stepOutcome int

const (
	outcomeContinue stepOutcome = iota
	outcomeReturn
	outcomeYield
)

// runToCompletion drives st to either a Return (an ordinary Fn/Launch
// body) or the end of its stream (the top-level program), recursing into
// nested Calls and Launches along the way. A Yield reaching this level
// means `yield` was reached outside a generator body, which the compiler
// and flattener already reject; it is handled here only as a safety net.
func (ip *Interp) runToCompletion(st *State) (value.Value, error) {
	for {
		if st.PC >= len(st.Stream.Instrs) {
			if len(st.Stream.Instrs) == 0 {
				return value.NewNull(), nil
			}
			last := st.Stream.Instrs[len(st.Stream.Instrs)-1]
			return st.Frame.Memory[last.ResultID()], nil
		}
		outcome, val, err := ip.execOne(st)
		if err != nil {
			return nil, err
		}
		switch outcome {
		case outcomeReturn:
			return val, nil
		case outcomeYield:
			return nil, ip.errorf(st, "'yield' outside a generator")
		}
	}
}

// stepGenerator drives st forward until it hits a Yield (pausing there,
// ready to resume) or a Return (the generator body itself finished).
func (ip *Interp) stepGenerator(st *State) (value.Value, bool, error) {
	for {
		if st.PC >= len(st.Stream.Instrs) {
			return value.NewNull(), true, nil
		}
		outcome, val, err := ip.execOne(st)
		if err != nil {
			return nil, true, err
		}
		switch outcome {
		case outcomeReturn:
			return val, true, nil
		case outcomeYield:
			return val, false, nil
		}
	}
}

func (ip *Interp) errorf(st *State, format string, args ...interface{}) error {
	var trace []errsrc.Frame
	for s := st; s != nil; s = s.Outer {
		name := s.Frame.FnName
		if name == "" {
			name = "<anonymous>"
		}
		trace = append(trace, errsrc.Frame{FnName: name, File: ip.file})
	}
	return &errsrc.RuntimeError{
		Message:  fmt.Sprintf(format, args...),
		Interval: ast.Interval{},
		Source:   ip.source,
		File:     ip.file,
		Trace:    trace,
	}
}

// mem reads id's already-computed value out of st's frame; every
// instruction that produces a value records it here under its own
// ResultID before any later instruction can reference it.
func mem(st *State, id instr.ID) value.Value {
	if v, ok := st.Frame.Memory[id]; ok {
		return v
	}
	return value.NewNull()
}

func setMem(st *State, id instr.ID, v value.Value) {
	st.Frame.Memory[id] = v
}

// typeMismatch implements the §4.5.3 assignment guard: a write to a slot
// already holding a non-Null value of a different variant is rejected.
func typeMismatch(existing, v value.Value) bool {
	if _, isNull := existing.(value.Null); isNull {
		return false
	}
	return existing.Type() != v.Type()
}

// execOne executes the instruction at st.PC, advancing st.PC for every
// outcome except Return. Yield also advances st.PC past itself before
// suspending this State's run loop; both suspending outcomes are handled
// by the caller (runToCompletion/stepGenerator).
func (ip *Interp) execOne(st *State) (stepOutcome, value.Value, error) {
	in := st.Stream.Instrs[st.PC]

	switch v := in.(type) {
	case *instr.Return:
		return outcomeReturn, mem(st, v.ArgID), nil

	case *instr.Yield:
		yielded := mem(st, v.ArgID)
		st.PC++
		return outcomeYield, yielded, nil

	case *instr.Literal:
		setMem(st, v.ID, st.Stream.Literals[v.LiteralIndex])
		st.PC++
		return outcomeContinue, nil, nil

	case *instr.LetCopy:
		setMem(st, v.ID, mem(st, v.Src))
		st.PC++
		return outcomeContinue, nil, nil

	case *instr.Local:
		setMem(st, v.ID, st.Frame.GetSlot(v.Idx))
		st.PC++
		return outcomeContinue, nil, nil

	case *instr.Capture:
		if v.Idx < 0 || v.Idx >= len(st.Frame.Captures) {
			return 0, nil, ip.errorf(st, "capture index %d out of range", v.Idx)
		}
		setMem(st, v.ID, st.Frame.Captures[v.Idx].V)
		st.PC++
		return outcomeContinue, nil, nil

	case *instr.Property:
		objVal := mem(st, v.ObjID)
		obj, ok := objVal.(value.Object)
		if !ok {
			return 0, nil, ip.errorf(st, "Invalid object")
		}
		pv, ok := obj.Get(v.Name)
		if !ok {
			return 0, nil, ip.errorf(st, "Invalid property `%s'", v.Name)
		}
		setMem(st, v.ID, pv)
		st.PC++
		return outcomeContinue, nil, nil

	case *instr.SetLocal:
		newVal := mem(st, v.ValID)
		if typeMismatch(st.Frame.GetSlot(v.Idx), newVal) {
			return 0, nil, ip.errorf(st, "Assignment to different type")
		}
		st.Frame.SetSlot(v.Idx, newVal)
		setMem(st, v.ID, newVal)
		st.PC++
		return outcomeContinue, nil, nil

	case *instr.SetCapture:
		if v.Idx < 0 || v.Idx >= len(st.Frame.Captures) {
			return 0, nil, ip.errorf(st, "capture index %d out of range", v.Idx)
		}
		cell := st.Frame.Captures[v.Idx]
		newVal := mem(st, v.ValID)
		if typeMismatch(cell.V, newVal) {
			return 0, nil, ip.errorf(st, "Assignment to different type")
		}
		cell.V = newVal
		setMem(st, v.ID, newVal)
		st.PC++
		return outcomeContinue, nil, nil

	case *instr.SetProperty:
		objVal := mem(st, v.ObjID)
		obj, ok := objVal.(value.Object)
		if !ok {
			return 0, nil, ip.errorf(st, "Invalid object")
		}
		if _, ok := obj.Get(v.Name); !ok {
			return 0, nil, ip.errorf(st, "Invalid property `%s'", v.Name)
		}
		newVal := mem(st, v.ValID)
		if err := obj.Set(v.Name, newVal); err != nil {
			return 0, nil, ip.errorf(st, "%s", err)
		}
		setMem(st, v.ID, newVal)
		st.PC++
		return outcomeContinue, nil, nil

	case *instr.ObjectLiteral:
		fields := make(map[string]value.Value, len(v.Members))
		order := make([]string, len(v.Members))
		for i, m := range v.Members {
			fields[m.Name] = mem(st, m.ID)
			order[i] = m.Name
		}
		typeName := v.TypeName
		if typeName == "" {
			typeName = "Object"
		}
		setMem(st, v.ID, value.NewStruct(typeName, fields, order))
		st.PC++
		return outcomeContinue, nil, nil

	case *instr.ListLiteral:
		elems := make([]value.Value, len(v.ElemIDs))
		for i, eid := range v.ElemIDs {
			elems[i] = mem(st, eid)
		}
		setMem(st, v.ID, value.NewList(elems))
		st.PC++
		return outcomeContinue, nil, nil

	case *instr.MapLiteral:
		m := value.NewMap()
		for _, p := range v.Pairs {
			m.Put(mem(st, p.Key), mem(st, p.Val))
		}
		setMem(st, v.ID, m)
		st.PC++
		return outcomeContinue, nil, nil

	case *instr.Await:
		return ip.execAwait(st, v)

	case *instr.Continue:
		loop, _, ok := st.findLoop(v.Loop)
		if !ok {
			return 0, nil, ip.errorf(st, "'continue' outside a loop")
		}
		setMem(st, v.ID, value.NewNull())
		st.PC = loop.OpenIndex + 1
		return outcomeContinue, nil, nil

	case *instr.Break:
		return ip.execBreak(st, v)

	case *instr.Call:
		return ip.execCall(st, v)

	case *instr.BlockOpen:
		return ip.execBlockOpen(st, v)

	case *instr.ElseBlock:
		thenVal := prevValue(st)
		closeIdx, _ := st.Stream.CloseIndexOf(v.IfBlockID)
		closeID := st.Stream.Instrs[closeIdx].ResultID()
		setMem(st, v.IfBlockID, thenVal)
		setMem(st, closeID, thenVal)
		setMem(st, v.ID, thenVal)
		st.PC = closeIdx + 1
		return outcomeContinue, nil, nil

	case *instr.BlockClose:
		switch v.Variant {
		case "If", "Else", "Let":
			val := prevValue(st)
			setMem(st, v.MatchingOpen, val)
			setMem(st, v.ID, val)
		}
		st.PC++
		return outcomeContinue, nil, nil

	default:
		return 0, nil, ip.errorf(st, "interp: unhandled instruction %T", in)
	}
}

// prevValue returns the value of the instruction immediately preceding
// st.PC: the last instruction of whatever block body just finished,
// whose value becomes the enclosing block's result.
func prevValue(st *State) value.Value {
	if st.PC == 0 {
		return value.NewNull()
	}
	prev := st.Stream.Instrs[st.PC-1]
	return mem(st, prev.ResultID())
}

func (ip *Interp) execAwait(st *State, v *instr.Await) (stepOutcome, value.Value, error) {
	pv := mem(st, v.ArgID)
	promise, ok := pv.(*value.Promise)
	if !ok {
		return 0, nil, ip.errorf(st, "Invalid object")
	}
	if !promise.Settled() {
		// Every Promise this interpreter produces settles synchronously
		// (Launch runs its forked State to completion eagerly, and
		// NativeAsyncFns resolve before returning); a still-pending
		// promise here can only mean its executor never called
		// resolve/reject, the one deadlock case §4.5.5 permits.
		return 0, nil, ip.errorf(st, "deadlock: await on a promise that never resolves")
	}
	val, err := promise.Result()
	if err != nil {
		return 0, nil, err
	}
	setMem(st, v.ID, val)
	st.PC++
	return outcomeContinue, nil, nil
}

func (ip *Interp) execBreak(st *State, v *instr.Break) (stepOutcome, value.Value, error) {
	_, idx, ok := st.findLoop(v.Loop)
	if !ok {
		return 0, nil, ip.errorf(st, "'break' outside a loop")
	}
	argVal := mem(st, v.ArgID)
	closeIdx, _ := st.Stream.CloseIndexOf(v.Loop)
	closeID := st.Stream.Instrs[closeIdx].ResultID()
	setMem(st, v.Loop, argVal)
	setMem(st, closeID, argVal)
	setMem(st, v.ID, argVal)
	st.LoopStack = st.LoopStack[:idx]
	st.PC = closeIdx + 1
	return outcomeContinue, nil, nil
}

func (ip *Interp) execBlockOpen(st *State, v *instr.BlockOpen) (stepOutcome, value.Value, error) {
	switch variant := v.Variant.(type) {
	case instr.LoopBlock:
		st.pushLoop(v.ID, st.PC)
		st.PC++
		return outcomeContinue, nil, nil

	case instr.LaunchBlock:
		return ip.execLaunch(st, v)

	case *instr.IfBlock:
		cond := mem(st, variant.CondID)
		b, ok := cond.(value.Boolean)
		if !ok {
			return 0, nil, ip.errorf(st, "If condition must be a Boolean")
		}
		if b.Raw() {
			st.PC++
			return outcomeContinue, nil, nil
		}
		if variant.ElseID != 0 {
			elseIdx, _ := st.Stream.IndexOf(variant.ElseID)
			st.PC = elseIdx + 1
			return outcomeContinue, nil, nil
		}
		closeIdx, _ := st.Stream.CloseIndexOf(v.ID)
		closeID := st.Stream.Instrs[closeIdx].ResultID()
		setMem(st, v.ID, value.NewNull())
		setMem(st, closeID, value.NewNull())
		st.PC = closeIdx + 1
		return outcomeContinue, nil, nil

	case *instr.LetBlock:
		st.Frame.freshLocals(variant.Depth, len(variant.Vars))
		st.PC++
		return outcomeContinue, nil, nil

	case instr.CallableBlock:
		closureVal := ip.buildClosure(st, st.PC, variant)
		setMem(st, v.ID, closureVal)
		closeIdx, _ := st.Stream.CloseIndexOf(v.ID)
		setMem(st, st.Stream.Instrs[closeIdx].ResultID(), closureVal)
		st.PC = closeIdx + 1
		return outcomeContinue, nil, nil

	default:
		return 0, nil, ip.errorf(st, "interp: unhandled block variant %T", v.Variant)
	}
}

func (ip *Interp) buildClosure(st *State, openIndex int, cb instr.CallableBlock) value.Value {
	caps := make([]*value.Cell, len(cb.CaptureSources))
	for i, src := range cb.CaptureSources {
		if src.FromLocal {
			caps[i] = st.Frame.cellFor(src.Index)
		} else {
			caps[i] = st.Frame.Captures[src.Index]
		}
	}
	entry := &instr.FnEntry{Stream: st.Stream, OpenIndex: openIndex}
	if cb.IsGenerator {
		return &value.GeneratorClosure{Name: cb.Name, Params: cb.Params, Captures: caps, Entry: entry}
	}
	return &value.Closure{Name: cb.Name, Params: cb.Params, Captures: caps, Entry: entry}
}

func (ip *Interp) execLaunch(st *State, open *instr.BlockOpen) (stepOutcome, value.Value, error) {
	closeIdx, _ := st.Stream.CloseIndexOf(open.ID)
	closeID := st.Stream.Instrs[closeIdx].ResultID()

	child := newState(st.Stream, st.PC+1, st.Frame.Clone(), st)
	result, err := ip.runToCompletion(child)

	promise := value.NewPromise()
	promise.Resolve(result, err)

	setMem(st, open.ID, promise)
	setMem(st, closeID, promise)
	st.PC = closeIdx + 1
	return outcomeContinue, nil, nil
}
