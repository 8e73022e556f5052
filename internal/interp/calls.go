package interp

import (
	"github.com/ursalang/ursa/internal/instr"
	"github.com/ursalang/ursa/internal/value"
)

// CallValue invokes fnVal with args from outside any running State — the
// entry point native code (e.g. the prelude's Promise executor) uses to
// call back into a user-supplied Closure. It runs to completion
// synchronously, consistent with every other callable in this engine.
func CallValue(file, source string, fnVal value.Value, args []value.Value) (value.Value, error) {
	ip := New(file, source)
	return ip.dispatchCall(nil, fnVal, args)
}

// execCall dispatches a Call instruction on the callee's concrete Go
// type: a user Closure recurses via runToCompletion on a fresh child
// State; a GeneratorClosure builds a Continuation without running its
// body; a Continuation resumes via its own Call method; native callables
// invoke straight through.
func (ip *Interp) execCall(st *State, c *instr.Call) (stepOutcome, value.Value, error) {
	fnVal := mem(st, c.FnID)
	args := make([]value.Value, len(c.ArgIDs))
	for i, aid := range c.ArgIDs {
		args[i] = mem(st, aid)
	}

	result, err := ip.dispatchCall(st, fnVal, args)
	if err != nil {
		return 0, nil, err
	}
	setMem(st, c.ID, result)
	st.PC++
	return outcomeContinue, nil, nil
}

func (ip *Interp) dispatchCall(st *State, fnVal value.Value, args []value.Value) (value.Value, error) {
	switch fn := fnVal.(type) {
	case *value.Closure:
		return ip.callClosure(st, fn, args)
	case *value.GeneratorClosure:
		return ip.callGenerator(st, fn, args), nil
	case *value.Continuation:
		var arg value.Value = value.NewNull()
		if len(args) > 0 {
			arg = args[0]
		}
		return fn.Call(arg)
	case *value.NativeFn:
		return fn.Call(args)
	case *value.NativeAsyncFn:
		promise, err := fn.Call(args)
		if err != nil {
			return nil, err
		}
		return promise, nil
	default:
		return nil, ip.errorf(st, "Invalid call")
	}
}

// callClosure builds the called frame by zipping params with args (§4.5.2:
// extra args become locals with consecutive indices past the declared
// params; missing args default to Null, standing in for Undefined since
// the value model has no separate Undefined variant) and recurses to
// completion, chaining the new State's Outer to st for tracebacks.
func (ip *Interp) callClosure(st *State, fn *value.Closure, args []value.Value) (value.Value, error) {
	entry, ok := fn.Entry.(*instr.FnEntry)
	if !ok {
		return nil, ip.errorf(st, "interp: closure entry has no instruction body")
	}
	numLocals := len(fn.Params)
	if len(args) > numLocals {
		numLocals = len(args)
	}
	frame := NewFrame(numLocals, fn.Captures, fn.Name)
	for i := 0; i < numLocals; i++ {
		if i < len(args) {
			frame.Locals[i] = value.NewCell(args[i])
		}
	}
	child := newState(entry.Stream, entry.OpenIndex+1, frame, st)
	return ip.runToCompletion(child)
}

// callGenerator constructs a Continuation over a fresh child State parked
// at the generator body's entry; the body does not run until the
// Continuation is first called. Because `yield` can only ever suspend
// the immediately enclosing generator frame (the compiler rejects a
// nested ordinary Fn's yield), stepping this single persistent State
// forward on each Resume is sufficient — no goroutine is needed.
func (ip *Interp) callGenerator(st *State, fn *value.GeneratorClosure, args []value.Value) value.Value {
	entry := fn.Entry.(*instr.FnEntry)
	numLocals := len(fn.Params)
	if len(args) > numLocals {
		numLocals = len(args)
	}
	frame := NewFrame(numLocals, fn.Captures, fn.Name)
	for i := 0; i < numLocals; i++ {
		if i < len(args) {
			frame.Locals[i] = value.NewCell(args[i])
		}
	}
	child := newState(entry.Stream, entry.OpenIndex+1, frame, st)

	started := false
	var pendingYieldID instr.ID

	cont := &value.Continuation{}
	cont.Resume = func(arg value.Value) (value.Value, bool, error) {
		if started && pendingYieldID != 0 {
			setMem(child, pendingYieldID, arg)
		}
		started = true
		yielded, done, err := ip.stepGenerator(child)
		if err != nil {
			return nil, true, err
		}
		if !done {
			pendingYieldID = child.Stream.Instrs[child.PC-1].ResultID()
		}
		return yielded, done, nil
	}
	return cont
}
