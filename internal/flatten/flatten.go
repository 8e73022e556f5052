// Package flatten lowers a type-checked expression tree (internal/ast)
// into the linear instruction stream (internal/instr) the interpreter
// runs: every nested Fn/Generator body is compiled inline into the same
// stream, bracketed by a matched BlockOpen/BlockClose pair, so a closure
// value is just a pointer back into the one stream at its open's index.
package flatten

import (
	"fmt"

	"github.com/ursalang/ursa/internal/ast"
	"github.com/ursalang/ursa/internal/errsrc"
	"github.com/ursalang/ursa/internal/instr"
	"github.com/ursalang/ursa/internal/runtime"
	"github.com/ursalang/ursa/internal/value"
)

// Flattener lowers one compiled program into a single instr.Stream.
type Flattener struct {
	rt     *runtime.Runtime
	stream *instr.Stream
	file   string
	source string
	errs   []error

	loopOpens []instr.ID
	fnOpens   []instr.ID
}

// New returns a Flattener that allocates instruction ids from rt and
// attributes any safety-net errors to file/source.
func New(rt *runtime.Runtime, file, source string) *Flattener {
	return &Flattener{rt: rt, stream: instr.NewStream(), file: file, source: source}
}

// Flatten lowers root (normally the checked top-level program body) and
// returns the resulting stream plus any safety-net errors. These errors
// mirror checks internal/compiler already performs (break/continue
// outside a loop, return/yield outside a callable); flatten repeats them
// defensively since it is the last pass before a stream reaches the
// interpreter.
func (f *Flattener) Flatten(root ast.Node) (*instr.Stream, []error) {
	f.flattenExpr(root)
	return f.stream, f.errs
}

func (f *Flattener) errorf(n ast.Node, format string, args ...interface{}) {
	f.errs = append(f.errs, &errsrc.CompileError{
		Message:  fmt.Sprintf(format, args...),
		Interval: n.Interval(),
		Source:   f.source,
		File:     f.file,
	})
}

func (f *Flattener) nextID() instr.ID {
	return instr.ID(f.rt.NextID())
}

func (f *Flattener) nullLiteral() instr.ID {
	return f.emitLiteral(value.NewNull())
}

func (f *Flattener) emitLiteral(v value.Value) instr.ID {
	idx := f.stream.AddLiteral(v)
	id := f.nextID()
	f.stream.Append(instr.NewLiteral(id, idx))
	return id
}

func (f *Flattener) flattenExpr(n ast.Node) instr.ID {
	switch node := n.(type) {
	case *ast.Literal:
		return f.emitLiteral(node.Value)
	case *ast.Global:
		return f.emitLiteral(node.Value)
	case *ast.Local:
		id := f.nextID()
		f.stream.Append(instr.NewLocal(id, node.Index, node.Location.Name))
		return id
	case *ast.Capture:
		id := f.nextID()
		f.stream.Append(instr.NewCapture(id, node.Index, node.Location.Name))
		return id
	case *ast.Property:
		objID := f.flattenExpr(node.Obj)
		id := f.nextID()
		f.stream.Append(instr.NewProperty(id, objID, node.Name))
		return id
	case *ast.Set:
		return f.flattenSet(node)
	case *ast.ObjectLiteral:
		return f.flattenObjectLiteral(node)
	case *ast.ListLiteral:
		return f.flattenListLiteral(node)
	case *ast.MapLiteral:
		return f.flattenMapLiteral(node)
	case *ast.Sequence:
		return f.flattenSequence(node)
	case *ast.If:
		return f.flattenIf(node)
	case *ast.And:
		return f.flattenAnd(node)
	case *ast.Or:
		return f.flattenOr(node)
	case *ast.Loop:
		return f.flattenLoop(node)
	case *ast.Break:
		return f.flattenBreak(node)
	case *ast.Continue:
		return f.flattenContinue(node)
	case *ast.Return:
		return f.flattenReturn(node)
	case *ast.Yield:
		return f.flattenYield(node)
	case *ast.Fn:
		return f.flattenCallable(node.Name, node.Params, node.Captures, node.CaptureSources, node.Body, false)
	case *ast.Generator:
		return f.flattenCallable(node.Name, node.Params, node.Captures, node.CaptureSources, node.Body, true)
	case *ast.Call:
		return f.flattenCall(node)
	case *ast.Invoke:
		return f.flattenInvoke(node)
	case *ast.Await:
		argID := f.flattenExpr(node.Exp)
		id := f.nextID()
		f.stream.Append(instr.NewAwait(id, argID))
		return id
	case *ast.Launch:
		return f.flattenLaunch(node)
	case *ast.Let:
		return f.flattenLet(node)
	default:
		f.errorf(n, "flatten: unhandled node %T", n)
		return f.nullLiteral()
	}
}

func (f *Flattener) flattenSet(node *ast.Set) instr.ID {
	valID := f.flattenExpr(node.Exp)
	switch lv := node.LValue.(type) {
	case *ast.Local:
		id := f.nextID()
		f.stream.Append(instr.NewSetLocal(id, lv.Index, valID))
		return id
	case *ast.Capture:
		id := f.nextID()
		f.stream.Append(instr.NewSetCapture(id, lv.Index, valID))
		return id
	case *ast.Property:
		objID := f.flattenExpr(lv.Obj)
		id := f.nextID()
		f.stream.Append(instr.NewSetProperty(id, objID, lv.Name, valID))
		return id
	default:
		f.errorf(node, "flatten: invalid assignment target %T", lv)
		return f.nullLiteral()
	}
}

func (f *Flattener) flattenObjectLiteral(node *ast.ObjectLiteral) instr.ID {
	members := make([]instr.IDPair, len(node.Members))
	for i, m := range node.Members {
		members[i] = instr.IDPair{Name: m.Name, ID: f.flattenExpr(m.Exp)}
	}
	id := f.nextID()
	f.stream.Append(instr.NewObjectLiteral(id, node.Name, members))
	return id
}

func (f *Flattener) flattenListLiteral(node *ast.ListLiteral) instr.ID {
	elemIDs := make([]instr.ID, len(node.Elems))
	for i, e := range node.Elems {
		elemIDs[i] = f.flattenExpr(e)
	}
	id := f.nextID()
	f.stream.Append(instr.NewListLiteral(id, elemIDs))
	return id
}

func (f *Flattener) flattenMapLiteral(node *ast.MapLiteral) instr.ID {
	pairs := make([]instr.IDIDPair, len(node.Pairs))
	for i, p := range node.Pairs {
		pairs[i] = instr.IDIDPair{Key: f.flattenExpr(p.Key), Val: f.flattenExpr(p.Val)}
	}
	id := f.nextID()
	f.stream.Append(instr.NewMapLiteral(id, pairs))
	return id
}

func (f *Flattener) flattenSequence(node *ast.Sequence) instr.ID {
	if len(node.Exprs) == 0 {
		return f.nullLiteral()
	}
	var last instr.ID
	for _, e := range node.Exprs {
		last = f.flattenExpr(e)
	}
	return last
}

func (f *Flattener) flattenIf(node *ast.If) instr.ID {
	condID := f.flattenExpr(node.Cond)
	ifBlock := &instr.IfBlock{CondID: condID}
	openID := f.nextID()
	f.stream.Append(instr.NewBlockOpen(openID, ifBlock))

	f.flattenExpr(node.Then)

	if node.Else != nil {
		elseID := f.nextID()
		ifBlock.ElseID = elseID
		f.stream.Append(instr.NewElseBlock(elseID, openID, elseID))
		f.flattenExpr(node.Else)
		f.stream.Append(instr.NewBlockClose(f.nextID(), openID, "Else"))
	} else {
		f.stream.Append(instr.NewBlockClose(f.nextID(), openID, "If"))
	}
	return openID
}

// flattenAnd desugars `l and r` to `if l then r else l`, reusing LetCopy
// to thread l's already-computed value through the else-arm without
// re-evaluating it.
func (f *Flattener) flattenAnd(node *ast.And) instr.ID {
	condID := f.flattenExpr(node.L)
	ifBlock := &instr.IfBlock{CondID: condID}
	openID := f.nextID()
	f.stream.Append(instr.NewBlockOpen(openID, ifBlock))

	f.flattenExpr(node.R)

	elseID := f.nextID()
	ifBlock.ElseID = elseID
	f.stream.Append(instr.NewElseBlock(elseID, openID, elseID))
	f.stream.Append(instr.NewLetCopy(f.nextID(), condID))
	f.stream.Append(instr.NewBlockClose(f.nextID(), openID, "Else"))
	return openID
}

// flattenOr desugars `l or r` to `if l then l else r`.
func (f *Flattener) flattenOr(node *ast.Or) instr.ID {
	condID := f.flattenExpr(node.L)
	ifBlock := &instr.IfBlock{CondID: condID}
	openID := f.nextID()
	f.stream.Append(instr.NewBlockOpen(openID, ifBlock))

	f.stream.Append(instr.NewLetCopy(f.nextID(), condID))

	elseID := f.nextID()
	ifBlock.ElseID = elseID
	f.stream.Append(instr.NewElseBlock(elseID, openID, elseID))
	f.flattenExpr(node.R)
	f.stream.Append(instr.NewBlockClose(f.nextID(), openID, "Else"))
	return openID
}

func (f *Flattener) flattenLoop(node *ast.Loop) instr.ID {
	openID := f.nextID()
	f.stream.Append(instr.NewBlockOpen(openID, instr.LoopBlock{LocalsDepth: node.LocalsDepth}))

	f.loopOpens = append(f.loopOpens, openID)
	f.flattenExpr(node.Body)
	f.loopOpens = f.loopOpens[:len(f.loopOpens)-1]

	// A Loop has no condition of its own; falling off the end of its
	// body restarts it. Only an explicit Break reaches the BlockClose.
	f.stream.Append(instr.NewContinue(f.nextID(), openID))
	f.stream.Append(instr.NewBlockClose(f.nextID(), openID, "Loop"))
	return openID
}

func (f *Flattener) flattenBreak(node *ast.Break) instr.ID {
	var argID instr.ID
	if node.Exp != nil {
		argID = f.flattenExpr(node.Exp)
	} else {
		argID = f.nullLiteral()
	}
	if len(f.loopOpens) == 0 {
		f.errorf(node, "'break' outside a loop")
		return f.nullLiteral()
	}
	loopID := f.loopOpens[len(f.loopOpens)-1]
	id := f.nextID()
	f.stream.Append(instr.NewBreak(id, argID, loopID))
	return id
}

func (f *Flattener) flattenContinue(node *ast.Continue) instr.ID {
	if len(f.loopOpens) == 0 {
		f.errorf(node, "'continue' outside a loop")
		return f.nullLiteral()
	}
	loopID := f.loopOpens[len(f.loopOpens)-1]
	id := f.nextID()
	f.stream.Append(instr.NewContinue(id, loopID))
	return id
}

func (f *Flattener) flattenReturn(node *ast.Return) instr.ID {
	var argID instr.ID
	if node.Exp != nil {
		argID = f.flattenExpr(node.Exp)
	} else {
		argID = f.nullLiteral()
	}
	if len(f.fnOpens) == 0 {
		f.errorf(node, "'return' outside a function")
		return f.nullLiteral()
	}
	fnID := f.fnOpens[len(f.fnOpens)-1]
	id := f.nextID()
	f.stream.Append(instr.NewReturn(id, argID, fnID))
	return id
}

func (f *Flattener) flattenYield(node *ast.Yield) instr.ID {
	var argID instr.ID
	if node.Exp != nil {
		argID = f.flattenExpr(node.Exp)
	} else {
		argID = f.nullLiteral()
	}
	if len(f.fnOpens) == 0 {
		f.errorf(node, "'yield' outside a generator")
		return f.nullLiteral()
	}
	fnID := f.fnOpens[len(f.fnOpens)-1]
	id := f.nextID()
	f.stream.Append(instr.NewYield(id, argID, fnID))
	return id
}

// flattenCallable compiles a Fn/Generator body inline: the BlockOpen's id
// is the value callers see (the Closure), and normal control flow skips
// straight from open to the matching close without executing the body —
// only an actual Call (interpreted separately) enters it. captures and
// sources are carried on the CallableBlock so internal/interp can build
// the Closure's capture cells from the enclosing frame when it reaches
// this open under normal sequential flow.
func (f *Flattener) flattenCallable(name string, params []ast.Param, captures []ast.Location, sources []ast.CaptureSource, body ast.Node, generator bool) instr.ID {
	paramNames := make([]string, len(params))
	for i, p := range params {
		paramNames[i] = p.Name
	}
	captureNames := make([]string, len(captures))
	for i, c := range captures {
		captureNames[i] = c.Name
	}

	openID := f.nextID()
	f.stream.Append(instr.NewBlockOpen(openID, instr.CallableBlock{
		Params:         paramNames,
		CaptureNames:   captureNames,
		CaptureSources: sources,
		Name:           name,
		IsGenerator:    generator,
	}))

	f.fnOpens = append(f.fnOpens, openID)
	bodyID := f.flattenExpr(body)
	f.fnOpens = f.fnOpens[:len(f.fnOpens)-1]

	// Falling off the end of the body (no explicit return/yield on that
	// path) returns the body's own value.
	f.stream.Append(instr.NewReturn(f.nextID(), bodyID, openID))
	f.stream.Append(instr.NewBlockClose(f.nextID(), openID, "Fn"))
	return openID
}

func (f *Flattener) flattenCall(node *ast.Call) instr.ID {
	fnID := f.flattenExpr(node.Fn)
	argIDs := make([]instr.ID, len(node.Args))
	for i, a := range node.Args {
		argIDs[i] = f.flattenExpr(a)
	}
	id := f.nextID()
	f.stream.Append(instr.NewCall(id, fnID, argIDs, node.Name))
	return id
}

func (f *Flattener) flattenInvoke(node *ast.Invoke) instr.ID {
	objID := f.flattenExpr(node.Obj)
	propID := f.nextID()
	f.stream.Append(instr.NewProperty(propID, objID, node.Method))
	argIDs := make([]instr.ID, len(node.Args))
	for i, a := range node.Args {
		argIDs[i] = f.flattenExpr(a)
	}
	id := f.nextID()
	f.stream.Append(instr.NewCall(id, propID, argIDs, node.Method))
	return id
}

// flattenLaunch compiles the launched expression inline like
// flattenCallable's body, ending it with an explicit Return so the forked
// State executing it (interp.execLaunch) stops there instead of falling
// through into whatever follows the BlockClose in the enclosing stream.
func (f *Flattener) flattenLaunch(node *ast.Launch) instr.ID {
	openID := f.nextID()
	f.stream.Append(instr.NewBlockOpen(openID, instr.LaunchBlock{}))
	bodyID := f.flattenExpr(node.Exp)
	f.stream.Append(instr.NewReturn(f.nextID(), bodyID, openID))
	f.stream.Append(instr.NewBlockClose(f.nextID(), openID, "Launch"))
	return openID
}

// flattenLet allocates a Cell for every binding before any Init runs, so
// a binding that closes over itself (or an earlier sibling that closes
// over it) captures the Cell while it's still empty; SetLocal fills it
// once the binding's own Init has been evaluated. internal/interp is
// responsible for actually pre-allocating the cells on BlockOpen{LetBlock};
// the stream only needs to record, in order, which value id each binding
// was last assigned from.
func (f *Flattener) flattenLet(node *ast.Let) instr.ID {
	names := make([]string, len(node.Bindings))
	for i, b := range node.Bindings {
		names[i] = b.Name
	}
	letBlock := &instr.LetBlock{Vars: names, Depth: node.Depth}
	openID := f.nextID()
	f.stream.Append(instr.NewBlockOpen(openID, letBlock))

	for i, b := range node.Bindings {
		valID := f.flattenExpr(b.Init)
		letBlock.ValIDs = append(letBlock.ValIDs, valID)
		f.stream.Append(instr.NewSetLocal(f.nextID(), node.Depth+i, valID))
	}

	f.flattenExpr(node.Body)

	f.stream.Append(instr.NewBlockClose(f.nextID(), openID, "Let"))
	return openID
}
