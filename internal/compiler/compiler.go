// Package compiler resolves a raw s-expression tree (internal/sexpr) into
// the post-compile expression tree (internal/ast): it assigns every
// symbol reference to a Local, Capture, or global Property, builds the
// Location records a let/fn/param introduces, and rejects malformed
// forms and invalid lvalues before type checking ever runs.
package compiler

import (
	"fmt"

	"github.com/ursalang/ursa/internal/ast"
	"github.com/ursalang/ursa/internal/errsrc"
	"github.com/ursalang/ursa/internal/runtime"
	"github.com/ursalang/ursa/internal/sexpr"
	"github.com/ursalang/ursa/internal/types"
	"github.com/ursalang/ursa/internal/value"
)

// frame is the compiler's own scope record, one per program-level scope
// (the top-level body) or per Fn/Generator body. It mirrors the shape an
// interpreter Frame will take at runtime: locals grow and shrink like a
// stack, and captures accumulate in the order they are first referenced.
type frame struct {
	locals         []ast.Location
	captures       []ast.Location
	captureSources []ast.CaptureSource
	isGenerator    bool
	loopDepths     []int // stack of len(locals) at each enclosing Loop's entry
}

func (f *frame) findLocal(name string) (int, ast.Location, bool) {
	for i := len(f.locals) - 1; i >= 0; i-- {
		if f.locals[i].Name == name {
			return i, f.locals[i], true
		}
	}
	return 0, ast.Location{}, false
}

func (f *frame) findCapture(name string) (int, ast.Location, bool) {
	for i := len(f.captures) - 1; i >= 0; i-- {
		if f.captures[i].Name == name {
			return i, f.captures[i], true
		}
	}
	return 0, ast.Location{}, false
}

// Compiler turns one compilation unit's sexpr.Node into an ast.Node tree.
// It is single-use: construct one per top-level program; nested
// Fn/Generator bodies are resolved by the same Compiler through its
// frame stack.
type Compiler struct {
	rt     *runtime.Runtime
	frames []*frame
	file   string
	source string
	errs   []error
}

// New returns a Compiler that resolves free symbols against rt's frozen
// globals, attributing errors to file/source for rendering.
func New(rt *runtime.Runtime, file, source string) *Compiler {
	return &Compiler{rt: rt, file: file, source: source}
}

// Compile resolves root as a top-level program body: a single implicit
// frame with no params and no enclosing scope. It returns the resolved
// tree and any compile errors accumulated along the way; the tree may be
// partial if errs is non-empty.
func (c *Compiler) Compile(root sexpr.Node) (ast.Node, []error) {
	c.frames = append(c.frames, &frame{})
	n := c.compileExpr(root)
	return n, c.errs
}

func (c *Compiler) errorf(n sexpr.Node, format string, args ...interface{}) {
	c.errs = append(c.errs, &errsrc.CompileError{
		Message:  fmt.Sprintf(format, args...),
		Interval: c.interval(n),
		Source:   c.source,
		File:     c.file,
	})
}

// interval converts a sexpr.Node's raw byte offset into a line/column
// Interval by scanning c.source. Ursa's JSON input carries only a start
// position per node (gjson reports offsets, not spans), so the interval
// covers a single point; errsrc widens the underline to at least one
// column.
func (c *Compiler) interval(n sexpr.Node) ast.Interval {
	p := position(c.source, n.Pos)
	return ast.Interval{Start: p, End: p}
}

func position(source string, offset int) ast.Pos {
	if offset < 0 || offset > len(source) {
		offset = 0
	}
	line, col := 1, 1
	for i := 0; i < offset && i < len(source); i++ {
		if source[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return ast.Pos{Line: line, Column: col}
}

func (c *Compiler) top() *frame { return c.frames[len(c.frames)-1] }

// compileExpr dispatches on the sexpr Node's shape, returning an ast.Node.
// On error it records a CompileError and returns a Literal(Null) in its
// place so the caller can keep walking the rest of the tree and surface
// every error in one pass rather than stopping at the first.
func (c *Compiler) compileExpr(n sexpr.Node) ast.Node {
	switch n.Kind {
	case sexpr.KindNull:
		return ast.NewLiteral(c.interval(n), value.NewNull())
	case sexpr.KindBool:
		return ast.NewLiteral(c.interval(n), value.NewBoolean(n.Bool))
	case sexpr.KindNumber:
		return ast.NewLiteral(c.interval(n), value.NewNumber(n.Number))
	case sexpr.KindSymbol:
		return c.resolveSymbol(n, n.Symbol)
	case sexpr.KindObject:
		return c.compileObjectLiteral(n, "")
	case sexpr.KindList:
		return c.compileList(n)
	default:
		c.errorf(n, "Malformed expression")
		return c.placeholder(n)
	}
}

func (c *Compiler) placeholder(n sexpr.Node) ast.Node {
	return ast.NewLiteral(c.interval(n), value.NewNull())
}

func (c *Compiler) compileList(n sexpr.Node) ast.Node {
	if len(n.List) == 0 {
		c.errorf(n, "Empty list form")
		return c.placeholder(n)
	}
	if head, ok := n.Head(); ok {
		switch head {
		case "str":
			return c.compileStr(n)
		case "let":
			return c.compileLet(n)
		case "fn":
			return c.compileFn(n, false)
		case "gen":
			return c.compileFn(n, true)
		case "prop":
			return c.compileProp(n)
		case "set":
			return c.compileSet(n)
		case "list":
			return c.compileListLiteral(n)
		case "map":
			return c.compileMapLiteral(n)
		case "seq":
			return c.compileSeq(n)
		case "if":
			return c.compileIf(n)
		case "and":
			return c.compileAndOr(n, true)
		case "or":
			return c.compileAndOr(n, false)
		case "loop":
			return c.compileLoop(n)
		case "break":
			return c.compileBreak(n)
		case "continue":
			return c.compileContinue(n)
		case "return":
			return c.compileReturnYield(n, false)
		case "yield":
			return c.compileReturnYield(n, true)
		case "invoke":
			return c.compileInvoke(n)
		case "await":
			return c.compileAwait(n)
		case "launch":
			return c.compileLaunch(n)
		}
	}
	return c.compileCall(n)
}

func (c *Compiler) compileStr(n sexpr.Node) ast.Node {
	if len(n.List) != 2 || n.List[1].Kind != sexpr.KindSymbol {
		c.errorf(n, "Malformed str form")
		return c.placeholder(n)
	}
	return ast.NewLiteral(c.interval(n), value.NewString(n.List[1].Symbol))
}

// compileType reads a type expression. Ursa's JSON surface names types by
// symbol ("Num", "Any", "Unknown", ...) or omits one (null) to leave it
// unannotated, in which case the type checker infers Any for the slot.
func (c *Compiler) compileType(n sexpr.Node) types.Type {
	switch n.Kind {
	case sexpr.KindNull:
		return nil
	case sexpr.KindSymbol:
		switch n.Symbol {
		case "Any":
			return types.Any
		case "Unknown":
			return types.Unknown
		case "Self":
			return types.Self
		case "Undefined":
			return types.Undefined
		default:
			return &types.TypeConstant{Name: n.Symbol}
		}
	default:
		c.errorf(n, "Malformed type expression")
		return types.Any
	}
}

func (c *Compiler) compileLet(n sexpr.Node) ast.Node {
	if len(n.List) != 3 || n.List[1].Kind != sexpr.KindList {
		c.errorf(n, "Malformed let form")
		return c.placeholder(n)
	}
	f := c.top()
	depth := len(f.locals)

	specs := n.List[1].List
	bindings := make([]ast.Binding, len(specs))
	for i, spec := range specs {
		if spec.Kind != sexpr.KindList || len(spec.List) != 4 {
			c.errorf(spec, "Malformed let binding")
			continue
		}
		kindNode, nameNode, typeNode := spec.List[0], spec.List[1], spec.List[2]
		if kindNode.Kind != sexpr.KindSymbol || nameNode.Kind != sexpr.KindSymbol {
			c.errorf(spec, "Malformed let binding")
			continue
		}
		kind := kindNode.Symbol
		if kind != "const" && kind != "var" {
			c.errorf(kindNode, "Binding kind must be 'const' or 'var'")
			kind = "const"
		}
		loc := ast.Location{Name: nameNode.Symbol, Type: c.compileType(typeNode), Mutable: kind == "var"}
		bindings[i] = ast.Binding{Kind: kind, Name: loc.Name, Type: loc.Type, Location: loc}
		f.locals = append(f.locals, loc)
	}

	for i, spec := range specs {
		if spec.Kind != sexpr.KindList || len(spec.List) != 4 {
			continue
		}
		bindings[i].Init = c.compileExpr(spec.List[3])
	}

	body := c.compileExpr(n.List[2])

	f.locals = f.locals[:depth]
	return ast.NewLet(c.interval(n), bindings, body, depth)
}

func (c *Compiler) compileFn(n sexpr.Node, generator bool) ast.Node {
	if len(n.List) != 4 || n.List[1].Kind != sexpr.KindList {
		c.errorf(n, "Malformed fn form")
		return c.placeholder(n)
	}
	paramSpecs := n.List[1].List
	params := make([]ast.Param, len(paramSpecs))
	paramLocs := make([]ast.Location, len(paramSpecs))
	seen := map[string]bool{}
	for i, p := range paramSpecs {
		if p.Kind != sexpr.KindList || len(p.List) != 2 || p.List[0].Kind != sexpr.KindSymbol {
			c.errorf(p, "Malformed parameter")
			continue
		}
		name := p.List[0].Symbol
		if seen[name] {
			c.errorf(p, "Duplicate parameter %q", name)
		}
		seen[name] = true
		ty := c.compileType(p.List[1])
		params[i] = ast.Param{Name: name, Type: ty}
		paramLocs[i] = ast.Location{Name: name, Type: ty, Mutable: false}
	}

	retType := c.compileType(n.List[2])

	nf := &frame{isGenerator: generator, locals: append([]ast.Location(nil), paramLocs...)}
	c.frames = append(c.frames, nf)
	body := c.compileExpr(n.List[3])
	c.frames = c.frames[:len(c.frames)-1]

	iv := c.interval(n)
	if generator {
		return ast.NewGenerator(iv, "", params, retType, nf.captures, nf.captureSources, body)
	}
	return ast.NewFn(iv, "", params, retType, nf.captures, nf.captureSources, body)
}

func (c *Compiler) compileProp(n sexpr.Node) ast.Node {
	if len(n.List) != 3 || n.List[1].Kind != sexpr.KindSymbol {
		c.errorf(n, "Malformed prop form")
		return c.placeholder(n)
	}
	obj := c.compileExpr(n.List[2])
	return ast.NewProperty(c.interval(n), obj, n.List[1].Symbol)
}

func (c *Compiler) compileSet(n sexpr.Node) ast.Node {
	if len(n.List) != 3 {
		c.errorf(n, "Malformed set form")
		return c.placeholder(n)
	}
	lvalue := c.compileExpr(n.List[1])
	exp := c.compileExpr(n.List[2])

	switch lv := lvalue.(type) {
	case *ast.Local:
		if !lv.Location.Mutable {
			c.errorf(n.List[1], "Cannot assign to non-'var' binding %q", lv.Location.Name)
		}
	case *ast.Capture:
		if !lv.Location.Mutable {
			c.errorf(n.List[1], "Cannot assign to non-'var' binding %q", lv.Location.Name)
		}
	case *ast.Property:
		// validated at runtime: the object's member set may not be
		// statically known until the property's receiver type resolves.
		if lit, ok := lv.Obj.(*ast.Literal); ok && lit.Value == value.Value(c.rt.Globals()) {
			c.errorf(n.List[1], "Cannot assign to global `%s'", lv.Name)
		}
	default:
		c.errorf(n.List[1], "Invalid assignment target")
	}
	return ast.NewSet(c.interval(n), lvalue, exp)
}

func (c *Compiler) compileListLiteral(n sexpr.Node) ast.Node {
	elems := make([]ast.Node, len(n.List)-1)
	for i, e := range n.List[1:] {
		elems[i] = c.compileExpr(e)
	}
	return ast.NewListLiteral(c.interval(n), elems)
}

func (c *Compiler) compileMapLiteral(n sexpr.Node) ast.Node {
	pairs := make([]ast.MapPair, 0, len(n.List)-1)
	for _, pairNode := range n.List[1:] {
		if pairNode.Kind != sexpr.KindList || len(pairNode.List) != 2 {
			c.errorf(pairNode, "Malformed map pair")
			continue
		}
		pairs = append(pairs, ast.MapPair{
			Key: c.compileExpr(pairNode.List[0]),
			Val: c.compileExpr(pairNode.List[1]),
		})
	}
	return ast.NewMapLiteral(c.interval(n), pairs)
}

func (c *Compiler) compileSeq(n sexpr.Node) ast.Node {
	exprs := make([]ast.Node, len(n.List)-1)
	for i, e := range n.List[1:] {
		exprs[i] = c.compileExpr(e)
	}
	return ast.NewSequence(c.interval(n), exprs)
}

func (c *Compiler) compileIf(n sexpr.Node) ast.Node {
	if len(n.List) != 3 && len(n.List) != 4 {
		c.errorf(n, "Malformed if form")
		return c.placeholder(n)
	}
	cond := c.compileExpr(n.List[1])
	then := c.compileExpr(n.List[2])
	var els ast.Node
	if len(n.List) == 4 {
		els = c.compileExpr(n.List[3])
	}
	return ast.NewIf(c.interval(n), cond, then, els)
}

func (c *Compiler) compileAndOr(n sexpr.Node, and bool) ast.Node {
	if len(n.List) != 3 {
		c.errorf(n, "Malformed %s form", n.List[0].Symbol)
		return c.placeholder(n)
	}
	l := c.compileExpr(n.List[1])
	r := c.compileExpr(n.List[2])
	if and {
		return ast.NewAnd(c.interval(n), l, r)
	}
	return ast.NewOr(c.interval(n), l, r)
}

func (c *Compiler) compileLoop(n sexpr.Node) ast.Node {
	if len(n.List) != 2 {
		c.errorf(n, "Malformed loop form")
		return c.placeholder(n)
	}
	f := c.top()
	depth := len(f.locals)
	f.loopDepths = append(f.loopDepths, depth)
	body := c.compileExpr(n.List[1])
	f.loopDepths = f.loopDepths[:len(f.loopDepths)-1]
	return ast.NewLoop(c.interval(n), body, depth)
}

func (c *Compiler) compileBreak(n sexpr.Node) ast.Node {
	if len(c.top().loopDepths) == 0 {
		c.errorf(n, "'break' outside a loop")
	}
	var exp ast.Node
	if len(n.List) == 2 {
		exp = c.compileExpr(n.List[1])
	} else if len(n.List) != 1 {
		c.errorf(n, "Malformed break form")
	}
	return ast.NewBreak(c.interval(n), exp)
}

func (c *Compiler) compileContinue(n sexpr.Node) ast.Node {
	if len(c.top().loopDepths) == 0 {
		c.errorf(n, "'continue' outside a loop")
	}
	if len(n.List) != 1 {
		c.errorf(n, "Malformed continue form")
	}
	return ast.NewContinue(c.interval(n))
}

func (c *Compiler) compileReturnYield(n sexpr.Node, yield bool) ast.Node {
	if len(c.frames) < 2 {
		if yield {
			c.errorf(n, "'yield' outside a generator")
		} else {
			c.errorf(n, "'return' outside a function")
		}
	} else if yield && !c.top().isGenerator {
		c.errorf(n, "'yield' outside a generator")
	}
	var exp ast.Node
	if len(n.List) == 2 {
		exp = c.compileExpr(n.List[1])
	} else if len(n.List) != 1 {
		c.errorf(n, "Malformed %s form", n.List[0].Symbol)
	}
	if yield {
		return ast.NewYield(c.interval(n), exp)
	}
	return ast.NewReturn(c.interval(n), exp)
}

func (c *Compiler) compileInvoke(n sexpr.Node) ast.Node {
	if len(n.List) < 3 || n.List[2].Kind != sexpr.KindSymbol {
		c.errorf(n, "Malformed invoke form")
		return c.placeholder(n)
	}
	obj := c.compileExpr(n.List[1])
	method := n.List[2].Symbol
	args := make([]ast.Node, len(n.List)-3)
	for i, a := range n.List[3:] {
		args[i] = c.compileExpr(a)
	}
	return ast.NewInvoke(c.interval(n), obj, method, args)
}

func (c *Compiler) compileAwait(n sexpr.Node) ast.Node {
	if len(n.List) != 2 {
		c.errorf(n, "Malformed await form")
		return c.placeholder(n)
	}
	return ast.NewAwait(c.interval(n), c.compileExpr(n.List[1]))
}

func (c *Compiler) compileLaunch(n sexpr.Node) ast.Node {
	if len(n.List) != 2 {
		c.errorf(n, "Malformed launch form")
		return c.placeholder(n)
	}
	return ast.NewLaunch(c.interval(n), c.compileExpr(n.List[1]))
}

// compileCall handles the general-call shape `[fnExpr, args...]`, reached
// once none of the named keyword forms matched.
func (c *Compiler) compileCall(n sexpr.Node) ast.Node {
	fnExpr := c.compileExpr(n.List[0])
	args := make([]ast.Node, len(n.List)-1)
	for i, a := range n.List[1:] {
		args[i] = c.compileExpr(a)
	}
	name := callName(fnExpr)
	return ast.NewCall(c.interval(n), fnExpr, args, name)
}

func callName(n ast.Node) string {
	switch v := n.(type) {
	case *ast.Local:
		return v.Location.Name
	case *ast.Capture:
		return v.Location.Name
	case *ast.Property:
		return v.Name
	case *ast.Global:
		return v.Name
	default:
		return "<anonymous>"
	}
}

func (c *Compiler) compileObjectLiteral(n sexpr.Node, typeName string) ast.Node {
	members := make([]ast.ObjectMember, 0, len(n.ObjectKeys))
	for i, k := range n.ObjectKeys {
		members = append(members, ast.ObjectMember{Name: k, Exp: c.compileExpr(n.ObjectVals[i])})
	}
	if typeName == "" {
		typeName = "Object"
	}
	return ast.NewObjectLiteral(c.interval(n), typeName, members)
}

// resolveSymbol implements the binding-resolution order: local slot in
// the current frame, then a capture already recorded in the current
// frame, then an outer frame (walked recursively, chaining a new capture
// through every intervening frame so a value can flow from an
// arbitrarily distant enclosing scope into a deeply nested closure),
// then the frozen globals object, and finally an "Undefined symbol"
// error.
func (c *Compiler) resolveSymbol(n sexpr.Node, name string) ast.Node {
	node, err := c.resolveAt(len(c.frames)-1, n, name)
	if err != "" {
		c.errorf(n, "%s", err)
		return c.placeholder(n)
	}
	return node
}

func (c *Compiler) resolveAt(depth int, n sexpr.Node, name string) (ast.Node, string) {
	f := c.frames[depth]

	if idx, loc, ok := f.findLocal(name); ok {
		return ast.NewLocal(c.interval(n), idx, loc), ""
	}
	if idx, loc, ok := f.findCapture(name); ok {
		return ast.NewCapture(c.interval(n), idx, loc), ""
	}

	if depth == 0 {
		if v, ok := c.rt.Globals().Get(name); ok {
			globals := ast.NewLiteral(c.interval(n), c.rt.Globals())
			_ = v
			return ast.NewProperty(c.interval(n), globals, name), ""
		}
		return nil, fmt.Sprintf("Undefined symbol %q", name)
	}

	outer, err := c.resolveAt(depth-1, n, name)
	if err != "" {
		return nil, err
	}
	if prop, ok := outer.(*ast.Property); ok {
		// A global resolved in an outer frame: globals are reached via a
		// constant Literal, not a per-frame capture, so every frame sees
		// the same Property node shape with no capture plumbing needed.
		return prop, ""
	}

	var src ast.CaptureSource
	var loc ast.Location
	switch outerNode := outer.(type) {
	case *ast.Local:
		src = ast.CaptureSource{FromLocal: true, Index: outerNode.Index}
		loc = outerNode.Location
	case *ast.Capture:
		src = ast.CaptureSource{FromLocal: false, Index: outerNode.Index}
		loc = outerNode.Location
	default:
		return nil, fmt.Sprintf("Cannot capture %q", name)
	}

	idx := len(f.captures)
	f.captures = append(f.captures, loc)
	f.captureSources = append(f.captureSources, src)
	return ast.NewCapture(c.interval(n), idx, loc), ""
}

// Errors renders any accumulated compile errors through errsrc.
func (c *Compiler) Errors() string {
	return errsrc.FormatErrors(c.errs, false)
}
