// Package ast defines the post-compile expression tree: one exported
// struct per node kind, each carrying a source Interval and
// a derived types.Type filled in by internal/typecheck.
package ast

import (
	"fmt"

	"github.com/ursalang/ursa/internal/types"
	"github.com/ursalang/ursa/internal/value"
)

// Pos is a single line/column source position (1-indexed), derived by the
// compiler from the byte offsets the sexpr reader records.
type Pos struct {
	Line   int
	Column int
}

// Interval is a half-open [Start, End) source range used by error
// rendering to underline the whole offending expression,
// not just its starting column.
type Interval struct {
	Start Pos
	End   Pos
}

// Node is implemented by every expression tree node.
type Node interface {
	// Interval returns the node's source extent.
	Interval() Interval
	// Type returns the node's derived type, set by internal/typecheck;
	// nil before type checking runs, except for Local, Capture and Global
	// nodes, which carry their declared type from construction.
	Type() types.Type
	// SetType records the derived type during type checking.
	SetType(types.Type)
	// String renders the node for debugging.
	String() string
	node()
}

// base is embedded by every concrete node to supply Interval/Type
// plumbing without repeating it per node kind.
type base struct {
	iv Interval
	ty types.Type
}

func (b *base) Interval() Interval   { return b.iv }
func (b *base) Type() types.Type     { return b.ty }
func (b *base) SetType(t types.Type) { b.ty = t }
func (*base) node()                  {}

// Location is the compile-time binding record for a Local/Capture slot
//: a name, its declared/inferred type, and whether it was
// declared `var` (and so may be the target of `set`).
type Location struct {
	Name    string
	Type    types.Type
	Mutable bool
}

// Literal is a constant Value baked in at compile time.
type Literal struct {
	base
	Value value.Value
}

func NewLiteral(iv Interval, v value.Value) *Literal { return &Literal{base{iv: iv}, v} }
func (l *Literal) String() string                    { return l.Value.String() }

// Global references a prelude binding by name.
type Global struct {
	base
	Name  string
	Value value.Value
}

func NewGlobal(iv Interval, name string, v value.Value, t types.Type) *Global {
	g := &Global{base{iv: iv, ty: t}, name, v}
	return g
}
func (g *Global) String() string { return g.Name }

// Local references a slot in the current frame's locals array.
type Local struct {
	base
	Index    int
	Location Location
}

func NewLocal(iv Interval, index int, loc Location) *Local {
	return &Local{base{iv: iv, ty: loc.Type}, index, loc}
}
func (l *Local) String() string { return fmt.Sprintf("local[%d:%s]", l.Index, l.Location.Name) }

// Capture references a slot in the current frame's captures array.
type Capture struct {
	base
	Index    int
	Location Location
}

func NewCapture(iv Interval, index int, loc Location) *Capture {
	return &Capture{base{iv: iv, ty: loc.Type}, index, loc}
}
func (c *Capture) String() string { return fmt.Sprintf("capture[%d:%s]", c.Index, c.Location.Name) }

// Property reads a named member off an object expression.
type Property struct {
	base
	Obj  Node
	Name string
}

func NewProperty(iv Interval, obj Node, name string) *Property {
	return &Property{base{iv: iv}, obj, name}
}
func (p *Property) String() string { return fmt.Sprintf("%s.%s", p.Obj, p.Name) }

// Set assigns exp to an lvalue (a Local/Capture/Property node compiled in
// lvalue position).
type Set struct {
	base
	LValue Node
	Exp    Node
}

func NewSet(iv Interval, lvalue, exp Node) *Set { return &Set{base{iv: iv}, lvalue, exp} }
func (s *Set) String() string                   { return fmt.Sprintf("%s := %s", s.LValue, s.Exp) }

// ObjectLiteral constructs a Struct value from name→expression pairs.
type ObjectLiteral struct {
	base
	Name    string // declared struct type name, "" if anonymous
	Members []ObjectMember
}

// ObjectMember is one name:exp pair of an ObjectLiteral, in source order.
type ObjectMember struct {
	Name string
	Exp  Node
}

func NewObjectLiteral(iv Interval, name string, members []ObjectMember) *ObjectLiteral {
	return &ObjectLiteral{base: base{iv: iv}, Name: name, Members: members}
}
func (o *ObjectLiteral) String() string { return fmt.Sprintf("%s{...}", o.Name) }

// ListLiteral constructs a List value from element expressions.
type ListLiteral struct {
	base
	Elems []Node
}

func NewListLiteral(iv Interval, elems []Node) *ListLiteral { return &ListLiteral{base{iv: iv}, elems} }
func (l *ListLiteral) String() string                       { return "[...]" }

// MapLiteral constructs a Map value from key/value expression pairs.
type MapLiteral struct {
	base
	Pairs []MapPair
}

// MapPair is one key/value expression pair of a MapLiteral.
type MapPair struct {
	Key Node
	Val Node
}

func NewMapLiteral(iv Interval, pairs []MapPair) *MapLiteral { return &MapLiteral{base{iv: iv}, pairs} }
func (m *MapLiteral) String() string                         { return "{...}" }

// Sequence evaluates each child in order; its type/value is its last
// child's, or Null if empty.
type Sequence struct {
	base
	Exprs []Node
}

func NewSequence(iv Interval, exprs []Node) *Sequence { return &Sequence{base{iv: iv}, exprs} }
func (s *Sequence) String() string                    { return "seq(...)" }

// If is a conditional expression; Else is nil for a one-armed if.
type If struct {
	base
	Cond Node
	Then Node
	Else Node
}

func NewIf(iv Interval, cond, then, els Node) *If { return &If{base{iv: iv}, cond, then, els} }
func (i *If) String() string                       { return fmt.Sprintf("if %s then %s", i.Cond, i.Then) }

// And/Or short-circuit logical operators.
type And struct {
	base
	L, R Node
}

func NewAnd(iv Interval, l, r Node) *And { return &And{base{iv: iv}, l, r} }
func (a *And) String() string            { return fmt.Sprintf("(%s and %s)", a.L, a.R) }

type Or struct {
	base
	L, R Node
}

func NewOr(iv Interval, l, r Node) *Or { return &Or{base{iv: iv}, l, r} }
func (o *Or) String() string            { return fmt.Sprintf("(%s or %s)", o.L, o.R) }

// Loop is an unconditional loop whose body runs until a Break; LocalsDepth
// is the compiler-recorded locals-stack depth at loop entry.
type Loop struct {
	base
	Body        Node
	LocalsDepth int
}

func NewLoop(iv Interval, body Node, localsDepth int) *Loop {
	return &Loop{base{iv: iv}, body, localsDepth}
}
func (l *Loop) String() string { return "loop(...)" }

// Break exits the nearest enclosing Loop, optionally carrying a value.
type Break struct {
	base
	Exp Node // nil for a valueless break
}

func NewBreak(iv Interval, exp Node) *Break { return &Break{base{iv: iv}, exp} }
func (b *Break) String() string              { return "break" }

// Continue restarts the nearest enclosing Loop's body.
type Continue struct {
	base
}

func NewContinue(iv Interval) *Continue { return &Continue{base{iv: iv}} }
func (*Continue) String() string        { return "continue" }

// Return exits the nearest enclosing Fn, optionally carrying a value.
type Return struct {
	base
	Exp Node
}

func NewReturn(iv Interval, exp Node) *Return { return &Return{base{iv: iv}, exp} }
func (r *Return) String() string               { return "return" }

// Yield suspends the nearest enclosing Generator, carrying a value back
// to the caller/resumer.
type Yield struct {
	base
	Exp Node
}

func NewYield(iv Interval, exp Node) *Yield { return &Yield{base{iv: iv}, exp} }
func (y *Yield) String() string              { return "yield" }

// Param is a compiled function parameter (name + declared type).
type Param struct {
	Name string
	Type types.Type
}

// CaptureSource records, for one entry of a Fn/Generator's Captures list,
// where in the *enclosing* frame its cell comes from: an outer Local
// slot or an outer Capture slot.
type CaptureSource struct {
	FromLocal bool // true: outer Local[Index]; false: outer Capture[Index]
	Index     int
}

// Fn is a non-generator function literal. Captures lists the outer
// Locations discovered during compilation, in order of first reference;
// CaptureSources is the parallel list of where each one comes from in
// the enclosing frame.
type Fn struct {
	base
	Name           string
	Params         []Param
	ReturnType     types.Type
	Captures       []Location
	CaptureSources []CaptureSource
	Body           Node
}

func NewFn(iv Interval, name string, params []Param, ret types.Type, captures []Location, sources []CaptureSource, body Node) *Fn {
	return &Fn{base{iv: iv}, name, params, ret, captures, sources, body}
}
func (f *Fn) String() string { return fmt.Sprintf("fn %s(...)", f.Name) }

// Generator is a generator function literal; calling it produces a
// Continuation instead of running the body.
type Generator struct {
	base
	Name           string
	Params         []Param
	ReturnType     types.Type
	Captures       []Location
	CaptureSources []CaptureSource
	Body           Node
}

func NewGenerator(iv Interval, name string, params []Param, ret types.Type, captures []Location, sources []CaptureSource, body Node) *Generator {
	return &Generator{base{iv: iv}, name, params, ret, captures, sources, body}
}
func (g *Generator) String() string { return fmt.Sprintf("gen %s(...)", g.Name) }

// Call invokes fn with args.
type Call struct {
	base
	Fn   Node
	Args []Node
	Name string // callee name, for error messages/tracebacks
}

func NewCall(iv Interval, fn Node, args []Node, name string) *Call {
	return &Call{base{iv: iv}, fn, args, name}
}
func (c *Call) String() string { return fmt.Sprintf("%s(...)", c.Name) }

// Invoke calls a method named Method on Obj with Args.
type Invoke struct {
	base
	Obj    Node
	Method string
	Args   []Node
}

func NewInvoke(iv Interval, obj Node, method string, args []Node) *Invoke {
	return &Invoke{base{iv: iv}, obj, method, args}
}
func (i *Invoke) String() string { return fmt.Sprintf("%s.%s(...)", i.Obj, i.Method) }

// Await suspends until Exp (a Promise) resolves.
type Await struct {
	base
	Exp Node
}

func NewAwait(iv Interval, exp Node) *Await { return &Await{base{iv: iv}, exp} }
func (a *Await) String() string              { return fmt.Sprintf("await %s", a.Exp) }

// Launch forks Exp into a new cooperative State, returning a Promise for
// its eventual result.
type Launch struct {
	base
	Exp Node
}

func NewLaunch(iv Interval, exp Node) *Launch { return &Launch{base{iv: iv}, exp} }
func (l *Launch) String() string               { return fmt.Sprintf("launch %s", l.Exp) }

// Binding is one `let` binding: kind (const/var), name, declared type,
// and initializer expression.
type Binding struct {
	Kind string // "const" or "var"
	Name string
	Type types.Type
	Init Node
	// Location is filled in by the compiler once the binding is
	// allocated into the current frame, before Init is compiled, so that
	// later bindings (and Init itself, for recursive lets) may refer to
	// it.
	Location Location
}

// Let allocates Bindings into the current frame, then compiles Body with
// those locations in scope. Depth is the frame-relative local index of
// Bindings[0] (the compiler's locals-stack depth before this Let pushed
// its bindings); Bindings[i] occupies local slot Depth+i, matching the
// index every Local node referencing it was resolved to.
type Let struct {
	base
	Bindings []Binding
	Body     Node
	Depth    int
}

func NewLet(iv Interval, bindings []Binding, body Node, depth int) *Let {
	return &Let{base{iv: iv}, bindings, body, depth}
}
func (l *Let) String() string { return "let(...)" }
