package value

import "fmt"

// Cell is a one-level indirection box used for capture slots: a closure holds the cell, not a direct value, so that
// mutating a captured variable after closure creation remains visible
// inside the closure, and so that recursive `let` bindings and
// self-capturing closures can be wired up before their initializer has
// finished evaluating.
type Cell struct {
	V Value
}

// NewCell creates a capture cell holding v.
func NewCell(v Value) *Cell {
	return &Cell{V: v}
}

// Body is the opaque, interpreter-owned representation of a closure's
// instruction entry point. internal/value never inspects it; only
// internal/interp constructs and dereferences concrete Body values. This
// keeps the value package free of a dependency on internal/instr.
type Body interface {
	bodyMarker()
}

// Closure is a user-defined, non-generator function value.
type Closure struct {
	Name     string
	Params   []string
	Captures []*Cell
	Entry    Body
}

func (c *Closure) Type() string   { return "Closure" }
func (c *Closure) String() string { return fmt.Sprintf("<fn %s>", nameOr(c.Name, "anonymous")) }
func (c *Closure) Equals(other Value) bool {
	return c == other
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

// GeneratorClosure is a user-defined generator function value; calling it
// produces a Continuation rather than running the body immediately.
type GeneratorClosure struct {
	Name     string
	Params   []string
	Captures []*Cell
	Entry    Body
}

func (g *GeneratorClosure) Type() string   { return "GeneratorClosure" }
func (g *GeneratorClosure) String() string { return fmt.Sprintf("<gen %s>", nameOr(g.Name, "anonymous")) }
func (g *GeneratorClosure) Equals(other Value) bool {
	return g == other
}

// Continuation represents a suspended generator's state. Resume is supplied by internal/interp and drives the parked
// interpreter State forward one yield at a time; internal/value never
// looks inside it. Done is a monotonic flag: once true, further Call()s
// must return Null without invoking Resume again.
type Continuation struct {
	Done   bool
	Resume func(arg Value) (yielded Value, done bool, err error)
}

func (c *Continuation) Type() string   { return "Continuation" }
func (c *Continuation) String() string { return "<continuation>" }
func (c *Continuation) Equals(other Value) bool {
	return c == other
}

// Call resumes the continuation with arg as the value delivered to the
// parked yield expression. Once Done, it always returns Null.
func (c *Continuation) Call(arg Value) (Value, error) {
	if c.Done {
		return NewNull(), nil
	}
	v, done, err := c.Resume(arg)
	if err != nil {
		return nil, err
	}
	if done {
		c.Done = true
	}
	return v, nil
}

// Promise represents a pending or settled asynchronous Value. It is driven entirely by the single-threaded cooperative
// scheduler in internal/interp; there is no locking because there is no
// concurrent access ().
type Promise struct {
	settled bool
	value   Value
	err     error
	waiters []func(Value, error)
}

// NewPromise creates a pending Promise.
func NewPromise() *Promise {
	return &Promise{}
}

func (p *Promise) Type() string   { return "Promise" }
func (p *Promise) String() string { return "<promise>" }
func (p *Promise) Equals(other Value) bool {
	return p == other
}

// Settled reports whether Resolve/Reject has been called.
func (p *Promise) Settled() bool { return p.settled }

// Result returns the settled value/error; callers must check Settled
// first.
func (p *Promise) Result() (Value, error) { return p.value, p.err }

// Resolve settles the promise with either a value or an error (mutually
// exclusive) and runs any registered waiters.
func (p *Promise) Resolve(v Value, err error) {
	if p.settled {
		return
	}
	p.settled = true
	p.value = v
	p.err = err
	for _, w := range p.waiters {
		w(v, err)
	}
	p.waiters = nil
}

// OnSettle registers cb to run once the promise settles; if already
// settled, cb runs immediately.
func (p *Promise) OnSettle(cb func(Value, error)) {
	if p.settled {
		cb(p.value, p.err)
		return
	}
	p.waiters = append(p.waiters, cb)
}

// NativeFn wraps a synchronous host-provided callable.
type NativeFn struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (n *NativeFn) Type() string   { return "NativeFn" }
func (n *NativeFn) String() string { return fmt.Sprintf("<native fn %s>", nameOr(n.Name, "anonymous")) }
func (n *NativeFn) Equals(other Value) bool {
	return n == other
}

// Call invokes the wrapped function.
func (n *NativeFn) Call(args []Value) (Value, error) {
	return n.Fn(args)
}

// NativeAsyncFn wraps a host-provided callable that returns a Promise.
// The interpreter does not await such a call implicitly: the call's value
// is the Promise itself, and only an explicit await yields its result.
type NativeAsyncFn struct {
	Name string
	Fn   func(args []Value) (*Promise, error)
}

func (n *NativeAsyncFn) Type() string { return "NativeAsyncFn" }
func (n *NativeAsyncFn) String() string {
	return fmt.Sprintf("<native async fn %s>", nameOr(n.Name, "anonymous"))
}
func (n *NativeAsyncFn) Equals(other Value) bool {
	return n == other
}

// Call invokes the wrapped function, returning its Promise.
func (n *NativeAsyncFn) Call(args []Value) (*Promise, error) {
	return n.Fn(args)
}

// NativeObject exposes an opaque host object via get/set by name. It is the escape hatch the prelude uses for `fs` and similar
// host resources.
type NativeObject struct {
	TypeName string
	Getter   func(name string) (Value, bool)
	Setter   func(name string, v Value) error
	// Release, if set, is called when the host wants to eagerly release
	// the underlying resource (e.g. closing a directory handle).
	Release func() error
}

func (n *NativeObject) Type() string   { return n.TypeName }
func (n *NativeObject) String() string { return fmt.Sprintf("<native %s>", n.TypeName) }
func (n *NativeObject) Equals(other Value) bool {
	return n == other
}

func (n *NativeObject) Get(name string) (Value, bool) {
	if n.Getter == nil {
		return nil, false
	}
	return n.Getter(name)
}

func (n *NativeObject) Set(name string, v Value) error {
	if n.Setter == nil {
		return fmt.Errorf("cannot set %q on %s: read-only", name, n.TypeName)
	}
	return n.Setter(name, v)
}
