// Package runtime implements the Runtime handle: a single owner for the globals object and the monotonic
// instruction-id counter, threaded explicitly through the compiler,
// flattener, and interpreter rather than held in package-level mutable
// statics. (The scalar-interning tables in internal/value remain a
// process-wide content-addressed cache — a narrow, read-mostly exception
// the design note is not aimed at; see that package's doc comment. What
// the design note does warn against — a shared globals Struct or a
// shared id counter that would leak state between independently
// constructed Runtimes, e.g. in parallel tests — is exactly what this
// type avoids by being constructed fresh per program run.)
package runtime

import (
	"fmt"

	"github.com/ursalang/ursa/internal/value"
)

// Runtime owns everything a single program execution shares across its
// compiler/typecheck/flatten/interp passes.
type Runtime struct {
	globals   *value.Struct
	globalOrd []string
	nextID    int
	frozen    bool
}

// New constructs an empty Runtime; the caller (normally
// internal/prelude.Install) populates Globals before compiling user code.
func New() *Runtime {
	return &Runtime{globals: value.NewStruct("Globals", nil, nil)}
}

// Globals returns the frozen-after-startup globals object.
func (r *Runtime) Globals() *value.Struct { return r.globals }

// DefineGlobal installs name=v into the globals object. It is only valid
// before the Runtime is frozen (see Freeze); calling it afterward panics,
// since user programs must never be able to add or rebind globals.
func (r *Runtime) DefineGlobal(name string, v value.Value) {
	if r.frozen {
		panic(fmt.Sprintf("cannot define global %q: globals are frozen", name))
	}
	if r.globals.Has(name) {
		// Rebuild with the new value; NewStruct-based Structs only allow
		// Set on existing keys, so route through that path.
		_ = r.globals.Set(name, v)
		return
	}
	r.globalOrd = append(r.globalOrd, name)
	fields := make(map[string]value.Value, len(r.globalOrd))
	for _, n := range r.globalOrd {
		if n == name {
			fields[n] = v
			continue
		}
		existing, _ := r.globals.Get(n)
		fields[n] = existing
	}
	r.globals = value.NewStruct("Globals", fields, r.globalOrd)
}

// Freeze marks the globals object as immutable; this is a precondition
// for user programs to begin compiling.
func (r *Runtime) Freeze() {
	r.frozen = true
}

// NextID returns the next instruction id and advances the counter,
// preserving unique instruction ids within one flatten pass across
// however many compilation units a single Runtime flattens (the
// top-level program plus any nested Fn/Generator bodies).
func (r *Runtime) NextID() int {
	id := r.nextID
	r.nextID++
	return id
}
