// Package prelude populates a Runtime's globals object before any user
// program compiles: a handful of native bindings (version, debug, fs,
// Promise, fetch, js, jslib), plus a small bootstrap script that adds
// language-level helpers on top of those natives using the same
// compiler/flatten/interp pipeline user programs go through.
package prelude

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ursalang/ursa/internal/compiler"
	"github.com/ursalang/ursa/internal/flatten"
	"github.com/ursalang/ursa/internal/interp"
	"github.com/ursalang/ursa/internal/runtime"
	"github.com/ursalang/ursa/internal/sexpr"
	"github.com/ursalang/ursa/internal/value"
)

// Version is the engine version string exposed as the `version` global.
const Version = "0.1.0"

// Install populates rt's globals with the fixed set of native bindings and
// then runs the bootstrap script through rt, adding whatever the bootstrap
// script itself binds (e.g. range) on top. Must run before rt.Freeze.
func Install(rt *runtime.Runtime, out io.Writer) error {
	rt.DefineGlobal("version", value.NewString(Version))
	rt.DefineGlobal("debug", newDebugFn(out))
	rt.DefineGlobal("fs", newFsFn())
	rt.DefineGlobal("Promise", newPromiseFn())
	rt.DefineGlobal("fetch", newFetchFn())
	rt.DefineGlobal("js", newJSStruct())
	rt.DefineGlobal("jslib", newJSLibStruct())

	return runBootstrap(rt)
}

// newDebugFn builds the `debug` native: writes every argument's String()
// form space-separated to out, followed by a newline, and returns Null.
func newDebugFn(out io.Writer) *value.NativeFn {
	return &value.NativeFn{
		Name: "debug",
		Fn: func(args []value.Value) (value.Value, error) {
			for i, a := range args {
				if i > 0 {
					fmt.Fprint(out, " ")
				}
				fmt.Fprint(out, a.String())
			}
			fmt.Fprintln(out)
			return value.NewNull(), nil
		},
	}
}

// newFsFn builds the `fs` native: called with a root path, it returns a
// NativeObject whose Get/Set read and write files relative to that root by
// name, treating the key as a path joined onto root.
func newFsFn() *value.NativeFn {
	return &value.NativeFn{
		Name: "fs",
		Fn: func(args []value.Value) (value.Value, error) {
			root := "."
			if len(args) > 0 {
				s, ok := args[0].(value.String)
				if !ok {
					return nil, fmt.Errorf("fs: root must be a String")
				}
				root = s.Raw()
			}
			return newFsObject(root), nil
		},
	}
}

func newFsObject(root string) *value.NativeObject {
	resolve := func(name string) string {
		return filepath.Join(root, filepath.Clean("/"+name))
	}
	return &value.NativeObject{
		TypeName: "Fs",
		Getter: func(name string) (value.Value, bool) {
			b, err := os.ReadFile(resolve(name))
			if err != nil {
				return value.NewNull(), true
			}
			return value.NewString(string(b)), true
		},
		Setter: func(name string, v value.Value) error {
			s, ok := v.(value.String)
			if !ok {
				return fmt.Errorf("fs: value written to %q must be a String", name)
			}
			return os.WriteFile(resolve(name), []byte(s.Raw()), 0o644)
		},
	}
}

// newPromiseFn builds the `Promise` native async constructor: it takes an
// executor callable, calls it synchronously (per the eager-completion
// scheduling model) with resolve and reject callables, and returns the
// Promise they settle. The executor's return value is ignored; an error
// from the executor rejects the Promise if it is still pending, and a
// Promise neither resolved nor rejected by the executor resolves to Null.
func newPromiseFn() *value.NativeAsyncFn {
	return &value.NativeAsyncFn{
		Name: "Promise",
		Fn: func(args []value.Value) (*value.Promise, error) {
			p := value.NewPromise()
			if len(args) == 0 {
				p.Resolve(value.NewNull(), nil)
				return p, nil
			}
			if !isCallable(args[0]) {
				return nil, fmt.Errorf("Promise: executor must be callable")
			}
			resolve := &value.NativeFn{Name: "resolve", Fn: func(resArgs []value.Value) (value.Value, error) {
				var v value.Value = value.NewNull()
				if len(resArgs) > 0 {
					v = resArgs[0]
				}
				p.Resolve(v, nil)
				return value.NewNull(), nil
			}}
			reject := &value.NativeFn{Name: "reject", Fn: func(rejArgs []value.Value) (value.Value, error) {
				msg := "promise rejected"
				if len(rejArgs) > 0 {
					msg = rejArgs[0].String()
				}
				p.Resolve(value.NewNull(), fmt.Errorf("%s", msg))
				return value.NewNull(), nil
			}}
			if _, err := interp.CallValue("<promise>", "", args[0], []value.Value{resolve, reject}); err != nil {
				if !p.Settled() {
					p.Resolve(value.NewNull(), err)
				}
				return p, nil
			}
			if !p.Settled() {
				p.Resolve(value.NewNull(), nil)
			}
			return p, nil
		},
	}
}

func isCallable(v value.Value) bool {
	switch v.(type) {
	case *value.Closure, *value.NativeFn, *value.Continuation:
		return true
	default:
		return false
	}
}

// newFetchFn builds the `fetch` native async: a minimal synchronous HTTP
// GET, settling its Promise with the response body as a String, or an
// error for any non-2xx status or transport failure.
func newFetchFn() *value.NativeAsyncFn {
	client := &http.Client{Timeout: 30 * time.Second}
	return &value.NativeAsyncFn{
		Name: "fetch",
		Fn: func(args []value.Value) (*value.Promise, error) {
			p := value.NewPromise()
			if len(args) == 0 {
				p.Resolve(nil, fmt.Errorf("fetch: missing url argument"))
				return p, nil
			}
			urlVal, ok := args[0].(value.String)
			if !ok {
				p.Resolve(nil, fmt.Errorf("fetch: url must be a String"))
				return p, nil
			}
			resp, err := client.Get(urlVal.Raw())
			if err != nil {
				p.Resolve(nil, fmt.Errorf("fetch: %w", err))
				return p, nil
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				p.Resolve(nil, fmt.Errorf("fetch: %w", err))
				return p, nil
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				p.Resolve(nil, fmt.Errorf("fetch: %s returned %d", urlVal.Raw(), resp.StatusCode))
				return p, nil
			}
			p.Resolve(value.NewString(string(body)), nil)
			return p, nil
		},
	}
}

// newJSStruct builds the `js` global: a Struct whose `use` method takes a
// module specifier and reports that FFI into the host's original language
// runtime is outside this engine's scope.
func newJSStruct() *value.Struct {
	s := value.NewStruct("JS", nil, nil)
	s.BindMethod("use", &value.NativeFn{
		Name: "use",
		Fn: func(args []value.Value) (value.Value, error) {
			name := "?"
			if len(args) > 0 {
				name = args[0].String()
			}
			return nil, fmt.Errorf("js.use: no host bridge configured for %s", name)
		},
	})
	return s
}

// newJSLibStruct mirrors `js` for the library-loading variant (`jslib`):
// same unimplemented-bridge shape, distinct TypeName so error messages and
// TypeOf distinguish the two.
func newJSLibStruct() *value.Struct {
	s := value.NewStruct("JSLib", nil, nil)
	s.BindMethod("use", &value.NativeFn{
		Name: "use",
		Fn: func(args []value.Value) (value.Value, error) {
			name := "?"
			if len(args) > 0 {
				name = args[0].String()
			}
			return nil, fmt.Errorf("jslib.use: no host bridge configured for %s", name)
		},
	})
	return s
}

// runBootstrap compiles and runs bootstrapSource through rt's own
// pipeline, then copies every field of the struct the bootstrap evaluates
// to into rt's globals. The bootstrap runs with rt not yet frozen,
// since it needs to read the natives just installed above.
func runBootstrap(rt *runtime.Runtime) error {
	n, err := sexpr.Read(bootstrapSource)
	if err != nil {
		return fmt.Errorf("prelude: bootstrap: %w", err)
	}
	c := compiler.New(rt, "<prelude>", bootstrapSource)
	tree, cerrs := c.Compile(n)
	if len(cerrs) != 0 {
		return fmt.Errorf("prelude: bootstrap compile errors: %v", cerrs)
	}
	fl := flatten.New(rt, "<prelude>", bootstrapSource)
	stream, ferrs := fl.Flatten(tree)
	if len(ferrs) != 0 {
		return fmt.Errorf("prelude: bootstrap flatten errors: %v", ferrs)
	}
	if err := stream.Validate(); err != nil {
		return fmt.Errorf("prelude: bootstrap stream invalid: %w", err)
	}
	result, err := interp.New("<prelude>", bootstrapSource).Run(stream)
	if err != nil {
		return fmt.Errorf("prelude: bootstrap run: %w", err)
	}
	bindings, ok := result.(*value.Struct)
	if !ok {
		return fmt.Errorf("prelude: bootstrap must evaluate to a struct of helper bindings")
	}
	for _, name := range bindings.Fields() {
		v, _ := bindings.Get(name)
		rt.DefineGlobal(name, v)
	}
	return nil
}
