package prelude

import (
	"bytes"
	"testing"

	"github.com/ursalang/ursa/internal/compiler"
	"github.com/ursalang/ursa/internal/flatten"
	"github.com/ursalang/ursa/internal/interp"
	"github.com/ursalang/ursa/internal/runtime"
	"github.com/ursalang/ursa/internal/sexpr"
	"github.com/ursalang/ursa/internal/value"
)

func mustInstall(t *testing.T, out *bytes.Buffer) *runtime.Runtime {
	t.Helper()
	rt := runtime.New()
	if err := Install(rt, out); err != nil {
		t.Fatalf("Install: %v", err)
	}
	rt.Freeze()
	return rt
}

func runWithGlobals(t *testing.T, rt *runtime.Runtime, src string) (value.Value, error) {
	t.Helper()
	n, err := sexpr.Read(src)
	if err != nil {
		t.Fatalf("sexpr.Read: %v", err)
	}
	c := compiler.New(rt, "test.ursa", src)
	tree, cerrs := c.Compile(n)
	if len(cerrs) != 0 {
		t.Fatalf("unexpected compile errors: %v", cerrs)
	}
	fl := flatten.New(rt, "test.ursa", src)
	stream, ferrs := fl.Flatten(tree)
	if len(ferrs) != 0 {
		t.Fatalf("unexpected flatten errors: %v", ferrs)
	}
	if err := stream.Validate(); err != nil {
		t.Fatalf("stream failed validation: %v", err)
	}
	return interp.New("test.ursa", src).Run(stream)
}

func TestInstallDefinesFixedGlobals(t *testing.T) {
	rt := mustInstall(t, &bytes.Buffer{})
	for _, name := range []string{"version", "debug", "fs", "Promise", "fetch", "js", "jslib", "range"} {
		if _, ok := rt.Globals().Get(name); !ok {
			t.Fatalf("expected global %q to be defined after Install", name)
		}
	}
}

func TestVersionGlobalIsAString(t *testing.T) {
	rt := mustInstall(t, &bytes.Buffer{})
	v, err := runWithGlobals(t, rt, `"version"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := v.(value.String); !ok {
		t.Fatalf("expected version to be a String, got %T", v)
	}
}

func TestDebugGlobalWritesToOut(t *testing.T) {
	var out bytes.Buffer
	rt := mustInstall(t, &out)
	_, err := runWithGlobals(t, rt, `["debug",["str","hello"],1]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "hello 1\n" {
		t.Fatalf("got debug output %q, want %q", out.String(), "hello 1\n")
	}
}

func TestRangeBuildsAscendingList(t *testing.T) {
	rt := mustInstall(t, &bytes.Buffer{})
	v, err := runWithGlobals(t, rt, `["range",3]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lst, ok := v.(*value.List)
	if !ok {
		t.Fatalf("expected a List, got %T", v)
	}
	if len(lst.Elems) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(lst.Elems))
	}
	for i, e := range lst.Elems {
		if e.String() != itoa(i) {
			t.Fatalf("element %d: got %s, want %d", i, e, i)
		}
	}
}

func itoa(i int) string {
	return value.NewNumber(float64(i)).String()
}

func TestJSUseReportsNoBridge(t *testing.T) {
	rt := mustInstall(t, &bytes.Buffer{})
	_, err := runWithGlobals(t, rt, `["invoke","js","use",["str","fs"]]`)
	if err == nil {
		t.Fatalf("expected an error from js.use with no bridge configured")
	}
}
