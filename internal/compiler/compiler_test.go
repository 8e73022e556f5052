package compiler

import (
	"strings"
	"testing"

	"github.com/ursalang/ursa/internal/ast"
	"github.com/ursalang/ursa/internal/runtime"
	"github.com/ursalang/ursa/internal/sexpr"
	"github.com/ursalang/ursa/internal/value"
)

func mustRead(t *testing.T, jsonText string) sexpr.Node {
	t.Helper()
	n, err := sexpr.Read(jsonText)
	if err != nil {
		t.Fatalf("sexpr.Read: %v", err)
	}
	return n
}

func TestCompileLetResolvesLocal(t *testing.T) {
	rt := runtime.New()
	rt.Freeze()
	src := `["let",[["const","a","Num",3]],"a"]`
	n := mustRead(t, src)
	c := New(rt, "test.ursa", src)
	tree, errs := c.Compile(n)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	let, ok := tree.(*ast.Let)
	if !ok {
		t.Fatalf("expected *ast.Let, got %T", tree)
	}
	local, ok := let.Body.(*ast.Local)
	if !ok {
		t.Fatalf("expected body to resolve to *ast.Local, got %T", let.Body)
	}
	if local.Index != 0 || local.Location.Name != "a" {
		t.Fatalf("unexpected local resolution: %+v", local)
	}
}

func TestCompileUndefinedSymbolErrors(t *testing.T) {
	rt := runtime.New()
	rt.Freeze()
	src := `"nope"`
	n := mustRead(t, src)
	c := New(rt, "test.ursa", src)
	_, errs := c.Compile(n)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "Undefined symbol") {
		t.Fatalf("expected undefined symbol error, got %v", errs[0])
	}
}

func TestCompileResolvesGlobal(t *testing.T) {
	rt := runtime.New()
	rt.DefineGlobal("version", value.NewString("0.1.0"))
	rt.Freeze()
	src := `"version"`
	n := mustRead(t, src)
	c := New(rt, "test.ursa", src)
	tree, errs := c.Compile(n)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	prop, ok := tree.(*ast.Property)
	if !ok {
		t.Fatalf("expected *ast.Property, got %T", tree)
	}
	if prop.Name != "version" {
		t.Fatalf("expected property name 'version', got %q", prop.Name)
	}
}

func TestCompileSetRejectsNonVar(t *testing.T) {
	rt := runtime.New()
	rt.Freeze()
	src := `["let",[["const","a","Num",3]],["set","a",4]]`
	n := mustRead(t, src)
	c := New(rt, "test.ursa", src)
	_, errs := c.Compile(n)
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "non-'var'") {
		t.Fatalf("expected a single non-var assignment error, got %v", errs)
	}
}

func TestCompileSetAllowsVar(t *testing.T) {
	rt := runtime.New()
	rt.Freeze()
	src := `["let",[["var","a","Num",3]],["set","a",4]]`
	n := mustRead(t, src)
	c := New(rt, "test.ursa", src)
	_, errs := c.Compile(n)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestCompileFnCapturesOuterLocal(t *testing.T) {
	rt := runtime.New()
	rt.Freeze()
	src := `["let",[["const","a","Num",3]],["fn",[],null,"a"]]`
	n := mustRead(t, src)
	c := New(rt, "test.ursa", src)
	tree, errs := c.Compile(n)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	let := tree.(*ast.Let)
	fn, ok := let.Body.(*ast.Fn)
	if !ok {
		t.Fatalf("expected *ast.Fn, got %T", let.Body)
	}
	if len(fn.Captures) != 1 || fn.Captures[0].Name != "a" {
		t.Fatalf("expected one capture named 'a', got %+v", fn.Captures)
	}
	if len(fn.CaptureSources) != 1 || !fn.CaptureSources[0].FromLocal || fn.CaptureSources[0].Index != 0 {
		t.Fatalf("expected capture source Local[0], got %+v", fn.CaptureSources)
	}
	capture, ok := fn.Body.(*ast.Capture)
	if !ok || capture.Index != 0 {
		t.Fatalf("expected fn body to resolve to Capture[0], got %#v", fn.Body)
	}
}

func TestCompileDuplicateParamErrors(t *testing.T) {
	rt := runtime.New()
	rt.Freeze()
	src := `["fn",[["x","Num"],["x","Num"]],null,"x"]`
	n := mustRead(t, src)
	c := New(rt, "test.ursa", src)
	_, errs := c.Compile(n)
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "Duplicate parameter") {
		t.Fatalf("expected duplicate parameter error, got %v", errs)
	}
}

func TestCompileBreakOutsideLoopErrors(t *testing.T) {
	rt := runtime.New()
	rt.Freeze()
	src := `["break"]`
	n := mustRead(t, src)
	c := New(rt, "test.ursa", src)
	_, errs := c.Compile(n)
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "'break' outside a loop") {
		t.Fatalf("expected break-outside-loop error, got %v", errs)
	}
}

func TestCompileYieldRequiresGenerator(t *testing.T) {
	rt := runtime.New()
	rt.Freeze()
	src := `["fn",[],null,["yield",1]]`
	n := mustRead(t, src)
	c := New(rt, "test.ursa", src)
	_, errs := c.Compile(n)
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "'yield' outside a generator") {
		t.Fatalf("expected yield-outside-generator error, got %v", errs)
	}
}

func TestCompileNestedClosureChainsCaptures(t *testing.T) {
	rt := runtime.New()
	rt.Freeze()
	// let a = 1 in fn() { fn() { a } }
	src := `["let",[["const","a","Num",1]],["fn",[],null,["fn",[],null,"a"]]]`
	n := mustRead(t, src)
	c := New(rt, "test.ursa", src)
	tree, errs := c.Compile(n)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	outer := tree.(*ast.Let).Body.(*ast.Fn)
	if len(outer.Captures) != 1 || !outer.CaptureSources[0].FromLocal {
		t.Fatalf("expected outer fn to capture local 'a', got %+v / %+v", outer.Captures, outer.CaptureSources)
	}
	inner := outer.Body.(*ast.Fn)
	if len(inner.Captures) != 1 || inner.CaptureSources[0].FromLocal {
		t.Fatalf("expected inner fn to capture outer's capture slot, got %+v / %+v", inner.Captures, inner.CaptureSources)
	}
	if inner.CaptureSources[0].Index != 0 {
		t.Fatalf("expected inner capture to source outer Capture[0], got %+v", inner.CaptureSources[0])
	}
}
