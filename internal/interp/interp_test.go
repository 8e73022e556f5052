package interp

import (
	"strings"
	"testing"

	"github.com/ursalang/ursa/internal/compiler"
	"github.com/ursalang/ursa/internal/flatten"
	"github.com/ursalang/ursa/internal/runtime"
	"github.com/ursalang/ursa/internal/sexpr"
	"github.com/ursalang/ursa/internal/value"
)

func mustRun(t *testing.T, src string) value.Value {
	t.Helper()
	v, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected runtime error for %q: %v", src, err)
	}
	return v
}

func run(t *testing.T, src string) (value.Value, error) {
	t.Helper()
	rt := runtime.New()
	rt.Freeze()
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
	return New("test.ursa", src).Run(stream)
}

func TestRunLetBinding(t *testing.T) {
	v := mustRun(t, `["let",[["const","a","Num",3]],"a"]`)
	if v.String() != "3" {
		t.Fatalf("got %s, want 3", v)
	}
}

func TestRunChainedInvoke(t *testing.T) {
	v := mustRun(t, `["invoke",["invoke",3,"add",4],"mul",5]`)
	if v.String() != "35" {
		t.Fatalf("got %s, want 35", v)
	}
}

func TestRunLoopBreak(t *testing.T) {
	v := mustRun(t, `["loop",["break",3]]`)
	if v.String() != "3" {
		t.Fatalf("got %s, want 3", v)
	}
}

func TestRunIfWithEqualsCondition(t *testing.T) {
	v := mustRun(t, `["if",["invoke",["invoke",3,"add",4],"equals",7],1,0]`)
	if v.String() != "1" {
		t.Fatalf("got %s, want 1", v)
	}
}

func TestRunOneArmedIfFalseIsNull(t *testing.T) {
	v := mustRun(t, `["if",false,1]`)
	if _, ok := v.(value.Null); !ok {
		t.Fatalf("got %s, want Null", v)
	}
}

func TestRunFnCallReturnsBodyValue(t *testing.T) {
	v := mustRun(t, `[["fn",[],null,3]]`)
	if v.String() != "3" {
		t.Fatalf("got %s, want 3", v)
	}
}

func TestRunRecursiveLetClosureCall(t *testing.T) {
	// f := fn(n) if n == 0 then 0 else f(n - 1); f(2)
	src := `["let",[["const","f","Any",["fn",[["n","Num"]],null,["if",["invoke","n","equals",0],0,["f",["invoke","n","sub",1]]]]]],["f",2]]`
	v := mustRun(t, src)
	if v.String() != "0" {
		t.Fatalf("got %s, want 0", v)
	}
}

func TestRunClosureCapturesVarByReference(t *testing.T) {
	// var a = 1; let f = fn() a; a := 2; f()
	src := `["let",[["var","a","Num",1]],["let",[["const","f","Any",["fn",[],null,"a"]]],["seq",["set","a",2],["f"]]]]`
	v := mustRun(t, src)
	if v.String() != "2" {
		t.Fatalf("got %s, want 2 (closure should observe the mutation)", v)
	}
}

func TestRunSetLocalTypeMismatchIsRuntimeError(t *testing.T) {
	src := `["let",[["var","a","Any",1]],["seq",["set","a",["str","x"]],"a"]]`
	_, err := run(t, src)
	if err == nil || !strings.Contains(err.Error(), "Assignment to different type") {
		t.Fatalf("expected assignment-type-mismatch error, got %v", err)
	}
}

func TestRunSetPropertyMissingKeyIsRuntimeError(t *testing.T) {
	src := `["let",[["const","o","Any",{"a":1,"b":2}]],["set",["prop","c","o"],["str","abc"]]]`
	_, err := run(t, src)
	if err == nil || !strings.Contains(err.Error(), "Invalid property") {
		t.Fatalf("expected invalid-property error, got %v", err)
	}
}

func TestRunGeneratorYieldsInOrderThenNull(t *testing.T) {
	src := `[["gen",[],null,["seq",["yield",1],["yield",2]]]]`
	v := mustRun(t, src)
	cont, ok := v.(*value.Continuation)
	if !ok {
		t.Fatalf("expected a Continuation, got %T", v)
	}
	want := []string{"1", "2", "null", "null"}
	for i, w := range want {
		got, err := cont.Call(value.NewNull())
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if got.String() != w {
			t.Fatalf("call %d: got %s, want %s", i, got, w)
		}
	}
}

func TestRunMapLiteralOrderedInsertion(t *testing.T) {
	src := `["map",[["str","a"],1],[["str","b"],["invoke",2,"add",0]]]`
	v := mustRun(t, src)
	m, ok := v.(*value.Map)
	if !ok {
		t.Fatalf("expected a Map, got %T", v)
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", m.Len())
	}
}
