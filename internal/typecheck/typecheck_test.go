package typecheck

import (
	"strings"
	"testing"

	"github.com/ursalang/ursa/internal/ast"
	"github.com/ursalang/ursa/internal/compiler"
	"github.com/ursalang/ursa/internal/runtime"
	"github.com/ursalang/ursa/internal/sexpr"
)

func mustCompile(t *testing.T, src string) ast.Node {
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
	return tree
}

func TestCheckLiteralTypesLetBinding(t *testing.T) {
	src := `["let",[["const","a","Num",3]],"a"]`
	tree := mustCompile(t, src)
	checker := New("test.ursa", src)
	errs := checker.Check(tree)
	if len(errs) != 0 {
		t.Fatalf("unexpected type errors: %v", errs)
	}
}

func TestCheckLetInitMismatchErrors(t *testing.T) {
	src := `["let",[["const","a","Str",3]],"a"]`
	tree := mustCompile(t, src)
	checker := New("test.ursa", src)
	errs := checker.Check(tree)
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "Cannot initialize") {
		t.Fatalf("expected a single initializer type mismatch error, got %v", errs)
	}
}

func TestCheckSetTypeMismatchErrors(t *testing.T) {
	src := `["let",[["var","a","Num",3]],["seq",["set","a",["str","x"]],"a"]]`
	tree := mustCompile(t, src)
	checker := New("test.ursa", src)
	errs := checker.Check(tree)
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "Cannot assign") {
		t.Fatalf("expected a single assignment type mismatch error, got %v", errs)
	}
}

func TestCheckFnReturnTypeMismatchErrors(t *testing.T) {
	src := `["fn",[],"Str",3]`
	tree := mustCompile(t, src)
	checker := New("test.ursa", src)
	errs := checker.Check(tree)
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "does not match declared return type") {
		t.Fatalf("expected a single return type mismatch error, got %v", errs)
	}
}
