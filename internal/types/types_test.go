package types

import "testing"

func TestEqualsPrimitives(t *testing.T) {
	if !Equals(Any, &StructType{Name: "Foo"}) {
		t.Error("Any should match anything")
	}
	if Equals(Unknown, Any) {
		t.Error("Unknown should only match itself")
	}
	if !Equals(Unknown, Unknown) {
		t.Error("Unknown should match itself")
	}
}

func TestEqualsNominal(t *testing.T) {
	a := &StructType{Name: "Point", Members: map[string]Type{"x": Any}}
	b := &StructType{Name: "Point", Members: map[string]Type{"x": Any, "y": Any}}
	c := &StructType{Name: "Other"}

	if !Equals(a, b) {
		t.Error("structs with the same name should be nominally equal")
	}
	if Equals(a, c) {
		t.Error("structs with different names should not be equal")
	}
}

func TestEqualsFnStructural(t *testing.T) {
	f1 := &FnType{Params: []NamedType{{Name: "a", Type: &TypeConstant{Name: "Num"}}}, ReturnType: &TypeConstant{Name: "Num"}}
	f2 := &FnType{Params: []NamedType{{Name: "b", Type: &TypeConstant{Name: "Num"}}}, ReturnType: &TypeConstant{Name: "Num"}}
	f3 := &FnType{Params: []NamedType{{Name: "a", Type: &TypeConstant{Name: "Str"}}}, ReturnType: &TypeConstant{Name: "Num"}}

	if !Equals(f1, f2) {
		t.Error("fn types should compare structurally, ignoring param names")
	}
	if Equals(f1, f3) {
		t.Error("fn types with different param types should not be equal")
	}
}

func TestUnion(t *testing.T) {
	num := &TypeConstant{Name: "Num"}
	str := &TypeConstant{Name: "Str"}

	if Union(num, num) != num {
		t.Error("T union T should be T")
	}
	if Union(Any, num) != Any {
		t.Error("Any union T should be Any")
	}
	if Union(Unknown, num) != num {
		t.Error("Unknown union T should be T")
	}

	u := Union(num, str)
	ut, ok := u.(*UnionType)
	if !ok || len(ut.Members) != 2 {
		t.Fatalf("expected a 2-member union, got %v", u)
	}

	// Union should flatten and dedupe.
	u2 := Union(u, num)
	ut2, ok := u2.(*UnionType)
	if !ok || len(ut2.Members) != 2 {
		t.Fatalf("expected union flattening to dedupe, got %v", u2)
	}
}
