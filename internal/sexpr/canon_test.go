package sexpr

import (
	"strings"
	"testing"
)

func TestCanonicalizeRoundTripsSimpleList(t *testing.T) {
	n, err := Read(`["str","a"]`)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	out, err := Canonicalize(n)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	n2, err := Read(out)
	if err != nil {
		t.Fatalf("re-Read canonicalized output: %v\noutput was:\n%s", err, out)
	}
	if n2.Kind != KindList || len(n2.List) != 2 {
		t.Fatalf("expected a 2-element list, got %+v", n2)
	}
	if n2.List[0].Symbol != "str" || n2.List[1].Symbol != "a" {
		t.Fatalf("unexpected round-tripped content: %+v", n2)
	}
}

func TestCanonicalizePreservesObjectKeyOrder(t *testing.T) {
	n, err := Read(`{"b":1,"a":2}`)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	out, err := Canonicalize(n)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	bIdx := strings.Index(out, `"b"`)
	aIdx := strings.Index(out, `"a"`)
	if bIdx < 0 || aIdx < 0 || bIdx > aIdx {
		t.Fatalf("expected source key order (b before a) preserved, got:\n%s", out)
	}
}

func TestCanonicalizeNestedLists(t *testing.T) {
	n, err := Read(`["seq",["str","x"],["list",1,2,3]]`)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	out, err := Canonicalize(n)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	n2, err := Read(out)
	if err != nil {
		t.Fatalf("re-Read canonicalized output: %v\noutput was:\n%s", err, out)
	}
	if len(n2.List) != 3 || len(n2.List[2].List) != 4 {
		t.Fatalf("unexpected structure after round trip: %+v", n2)
	}
}
