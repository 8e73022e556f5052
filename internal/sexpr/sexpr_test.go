package sexpr

import "testing"

func TestReadScalars(t *testing.T) {
	n, err := Read(`null`)
	if err != nil || n.Kind != KindNull {
		t.Fatalf("null: got %+v, err=%v", n, err)
	}

	n, err = Read(`true`)
	if err != nil || n.Kind != KindBool || !n.Bool {
		t.Fatalf("true: got %+v, err=%v", n, err)
	}

	n, err = Read(`3.5`)
	if err != nil || n.Kind != KindNumber || n.Number != 3.5 {
		t.Fatalf("number: got %+v, err=%v", n, err)
	}

	n, err = Read(`"a"`)
	if err != nil || n.Kind != KindSymbol || n.Symbol != "a" {
		t.Fatalf("symbol: got %+v, err=%v", n, err)
	}
}

func TestReadListAndHead(t *testing.T) {
	n, err := Read(`["if", true, 1, 0]`)
	if err != nil {
		t.Fatal(err)
	}
	if n.Kind != KindList || len(n.List) != 4 {
		t.Fatalf("expected a 4-element list, got %+v", n)
	}
	head, ok := n.Head()
	if !ok || head != "if" {
		t.Fatalf("expected head 'if', got %q (ok=%v)", head, ok)
	}
}

func TestReadObjectPreservesOrder(t *testing.T) {
	n, err := Read(`{"b": 1, "a": 2}`)
	if err != nil {
		t.Fatal(err)
	}
	if n.Kind != KindObject || len(n.ObjectKeys) != 2 {
		t.Fatalf("expected a 2-key object, got %+v", n)
	}
	if n.ObjectKeys[0] != "b" || n.ObjectKeys[1] != "a" {
		t.Fatalf("expected insertion order preserved, got %v", n.ObjectKeys)
	}
}

func TestReadRejectsInvalidJSON(t *testing.T) {
	if _, err := Read(`{not json`); err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
}
