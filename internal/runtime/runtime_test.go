package runtime

import (
	"testing"

	"github.com/ursalang/ursa/internal/value"
)

func TestDefineGlobalAndFreeze(t *testing.T) {
	rt := New()
	rt.DefineGlobal("version", value.NewString("0.1.0"))
	rt.DefineGlobal("pi", value.NewNumber(3.14))

	v, ok := rt.Globals().Get("version")
	if !ok || v.String() != "0.1.0" {
		t.Fatalf("expected version global, got %v (ok=%v)", v, ok)
	}

	rt.Freeze()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected a panic defining a global after Freeze")
		}
	}()
	rt.DefineGlobal("late", value.NewNull())
}

func TestNextIDMonotonic(t *testing.T) {
	rt := New()
	a := rt.NextID()
	b := rt.NextID()
	if b != a+1 {
		t.Fatalf("expected monotonic ids, got %d then %d", a, b)
	}
}
