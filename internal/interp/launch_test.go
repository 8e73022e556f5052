package interp

import "testing"

// TestRunLaunchAwaitResolvesToBodyValue covers §4.5.1/§4.5.2: a launched
// State evaluates only the launch expression. Before the flattener emitted
// a terminating Return for the launch body, the forked child fell through
// the launch's BlockClose and kept executing whatever followed in the
// enclosing stream, resolving the Promise to that tail's value instead of
// the launch expression's own value.
func TestRunLaunchAwaitResolvesToBodyValue(t *testing.T) {
	v := mustRun(t, `["seq",["await",["launch",1]],2]`)
	if v.String() != "2" {
		t.Fatalf("got %s, want 2", v)
	}
}

// TestRunLaunchDoesNotExecuteTrailingCode guards the same regression from
// the other direction: a launch with no await at all must not run any
// instruction past its own body, even though both share one instruction
// stream.
func TestRunLaunchDoesNotExecuteTrailingCode(t *testing.T) {
	v := mustRun(t, `["seq",["launch",1],2]`)
	if v.String() != "2" {
		t.Fatalf("got %s, want 2", v)
	}
}

// TestRunLaunchPromiseValue checks the Promise itself (not just what
// follows it) carries the launch expression's own value, not the value of
// whatever instructions happen to sit after the launch's BlockClose in the
// flattened stream.
func TestRunLaunchPromiseValue(t *testing.T) {
	v := mustRun(t, `["let",[["const","p","Any",["launch",["invoke",3,"add",4]]]],["await","p"]]`)
	if v.String() != "7" {
		t.Fatalf("got %s, want 7", v)
	}
}
