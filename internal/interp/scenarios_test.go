package interp

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestEndToEndScenarios snapshots the canonical worked examples end to
// end (read -> compile -> flatten -> run) rather than asserting on
// intermediate stages.
func TestEndToEndScenarios(t *testing.T) {
	scenarios := []struct {
		name string
		src  string
	}{
		{"LetBinding", `["let",[["const","a","Num",3]],"a"]`},
		{"ChainedInvoke", `["invoke",["invoke",3,"add",4],"mul",5]`},
		{"LoopBreak", `["loop",["break",3]]`},
		{"IfEqualsCondition", `["if",["invoke",["invoke",3,"add",4],"equals",7],1,0]`},
		{"MapLiteralMixedKeys", `["map",[["str","a"],1],[["str","b"],["invoke",2,"add",0]],[3,4]]`},
		{"ImmediatelyCalledFn", `[["fn",[],"Num",3]]`},
	}

	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			v, err := run(t, sc.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			snaps.MatchSnapshot(t, sc.name+"_result", v.String())
		})
	}
}

// TestEndToEndScenarioErrors snapshots the two error-raising scenarios
// from the worked examples: assigning a struct's missing property, and
// the type-safety guard on Set.
func TestEndToEndScenarioErrors(t *testing.T) {
	scenarios := []struct {
		name string
		src  string
	}{
		{"SetMissingProperty", `["let",[["const","o","Any",{"a":1,"b":2}]],["set",["prop","c","o"],["str","abc"]]]`},
		{"SetDifferentType", `["let",[["var","a","Any",1]],["seq",["set","a",["str","x"]],"a"]]`},
	}

	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			_, err := run(t, sc.src)
			if err == nil {
				t.Fatalf("expected an error for %s", sc.name)
			}
			snaps.MatchSnapshot(t, sc.name+"_error", err.Error())
		})
	}
}
