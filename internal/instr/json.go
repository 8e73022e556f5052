package instr

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/ursalang/ursa/internal/value"
)

// EncodeJSON renders the stream as a stable-key-ordered, pretty-printed
// JSON document.
// Keys are inserted with sjson.SetBytes in a fixed order so the output is
// deterministic across runs — downstream tooling commands lean on
// sjson/pretty for exactly this "shape then prettify" pattern rather than
// a struct tag-driven encoding/json.Marshal, which would not guarantee
// field order.
func EncodeJSON(s *Stream) ([]byte, error) {
	var buf []byte
	buf = append(buf, '{')
	var err error

	buf, err = sjson.SetBytes(buf, "literals", literalStrings(s.Literals))
	if err != nil {
		return nil, err
	}

	instrs := make([]map[string]any, len(s.Instrs))
	for i, in := range s.Instrs {
		instrs[i] = instructionToMap(in)
	}
	buf, err = sjson.SetBytes(buf, "instructions", instrs)
	if err != nil {
		return nil, err
	}

	return pretty.Pretty(buf), nil
}

func literalStrings(lits []value.Value) []string {
	out := make([]string, len(lits))
	for i, l := range lits {
		out[i] = l.Type() + ":" + l.String()
	}
	return out
}

func instructionToMap(in Instruction) map[string]any {
	m := map[string]any{
		"id":   int(in.ResultID()),
		"op":   in.kind(),
		"text": in.String(),
	}
	switch v := in.(type) {
	case *BlockOpen:
		m["variant"] = v.Variant.blockKind()
	case *BlockClose:
		m["matches"] = int(v.MatchingOpen)
		m["variant"] = v.Variant
	case *Call:
		m["fn"] = int(v.FnID)
		m["args"] = idsToInts(v.ArgIDs)
		m["name"] = v.Name
	}
	return m
}

func idsToInts(ids []ID) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}

// DecodeJSON is the inverse of a subset of EncodeJSON, sufficient for
// round-tripping a dumped instruction count/shape check in tests; full
// re-hydration of executable instructions is not needed since `ursa run`
// always re-flattens from source rather than loading a dump.
func DecodeJSON(data []byte) (literalCount, instrCount int, err error) {
	var doc struct {
		Literals     []string         `json:"literals"`
		Instructions []map[string]any `json:"instructions"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, 0, fmt.Errorf("decode instruction stream: %w", err)
	}
	return len(doc.Literals), len(doc.Instructions), nil
}
