package instr

import (
	"fmt"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/ursalang/ursa/internal/value"
)

// DumpJSON renders s as a pretty-printed JSON document: a literal pool
// followed by the instruction listing, one object per instruction with
// "kind" first and the instruction's own fields after, built with sjson
// so key order matches emission order rather than whatever order a map
// type would produce.
func DumpJSON(s *Stream) ([]byte, error) {
	doc := "{}"
	var err error
	for i, lit := range s.Literals {
		doc, err = setLiteral(doc, i, lit)
		if err != nil {
			return nil, err
		}
	}
	for i, in := range s.Instrs {
		doc, err = setInstruction(doc, i, in)
		if err != nil {
			return nil, err
		}
	}
	return pretty.Pretty([]byte(doc)), nil
}

func setLiteral(doc string, index int, v value.Value) (string, error) {
	path := fmt.Sprintf("literals.%d", index)
	doc, err := sjson.Set(doc, path+".type", literalType(v))
	if err != nil {
		return "", err
	}
	return sjson.Set(doc, path+".value", v.String())
}

func literalType(v value.Value) string {
	switch v.(type) {
	case value.Null:
		return "Null"
	case value.Boolean:
		return "Bool"
	case value.Number:
		return "Num"
	case value.String:
		return "Str"
	default:
		return "Any"
	}
}

func setInstruction(doc string, index int, in Instruction) (string, error) {
	path := fmt.Sprintf("instructions.%d", index)
	doc, err := sjson.Set(doc, path+".kind", in.kind())
	if err != nil {
		return "", err
	}
	doc, err = sjson.Set(doc, path+".id", int(in.ResultID()))
	if err != nil {
		return "", err
	}
	return setInstructionFields(doc, path, in)
}

// setInstructionFields appends each instruction's own identifying fields
// on top of kind/id, mirroring the shape flatten.go builds them with.
func setInstructionFields(doc, path string, in Instruction) (string, error) {
	set := func(d, field string, v any) (string, error) { return sjson.Set(d, path+"."+field, v) }
	var err error
	switch v := in.(type) {
	case *Literal:
		doc, err = set(doc, "literalIndex", v.LiteralIndex)
	case *LetCopy:
		doc, err = set(doc, "src", int(v.Src))
	case *BlockOpen:
		doc, err = set(doc, "variant", v.Variant.blockKind())
	case *BlockClose:
		doc, err = set(doc, "matchingOpen", int(v.MatchingOpen))
		if err == nil {
			doc, err = set(doc, "variant", v.Variant)
		}
	case *ElseBlock:
		doc, err = set(doc, "ifBlockID", int(v.IfBlockID))
		if err == nil {
			doc, err = set(doc, "blockID", int(v.BlockID))
		}
	case *Await:
		doc, err = set(doc, "argID", int(v.ArgID))
	case *Continue:
		doc, err = set(doc, "loop", int(v.Loop))
	case *Break:
		doc, err = set(doc, "argID", int(v.ArgID))
		if err == nil {
			doc, err = set(doc, "loop", int(v.Loop))
		}
	case *Return:
		doc, err = set(doc, "argID", int(v.ArgID))
		if err == nil {
			doc, err = set(doc, "fn", int(v.Fn))
		}
	case *Yield:
		doc, err = set(doc, "argID", int(v.ArgID))
		if err == nil {
			doc, err = set(doc, "fn", int(v.Fn))
		}
	case *Call:
		doc, err = set(doc, "fnID", int(v.FnID))
		if err == nil {
			doc, err = set(doc, "name", v.Name)
		}
		if err == nil {
			for _, a := range v.ArgIDs {
				doc, err = sjson.Set(doc, path+".argIDs.-1", int(a))
				if err != nil {
					break
				}
			}
		}
	case *SetLocal:
		doc, err = set(doc, "idx", v.Idx)
		if err == nil {
			doc, err = set(doc, "valID", int(v.ValID))
		}
	case *SetCapture:
		doc, err = set(doc, "idx", v.Idx)
		if err == nil {
			doc, err = set(doc, "valID", int(v.ValID))
		}
	case *SetProperty:
		doc, err = set(doc, "objID", int(v.ObjID))
		if err == nil {
			doc, err = set(doc, "name", v.Name)
		}
		if err == nil {
			doc, err = set(doc, "valID", int(v.ValID))
		}
	case *ObjectLiteral:
		doc, err = set(doc, "typeName", v.TypeName)
		if err == nil {
			for _, m := range v.Members {
				doc, err = sjson.Set(doc, path+".members.-1", map[string]any{"name": m.Name, "id": int(m.ID)})
				if err != nil {
					break
				}
			}
		}
	case *ListLiteral:
		for _, e := range v.ElemIDs {
			doc, err = sjson.Set(doc, path+".elemIDs.-1", int(e))
			if err != nil {
				break
			}
		}
	case *MapLiteral:
		for _, p := range v.Pairs {
			doc, err = sjson.Set(doc, path+".pairs.-1", map[string]any{"key": int(p.Key), "val": int(p.Val)})
			if err != nil {
				break
			}
		}
	case *Local:
		doc, err = set(doc, "idx", v.Idx)
		if err == nil {
			doc, err = set(doc, "name", v.Name)
		}
	case *Capture:
		doc, err = set(doc, "idx", v.Idx)
		if err == nil {
			doc, err = set(doc, "name", v.Name)
		}
	case *Property:
		doc, err = set(doc, "objID", int(v.ObjID))
		if err == nil {
			doc, err = set(doc, "name", v.Name)
		}
	}
	return doc, err
}
