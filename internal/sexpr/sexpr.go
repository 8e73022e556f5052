// Package sexpr reads the canonical JSON s-expression AST format into a
// generic Node tree that internal/compiler pattern-matches on.
// This package performs no semantic interpretation of the forms
// themselves (e.g. it does not know that ["if", c, t] is a conditional);
// it only turns JSON into a typed, ordered tree, using
// github.com/tidwall/gjson for the traversal.
package sexpr

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Kind discriminates the shapes a raw JSON value can take once read.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindSymbol // a JSON string: a symbol reference
	KindList   // a JSON array: ["str",...]/["list",...]/a general call/etc.
	KindObject // a JSON object: an ObjectLiteral
)

// Node is one position in the raw s-expression tree.
type Node struct {
	Kind Kind

	Bool   bool
	Number float64
	Symbol string
	List   []Node

	// ObjectKeys preserves the source JSON object's key order;
	// ObjectVals has one entry per key, same index.
	ObjectKeys []string
	ObjectVals []Node

	// Pos is the byte offset into the source document this node started
	// at; internal/compiler derives line/column from it for
	// ast.Interval.
	Pos int
}

// Head returns the symbol naming this list's first element, and true, if
// this Node is a non-empty KindList whose first element is itself a
// KindSymbol (the shape every named form has: ["if", ...],
// ["let", ...], etc). General calls `[fn, args...]` may have a symbol
// head too (`["f", 0]`); the compiler treats any list whose head names
// no keyword form as a call expression.
func (n Node) Head() (string, bool) {
	if n.Kind != KindList || len(n.List) == 0 {
		return "", false
	}
	if n.List[0].Kind != KindSymbol {
		return "", false
	}
	return n.List[0].Symbol, true
}

// Read parses a JSON document into a Node tree.
func Read(jsonText string) (Node, error) {
	if !gjson.Valid(jsonText) {
		return Node{}, fmt.Errorf("invalid JSON s-expression document")
	}
	result := gjson.Parse(jsonText)
	return fromGJSON(result), nil
}

func fromGJSON(r gjson.Result) Node {
	pos := int(r.Index)
	switch r.Type {
	case gjson.Null:
		return Node{Kind: KindNull, Pos: pos}
	case gjson.True:
		return Node{Kind: KindBool, Bool: true, Pos: pos}
	case gjson.False:
		return Node{Kind: KindBool, Bool: false, Pos: pos}
	case gjson.Number:
		return Node{Kind: KindNumber, Number: r.Num, Pos: pos}
	case gjson.String:
		return Node{Kind: KindSymbol, Symbol: r.Str, Pos: pos}
	case gjson.JSON:
		if r.IsArray() {
			var list []Node
			r.ForEach(func(_, val gjson.Result) bool {
				list = append(list, fromGJSON(val))
				return true
			})
			return Node{Kind: KindList, List: list, Pos: pos}
		}
		// JSON object.
		var keys []string
		var vals []Node
		r.ForEach(func(key, val gjson.Result) bool {
			keys = append(keys, key.Str)
			vals = append(vals, fromGJSON(val))
			return true
		})
		return Node{Kind: KindObject, ObjectKeys: keys, ObjectVals: vals, Pos: pos}
	default:
		return Node{Kind: KindNull, Pos: pos}
	}
}
