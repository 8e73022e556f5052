package sexpr

import (
	"strconv"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Canonicalize re-serializes a Node tree (as produced by Read) through
// sjson, giving a stable, pretty-printed JSON rendering independent of
// the source document's original whitespace. Object key order is
// preserved from the source (sjson appends new keys at the position
// they are first set, matching n.ObjectKeys).
func Canonicalize(n Node) (string, error) {
	doc, err := build("", "", n)
	if err != nil {
		return "", err
	}
	return string(pretty.Pretty([]byte(doc))), nil
}

// build sets n into doc at path, growing doc as needed. path == ""
// means n is (or will become) the whole document.
func build(doc, path string, n Node) (string, error) {
	switch n.Kind {
	case KindNull:
		return setRaw(doc, path, "null")
	case KindBool:
		return setRaw(doc, path, strconv.FormatBool(n.Bool))
	case KindNumber:
		return setRaw(doc, path, strconv.FormatFloat(n.Number, 'g', -1, 64))
	case KindSymbol:
		if path == "" {
			return strconv.Quote(n.Symbol), nil
		}
		return sjson.Set(doc, path, n.Symbol)
	case KindList:
		doc, err := setRaw(doc, path, "[]")
		if err != nil {
			return "", err
		}
		for i, elem := range n.List {
			doc, err = build(doc, childPath(path, strconv.Itoa(i)), elem)
			if err != nil {
				return "", err
			}
		}
		return doc, nil
	case KindObject:
		doc, err := setRaw(doc, path, "{}")
		if err != nil {
			return "", err
		}
		for i, key := range n.ObjectKeys {
			doc, err = build(doc, childPath(path, key), n.ObjectVals[i])
			if err != nil {
				return "", err
			}
		}
		return doc, nil
	default:
		return setRaw(doc, path, "null")
	}
}

// setRaw writes a raw JSON literal (already-formatted text, not a Go
// value sjson would re-encode) at path, or returns it as the whole
// document when path == "".
func setRaw(doc, path, raw string) (string, error) {
	if path == "" {
		return raw, nil
	}
	if doc == "" {
		doc = "{}"
	}
	return sjson.SetRaw(doc, path, raw)
}

func childPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
