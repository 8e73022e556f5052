package value

import "fmt"

// ToHost converts v into the embedding Go runtime's primitive types
//: Null→nil, Boolean→bool, Number→float64, String→string,
// List→[]any, Map→an ordered []KV, Struct→map[string]any. A NativeFn
// becomes a Go func(...any) (any, error) adapter; Closures and other
// callables have no host form and return an error, and FromHost accepts
// no Go funcs.
func ToHost(v Value) (any, error) {
	switch t := v.(type) {
	case Null:
		return nil, nil
	case Boolean:
		return t.Raw(), nil
	case Number:
		return t.Raw(), nil
	case String:
		return t.Raw(), nil
	case *List:
		out := make([]any, len(t.Elems))
		for i, e := range t.Elems {
			h, err := ToHost(e)
			if err != nil {
				return nil, err
			}
			out[i] = h
		}
		return out, nil
	case *Map:
		out := make([]KV, 0, t.Len())
		for _, k := range t.Keys() {
			val, _ := t.Lookup(k)
			hk, err := ToHost(k)
			if err != nil {
				return nil, err
			}
			hv, err := ToHost(val)
			if err != nil {
				return nil, err
			}
			out = append(out, KV{Key: hk, Value: hv})
		}
		return out, nil
	case *Struct:
		out := make(map[string]any, len(t.Fields()))
		for _, name := range t.Fields() {
			fv, _ := t.Get(name)
			hv, err := ToHost(fv)
			if err != nil {
				return nil, err
			}
			out[name] = hv
		}
		return out, nil
	case *NativeFn:
		return func(args ...any) (any, error) {
			vargs, err := fromHostSlice(args)
			if err != nil {
				return nil, err
			}
			res, err := t.Call(vargs)
			if err != nil {
				return nil, err
			}
			return ToHost(res)
		}, nil
	default:
		return nil, fmt.Errorf("value of type %s has no host representation", v.Type())
	}
}

// KV is an ordered host-side key/value pair mirroring a Map entry.
type KV struct {
	Key   any
	Value any
}

// FromHost converts a host-side Go primitive into a Value.
// Supported inputs: nil, bool, float64/int/int64, string, []any, []KV,
// map[string]any.
func FromHost(h any) (Value, error) {
	switch t := h.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBoolean(t), nil
	case float64:
		return NewNumber(t), nil
	case int:
		return NewNumber(float64(t)), nil
	case int64:
		return NewNumber(float64(t)), nil
	case string:
		return NewString(t), nil
	case []any:
		elems, err := fromHostSlice(t)
		if err != nil {
			return nil, err
		}
		return NewList(elems), nil
	case []KV:
		m := NewMap()
		for _, kv := range t {
			k, err := FromHost(kv.Key)
			if err != nil {
				return nil, err
			}
			v, err := FromHost(kv.Value)
			if err != nil {
				return nil, err
			}
			m.Put(k, v)
		}
		return m, nil
	case map[string]any:
		fields := make(map[string]Value, len(t))
		order := make([]string, 0, len(t))
		for k, v := range t {
			fv, err := FromHost(v)
			if err != nil {
				return nil, err
			}
			fields[k] = fv
			order = append(order, k)
		}
		return NewStruct("HostRecord", fields, order), nil
	default:
		return nil, fmt.Errorf("unsupported host value of Go type %T", h)
	}
}

func fromHostSlice(in []any) ([]Value, error) {
	out := make([]Value, len(in))
	for i, h := range in {
		v, err := FromHost(h)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
