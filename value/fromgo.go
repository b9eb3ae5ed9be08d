package value

import (
	"fmt"
	"reflect"
)

// FromGo converts a native Go value produced by adapter code into the
// engine's Value model. It is the landing helper behind the reflection
// combinators in package adapter, but is exported here because it is purely
// about Value construction, not about any particular adapter pattern.
//
// Accepted inputs: nil, bool, the signed/unsigned/floating integer kinds,
// string, []byte (as string), and []interface{} / any []T slice of one of
// the above (recursively converted into a List). Anything else is an error
// the adapter author will see immediately rather than as a mysterious
// downstream filter fault.
func FromGo(x interface{}) (Value, error) {
	switch t := x.(type) {
	case nil:
		return NullValue(), nil
	case Value:
		return t, nil
	case bool:
		return FromBool(t), nil
	case int:
		return FromInt64(int64(t)), nil
	case int8:
		return FromInt64(int64(t)), nil
	case int16:
		return FromInt64(int64(t)), nil
	case int32:
		return FromInt64(int64(t)), nil
	case int64:
		return FromInt64(t), nil
	case uint:
		return FromUint64(uint64(t)), nil
	case uint8:
		return FromUint64(uint64(t)), nil
	case uint16:
		return FromUint64(uint64(t)), nil
	case uint32:
		return FromUint64(uint64(t)), nil
	case uint64:
		return FromUint64(t), nil
	case float32:
		return FromFloat64(float64(t)), nil
	case float64:
		return FromFloat64(t), nil
	case string:
		return FromString(t), nil
	case []byte:
		return FromString(string(t)), nil
	case []string:
		out := make([]Value, len(t))
		for i, s := range t {
			out[i] = FromString(s)
		}
		return FromList(out), nil
	case []interface{}:
		out := make([]Value, len(t))
		for i, e := range t {
			v, err := FromGo(e)
			if err != nil {
				return Value{}, fmt.Errorf("value: list element %d: %w", i, err)
			}
			out[i] = v
		}
		return FromList(out), nil
	default:
		if rv := reflect.ValueOf(x); rv.Kind() == reflect.Slice {
			out := make([]Value, rv.Len())
			for i := range out {
				v, err := FromGo(rv.Index(i).Interface())
				if err != nil {
					return Value{}, fmt.Errorf("value: list element %d: %w", i, err)
				}
				out[i] = v
			}
			return FromList(out), nil
		}
		return Value{}, fmt.Errorf("value: cannot convert Go value of type %T", x)
	}
}

// MustFromGo is FromGo but panics on error; useful in adapter fixture code
// and tests where the input shape is a compile-time guarantee.
func MustFromGo(x interface{}) Value {
	v, err := FromGo(x)
	if err != nil {
		panic(err)
	}
	return v
}
