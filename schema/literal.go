package schema

import (
	"fmt"

	"github.com/quarryql/quarry/value"
)

// coerceLiteral converts a parsed default-value literal (an int64,
// float64, string, bool, nil, bare identifier string, or []interface{}
// from parseLiteral) into a value.Value, checked against the parameter's
// declared type. It is also exported as CoerceLiteral.
func coerceLiteral(raw interface{}, t Type) (value.Value, error) {
	inner, nonNull, list := Unwrap(t)

	if raw == nil {
		if nonNull {
			return value.Value{}, fmt.Errorf("null literal not allowed for non-null type %s", t)
		}
		return value.NullValue(), nil
	}

	if list {
		items, ok := raw.([]interface{})
		if !ok {
			return value.Value{}, fmt.Errorf("expected a list literal for type %s", t)
		}
		listType := t
		if nn, ok := t.(*NonNull); ok {
			listType = nn.Of
		}
		l, ok := listType.(*List)
		if !ok {
			return value.Value{}, fmt.Errorf("expected a list type for list literal, got %s", t)
		}
		elemType := l.Of
		out := make([]value.Value, len(items))
		for i, it := range items {
			v, err := coerceLiteral(it, elemType)
			if err != nil {
				return value.Value{}, fmt.Errorf("list element %d: %w", i, err)
			}
			out[i] = v
		}
		return value.FromList(out), nil
	}

	sc, ok := inner.(*Scalar)
	if !ok {
		// Non-scalar default (object/interface/union) is never legal; but a
		// bare identifier against a non-scalar type is treated as an enum
		// literal, matching the query language's use of bare words for
		// `one_of`/`=` operands against enum-flavored string properties.
		if s, ok := raw.(string); ok {
			return value.FromEnum(s), nil
		}
		return value.Value{}, fmt.Errorf("literal not valid for type %s", t)
	}

	switch sc.Name {
	case "Int":
		switch n := raw.(type) {
		case int64:
			return value.FromInt64(n), nil
		default:
			return value.Value{}, fmt.Errorf("expected an integer literal for Int")
		}
	case "Float":
		switch n := raw.(type) {
		case int64:
			return value.FromFloat64(float64(n)), nil
		case float64:
			return value.FromFloat64(n), nil
		default:
			return value.Value{}, fmt.Errorf("expected a numeric literal for Float")
		}
	case "Boolean":
		b, ok := raw.(bool)
		if !ok {
			return value.Value{}, fmt.Errorf("expected a boolean literal for Boolean")
		}
		return value.FromBool(b), nil
	case "String", "ID":
		s, ok := raw.(string)
		if !ok {
			return value.Value{}, fmt.Errorf("expected a string literal for %s", sc.Name)
		}
		return value.FromString(s), nil
	default:
		return value.Value{}, fmt.Errorf("unknown scalar %s", sc.Name)
	}
}

// CoerceLiteral is the exported form of coerceLiteral: it coerces a raw
// literal against the given type. Nothing else in this module calls it.
func CoerceLiteral(raw interface{}, t Type) (value.Value, error) {
	return coerceLiteral(raw, t)
}
