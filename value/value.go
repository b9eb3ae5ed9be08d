// Package value implements the engine's uniform scalar value model: the
// closed set of kinds every property, argument, tag, and output is
// expressed in, plus the structural equality and coercion rules the
// filter kernel and interpreter build on.
package value

import "fmt"

// Kind tags which of the eight Value variants is populated.
type Kind uint8

const (
	Null Kind = iota
	Boolean
	Int64
	Uint64
	Float64
	String
	List
	Enum
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "Null"
	case Boolean:
		return "Boolean"
	case Int64:
		return "Int64"
	case Uint64:
		return "Uint64"
	case Float64:
		return "Float64"
	case String:
		return "String"
	case List:
		return "List"
	case Enum:
		return "Enum"
	default:
		return "Unknown"
	}
}

// Value is the engine's scalar value: exactly one of null, boolean, int64,
// uint64, float64, string, list<Value>, or enum(string). The zero Value is
// Null. Value is intended to be passed by value; lists share their backing
// slice, so callers must not mutate a List's elements after construction.
type Value struct {
	kind Kind
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string
	list []Value
}

// NullValue returns the null Value.
func NullValue() Value { return Value{kind: Null} }

// FromBool wraps a boolean.
func FromBool(b bool) Value { return Value{kind: Boolean, b: b} }

// FromInt64 wraps a signed integer.
func FromInt64(i int64) Value { return Value{kind: Int64, i: i} }

// FromUint64 wraps an unsigned integer.
func FromUint64(u uint64) Value { return Value{kind: Uint64, u: u} }

// FromFloat64 wraps a float.
func FromFloat64(f float64) Value { return Value{kind: Float64, f: f} }

// FromString wraps a string.
func FromString(s string) Value { return Value{kind: String, s: s} }

// FromEnum wraps an enum member name.
func FromEnum(s string) Value { return Value{kind: Enum, s: s} }

// FromList wraps a list of values. The slice is retained, not copied.
func FromList(vs []Value) Value { return Value{kind: List, list: vs} }

// Kind reports which variant is populated.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null variant.
func (v Value) IsNull() bool { return v.kind == Null }

// Bool returns the boolean payload. Only meaningful when Kind() == Boolean.
func (v Value) Bool() bool { return v.b }

// Int returns the int64 payload. Only meaningful when Kind() == Int64.
func (v Value) Int() int64 { return v.i }

// Uint returns the uint64 payload. Only meaningful when Kind() == Uint64.
func (v Value) Uint() uint64 { return v.u }

// Float returns the float64 payload. Only meaningful when Kind() == Float64.
func (v Value) Float() float64 { return v.f }

// Str returns the string payload. Meaningful when Kind() is String or Enum.
func (v Value) Str() string { return v.s }

// List returns the list payload. Only meaningful when Kind() == List.
func (v Value) List() []Value { return v.list }

// Equal reports structural equality between a and b.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Boolean:
		return a.b == b.b
	case Int64:
		return a.i == b.i
	case Uint64:
		return a.u == b.u
	case Float64:
		return a.f == b.f
	case String, Enum:
		return a.s == b.s
	case List:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// GoString renders a Value for debugging (spew/pretty friendly).
func (v Value) GoString() string {
	switch v.kind {
	case Null:
		return "null"
	case Boolean:
		return fmt.Sprintf("bool(%v)", v.b)
	case Int64:
		return fmt.Sprintf("int64(%d)", v.i)
	case Uint64:
		return fmt.Sprintf("uint64(%d)", v.u)
	case Float64:
		return fmt.Sprintf("float64(%v)", v.f)
	case String:
		return fmt.Sprintf("string(%q)", v.s)
	case Enum:
		return fmt.Sprintf("enum(%s)", v.s)
	case List:
		return fmt.Sprintf("list(%#v)", v.list)
	default:
		return "value(?)"
	}
}

func (v Value) String() string { return v.GoString() }
