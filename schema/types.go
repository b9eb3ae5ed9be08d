// Package schema loads and validates the schema document that describes
// the types, interfaces, and edges a dataset provider exposes, and answers
// the type-system questions the compiler (package ir) needs to lower a
// query: field existence and kind, the subtype relation, edge parameter
// signatures, and nullability.
//
// The type model here descends from go.appointy.com/jaal's graphql.Type
// hierarchy (Scalar/Object/Interface/Union/List/NonNull), generalized with
// the edge-vs-property distinction and edge parameters spec §3 requires,
// and built from a parsed text document instead of Go-struct reflection.
package schema

import "fmt"

// RootSchemaQuery is the name every schema document's root query type must
// carry, per spec §4.3 check 1.
const RootSchemaQuery = "RootSchemaQuery"

// Type is any schema-level type: a scalar, a user-defined object or
// interface, a union, or one of the two structural wrappers (List,
// NonNull). isType is unexported so only this package's types satisfy it,
// mirroring the teacher's graphql.Type sealing.
type Type interface {
	String() string
	isType()
}

// Scalar is one of the five built-in leaf types: Int, String, Boolean,
// Float, ID.
type Scalar struct {
	Name string
}

func (s *Scalar) isType()        {}
func (s *Scalar) String() string { return s.Name }

var (
	IntType     = &Scalar{Name: "Int"}
	StringType  = &Scalar{Name: "String"}
	BooleanType = &Scalar{Name: "Boolean"}
	FloatType   = &Scalar{Name: "Float"}
	IDType      = &Scalar{Name: "ID"}
)

// builtinScalars indexes the five built-in scalars by name.
var builtinScalars = map[string]*Scalar{
	"Int":     IntType,
	"String":  StringType,
	"Boolean": BooleanType,
	"Float":   FloatType,
	"ID":      IDType,
}

// List wraps an element type: the edge or property is a list of it.
type List struct {
	Of Type
}

func (l *List) isType()        {}
func (l *List) String() string { return fmt.Sprintf("[%s]", l.Of) }

// NonNull wraps a type that may not resolve to null.
type NonNull struct {
	Of Type
}

func (n *NonNull) isType()        {}
func (n *NonNull) String() string { return fmt.Sprintf("%s!", n.Of) }

// Property is a scalar-typed field: the leaf of a selection, legal only as
// an `@output`/`@filter`/`@tag` site, never a nested selection.
type Property struct {
	Name string
	Type Type // a Scalar, possibly wrapped in List/NonNull
}

// Parameter is one named, defaulted argument an edge field accepts.
type Parameter struct {
	Name       string
	Type       Type
	HasDefault bool
	Default    interface{} // literal default, already shape-checked against Type
}

// Edge is an object/interface/union-typed field: it requires a nested
// selection, takes `@output` directly only as a `@fold` aggregate, and may
// declare Parameters with defaults (spec §3).
type Edge struct {
	Name       string
	Target     Type // Object/Interface/Union, possibly wrapped in List/NonNull
	Parameters []Parameter
}

// Param looks up a declared parameter by name.
func (e *Edge) Param(name string) (Parameter, bool) {
	for _, p := range e.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Object is a concrete type with property and edge fields, and the set of
// interfaces it implements.
type Object struct {
	Name        string
	Implements  []string // interface names; resolved via Schema.Implementers
	Properties  map[string]*Property
	Edges       map[string]*Edge
}

func (o *Object) isType()        {}
func (o *Object) String() string { return o.Name }

// Interface is an abstract type: any Object implementing it may appear
// wherever the interface is expected, and an inline type coercion
// `... on Sub` narrows to one of its implementers.
type Interface struct {
	Name       string
	Properties map[string]*Property
	Edges      map[string]*Edge
}

func (i *Interface) isType()        {}
func (i *Interface) String() string { return i.Name }

// Union is a type that is exactly one of a fixed set of Objects. Unions
// carry no fields of their own; every selection against a union must be an
// inline type coercion.
type Union struct {
	Name    string
	Members []string // object names
}

func (u *Union) isType()        {}
func (u *Union) String() string { return u.Name }

// Unwrap strips NonNull/List wrappers, returning the innermost named type
// and whether a NonNull or List wrapper was seen.
func Unwrap(t Type) (inner Type, nonNull bool, list bool) {
	for {
		switch w := t.(type) {
		case *NonNull:
			nonNull = true
			t = w.Of
		case *List:
			list = true
			t = w.Of
		default:
			return t, nonNull, list
		}
	}
}

// IsNullable reports whether t permits a null value at its outermost layer.
func IsNullable(t Type) bool {
	_, nonNull, _ := Unwrap(t)
	return !nonNull
}

// IsList reports whether t is (possibly non-null) a list.
func IsList(t Type) bool {
	_, _, list := Unwrap(t)
	return list
}
