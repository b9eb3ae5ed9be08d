// Package ast provides a lossless parse of the query document into a tree
// of selection sets, directives, and arguments, preserving source order
// (spec §4.2) — the query-side analogue of package schema's document
// parser, generalized from go.appointy.com/jaal's graphql.SelectionSet /
// graphql.Selection / graphql.Directive into a document carrying its own
// byte-offset positions and a literal/variable-reference argument value
// model (the teacher leaves argument parsing to a later, reflection-driven
// stage; our compiler needs arguments fully parsed up front).
package ast

// Document is a parsed query document: a single anonymous query operation
// (spec §6), i.e. just its root SelectionSet.
type Document struct {
	Root *SelectionSet
}

// SelectionSet is an ordered sequence of field selections and inline type
// coercions.
type SelectionSet struct {
	Selections []Selection
}

// Selection is either a *Field or an *InlineCoercion.
type Selection interface {
	isSelection()
	Position() int
}

// Field is a single selected field: name, optional alias, arguments,
// directives, and (for edge fields) a nested selection set.
type Field struct {
	Name         string
	Alias        string // empty when no alias was written
	Arguments    []Argument
	Directives   []Directive
	SelectionSet *SelectionSet // nil for a scalar leaf
	Pos          int
}

func (f *Field) isSelection()  {}
func (f *Field) Position() int { return f.Pos }

// OutputName is the name a Field's value is known by downstream: its
// alias if one was written, else its field name.
func (f *Field) OutputName() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// InlineCoercion is `... on TypeName { ... }`: narrows the current type to
// a declared subtype for the nested selection set.
type InlineCoercion struct {
	TypeName     string
	SelectionSet *SelectionSet
	Pos          int
}

func (c *InlineCoercion) isSelection()  {}
func (c *InlineCoercion) Position() int { return c.Pos }

// Argument is one `name: value` pair inside a field's argument list or a
// directive's argument list.
type Argument struct {
	Name  string
	Value Literal
	Pos   int
}

// Directive is one `@name(args...)` application.
type Directive struct {
	Name      string
	Arguments []Argument
	Pos       int
}

// Arg looks up a directive argument by name.
func (d Directive) Arg(name string) (Argument, bool) {
	for _, a := range d.Arguments {
		if a.Name == name {
			return a, true
		}
	}
	return Argument{}, false
}

// LiteralKind enumerates what shape an argument value took in the source
// text: a literal of one of the value kinds, a list of literals, or a
// `$name` reference to the query's argument map.
type LiteralKind int

const (
	LitNull LiteralKind = iota
	LitInt
	LitFloat
	LitString
	LitBool
	LitEnum
	LitList
	LitVar
	LitTagRef // `%name`, a reference to a tag captured earlier in the query
)

// Literal is a parsed argument value.
type Literal struct {
	Kind LiteralKind
	I    int64
	F    float64
	S    string // String/Enum payload, or the referenced name for Var/TagRef
	B    bool
	List []Literal
	Pos  int
}
