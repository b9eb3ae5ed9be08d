// Package ir implements the compiler's intermediate representation and
// the AST+Schema+arguments → IR lowering pass (spec §4.3): the validated,
// typed tree of components, vertices, edges, filters, tags, and outputs
// the interpreter drives. This is the query-language analogue of
// go.appointy.com/jaal's schemabuilder, which resolves a Go struct's
// reflected shape into resolver functions at schema-build time; here the
// equivalent resolution happens against a parsed query document instead
// of reflection, and the result is a data structure rather than a set of
// closures, since the interpreter (package interpreter) is what turns IR
// into executable behavior.
package ir

import (
	"regexp"

	"github.com/google/uuid"

	"github.com/quarryql/quarry/filter"
	"github.com/quarryql/quarry/value"
)

// EdgeKind names how an IREdge's target contexts relate to its source
// context (spec §3 IREdge, §4.3 lowering).
type EdgeKind int

const (
	EdgeMandatory EdgeKind = iota
	EdgeOptional
	EdgeRecurse
	EdgeFold
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeOptional:
		return "optional"
	case EdgeRecurse:
		return "recurse"
	case EdgeFold:
		return "fold"
	default:
		return "mandatory"
	}
}

// Query is a fully validated, compiled query: the root edge name and its
// argument bindings (what ResolveStartingVertices is called with), the
// root IRVertex, and the query-argument references it closed over (spec
// §3 IRQuery).
type Query struct {
	RootEdge      string
	RootArguments map[string]Operand
	Root          *Vertex
	Arguments     map[string]bool // names of $-arguments actually referenced
}

// Vertex is one IRVertex: a schema type plus the filters, outputs, tags,
// inline-coercion branches, and outgoing edges selected against it (spec
// §3 IRVertex).
type Vertex struct {
	TypeName  string
	Filters   []*Filter
	Outputs   []*Output
	Tags      []*Tag
	Coercions []*Coercion
	Edges     []*Edge
}

// Coercion is a `... on TypeName { ... }` inline type narrowing: the
// inner Vertex's filters/outputs/edges apply only to contexts whose
// runtime type is (a subtype of) TargetType; contexts of other runtime
// types are unaffected at the outer level (spec §4.3 check 3, §8 scenario
// 5).
type Coercion struct {
	TargetType string
	Inner      *Vertex
}

// Edge is one IREdge: an edge field selection, its argument bindings, its
// traversal kind, and the target Vertex reached through it (spec §3
// IREdge).
type Edge struct {
	Name         string
	Kind         EdgeKind
	RecurseDepth int // valid only when Kind == EdgeRecurse
	Arguments    map[string]Operand
	Target       *Vertex

	// TransformOp and OutputName are set when this edge itself carries
	// `@transform`/`@output` directly (the `@fold @transform(op:"count")
	// @output` aggregate-output case), independent of the Target vertex's
	// own Outputs.
	TransformOp string
	OutputName  string

	// Filters holds `@filter` directives applied directly to this edge
	// field: post-fold aggregate filters (spec §4.5 "Fold"), e.g.
	// `@fold @transform(op:"count") @filter(op:">=", value:["$n"])`.
	Filters []*Filter

	// FoldID identifies a `@fold` edge's nested component (spec §3
	// Component: "each fold introduces a nested component"), minted once
	// at lowering time. Package interpreter does not read it. Zero for
	// non-fold edges.
	FoldID uuid.UUID
}

// Output is one `@output` site: a property on a Vertex becomes a named
// column of the result row, optionally transformed (spec §3 Output).
type Output struct {
	Name        string
	Property    string
	TransformOp string
}

// Tag is one `@tag` site: a property value captured for later reference
// by `%name` inside a `@filter` downstream in the same component (spec §3
// Tag).
type Tag struct {
	Name     string
	Property string
}

// OperandKind distinguishes a filter/edge-argument operand that was
// already resolved to a concrete Value at compile time from one that must
// be resolved per-context at interpretation time against a captured tag.
type OperandKind int

const (
	OperandLiteral OperandKind = iota
	OperandTagRef
)

// Operand is one resolved right-hand value for a Filter or an edge
// parameter binding. `$name` query-argument references are substituted
// with their bound literal at compile time (spec §4.3 check 7); `%name`
// tag references stay symbolic because their value differs per context
// (spec §4.5, §8 "tag visibility").
type Operand struct {
	Kind    OperandKind
	Literal value.Value
	TagName string
}

// Filter is one `@filter` site: an operator, the property it reads on
// the current vertex (or "" for a post-fold aggregate filter, e.g. the
// `count @filter` scenario), its resolved operands, and — for `regex`/
// `not_regex` — the pattern compiled once at lowering time (spec §3
// Filter, §4.4, §5 "Shared resources").
type Filter struct {
	Op       filter.Op
	Property string
	Operands []Operand
	Compiled *regexp.Regexp
}
