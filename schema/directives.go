package schema

// DirectiveName enumerates the engine's seven built-in directives (spec §3,
// §4.1). Unlike stock GraphQL, these are not user-declarable: their
// locations, arities, and repeatability are fixed by the engine, not the
// schema document. The naming and the "where can this appear" table below
// follow the DirectiveLocation/TypeKind enumeration style of
// introspection.go's DirectiveLocation/TypeKind constants, repointed at our
// own fixed directive set instead of stock GraphQL's.
type DirectiveName string

const (
	DirectiveFilter    DirectiveName = "filter"
	DirectiveTag       DirectiveName = "tag"
	DirectiveOutput    DirectiveName = "output"
	DirectiveOptional  DirectiveName = "optional"
	DirectiveRecurse   DirectiveName = "recurse"
	DirectiveFold      DirectiveName = "fold"
	DirectiveTransform DirectiveName = "transform"
)

// Location is where in a selection a directive application was found.
type Location string

const (
	LocationScalarField Location = "SCALAR_FIELD"
	LocationEdgeField   Location = "EDGE_FIELD"
)

// DirectiveRule describes one built-in directive's legality: which
// locations it may appear at, whether it may repeat on one field, and its
// declared argument names (argument *typing* against filter operators is
// checked in package ir, since it depends on the operator named by the
// `op` argument).
type DirectiveRule struct {
	Name         DirectiveName
	Locations    []Location
	Repeatable   bool
	Arguments    []string
	// Excludes lists directives that may not co-occur with this one on the
	// same field, per spec §4.3 check 4 (`@fold`/`@recurse` mutually
	// exclusive; `@optional` excludes both).
	Excludes []DirectiveName
}

// BuiltinDirectives is the fixed legality table for the engine's seven
// directives.
var BuiltinDirectives = map[DirectiveName]DirectiveRule{
	DirectiveFilter: {
		Name:       DirectiveFilter,
		Locations:  []Location{LocationScalarField, LocationEdgeField},
		Repeatable: true,
		Arguments:  []string{"op", "value"},
	},
	DirectiveTag: {
		Name:      DirectiveTag,
		Locations: []Location{LocationScalarField},
		Arguments: []string{"name"},
	},
	DirectiveOutput: {
		Name: DirectiveOutput,
		// Legal on a scalar field directly, or on an edge field paired
		// with `@fold @transform` to output the fold's aggregate (e.g.
		// `friends @fold @transform(op:"count") @output`).
		Locations: []Location{LocationScalarField, LocationEdgeField},
		Arguments: []string{"name"},
	},
	DirectiveOptional: {
		Name:      DirectiveOptional,
		Locations: []Location{LocationEdgeField},
		Excludes:  []DirectiveName{DirectiveFold, DirectiveRecurse},
	},
	DirectiveRecurse: {
		Name:      DirectiveRecurse,
		Locations: []Location{LocationEdgeField},
		Arguments: []string{"depth"},
		Excludes:  []DirectiveName{DirectiveFold, DirectiveOptional},
	},
	DirectiveFold: {
		Name:      DirectiveFold,
		Locations: []Location{LocationEdgeField},
		Excludes:  []DirectiveName{DirectiveRecurse, DirectiveOptional},
	},
	DirectiveTransform: {
		Name:      DirectiveTransform,
		Locations: []Location{LocationEdgeField},
		Arguments: []string{"op"},
	},
}

// KnownTransforms is the closed taxonomy of `@transform` operations spec
// §4.4 describes as "closed per-build": currently just `count`.
var KnownTransforms = map[string]bool{
	"count": true,
}
