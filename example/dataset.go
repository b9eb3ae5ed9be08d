// Package example is a small in-memory Adapter implementation: a hand
// built tree/graph fixture exercising every combinator the interpreter
// supports (spec §8's six concrete scenarios), in the spirit of the
// teacher's example/character and example/users demo servers — a
// reflection-backed struct dataset wired to the query engine — with the
// GraphQL HTTP server layer those demos carried removed, since transport
// is explicitly out of scope (spec §1).
package example

import (
	"github.com/google/uuid"

	"github.com/quarryql/quarry/value"
)

// Node is the plain Go struct backing every vertex in the fixture graph.
// Scalar fields are resolved by name through adapter.StructResolver (the
// `quarry` tag pins the property name so renaming a Go field never
// silently renames the schema property); edges are resolved by the
// adapter's edgeTargets switch, since StructResolver only ever sees scalar
// properties (spec §4.6).
type Node struct {
	ID            string `quarry:"id"`
	Name          string `quarry:"name"`
	N             int64  `quarry:"n"`
	K             string `quarry:"k"`
	OnlyInSpecial string `quarry:"only_in_special"`

	Kind     string // "Vertex" or "SpecialVertex" — the schema type this node presents as
	Neighbor *uuid.UUID
	Child    *uuid.UUID
	Friends  []uuid.UUID
}

// Dataset is the fixture graph: every Node keyed by its handle.
type Dataset struct {
	roots []uuid.UUID
	nodes map[uuid.UUID]*Node
}

// NewDataset builds an empty fixture with no starting vertices.
func NewDataset() *Dataset {
	return &Dataset{nodes: map[uuid.UUID]*Node{}}
}

// AddRoot inserts n as a starting vertex (reachable from the root "V"
// edge) and returns its freshly minted handle.
func (d *Dataset) AddRoot(n Node) uuid.UUID {
	id := d.add(n)
	d.roots = append(d.roots, id)
	return id
}

// Add inserts n without making it a starting vertex — used for nodes only
// reachable by traversing an edge from another node.
func (d *Dataset) Add(n Node) uuid.UUID {
	return d.add(n)
}

func (d *Dataset) add(n Node) uuid.UUID {
	id := uuid.New()
	if n.ID == "" {
		n.ID = id.String()
	}
	if n.Kind == "" {
		n.Kind = "Vertex"
	}
	nd := n
	d.nodes[id] = &nd
	return id
}

func (d *Dataset) node(id uuid.UUID) *Node { return d.nodes[id] }

// SetNeighbor wires id's single "neighbor" edge to target, after both have
// already been inserted — edges are set up as a second pass since a
// Node's neighbor is itself identified by the handle Add/AddRoot mints.
func (d *Dataset) SetNeighbor(id, target uuid.UUID) {
	t := target
	d.nodes[id].Neighbor = &t
}

// SetChild wires id's single "child" edge to target.
func (d *Dataset) SetChild(id, target uuid.UUID) {
	t := target
	d.nodes[id].Child = &t
}

// SetFriends wires id's "friends" edge to the given targets, in order.
func (d *Dataset) SetFriends(id uuid.UUID, targets ...uuid.UUID) {
	d.nodes[id].Friends = targets
}

// scalarValue reads one named scalar property off n through the
// resolver's reflection-backed StructResolver.
func scalarValue(r *resolverAdapter, n *Node, property string) (value.Value, error) {
	if n == nil {
		return value.NullValue(), nil
	}
	return r.resolver.Property(n, property)
}
