// Package adapter defines the capability interface a dataset provider
// implements (spec §4.6): resolving starting vertices, properties,
// neighbors, and type coercions, each as an ordered lazy stream. It also
// defines Ctx, the interpreter-time context record threaded through every
// resolution step (spec §3 "Context"), since the Adapter contract and the
// shape of what flows through it are two faces of the same boundary.
//
// Every Adapter method returns a stdlib range-over-func iterator
// (`iter.Seq`/`iter.Seq2`, Go 1.23+) rather than a channel: the engine's
// scheduling model is single-threaded cooperative and pull-based (spec
// §5), and `iter.Seq` is the idiomatic in-language expression of "demand
// drives production" with no implicit goroutine or buffering, unlike the
// channel-based resolver patterns elsewhere in the retrieval pack.
package adapter

import (
	"context"
	"iter"

	"github.com/quarryql/quarry/value"
)

// VertexHandle is an opaque, adapter-owned identity for a graph vertex
// (spec §3 "VertexHandle"). The engine never inspects it; it only holds,
// copies, and hands it back to the adapter.
type VertexHandle interface{}

// Ctx is an in-flight partial row: the current vertex, the stack of
// vertices suspended during edge/optional/fold/recurse descent, the tags
// captured so far, and the outputs accumulated so far (spec §3
// "Context"). Ctx values are conceptually immutable; every mutator
// method returns a new Ctx rather than modifying the receiver.
//
// Named Ctx rather than Context to avoid colliding with the ubiquitous
// stdlib context.Context used for cancellation throughout this package.
type Ctx struct {
	Current   VertexHandle
	suspended []VertexHandle
	tags      map[string]value.Value
	outputs   map[string]value.Value
}

// NewCtx starts a fresh context at a starting vertex, with no suspended
// ancestors, tags, or outputs.
func NewCtx(v VertexHandle) Ctx {
	return Ctx{Current: v}
}

// WithCurrent returns a copy of c with a new current vertex, leaving
// suspended/tags/outputs untouched.
func (c Ctx) WithCurrent(v VertexHandle) Ctx {
	c.Current = v
	return c
}

// Push suspends the current vertex and descends to v: used when
// expanding an edge, so sibling selections or the optional/fold/recurse
// combinator can later restore the vertex the edge was taken from.
func (c Ctx) Push(v VertexHandle) Ctx {
	suspended := make([]VertexHandle, len(c.suspended)+1)
	copy(suspended, c.suspended)
	suspended[len(suspended)-1] = c.Current
	c.suspended = suspended
	c.Current = v
	return c
}

// Pop restores the most recently suspended vertex as current, dropping
// it off the suspended stack. Calling Pop on a context with no suspended
// vertices is a programmer error in the interpreter, not a user-facing
// one; it panics.
func (c Ctx) Pop() Ctx {
	if len(c.suspended) == 0 {
		panic("adapter: Pop called on a context with no suspended vertices")
	}
	c.Current = c.suspended[len(c.suspended)-1]
	c.suspended = c.suspended[:len(c.suspended)-1]
	return c
}

// WithTag returns a copy of c with name bound to v in its tag map.
func (c Ctx) WithTag(name string, v value.Value) Ctx {
	tags := make(map[string]value.Value, len(c.tags)+1)
	for k, existing := range c.tags {
		tags[k] = existing
	}
	tags[name] = v
	c.tags = tags
	return c
}

// Tag looks up a previously captured tag value.
func (c Ctx) Tag(name string) (value.Value, bool) {
	v, ok := c.tags[name]
	return v, ok
}

// WithOutput returns a copy of c with name bound to v in its output map.
func (c Ctx) WithOutput(name string, v value.Value) Ctx {
	outputs := make(map[string]value.Value, len(c.outputs)+1)
	for k, existing := range c.outputs {
		outputs[k] = existing
	}
	outputs[name] = v
	c.outputs = outputs
	return c
}

// Outputs returns the accumulated output map. Callers must not mutate
// the returned map.
func (c Ctx) Outputs() map[string]value.Value { return c.outputs }

// Absent is the distinguished marker used as a Ctx's Current vertex when
// an `@optional` edge's target did not exist (spec §4.5 "Optional").
// Property resolution against it must return null; edge traversal from
// it must yield no neighbors.
var Absent VertexHandle = absentMarker{}

type absentMarker struct{}

// IsAbsent reports whether v is the Absent marker.
func IsAbsent(v VertexHandle) bool {
	_, ok := v.(absentMarker)
	return ok
}

// PropertyResult pairs a resolved property Value with an error, so a
// faulting resolution can abort the query (spec §4.5 "Failure
// semantics") instead of silently dropping a row.
type PropertyResult struct {
	Value value.Value
	Err   error
}

// NeighborResult pairs a context's neighbor stream with an error.
type NeighborResult struct {
	Neighbors iter.Seq[VertexHandle]
	Err       error
}

// CoercionResult pairs a coercion check's boolean outcome with an error.
type CoercionResult struct {
	Matches bool
	Err     error
}

// StartResult pairs a starting vertex handle with an error, so a faulting
// enumeration aborts the query at the point of the fault rather than
// after silently truncating.
type StartResult struct {
	Vertex VertexHandle
	Err    error
}

// Adapter is the capability a dataset provider implements (spec §4.6):
// four operations, each an ordered lazy stream, each required to
// preserve input order and produce exactly one output per input (the
// neighbor stream itself may have arbitrary size).
type Adapter interface {
	// ResolveStartingVertices enumerates the vertices reachable from the
	// named root edge (e.g. "V" in `{ V { ... } }`) with the given
	// argument bindings.
	ResolveStartingVertices(ctx context.Context, edge string, parameters map[string]value.Value) iter.Seq[StartResult]

	// ResolveProperty resolves a scalar property on the current vertex of
	// each incoming context, in order, one result per input.
	ResolveProperty(ctx context.Context, contexts iter.Seq[Ctx], typeName, property string) iter.Seq2[Ctx, PropertyResult]

	// ResolveNeighbors resolves an edge's target vertices for the current
	// vertex of each incoming context, in order, one neighbor-stream per
	// input context.
	ResolveNeighbors(ctx context.Context, contexts iter.Seq[Ctx], typeName, edge string, parameters map[string]value.Value) iter.Seq2[Ctx, NeighborResult]

	// ResolveCoercion checks, for the current vertex of each incoming
	// context, whether it actually holds a value of toType (spec §4.3
	// check 3, "inline type coercions narrow to a declared subtype
	// only").
	ResolveCoercion(ctx context.Context, contexts iter.Seq[Ctx], fromType, toType string) iter.Seq2[Ctx, CoercionResult]
}
