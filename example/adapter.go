package example

import (
	"context"
	"fmt"
	"iter"

	"github.com/google/uuid"

	"github.com/quarryql/quarry/adapter"
	"github.com/quarryql/quarry/value"
)

// resolverAdapter is the Dataset's adapter.Adapter implementation. It
// keeps a single adapter.StructResolver (package-level concerns cached
// once per Node type, spec §4.6 "helper combinators") rather than
// reflecting on every call.
type resolverAdapter struct {
	data     *Dataset
	resolver *adapter.StructResolver
}

// NewAdapter wraps d as an adapter.Adapter.
func NewAdapter(d *Dataset) adapter.Adapter {
	return &resolverAdapter{data: d, resolver: adapter.NewStructResolver()}
}

func (r *resolverAdapter) ResolveStartingVertices(ctx context.Context, edge string, parameters map[string]value.Value) iter.Seq[adapter.StartResult] {
	return func(yield func(adapter.StartResult) bool) {
		if edge != "V" {
			yield(adapter.StartResult{Err: fmt.Errorf("example: no root edge %q", edge)})
			return
		}
		for _, id := range r.data.roots {
			if !yield(adapter.StartResult{Vertex: id}) {
				return
			}
		}
	}
}

func (r *resolverAdapter) ResolveProperty(ctx context.Context, contexts iter.Seq[adapter.Ctx], typeName, property string) iter.Seq2[adapter.Ctx, adapter.PropertyResult] {
	return func(yield func(adapter.Ctx, adapter.PropertyResult) bool) {
		for c := range contexts {
			n := r.handleNode(c.Current)
			v, err := scalarValue(r, n, property)
			if !yield(c, adapter.PropertyResult{Value: v, Err: err}) {
				return
			}
		}
	}
}

func (r *resolverAdapter) ResolveNeighbors(ctx context.Context, contexts iter.Seq[adapter.Ctx], typeName, edge string, parameters map[string]value.Value) iter.Seq2[adapter.Ctx, adapter.NeighborResult] {
	return func(yield func(adapter.Ctx, adapter.NeighborResult) bool) {
		for c := range contexts {
			n := r.handleNode(c.Current)
			handles := r.edgeTargets(n, edge)
			seq := func(yield func(adapter.VertexHandle) bool) {
				for _, h := range handles {
					if !yield(h) {
						return
					}
				}
			}
			if !yield(c, adapter.NeighborResult{Neighbors: seq}) {
				return
			}
		}
	}
}

func (r *resolverAdapter) ResolveCoercion(ctx context.Context, contexts iter.Seq[adapter.Ctx], fromType, toType string) iter.Seq2[adapter.Ctx, adapter.CoercionResult] {
	return func(yield func(adapter.Ctx, adapter.CoercionResult) bool) {
		for c := range contexts {
			n := r.handleNode(c.Current)
			matches := n != nil && n.Kind == toType
			if !yield(c, adapter.CoercionResult{Matches: matches}) {
				return
			}
		}
	}
}

func (r *resolverAdapter) handleNode(h adapter.VertexHandle) *Node {
	if adapter.IsAbsent(h) {
		return nil
	}
	id, ok := h.(uuid.UUID)
	if !ok {
		return nil
	}
	return r.data.node(id)
}

func (r *resolverAdapter) edgeTargets(n *Node, edge string) []adapter.VertexHandle {
	if n == nil {
		return nil
	}
	switch edge {
	case "neighbor":
		if n.Neighbor == nil {
			return nil
		}
		return []adapter.VertexHandle{*n.Neighbor}
	case "child":
		if n.Child == nil {
			return nil
		}
		return []adapter.VertexHandle{*n.Child}
	case "friends":
		out := make([]adapter.VertexHandle, len(n.Friends))
		for i, id := range n.Friends {
			out[i] = id
		}
		return out
	default:
		return nil
	}
}
