package interpreter

import (
	"context"
	"fmt"

	"github.com/quarryql/quarry/adapter"
	"github.com/quarryql/quarry/filter"
	"github.com/quarryql/quarry/ir"
	"github.com/quarryql/quarry/value"
)

// expandEdge replaces a batch of contexts sitting at typeName with the
// batch reached by traversing e, per its kind (spec §4.5 "Mandatory",
// "Optional", "Fold", "Recurse"). Sibling edges on the same vertex are
// folded left to right by runVertex, so a context already fanned
// out by an earlier edge is fanned out again here: this is what produces
// the cross product a query with two to-many sibling edges expects.
func expandEdge(ctx context.Context, ad adapter.Adapter, parents []adapter.Ctx, typeName string, e *ir.Edge) ([]adapter.Ctx, error) {
	args, err := resolveLiteralArgs(e.Arguments)
	if err != nil {
		return nil, err
	}
	switch e.Kind {
	case ir.EdgeMandatory:
		return expandFanout(ctx, ad, parents, typeName, e, args, false)
	case ir.EdgeOptional:
		return expandFanout(ctx, ad, parents, typeName, e, args, true)
	case ir.EdgeFold:
		return expandFold(ctx, ad, parents, typeName, e, args)
	case ir.EdgeRecurse:
		return expandRecurse(ctx, ad, parents, typeName, e, args)
	default:
		return nil, fmt.Errorf("interpreter: unknown edge kind %v", e.Kind)
	}
}

// expandFanout drives a mandatory or optional edge: every neighbor of
// every parent descends into e.Target, and the resulting leaf contexts
// pop back to the parent's vertex so sibling edges and the surrounding
// row see the parent again, just decorated with whatever the descent
// captured (spec §4.5 "Mandatory", "Optional").
//
// A parent with zero neighbors is dropped for a mandatory edge (the edge
// is required to exist) and, for an optional edge, instead descends into
// adapter.Absent (spec §4.5 "Optional": property resolution against it
// must yield null, neighbor resolution must yield nothing — enforced by
// the adapter, not here).
func expandFanout(ctx context.Context, ad adapter.Adapter, parents []adapter.Ctx, typeName string, e *ir.Edge, args map[string]value.Value, useAbsentOnEmpty bool) ([]adapter.Ctx, error) {
	var out []adapter.Ctx
	for p, nr := range ad.ResolveNeighbors(ctx, seqOf(parents), typeName, e.Name, args) {
		if nr.Err != nil {
			return nil, nr.Err
		}
		neighbors := collect(nr.Neighbors)
		if len(neighbors) == 0 {
			if !useAbsentOnEmpty {
				continue
			}
			neighbors = []adapter.VertexHandle{adapter.Absent}
		}
		for _, h := range neighbors {
			child := p.Push(h)
			results, err := runVertex(ctx, ad, []adapter.Ctx{child}, e.Target)
			if err != nil {
				return nil, err
			}
			for _, r := range results {
				out = append(out, r.Pop())
			}
		}
	}
	return out, nil
}

// expandFold drives a `@fold` edge: all of a parent's neighbors descend
// into e.Target independently, and the parent context itself (not one row
// per neighbor) survives, decorated with one list output per `@output`
// declared inside the fold and, if `@transform(op:"count")` carries its
// own `@output`, the aggregate count (spec §4.5 "Fold"). A post-fold
// `@filter` on the edge itself (e.g. filtering on the count) drops the
// whole parent row if it fails (spec §4.4, the aggregate-filter case).
func expandFold(ctx context.Context, ad adapter.Adapter, parents []adapter.Ctx, typeName string, e *ir.Edge, args map[string]value.Value) ([]adapter.Ctx, error) {
	outputNames := collectOutputNames(e.Target)

	var out []adapter.Ctx
	for p, nr := range ad.ResolveNeighbors(ctx, seqOf(parents), typeName, e.Name, args) {
		if nr.Err != nil {
			return nil, nr.Err
		}
		neighbors := collect(nr.Neighbors)

		var foldRows []adapter.Ctx
		if len(neighbors) > 0 {
			children := make([]adapter.Ctx, len(neighbors))
			for i, h := range neighbors {
				// WithCurrent, not Push: a fold collapses back into the
				// parent row rather than resuming a suspended traversal,
				// so there is nothing to Pop back to. Tags already
				// captured on p stay visible to filters inside the fold
				// (spec §4.5, "tags defined outside a fold are visible
				// inside it").
				children[i] = p.WithCurrent(h)
			}
			rows, err := runVertex(ctx, ad, children, e.Target)
			if err != nil {
				return nil, err
			}
			foldRows = rows
		}

		aggregate := value.FromInt64(int64(len(foldRows)))
		keep := true
		for _, f := range e.Filters {
			matched, err := filter.Eval(f.Op, aggregate, resolveFilterOperands(f, p), f.Compiled)
			if err != nil {
				return nil, err
			}
			if !matched {
				keep = false
				break
			}
		}
		if !keep {
			continue
		}

		result := p
		if e.TransformOp == "count" && e.OutputName != "" {
			result = result.WithOutput(e.OutputName, aggregate)
		}
		for _, name := range outputNames {
			vals := make([]value.Value, len(foldRows))
			for i, fr := range foldRows {
				if v, ok := fr.Outputs()[name]; ok {
					vals[i] = v
				} else {
					vals[i] = value.NullValue()
				}
			}
			result = result.WithOutput(name, value.FromList(vals))
		}
		out = append(out, result)
	}
	return out, nil
}

// expandRecurse drives a `@recurse(depth: N)` edge: the parent vertex
// itself (depth 0) plus every vertex reached by following the edge up to
// N times (breadth-first) each descend into e.Target independently and
// surface as their own row, merged back at the parent's level rather than
// nested under one another (spec §4.5 "Recurse", §8 scenario 4).
func expandRecurse(ctx context.Context, ad adapter.Adapter, parents []adapter.Ctx, typeName string, e *ir.Edge, args map[string]value.Value) ([]adapter.Ctx, error) {
	var out []adapter.Ctx
	for _, p := range parents {
		visited := []adapter.VertexHandle{p.Current}
		frontier := []adapter.VertexHandle{p.Current}

		for depth := 1; depth <= e.RecurseDepth && len(frontier) > 0; depth++ {
			frontierCtxs := make([]adapter.Ctx, len(frontier))
			for i, h := range frontier {
				frontierCtxs[i] = p.WithCurrent(h)
			}
			var next []adapter.VertexHandle
			for _, nr := range ad.ResolveNeighbors(ctx, seqOf(frontierCtxs), typeName, e.Name, args) {
				if nr.Err != nil {
					return nil, nr.Err
				}
				next = append(next, collect(nr.Neighbors)...)
			}
			visited = append(visited, next...)
			frontier = next
		}

		children := make([]adapter.Ctx, len(visited))
		for i, h := range visited {
			children[i] = p.Push(h)
		}
		results, err := runVertex(ctx, ad, children, e.Target)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			out = append(out, r.Pop())
		}
	}
	return out, nil
}
