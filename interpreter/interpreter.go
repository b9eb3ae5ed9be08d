// Package interpreter drives a compiled query (package ir) against an
// Adapter (package adapter), producing result rows (spec §4.5). Where
// go.appointy.com/jaal's executor (graphql/executor.go, not carried into
// this module) walks a query against resolver closures built ahead of
// time by schemabuilder, this package walks IR against Adapter methods
// directly: there is no intermediate resolver-closure layer because the
// IR already is that layer, produced once at compile time by package ir.
//
// A Context (package adapter's Ctx) flows through the walk one vertex at
// a time: property resolution narrows and decorates a batch of contexts,
// edge expansion replaces a batch with its fan-out, and a context that
// survives to the end of the root vertex yields one output row. Optional,
// fold, and recurse are the three combinators that change how edge
// expansion behaves (spec §4.5); everything else is the same batched
// filter/tag/output/coercion machinery described in spec §4.3 run at
// interpretation time instead of compile time.
package interpreter

import (
	"context"
	"fmt"
	"iter"

	"github.com/quarryql/quarry/adapter"
	"github.com/quarryql/quarry/filter"
	"github.com/quarryql/quarry/ir"
	"github.com/quarryql/quarry/value"
)

// Execute runs q against ad, returning a lazy stream of result rows (spec
// §4.5 "Row emission"). Row keys are every `@output` name declared
// anywhere in q, including ones that did not apply to a particular row
// (an inline coercion branch the row's type didn't match, or a nested
// field beneath an `@optional` edge that resolved absent): those come
// back as value.NullValue() so every row has the same shape.
//
// Iteration stops at the first adapter error, which Execute reports as
// the second value of the final yielded pair (spec §4.5 "Failure
// semantics": a fault aborts the whole query, not just the row in
// progress).
func Execute(ctx context.Context, ad adapter.Adapter, q *ir.Query) iter.Seq2[map[string]value.Value, error] {
	names := collectOutputNames(q.Root)

	return func(yield func(map[string]value.Value, error) bool) {
		args, err := resolveLiteralArgs(q.RootArguments)
		if err != nil {
			yield(nil, err)
			return
		}

		for sr := range ad.ResolveStartingVertices(ctx, q.RootEdge, args) {
			if sr.Err != nil {
				yield(nil, sr.Err)
				return
			}
			results, err := runVertex(ctx, ad, []adapter.Ctx{adapter.NewCtx(sr.Vertex)}, q.Root)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, r := range results {
				row := make(map[string]value.Value, len(names))
				outputs := r.Outputs()
				for _, n := range names {
					if v, ok := outputs[n]; ok {
						row[n] = v
					} else {
						row[n] = value.NullValue()
					}
				}
				if !yield(row, nil) {
					return
				}
			}
		}
	}
}

// collectOutputNames walks every output site a vertex tree can produce:
// its own `@output` properties, every coercion branch's outputs, and
// every edge's own aggregate `@output` (fold) plus its target's outputs.
func collectOutputNames(v *ir.Vertex) []string {
	var names []string
	for _, o := range v.Outputs {
		names = append(names, o.Name)
	}
	for _, c := range v.Coercions {
		names = append(names, collectOutputNames(c.Inner)...)
	}
	for _, e := range v.Edges {
		if e.OutputName != "" {
			names = append(names, e.OutputName)
		}
		names = append(names, collectOutputNames(e.Target)...)
	}
	return names
}

// runVertex applies one Vertex's tags, filters, outputs, coercions, and
// edges against a batch of contexts already positioned on that vertex's
// type, in that order: tags before filters so a filter elsewhere in the
// component can reference a tag captured on this vertex (spec §4.3 check
// 6 only constrains compile-time visibility; at interpretation time every
// tag this vertex defines must simply be captured before anything that
// might read it runs), and edges last since they are the only step that
// changes which contexts are present rather than how they are decorated.
func runVertex(ctx context.Context, ad adapter.Adapter, in []adapter.Ctx, v *ir.Vertex) ([]adapter.Ctx, error) {
	ctxs := in

	for _, tag := range v.Tags {
		updated, err := decorateTags(ctx, ad, ctxs, v.TypeName, tag)
		if err != nil {
			return nil, err
		}
		ctxs = updated
	}
	for _, f := range v.Filters {
		survivors, err := applyPropertyFilter(ctx, ad, ctxs, v.TypeName, f)
		if err != nil {
			return nil, err
		}
		ctxs = survivors
	}
	for _, o := range v.Outputs {
		updated, err := decorateOutputs(ctx, ad, ctxs, v.TypeName, o)
		if err != nil {
			return nil, err
		}
		ctxs = updated
	}
	for _, c := range v.Coercions {
		updated, err := applyCoercion(ctx, ad, ctxs, v.TypeName, c)
		if err != nil {
			return nil, err
		}
		ctxs = updated
	}
	for _, e := range v.Edges {
		updated, err := expandEdge(ctx, ad, ctxs, v.TypeName, e)
		if err != nil {
			return nil, err
		}
		ctxs = updated
	}
	return ctxs, nil
}

func decorateTags(ctx context.Context, ad adapter.Adapter, ctxs []adapter.Ctx, typeName string, tag *ir.Tag) ([]adapter.Ctx, error) {
	out := make([]adapter.Ctx, 0, len(ctxs))
	for c, pr := range ad.ResolveProperty(ctx, seqOf(ctxs), typeName, tag.Property) {
		if pr.Err != nil {
			return nil, pr.Err
		}
		out = append(out, c.WithTag(tag.Name, pr.Value))
	}
	return out, nil
}

func decorateOutputs(ctx context.Context, ad adapter.Adapter, ctxs []adapter.Ctx, typeName string, o *ir.Output) ([]adapter.Ctx, error) {
	out := make([]adapter.Ctx, 0, len(ctxs))
	for c, pr := range ad.ResolveProperty(ctx, seqOf(ctxs), typeName, o.Property) {
		if pr.Err != nil {
			return nil, pr.Err
		}
		out = append(out, c.WithOutput(o.Name, pr.Value))
	}
	return out, nil
}

func applyPropertyFilter(ctx context.Context, ad adapter.Adapter, ctxs []adapter.Ctx, typeName string, f *ir.Filter) ([]adapter.Ctx, error) {
	var out []adapter.Ctx
	for c, pr := range ad.ResolveProperty(ctx, seqOf(ctxs), typeName, f.Property) {
		if pr.Err != nil {
			return nil, pr.Err
		}
		operands := resolveFilterOperands(f, c)
		matched, err := filter.Eval(f.Op, pr.Value, operands, f.Compiled)
		if err != nil {
			return nil, err
		}
		if matched {
			out = append(out, c)
		}
	}
	return out, nil
}

// applyCoercion checks each context against TargetType and, for the ones
// that match, runs the coercion's inner vertex (spec §4.3 check 3, §8
// scenario 5). Non-matching contexts pass through unchanged. Results are
// emitted in input order — a matched context may expand into 0..n rows
// (the inner vertex's own filters/edges can drop or multiply it), but
// that never moves it ahead of or behind its unmatched neighbors (spec
// §5 "rows produced in deterministic order derived from the adapter's
// starting-vertex order"; §8 order-preservation).
func applyCoercion(ctx context.Context, ad adapter.Adapter, ctxs []adapter.Ctx, typeName string, c *ir.Coercion) ([]adapter.Ctx, error) {
	var out []adapter.Ctx
	for cv, cr := range ad.ResolveCoercion(ctx, seqOf(ctxs), typeName, c.TargetType) {
		if cr.Err != nil {
			return nil, cr.Err
		}
		if !cr.Matches {
			out = append(out, cv)
			continue
		}
		results, err := runVertex(ctx, ad, []adapter.Ctx{cv}, c.Inner)
		if err != nil {
			return nil, err
		}
		out = append(out, results...)
	}
	return out, nil
}

// resolveFilterOperands resolves a Filter's Operands against c: `$name`
// references were already substituted at compile time (ir.OperandLiteral
// carries the value directly); `%name` tag references are looked up on c,
// per-row, since the tagged value differs across the context batch (spec
// §4.5, §8 "tag visibility"). A tag somehow not captured on this
// particular path (only reachable via a coercion branch a given row did
// not take) resolves to null rather than aborting the query.
func resolveFilterOperands(f *ir.Filter, c adapter.Ctx) []value.Value {
	out := make([]value.Value, len(f.Operands))
	for i, op := range f.Operands {
		if op.Kind == ir.OperandLiteral {
			out[i] = op.Literal
			continue
		}
		if v, ok := c.Tag(op.TagName); ok {
			out[i] = v
		} else {
			out[i] = value.NullValue()
		}
	}
	return out
}

func resolveLiteralArgs(ops map[string]ir.Operand) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(ops))
	for name, op := range ops {
		if op.Kind != ir.OperandLiteral {
			return nil, fmt.Errorf("interpreter: argument %q did not resolve to a literal value at compile time", name)
		}
		out[name] = op.Literal
	}
	return out, nil
}

func seqOf[T any](xs []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, x := range xs {
			if !yield(x) {
				return
			}
		}
	}
}

func collect[T any](seq iter.Seq[T]) []T {
	var out []T
	for x := range seq {
		out = append(out, x)
	}
	return out
}
