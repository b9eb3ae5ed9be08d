// Package quarry is the engine's front door: it ties schema loading,
// query parsing, IR compilation, and interpretation into the two calls
// an embedding program needs, Compile and Execute. Where the teacher's
// http.go wired parse → validate → execute behind an http.Handler,
// package quarry generalizes that same orchestration with the transport
// layer removed (spec §1 explicitly excludes CLI/packaging and adapter
// registration; an embedder brings its own transport, if any, over
// Execute's row stream).
package quarry

import (
	"context"
	"iter"

	"github.com/quarryql/quarry/adapter"
	"github.com/quarryql/quarry/ast"
	"github.com/quarryql/quarry/interpreter"
	"github.com/quarryql/quarry/ir"
	"github.com/quarryql/quarry/schema"
	"github.com/quarryql/quarry/value"
)

// Schema wraps a loaded schema document: the type registry every query
// compiled against it is checked and lowered through.
type Schema = schema.Schema

// Query is a compiled, validated query, ready to run against any Adapter
// whose exposed types satisfy the schema it was compiled against.
type Query = ir.Query

// LoadSchema parses and validates a schema document (spec §4.1, §6
// "Schema document format").
func LoadSchema(src string) (*Schema, error) {
	return schema.Load(src)
}

// Compile parses a query document and lowers it against sch, substituting
// `$name` argument references with the Values in args (spec §4.2, §4.3).
// The returned Query is immutable and may be Execute'd any number of
// times, including concurrently, against any Adapter (spec §5 "Shared
// resources").
func Compile(sch *Schema, queryText string, args map[string]value.Value) (*Query, error) {
	doc, err := ast.Parse(queryText)
	if err != nil {
		return nil, err
	}
	return ir.Compile(doc, sch, args)
}

// ExecuteOptions configures one Execute call: a generalization of
// http.go's handlerOptions/HandlerOption pattern from per-request HTTP
// middleware to a per-query resource limit.
type ExecuteOptions struct {
	// MaxRows caps the number of rows Execute yields before it stops
	// early, regardless of how many more the query would otherwise
	// produce. Zero means unlimited.
	MaxRows int
}

// ExecuteOption configures an ExecuteOptions value.
type ExecuteOption func(*ExecuteOptions)

// WithMaxRows caps a single Execute call at n rows.
func WithMaxRows(n int) ExecuteOption {
	return func(o *ExecuteOptions) { o.MaxRows = n }
}

// Execute runs q against ad and returns its result rows as a lazy stream
// (spec §4.5, §6 "Output rows"). Iteration stops at the first adapter
// error, reported as the final pair's error value, or once MaxRows rows
// have been yielded, whichever comes first.
func Execute(ctx context.Context, ad adapter.Adapter, q *Query, opts ...ExecuteOption) iter.Seq2[map[string]value.Value, error] {
	o := ExecuteOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	return func(yield func(map[string]value.Value, error) bool) {
		n := 0
		for row, err := range interpreter.Execute(ctx, ad, q) {
			if err != nil {
				yield(row, err)
				return
			}
			if !yield(row, nil) {
				return
			}
			n++
			if o.MaxRows > 0 && n >= o.MaxRows {
				return
			}
		}
	}
}
