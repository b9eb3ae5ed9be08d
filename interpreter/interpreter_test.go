package interpreter

import (
	"context"
	"iter"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarryql/quarry/adapter"
	"github.com/quarryql/quarry/ast"
	"github.com/quarryql/quarry/ir"
	"github.com/quarryql/quarry/schema"
	"github.com/quarryql/quarry/value"
)

// fakeVertex is one node in the in-memory fixture graphs the tests below
// build by hand: a type name, an id, scalar properties, and edges to
// other fakeVertex ids by edge name.
type fakeVertex struct {
	typeName   string
	id         string
	properties map[string]value.Value
	edges      map[string][]string // edge name -> target ids
}

// fakeAdapter is a minimal adapter.Adapter over a fixed, in-memory set of
// fakeVertex values, keyed by id, with a single declared root edge. It
// exists only to exercise the interpreter's combinators against the
// concrete scenarios; package example's adapter is the real one.
type fakeAdapter struct {
	roots    []string // vertex ids ResolveStartingVertices enumerates
	vertices map[string]*fakeVertex
}

func (f *fakeAdapter) vertex(h adapter.VertexHandle) *fakeVertex {
	if adapter.IsAbsent(h) {
		return nil
	}
	id, _ := h.(string)
	return f.vertices[id]
}

func (f *fakeAdapter) ResolveStartingVertices(ctx context.Context, edge string, parameters map[string]value.Value) iter.Seq[adapter.StartResult] {
	return func(yield func(adapter.StartResult) bool) {
		for _, id := range f.roots {
			if !yield(adapter.StartResult{Vertex: id}) {
				return
			}
		}
	}
}

func (f *fakeAdapter) ResolveProperty(ctx context.Context, contexts iter.Seq[adapter.Ctx], typeName, property string) iter.Seq2[adapter.Ctx, adapter.PropertyResult] {
	return func(yield func(adapter.Ctx, adapter.PropertyResult) bool) {
		for c := range contexts {
			v := f.vertex(c.Current)
			if v == nil {
				if !yield(c, adapter.PropertyResult{Value: value.NullValue()}) {
					return
				}
				continue
			}
			val, ok := v.properties[property]
			if !ok {
				val = value.NullValue()
			}
			if !yield(c, adapter.PropertyResult{Value: val}) {
				return
			}
		}
	}
}

func (f *fakeAdapter) ResolveNeighbors(ctx context.Context, contexts iter.Seq[adapter.Ctx], typeName, edge string, parameters map[string]value.Value) iter.Seq2[adapter.Ctx, adapter.NeighborResult] {
	return func(yield func(adapter.Ctx, adapter.NeighborResult) bool) {
		for c := range contexts {
			v := f.vertex(c.Current)
			var ids []string
			if v != nil {
				ids = v.edges[edge]
			}
			neighbors := func(yield func(adapter.VertexHandle) bool) {
				for _, id := range ids {
					if !yield(adapter.VertexHandle(id)) {
						return
					}
				}
			}
			if !yield(c, adapter.NeighborResult{Neighbors: neighbors}) {
				return
			}
		}
	}
}

func (f *fakeAdapter) ResolveCoercion(ctx context.Context, contexts iter.Seq[adapter.Ctx], fromType, toType string) iter.Seq2[adapter.Ctx, adapter.CoercionResult] {
	return func(yield func(adapter.Ctx, adapter.CoercionResult) bool) {
		for c := range contexts {
			v := f.vertex(c.Current)
			matches := v != nil && v.typeName == toType
			if !yield(c, adapter.CoercionResult{Matches: matches}) {
				return
			}
		}
	}
}

const fixtureSchema = `
type RootSchemaQuery {
  V: [Vertex!]!
}

interface Entity {
  id: String
}

type Vertex implements Entity {
  id: String
  n: Int
  a: Int
  b: Int
  k: String
  neighbor: Vertex
  child: Vertex
  only_in_derived: String
}
`

func mustCompile(t *testing.T, query string, args map[string]value.Value) *ir.Query {
	t.Helper()
	sch, err := schema.Load(fixtureSchema)
	require.NoError(t, err)
	doc, err := ast.Parse(query)
	require.NoError(t, err)
	q, err := ir.Compile(doc, sch, args)
	require.NoError(t, err)
	return q
}

func runRows(t *testing.T, ad adapter.Adapter, q *ir.Query) []map[string]value.Value {
	t.Helper()
	var rows []map[string]value.Value
	for row, err := range Execute(context.Background(), ad, q) {
		require.NoError(t, err, "rows so far:\n%s", spew.Sdump(rows))
		rows = append(rows, row)
	}
	return rows
}

func TestExecuteSimplePropertyFilter(t *testing.T) {
	ad := &fakeAdapter{
		roots: []string{"v1", "v2", "v3"},
		vertices: map[string]*fakeVertex{
			"v1": {typeName: "Vertex", id: "v1", properties: map[string]value.Value{"n": value.FromInt64(1)}},
			"v2": {typeName: "Vertex", id: "v2", properties: map[string]value.Value{"n": value.FromInt64(2)}},
			"v3": {typeName: "Vertex", id: "v3", properties: map[string]value.Value{"n": value.FromInt64(3)}},
		},
	}
	q := mustCompile(t, `{ V { n @filter(op: ">=", value: ["$m"]) @output } }`, map[string]value.Value{"m": value.FromInt64(2)})

	rows := runRows(t, ad, q)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0]["n"].Int())
	assert.Equal(t, int64(3), rows[1]["n"].Int())
}

func TestExecuteOptionalPresentAndAbsent(t *testing.T) {
	ad := &fakeAdapter{
		roots: []string{"A", "B"},
		vertices: map[string]*fakeVertex{
			"A": {typeName: "Vertex", id: "A",
				properties: map[string]value.Value{"id": value.FromString("A")},
				edges:      map[string][]string{"neighbor": {"N"}},
			},
			"N": {typeName: "Vertex", id: "N", properties: map[string]value.Value{"k": value.FromString("x")}},
			"B": {typeName: "Vertex", id: "B", properties: map[string]value.Value{"id": value.FromString("B")}},
		},
	}
	q := mustCompile(t, `{
  V {
    id @output
    neighbor @optional {
      k @output
    }
  }
}`, nil)

	rows := runRows(t, ad, q)
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0]["id"].Str())
	assert.Equal(t, "x", rows[0]["k"].Str())
	assert.Equal(t, "B", rows[1]["id"].Str())
	assert.True(t, rows[1]["k"].IsNull())
}

func TestExecuteRecurseDepth2(t *testing.T) {
	ad := &fakeAdapter{
		roots: []string{"1"},
		vertices: map[string]*fakeVertex{
			"1": {typeName: "Vertex", id: "1",
				properties: map[string]value.Value{"id": value.FromString("1")},
				edges:      map[string][]string{"child": {"2", "3"}},
			},
			"2": {typeName: "Vertex", id: "2",
				properties: map[string]value.Value{"id": value.FromString("2")},
				edges:      map[string][]string{"child": {"4"}},
			},
			"3": {typeName: "Vertex", id: "3", properties: map[string]value.Value{"id": value.FromString("3")}},
			"4": {typeName: "Vertex", id: "4", properties: map[string]value.Value{"id": value.FromString("4")}},
		},
	}
	q := mustCompile(t, `{
  V {
    rootId: id @output
    child @recurse(depth: 2) {
      id @output
    }
  }
}`, nil)

	rows := runRows(t, ad, q)
	var gotIDs []string
	for _, r := range rows {
		assert.Equal(t, "1", r["rootId"].Str(), "outer id is the starting vertex on every row")
	}
	for _, r := range rows {
		gotIDs = append(gotIDs, r["id"].Str())
	}
	assert.Len(t, rows, 4)
}

func TestExecuteFoldCollectsNeighborValues(t *testing.T) {
	ad := &fakeAdapter{
		roots: []string{"v1"},
		vertices: map[string]*fakeVertex{
			"v1": {typeName: "Vertex", id: "v1",
				properties: map[string]value.Value{"id": value.FromString("v1")},
				edges:      map[string][]string{"neighbor": {"n1", "n2", "n3"}},
			},
			"n1": {typeName: "Vertex", id: "n1", properties: map[string]value.Value{"k": value.FromString("n1")}},
			"n2": {typeName: "Vertex", id: "n2", properties: map[string]value.Value{"k": value.FromString("n2")}},
			"n3": {typeName: "Vertex", id: "n3", properties: map[string]value.Value{"k": value.FromString("n3")}},
		},
	}
	q := mustCompile(t, `{
  V {
    id @output
    neighbor @fold {
      k @output
    }
  }
}`, nil)

	rows := runRows(t, ad, q)
	require.Len(t, rows, 1)
	assert.Equal(t, "v1", rows[0]["id"].Str())
	names := rows[0]["k"].List()
	require.Len(t, names, 3)
	var got []string
	for _, n := range names {
		got = append(got, n.Str())
	}
	if diff := pretty.Compare(got, []string{"n1", "n2", "n3"}); diff != "" {
		t.Errorf("folded names mismatch:\n%s", diff)
	}
}

func TestExecuteFoldCountTransformAndFilter(t *testing.T) {
	ad := &fakeAdapter{
		roots: []string{"v1", "v2"},
		vertices: map[string]*fakeVertex{
			"v1": {typeName: "Vertex", id: "v1",
				properties: map[string]value.Value{"id": value.FromString("v1")},
				edges:      map[string][]string{"neighbor": {"n1", "n2", "n3"}},
			},
			"v2": {typeName: "Vertex", id: "v2",
				properties: map[string]value.Value{"id": value.FromString("v2")},
				edges:      map[string][]string{"neighbor": {"n1"}},
			},
			"n1": {typeName: "Vertex", id: "n1", properties: map[string]value.Value{}},
			"n2": {typeName: "Vertex", id: "n2", properties: map[string]value.Value{}},
			"n3": {typeName: "Vertex", id: "n3", properties: map[string]value.Value{}},
		},
	}
	q := mustCompile(t, `{
  V {
    id @output
    neighbor @fold @transform(op: "count") @filter(op: ">=", value: [2]) @output {
      id
    }
  }
}`, nil)

	rows := runRows(t, ad, q)
	require.Len(t, rows, 1)
	assert.Equal(t, "v1", rows[0]["id"].Str())
}

func TestExecuteTypeCoercionNarrows(t *testing.T) {
	sch, err := schema.Load(`
type RootSchemaQuery {
  V: [Entity!]!
}

interface Entity {
  id: String
}

type Base implements Entity {
  id: String
}

type Derived implements Entity {
  id: String
  only_in_derived: String
}
`)
	require.NoError(t, err)
	doc, err := ast.Parse(`{
  V {
    id @output
    ... on Derived {
      only_in_derived @output
    }
  }
}`)
	require.NoError(t, err)
	q, err := ir.Compile(doc, sch, nil)
	require.NoError(t, err)

	// der1 (matching) is listed before base1 (non-matching): this order
	// must survive applyCoercion unchanged, not get rearranged by type.
	ad := &fakeAdapter{
		roots: []string{"der1", "base1"},
		vertices: map[string]*fakeVertex{
			"der1": {typeName: "Derived", id: "der1", properties: map[string]value.Value{
				"id":              value.FromString("der1"),
				"only_in_derived": value.FromString("extra"),
			}},
			"base1": {typeName: "Base", id: "base1", properties: map[string]value.Value{"id": value.FromString("base1")}},
		},
	}

	rows := runRows(t, ad, q)
	require.Len(t, rows, 2)
	assert.Equal(t, "der1", rows[0]["id"].Str())
	assert.Equal(t, "extra", rows[0]["only_in_derived"].Str())
	assert.Equal(t, "base1", rows[1]["id"].Str())
	assert.True(t, rows[1]["only_in_derived"].IsNull())
}

func TestExecuteTagCrossFieldFilter(t *testing.T) {
	ad := &fakeAdapter{
		roots: []string{"eq", "neq"},
		vertices: map[string]*fakeVertex{
			"eq": {typeName: "Vertex", id: "eq", properties: map[string]value.Value{
				"a": value.FromInt64(5), "b": value.FromInt64(5),
			}},
			"neq": {typeName: "Vertex", id: "neq", properties: map[string]value.Value{
				"a": value.FromInt64(5), "b": value.FromInt64(6),
			}},
		},
	}
	q := mustCompile(t, `{
  V {
    a @tag(name: "t")
    b @filter(op: "=", value: ["%t"]) @output
  }
}`, nil)

	rows := runRows(t, ad, q)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(5), rows[0]["b"].Int())
}
