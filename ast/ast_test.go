package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimplePropertyFilter(t *testing.T) {
	doc, err := Parse(`{
  Vertex {
    n @filter(op: ">=", value: ["$m"]) @output
  }
}`)
	require.NoError(t, err)
	require.Len(t, doc.Root.Selections, 1)

	root := doc.Root.Selections[0].(*Field)
	assert.Equal(t, "Vertex", root.Name)
	require.NotNil(t, root.SelectionSet)

	n := root.SelectionSet.Selections[0].(*Field)
	assert.Equal(t, "n", n.Name)
	require.Len(t, n.Directives, 2)
	assert.Equal(t, "filter", n.Directives[0].Name)

	opArg, ok := n.Directives[0].Arg("op")
	require.True(t, ok)
	assert.Equal(t, LitString, opArg.Value.Kind)
	assert.Equal(t, ">=", opArg.Value.S)

	valueArg, ok := n.Directives[0].Arg("value")
	require.True(t, ok)
	require.Len(t, valueArg.Value.List, 1)
	assert.Equal(t, LitVar, valueArg.Value.List[0].Kind)
	assert.Equal(t, "m", valueArg.Value.List[0].S)
}

func TestParseAliasAndOutput(t *testing.T) {
	doc, err := Parse(`{
  Vertex {
    renamed: n @output
  }
}`)
	require.NoError(t, err)
	n := doc.Root.Selections[0].(*Field).SelectionSet.Selections[0].(*Field)
	assert.Equal(t, "n", n.Name)
	assert.Equal(t, "renamed", n.Alias)
	assert.Equal(t, "renamed", n.OutputName())
}

func TestParseOptionalAndNestedEdge(t *testing.T) {
	doc, err := Parse(`{
  Vertex {
    neighbor @optional {
      n @output
    }
  }
}`)
	require.NoError(t, err)
	neighbor := doc.Root.Selections[0].(*Field).SelectionSet.Selections[0].(*Field)
	assert.Equal(t, "neighbor", neighbor.Name)
	require.Len(t, neighbor.Directives, 1)
	assert.Equal(t, "optional", neighbor.Directives[0].Name)
	require.NotNil(t, neighbor.SelectionSet)
}

func TestParseRecurseWithDepth(t *testing.T) {
	doc, err := Parse(`{
  Vertex {
    child @recurse(depth: 2) {
      n @output
    }
  }
}`)
	require.NoError(t, err)
	child := doc.Root.Selections[0].(*Field).SelectionSet.Selections[0].(*Field)
	depthArg, ok := child.Directives[0].Arg("depth")
	require.True(t, ok)
	assert.Equal(t, LitInt, depthArg.Value.Kind)
	assert.Equal(t, int64(2), depthArg.Value.I)
}

func TestParseFoldWithTransform(t *testing.T) {
	doc, err := Parse(`{
  Vertex {
    friends @fold @transform(op: "count") @output {
      n
    }
  }
}`)
	require.NoError(t, err)
	friends := doc.Root.Selections[0].(*Field).SelectionSet.Selections[0].(*Field)
	require.Len(t, friends.Directives, 3)
	assert.Equal(t, "fold", friends.Directives[0].Name)
	assert.Equal(t, "transform", friends.Directives[1].Name)
	assert.Equal(t, "output", friends.Directives[2].Name)
}

func TestParseInlineCoercion(t *testing.T) {
	doc, err := Parse(`{
  Vertex {
    ... on SpecialVertex {
      special_prop @output
    }
  }
}`)
	require.NoError(t, err)
	coercion := doc.Root.Selections[0].(*Field).SelectionSet.Selections[0].(*InlineCoercion)
	assert.Equal(t, "SpecialVertex", coercion.TypeName)
	require.Len(t, coercion.SelectionSet.Selections, 1)
}

func TestParseTagAndCrossFieldFilter(t *testing.T) {
	doc, err := Parse(`{
  Vertex {
    a @tag(name: "t")
    b @filter(op: "=", value: ["%t"]) @output
  }
}`)
	require.NoError(t, err)
	sels := doc.Root.Selections[0].(*Field).SelectionSet.Selections
	a := sels[0].(*Field)
	assert.Equal(t, "tag", a.Directives[0].Name)
	nameArg, _ := a.Directives[0].Arg("name")
	assert.Equal(t, "t", nameArg.Value.S)

	b := sels[1].(*Field)
	valueArg, _ := b.Directives[0].Arg("value")
	assert.Equal(t, LitTagRef, valueArg.Value.List[0].Kind)
	assert.Equal(t, "t", valueArg.Value.List[0].S)
}

func TestParseEmptySelectionSetIsError(t *testing.T) {
	_, err := Parse(`{ Vertex { } }`)
	require.Error(t, err)
}

func TestParseSyntaxErrorCarriesOffset(t *testing.T) {
	_, err := Parse(`{ Vertex { n @filter(op ">=") } }`)
	require.Error(t, err)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Greater(t, se.Offset, 0)
}

func TestParseOneOfListLiteral(t *testing.T) {
	doc, err := Parse(`{
  Vertex {
    n @filter(op: "one_of", value: [1, 2, 3]) @output
  }
}`)
	require.NoError(t, err)
	n := doc.Root.Selections[0].(*Field).SelectionSet.Selections[0].(*Field)
	valueArg, _ := n.Directives[0].Arg("value")
	require.Len(t, valueArg.Value.List, 3)
	assert.Equal(t, int64(1), valueArg.Value.List[0].I)
	assert.Equal(t, int64(3), valueArg.Value.List[2].I)
}
