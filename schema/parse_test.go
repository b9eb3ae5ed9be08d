package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSyntaxErrorHasOffset(t *testing.T) {
	_, err := parseDocument(`type RootSchemaQuery { v Int }`)
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Greater(t, pe.Offset, 0)
}

func TestParseListAndNonNullTypes(t *testing.T) {
	doc, err := parseDocument(`
type RootSchemaQuery {
  a: Int
  b: [Int]
  c: [Int!]!
}
`)
	require.NoError(t, err)
	require.Len(t, doc.objects, 1)
	fields := doc.objects[0].fields
	require.Len(t, fields, 3)

	assert.False(t, fields[0].typ.list)
	assert.False(t, fields[0].typ.nonNull)

	assert.True(t, fields[1].typ.list)

	require.True(t, fields[2].typ.nonNull)
	require.True(t, fields[2].typ.of.list)
	require.True(t, fields[2].typ.of.of.nonNull)
}

func TestParseUnionMembers(t *testing.T) {
	doc, err := parseDocument(`
type RootSchemaQuery { v: Int }
union Thing = A | B | C
`)
	require.NoError(t, err)
	require.Len(t, doc.unions, 1)
	assert.Equal(t, []string{"A", "B", "C"}, doc.unions[0].members)
}

func TestParseDescriptionsAreTrivia(t *testing.T) {
	doc, err := parseDocument(`
"""the root"""
type RootSchemaQuery {
  "a property"
  a: Int
}
`)
	require.NoError(t, err)
	require.Len(t, doc.objects, 1)
	assert.Equal(t, "a", doc.objects[0].fields[0].name)
}
