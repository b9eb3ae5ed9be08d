package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarryql/quarry/value"
)

func TestCheckArity(t *testing.T) {
	require.NoError(t, CheckArity(Equals, 1))
	require.Error(t, CheckArity(Equals, 2))
	require.NoError(t, CheckArity(IsNull, 0))
	require.Error(t, CheckArity(IsNull, 1))
	require.NoError(t, CheckArity(OneOf, 3))
	require.Error(t, CheckArity(OneOf, 0))
	var unk *UnknownOperatorError
	require.ErrorAs(t, CheckArity(Op("bogus"), 1), &unk)
}

func TestEvalComparison(t *testing.T) {
	ok, err := Eval(GreaterOrEqual, value.FromInt64(2), []value.Value{value.FromInt64(2)}, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Eval(LessThan, value.FromInt64(1), []value.Value{value.FromFloat64(1.5)}, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalNullHandling(t *testing.T) {
	ok, err := Eval(IsNull, value.NullValue(), nil, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Eval(GreaterThan, value.NullValue(), []value.Value{value.FromInt64(1)}, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Eval(HasPrefix, value.NullValue(), []value.Value{value.FromString("a")}, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvalStringOps(t *testing.T) {
	ok, err := Eval(HasSubstring, value.FromString("hello world"), []value.Value{value.FromString("lo wo")}, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Eval(NotHasPrefix, value.FromString("hello"), []value.Value{value.FromString("he")}, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvalOneOf(t *testing.T) {
	operands := []value.Value{value.FromInt64(1), value.FromInt64(2), value.FromInt64(3)}
	ok, err := Eval(OneOf, value.FromInt64(2), operands, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Eval(NotOneOf, value.FromInt64(9), operands, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalContains(t *testing.T) {
	list := value.FromList([]value.Value{value.FromString("a"), value.FromString("b")})
	ok, err := Eval(Contains, list, []value.Value{value.FromString("a")}, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = Eval(Contains, value.FromString("not-a-list"), []value.Value{value.FromString("a")}, nil)
	var typeErr *OperandTypeError
	require.ErrorAs(t, err, &typeErr)
}

func TestEvalRegex(t *testing.T) {
	re, err := CompileRegex(`^foo\d+$`)
	require.NoError(t, err)

	ok, err := Eval(Regex, value.FromString("foo123"), nil, re)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Eval(NotRegex, value.FromString("bar"), nil, re)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalCrossKindNumericComparison(t *testing.T) {
	ok, err := Eval(Equals, value.FromUint64(5), []value.Value{value.FromInt64(5)}, nil)
	require.NoError(t, err)
	assert.False(t, ok, "= uses structural equality, not numeric coercion, so cross-kind numerics are unequal")
}

func TestEvalMixedKindOrderingIsRuntimeError(t *testing.T) {
	_, err := Eval(LessThan, value.FromString("a"), []value.Value{value.FromInt64(1)}, nil)
	require.Error(t, err)
}
