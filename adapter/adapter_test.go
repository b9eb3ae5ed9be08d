package adapter

import (
	"testing"

	"github.com/golang/protobuf/ptypes/duration"
	"github.com/golang/protobuf/ptypes/timestamp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarryql/quarry/value"
)

func TestCtxPushPop(t *testing.T) {
	c := NewCtx("root")
	c = c.Push("child")
	assert.Equal(t, "child", c.Current)
	c = c.Push("grandchild")
	assert.Equal(t, "grandchild", c.Current)

	c = c.Pop()
	assert.Equal(t, "child", c.Current)
	c = c.Pop()
	assert.Equal(t, "root", c.Current)
}

func TestCtxPopEmptyPanics(t *testing.T) {
	c := NewCtx("root")
	assert.Panics(t, func() { c.Pop() })
}

func TestCtxTagsAndOutputsAreImmutable(t *testing.T) {
	base := NewCtx("root")
	tagged := base.WithTag("t", value.FromInt64(1))

	_, ok := base.Tag("t")
	assert.False(t, ok, "tagging a derived Ctx must not mutate the original")

	v, ok := tagged.Tag("t")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Int())

	out1 := tagged.WithOutput("n", value.FromInt64(2))
	assert.Nil(t, tagged.Outputs())
	assert.Equal(t, int64(2), out1.Outputs()["n"].Int())
}

func TestAbsentMarker(t *testing.T) {
	assert.True(t, IsAbsent(Absent))
	assert.False(t, IsAbsent("some-handle"))
}

type fixtureVertex struct {
	ID       string `quarry:"id"`
	Name     string
	Score    int64
	hidden   string
	Excluded string `quarry:"-"`
}

func TestStructResolverDefaultAndTaggedNames(t *testing.T) {
	r := NewStructResolver()
	v := fixtureVertex{ID: "v1", Name: "alice", Score: 7, hidden: "nope", Excluded: "skip"}

	id, err := r.Property(&v, "id")
	require.NoError(t, err)
	assert.Equal(t, "v1", id.Str())

	name, err := r.Property(v, "name")
	require.NoError(t, err)
	assert.Equal(t, "alice", name.Str())

	score, err := r.Property(v, "score")
	require.NoError(t, err)
	assert.Equal(t, int64(7), score.Int())

	_, err = r.Property(v, "excluded")
	assert.Error(t, err)
	_, err = r.Property(v, "hidden")
	assert.Error(t, err)
}

func TestStructResolverNilPointerIsNull(t *testing.T) {
	r := NewStructResolver()
	var p *fixtureVertex
	got, err := r.Property(p, "id")
	require.NoError(t, err)
	assert.True(t, got.IsNull())
}

func TestStructResolverNonStructIsError(t *testing.T) {
	r := NewStructResolver()
	_, err := r.Property(42, "id")
	assert.Error(t, err)
}

func TestFromProtoTimestampAndDuration(t *testing.T) {
	ts := &timestamp.Timestamp{Seconds: 100, Nanos: 5}
	got := FromProtoTimestamp(ts)
	assert.Equal(t, int64(100)*1e9+5, got.Int())
	assert.True(t, FromProtoTimestamp(nil).IsNull())

	d := &duration.Duration{Seconds: 2, Nanos: 500}
	gotD := FromProtoDuration(d)
	assert.Equal(t, int64(2)*1e9+500, gotD.Int())
	assert.True(t, FromProtoDuration(nil).IsNull())
}
