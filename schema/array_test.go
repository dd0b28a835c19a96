package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	normalizr "github.com/nhusher/normalizr"
	"github.com/nhusher/normalizr/schema"
)

func TestArray_NormalizesElements(t *testing.T) {
	t.Parallel()
	user := schema.Entity("users")

	n, err := normalizr.Normalize([]any{
		map[string]any{"id": "1"},
		map[string]any{"id": "2"},
	}, schema.Array(user))
	require.NoError(t, err)
	assert.Equal(t, []any{"1", "2"}, n.Result)
	assert.Len(t, n.Entities["users"], 2)
}

func TestArray_AcceptsMapLikeInput(t *testing.T) {
	t.Parallel()
	user := schema.Entity("users")

	// Values of a map-like input are treated as the sequence.
	n, err := normalizr.Normalize(map[string]any{
		"a": map[string]any{"id": "1"},
		"b": map[string]any{"id": "2"},
	}, schema.Array(user))
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{"1", "2"}, n.Result)
}

func TestArray_PolymorphicTagsElements(t *testing.T) {
	t.Parallel()
	user := schema.Entity("users")
	group := schema.Entity("groups")
	feed := schema.ArrayOf(schema.Mapping{"user": user, "group": group}, schema.ByField("type"))

	input := []any{
		map[string]any{"id": "1", "type": "user"},
		map[string]any{"id": "g1", "type": "group"},
	}
	n, err := normalizr.Normalize(input, feed)
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"id": "1", "schema": "user"},
		map[string]any{"id": "g1", "schema": "group"},
	}, n.Result)

	out, err := normalizr.Denormalize(n.Result, feed, n.Entities)
	require.NoError(t, err)
	assert.Equal(t, input, out)
}

func TestArray_UnmappedElementPassesThrough(t *testing.T) {
	t.Parallel()
	user := schema.Entity("users")
	feed := schema.ArrayOf(schema.Mapping{"user": user}, schema.ByField("type"))

	input := []any{
		map[string]any{"id": "1", "type": "user"},
		map[string]any{"id": "x", "type": "robot"},
	}
	n, err := normalizr.Normalize(input, feed)
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"id": "1", "schema": "user"},
		map[string]any{"id": "x", "type": "robot"},
	}, n.Result)
}

func TestArray_DropsNilElements(t *testing.T) {
	t.Parallel()
	user := schema.Entity("users")

	n, err := normalizr.Normalize([]any{
		map[string]any{"id": "1"},
		nil,
	}, schema.Array(user))
	require.NoError(t, err)
	assert.Equal(t, []any{"1"}, n.Result)
}

func TestSeq_KeepsNilElements(t *testing.T) {
	t.Parallel()
	user := schema.Entity("users")

	// The bare shorthand maps elements one to one, unlike ArraySchema.
	n, err := normalizr.Normalize([]any{
		map[string]any{"id": "1"},
		nil,
	}, schema.Seq{user})
	require.NoError(t, err)
	assert.Equal(t, []any{"1", nil}, n.Result)
}

func TestSeq_RequiresSingleSchema(t *testing.T) {
	t.Parallel()
	user := schema.Entity("users")
	group := schema.Entity("groups")

	_, err := normalizr.Normalize([]any{map[string]any{"id": "1"}}, schema.Seq{user, group})
	iss, ok := normalizr.AsIssues(err)
	require.True(t, ok, "expected issues, got %v", err)
	assert.Equal(t, normalizr.CodeInvalidSchema, iss[0].Code)
}

func TestArray_DenormalizeNonListPassesThrough(t *testing.T) {
	t.Parallel()
	user := schema.Entity("users")
	out, err := normalizr.Denormalize("not-a-list", schema.Array(user), normalizr.Store{})
	require.NoError(t, err)
	assert.Equal(t, "not-a-list", out)
}
