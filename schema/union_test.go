package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	normalizr "github.com/nhusher/normalizr"
	"github.com/nhusher/normalizr/schema"
)

func unionOwner() (*schema.UnionSchema, *schema.EntitySchema, *schema.EntitySchema) {
	user := schema.Entity("users")
	group := schema.Entity("groups")
	owner := schema.Union(schema.Mapping{"user": user, "group": group}, schema.ByField("type"))
	return owner, user, group
}

func TestUnion_PanicsWithoutDiscriminator(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		schema.Union(schema.Mapping{"user": schema.Entity("users")}, nil)
	})
	assert.Panics(t, func() {
		schema.Union(schema.Mapping{}, schema.ByField("type"))
	})
}

func TestUnion_TaggedRoundTrip(t *testing.T) {
	t.Parallel()
	owner, _, _ := unionOwner()

	input := map[string]any{"id": 1, "type": "user"}
	n, err := normalizr.Normalize(input, owner)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"id": 1, "schema": "user"}, n.Result)
	rec, ok := n.Entities.Entity("users", "1")
	require.True(t, ok)
	assert.Equal(t, input, rec)

	out, err := normalizr.Denormalize(n.Result, owner, n.Entities)
	require.NoError(t, err)
	assert.Equal(t, input, out)
}

func TestUnion_UnmappedDiscriminatorPassesThrough(t *testing.T) {
	t.Parallel()
	owner, _, _ := unionOwner()

	for _, input := range []map[string]any{
		{"id": 1, "type": "robot"}, // unmapped key
		{"id": 1},                  // missing discriminator
	} {
		n, err := normalizr.Normalize(input, owner)
		require.NoError(t, err)
		assert.Equal(t, input, n.Result, "value should pass through unresolved")
		assert.Empty(t, n.Entities, "no entity should be produced")
	}
}

func TestUnion_DiscriminatorFunction(t *testing.T) {
	t.Parallel()
	user := schema.Entity("users")
	group := schema.Entity("groups")
	owner := schema.Union(schema.Mapping{"user": user, "group": group},
		func(value, parent any, key string) string {
			if m, ok := value.(map[string]any); ok {
				if _, isGroup := m["members"]; isGroup {
					return "group"
				}
				return "user"
			}
			return ""
		})

	n, err := normalizr.Normalize(map[string]any{"id": "g1", "members": []any{}}, owner)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "g1", "schema": "group"}, n.Result)
	_, ok := n.Entities.Entity("groups", "g1")
	assert.True(t, ok)
}

func TestUnion_DenormalizeUntaggedValuePassesThrough(t *testing.T) {
	t.Parallel()
	owner, _, _ := unionOwner()

	out, err := normalizr.Denormalize(map[string]any{"id": 1}, owner, normalizr.Store{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": 1}, out)
}
