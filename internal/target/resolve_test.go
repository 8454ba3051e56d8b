package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nace/disksetup/internal/system"
)

func leafIDs(ops []Operation) []string {
	ids := make([]string, 0, len(ops))
	for _, op := range ops {
		ids = append(ids, op.Leaf.ID())
	}
	return ids
}

func mustRegistry(t *testing.T, defs ...Definition) *Registry {
	t.Helper()
	reg, err := NewRegistry(defs)
	require.NoError(t, err)
	return reg
}

func TestResolveLeaf(t *testing.T) {
	reg := mustRegistry(t, NewLeaf("data", &CryptSpec{Name: "data_crypt"}, nil, nil))

	ops, err := reg.Resolve("data")
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "data", ops[0].Via())
}

func TestResolveNestedGroupsPreOrder(t *testing.T) {
	reg := mustRegistry(t,
		NewGroup("all", "data", "media", "logs"),
		NewGroup("media", "music", "video"),
		NewLeaf("data", nil, nil, nil),
		NewLeaf("music", nil, nil, nil),
		NewLeaf("video", nil, nil, nil),
		NewLeaf("logs", nil, nil, nil),
	)

	ops, err := reg.Resolve("all")
	require.NoError(t, err)
	assert.Equal(t, []string{"data", "music", "video", "logs"}, leafIDs(ops))
	assert.Equal(t, "all > media > video", ops[2].Via())
}

func TestResolveEmptyGroup(t *testing.T) {
	reg := mustRegistry(t,
		NewGroup("all"),
		NewGroup("outer", "all"),
	)

	for _, id := range []string{"all", "outer"} {
		ops, err := reg.Resolve(id)
		require.NoError(t, err)
		assert.Empty(t, ops)
	}
}

func TestResolveUndefined(t *testing.T) {
	reg := mustRegistry(t, NewLeaf("data", nil, nil, nil))

	_, err := reg.Resolve("missing")
	require.Error(t, err)
	assert.Equal(t, system.ExitConfig, system.ExitCode(err))
	assert.Contains(t, err.Error(), `target "missing" is not defined`)
}

func TestResolveCycle(t *testing.T) {
	reg := mustRegistry(t,
		NewGroup("a", "b"),
		NewGroup("b", "c"),
		NewGroup("c", "a"),
		NewGroup("self", "self"),
	)

	_, err := reg.Resolve("a")
	require.Error(t, err)
	assert.Equal(t, system.KindConfig, system.KindOf(err))
	assert.Contains(t, err.Error(), "a -> b -> c -> a")

	_, err = reg.Resolve("self")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "self -> self")
}

func TestResolveDiamondIsNotACycle(t *testing.T) {
	reg := mustRegistry(t,
		NewGroup("all", "left", "right"),
		NewGroup("left", "shared"),
		NewGroup("right", "shared"),
		NewLeaf("shared", nil, nil, nil),
	)

	ops, err := reg.Resolve("all")
	require.NoError(t, err)
	assert.Equal(t, []string{"shared", "shared"}, leafIDs(ops))
}

func TestResolveAll(t *testing.T) {
	reg := mustRegistry(t,
		NewLeaf("data", nil, nil, nil),
		NewLeaf("logs", nil, nil, nil),
	)

	ops, err := reg.ResolveAll([]string{"logs", "data"})
	require.NoError(t, err)
	assert.Equal(t, []string{"logs", "data"}, leafIDs(ops))

	_, err = reg.ResolveAll([]string{"logs", "nope"})
	require.Error(t, err)
}

func TestLeafHelpers(t *testing.T) {
	bare := NewLeaf("bare", nil, nil, nil)
	assert.False(t, bare.HasMountLayer())
	assert.Empty(t, bare.MountDevice())
	assert.Empty(t, bare.UnmountTarget())
	assert.NotNil(t, bare.Options)

	explicit := NewLeaf("x", &CryptSpec{Name: "x_crypt"}, &MountSpec{Device: "/dev/vg/x"}, NewOptionSet(OptionReadOnly, OptionNoMount))
	assert.Equal(t, "/dev/vg/x", explicit.MountDevice())
	assert.Equal(t, "/dev/vg/x", explicit.UnmountTarget())
	assert.Equal(t, "nomount,ro", explicit.Options.String())
}
