package strata_test

import (
	"testing"

	strata "github.com/strata-ecs/strata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEntityEntersVoidArchetype(t *testing.T) {
	r := newRegistry()

	e, err := r.CreateEntity()
	require.NoError(t, err)

	assert.False(t, strata.HasComponent[Position](r, e))
}

func TestDestroyEntityRemovesFromEntityMap(t *testing.T) {
	r := newRegistry()
	e, err := r.CreateEntity()
	require.NoError(t, err)

	require.NoError(t, r.DestroyEntity(e))

	err = r.DestroyEntity(e)
	assert.ErrorAs(t, err, &strata.NoSuchEntityError{})
}

func TestDestroyUnknownEntity(t *testing.T) {
	r := newRegistry()
	err := r.DestroyEntity(strata.EntityID(999))
	assert.ErrorAs(t, err, &strata.NoSuchEntityError{})
}

func TestSpawnAddsEveryComponent(t *testing.T) {
	r := newRegistry()

	e, err := strata.Spawn(r, strata.Comp(Position{X: 1, Y: 2}), strata.Comp(Health(10)))
	require.NoError(t, err)

	assert.True(t, strata.HasComponent[Position](r, e))
	assert.True(t, strata.HasComponent[Health](r, e))

	pos, err := strata.GetComponent[Position](r, e)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 1, Y: 2}, *pos)
}

func TestSpawnFailureDestroysPartialEntity(t *testing.T) {
	r := newRegistry()

	_, err := strata.Spawn(r, strata.Comp(Position{X: 1, Y: 2}), strata.Comp(Position{X: 9, Y: 9}))
	var dup strata.DuplicateComponentError
	require.ErrorAs(t, err, &dup)

	// the entity picked up Position before the second Comp failed; Spawn
	// must have destroyed it rather than leaving a half-built entity behind.
	iter, err := strata.Query[struct{ Pos *Position }](r)
	require.NoError(t, err)
	assert.Equal(t, 0, iter.Len())
}

func TestGetComponentOnMissingComponent(t *testing.T) {
	r := newRegistry()
	e, err := r.CreateEntity()
	require.NoError(t, err)

	_, err = strata.GetComponent[Position](r, e)
	assert.Error(t, err)
}

func TestDestroyEntityFiresComponentTeardown(t *testing.T) {
	r := newRegistry()

	var torn int
	e, err := strata.Spawn(r, strata.Comp(teardownTracker{Count: &torn}))
	require.NoError(t, err)

	require.NoError(t, r.DestroyEntity(e))
	assert.Equal(t, 1, torn)
}

func TestAddPluginInvokesInit(t *testing.T) {
	r := newRegistry()

	var initialized bool
	r.AddPlugin(strata.Plugin{
		Name: "example",
		Init: func(r *strata.Registry) { initialized = true },
	})

	assert.True(t, initialized)
}

func TestConfigAndLoggerAccessors(t *testing.T) {
	cfg := strata.Config{DestroyEmptyArchetypes: true}
	r := strata.NewRegistry(cfg)

	assert.True(t, r.Config().DestroyEmptyArchetypes)
	assert.NotNil(t, r.Logger())
}

func TestTeardownInvokesPluginsInReverseOrder(t *testing.T) {
	r := newRegistry()

	var order []string
	r.AddPlugin(strata.Plugin{
		Name:     "first",
		Teardown: func(r *strata.Registry) { order = append(order, "first") },
	})
	r.AddPlugin(strata.Plugin{
		Name:     "second",
		Teardown: func(r *strata.Registry) { order = append(order, "second") },
	})

	r.Teardown()
	assert.Equal(t, []string{"second", "first"}, order)
}
