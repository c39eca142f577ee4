package strata_test

import (
	"testing"

	strata "github.com/strata-ecs/strata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Destroy-on-empty: with destroy_empty_archetypes=true, an archetype that
// reaches zero rows as a side effect of a migration is gone immediately.
func TestDestroyEmptyArchetypesOnMigration(t *testing.T) {
	r := newRegistryWithEmptyArchetypeCleanup()

	e, err := r.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, strata.AddComponent(r, e, A{}))

	// e is now alone in the {A} archetype; migrating it again empties {A}.
	require.NoError(t, strata.AddComponent(r, e, B{}))

	iter, err := strata.Query[struct{ A *A }](r)
	require.NoError(t, err)
	assert.Equal(t, 0, iter.Len())

	iter2, err := strata.Query[struct {
		A *A
		B *B
	}](r)
	require.NoError(t, err)
	assert.Equal(t, 1, iter2.Len())
}

func TestDestroyEmptyArchetypesOnEntityDestroy(t *testing.T) {
	r := newRegistryWithEmptyArchetypeCleanup()

	e, err := strata.Spawn(r, strata.Comp(A{}))
	require.NoError(t, err)

	require.NoError(t, r.DestroyEntity(e))

	iter, err := strata.Query[struct{ A *A }](r)
	require.NoError(t, err)
	assert.Equal(t, 0, iter.Len())
}

func TestVoidArchetypeNeverDestroyed(t *testing.T) {
	r := newRegistryWithEmptyArchetypeCleanup()

	e, err := r.CreateEntity()
	require.NoError(t, err)
	require.NoError(t, r.DestroyEntity(e))

	f, err := r.CreateEntity()
	require.NoError(t, err)
	assert.False(t, strata.HasComponent[A](r, f))
}
