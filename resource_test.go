package strata_test

import (
	"testing"

	strata "github.com/strata-ecs/strata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type GameClock struct {
	Frame int
}

type ScoreEvent struct {
	Points int
}

func TestSingletonResourceRegisterPushQuery(t *testing.T) {
	r := newRegistry()
	require.NoError(t, strata.RegisterResource[GameClock](r, strata.ResourceSingleton))

	err := strata.RegisterResource[GameClock](r, strata.ResourceSingleton)
	assert.ErrorAs(t, err, &strata.ResourceAlreadyRegisteredError{})

	require.NoError(t, strata.PushResource(r, GameClock{Frame: 1}))
	require.NoError(t, strata.PushResource(r, GameClock{Frame: 2}))

	q, err := strata.QueryResource[GameClock](r)
	require.NoError(t, err)
	value, ok := q.Singleton()
	require.True(t, ok)
	assert.Equal(t, 2, value.Frame)
}

func TestCollectionResourceAppendsAndSnapshots(t *testing.T) {
	r := newRegistry()
	require.NoError(t, strata.RegisterResource[ScoreEvent](r, strata.ResourceCollection))

	require.NoError(t, strata.PushResource(r, ScoreEvent{Points: 10}))
	require.NoError(t, strata.PushResource(r, ScoreEvent{Points: 20}))

	q, err := strata.QueryResource[ScoreEvent](r)
	require.NoError(t, err)
	col := q.Collection()
	require.NotNil(t, col)
	assert.Equal(t, 2, col.Len())

	var total int
	for v := range col.All() {
		total += v.Points
	}
	assert.Equal(t, 30, total)
}

func TestResourceOperationsBeforeRegistrationFail(t *testing.T) {
	r := newRegistry()
	err := strata.PushResource(r, GameClock{})
	assert.ErrorAs(t, err, &strata.UnregisteredResourceError{})
}

func TestClearResourceTearsDownSingleton(t *testing.T) {
	r := newRegistry()
	require.NoError(t, strata.RegisterResource[teardownTracker](r, strata.ResourceSingleton))

	var torn int
	require.NoError(t, strata.PushResource(r, teardownTracker{Count: &torn}))
	require.NoError(t, strata.ClearResource[teardownTracker](r))

	assert.Equal(t, 1, torn)
}

func TestRemoveResourceFromCollectionByIndex(t *testing.T) {
	r := newRegistry()
	require.NoError(t, strata.RegisterResource[ScoreEvent](r, strata.ResourceCollection))

	require.NoError(t, strata.PushResource(r, ScoreEvent{Points: 1}))
	require.NoError(t, strata.PushResource(r, ScoreEvent{Points: 2}))
	require.NoError(t, strata.PushResource(r, ScoreEvent{Points: 3}))

	require.NoError(t, strata.RemoveResource[ScoreEvent](r, 1))

	q, err := strata.QueryResource[ScoreEvent](r)
	require.NoError(t, err)
	var remaining []int
	for v := range q.Collection().All() {
		remaining = append(remaining, v.Points)
	}
	assert.Equal(t, []int{1, 3}, remaining)
}

func TestRegistryTeardownClearsResources(t *testing.T) {
	r := newRegistry()
	require.NoError(t, strata.RegisterResource[teardownTracker](r, strata.ResourceCollection))

	var torn int
	require.NoError(t, strata.PushResource(r, teardownTracker{Count: &torn}))
	require.NoError(t, strata.PushResource(r, teardownTracker{Count: &torn}))

	r.Teardown()
	assert.Equal(t, 2, torn)
}
