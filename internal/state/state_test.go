package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/hsbposter/internal/hsb"
)

func TestStoreLifecycle(t *testing.T) {
	t.Parallel()

	store := NewStore(Params{Title: "first", Rows: 2, Cols: 3})
	snap := store.Snapshot()
	require.Equal(t, BOOTING, snap.Phase)
	require.Equal(t, "first", snap.Poster.Title)
	require.Zero(t, snap.Revision)

	store.SetPhase(READY)
	store.UpdatePoster(Params{Title: "second"})
	snap = store.Snapshot()
	assert.Equal(t, READY, snap.Phase)
	assert.Equal(t, "second", snap.Poster.Title)
	assert.Equal(t, uint64(1), snap.Revision)

	rev := store.UpdateBase(hsb.New(400, 50, 50, 100))
	assert.Equal(t, uint64(2), rev)
	assert.InDelta(t, 40.0, store.Snapshot().Poster.Base.Hue(), 1e-9)
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	store := NewStore(Params{Base: hsb.New(10, 10, 10, 10)})
	snap := store.Snapshot()
	snap.Poster.Base.SetHue(200)
	assert.Equal(t, 10.0, store.Snapshot().Poster.Base.Hue())
}

func TestConcurrentBaseUpdates(t *testing.T) {
	t.Parallel()

	store := NewStore(Params{})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.UpdateBase(hsb.New(float64(i), 50, 50, 100))
			_ = store.Snapshot()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, uint64(50), store.Snapshot().Revision)
}

func TestPhaseString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "rendering", RENDERING.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
