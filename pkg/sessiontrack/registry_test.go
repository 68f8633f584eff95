package sessiontrack_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/sessiontrack"
)

func TestRegistryRegisterUnregister(t *testing.T) {
	t.Parallel()

	r := sessiontrack.NewRegistry()

	r.Register("sess-1", "a@x.com")
	assert.Equal(t, 1, r.CountSessionsFor("a@x.com"))
	assert.Equal(t, 1, r.Len())

	// Register then unregister leaves the registry as if the session never
	// existed.
	r.Unregister("sess-1")
	assert.Equal(t, 0, r.CountSessionsFor("a@x.com"))
	assert.Equal(t, 0, r.Len())
}

func TestRegistryUpsertOverwritesIdentity(t *testing.T) {
	t.Parallel()

	r := sessiontrack.NewRegistry()

	r.Register("sess-1", "a@x.com")
	r.Register("sess-1", "b@x.com")

	assert.Equal(t, 0, r.CountSessionsFor("a@x.com"), "a session maps to at most one identity")
	assert.Equal(t, 1, r.CountSessionsFor("b@x.com"))
	assert.Equal(t, 1, r.Len())
}

func TestRegistryUnregisterAbsentIsNoop(t *testing.T) {
	t.Parallel()

	r := sessiontrack.NewRegistry()
	r.Unregister("never-registered")
	assert.Equal(t, 0, r.Len())
}

func TestRegistryCountsPerIdentity(t *testing.T) {
	t.Parallel()

	r := sessiontrack.NewRegistry()
	r.Register("sess-1", "a@x.com")
	r.Register("sess-2", "a@x.com")
	r.Register("sess-3", "b@x.com")

	assert.Equal(t, 2, r.CountSessionsFor("a@x.com"))
	assert.Equal(t, 1, r.CountSessionsFor("b@x.com"))
	assert.Equal(t, 0, r.CountSessionsFor("c@x.com"))
}

func TestRegistrySnapshotIsDetached(t *testing.T) {
	t.Parallel()

	r := sessiontrack.NewRegistry()
	r.Register("sess-1", "a@x.com")

	snap := r.Snapshot()
	r.Unregister("sess-1")

	require.Len(t, snap, 1, "snapshot keeps its point-in-time view")
	assert.Equal(t, "a@x.com", snap["sess-1"])
}

func TestRegistryConcurrentAccess(t *testing.T) {
	t.Parallel()

	r := sessiontrack.NewRegistry()
	const workers = 16
	const perWorker = 100

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				id := fmt.Sprintf("sess-%d-%d", w, i)
				r.Register(id, "a@x.com")
				if i%2 == 0 {
					r.Unregister(id)
				}
				_ = r.CountSessionsFor("a@x.com")
				_ = r.Snapshot()
			}
		}()
	}
	wg.Wait()

	// Odd-numbered sessions survive in every worker.
	want := workers * perWorker / 2
	assert.Equal(t, want, r.CountSessionsFor("a@x.com"))
	assert.Equal(t, want, r.Len())
}
