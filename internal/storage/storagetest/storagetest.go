// Package storagetest is a conformance suite for storage.Storage
// implementations. Each backend's tests call Run with a factory that
// returns a fresh, empty store.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/records-api/internal/storage"
	"github.com/aanand-mishra/records-api/internal/types"
)

// Factory builds an empty store for a single subtest. Implementations
// should register any cleanup with t.Cleanup.
type Factory func(t *testing.T) storage.Storage

// Run executes the full conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Storage)
	}{
		{"CreateThenGet", testCreateThenGet},
		{"CreateValidation", testCreateValidation},
		{"ListOrder", testListOrder},
		{"ListEmpty", testListEmpty},
		{"UpdateAge", testUpdateAge},
		{"UpdateNegativeAgeLeavesRecord", testUpdateNegativeAge},
		{"UpdateMissing", testUpdateMissing},
		{"DeleteThenGet", testDeleteThenGet},
		{"IDsNotReused", testIDsNotReused},
		{"Scenario", testScenario},
		{"ConcurrentCreates", testConcurrentCreates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func testCreateThenGet(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	created, err := s.Create(ctx, "Alice", 29)
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, "Alice", created.Name)
	assert.Equal(t, 29, created.Age)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func testCreateValidation(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	_, err := s.Create(ctx, "", 10)
	assert.ErrorIs(t, err, storage.ErrValidation)

	_, err = s.Create(ctx, "   ", 10)
	assert.ErrorIs(t, err, storage.ErrValidation)

	_, err = s.Create(ctx, "Bob", -1)
	assert.ErrorIs(t, err, storage.ErrValidation)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "failed creates must not insert anything")

	// A rejected create must not consume an ID either.
	rec, err := s.Create(ctx, "Carol", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.ID)
}

func testListOrder(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	const n = 25
	for i := 0; i < n; i++ {
		_, err := s.Create(ctx, fmt.Sprintf("user-%02d", i), i)
		require.NoError(t, err)
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, n)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, count)
}

func testListEmpty(t *testing.T, s storage.Storage) {
	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func testUpdateAge(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	rec, err := s.Create(ctx, "Alice", 29)
	require.NoError(t, err)

	updated, err := s.Update(ctx, rec.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, types.Record{ID: rec.ID, Name: "Alice", Age: 30}, updated)

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func testUpdateNegativeAge(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	rec, err := s.Create(ctx, "Alice", 29)
	require.NoError(t, err)

	_, err = s.Update(ctx, rec.ID, -5)
	assert.ErrorIs(t, err, storage.ErrValidation)

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func testUpdateMissing(t *testing.T, s storage.Storage) {
	_, err := s.Update(context.Background(), 99, 10)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testDeleteThenGet(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	rec, err := s.Create(ctx, "Bob", 34)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, rec.ID))

	_, err = s.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = s.Delete(ctx, rec.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound, "second delete must fail")
}

func testIDsNotReused(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	a, err := s.Create(ctx, "a", 1)
	require.NoError(t, err)
	b, err := s.Create(ctx, "b", 2)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, b.ID))

	c, err := s.Create(ctx, "c", 3)
	require.NoError(t, err)
	assert.Greater(t, c.ID, b.ID)
	assert.Greater(t, c.ID, a.ID)
}

func testScenario(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	alice, err := s.Create(ctx, "Alice", 29)
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice.ID)

	bob, err := s.Create(ctx, "Bob", 34)
	require.NoError(t, err)
	assert.Equal(t, int64(2), bob.ID)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Record{
		{ID: 1, Name: "Alice", Age: 29},
		{ID: 2, Name: "Bob", Age: 34},
	}, list)

	updated, err := s.Update(ctx, 1, 30)
	require.NoError(t, err)
	assert.Equal(t, types.Record{ID: 1, Name: "Alice", Age: 30}, updated)

	require.NoError(t, s.Delete(ctx, 2))

	_, err = s.Get(ctx, 2)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, 2), storage.ErrNotFound)
}

func testConcurrentCreates(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	const workers, perWorker = 8, 10
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[int64]bool)
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				rec, err := s.Create(ctx, fmt.Sprintf("w%d-%d", w, i), i)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				ids[rec.ID] = true
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	total := workers * perWorker
	assert.Len(t, ids, total, "every create must get a distinct id")
	for id := int64(1); id <= int64(total); id++ {
		assert.True(t, ids[id], "id %d missing", id)
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, total)
}
