package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/records-api/internal/storage"
	"github.com/aanand-mishra/records-api/internal/storage/storagetest"
)

func TestStore_Conformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return New()
	})
}

func TestStore_ListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Create(ctx, "Alice", 29)
	require.NoError(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	list[0].Age = 99
	list[0].Name = "Mallory"

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, 29, got.Age)
}

func TestStore_UpdateMissingBeatsValidation(t *testing.T) {
	_, err := New().Update(context.Background(), 7, -1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_Close(t *testing.T) {
	assert.NoError(t, New().Close())
}
