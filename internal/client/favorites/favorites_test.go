package favorites

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tellbrandz/tbz/internal/client/localstore"
)

func TestToggle_AddThenRemove(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemory()
	l := New(store)

	added, err := l.Toggle(ctx, "42")
	require.NoError(t, err)
	assert.True(t, added)

	fav, err := l.IsFavorite(ctx, "42")
	require.NoError(t, err)
	assert.True(t, fav)

	added, err = l.Toggle(ctx, "42")
	require.NoError(t, err)
	assert.False(t, added)

	fav, err = l.IsFavorite(ctx, "42")
	require.NoError(t, err)
	assert.False(t, fav)

	var persisted []string
	ok, err := localstore.GetJSON(ctx, store, Key, &persisted)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, persisted, "42")
	assert.Empty(t, persisted)
}

func TestIDs_KeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	l := New(localstore.NewMemory())

	for _, id := range []string{"3", "1", "2"} {
		_, err := l.Toggle(ctx, id)
		require.NoError(t, err)
	}
	_, err := l.Toggle(ctx, "1")
	require.NoError(t, err)

	ids, err := l.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2"}, ids)
}

func TestIDs_CorruptBlob(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemory()
	require.NoError(t, store.Set(ctx, Key, []byte("{not json")))

	_, err := New(store).IDs(ctx)
	require.Error(t, err)
}
