package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	anystore "github.com/anyproto/any-store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func testStore(t *testing.T, s Store) {
	_, err := s.Get(ctx, "mostRecentMapLoaded")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "mostRecentMapLoaded", "m1"))
	require.NoError(t, s.Set(ctx, "mostRecentMapLoaded", "m2"))
	v, err := s.Get(ctx, "mostRecentMapLoaded")
	require.NoError(t, err)
	assert.Equal(t, "m2", v)

	require.NoError(t, s.Delete(ctx, "mostRecentMapLoaded"))
	require.NoError(t, s.Delete(ctx, "mostRecentMapLoaded"))
	_, err = s.Get(ctx, "mostRecentMapLoaded")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Init(nil))
	assert.Equal(t, CName, s.Name())
	testStore(t, s)
}

func TestAnyStore(t *testing.T) {
	db, err := anystore.Open(ctx, filepath.Join(t.TempDir(), "kv.db"), nil)
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()
	coll, err := db.Collection(ctx, collectionName)
	require.NoError(t, err)
	testStore(t, NewAnyStoreWithCollection(coll))
}
