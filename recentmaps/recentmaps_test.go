package recentmaps

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jljohnson/mindmup/app"
	"github.com/jljohnson/mindmup/config"
	"github.com/jljohnson/mindmup/kvstore"
	"github.com/jljohnson/mindmup/mapcontent"
	"github.com/jljohnson/mindmup/maprepository"
	"github.com/jljohnson/mindmup/storage/memstorage"
	"github.com/jljohnson/mindmup/storageadapter"
)

var ctx = context.Background()

type fixture struct {
	RecentMaps
	a       *app.App
	repo    maprepository.MapRepository
	store   kvstore.StoreComponent
	storage memstorage.MemStorage
}

func newFixture(t *testing.T, limit int) *fixture {
	fx := &fixture{
		a:       new(app.App),
		store:   kvstore.NewMemory(),
		storage: memstorage.New(),
	}
	repo, err := maprepository.New([]storageadapter.StorageAdapter{fx.storage}, fx.store)
	require.NoError(t, err)
	fx.repo = repo
	fx.RecentMaps = New()

	conf := config.Default()
	conf.Recent.Limit = limit
	fx.a.Register(conf).
		Register(fx.store).
		Register(fx.storage).
		Register(fx.repo).
		Register(fx.RecentMaps)
	require.NoError(t, fx.a.Start(ctx))
	t.Cleanup(func() {
		require.NoError(t, fx.a.Close(ctx))
	})
	return fx
}

func (fx *fixture) saved(t *testing.T, title string) string {
	id, err := fx.storage.SaveMap(ctx, mapcontent.New(title), "")
	require.NoError(t, err)
	return id
}

func (fx *fixture) waitLast(t *testing.T, mapID string) {
	require.Eventually(t, func() bool {
		last, err := fx.repo.LastMapID(ctx)
		return err == nil && last == mapID
	}, time.Second, 5*time.Millisecond)
}

func TestRecentMaps_Load(t *testing.T) {
	fx := newFixture(t, 10)
	_, err := fx.repo.LastMapID(ctx)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	id := fx.saved(t, "first")
	_, err = fx.repo.LoadMap(ctx, id)
	require.NoError(t, err)
	fx.waitLast(t, id)

	ids, err := fx.Recent(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)
}

func TestRecentMaps_Publish(t *testing.T) {
	fx := newFixture(t, 10)
	require.NoError(t, fx.repo.SetMap(mapcontent.New("new"), ""))
	id, err := fx.repo.PublishMap(ctx, "")
	require.NoError(t, err)
	fx.waitLast(t, id)
}

func TestRecentMaps_FailedLoadIsIgnored(t *testing.T) {
	fx := newFixture(t, 10)
	id := fx.saved(t, "first")
	_, err := fx.repo.LoadMap(ctx, id)
	require.NoError(t, err)
	fx.waitLast(t, id)

	_, err = fx.repo.LoadMap(ctx, "mmissing")
	require.Error(t, err)
	// a later successful load proves the failure went through the queue unnoticed
	second := fx.saved(t, "second")
	_, err = fx.repo.LoadMap(ctx, second)
	require.NoError(t, err)
	fx.waitLast(t, second)
	ids, err := fx.Recent(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{second, id}, ids)
}

func TestRecentMaps_History(t *testing.T) {
	fx := newFixture(t, 2)
	a, b, c := fx.saved(t, "a"), fx.saved(t, "b"), fx.saved(t, "c")
	for _, id := range []string{a, b, a, c} {
		_, err := fx.repo.LoadMap(ctx, id)
		require.NoError(t, err)
	}
	fx.waitLast(t, c)
	require.Eventually(t, func() bool {
		ids, err := fx.Recent(ctx)
		return err == nil && assert.ObjectsAreEqual([]string{c, a}, ids)
	}, time.Second, 5*time.Millisecond)
}

func TestRecentMaps_BrokenHistory(t *testing.T) {
	fx := newFixture(t, 10)
	require.NoError(t, fx.store.Set(ctx, HistoryKey, "not json"))
	ids, err := fx.Recent(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRecentMaps_CloseFlushes(t *testing.T) {
	store := kvstore.NewMemory()
	storage := memstorage.New()
	repo, err := maprepository.New([]storageadapter.StorageAdapter{storage}, store)
	require.NoError(t, err)
	a := new(app.App)
	a.Register(store).Register(storage).Register(repo).Register(New())
	require.NoError(t, a.Start(ctx))

	id, err := storage.SaveMap(ctx, mapcontent.New("flushed"), "")
	require.NoError(t, err)
	_, err = repo.LoadMap(ctx, id)
	require.NoError(t, err)
	require.NoError(t, a.Close(ctx))

	last, err := repo.LastMapID(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, last)
}
