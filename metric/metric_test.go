package metric

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jljohnson/mindmup/app"
	"github.com/jljohnson/mindmup/config"
	"github.com/jljohnson/mindmup/events"
	"github.com/jljohnson/mindmup/kvstore"
	"github.com/jljohnson/mindmup/mapcontent"
	"github.com/jljohnson/mindmup/maprepository"
	"github.com/jljohnson/mindmup/storage/memstorage"
	"github.com/jljohnson/mindmup/storageadapter"
)

var ctx = context.Background()

type fixture struct {
	*metric
	a       *app.App
	repo    maprepository.MapRepository
	storage memstorage.MemStorage
}

func newFixture(t *testing.T, addr string) *fixture {
	fx := &fixture{
		a:       new(app.App),
		storage: memstorage.New(),
	}
	repo, err := maprepository.New([]storageadapter.StorageAdapter{fx.storage}, kvstore.NewMemory())
	require.NoError(t, err)
	fx.repo = repo
	fx.metric = New().(*metric)

	conf := config.Default()
	conf.Metric.Addr = addr
	fx.a.Register(conf).
		Register(fx.storage).
		Register(fx.repo).
		Register(fx.metric)
	require.NoError(t, fx.a.Start(ctx))
	t.Cleanup(func() {
		require.NoError(t, fx.a.Close(ctx))
	})
	return fx
}

func (fx *fixture) count(t events.Type) float64 {
	return testutil.ToFloat64(fx.events.WithLabelValues(string(t)))
}

func TestMetric_Events(t *testing.T) {
	fx := newFixture(t, "")
	assert.Empty(t, fx.Addr())

	id, err := fx.storage.SaveMap(ctx, mapcontent.New("counted"), "")
	require.NoError(t, err)
	_, err = fx.repo.LoadMap(ctx, id)
	require.NoError(t, err)
	_, err = fx.repo.LoadMap(ctx, "mmissing")
	require.Error(t, err)
	_, err = fx.repo.PublishMap(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, float64(2), fx.count(events.TypeMapLoading))
	assert.Equal(t, float64(1), fx.count(events.TypeMapLoaded))
	assert.Equal(t, float64(1), fx.count(events.TypeMapLoadingFailed))
	assert.Equal(t, float64(1), fx.count(events.TypeMapSaving))
	assert.Equal(t, float64(1), fx.count(events.TypeMapSaved))
	assert.Equal(t, float64(1), testutil.ToFloat64(fx.failures.WithLabelValues(string(events.TypeMapLoadingFailed), storageadapter.ReasonNotFound)))
}

func TestMetric_FailureReasonLabel(t *testing.T) {
	fx := newFixture(t, "")
	d := fx.repo.Dispatcher()
	d.Dispatch(events.MapSavingFailed{Reason: "dial tcp 10.0.0.1:443: connect: connection refused"})
	d.Dispatch(events.MapSavingFailed{Reason: "context deadline exceeded"})
	d.Dispatch(events.MapSavingFailed{Reason: storageadapter.ReasonNetworkError})
	d.Dispatch(events.MapLoadingUnAuthorized{ID: "h1", Reason: storageadapter.ReasonNoAccessAllowed})

	saveFailed := string(events.TypeMapSavingFailed)
	assert.Equal(t, float64(2), testutil.ToFloat64(fx.failures.WithLabelValues(saveFailed, storageadapter.ReasonStorageError)))
	assert.Equal(t, float64(1), testutil.ToFloat64(fx.failures.WithLabelValues(saveFailed, storageadapter.ReasonNetworkError)))
	assert.Equal(t, float64(1), testutil.ToFloat64(fx.failures.WithLabelValues(string(events.TypeMapLoadingUnAuthorized), storageadapter.ReasonNoAccessAllowed)))
	assert.Equal(t, 3, testutil.CollectAndCount(fx.failures))
}

func TestMetric_Endpoint(t *testing.T) {
	fx := newFixture(t, "127.0.0.1:0")
	require.NotEmpty(t, fx.Addr())

	require.NoError(t, fx.repo.SetMap(mapcontent.New("x"), ""))
	_, err := fx.repo.PublishMap(ctx, "")
	require.NoError(t, err)

	resp, err := http.Get("http://" + fx.Addr() + "/metrics")
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `mindmup_repository_events_total{type="mapSaved"} 1`)
	assert.Contains(t, string(body), "mindmup_versions")
}
