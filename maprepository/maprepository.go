// Package maprepository keeps the current map and moves it between the caller and storage adapters.
//
// Loads and saves pick an adapter with storageadapter.Select, retry transient network failures
// with a linear backoff and report every stage through lifecycle events.
package maprepository

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jljohnson/mindmup/app"
	"github.com/jljohnson/mindmup/app/logger"
	"github.com/jljohnson/mindmup/config"
	"github.com/jljohnson/mindmup/events"
	"github.com/jljohnson/mindmup/kvstore"
	"github.com/jljohnson/mindmup/mapcontent"
	"github.com/jljohnson/mindmup/storageadapter"
	"github.com/jljohnson/mindmup/util/backoff"
	"github.com/jljohnson/mindmup/util/retry"
)

const CName = "mindmup.maprepository"

// MostRecentMapKey is the store key holding the id of the last loaded or saved map
const MostRecentMapKey = "mostRecentMapLoaded"

const defaultRetryTimes = 5

var log = logger.NewNamed(CName)

var (
	ErrNoAdapters   = errors.New("no storage adapters")
	ErrNoCurrentMap = errors.New("no current map to publish")
	ErrNilContent   = errors.New("map content is nil")
	// ErrEmptyResult is the cause of the format-error failure raised when an adapter
	// reports success without content on load or without an id on save
	ErrEmptyResult = errors.New("storage adapter returned an empty result")
)

type MapRepository interface {
	// LoadMap loads the map through the adapter recognising mapID and makes it current
	LoadMap(ctx context.Context, mapID string) (*mapcontent.Content, error)
	// PublishMap saves the current map. targetID is optional and takes precedence over
	// the current id when choosing the adapter. Returns the id the map was saved under.
	PublishMap(ctx context.Context, targetID string) (string, error)
	// SetMap makes content current without touching storage
	SetMap(content *mapcontent.Content, mapID string) error
	CurrentMap() (content *mapcontent.Content, mapID string)
	// LastMapID returns the most recently used map id remembered in the store
	LastMapID(ctx context.Context) (string, error)

	AddEventListener(t events.Type, l events.Listener)
	Subscribe(size int, types ...events.Type) *events.Subscription
	Dispatcher() *events.Dispatcher

	app.Component
}

type repositoryConfigGetter interface {
	GetRepository() config.Repository
}

type Option func(r *mapRepository)

// WithRetry replaces the retry coordinator
func WithRetry(c retry.Coordinator) Option {
	return func(r *mapRepository) {
		r.retry = c
	}
}

// WithBackoff sets the backoff factory; nil means retrying immediately
func WithBackoff(f backoff.Factory) Option {
	return func(r *mapRepository) {
		r.newBackoff = f
		r.backoffSet = true
	}
}

// WithRetryTimes sets the number of retries after the first attempt
func WithRetryTimes(n int) Option {
	return func(r *mapRepository) {
		r.retryTimes = n
		r.retryTimesSet = true
	}
}

// New creates the repository over adapters in priority order, the first one is the fallback.
// store is kept for side concerns and never written by loads and saves; a nil store is
// resolved from the app on Init.
func New(adapters []storageadapter.StorageAdapter, store kvstore.Store, opts ...Option) (MapRepository, error) {
	if len(adapters) == 0 {
		return nil, ErrNoAdapters
	}
	r := &mapRepository{
		adapters:   append([]storageadapter.StorageAdapter(nil), adapters...),
		store:      store,
		dispatcher: events.NewDispatcher(),
		retry:      retry.New(),
		retryTimes: defaultRetryTimes,
		newBackoff: backoff.LinearBackoff,
	}
	for _, o := range opts {
		if o != nil {
			o(r)
		}
	}
	return r, nil
}

type mapRepository struct {
	adapters   []storageadapter.StorageAdapter
	store      kvstore.Store
	dispatcher *events.Dispatcher
	retry      retry.Coordinator

	retryTimes    int
	retryTimesSet bool
	newBackoff    backoff.Factory
	backoffSet    bool

	mu      sync.Mutex
	content *mapcontent.Content
	mapID   string
}

func (r *mapRepository) Init(a *app.App) (err error) {
	if r.store == nil {
		if store, ok := a.Component(kvstore.CName).(kvstore.Store); ok {
			r.store = store
		}
	}
	cg, ok := a.Component(config.CName).(repositoryConfigGetter)
	if !ok {
		return nil
	}
	conf := cg.GetRepository()
	if !r.retryTimesSet && conf.RetryTimes > 0 {
		r.retryTimes = conf.RetryTimes
	}
	if !r.backoffSet && conf.BackoffStepMs > 0 {
		step := time.Duration(conf.BackoffStepMs) * time.Millisecond
		maxDelay := time.Duration(conf.BackoffMaxMs) * time.Millisecond
		if r.newBackoff, err = backoff.NewFactory(conf.Backoff, step, maxDelay); err != nil {
			return err
		}
	}
	return nil
}

func (r *mapRepository) Name() (name string) {
	return CName
}

func (r *mapRepository) LoadMap(ctx context.Context, mapID string) (*mapcontent.Content, error) {
	r.dispatcher.Dispatch(events.MapLoading{ID: mapID})
	ctx = logger.CtxWithFields(ctx, zap.String("mapId", mapID))

	adapter := storageadapter.Select(r.adapters, mapID)
	var (
		content    *mapcontent.Content
		resolvedID string
	)
	err := r.retry.Retry(ctx, func(ctx context.Context) (err error) {
		content, resolvedID, err = adapter.LoadMap(ctx, mapID)
		if err == nil && content == nil {
			err = storageadapter.NewFailure(storageadapter.ReasonFormatError, mapID).Wrap(ErrEmptyResult)
		}
		return
	}, r.shouldRetry(), r.backoff())
	if err != nil {
		reason, extra := storageadapter.ReasonOf(err)
		if storageadapter.IsUnauthorized(err) {
			log.InfoCtx(ctx, "map loading unauthorized", zap.String("reason", reason))
			r.dispatcher.Dispatch(events.MapLoadingUnAuthorized{ID: mapID, Reason: reason})
		} else {
			log.WarnCtx(ctx, "map loading failed", zap.Error(err))
			r.dispatcher.Dispatch(events.MapLoadingFailed{ID: mapID, Reason: reason, Extra: extra, Err: err})
		}
		return nil, err
	}
	if resolvedID == "" {
		resolvedID = mapID
	}
	r.setState(content, resolvedID)
	log.DebugCtx(ctx, "map loaded", zap.String("resolvedId", resolvedID))
	r.dispatcher.Dispatch(events.MapLoaded{Content: content, ID: resolvedID})
	return content, nil
}

func (r *mapRepository) PublishMap(ctx context.Context, targetID string) (string, error) {
	content, currentID := r.CurrentMap()
	if content == nil {
		return "", ErrNoCurrentMap
	}
	r.dispatcher.Dispatch(events.MapSaving{})
	ctx = logger.CtxWithFields(ctx, zap.String("mapId", currentID), zap.String("targetId", targetID))

	adapter := storageadapter.Select(r.adapters, targetID, currentID)
	resolvedID, err := retry.Do(ctx, r.retry, func(ctx context.Context) (string, error) {
		id, err := adapter.SaveMap(ctx, content, currentID)
		if err == nil && id == "" {
			err = storageadapter.NewFailure(storageadapter.ReasonFormatError, currentID).Wrap(ErrEmptyResult)
		}
		return id, err
	}, r.shouldRetry(), r.backoff())
	if err != nil {
		reason, extra := storageadapter.ReasonOf(err)
		if storageadapter.IsUnauthorized(err) {
			log.InfoCtx(ctx, "map saving unauthorized", zap.String("reason", reason))
			r.dispatcher.Dispatch(events.MapSavingUnAuthorized{Reason: reason})
		} else {
			log.WarnCtx(ctx, "map saving failed", zap.Error(err))
			r.dispatcher.Dispatch(events.MapSavingFailed{Reason: reason, Extra: extra, Err: err})
		}
		return "", err
	}
	isNew := resolvedID != currentID
	r.setState(content, resolvedID)
	log.DebugCtx(ctx, "map saved", zap.String("resolvedId", resolvedID), zap.Bool("isNew", isNew))
	r.dispatcher.Dispatch(events.MapSaved{ID: resolvedID, Content: content, IsNew: isNew})
	return resolvedID, nil
}

func (r *mapRepository) SetMap(content *mapcontent.Content, mapID string) error {
	if content == nil {
		return ErrNilContent
	}
	r.setState(content, mapID)
	return nil
}

func (r *mapRepository) CurrentMap() (*mapcontent.Content, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.content, r.mapID
}

func (r *mapRepository) LastMapID(ctx context.Context) (string, error) {
	if r.store == nil {
		return "", kvstore.ErrNotFound
	}
	return r.store.Get(ctx, MostRecentMapKey)
}

func (r *mapRepository) AddEventListener(t events.Type, l events.Listener) {
	r.dispatcher.AddEventListener(t, l)
}

func (r *mapRepository) Subscribe(size int, types ...events.Type) *events.Subscription {
	return r.dispatcher.Subscribe(size, types...)
}

func (r *mapRepository) Dispatcher() *events.Dispatcher {
	return r.dispatcher
}

// setState replaces the state as a whole; overlapping operations are last-write-wins
func (r *mapRepository) setState(content *mapcontent.Content, mapID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = content
	r.mapID = mapID
}

func (r *mapRepository) shouldRetry() retry.ShouldRetry {
	return retry.If(storageadapter.IsNetworkError, retry.Times(r.retryTimes))
}

func (r *mapRepository) backoff() backoff.Backoff {
	if r.newBackoff == nil {
		return nil
	}
	return r.newBackoff()
}
