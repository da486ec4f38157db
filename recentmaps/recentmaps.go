// Package recentmaps remembers the maps used most recently.
// It follows the repository events in the background and writes the store, the repository never does.
package recentmaps

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/jljohnson/mindmup/app"
	"github.com/jljohnson/mindmup/app/logger"
	"github.com/jljohnson/mindmup/config"
	"github.com/jljohnson/mindmup/events"
	"github.com/jljohnson/mindmup/kvstore"
	"github.com/jljohnson/mindmup/maprepository"
)

const CName = "mindmup.recentmaps"

// HistoryKey is the store key holding the recent map ids, newest first, as a JSON array
const HistoryKey = "recentMaps"

const defaultLimit = 10

const drainInterval = 10 * time.Millisecond

var log = logger.NewNamed(CName)

type recentConfigGetter interface {
	GetRecent() config.Recent
}

type RecentMaps interface {
	// Recent returns remembered map ids, newest first
	Recent(ctx context.Context) ([]string, error)
	app.ComponentRunnable
}

func New() RecentMaps {
	return &recentMaps{limit: defaultLimit}
}

type recentMaps struct {
	repo  maprepository.MapRepository
	store kvstore.Store
	limit int

	sub  *events.Subscription
	done chan struct{}
}

func (r *recentMaps) Init(a *app.App) (err error) {
	r.repo = app.MustComponent[maprepository.MapRepository](a)
	r.store = app.MustComponent[kvstore.Store](a)
	if cg, ok := a.Component(config.CName).(recentConfigGetter); ok && cg.GetRecent().Limit > 0 {
		r.limit = cg.GetRecent().Limit
	}
	return nil
}

func (r *recentMaps) Name() (name string) {
	return CName
}

func (r *recentMaps) Run(ctx context.Context) (err error) {
	r.sub = r.repo.Subscribe(0, events.TypeMapLoaded, events.TypeMapSaved)
	r.done = make(chan struct{})
	go r.follow()
	return nil
}

func (r *recentMaps) follow() {
	defer close(r.done)
	ctx := context.Background()
	for {
		e, err := r.sub.Next(ctx)
		if err != nil {
			return
		}
		var mapID string
		switch ev := e.(type) {
		case events.MapLoaded:
			mapID = ev.ID
		case events.MapSaved:
			mapID = ev.ID
		}
		if mapID == "" {
			continue
		}
		if err = r.remember(ctx, mapID); err != nil {
			log.Warn("can't remember map", zap.String("mapId", mapID), zap.Error(err))
		}
	}
}

// remember writes the history before the most recent key, readers of the key see a complete history
func (r *recentMaps) remember(ctx context.Context, mapID string) error {
	ids, err := r.Recent(ctx)
	if err != nil {
		return err
	}
	ids = slices.DeleteFunc(ids, func(id string) bool {
		return id == mapID
	})
	ids = append([]string{mapID}, ids...)
	if len(ids) > r.limit {
		ids = ids[:r.limit]
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err = r.store.Set(ctx, HistoryKey, string(data)); err != nil {
		return err
	}
	return r.store.Set(ctx, maprepository.MostRecentMapKey, mapID)
}

func (r *recentMaps) Recent(ctx context.Context) ([]string, error) {
	value, err := r.store.Get(ctx, HistoryKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err = json.Unmarshal([]byte(value), &ids); err != nil {
		log.Warn("recent maps history is broken, starting over", zap.Error(err))
		return nil, nil
	}
	return ids, nil
}

func (r *recentMaps) Close(ctx context.Context) (err error) {
	if r.sub == nil {
		return nil
	}
	// let queued events reach the store before stopping
	for r.sub.Len() > 0 {
		select {
		case <-ctx.Done():
			_ = r.sub.Close()
			return ctx.Err()
		case <-time.After(drainInterval):
		}
	}
	err = r.sub.Close()
	select {
	case <-r.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return
}
