package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jljohnson/mindmup/app"
	"github.com/jljohnson/mindmup/app/logger"
	"github.com/jljohnson/mindmup/config"
	"github.com/jljohnson/mindmup/kvstore"
	"github.com/jljohnson/mindmup/localdb"
	"github.com/jljohnson/mindmup/maprepository"
	"github.com/jljohnson/mindmup/metric"
	"github.com/jljohnson/mindmup/recentmaps"
	"github.com/jljohnson/mindmup/storage/anystorage"
	"github.com/jljohnson/mindmup/storage/filestorage"
	"github.com/jljohnson/mindmup/storage/httpstorage"
	"github.com/jljohnson/mindmup/storage/memstorage"
	"github.com/jljohnson/mindmup/storageadapter"
)

type adapterComponent interface {
	storageadapter.StorageAdapter
	app.Component
}

func newAdapter(name string) (adapterComponent, error) {
	switch name {
	case "file":
		return filestorage.New(""), nil
	case "anystore":
		return anystorage.New(), nil
	case "http":
		return httpstorage.New(httpstorage.Options{}), nil
	case "memory":
		return memstorage.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage adapter %q", name)
	}
}

// Bootstrap registers the components in start order, adapters follow the configured priority
func Bootstrap(a *app.App, conf *config.Config) (maprepository.MapRepository, error) {
	conf.Log.ApplyGlobal()
	adapters := make([]storageadapter.StorageAdapter, 0, len(conf.Storage.Adapters))
	components := make([]app.Component, 0, len(conf.Storage.Adapters))
	for _, name := range conf.Storage.Adapters {
		adapter, err := newAdapter(name)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, adapter)
		components = append(components, adapter)
	}
	repo, err := maprepository.New(adapters, nil)
	if err != nil {
		return nil, err
	}

	a.Register(conf).
		Register(localdb.New("")).
		Register(kvstore.NewAnyStore())
	for _, c := range components {
		a.Register(c)
	}
	a.Register(repo).
		Register(recentmaps.New()).
		Register(metric.New())
	logger.NewNamed("main").Debug("components registered", zap.Strings("components", a.ComponentNames()))
	return repo, nil
}
