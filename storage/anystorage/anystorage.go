// Package anystorage keeps maps in the local any-store database. Ids are prefixed with "a".
package anystorage

import (
	"context"
	"errors"
	"strings"
	"time"

	anystore "github.com/anyproto/any-store"
	"github.com/anyproto/any-store/anyenc"
	"go.uber.org/zap"

	"github.com/jljohnson/mindmup/app"
	"github.com/jljohnson/mindmup/app/logger"
	"github.com/jljohnson/mindmup/localdb"
	"github.com/jljohnson/mindmup/mapcontent"
	"github.com/jljohnson/mindmup/storageadapter"
)

const CName = "mindmup.storage.anystore"

const (
	Prefix         = "a"
	collectionName = "maps"
)

var log = logger.NewNamed(CName)

var arenaPool = &anyenc.ArenaPool{}

/*
any-store document structure:
	id (string) - map id
	c (string) - map content, JSON
	t (int) - update timestamp, milliseconds
*/

type AnyStorage interface {
	storageadapter.StorageAdapter
	app.Component
}

func New() AnyStorage {
	return &anyStorage{}
}

// NewWithCollection returns the adapter over an already opened collection
func NewWithCollection(coll anystore.Collection) AnyStorage {
	return &anyStorage{collection: coll}
}

type anyStorage struct {
	collection anystore.Collection
}

func (s *anyStorage) Init(a *app.App) (err error) {
	if s.collection != nil {
		return nil
	}
	db, err := app.MustComponent[localdb.LocalDB](a).DB()
	if err != nil {
		return err
	}
	s.collection, err = db.Collection(context.Background(), collectionName)
	return err
}

func (s *anyStorage) Name() (name string) {
	return CName
}

func (s *anyStorage) Recognises(mapID string) bool {
	return len(mapID) > len(Prefix) && strings.HasPrefix(mapID, Prefix)
}

func (s *anyStorage) LoadMap(ctx context.Context, mapID string) (*mapcontent.Content, string, error) {
	doc, err := s.collection.FindId(ctx, mapID)
	if err != nil {
		if errors.Is(err, anystore.ErrDocNotFound) {
			return nil, "", storageadapter.NewFailure(storageadapter.ReasonNotFound, mapID)
		}
		return nil, "", storageadapter.NewFailure(storageadapter.ReasonStorageError, mapID).Wrap(err)
	}
	content, err := mapcontent.Parse([]byte(doc.Value().GetString("c")))
	if err != nil {
		return nil, "", storageadapter.NewFailure(storageadapter.ReasonFormatError, mapID).Wrap(err)
	}
	return content, mapID, nil
}

func (s *anyStorage) SaveMap(ctx context.Context, content *mapcontent.Content, previousID string) (mapID string, err error) {
	data, err := mapcontent.Marshal(content)
	if err != nil {
		return "", storageadapter.NewFailure(storageadapter.ReasonFormatError).Wrap(err)
	}
	mapID = previousID
	if !s.Recognises(mapID) {
		mapID = storageadapter.NewID(Prefix)
	}
	arena := arenaPool.Get()
	defer arenaPool.Put(arena)
	doc := arena.NewObject()
	doc.Set("id", arena.NewString(mapID))
	doc.Set("c", arena.NewString(string(data)))
	doc.Set("t", arena.NewNumberInt(int(time.Now().UnixMilli())))
	if err = s.collection.UpsertOne(ctx, doc); err != nil {
		return "", storageadapter.NewFailure(storageadapter.ReasonStorageError, mapID).Wrap(err)
	}
	log.Debug("map stored", zap.String("mapId", mapID))
	return mapID, nil
}
