package kvstore

import (
	"context"
	"errors"
	"time"

	anystore "github.com/anyproto/any-store"
	"github.com/anyproto/any-store/anyenc"

	"github.com/jljohnson/mindmup/app"
	"github.com/jljohnson/mindmup/localdb"
)

const collectionName = "kv"

var arenaPool = &anyenc.ArenaPool{}

/*
any-store document structure:
	id (string) - key
	v (string) - value
	t (int) - update timestamp, milliseconds
*/

// NewAnyStore returns a Store persisted in the local any-store database
func NewAnyStore() StoreComponent {
	return &anyStore{}
}

// NewAnyStoreWithCollection is NewAnyStore over an already opened collection
func NewAnyStoreWithCollection(coll anystore.Collection) Store {
	return &anyStore{collection: coll}
}

type anyStore struct {
	collection anystore.Collection
}

func (s *anyStore) Init(a *app.App) (err error) {
	db, err := app.MustComponent[localdb.LocalDB](a).DB()
	if err != nil {
		return err
	}
	s.collection, err = db.Collection(context.Background(), collectionName)
	return err
}

func (s *anyStore) Name() (name string) {
	return CName
}

func (s *anyStore) Get(ctx context.Context, key string) (string, error) {
	doc, err := s.collection.FindId(ctx, key)
	if err != nil {
		if errors.Is(err, anystore.ErrDocNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return doc.Value().GetString("v"), nil
}

func (s *anyStore) Set(ctx context.Context, key, value string) error {
	arena := arenaPool.Get()
	defer arenaPool.Put(arena)
	doc := arena.NewObject()
	doc.Set("id", arena.NewString(key))
	doc.Set("v", arena.NewString(value))
	doc.Set("t", arena.NewNumberInt(int(time.Now().UnixMilli())))
	return s.collection.UpsertOne(ctx, doc)
}

func (s *anyStore) Delete(ctx context.Context, key string) error {
	err := s.collection.DeleteId(ctx, key)
	if errors.Is(err, anystore.ErrDocNotFound) {
		return nil
	}
	return err
}
