// Package memstorage keeps maps in process memory. Ids are prefixed with "m".
package memstorage

import (
	"context"
	"strings"
	"sync"

	"github.com/jljohnson/mindmup/app"
	"github.com/jljohnson/mindmup/mapcontent"
	"github.com/jljohnson/mindmup/storageadapter"
)

const CName = "mindmup.storage.memory"

const Prefix = "m"

type MemStorage interface {
	storageadapter.StorageAdapter
	app.Component
}

func New() MemStorage {
	return &memStorage{maps: make(map[string]*mapcontent.Content)}
}

type memStorage struct {
	mu   sync.RWMutex
	maps map[string]*mapcontent.Content
}

func (m *memStorage) Init(a *app.App) (err error) {
	return nil
}

func (m *memStorage) Name() (name string) {
	return CName
}

func (m *memStorage) Recognises(mapID string) bool {
	return strings.HasPrefix(mapID, Prefix)
}

func (m *memStorage) LoadMap(ctx context.Context, mapID string) (*mapcontent.Content, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.maps[mapID]
	if !ok {
		return nil, "", storageadapter.NewFailure(storageadapter.ReasonNotFound, mapID)
	}
	return content.Clone(), mapID, nil
}

// SaveMap overwrites a map it owns, any other previous id gets a new map
func (m *memStorage) SaveMap(ctx context.Context, content *mapcontent.Content, previousID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mapID := previousID
	if _, ok := m.maps[mapID]; !ok || !m.Recognises(mapID) {
		mapID = storageadapter.NewID(Prefix)
	}
	m.maps[mapID] = content.Clone()
	return mapID, nil
}
