//go:generate mockgen -destination mock_kvstore/mock_kvstore.go github.com/jljohnson/mindmup/kvstore Store
package kvstore

import (
	"context"
	"errors"
	"sync"

	"github.com/jljohnson/mindmup/app"
)

const CName = "mindmup.kvstore"

var ErrNotFound = errors.New("key not found")

// Store is the persistent key/value store for side concerns such as the last used map
type Store interface {
	Get(ctx context.Context, key string) (value string, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// StoreComponent is a Store registered in the app
type StoreComponent interface {
	Store
	app.Component
}

// NewMemory returns a Store living for the process lifetime
func NewMemory() StoreComponent {
	return &memStore{values: make(map[string]string)}
}

type memStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func (m *memStore) Init(a *app.App) (err error) {
	return nil
}

func (m *memStore) Name() (name string) {
	return CName
}

func (m *memStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *memStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
