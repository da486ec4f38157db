//go:generate mockgen -destination mock_storageadapter/mock_storageadapter.go github.com/jljohnson/mindmup/storageadapter StorageAdapter
package storageadapter

import (
	"context"

	"github.com/jljohnson/mindmup/mapcontent"
)

// StorageAdapter is a backend able to load and save maps.
// Failures should be reported as *Failure so the repository can classify them.
type StorageAdapter interface {
	// Recognises reports whether the adapter owns the map id. Must be cheap and synchronous.
	Recognises(mapID string) bool
	// LoadMap returns the content and the id it was resolved to
	LoadMap(ctx context.Context, mapID string) (content *mapcontent.Content, resolvedID string, err error)
	// SaveMap stores the content and returns its id, which differs from previousID when a new map was created
	SaveMap(ctx context.Context, content *mapcontent.Content, previousID string) (resolvedID string, err error)
}

// Select returns the adapter owning the first recognised candidate id.
// Every adapter is asked once about every non-empty candidate, in candidate then adapter order,
// even after a match; only the first positive match is used. The first adapter is the fallback.
func Select(adapters []StorageAdapter, candidateIDs ...string) StorageAdapter {
	if len(adapters) == 0 {
		return nil
	}
	var selected StorageAdapter
	for _, id := range candidateIDs {
		if id == "" {
			continue
		}
		for _, adapter := range adapters {
			if adapter.Recognises(id) && selected == nil {
				selected = adapter
			}
		}
	}
	if selected != nil {
		return selected
	}
	return adapters[0]
}
