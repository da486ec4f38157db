// Package filestorage stores maps as JSON files in a directory. Ids are prefixed with "f".
package filestorage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/jljohnson/mindmup/app"
	"github.com/jljohnson/mindmup/app/logger"
	"github.com/jljohnson/mindmup/config"
	"github.com/jljohnson/mindmup/mapcontent"
	"github.com/jljohnson/mindmup/storageadapter"
)

const CName = "mindmup.storage.file"

const (
	Prefix = "f"
	ext    = ".json"
)

var log = logger.NewNamed(CName)

type storageConfigGetter interface {
	GetStorage() config.Storage
}

type FileStorage interface {
	storageadapter.StorageAdapter
	app.Component
}

// New returns file storage rooted at dir; an empty dir is taken from the config component
func New(dir string) FileStorage {
	return &fileStorage{dir: dir}
}

type fileStorage struct {
	dir string
}

func (f *fileStorage) Init(a *app.App) (err error) {
	if f.dir == "" {
		f.dir = app.MustComponent[storageConfigGetter](a).GetStorage().Dir
	}
	return os.MkdirAll(f.dir, 0o755)
}

func (f *fileStorage) Name() (name string) {
	return CName
}

func (f *fileStorage) Recognises(mapID string) bool {
	return strings.HasPrefix(mapID, Prefix) && validID(mapID)
}

func (f *fileStorage) LoadMap(ctx context.Context, mapID string) (*mapcontent.Content, string, error) {
	if !validID(mapID) {
		return nil, "", storageadapter.NewFailure(storageadapter.ReasonNotFound, mapID)
	}
	data, err := os.ReadFile(f.path(mapID))
	if err != nil {
		return nil, "", fsFailure(err, mapID)
	}
	content, err := mapcontent.Parse(data)
	if err != nil {
		return nil, "", storageadapter.NewFailure(storageadapter.ReasonFormatError, mapID).Wrap(err)
	}
	return content, mapID, nil
}

func (f *fileStorage) SaveMap(ctx context.Context, content *mapcontent.Content, previousID string) (string, error) {
	data, err := mapcontent.Marshal(content)
	if err != nil {
		return "", storageadapter.NewFailure(storageadapter.ReasonFormatError).Wrap(err)
	}
	mapID := previousID
	if !f.Recognises(mapID) {
		mapID = storageadapter.NewID(Prefix)
	}
	if err = writeFile(f.path(mapID), data); err != nil {
		return "", fsFailure(err, mapID)
	}
	log.Debug("map written", zap.String("mapId", mapID), zap.Int("size", len(data)))
	return mapID, nil
}

func (f *fileStorage) path(mapID string) string {
	return filepath.Join(f.dir, mapID+ext)
}

// writeFile replaces the file atomically so readers never see a partial map
func writeFile(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return
	}
	if err = tmp.Close(); err != nil {
		return
	}
	return os.Rename(tmp.Name(), path)
}

func validID(mapID string) bool {
	return len(mapID) > len(Prefix) && !strings.ContainsAny(mapID, `/\`) && mapID != "." && mapID != ".."
}

func fsFailure(err error, mapID string) *storageadapter.Failure {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return storageadapter.NewFailure(storageadapter.ReasonNotFound, mapID).Wrap(err)
	case errors.Is(err, fs.ErrPermission):
		return storageadapter.NewFailure(storageadapter.ReasonNoAccessAllowed, mapID).Wrap(err)
	default:
		return storageadapter.NewFailure(storageadapter.ReasonStorageError, mapID).Wrap(err)
	}
}
