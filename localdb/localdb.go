package localdb

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	anystore "github.com/anyproto/any-store"
	"go.uber.org/zap"

	"github.com/jljohnson/mindmup/app"
	"github.com/jljohnson/mindmup/app/logger"
)

const CName = "mindmup.localdb"

var log = logger.NewNamed(CName)

var ErrNotOpened = errors.New("local db is not opened")

type configGetter interface {
	GetLocalDBPath() string
}

// LocalDB owns the any-store database shared by the local key/value store and the any-store adapter
type LocalDB interface {
	DB() (anystore.DB, error)
	app.ComponentRunnable
}

// New returns a component opening the database at path.
// An empty path is taken from the config component.
func New(path string) LocalDB {
	return &localDB{path: path}
}

type localDB struct {
	path string
	db   anystore.DB
}

func (l *localDB) Init(a *app.App) (err error) {
	if l.path == "" {
		l.path = app.MustComponent[configGetter](a).GetLocalDBPath()
	}
	if l.path == "" {
		return errors.New("local db path is not set")
	}
	if err = os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	// opened at init, adapters and stores resolve their collections in their own Init
	l.db, err = anystore.Open(context.Background(), l.path, nil)
	if err != nil {
		return err
	}
	log.Debug("local db opened", zap.String("path", l.path))
	return nil
}

func (l *localDB) Name() (name string) {
	return CName
}

func (l *localDB) Run(ctx context.Context) (err error) {
	return nil
}

func (l *localDB) DB() (anystore.DB, error) {
	if l.db == nil {
		return nil, ErrNotOpened
	}
	return l.db, nil
}

func (l *localDB) Close(ctx context.Context) (err error) {
	if l.db == nil {
		return nil
	}
	err = l.db.Close()
	l.db = nil
	return
}
