package store

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/inovacc/starcards/internal/model"
	"github.com/inovacc/starcards/internal/store/sqlite"
)

// ErrNotFound is returned by DeleteFavorite for unknown ids.
var ErrNotFound = sqlite.ErrNotFound

// Store defines the persistence operations used by the app.
type Store interface {
	Ping() error
	SaveFavorite(f *model.Favorite) error
	ListFavorites() ([]model.Favorite, error)
	DeleteFavorite(id string) error
	Close() error
}

// File names inside the application directory
const (
	BoltFileName   = "starcards.bolt"
	SQLiteFileName = "starcards.db"
)

// Open opens the backend named kind with its files under dir.
func Open(kind, dir string) (Store, error) {
	switch kind {
	case model.StorageBolt, "":
		return NewBolt(filepath.Join(dir, BoltFileName))
	case model.StorageSQLite:
		return sqlite.New(filepath.Join(dir, SQLiteFileName))
	case model.StorageMemory:
		return NewMemory(), nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", kind)
}

// IsNotFound reports whether err means the favorite does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
