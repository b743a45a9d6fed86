package store

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/inovacc/starcards/internal/model"
	"go.etcd.io/bbolt"
)

const (
	boltBucketFavorites = "favorites" // key: ID -> Favorite JSON
)

// Bolt persists favorites in a BoltDB file.
type Bolt struct {
	storage *bbolt.DB
}

// NewBolt creates or opens a Bolt database at the specified path.
func NewBolt(path string) (*Bolt, error) {
	instance, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database: %w", err)
	}

	if err := instance.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketFavorites))

		return err
	}); err != nil {
		_ = instance.Close()

		return nil, err
	}

	return &Bolt{storage: instance}, nil
}

func (b *Bolt) Ping() error {
	return b.storage.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(boltBucketFavorites)) == nil {
			return errors.New("favorites bucket missing")
		}

		return nil
	})
}

func (b *Bolt) Close() error {
	return b.storage.Close()
}

func (b *Bolt) SaveFavorite(f *model.Favorite) error {
	if f == nil || f.ID == "" {
		return errors.New("favorite id is required")
	}

	data, err := json.Marshal(f)
	if err != nil {
		return err
	}

	return b.storage.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketFavorites)).Put([]byte(f.ID), data)
	})
}

// ListFavorites returns all favorites ordered by creation time.
func (b *Bolt) ListFavorites() ([]model.Favorite, error) {
	var out []model.Favorite

	err := b.storage.View(func(tx *bbolt.Tx) error {
		favorites := tx.Bucket([]byte(boltBucketFavorites))

		return favorites.ForEach(func(_, v []byte) error {
			var f model.Favorite

			if err := json.Unmarshal(v, &f); err != nil {
				return err
			}

			out = append(out, f)

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// keys are random UUIDs, so bucket order is meaningless
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (b *Bolt) DeleteFavorite(id string) error {
	return b.storage.Update(func(tx *bbolt.Tx) error {
		favorites := tx.Bucket([]byte(boltBucketFavorites))

		if favorites.Get([]byte(id)) == nil {
			return ErrNotFound
		}

		return favorites.Delete([]byte(id))
	})
}
