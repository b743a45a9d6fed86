package store

import (
	"errors"
	"slices"
	"sync"

	"github.com/inovacc/starcards/internal/model"
)

// Memory keeps favorites in process memory only.
type Memory struct {
	mu        sync.RWMutex
	favorites []model.Favorite
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Ping() error  { return nil }
func (m *Memory) Close() error { return nil }

func (m *Memory) SaveFavorite(f *model.Favorite) error {
	if f == nil || f.ID == "" {
		return errors.New("favorite id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.favorites {
		if m.favorites[i].ID == f.ID {
			m.favorites[i] = *f

			return nil
		}
	}

	m.favorites = append(m.favorites, *f)

	return nil
}

func (m *Memory) ListFavorites() ([]model.Favorite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.favorites), nil
}

func (m *Memory) DeleteFavorite(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.favorites, func(f model.Favorite) bool { return f.ID == id })
	if i < 0 {
		return ErrNotFound
	}

	m.favorites = slices.Delete(m.favorites, i, i+1)

	return nil
}
