// Package state implements the application store: the single source of
// truth for the loaded entity sequence and the user's favorites.
//
// Views read the store through [Store.Snapshot] and change it only through
// its actions ([Store.Load], [Store.AddFavorite], [Store.RemoveFavorite],
// [Store.ChangeColor]). Every state change bumps the store revision and is
// delivered to subscribers synchronously, after the change is applied and
// the store lock is released.
//
// Overlapping loads are resolved by request generation: each Load takes a
// generation number when it is issued and its response is applied only if
// no newer generation has settled in the meantime. A failure settles its
// generation too: when a newer load fails before an older one succeeds,
// the older response is discarded and the store keeps its prior entities
// and category in the failed state. The entity sequence therefore always
// reflects exactly one response.
//
// The category reported by the store is the category of the entities it
// holds. A load for another category commits it only on success.
package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/inovacc/starcards/internal/model"
	"github.com/inovacc/starcards/internal/notify"
)

var (
	// ErrStaleLoad is returned by Load when a newer load settled first.
	ErrStaleLoad = errors.New("load superseded by a newer request")

	// ErrIndexOutOfRange is returned by Entity for positions outside the sequence.
	ErrIndexOutOfRange = errors.New("entity index out of range")
)

// Source fetches the entity list of a category.
type Source interface {
	ListEntities(ctx context.Context, category model.Category) ([]model.Entity, error)
}

// FavoriteRepository persists favorites. It is optional.
type FavoriteRepository interface {
	SaveFavorite(f *model.Favorite) error
	ListFavorites() ([]model.Favorite, error)
	DeleteFavorite(id string) error
}

// DuplicatePolicy controls AddFavorite for an already favorited name and tag.
type DuplicatePolicy int

const (
	// DuplicatesAllowed appends every favorite, duplicates included
	DuplicatesAllowed DuplicatePolicy = iota

	// DuplicatesRejected keeps the first favorite for a name and tag
	DuplicatesRejected
)

// Options configures a Store
type Options struct {
	// Category is the collection Load fetches (default people)
	Category model.Category

	// Favorites persists favorites when set
	Favorites FavoriteRepository

	// Duplicates selects the AddFavorite policy
	Duplicates DuplicatePolicy

	Logger *slog.Logger

	// now and newID are replaced in tests
	now   func() time.Time
	newID func() string
}

// Store is the application store.
type Store struct {
	source     Source
	repo       FavoriteRepository
	duplicates DuplicatePolicy
	logger     *slog.Logger
	dispatcher *notify.Dispatcher
	now        func() time.Time
	newID      func() string

	mu        sync.RWMutex
	category  model.Category
	status    model.LoadState
	lastErr   error
	entities  []model.Entity
	favorites []model.Favorite
	revision  uint64
	settled   uint64 // generation of the last load response applied or failed

	issued atomic.Uint64 // last generation handed out
	subs   atomic.Uint64
}

// New creates a store reading from source. Persisted favorites are restored
// when a repository is configured.
func New(source Source, opts Options) (*Store, error) {
	if source == nil {
		return nil, errors.New("entity source is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	category := opts.Category
	if category == "" {
		category = model.CategoryPeople
	}

	s := &Store{
		source:     source,
		repo:       opts.Favorites,
		duplicates: opts.Duplicates,
		logger:     logger,
		dispatcher: notify.NewDispatcher(false, logger),
		now:        opts.now,
		newID:      opts.newID,
		category:   category,
		status:     model.LoadStateUninitialized,
	}

	if s.now == nil {
		s.now = time.Now
	}

	if s.newID == nil {
		s.newID = func() string { return uuid.New().String() }
	}

	if s.repo != nil {
		favs, err := s.repo.ListFavorites()
		if err != nil {
			return nil, fmt.Errorf("failed to restore favorites: %w", err)
		}

		s.favorites = favs
	}

	return s, nil
}

// Subscribe registers fn for every store event and returns a function that
// removes the registration. fn runs on the goroutine that changed the store;
// it must not block and must not call store actions synchronously.
func (s *Store) Subscribe(fn func(ctx context.Context, event *notify.Event)) (unsubscribe func()) {
	name := fmt.Sprintf("subscriber-%d", s.subs.Add(1))
	s.dispatcher.Register(notify.SubscriberFunc{ID: name, Fn: fn})

	var once sync.Once

	return func() {
		once.Do(func() { s.dispatcher.Unregister(name) })
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() model.Snapshot {
	entities := make([]model.Entity, len(s.entities))
	for i, e := range s.entities {
		entities[i] = e.Clone()
	}

	snap := model.Snapshot{
		State:     s.status,
		Category:  s.category,
		Entities:  entities,
		Favorites: slices.Clone(s.favorites),
		Revision:  s.revision,
	}

	if s.lastErr != nil {
		snap.Err = s.lastErr.Error()
	}

	return snap
}

// Status returns the lifecycle state and the last load error, if any.
func (s *Store) Status() (model.LoadState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status, s.lastErr
}

// Category returns the collection Load fetches.
func (s *Store) Category() model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.category
}

// Entities returns a copy of the entity sequence.
func (s *Store) Entities() []model.Entity {
	return s.Snapshot().Entities
}

// Favorites returns a copy of the favorites.
func (s *Store) Favorites() []model.Favorite {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.favorites)
}

// Entity returns the entity at index.
func (s *Store) Entity(index int) (model.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.entities) {
		return model.Entity{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	return s.entities[index].Clone(), nil
}

// Load fetches the entity list of the current category. See LoadCategory.
func (s *Store) Load(ctx context.Context) error {
	return s.LoadCategory(ctx, s.Category())
}

// LoadCategory fetches the entity list of category from the source. On
// success the entity sequence is replaced in source order and category
// becomes the store category. On failure prior entities and category are
// kept, the store records the failure and the error is returned.
func (s *Store) LoadCategory(ctx context.Context, category model.Category) error {
	gen := s.issued.Add(1)

	s.mu.Lock()
	s.status = model.LoadStatePending
	rev := s.bumpLocked()
	s.mu.Unlock()

	s.emit(ctx, &notify.Event{Type: notify.EventLoadStarted, Revision: rev, Index: -1, Value: category.String()})

	entities, err := s.source.ListEntities(ctx, category)

	s.mu.Lock()

	if gen <= s.settled {
		s.mu.Unlock()

		s.logger.Debug("discarding stale load response",
			slog.Uint64("generation", gen),
			slog.Uint64("settled", s.settled),
		)

		return ErrStaleLoad
	}

	s.settled = gen

	if err != nil {
		// A newer request may still be in flight; it settles the state itself.
		if gen == s.issued.Load() {
			s.status = model.LoadStateFailed
			s.lastErr = err
		}

		rev = s.bumpLocked()
		s.mu.Unlock()

		s.logger.Warn("failed to load entities",
			slog.String("category", category.String()),
			slog.Any("error", err),
		)

		s.emit(ctx, &notify.Event{Type: notify.EventLoadFailed, Revision: rev, Index: -1, Value: category.String(), Error: err.Error()})

		return fmt.Errorf("load %s: %w", category, err)
	}

	s.entities = entities
	s.category = category

	if gen == s.issued.Load() {
		s.status = model.LoadStateReady
		s.lastErr = nil
	}

	rev = s.bumpLocked()
	count := len(entities)
	s.mu.Unlock()

	s.logger.Info("loaded entities",
		slog.String("category", category.String()),
		slog.Int("count", count),
	)

	s.emit(ctx, &notify.Event{Type: notify.EventLoadSucceeded, Revision: rev, Index: -1, Value: category.String()})

	return nil
}

// AddFavorite appends a favorite referencing name under the category tag.
// It always succeeds. With DuplicatesRejected an existing favorite for the
// same name and tag is returned unchanged and no event is emitted.
func (s *Store) AddFavorite(name, category string) model.Favorite {
	s.mu.Lock()

	if s.duplicates == DuplicatesRejected {
		for _, f := range s.favorites {
			if f.Matches(name, category) {
				s.mu.Unlock()

				return f
			}
		}
	}

	fav := model.Favorite{
		ID:        s.newID(),
		Name:      name,
		Category:  category,
		CreatedAt: s.now(),
	}

	s.favorites = append(s.favorites, fav)
	rev := s.bumpLocked()
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.SaveFavorite(&fav); err != nil {
			s.logger.Warn("failed to persist favorite",
				slog.String("id", fav.ID),
				slog.Any("error", err),
			)
		}
	}

	s.emit(context.Background(), &notify.Event{Type: notify.EventFavoriteAdded, Revision: rev, Index: -1, Name: name, Value: fav.ID})

	return fav
}

// RemoveFavorite deletes the favorite with id. Unknown ids are a no-op
// returning false.
func (s *Store) RemoveFavorite(id string) bool {
	s.mu.Lock()

	i := slices.IndexFunc(s.favorites, func(f model.Favorite) bool { return f.ID == id })
	if i < 0 {
		s.mu.Unlock()

		return false
	}

	removed := s.favorites[i]
	s.favorites = slices.Delete(s.favorites, i, i+1)
	rev := s.bumpLocked()
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.DeleteFavorite(id); err != nil {
			s.logger.Warn("failed to delete persisted favorite",
				slog.String("id", id),
				slog.Any("error", err),
			)
		}
	}

	s.emit(context.Background(), &notify.Event{Type: notify.EventFavoriteRemoved, Revision: rev, Index: -1, Name: removed.Name, Value: id})

	return true
}

// ChangeColor sets the presentation color of the entity at index. An index
// outside the sequence is a silent no-op returning false.
func (s *Store) ChangeColor(index int, color string) bool {
	s.mu.Lock()

	if index < 0 || index >= len(s.entities) {
		s.mu.Unlock()

		return false
	}

	s.entities[index].Color = color

	name := s.entities[index].Name
	rev := s.bumpLocked()
	s.mu.Unlock()

	s.emit(context.Background(), &notify.Event{Type: notify.EventEntityColor, Revision: rev, Index: index, Name: name, Value: color})

	return true
}

func (s *Store) bumpLocked() uint64 {
	s.revision++

	return s.revision
}

func (s *Store) emit(ctx context.Context, event *notify.Event) {
	event.Timestamp = s.now()
	s.dispatcher.Dispatch(ctx, event)
}
