package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/inovacc/starcards/internal/model"
	"github.com/inovacc/starcards/internal/notify"
	"github.com/inovacc/starcards/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource answers ListEntities from a queue of scripted responses.
type fakeSource struct {
	mu        sync.Mutex
	responses []response
	calls     []model.Category
}

type response struct {
	entities []model.Entity
	err      error
	release  chan struct{} // when set, the call blocks until closed
}

func (f *fakeSource) push(r response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, r)
}

func (f *fakeSource) ListEntities(ctx context.Context, category model.Category) ([]model.Entity, error) {
	f.mu.Lock()
	if len(f.responses) == 0 {
		f.mu.Unlock()
		return nil, errors.New("no scripted response")
	}

	r := f.responses[0]
	f.responses = f.responses[1:]
	f.calls = append(f.calls, category)
	f.mu.Unlock()

	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return r.entities, r.err
}

func people(names ...string) []model.Entity {
	out := make([]model.Entity, len(names))
	for i, n := range names {
		out[i] = model.Entity{
			Name:       n,
			Category:   model.CategoryPeople,
			Attributes: map[string]string{"gender": "n/a"},
		}
	}

	return out
}

func newTestStore(t *testing.T, src Source, opts Options) *Store {
	t.Helper()

	seq := 0
	opts.newID = func() string {
		seq++
		return fmt.Sprintf("fav-%d", seq)
	}
	opts.now = func() time.Time { return time.Date(2024, 5, 4, 0, 0, seq, 0, time.UTC) }

	s, err := New(src, opts)
	require.NoError(t, err)

	return s
}

func loaded(t *testing.T, names ...string) *Store {
	t.Helper()

	src := &fakeSource{}
	src.push(response{entities: people(names...)})

	s := newTestStore(t, src, Options{})
	require.NoError(t, s.Load(context.Background()))

	return s
}

func entityNames(entities []model.Entity) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.Name
	}

	return out
}

func TestNew_RequiresSource(t *testing.T) {
	_, err := New(nil, Options{})
	require.Error(t, err)
}

func TestStore_InitialState(t *testing.T) {
	s := newTestStore(t, &fakeSource{}, Options{})

	snap := s.Snapshot()
	assert.Equal(t, model.LoadStateUninitialized, snap.State)
	assert.Equal(t, model.CategoryPeople, snap.Category)
	assert.Empty(t, snap.Entities)
	assert.Empty(t, snap.Favorites)
	assert.Zero(t, snap.Revision)
}

func TestLoad_PreservesSourceOrder(t *testing.T) {
	s := loaded(t, "Luke Skywalker", "C-3PO", "R2-D2", "Darth Vader")

	snap := s.Snapshot()
	assert.Equal(t, model.LoadStateReady, snap.State)
	assert.Empty(t, snap.Err)
	assert.Equal(t, []string{"Luke Skywalker", "C-3PO", "R2-D2", "Darth Vader"}, entityNames(snap.Entities))
}

func TestLoad_EmptyIsReady(t *testing.T) {
	s := loaded(t)

	state, err := s.Status()
	assert.Equal(t, model.LoadStateReady, state)
	assert.NoError(t, err)
	assert.Empty(t, s.Entities())
}

func TestLoad_ReplacesOnReload(t *testing.T) {
	src := &fakeSource{}
	src.push(response{entities: people("Luke", "Leia")})
	src.push(response{entities: people("Han")})

	s := newTestStore(t, src, Options{})
	require.NoError(t, s.Load(context.Background()))
	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, []string{"Han"}, entityNames(s.Entities()))
	assert.Equal(t, model.LoadStateReady, s.Snapshot().State)
}

func TestLoad_FailureKeepsPriorState(t *testing.T) {
	src := &fakeSource{}
	src.push(response{entities: people("Luke", "Leia")})
	src.push(response{err: errors.New("connection refused")})

	s := newTestStore(t, src, Options{})
	require.NoError(t, s.Load(context.Background()))

	before := s.Entities()

	err := s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	snap := s.Snapshot()
	assert.Equal(t, model.LoadStateFailed, snap.State)
	assert.Contains(t, snap.Err, "connection refused")
	assert.Equal(t, before, snap.Entities)
}

func TestLoad_FailureBeforeFirstSuccess(t *testing.T) {
	src := &fakeSource{}
	src.push(response{err: errors.New("timeout")})
	src.push(response{entities: people("Luke")})

	s := newTestStore(t, src, Options{})

	require.Error(t, s.Load(context.Background()))
	assert.Equal(t, model.LoadStateFailed, s.Snapshot().State)
	assert.Empty(t, s.Entities())

	// failed is not terminal
	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, model.LoadStateReady, s.Snapshot().State)
	assert.Empty(t, s.Snapshot().Err)
}

func TestLoad_UsesCategory(t *testing.T) {
	src := &fakeSource{}
	src.push(response{entities: people("Luke")})
	src.push(response{entities: []model.Entity{{Name: "Tatooine", Category: model.CategoryPlanets}}})

	s := newTestStore(t, src, Options{})
	require.NoError(t, s.Load(context.Background()))

	require.NoError(t, s.LoadCategory(context.Background(), model.CategoryPlanets))
	assert.Equal(t, []string{"Tatooine"}, entityNames(s.Entities()))
	assert.Equal(t, model.CategoryPlanets, s.Category())

	// Load reuses the category of the entities held
	src.push(response{entities: []model.Entity{{Name: "Alderaan", Category: model.CategoryPlanets}}})
	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, []model.Category{model.CategoryPeople, model.CategoryPlanets, model.CategoryPlanets}, src.calls)
}

func TestLoadCategory_FailureKeepsCategory(t *testing.T) {
	src := &fakeSource{}
	src.push(response{entities: people("Luke")})
	src.push(response{err: errors.New("bad gateway")})

	s := newTestStore(t, src, Options{})
	require.NoError(t, s.Load(context.Background()))

	var events []*notify.Event

	unsubscribe := s.Subscribe(func(_ context.Context, e *notify.Event) { events = append(events, e) })
	defer unsubscribe()

	before := s.Snapshot().Revision

	require.Error(t, s.LoadCategory(context.Background(), model.CategoryPlanets))

	snap := s.Snapshot()
	assert.Equal(t, model.LoadStateFailed, snap.State)
	assert.Equal(t, model.CategoryPeople, snap.Category)
	assert.Equal(t, []string{"Luke"}, entityNames(snap.Entities))
	assert.Equal(t, "persona", s.Category().FavoriteTag())

	require.Len(t, events, 2)
	assert.Equal(t, notify.EventLoadStarted, events[0].Type)
	assert.Equal(t, notify.EventLoadFailed, events[1].Type)
	assert.Equal(t, model.CategoryPlanets.String(), events[1].Value)
	assert.Equal(t, before+2, snap.Revision)
}

func TestLoad_OverlappingLastIssuedWins(t *testing.T) {
	src := &fakeSource{}
	slow := make(chan struct{})
	src.push(response{entities: people("old-1", "old-2"), release: slow})
	src.push(response{entities: people("new-1")})

	s := newTestStore(t, src, Options{})

	firstErr := make(chan error, 1)
	go func() { firstErr <- s.Load(context.Background()) }()

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return len(src.calls) == 1
	}, time.Second, time.Millisecond)

	// the second load is issued later but resolves first
	require.NoError(t, s.Load(context.Background()))

	close(slow)
	assert.ErrorIs(t, <-firstErr, ErrStaleLoad)

	snap := s.Snapshot()
	assert.Equal(t, []string{"new-1"}, entityNames(snap.Entities))
	assert.Equal(t, model.LoadStateReady, snap.State)
}

func TestLoad_OverlappingInOrder(t *testing.T) {
	src := &fakeSource{}
	first := make(chan struct{})
	second := make(chan struct{})
	src.push(response{entities: people("a1", "a2"), release: first})
	src.push(response{entities: people("b1"), release: second})

	s := newTestStore(t, src, Options{})

	errs := make(chan error, 2)
	go func() { errs <- s.Load(context.Background()) }()

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return len(src.calls) == 1
	}, time.Second, time.Millisecond)

	go func() { errs <- s.Load(context.Background()) }()

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return len(src.calls) == 2
	}, time.Second, time.Millisecond)

	close(first)
	require.NoError(t, <-errs)

	// between the two responses the store holds the first one, unmerged
	assert.Equal(t, []string{"a1", "a2"}, entityNames(s.Entities()))
	assert.Equal(t, model.LoadStatePending, s.Snapshot().State)

	close(second)
	require.NoError(t, <-errs)

	assert.Equal(t, []string{"b1"}, entityNames(s.Entities()))
	assert.Equal(t, model.LoadStateReady, s.Snapshot().State)
}

func TestLoad_NewerFailureDiscardsOlderSuccess(t *testing.T) {
	src := &fakeSource{}
	slow := make(chan struct{})
	src.push(response{entities: people("Luke")})
	src.push(response{entities: people("old-1", "old-2"), release: slow})
	src.push(response{err: errors.New("service unavailable")})

	s := newTestStore(t, src, Options{})
	require.NoError(t, s.Load(context.Background()))

	firstErr := make(chan error, 1)
	go func() { firstErr <- s.Load(context.Background()) }()

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return len(src.calls) == 2
	}, time.Second, time.Millisecond)

	// the newer load fails before the older one answers
	require.Error(t, s.Load(context.Background()))

	close(slow)
	assert.ErrorIs(t, <-firstErr, ErrStaleLoad)

	snap := s.Snapshot()
	assert.Equal(t, model.LoadStateFailed, snap.State)
	assert.Contains(t, snap.Err, "service unavailable")
	assert.Equal(t, []string{"Luke"}, entityNames(snap.Entities))
}

func TestAddFavorite_DuplicatesAllowed(t *testing.T) {
	s := loaded(t, "Luke")

	a := s.AddFavorite("Luke", "persona")
	b := s.AddFavorite("Luke", "persona")

	favs := s.Favorites()
	require.Len(t, favs, 2)
	assert.NotEqual(t, a.ID, b.ID)

	for _, f := range favs {
		assert.Equal(t, "Luke", f.Name)
		assert.Equal(t, "persona", f.Category)
	}
}

func TestAddFavorite_DuplicatesRejected(t *testing.T) {
	src := &fakeSource{}
	s := newTestStore(t, src, Options{Duplicates: DuplicatesRejected})

	var events int

	unsubscribe := s.Subscribe(func(context.Context, *notify.Event) { events++ })
	defer unsubscribe()

	a := s.AddFavorite("Luke", "persona")
	b := s.AddFavorite("Luke", "persona")
	c := s.AddFavorite("Luke", "planeta")

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
	assert.Len(t, s.Favorites(), 2)
	assert.Equal(t, 2, events)
}

func TestAddFavorite_DoesNotTouchEntities(t *testing.T) {
	s := loaded(t, "Luke", "Leia")

	before := s.Entities()
	s.AddFavorite("Luke", "persona")

	assert.Equal(t, before, s.Entities())
}

func TestAddFavorite_WithoutLoad(t *testing.T) {
	s := newTestStore(t, &fakeSource{}, Options{})

	fav := s.AddFavorite("Obi-Wan Kenobi", "persona")

	assert.Equal(t, "fav-1", fav.ID)
	assert.Len(t, s.Favorites(), 1)
	assert.Equal(t, model.LoadStateUninitialized, s.Snapshot().State)
}

func TestRemoveFavorite(t *testing.T) {
	s := loaded(t, "Luke")

	a := s.AddFavorite("Luke", "persona")
	b := s.AddFavorite("Luke", "persona")

	assert.True(t, s.RemoveFavorite(a.ID))
	assert.False(t, s.RemoveFavorite(a.ID))
	assert.False(t, s.RemoveFavorite("missing"))

	favs := s.Favorites()
	require.Len(t, favs, 1)
	assert.Equal(t, b.ID, favs[0].ID)
}

func TestChangeColor_InRange(t *testing.T) {
	s := loaded(t, "Luke", "Leia", "Han")

	require.True(t, s.ChangeColor(1, "orange"))

	got := s.Entities()
	assert.Equal(t, "", got[0].Color)
	assert.Equal(t, "orange", got[1].Color)
	assert.Equal(t, "", got[2].Color)
	assert.Equal(t, []string{"Luke", "Leia", "Han"}, entityNames(got))
}

func TestChangeColor_OutOfRangeIsNoop(t *testing.T) {
	s := loaded(t, "Luke", "Leia")

	before := s.Snapshot()

	var events int

	unsubscribe := s.Subscribe(func(context.Context, *notify.Event) { events++ })
	defer unsubscribe()

	for _, i := range []int{-1, 2, 100} {
		assert.False(t, s.ChangeColor(i, "orange"), "index %d", i)
	}

	after := s.Snapshot()
	assert.Equal(t, before.Entities, after.Entities)
	assert.Equal(t, before.Revision, after.Revision)
	assert.Zero(t, events)
}

func TestChangeColor_BeforeLoad(t *testing.T) {
	s := newTestStore(t, &fakeSource{}, Options{})

	assert.False(t, s.ChangeColor(0, "orange"))
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := loaded(t, "Luke")
	s.AddFavorite("Luke", "persona")

	snap := s.Snapshot()
	snap.Entities[0].Name = "mutated"
	snap.Entities[0].Attributes["gender"] = "mutated"
	snap.Favorites[0].Name = "mutated"

	fresh := s.Snapshot()
	assert.Equal(t, "Luke", fresh.Entities[0].Name)
	assert.Equal(t, "n/a", fresh.Entities[0].Attributes["gender"])
	assert.Equal(t, "Luke", fresh.Favorites[0].Name)
}

func TestEntity(t *testing.T) {
	s := loaded(t, "Luke", "Leia")

	e, err := s.Entity(1)
	require.NoError(t, err)
	assert.Equal(t, "Leia", e.Name)

	_, err = s.Entity(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = s.Entity(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestSubscribe_EventsInOrder(t *testing.T) {
	src := &fakeSource{}
	src.push(response{entities: people("Luke", "Leia")})
	src.push(response{err: errors.New("boom")})

	s := newTestStore(t, src, Options{})

	var (
		types     []string
		revisions []uint64
	)

	unsubscribe := s.Subscribe(func(_ context.Context, e *notify.Event) {
		types = append(types, e.Type)
		revisions = append(revisions, e.Revision)

		// the change is visible to subscribers when they are notified
		assert.Equal(t, e.Revision, s.Snapshot().Revision)
	})

	require.NoError(t, s.Load(context.Background()))
	fav := s.AddFavorite("Luke", "persona")
	s.ChangeColor(0, "orange")
	s.RemoveFavorite(fav.ID)
	require.Error(t, s.Load(context.Background()))

	unsubscribe()
	s.AddFavorite("Leia", "persona")

	assert.Equal(t, []string{
		notify.EventLoadStarted,
		notify.EventLoadSucceeded,
		notify.EventFavoriteAdded,
		notify.EventEntityColor,
		notify.EventFavoriteRemoved,
		notify.EventLoadStarted,
		notify.EventLoadFailed,
	}, types)
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 7}, revisions)
}

func TestSubscribe_ColorEventCarriesIndex(t *testing.T) {
	s := loaded(t, "Luke", "Leia")

	var got *notify.Event

	unsubscribe := s.Subscribe(func(_ context.Context, e *notify.Event) { got = e })
	defer unsubscribe()

	s.ChangeColor(1, "orange")

	require.NotNil(t, got)
	assert.Equal(t, notify.EventEntityColor, got.Type)
	assert.Equal(t, 1, got.Index)
	assert.Equal(t, "Leia", got.Name)
	assert.Equal(t, "orange", got.Value)
}

func TestFavorites_Persisted(t *testing.T) {
	repo := store.NewMemory()
	require.NoError(t, repo.SaveFavorite(&model.Favorite{ID: "existing", Name: "Yoda", Category: "persona"}))

	s := newTestStore(t, &fakeSource{}, Options{Favorites: repo})
	require.Len(t, s.Favorites(), 1)

	added := s.AddFavorite("Luke", "persona")

	persisted, err := repo.ListFavorites()
	require.NoError(t, err)
	assert.Len(t, persisted, 2)

	require.True(t, s.RemoveFavorite("existing"))

	persisted, err = repo.ListFavorites()
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, added.ID, persisted[0].ID)
}

type failingRepo struct {
	listErr error
}

func (f failingRepo) SaveFavorite(*model.Favorite) error        { return errors.New("disk full") }
func (f failingRepo) ListFavorites() ([]model.Favorite, error) { return nil, f.listErr }
func (f failingRepo) DeleteFavorite(string) error               { return errors.New("disk full") }

func TestFavorites_PersistenceFailureKeepsMemoryState(t *testing.T) {
	s := newTestStore(t, &fakeSource{}, Options{Favorites: failingRepo{}})

	fav := s.AddFavorite("Luke", "persona")
	assert.Len(t, s.Favorites(), 1)

	assert.True(t, s.RemoveFavorite(fav.ID))
	assert.Empty(t, s.Favorites())
}

func TestNew_RestoreFailure(t *testing.T) {
	_, err := New(&fakeSource{}, Options{Favorites: failingRepo{listErr: errors.New("corrupt")}})
	require.Error(t, err)
}
