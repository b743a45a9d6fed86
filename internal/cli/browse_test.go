package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/starcards/internal/model"
	"github.com/inovacc/starcards/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	mu       sync.Mutex
	entities []model.Entity
	err      error
}

func (s *stubSource) ListEntities(context.Context, model.Category) ([]model.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.entities, s.err
}

func testEntities() []model.Entity {
	return []model.Entity{
		{Name: "Luke Skywalker", Category: model.CategoryPeople, Attributes: map[string]string{"gender": "male", "eye_color": "blue", "hair_color": "blond"}},
		{Name: "Leia Organa", Category: model.CategoryPeople, Attributes: map[string]string{"gender": "female", "eye_color": "brown", "hair_color": "brown"}},
		{Name: "R2-D2", Category: model.CategoryPeople, Attributes: map[string]string{"gender": "n/a"}},
	}
}

func newBrowse(t *testing.T, src *stubSource) (*BrowseModel, *state.Store) {
	t.Helper()

	st, err := state.New(src, state.Options{})
	require.NoError(t, err)

	m := NewBrowseModel(context.Background(), st)
	t.Cleanup(m.Close)

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	return m, st
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}

	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loadAndRefresh loads synchronously and delivers the change like the runtime would.
func loadAndRefresh(t *testing.T, m *BrowseModel, st *state.Store) {
	t.Helper()

	require.NoError(t, st.Load(context.Background()))
	m.Update(storeChangedMsg{})
}

func TestBrowse_LoadingView(t *testing.T) {
	m, _ := newBrowse(t, &stubSource{})

	assert.Contains(t, m.View(), "Loading people")
}

func TestBrowse_ShowsEntitiesAfterLoad(t *testing.T) {
	m, st := newBrowse(t, &stubSource{entities: testEntities()})
	loadAndRefresh(t, m, st)

	view := m.View()
	assert.Contains(t, view, "Luke Skywalker")
	assert.Contains(t, view, "Leia Organa")
	assert.Contains(t, view, "Gender: male")
	assert.Len(t, m.entities.Items(), 3)
}

func TestBrowse_StoreNotificationSignalsChange(t *testing.T) {
	m, st := newBrowse(t, &stubSource{entities: testEntities()})

	require.NoError(t, st.Load(context.Background()))

	msg := m.waitForChange()()
	assert.IsType(t, storeChangedMsg{}, msg)
}

func TestBrowse_FavoriteKey(t *testing.T) {
	m, st := newBrowse(t, &stubSource{entities: testEntities()})
	loadAndRefresh(t, m, st)

	m.Update(key("f"))

	favs := st.Favorites()
	require.Len(t, favs, 1)
	assert.Equal(t, "Luke Skywalker", favs[0].Name)
	assert.Equal(t, "persona", favs[0].Category)
	assert.Contains(t, m.View(), "added to favorites")

	// favoriting leaves the entities alone
	assert.Equal(t, testEntities(), st.Entities())
}

func TestBrowse_ColorKey(t *testing.T) {
	m, st := newBrowse(t, &stubSource{entities: testEntities()})
	loadAndRefresh(t, m, st)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(key("c"))

	got := st.Entities()
	assert.Equal(t, "", got[0].Color)
	assert.Equal(t, HighlightColor, got[1].Color)
	assert.Equal(t, "", got[2].Color)
}

// deliver runs cmd and feeds its messages back into the model.
func deliver(m *BrowseModel, cmd tea.Cmd) {
	if cmd == nil {
		return
	}

	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			deliver(m, c)
		}
	case nil:
	default:
		m.Update(msg)
	}
}

func TestBrowse_ColorKeyFilteredAfterReorder(t *testing.T) {
	src := &stubSource{entities: testEntities()}
	m, st := newBrowse(t, src)
	loadAndRefresh(t, m, st)

	m.entities.SetFilterText("Leia")
	require.Len(t, m.entities.VisibleItems(), 1)

	src.mu.Lock()
	src.entities = []model.Entity{testEntities()[1], testEntities()[0], testEntities()[2]}
	src.mu.Unlock()

	require.NoError(t, st.Load(context.Background()))

	cmd := m.refresh()
	require.NotNil(t, cmd)

	// the filtered items still point at the old positions
	m.Update(key("c"))
	for _, e := range st.Entities() {
		assert.Empty(t, e.Color, e.Name)
	}

	deliver(m, cmd)

	m.Update(key("c"))

	got := st.Entities()
	assert.Equal(t, "Leia Organa", got[0].Name)
	assert.Equal(t, HighlightColor, got[0].Color)
	assert.Empty(t, got[1].Color)
	assert.Empty(t, got[2].Color)
}

func TestBrowse_DetailPane(t *testing.T) {
	m, st := newBrowse(t, &stubSource{entities: testEntities()})
	loadAndRefresh(t, m, st)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(key("enter"))

	require.Equal(t, paneDetail, m.pane)
	assert.Equal(t, 1, m.detail)

	view := m.View()
	assert.Contains(t, view, "Leia Organa")
	assert.Contains(t, view, "Eye color")

	m.Update(key("c"))
	assert.Equal(t, HighlightColor, st.Entities()[1].Color)

	m.Update(key("esc"))
	assert.Equal(t, paneEntities, m.pane)
}

func TestBrowse_FavoritesPaneRemove(t *testing.T) {
	m, st := newBrowse(t, &stubSource{entities: testEntities()})
	loadAndRefresh(t, m, st)

	st.AddFavorite("Yoda", "persona")
	m.Update(storeChangedMsg{})

	m.Update(key("F"))
	require.Equal(t, paneFavorites, m.pane)
	assert.Contains(t, m.View(), "Yoda")

	m.Update(key("d"))
	assert.Empty(t, st.Favorites())
}

func TestBrowse_FailedLoad(t *testing.T) {
	src := &stubSource{err: errors.New("connection refused")}
	m, st := newBrowse(t, src)

	require.Error(t, st.Load(context.Background()))
	m.Update(storeChangedMsg{})

	view := m.View()
	assert.Contains(t, view, "Failed to load")
	assert.Contains(t, view, "connection refused")
}

func TestBrowse_Quit(t *testing.T) {
	m, _ := newBrowse(t, &stubSource{})

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestPrintEntities_Plain(t *testing.T) {
	snap := model.Snapshot{Category: model.CategoryPeople, Entities: testEntities()}

	var buf bytes.Buffer
	require.NoError(t, PrintEntities(&buf, snap, false))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "INDEX"))
	assert.Contains(t, lines[1], "Luke Skywalker")
	assert.Contains(t, lines[3], "R2-D2")
	assert.Contains(t, lines[3], "n/a")
}

func TestPrintEntities_Styled(t *testing.T) {
	snap := model.Snapshot{Category: model.CategoryPeople, Entities: testEntities()}

	var buf bytes.Buffer
	require.NoError(t, PrintEntities(&buf, snap, true))

	out := buf.String()
	assert.Contains(t, out, "Luke Skywalker")
	assert.Contains(t, out, "/people_detailed/2")
}

func TestPrintFavorites(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintFavorites(&buf, []model.Favorite{{ID: "abc", Name: "Luke", Category: "persona"}}))

	assert.Contains(t, buf.String(), "abc")
	assert.Contains(t, buf.String(), "persona")
}
