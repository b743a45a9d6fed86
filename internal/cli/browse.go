package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/starcards/internal/model"
	"github.com/inovacc/starcards/internal/notify"
	"github.com/inovacc/starcards/internal/state"
)

// HighlightColor is the color applied by the change color key.
const HighlightColor = "orange"

type pane int

const (
	paneEntities pane = iota
	paneDetail
	paneFavorites
)

type entityItem struct {
	index    int
	entity   model.Entity
	favorite bool
}

func (i entityItem) Title() string {
	star := ""
	if i.favorite {
		star = favoriteStyle.Render("★ ")
	}

	return star + colorStyle(i.entity.Color).Render(i.entity.Name)
}

func (i entityItem) Description() string {
	parts := make([]string, 0, 3)
	for _, a := range i.entity.Summary() {
		parts = append(parts, fmt.Sprintf("%s: %s", a.Label, a.Value))
	}

	return strings.Join(parts, " · ")
}

func (i entityItem) FilterValue() string {
	return i.entity.Name
}

type favoriteItem struct {
	favorite model.Favorite
}

func (i favoriteItem) Title() string {
	return i.favorite.Name
}

func (i favoriteItem) Description() string {
	desc := i.favorite.Category
	if !i.favorite.CreatedAt.IsZero() {
		desc = fmt.Sprintf("%s | Added: %s", desc, i.favorite.CreatedAt.Format("2006-01-02 15:04"))
	}

	return desc
}

func (i favoriteItem) FilterValue() string {
	return i.favorite.Name
}

// Message types
type storeChangedMsg struct{}

type loadDoneMsg struct {
	err error
}

// BrowseModel is the interactive entity browser.
type BrowseModel struct {
	ctx   context.Context
	store *state.Store

	snapshot  model.Snapshot
	entities  list.Model
	favorites list.Model
	spinner   spinner.Model
	spinning  bool

	pane   pane
	detail int
	status string

	changed     chan struct{}
	done        chan struct{}
	unsubscribe func()
	quitting    bool
}

// NewBrowseModel creates a browser over st. The model subscribes to the
// store immediately; call Close when the program exits.
func NewBrowseModel(ctx context.Context, st *state.Store) *BrowseModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	entities := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	entities.SetShowStatusBar(true)
	entities.SetFilteringEnabled(true)
	entities.Styles.Title = titleStyle
	entities.Styles.PaginationStyle = paginationStyle
	entities.Styles.HelpStyle = helpStyle

	favorites := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	favorites.Title = "Favorites"
	favorites.SetFilteringEnabled(false)
	favorites.Styles.Title = titleStyle

	m := &BrowseModel{
		ctx:       ctx,
		store:     st,
		entities:  entities,
		favorites: favorites,
		spinner:   s,
		changed:   make(chan struct{}, 1),
		done:      make(chan struct{}),
	}

	// A pending signal already causes a full snapshot re-read, so a full
	// channel means nothing is lost.
	m.unsubscribe = st.Subscribe(func(context.Context, *notify.Event) {
		select {
		case m.changed <- struct{}{}:
		default:
		}
	})

	m.refresh()

	return m
}

// Close unsubscribes from the store and stops the change watcher.
func (m *BrowseModel) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
		close(m.done)
	}
}

func (m *BrowseModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForChange()}

	if m.snapshot.State == model.LoadStateUninitialized {
		cmds = append(cmds, m.load())
	}

	if cmd := m.startSpinner(); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return tea.Batch(cmds...)
}

func (m *BrowseModel) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changed:
			return storeChangedMsg{}
		case <-m.done:
			return nil
		}
	}
}

func (m *BrowseModel) load() tea.Cmd {
	m.spinning = true

	return tea.Batch(
		func() tea.Msg {
			return loadDoneMsg{err: m.store.Load(m.ctx)}
		},
		m.spinner.Tick,
	)
}

func (m *BrowseModel) startSpinner() tea.Cmd {
	if m.spinning || m.snapshot.State != model.LoadStatePending {
		return nil
	}

	m.spinning = true

	return m.spinner.Tick
}

func (m *BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.entities.SetSize(msg.Width-h, msg.Height-v-2)
		m.favorites.SetSize(msg.Width-h, msg.Height-v-2)

		return m, nil

	case storeChangedMsg:
		return m, tea.Batch(m.refresh(), m.waitForChange(), m.startSpinner())

	case loadDoneMsg:
		switch {
		case msg.err == nil:
			m.status = successStyle.Render(fmt.Sprintf("✓ Loaded %d %s", len(m.snapshot.Entities), m.snapshot.Category))
		case errors.Is(msg.err, state.ErrStaleLoad):
			// a newer load already settled the store
		default:
			m.status = ""
		}

		return m, nil

	case spinner.TickMsg:
		if m.snapshot.State != model.LoadStatePending {
			m.spinning = false

			return m, nil
		}

		var cmd tea.Cmd

		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}

		switch m.pane {
		case paneDetail:
			return m.updateDetail(msg)
		case paneFavorites:
			return m.updateFavorites(msg)
		default:
			return m.updateEntities(msg)
		}
	}

	return m.forward(msg)
}

func (m *BrowseModel) updateEntities(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.entities.FilterState() == list.Filtering {
		return m.forward(msg)
	}

	switch msg.String() {
	case "q":
		return m.quit()

	case "enter":
		if i, ok := m.selectedEntity(); ok {
			m.detail = i.index
			m.pane = paneDetail
		}

		return m, nil

	case "f":
		if i, ok := m.selectedEntity(); ok {
			m.addFavorite(i.entity)
		}

		return m, nil

	case "c":
		if i, ok := m.selectedEntity(); ok {
			m.store.ChangeColor(i.index, HighlightColor)
		}

		return m, nil

	case "F":
		m.pane = paneFavorites

		return m, nil

	case "r":
		m.status = ""

		return m, m.load()
	}

	return m.forward(msg)
}

func (m *BrowseModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()

	case "esc", "backspace", "enter":
		m.pane = paneEntities

	case "f":
		if e, err := m.store.Entity(m.detail); err == nil {
			m.addFavorite(e)
		}

	case "c":
		m.store.ChangeColor(m.detail, HighlightColor)
	}

	return m, nil
}

func (m *BrowseModel) updateFavorites(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()

	case "esc", "F":
		m.pane = paneEntities

		return m, nil

	case "d", "delete":
		if i, ok := m.favorites.SelectedItem().(favoriteItem); ok {
			if m.store.RemoveFavorite(i.favorite.ID) {
				m.status = warningStyle.Render("Removed " + i.favorite.Name + " from favorites")
			}
		}

		return m, nil
	}

	var cmd tea.Cmd

	m.favorites, cmd = m.favorites.Update(msg)

	return m, cmd
}

func (m *BrowseModel) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	m.entities, cmd = m.entities.Update(msg)

	return m, cmd
}

func (m *BrowseModel) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.Close()

	return m, tea.Quit
}

func (m *BrowseModel) addFavorite(e model.Entity) {
	fav := m.store.AddFavorite(e.Name, e.Category.FavoriteTag())
	m.status = favoriteStyle.Render(fmt.Sprintf("★ %s added to favorites (%s)", fav.Name, fav.Category))
}

// selectedEntity returns the highlighted entity while it still sits at its
// index in the snapshot. A filtered list holds the previous items until its
// FilterMatchesMsg arrives.
func (m *BrowseModel) selectedEntity() (entityItem, bool) {
	i, ok := m.entities.SelectedItem().(entityItem)
	if !ok || i.index >= len(m.snapshot.Entities) || m.snapshot.Entities[i.index].Name != i.entity.Name {
		return entityItem{}, false
	}

	return i, true
}

// refresh re-reads the store snapshot into the list models. The returned
// command refilters the lists when a filter is applied.
func (m *BrowseModel) refresh() tea.Cmd {
	m.snapshot = m.store.Snapshot()
	m.entities.Title = fmt.Sprintf("Star Wars %s", m.snapshot.Category)

	items := make([]list.Item, len(m.snapshot.Entities))
	for i, e := range m.snapshot.Entities {
		items[i] = entityItem{index: i, entity: e, favorite: m.snapshot.IsFavorite(e.Name)}
	}

	entitiesCmd := m.entities.SetItems(items)

	favs := make([]list.Item, len(m.snapshot.Favorites))
	for i, f := range m.snapshot.Favorites {
		favs[i] = favoriteItem{favorite: f}
	}

	favoritesCmd := m.favorites.SetItems(favs)

	if m.detail >= len(m.snapshot.Entities) && m.pane == paneDetail {
		m.pane = paneEntities
	}

	return tea.Batch(entitiesCmd, favoritesCmd)
}

func (m *BrowseModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	switch m.pane {
	case paneDetail:
		b.WriteString(m.detailView())
	case paneFavorites:
		b.WriteString(docStyle.Render(m.favorites.View()))
		b.WriteString("\n" + dimStyle.Render("  d: remove • esc: back • q: quit"))
	default:
		b.WriteString(m.entitiesView())
	}

	if m.status != "" {
		b.WriteString("\n  " + m.status)
	}

	b.WriteString("\n")

	return b.String()
}

func (m *BrowseModel) entitiesView() string {
	var b strings.Builder

	switch m.snapshot.State {
	case model.LoadStateUninitialized, model.LoadStatePending:
		if len(m.snapshot.Entities) == 0 {
			return fmt.Sprintf("\n  %s Loading %s...\n", m.spinner.View(), m.snapshot.Category)
		}

		b.WriteString(fmt.Sprintf("\n  %s Reloading %s...", m.spinner.View(), m.snapshot.Category))

	case model.LoadStateFailed:
		b.WriteString("\n  " + errorStyle.Render("✗ Failed to load: "+m.snapshot.Err))
		b.WriteString("\n  " + dimStyle.Render("press r to retry"))
	}

	if m.snapshot.State == model.LoadStateReady && len(m.snapshot.Entities) == 0 {
		b.WriteString("\n  " + dimStyle.Render(fmt.Sprintf("No %s found.", m.snapshot.Category)))

		return b.String()
	}

	b.WriteString(docStyle.Render(m.entities.View()))
	b.WriteString("\n" + dimStyle.Render("  enter: details • f: favorite • c: color • F: favorites • r: reload • q: quit"))

	return b.String()
}

func (m *BrowseModel) detailView() string {
	e, err := m.store.Entity(m.detail)
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  ✗ %v\n", err))
	}

	var b strings.Builder

	b.WriteString("\n  " + colorStyle(e.Color).Render(e.Name))

	if m.snapshot.IsFavorite(e.Name) {
		b.WriteString(" " + favoriteStyle.Render("★"))
	}

	b.WriteString("\n  " + dimStyle.Render(string(e.Category)+" #"+fmt.Sprint(m.detail)) + "\n\n")

	for _, a := range e.SortedAttributes() {
		b.WriteString("  " + labelStyle.Render(a.Label) + " " + a.Value + "\n")
	}

	if e.URL != "" {
		b.WriteString("\n  " + dimStyle.Render(e.URL) + "\n")
	}

	b.WriteString("\n" + dimStyle.Render("  f: favorite • c: color • esc: back • q: quit"))

	return b.String()
}
