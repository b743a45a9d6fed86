package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/inovacc/starcards/internal/model"
	"github.com/inovacc/starcards/internal/state"
)

// DefaultColor is applied when a color request names no color
const DefaultColor = "orange"

// PageData holds common data for page templates
type PageData struct {
	Title      string
	ActivePage string
	Snapshot   model.Snapshot
	Cards      []Card
	Detail     *Card
	Categories []model.Category
	Error      string
}

// Card is one entity as shown in the card list and detail pages
type Card struct {
	Index      int
	Entity     model.Entity
	Summary    []model.Attribute
	Attributes []model.Attribute
	Favorite   bool
	DetailPath string
	Tag        string
}

// APIResponse is a generic API response
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type colorRequest struct {
	Color string `json:"color"`
}

type favoriteRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type loadRequest struct {
	Category string `json:"category"`
}

func newCard(snap model.Snapshot, index int, e model.Entity) Card {
	return Card{
		Index:      index,
		Entity:     e,
		Summary:    e.Summary(),
		Attributes: e.SortedAttributes(),
		Favorite:   snap.IsFavorite(e.Name),
		DetailPath: e.Category.DetailPath(index),
		Tag:        e.Category.FavoriteTag(),
	}
}

func (s *Server) pageData(title, active string) PageData {
	snap := s.store.Snapshot()

	cards := make([]Card, len(snap.Entities))
	for i, e := range snap.Entities {
		cards[i] = newCard(snap, i, e)
	}

	return PageData{
		Title:      title,
		ActivePage: active,
		Snapshot:   snap,
		Cards:      cards,
		Categories: model.Categories,
	}
}

// handleIndex renders the card list
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "index.html", s.pageData("Star Wars", "index"))
}

// handleFavoritesPage renders the favorites list
func (s *Server) handleFavoritesPage(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "favorites.html", s.pageData("Favorites", "favorites"))
}

// handleDetailPage renders the entity at the index of the current sequence.
// The index is a position, so it only resolves against the loaded category.
func (s *Server) handleDetailPage(category model.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData("Details", "detail")

		index, err := strconv.Atoi(r.PathValue("index"))
		if err != nil || index < 0 || index >= len(data.Snapshot.Entities) ||
			data.Snapshot.Entities[index].Category != category {
			data.Title = "Not found"
			data.Error = "No " + string(category) + " entry at index " + r.PathValue("index")
			s.render(w, http.StatusNotFound, "notfound.html", data)

			return
		}

		card := data.Cards[index]
		data.Title = card.Entity.Name
		data.Detail = &card

		s.render(w, http.StatusOK, "detail.html", data)
	}
}

// handleNotFound renders the not found page for unknown paths
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		s.jsonError(w, "not found", http.StatusNotFound)

		return
	}

	data := s.pageData("Not found", "")
	data.Error = "Nothing lives at " + r.URL.Path

	s.render(w, http.StatusNotFound, "notfound.html", data)
}

// handleListEntities returns the current snapshot
func (s *Server) handleListEntities(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, APIResponse{Success: true, Data: s.store.Snapshot()})
}

// handleGetEntity returns a single entity by index
func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.jsonError(w, "index must be an integer", http.StatusBadRequest)

		return
	}

	e, err := s.store.Entity(index)
	if err != nil {
		s.jsonError(w, err.Error(), http.StatusNotFound)

		return
	}

	s.jsonResponse(w, http.StatusOK, APIResponse{Success: true, Data: e})
}

// handleChangeColor sets the presentation color of an entity
func (s *Server) handleChangeColor(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.jsonError(w, "index must be an integer", http.StatusBadRequest)

		return
	}

	var req colorRequest
	if err := decodeBody(r, &req); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)

		return
	}

	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = DefaultColor
	}

	if !s.store.ChangeColor(index, color) {
		s.jsonError(w, "no entity at index "+strconv.Itoa(index), http.StatusNotFound)

		return
	}

	s.jsonResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "color changed",
		Data:    map[string]any{"index": index, "color": color},
	})
}

// handleLoad reloads the entity list, optionally for another category
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := decodeBody(r, &req); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)

		return
	}

	category := s.store.Category()

	if req.Category != "" {
		c, err := model.ParseCategory(req.Category)
		if err != nil {
			s.jsonError(w, err.Error(), http.StatusBadRequest)

			return
		}

		category = c
	}

	// A browser navigating away must not turn an in-flight load into a failure.
	ctx := context.WithoutCancel(r.Context())

	err := s.store.LoadCategory(ctx, category)

	switch {
	case errors.Is(err, state.ErrStaleLoad):
		s.jsonError(w, err.Error(), http.StatusConflict)
	case err != nil:
		s.jsonError(w, err.Error(), http.StatusBadGateway)
	default:
		snap := s.store.Snapshot()
		s.jsonResponse(w, http.StatusOK, APIResponse{
			Success: true,
			Message: "loaded " + strconv.Itoa(len(snap.Entities)) + " " + string(snap.Category),
			Data:    snap,
		})
	}
}

// handleListFavorites returns all favorites
func (s *Server) handleListFavorites(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, APIResponse{Success: true, Data: s.store.Favorites()})
}

// handleAddFavorite adds a favorite; the tag defaults to the current category's
func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := decodeBody(r, &req); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)

		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		s.jsonError(w, "name is required", http.StatusBadRequest)

		return
	}

	tag := strings.TrimSpace(req.Category)
	if tag == "" {
		tag = s.store.Category().FavoriteTag()
	}

	fav := s.store.AddFavorite(name, tag)

	s.jsonResponse(w, http.StatusCreated, APIResponse{Success: true, Message: "favorite added", Data: fav})
}

// handleRemoveFavorite deletes a favorite by id
func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if !s.store.RemoveFavorite(id) {
		s.jsonError(w, "favorite not found", http.StatusNotFound)

		return
	}

	s.jsonResponse(w, http.StatusOK, APIResponse{Success: true, Message: "favorite removed"})
}

// handleStatus returns the store lifecycle and server details
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	snap := s.store.Snapshot()

	s.jsonResponse(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"state":       snap.State,
			"error":       snap.Err,
			"category":    snap.Category,
			"revision":    snap.Revision,
			"entities":    len(snap.Entities),
			"favorites":   len(snap.Favorites),
			"sse_clients": s.sseHub.ClientCount(),
			"pid":         os.Getpid(),
			"uptime":      time.Since(s.startedAt).Round(time.Second).String(),
		},
	})
}

// handleHealth returns health check status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// decodeBody decodes an optional JSON body; an empty body leaves v unchanged
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}

	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}

	return err
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("json encode error", slog.Any("error", err))
	}
}

// jsonError writes a JSON error response
func (s *Server) jsonError(w http.ResponseWriter, message string, status int) {
	s.jsonResponse(w, status, APIResponse{
		Success: false,
		Error:   message,
	})
}
