package web

import (
	"net/http"

	"github.com/inovacc/starcards/internal/model"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Pages
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /favorites", s.handleFavoritesPage)

	// Detail pages follow /<category>_detailed/<index>; wildcards cannot
	// share a segment with a literal, so each category gets its own pattern.
	for _, c := range model.Categories {
		mux.HandleFunc("GET /"+string(c)+"_detailed/{index}", s.handleDetailPage(c))
	}

	// Store API
	mux.HandleFunc("GET /api/entities", s.handleListEntities)
	mux.HandleFunc("GET /api/entities/{index}", s.handleGetEntity)
	mux.HandleFunc("POST /api/entities/{index}/color", s.handleChangeColor)
	mux.HandleFunc("POST /api/load", s.handleLoad)
	mux.HandleFunc("GET /api/favorites", s.handleListFavorites)
	mux.HandleFunc("POST /api/favorites", s.handleAddFavorite)
	mux.HandleFunc("DELETE /api/favorites/{id}", s.handleRemoveFavorite)

	// System
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /health", s.handleHealth)

	// SSE (Server-Sent Events)
	mux.HandleFunc("GET /events", s.handleSSE)

	mux.HandleFunc("/", s.handleNotFound)
}
