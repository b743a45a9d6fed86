package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// HeartbeatInterval is how often idle SSE connections receive a heartbeat
const HeartbeatInterval = 30 * time.Second

// Event types sent by the hub itself; store events keep their own type names
const (
	EventConnected = "connected"
	EventHeartbeat = "heartbeat"
)

// SSEEvent represents a server-sent event
type SSEEvent struct {
	Type    string `json:"type"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// SSEHub manages SSE connections and broadcasts
type SSEHub struct {
	clients    map[chan SSEEvent]bool
	broadcast  chan SSEEvent
	register   chan chan SSEEvent
	unregister chan chan SSEEvent
	done       chan struct{}
	logger     *slog.Logger
	mu         sync.RWMutex
}

// NewSSEHub creates a new SSE hub
func NewSSEHub(logger *slog.Logger) *SSEHub {
	if logger == nil {
		logger = slog.Default()
	}

	return &SSEHub{
		clients:    make(map[chan SSEEvent]bool),
		broadcast:  make(chan SSEEvent, 100),
		register:   make(chan chan SSEEvent),
		unregister: make(chan chan SSEEvent),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's event loop. It returns when ctx is cancelled and
// closes every client channel.
func (h *SSEHub) Run(ctx context.Context) {
	defer func() {
		h.mu.Lock()
		for client := range h.clients {
			delete(h.clients, client)
			close(client)
		}
		h.mu.Unlock()

		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Debug("sse client connected", slog.Int("clients", count))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client)
			}
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Debug("sse client disconnected", slog.Int("clients", count))

		case event := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client <- event:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client and returns its event channel. The channel is
// closed when the client is unregistered or the hub stops. It returns nil
// once the hub has stopped.
func (h *SSEHub) Register() chan SSEEvent {
	client := make(chan SSEEvent, 10)

	select {
	case h.register <- client:
		return client
	case <-h.done:
		return nil
	}
}

// Unregister removes a client registered with Register.
func (h *SSEHub) Unregister(client chan SSEEvent) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast sends an event to all connected clients without blocking
func (h *SSEHub) Broadcast(event SSEEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("sse broadcast channel full, dropping event", slog.String("type", event.Type))
	}
}

// ClientCount returns the number of connected clients
func (h *SSEHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// handleSSE handles SSE connections
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)

		return
	}

	client := s.sseHub.Register()
	if client == nil {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)

		return
	}

	defer s.sseHub.Unregister(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	snap := s.store.Snapshot()

	s.sendSSEEvent(w, flusher, SSEEvent{
		Type:    EventConnected,
		Message: "SSE connection established",
		Data: map[string]any{
			"timestamp": time.Now().Format(time.RFC3339),
			"revision":  snap.Revision,
			"state":     snap.State,
		},
	})

	heartbeat := time.NewTicker(HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case event, ok := <-client:
			if !ok {
				return
			}

			s.sendSSEEvent(w, flusher, event)

		case <-heartbeat.C:
			s.sendSSEEvent(w, flusher, SSEEvent{
				Type:    EventHeartbeat,
				Message: "ping",
				Data: map[string]any{
					"timestamp": time.Now().Format(time.RFC3339),
					"clients":   s.sseHub.ClientCount(),
				},
			})
		}
	}
}

// sendSSEEvent writes an SSE event to the response
func (s *Server) sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event SSEEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("failed to marshal sse event", slog.Any("error", err))

		return
	}

	_, _ = fmt.Fprintf(w, "event: %s\n", event.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
