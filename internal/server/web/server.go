// Package web serves the browser view of the application store: server
// rendered card pages, a small JSON API over the store actions and a
// server-sent events stream of store notifications.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"time"

	"github.com/inovacc/starcards/internal/model"
	"github.com/inovacc/starcards/internal/notify"
	"github.com/inovacc/starcards/internal/serverinfo"
	"github.com/inovacc/starcards/internal/state"
)

//go:embed templates/*.html
var templatesFS embed.FS

// safeColor matches color names and hex codes accepted in inline styles
var safeColor = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]{1,32})$`)

// Config holds the web server configuration
type Config struct {
	Port        int
	Host        string
	OpenBrowser bool

	// InfoDir is where the server info file is written; empty disables it
	InfoDir string
}

// DefaultConfig returns the default web server configuration
func DefaultConfig() Config {
	return Config{
		Port:        8080,
		Host:        "127.0.0.1",
		OpenBrowser: true,
	}
}

// Server represents the web server
type Server struct {
	httpServer  *http.Server
	store       *state.Store
	config      Config
	logger      *slog.Logger
	templates   map[string]*template.Template
	sseHub      *SSEHub
	unsubscribe func()
	startedAt   time.Time
}

// New creates a new web server over st. Store notifications are forwarded
// to connected SSE clients from the moment the server is created.
func New(st *state.Store, config Config, logger *slog.Logger) (*Server, error) {
	if st == nil {
		return nil, errors.New("application store is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		store:     st,
		config:    config,
		logger:    logger,
		templates: tmpl,
		sseHub:    NewSSEHub(logger),
		startedAt: time.Now(),
	}

	// Broadcast never blocks, so the store is never held up by slow browsers.
	s.unsubscribe = st.Subscribe(func(_ context.Context, e *notify.Event) {
		s.sseHub.Broadcast(SSEEvent{Type: e.Type, Data: e})
	})

	return s, nil
}

// templateFuncMap returns the common template functions
func templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return "Never"
			}

			return t.Format("Jan 02, 2006 15:04")
		},
		"colorStyle": func(color string) template.CSS {
			if !safeColor.MatchString(color) {
				return ""
			}

			return template.CSS("color: " + color)
		},
		"detailPath": func(c model.Category, index int) string {
			return c.DetailPath(index)
		},
	}
}

// parseTemplates parses all embedded HTML templates.
// Each page gets its own template instance to avoid content block conflicts.
func parseTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)
	funcMap := templateFuncMap()

	pageTemplates := []string{
		"index.html",
		"detail.html",
		"favorites.html",
		"notfound.html",
	}

	for _, page := range pageTemplates {
		tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", page, err)
		}

		templates[page] = tmpl
	}

	return templates, nil
}

// Handler returns the HTTP handler with every route and the logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.setupRoutes(mux)

	return s.loggingMiddleware(mux)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// Start serves until ctx is cancelled, then shuts the server down.
func (s *Server) Start(ctx context.Context) error {
	addr := s.Addr()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
		// no WriteTimeout: the SSE stream is long lived
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()

	go s.sseHub.Run(hubCtx)

	if s.config.InfoDir != "" {
		if _, err := serverinfo.Write(s.config.InfoDir, s.config.Host, s.config.Port); err != nil {
			s.logger.Warn("failed to write server info", slog.Any("error", err))
		}

		defer serverinfo.Remove(s.config.InfoDir)
	}

	url := "http://" + addr

	if s.config.OpenBrowser {
		go func() {
			// Small delay to ensure server is ready
			time.Sleep(100 * time.Millisecond)

			if err := openBrowser(url); err != nil {
				s.logger.Warn("failed to open browser", slog.Any("error", err), slog.String("url", url))
			}
		}()
	}

	s.logger.Info("web server starting", slog.String("url", url))

	errCh := make(chan error, 1)

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	return s.Shutdown(context.Background()) //nolint:contextcheck // parent context cancelled, use background for shutdown
}

// Shutdown gracefully shuts down the web server and detaches it from the store.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}

	if s.httpServer == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down web server")

	return s.httpServer.Shutdown(shutdownCtx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// openBrowser opens the default browser to the given URL
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// render renders a page template with the given data
func (s *Server) render(w http.ResponseWriter, status int, templateName string, data any) {
	tmpl, ok := s.templates[templateName]
	if !ok {
		s.logger.Error("template not found", slog.String("template", templateName))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("template error", slog.String("template", templateName), slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
