package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/inovacc/starcards/internal/application"
	"github.com/inovacc/starcards/internal/config"
	"github.com/inovacc/starcards/internal/model"
	"github.com/inovacc/starcards/internal/state"
	"github.com/inovacc/starcards/internal/store"
	"github.com/inovacc/starcards/internal/swapi"
)

// app bundles the components a command works with.
type app struct {
	cfg    model.Config
	logger *slog.Logger
	client *swapi.Client
	repo   store.Store
	store  *state.Store
}

// bootstrap resolves the configuration, installs the default logger
// writing to stderr and builds the application store.
func bootstrap() (*app, error) {
	return bootstrapWithLog(os.Stderr)
}

func bootstrapWithLog(w io.Writer) (*app, error) {
	cfg, err := resolveConfig()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, w)
	slog.SetDefault(logger)

	dir, err := application.GetApplicationDirectory()
	if err != nil {
		return nil, err
	}

	return newApp(cfg, dir, logger)
}

func newApp(cfg model.Config, dir string, logger *slog.Logger) (*app, error) {
	client, err := swapi.New(swapi.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.RequestTimeout,
		Retries: cfg.Retries,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	repo, err := store.Open(cfg.Storage, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage, err)
	}

	duplicates := state.DuplicatesAllowed
	if cfg.DedupeFavorites {
		duplicates = state.DuplicatesRejected
	}

	st, err := state.New(client, state.Options{
		Category:   cfg.Category,
		Favorites:  repo,
		Duplicates: duplicates,
		Logger:     logger,
	})
	if err != nil {
		_ = repo.Close()

		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		client: client,
		repo:   repo,
		store:  st,
	}, nil
}

// Close releases the favorites storage.
func (a *app) Close() {
	if err := a.repo.Close(); err != nil {
		a.logger.Warn("failed to close storage", slog.Any("error", err))
	}
}

// resolveConfig layers command-line flags over the configuration file.
func resolveConfig() (model.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}

	if err := applyFlags(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func applyFlags(cfg *model.Config) error {
	if flagAPIURL != "" {
		if err := config.Set(cfg, "api.base_url", flagAPIURL); err != nil {
			return err
		}
	}

	if flagCategory.category != "" {
		cfg.Category = flagCategory.category
	}

	if flagStorage != "" {
		if err := config.Set(cfg, "storage.backend", flagStorage); err != nil {
			return err
		}
	}

	if flagLogJSON {
		cfg.LogFormat = model.LogFormatJSON
	}

	if flagVerbose {
		cfg.LogLevel = "debug"
	}

	return nil
}

func newLogger(cfg model.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	if cfg.LogFormat == model.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
