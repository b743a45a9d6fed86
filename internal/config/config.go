// Package config loads and saves the starcards configuration file.
//
// The file is an ini document stored as config.ini in the application
// directory. Values are layered: [model.DefaultConfig], then the file, then
// the STARCARDS_API_URL environment variable. Command-line flags are applied
// on top by the cmd package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/inovacc/starcards/internal/application"
	"github.com/inovacc/starcards/internal/model"
	"gopkg.in/ini.v1"
)

// FileName is the name of the configuration file inside the application directory.
const FileName = "config.ini"

// EnvAPIURL overrides the API base URL.
const EnvAPIURL = "STARCARDS_API_URL"

// ErrUnknownKey is returned by Set for keys that are not part of the file layout.
var ErrUnknownKey = errors.New("unknown configuration key")

type apiSection struct {
	BaseURL  string `ini:"base_url"`
	Category string `ini:"category"`
	Retries  int    `ini:"retries"`
	Timeout  string `ini:"timeout"`
}

type storageSection struct {
	Backend         string `ini:"backend"`
	DedupeFavorites bool   `ini:"dedupe_favorites"`
}

type webSection struct {
	Host string `ini:"host"`
	Port int    `ini:"port"`
}

type logSection struct {
	Format string `ini:"format"`
	Level  string `ini:"level"`
}

type fileConfig struct {
	API     apiSection     `ini:"api"`
	Storage storageSection `ini:"storage"`
	Web     webSection     `ini:"web"`
	Log     logSection     `ini:"log"`
}

// Path returns the location of the configuration file.
func Path() (string, error) {
	dir, err := application.GetApplicationDirectory()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, FileName), nil
}

// Load reads the configuration from the default location.
func Load() (model.Config, error) {
	path, err := Path()
	if err != nil {
		return model.DefaultConfig(), err
	}

	return LoadFile(path)
}

// LoadFile reads the configuration from path. A missing file yields the defaults.
func LoadFile(path string) (model.Config, error) {
	cfg := model.DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		file, err := ini.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		fc := toFile(cfg)
		if err := file.MapTo(&fc); err != nil {
			return cfg, fmt.Errorf("failed to map %s: %w", path, err)
		}

		cfg, err = fromFile(fc)
		if err != nil {
			return model.DefaultConfig(), fmt.Errorf("invalid %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if u := os.Getenv(EnvAPIURL); u != "" {
		cfg.APIBaseURL = u
	}

	return cfg, nil
}

// Save writes cfg to the default location.
func Save(cfg model.Config) error {
	path, err := Path()
	if err != nil {
		return err
	}

	return SaveFile(path, cfg)
}

// SaveFile writes cfg to path.
func SaveFile(path string, cfg model.Config) error {
	file := ini.Empty()

	fc := toFile(cfg)
	if err := ini.ReflectFrom(file, &fc); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return file.SaveTo(path)
}

// Set updates a single "section.key" value on cfg.
func Set(cfg *model.Config, key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case "api.base_url":
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("api.base_url must be an http(s) URL")
		}

		cfg.APIBaseURL = strings.TrimRight(value, "/")
	case "api.category":
		c, err := model.ParseCategory(value)
		if err != nil {
			return err
		}

		cfg.Category = c
	case "api.retries":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("api.retries must be a non-negative integer")
		}

		cfg.Retries = n
	case "api.timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("api.timeout must be a positive duration")
		}

		cfg.RequestTimeout = d
	case "storage.backend":
		if err := validateStorage(value); err != nil {
			return err
		}

		cfg.Storage = value
	case "storage.dedupe_favorites":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("storage.dedupe_favorites must be true or false")
		}

		cfg.DedupeFavorites = b
	case "web.host":
		cfg.WebHost = value
	case "web.port":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 || n > 65535 {
			return fmt.Errorf("web.port must be between 1 and 65535")
		}

		cfg.WebPort = n
	case "log.format":
		if value != model.LogFormatText && value != model.LogFormatJSON {
			return fmt.Errorf("log.format must be text or json")
		}

		cfg.LogFormat = value
	case "log.level":
		cfg.LogLevel = strings.ToLower(value)
	default:
		return fmt.Errorf("%w: %s (valid: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}

	return nil
}

// Keys returns every settable key in sorted order.
func Keys() []string {
	keys := []string{
		"api.base_url", "api.category", "api.retries", "api.timeout",
		"storage.backend", "storage.dedupe_favorites",
		"web.host", "web.port",
		"log.format", "log.level",
	}
	sort.Strings(keys)

	return keys
}

// Values returns the "section.key" view of cfg used by `config show`.
func Values(cfg model.Config) map[string]string {
	return map[string]string{
		"api.base_url":             cfg.APIBaseURL,
		"api.category":             cfg.Category.String(),
		"api.retries":              strconv.Itoa(cfg.Retries),
		"api.timeout":              cfg.RequestTimeout.String(),
		"storage.backend":          cfg.Storage,
		"storage.dedupe_favorites": strconv.FormatBool(cfg.DedupeFavorites),
		"web.host":                 cfg.WebHost,
		"web.port":                 strconv.Itoa(cfg.WebPort),
		"log.format":               cfg.LogFormat,
		"log.level":                cfg.LogLevel,
	}
}

func validateStorage(s string) error {
	switch s {
	case model.StorageBolt, model.StorageSQLite, model.StorageMemory:
		return nil
	}

	return fmt.Errorf("storage.backend must be one of %s, %s, %s", model.StorageBolt, model.StorageSQLite, model.StorageMemory)
}

func toFile(cfg model.Config) fileConfig {
	return fileConfig{
		API: apiSection{
			BaseURL:  cfg.APIBaseURL,
			Category: cfg.Category.String(),
			Retries:  cfg.Retries,
			Timeout:  cfg.RequestTimeout.String(),
		},
		Storage: storageSection{
			Backend:         cfg.Storage,
			DedupeFavorites: cfg.DedupeFavorites,
		},
		Web: webSection{
			Host: cfg.WebHost,
			Port: cfg.WebPort,
		},
		Log: logSection{
			Format: cfg.LogFormat,
			Level:  cfg.LogLevel,
		},
	}
}

func fromFile(fc fileConfig) (model.Config, error) {
	category, err := model.ParseCategory(fc.API.Category)
	if err != nil {
		return model.Config{}, err
	}

	if err := validateStorage(fc.Storage.Backend); err != nil {
		return model.Config{}, err
	}

	timeout, err := time.ParseDuration(fc.API.Timeout)
	if err != nil {
		return model.Config{}, fmt.Errorf("api.timeout: %w", err)
	}

	return model.Config{
		APIBaseURL:      strings.TrimRight(fc.API.BaseURL, "/"),
		Category:        category,
		Retries:         fc.API.Retries,
		RequestTimeout:  timeout,
		Storage:         fc.Storage.Backend,
		DedupeFavorites: fc.Storage.DedupeFavorites,
		WebHost:         fc.Web.Host,
		WebPort:         fc.Web.Port,
		LogFormat:       fc.Log.Format,
		LogLevel:        fc.Log.Level,
	}, nil
}
