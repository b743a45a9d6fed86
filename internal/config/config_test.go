package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/inovacc/starcards/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Missing(t *testing.T) {
	t.Setenv(EnvAPIURL, "")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.ini"))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), cfg)
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Setenv(EnvAPIURL, "")

	path := filepath.Join(t.TempDir(), FileName)

	cfg := model.DefaultConfig()
	cfg.APIBaseURL = "http://localhost:3001/api"
	cfg.Category = model.CategoryPlanets
	cfg.Retries = 2
	cfg.RequestTimeout = 5 * time.Second
	cfg.Storage = model.StorageSQLite
	cfg.DedupeFavorites = true
	cfg.WebPort = 9000

	require.NoError(t, SaveFile(path, cfg))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "")

	path := filepath.Join(t.TempDir(), FileName)
	content := "[api]\ncategory = vehicles\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, model.CategoryVehicles, cfg.Category)
	assert.Equal(t, model.DefaultConfig().APIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, model.DefaultConfig().WebPort, cfg.WebPort)
}

func TestLoadFile_InvalidCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("[api]\ncategory = droids\n"), 0600))

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadFile_EnvOverride(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://example.test/api")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.ini"))
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/api", cfg.APIBaseURL)
}

func TestSet(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		check   func(t *testing.T, cfg model.Config)
		wantErr bool
	}{
		{
			key:   "api.base_url",
			value: "https://swapi.tech/api/",
			check: func(t *testing.T, cfg model.Config) {
				assert.Equal(t, "https://swapi.tech/api", cfg.APIBaseURL)
			},
		},
		{key: "api.base_url", value: "ftp://nope", wantErr: true},
		{
			key:   "api.category",
			value: "starships",
			check: func(t *testing.T, cfg model.Config) {
				assert.Equal(t, model.CategoryStarships, cfg.Category)
			},
		},
		{key: "api.retries", value: "-1", wantErr: true},
		{
			key:   "api.timeout",
			value: "10s",
			check: func(t *testing.T, cfg model.Config) {
				assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
			},
		},
		{key: "storage.backend", value: "postgres", wantErr: true},
		{
			key:   "storage.dedupe_favorites",
			value: "true",
			check: func(t *testing.T, cfg model.Config) {
				assert.True(t, cfg.DedupeFavorites)
			},
		},
		{key: "web.port", value: "70000", wantErr: true},
		{key: "log.format", value: "xml", wantErr: true},
		{key: "nope", value: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := model.DefaultConfig()

			err := Set(&cfg, tt.key, tt.value)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestSet_UnknownKey(t *testing.T) {
	cfg := model.DefaultConfig()

	err := Set(&cfg, "api.token", "x")
	assert.True(t, errors.Is(err, ErrUnknownKey))
}

func TestValues_CoversKeys(t *testing.T) {
	values := Values(model.DefaultConfig())

	for _, k := range Keys() {
		_, ok := values[k]
		assert.True(t, ok, "missing key %s", k)
	}
}
