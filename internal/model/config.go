package model

import "time"

// Storage backends for favorites
const (
	StorageBolt   = "bolt"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Log formats
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds the application configuration
type Config struct {
	// APIBaseURL is the base URL of the remote entity API
	APIBaseURL string

	// Category is the collection loaded on start
	Category Category

	// Retries is the number of retries for failed requests (0 disables retrying)
	Retries int

	// RequestTimeout bounds a single HTTP request
	RequestTimeout time.Duration

	// Storage selects the favorites backend (bolt, sqlite, memory)
	Storage string

	// DedupeFavorites rejects a second favorite for the same name and tag
	DedupeFavorites bool

	// WebHost is the interface the web UI binds to
	WebHost string

	// WebPort is the port of the web UI
	WebPort int

	// LogFormat is text or json
	LogFormat string

	// LogLevel is debug, info, warn or error
	LogLevel string
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		APIBaseURL:     "https://swapi.dev/api",
		Category:       CategoryPeople,
		Retries:        0,
		RequestTimeout: 30 * time.Second,
		Storage:        StorageBolt,
		WebHost:        "127.0.0.1",
		WebPort:        8080,
		LogFormat:      LogFormatText,
		LogLevel:       "info",
	}
}
