// Package sqlite provides SQLite storage for starcards favorites.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/inovacc/starcards/internal/model"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrNotFound is returned when a favorite does not exist.
var ErrNotFound = errors.New("favorite not found")

// Store persists favorites in a SQLite database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't handle multiple writers well
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := NewMigrator(db).MigrateUp(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Ping verifies the database connection.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveFavorite inserts or replaces a favorite.
func (s *Store) SaveFavorite(f *model.Favorite) error {
	if f == nil || f.ID == "" {
		return errors.New("favorite id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO favorites (id, name, category, created_at) VALUES (?, ?, ?, ?)`,
		f.ID, f.Name, f.Category, f.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving favorite: %w", err)
	}

	return nil
}

// ListFavorites returns all favorites ordered by creation time.
func (s *Store) ListFavorites() ([]model.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, name, category, created_at FROM favorites ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying favorites: %w", err)
	}
	defer rows.Close()

	var out []model.Favorite

	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.ID, &f.Name, &f.Category, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}

		out = append(out, f)
	}

	return out, rows.Err()
}

// DeleteFavorite removes the favorite with id.
func (s *Store) DeleteFavorite(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM favorites WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting favorite: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}
