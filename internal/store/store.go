// Package store provides durable key-value persistence backed by DuckDB.
package store

import (
	"database/sql"
	"errors"
	"log"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store is a string-keyed durable store. When the storage medium is
// unavailable the store degrades to a silent no-op: reads report absent and
// writes are dropped, so callers never fail because persistence is missing.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store database under dataDir. Open never fails;
// a store that could not be initialized logs once and degrades to a no-op.
func Open(dataDir string) *Store {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Printf("store: cannot create data dir %s: %v (persistence disabled)", dataDir, err)
		return &Store{}
	}

	path := filepath.Join(dataDir, "docdash.db")
	db, err := sql.Open("duckdb", path)
	if err != nil {
		log.Printf("store: cannot open %s: %v (persistence disabled)", path, err)
		return &Store{}
	}

	// DuckDB works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (key VARCHAR PRIMARY KEY, value VARCHAR)`); err != nil {
		log.Printf("store: cannot initialize schema: %v (persistence disabled)", err)
		db.Close()
		return &Store{}
	}

	return &Store{db: db}
}

// Read returns the value stored under key, reporting whether it was present.
func (s *Store) Read(key string) (string, bool) {
	if s == nil || s.db == nil {
		return "", false
	}

	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		log.Printf("store: read %q: %v", key, err)
		return "", false
	}
	return value, true
}

// Write stores value under key, replacing any previous value.
func (s *Store) Write(key, value string) {
	if s == nil || s.db == nil {
		return
	}
	if _, err := s.db.Exec(`INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)`, key, value); err != nil {
		log.Printf("store: write %q: %v", key, err)
	}
}

// Remove deletes the value stored under key, if any.
func (s *Store) Remove(key string) {
	if s == nil || s.db == nil {
		return
	}
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		log.Printf("store: remove %q: %v", key, err)
	}
}

// Close releases the database handle.
func (s *Store) Close() {
	if s == nil || s.db == nil {
		return
	}
	s.db.Close()
}
