// Package catalog stores tracks and playlists in SQLite and answers the
// id and record queries the browser and the windowed cache are built on.
// Every mutation is published to subscribers as a ChangeEvent.
package catalog

import (
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver
)

// Record holds the fields of one track, keyed by field name. Absent fields
// are left out.
type Record = map[string]any

// Errors returned by catalog operations.
var (
	ErrNoPlaylist   = errors.New("no such playlist")
	ErrPosition     = errors.New("position out of range")
	ErrUnknownField = errors.New("unknown field")
)

// Catalog is the SQLite-backed track and playlist store.
type Catalog struct {
	db     *sql.DB
	logger *slog.Logger

	// writeMu serializes mutations with their event publication so that
	// subscribers observe events in commit order.
	writeMu sync.Mutex
	seq     uint64 // last published sequence, guarded by writeMu

	subsMu sync.Mutex
	subs   []*Subscription
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the catalog logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = l
	}
}

// Open opens or creates the catalog database at path.
func Open(path string, opts ...Option) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	c, err := New(db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// New wraps an open database, creating the schema if needed.
func New(db *sql.DB, opts ...Option) (*Catalog, error) {
	if err := initSchema(db); err != nil {
		return nil, err
	}
	c := &Catalog{db: db, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// DB returns the underlying database.
func (c *Catalog) DB() *sql.DB {
	return c.db
}

// Close ends every subscription and closes the database.
func (c *Catalog) Close() error {
	c.subsMu.Lock()
	for _, s := range c.subs {
		s.close()
	}
	c.subs = nil
	c.subsMu.Unlock()

	return c.db.Close()
}
