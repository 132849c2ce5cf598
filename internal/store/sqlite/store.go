package sqlite

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// Config configures the SQLite store.
type Config struct {
	DBPath string // path to SQLite database file, e.g. "data/crypto_cache.db"
}

// Store keeps coin metadata and the user's favorites.
// It implements model.CoinStore.
type Store struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// New opens the database in WAL mode and creates the schema.
func New(cfg Config) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single writer; the UI and the bootstrap goroutine share it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened database at %s", cfg.DBPath)
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS coins (
			id           TEXT PRIMARY KEY,
			symbol       TEXT NOT NULL,
			name         TEXT NOT NULL,
			rank         INTEGER,
			source       TEXT,
			last_updated INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		);

		CREATE INDEX IF NOT EXISTS idx_coins_symbol ON coins(symbol);

		CREATE TABLE IF NOT EXISTS favorites (
			id       TEXT PRIMARY KEY,
			added_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		);
	`)
	return err
}

// Ping checks the connection.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
