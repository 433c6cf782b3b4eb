package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"complib/internal/library"
	"complib/internal/store/migrations"
)

// SQLiteStore keeps each key as a row of the kv table.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ library.BatchStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database at path and migrates it to the latest
// schema. path can be a file path or ":memory:".
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite database connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serialises writers and keeps ":memory:" databases
	// from being split across the pool.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}

func (s *SQLiteStore) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Put(key string, value []byte) error {
	if _, err := s.db.Exec(upsertKV, key, value, now()); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// PutMany writes all entries in a single transaction.
func (s *SQLiteStore) PutMany(entries map[string][]byte) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ts := now()
	for k, v := range entries {
		if _, err := tx.Exec(upsertKV, k, v, ts); err != nil {
			return fmt.Errorf("writing %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// ValidateSetup checks that the connection is alive and the schema is current.
func (s *SQLiteStore) ValidateSetup() error {
	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}
	return s.CheckMigrations()
}

// CheckMigrations returns an error if the schema is not at the latest version.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const upsertKV = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
