// Package migrations manages the schema of the SQLite store.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var migrationFiles embed.FS

// Status describes where a database stands relative to the embedded migrations.
type Status struct {
	Current uint // 0 when no migration has been applied
	Latest  uint
	Dirty   bool
}

// UpToDate reports whether the schema matches the binary.
func (s Status) UpToDate() bool {
	return !s.Dirty && s.Current == s.Latest
}

// ReadStatus returns the current and latest schema versions of db.
func ReadStatus(db *sql.DB) (Status, error) {
	latest, err := LatestVersion()
	if err != nil {
		return Status{}, err
	}

	// m is not closed: that would close db, which belongs to the caller.
	m, err := newMigrate(db)
	if err != nil {
		return Status{}, err
	}

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return Status{Latest: latest}, nil
		}
		return Status{}, fmt.Errorf("failed to get database version: %w", err)
	}
	return Status{Current: version, Latest: latest, Dirty: dirty}, nil
}

// CheckDBMigrationStatus returns nil if db is at the latest schema version and
// an error describing the mismatch otherwise.
func CheckDBMigrationStatus(db *sql.DB) error {
	st, err := ReadStatus(db)
	if err != nil {
		return err
	}
	switch {
	case st.Dirty:
		return fmt.Errorf("database is in dirty state at version %d (migration failed previously)", st.Current)
	case st.Current == 0:
		return fmt.Errorf("database has no schema version (needs migration)")
	case st.Current < st.Latest:
		return fmt.Errorf("database is at version %d but latest is %d (%d migrations behind)",
			st.Current, st.Latest, st.Latest-st.Current)
	case st.Current > st.Latest:
		return fmt.Errorf("database version %d is ahead of binary version %d (binary needs update)",
			st.Current, st.Latest)
	}
	return nil
}

// MigrateUp applies all pending migrations. A database that is already
// current is left alone.
func MigrateUp(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// LatestVersion returns the highest migration version embedded in the binary.
func LatestVersion() (uint, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return 0, fmt.Errorf("failed to read migration files: %w", err)
	}
	defer src.Close()
	return lastVersion(src)
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

func lastVersion(src source.Driver) (uint, error) {
	v, err := src.First()
	if err != nil {
		return 0, err
	}
	for {
		next, err := src.Next(v)
		if err != nil {
			// Next fails once there are no more migrations.
			return v, nil
		}
		v = next
	}
}
