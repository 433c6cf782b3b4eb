package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	for _, table := range []string{"kv", "schema_migrations"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckDBMigrationStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	err := CheckDBMigrationStatus(db)
	if err == nil {
		t.Fatal("CheckDBMigrationStatus() expected error for fresh database, got nil")
	}
	if err.Error() != "database has no schema version (needs migration)" {
		t.Errorf("CheckDBMigrationStatus() error = %q, want error about needing migration", err.Error())
	}
}

func TestCheckDBMigrationStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}
	if err := CheckDBMigrationStatus(db); err != nil {
		t.Errorf("CheckDBMigrationStatus() after migration returned error: %v", err)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}

	st, err := ReadStatus(db)
	if err != nil {
		t.Fatalf("ReadStatus() error = %v", err)
	}
	if !st.UpToDate() {
		t.Errorf("ReadStatus() = %+v, want up to date", st)
	}
}

func TestLatestVersion(t *testing.T) {
	v, err := LatestVersion()
	if err != nil {
		t.Fatalf("LatestVersion() error = %v", err)
	}
	if v != 1 {
		t.Errorf("LatestVersion() = %d, want 1", v)
	}
}

func TestSchema_KeyIsPrimary(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	if _, err := db.Exec("INSERT INTO kv (key, value, updated_at) VALUES ('components', '[]', datetime('now'))"); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO kv (key, value, updated_at) VALUES ('components', '[]', datetime('now'))"); err == nil {
		t.Error("Expected primary key violation for duplicate key, but insert succeeded")
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// One connection, otherwise each pool connection gets its own :memory: database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}
