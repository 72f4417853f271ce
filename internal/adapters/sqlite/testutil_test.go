// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the single point where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() so tests run against the
// authoritative schema. Do not write CREATE TABLE statements in test files;
// use setupTestDB() and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/nextaction/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every pooled connection to :memory: is a separate database.
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// setupLedgerDB creates the test database with one client, project and
// context, plus the default priorities.
func setupLedgerDB(t *testing.T) *sql.DB {
	t.Helper()
	testDB := setupTestDB(t)
	seedClient(t, testDB, "CLIENT-001", "Acme")
	seedProject(t, testDB, "PROJ-001", "CLIENT-001", "Launch")
	seedContext(t, testDB, "CTX-001", "@calls")
	if err := db.SeedDefaults(testDB); err != nil {
		t.Fatalf("failed to seed defaults: %v", err)
	}
	return testDB
}

// seedClient inserts a test client and returns its ID.
func seedClient(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	_, err := db.Exec("INSERT INTO clients (id, name, created_at) VALUES (?, ?, '2024-01-01T00:00:00Z')", id, name)
	if err != nil {
		t.Fatalf("failed to seed client: %v", err)
	}
	return id
}

// seedProject inserts a test project and returns its ID.
func seedProject(t *testing.T, db *sql.DB, id, clientID, name string) string {
	t.Helper()
	_, err := db.Exec("INSERT INTO projects (id, client_id, name, status, created_at) VALUES (?, ?, ?, 'Active', '2024-01-01T00:00:00Z')", id, clientID, name)
	if err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
	return id
}

// seedContext inserts a test context and returns its ID.
func seedContext(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	_, err := db.Exec("INSERT OR IGNORE INTO contexts (id, name) VALUES (?, ?)", id, name)
	if err != nil {
		t.Fatalf("failed to seed context: %v", err)
	}
	return id
}

func ptrTime(t time.Time) *time.Time { return &t }

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }
