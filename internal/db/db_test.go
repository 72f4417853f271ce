package db

import (
	"path/filepath"
	"testing"
)

func TestOpen_InitSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "nextaction.db")

	conn, err := Open(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := InitSchema(conn); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}

	var version int
	if err := conn.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("failed to read schema version: %v", err)
	}
	if version != LatestVersion() {
		t.Errorf("version = %d, want %d", version, LatestVersion())
	}

	var contexts, priorities int
	conn.QueryRow("SELECT COUNT(*) FROM contexts").Scan(&contexts)
	conn.QueryRow("SELECT COUNT(*) FROM priorities").Scan(&priorities)
	if contexts != 5 {
		t.Errorf("contexts = %d, want 5", contexts)
	}
	if priorities != 3 {
		t.Errorf("priorities = %d, want 3", priorities)
	}

	// Re-running is a no-op.
	if err := InitSchema(conn); err != nil {
		t.Fatalf("second InitSchema failed: %v", err)
	}
	var applied int
	conn.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&applied)
	if applied != len(migrations) {
		t.Errorf("applied migrations = %d, want %d", applied, len(migrations))
	}
}

func TestOpen_EnforcesForeignKeys(t *testing.T) {
	conn, err := Open(filepath.Join(t.TempDir(), "fk.db"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := InitSchema(conn); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}

	_, err = conn.Exec(`INSERT INTO projects (id, client_id, name, created_at) VALUES ('PROJ-001', 'CLIENT-404', 'Orphan', '2024-01-01T00:00:00Z')`)
	if err == nil {
		t.Fatal("expected foreign key violation for missing client")
	}
}

func TestSchema_SingleDefaultProjectPerClient(t *testing.T) {
	conn, err := Open(":memory:")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if _, err := conn.Exec(GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	conn.Exec(`INSERT INTO clients (id, name, is_default, created_at) VALUES ('CLIENT-001', 'Default Client', 1, '2024-01-01T00:00:00Z')`)
	_, err = conn.Exec(`INSERT INTO projects (id, client_id, name, is_default, created_at) VALUES ('PROJ-001', 'CLIENT-001', 'Miscellaneous', 1, '2024-01-01T00:00:00Z')`)
	if err != nil {
		t.Fatalf("first default project failed: %v", err)
	}
	_, err = conn.Exec(`INSERT INTO projects (id, client_id, name, is_default, created_at) VALUES ('PROJ-002', 'CLIENT-001', 'Miscellaneous', 1, '2024-01-01T00:00:00Z')`)
	if err == nil {
		t.Fatal("expected unique violation for second default project")
	}
}
