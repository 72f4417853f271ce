package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/nextaction/internal/adapters/sqlite"
	"github.com/example/nextaction/internal/core/taskcontext"
	"github.com/example/nextaction/internal/db"
	"github.com/example/nextaction/internal/ports/secondary"
)

func TestContextRepository(t *testing.T) {
	testDB := setupTestDB(t)
	if err := db.SeedDefaults(testDB); err != nil {
		t.Fatalf("SeedDefaults failed: %v", err)
	}
	repo := sqlite.NewContextRepository(testDB)
	ctx := context.Background()

	contexts, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(contexts) != len(taskcontext.Defaults) {
		t.Fatalf("expected %d seeded contexts, got %d", len(taskcontext.Defaults), len(contexts))
	}
	if contexts[0].Name != "@calls" {
		t.Errorf("expected @calls first, got %s", contexts[0].Name)
	}

	id, _ := repo.GetNextID(ctx)
	if id != "CTX-006" {
		t.Errorf("expected CTX-006, got %s", id)
	}
	if err := repo.Create(ctx, &secondary.ContextRecord{ID: id, Name: "@garage"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(ctx, &secondary.ContextRecord{ID: "CTX-007", Name: "@garage"}); err == nil {
		t.Error("expected unique violation for duplicate name")
	}

	byName, err := repo.GetByName(ctx, "@garage")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if byName.ID != id {
		t.Errorf("expected %s, got %s", id, byName.ID)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.GetByID(ctx, id); !errors.Is(err, taskcontext.ErrContextNotFound) {
		t.Errorf("expected ErrContextNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, id); !errors.Is(err, taskcontext.ErrContextNotFound) {
		t.Errorf("expected ErrContextNotFound on second delete, got %v", err)
	}
}

func TestPriorityRepository(t *testing.T) {
	testDB := setupTestDB(t)
	if err := db.SeedDefaults(testDB); err != nil {
		t.Fatalf("SeedDefaults failed: %v", err)
	}
	repo := sqlite.NewPriorityRepository(testDB)
	ctx := context.Background()

	priorities, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"High", "Medium", "Low"}
	if len(priorities) != len(want) {
		t.Fatalf("expected %d priorities, got %d", len(want), len(priorities))
	}
	for i, name := range want {
		if priorities[i].Name != name || priorities[i].Rank != i+1 {
			t.Errorf("priorities[%d] = %s/%d, want %s/%d", i, priorities[i].Name, priorities[i].Rank, name, i+1)
		}
	}

	id, _ := repo.GetNextID(ctx)
	if err := repo.Create(ctx, &secondary.PriorityRecord{ID: id, Name: "Someday", Rank: 4}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	got, err := repo.GetByID(ctx, "PRI-004")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Someday" {
		t.Errorf("expected Someday, got %s", got.Name)
	}

	// Seeding again leaves existing rows alone.
	if err := db.SeedDefaults(testDB); err != nil {
		t.Fatalf("second SeedDefaults failed: %v", err)
	}
	priorities, _ = repo.List(ctx)
	if len(priorities) != 4 {
		t.Errorf("expected 4 priorities after reseed, got %d", len(priorities))
	}
}
