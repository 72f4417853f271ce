package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	coretask "github.com/example/nextaction/internal/core/task"
	"github.com/example/nextaction/internal/ports/secondary"
)

func TestSweepOverdue(t *testing.T) {
	tasks := newMockTaskRepository()
	past := summerNow.Add(-time.Hour)
	future := summerNow.Add(time.Hour)
	tasks.seed(&secondary.TaskRecord{ID: "TASK-001", Name: "Late", Status: string(coretask.StatusNextAction), DueDate: &past})
	tasks.seed(&secondary.TaskRecord{ID: "TASK-002", Name: "Later", Status: string(coretask.StatusNextAction), DueDate: &future})
	tasks.seed(&secondary.TaskRecord{ID: "TASK-003", Name: "Done", Status: string(coretask.StatusCompleted), DueDate: &past})
	tasks.seed(&secondary.TaskRecord{ID: "TASK-004", Name: "Gone", Status: string(coretask.StatusWaitingFor), DueDate: &past, Archived: true})
	tasks.seed(&secondary.TaskRecord{ID: "TASK-005", Name: "Due now", Status: string(coretask.StatusNextAction), DueDate: ptrTime(summerNow)})

	service := NewSweepService(tasks, &fixedClock{now: summerNow}, nil)

	report, err := service.SweepOverdue(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.Job != JobOverdue {
		t.Errorf("expected job %q, got %q", JobOverdue, report.Job)
	}
	if report.RunID == "" {
		t.Error("expected a run ID")
	}
	if len(report.Overdue) != 1 || report.Overdue[0].ID != "TASK-001" {
		t.Errorf("expected only TASK-001 overdue, got %+v", report.Overdue)
	}

	again, err := service.SweepOverdue(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if again.RunID == report.RunID {
		t.Error("expected a fresh run ID per run")
	}
}

func TestSweepOverdue_ReleasesGuardOnFailure(t *testing.T) {
	tasks := newMockTaskRepository()
	tasks.listErr = errors.New("database is locked")
	service := NewSweepService(tasks, &fixedClock{now: summerNow}, nil)

	if _, err := service.SweepOverdue(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}

	tasks.listErr = nil
	if _, err := service.SweepOverdue(context.Background()); err != nil {
		t.Errorf("expected guard released after failure, got %v", err)
	}
}

func TestSweepOverdue_SingleFlight(t *testing.T) {
	service := NewSweepService(newMockTaskRepository(), &fixedClock{now: summerNow}, nil)

	if !service.guard.acquire(JobOverdue) {
		t.Fatal("expected to acquire the guard")
	}
	_, err := service.SweepOverdue(context.Background())
	if !errors.Is(err, ErrJobRunning) {
		t.Errorf("expected ErrJobRunning, got %v", err)
	}
	service.guard.release(JobOverdue)

	if _, err := service.SweepOverdue(context.Background()); err != nil {
		t.Errorf("expected no error after release, got %v", err)
	}
}

func TestJobGuard_Concurrent(t *testing.T) {
	guard := newJobGuard()

	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if guard.acquire(JobOverdue) {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if acquired != 1 {
		t.Errorf("expected exactly one holder, got %d", acquired)
	}
	if !guard.acquire("other") {
		t.Error("expected an unrelated job type to be free")
	}
}

func TestSweepService_RunStopsWithContext(t *testing.T) {
	service := NewSweepService(newMockTaskRepository(), &fixedClock{now: summerNow}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		service.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
