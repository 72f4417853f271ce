package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	coretask "github.com/example/nextaction/internal/core/task"
	"github.com/example/nextaction/internal/ports/primary"
	"github.com/example/nextaction/internal/ports/secondary"
)

// JobOverdue is the job type of the overdue sweep.
const JobOverdue = "overdue"

// ErrJobRunning is returned when a job of the same type is already in flight.
var ErrJobRunning = errors.New("job already running")

// jobGuard admits one in-flight run per job type within the process.
type jobGuard struct {
	mu      sync.Mutex
	running map[string]bool
}

func newJobGuard() *jobGuard {
	return &jobGuard{running: make(map[string]bool)}
}

func (g *jobGuard) acquire(job string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running[job] {
		return false
	}
	g.running[job] = true
	return true
}

func (g *jobGuard) release(job string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, job)
}

// SweepServiceImpl implements the SweepService interface.
type SweepServiceImpl struct {
	taskRepo secondary.TaskRepository
	clock    secondary.Clock
	guard    *jobGuard
	logger   *slog.Logger
}

// NewSweepService creates a new SweepService with injected dependencies.
func NewSweepService(taskRepo secondary.TaskRepository, clock secondary.Clock, logger *slog.Logger) *SweepServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &SweepServiceImpl{
		taskRepo: taskRepo,
		clock:    clock,
		guard:    newJobGuard(),
		logger:   logger.With("component", "sweeper"),
	}
}

// SweepOverdue lists open, non-archived tasks due strictly before now.
func (s *SweepServiceImpl) SweepOverdue(ctx context.Context) (*primary.SweepReport, error) {
	if !s.guard.acquire(JobOverdue) {
		return nil, fmt.Errorf("%w: %s", ErrJobRunning, JobOverdue)
	}
	defer s.guard.release(JobOverdue)

	report := &primary.SweepReport{
		RunID:     uuid.NewString(),
		Job:       JobOverdue,
		StartedAt: s.clock.Now().UTC(),
	}

	records, err := s.taskRepo.List(ctx, secondary.TaskFilters{
		ExcludeStatus: string(coretask.StatusCompleted),
		DueBefore:     &report.StartedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	for _, r := range records {
		if r.DueDate != nil && r.DueDate.Before(report.StartedAt) {
			report.Overdue = append(report.Overdue, recordToTask(r))
		}
	}

	s.logger.Info("sweep finished",
		"run", report.RunID,
		"job", report.Job,
		"overdue", len(report.Overdue))
	for _, t := range report.Overdue {
		s.logger.Info("task overdue", "run", report.RunID, "task", t.ID, "name", t.Name, "due", t.DueDate)
	}
	return report, nil
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *SweepServiceImpl) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.SweepOverdue(ctx); err != nil {
			if errors.Is(err, ErrJobRunning) {
				s.logger.Debug("sweep skipped", "reason", err)
			} else {
				s.logger.Error("sweep failed", "error", err)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
