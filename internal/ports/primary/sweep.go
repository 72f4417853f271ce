package primary

import (
	"context"
	"time"
)

// SweepService defines the primary port for background maintenance jobs.
type SweepService interface {
	// SweepOverdue reports open tasks whose due date has passed. A second
	// run started while one is in flight fails with app.ErrJobRunning.
	SweepOverdue(ctx context.Context) (*SweepReport, error)
}

// SweepReport summarizes one sweep run.
type SweepReport struct {
	RunID     string
	Job       string
	StartedAt time.Time
	Overdue   []*Task
}
