package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/playsync/internal/models"
)

// Journal records replay runs and their play attempts.
//
// It satisfies tasks.Journal. The database calls are short and local, so ctx is only checked
// before each write.
type Journal struct {
	runs   *RunRepository
	events *PlayEventRepository
}

// NewJournal creates a Journal over an open, migrated database.
func NewJournal(db *sql.DB) *Journal {
	return &Journal{runs: NewRunRepository(db), events: NewPlayEventRepository(db)}
}

// Runs exposes the run repository for read-back.
func (j *Journal) Runs() *RunRepository { return j.runs }

// Events exposes the event repository for read-back.
func (j *Journal) Events() *PlayEventRepository { return j.events }

// StartRun inserts a running run and returns its ID.
func (j *Journal) StartRun(ctx context.Context, inputPath string, total int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	run := models.NewReplayRun(0, inputPath)
	run.SetStats(models.RunStatistics{TotalRecords: total, StartedAt: run.StartedAt()})
	if err := j.runs.Create(run); err != nil {
		return "", err
	}
	return run.ID(), nil
}

// RecordAttempt appends one play attempt.
func (j *Journal) RecordAttempt(ctx context.Context, ev *models.PlayEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return j.events.Create(ev)
}

// FinishRun stores the final counters and marks the run completed or stopped.
func (j *Journal) FinishRun(ctx context.Context, runID string, stats models.RunStatistics) error {
	run, err := j.runs.Get(runID)
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	run.Finish(stats)
	return j.runs.Update(run)
}

// RunDetail is a run with its attempts, as shown by `history show`.
type RunDetail struct {
	Run    *models.ReplayRun
	Events []*models.PlayEvent
}

// Detail loads a run and its events.
func (j *Journal) Detail(runID string) (*RunDetail, error) {
	run, err := j.runs.Get(runID)
	if err != nil {
		return nil, err
	}

	events, err := j.events.List(map[string]any{"run_id": run.ID()})
	if err != nil {
		return nil, err
	}
	return &RunDetail{Run: run, Events: events}, nil
}
