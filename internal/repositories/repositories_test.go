package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func createRun(t *testing.T, repo *RunRepository, inputPath string) *models.ReplayRun {
	t.Helper()
	run := models.NewReplayRun(0, inputPath)
	if err := repo.Create(run); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	return run
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "replay_runs")
		if err != nil {
			t.Fatalf("NextSequence() error = %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for unknown sequence table")
	}
}

func TestRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		first := createRun(t, repo, "a.csv")
		second := createRun(t, repo, "b.csv")

		if first.ID() == "" {
			t.Error("run ID should be set after creation")
		}
		if first.Sequence() != 1 || second.Sequence() != 2 {
			t.Errorf("expected sequences 1 and 2, got %d and %d", first.Sequence(), second.Sequence())
		}
	})

	t.Run("Create rejects invalid run", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if err := NewRunRepository(db).Create(models.NewReplayRun(0, "")); err == nil {
			t.Fatal("expected validation error for empty input path")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := createRun(t, repo, "plays.csv")

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.InputPath() != "plays.csv" {
			t.Errorf("expected input path plays.csv, got %s", got.InputPath())
		}
		if got.Status() != models.RunStatusRunning {
			t.Errorf("expected running status, got %s", got.Status())
		}
		if got.FinishedAt() != nil {
			t.Error("expected no finish time")
		}

		bySeq, err := repo.GetBySequence(run.Sequence())
		if err != nil {
			t.Fatalf("failed to get run by sequence: %v", err)
		}
		if bySeq.ID() != run.ID() {
			t.Errorf("expected %s, got %s", run.ID(), bySeq.ID())
		}
	})

	t.Run("Get not found", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := NewRunRepository(db).Get("nonexistent-id"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := createRun(t, repo, "plays.csv")
		run.Finish(models.RunStatistics{TotalRecords: 4, TracksProcessed: 2, PlaysAdded: 7, TracksSkipped: 1, TracksNotFound: 1, Stopped: true})

		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Status() != models.RunStatusStopped {
			t.Errorf("expected stopped, got %s", got.Status())
		}
		stats := got.Stats()
		if stats.PlaysAdded != 7 || stats.TracksProcessed != 2 || stats.TracksNotFound != 1 || stats.TracksSkipped != 1 || stats.TotalRecords != 4 {
			t.Errorf("unexpected stats: %+v", stats)
		}
		if !stats.Stopped {
			t.Error("expected stopped stats")
		}
		if got.FinishedAt() == nil {
			t.Error("expected finish time")
		}
	})

	t.Run("Update not found", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		run := models.NewReplayRun(1, "plays.csv")
		run.SetID("nonexistent-id")
		if err := NewRunRepository(db).Update(run); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("Delete cascades to events", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		runs := NewRunRepository(db)
		events := NewPlayEventRepository(db)
		run := createRun(t, runs, "plays.csv")

		ev := models.NewPlayEvent(run.ID(), 1, 1, models.PlayTargetRecord{Title: "Song A", Artist: "Artist X"}, models.PlayAttemptResult{Success: true})
		if err := events.Create(ev); err != nil {
			t.Fatalf("failed to create event: %v", err)
		}

		if err := runs.Delete(run.ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}
		if _, err := runs.Get(run.ID()); err == nil {
			t.Error("expected run to be gone")
		}
		if _, err := events.Get(ev.ID()); err == nil {
			t.Error("expected event to be deleted with its run")
		}
		if err := runs.Delete(run.ID()); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound on second delete, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		createRun(t, repo, "a.csv")
		done := createRun(t, repo, "b.csv")
		createRun(t, repo, "a.csv")

		done.Finish(models.RunStatistics{})
		if err := repo.Update(done); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(all) != 3 || all[0].Sequence() != 3 {
			t.Errorf("expected 3 runs newest first, got %d", len(all))
		}

		completed, err := repo.List(map[string]any{"status": models.RunStatusCompleted})
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(completed) != 1 || completed[0].ID() != done.ID() {
			t.Errorf("expected only the completed run, got %d", len(completed))
		}

		byPath, _ := repo.List(map[string]any{"input_path": "a.csv"})
		if len(byPath) != 2 {
			t.Errorf("expected 2 runs for a.csv, got %d", len(byPath))
		}

		limited, _ := repo.List(map[string]any{"limit": 1})
		if len(limited) != 1 {
			t.Errorf("expected 1 run, got %d", len(limited))
		}
	})
}

func TestPlayEventRepository(t *testing.T) {
	rec := models.PlayTargetRecord{Title: "Song A", Artist: "Artist X"}
	track := models.LibraryTrack{ID: "A1"}

	t.Run("Create and List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		run := createRun(t, NewRunRepository(db), "plays.csv")
		repo := NewPlayEventRepository(db)

		attempts := []models.PlayAttemptResult{
			{Success: true, Recoverable: true, Message: "played", Track: &track},
			{Success: false, Recoverable: true, Message: "timed out"},
			{Success: true, Recoverable: true, Message: "played", Track: &track},
		}
		for i, res := range attempts {
			if err := repo.Create(models.NewPlayEvent(run.ID(), 1, i+1, rec, res)); err != nil {
				t.Fatalf("failed to create event: %v", err)
			}
		}

		events, err := repo.List(map[string]any{"run_id": run.ID()})
		if err != nil {
			t.Fatalf("failed to list events: %v", err)
		}
		if len(events) != 3 {
			t.Fatalf("expected 3 events, got %d", len(events))
		}
		if events[0].Attempt() != 1 || events[0].TrackID() != "A1" || !events[0].Success() {
			t.Errorf("unexpected first event: attempt=%d track=%s success=%v", events[0].Attempt(), events[0].TrackID(), events[0].Success())
		}
		if events[1].Success() || !events[1].Recoverable() || events[1].Message() != "timed out" {
			t.Errorf("unexpected second event: %+v", events[1])
		}

		failed, err := repo.List(map[string]any{"run_id": run.ID(), "success": false})
		if err != nil {
			t.Fatalf("failed to list events: %v", err)
		}
		if len(failed) != 1 {
			t.Errorf("expected 1 failed event, got %d", len(failed))
		}
	})

	t.Run("Create requires a run", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlayEventRepository(db)
		if err := repo.Create(models.NewPlayEvent("", 1, 1, rec, models.PlayAttemptResult{})); err == nil {
			t.Error("expected validation error")
		}
		if err := repo.Create(models.NewPlayEvent("missing-run", 1, 1, rec, models.PlayAttemptResult{})); err == nil {
			t.Error("expected foreign key error")
		}
	})

	t.Run("Update is not supported", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		err := NewPlayEventRepository(db).Update(models.NewPlayEvent("r", 1, 1, rec, models.PlayAttemptResult{}))
		if !errors.Is(err, shared.ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		run := createRun(t, NewRunRepository(db), "plays.csv")
		repo := NewPlayEventRepository(db)
		ev := models.NewPlayEvent(run.ID(), 1, 1, rec, models.PlayAttemptResult{Success: true})
		if err := repo.Create(ev); err != nil {
			t.Fatalf("failed to create event: %v", err)
		}

		if err := repo.Delete(ev.ID()); err != nil {
			t.Fatalf("failed to delete event: %v", err)
		}
		if err := repo.Delete(ev.ID()); err == nil {
			t.Error("expected error deleting a missing event")
		}
	})
}

func TestJournal(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	j := NewJournal(db)
	runID, err := j.StartRun(ctx, "plays.csv", 2)
	if err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}

	rec := models.PlayTargetRecord{Title: "Song A", Artist: "Artist X"}
	for attempt := 1; attempt <= 2; attempt++ {
		ev := models.NewPlayEvent(runID, 1, attempt, rec, models.PlayAttemptResult{Success: true})
		if err := j.RecordAttempt(ctx, ev); err != nil {
			t.Fatalf("RecordAttempt() error = %v", err)
		}
	}

	stats := models.RunStatistics{TotalRecords: 2, TracksProcessed: 1, PlaysAdded: 2, TracksNotFound: 1, StartedAt: time.Now()}
	if err := j.FinishRun(ctx, runID, stats); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	detail, err := j.Detail(runID)
	if err != nil {
		t.Fatalf("Detail() error = %v", err)
	}
	if detail.Run.Status() != models.RunStatusCompleted {
		t.Errorf("expected completed, got %s", detail.Run.Status())
	}
	if detail.Run.Stats().PlaysAdded != 2 || detail.Run.Stats().TotalRecords != 2 {
		t.Errorf("unexpected stats: %+v", detail.Run.Stats())
	}
	if len(detail.Events) != 2 {
		t.Errorf("expected 2 events, got %d", len(detail.Events))
	}

	if err := j.FinishRun(ctx, "missing", stats); !errors.Is(err, shared.ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := j.StartRun(cancelled, "plays.csv", 1); err == nil {
		t.Error("expected error for cancelled context")
	}
}
