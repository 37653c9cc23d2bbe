package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/repositories"
	"github.com/desertthunder/playsync/internal/shared"
	"github.com/urfave/cli/v3"
)

type runJSON struct {
	ID              string     `json:"id"`
	Sequence        int        `json:"sequence"`
	InputPath       string     `json:"input_path"`
	Status          string     `json:"status"`
	TotalRecords    int        `json:"total_records"`
	TracksProcessed int        `json:"tracks_processed"`
	PlaysAdded      int        `json:"plays_added"`
	TracksNotFound  int        `json:"tracks_not_found"`
	TracksSkipped   int        `json:"tracks_skipped"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

type eventJSON struct {
	RecordIndex int       `json:"record_index"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	Attempt     int       `json:"attempt"`
	Success     bool      `json:"success"`
	Recoverable bool      `json:"recoverable"`
	Message     string    `json:"message"`
	TrackID     string    `json:"track_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toRunJSON(run *models.ReplayRun) runJSON {
	s := run.Stats()
	return runJSON{
		ID:              run.ID(),
		Sequence:        run.Sequence(),
		InputPath:       run.InputPath(),
		Status:          run.Status(),
		TotalRecords:    s.TotalRecords,
		TracksProcessed: s.TracksProcessed,
		PlaysAdded:      s.PlaysAdded,
		TracksNotFound:  s.TracksNotFound,
		TracksSkipped:   s.TracksSkipped,
		StartedAt:       run.StartedAt(),
		FinishedAt:      run.FinishedAt(),
	}
}

func toEventJSON(ev *models.PlayEvent) eventJSON {
	return eventJSON{
		RecordIndex: ev.RecordIndex(),
		Title:       ev.Title(),
		Artist:      ev.Artist(),
		Attempt:     ev.Attempt(),
		Success:     ev.Success(),
		Recoverable: ev.Recoverable(),
		Message:     ev.Message(),
		TrackID:     ev.TrackID(),
		CreatedAt:   ev.CreatedAt(),
	}
}

// historyJournal opens an existing journal database for reading.
func (r *Runner) historyJournal() (*repositories.Journal, func(), error) {
	path := r.config.Journal.Path
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("%w: no journal at %s (set [journal] enabled = true)", shared.ErrMissingConfig, path)
	}

	db, err := shared.OpenJournal(r.config.Journal)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return repositories.NewJournal(db), func() { db.Close() }, nil
}

// HistoryList prints the most recent journaled runs.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	journal, closeJournal, err := r.historyJournal()
	if err != nil {
		return err
	}
	defer closeJournal()

	runs, err := journal.Runs().List(map[string]any{
		"status": cmd.String("status"),
		"limit":  int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]runJSON, 0, len(runs))
		for _, run := range runs {
			out = append(out, toRunJSON(run))
		}
		return r.writeJSON(out, true)
	}

	if len(runs) == 0 {
		r.writePlain("No runs recorded yet\n")
		return nil
	}

	r.writePlainHeader("Replay runs")
	for _, run := range runs {
		s := run.Stats()
		r.writePlain("#%d  %s  %-9s  %d/%d tracks, %d plays  %s\n",
			run.Sequence(), run.StartedAt().Format(time.DateTime), run.Status(),
			s.TracksProcessed, s.TotalRecords, s.PlaysAdded, run.InputPath())
	}
	return nil
}

// HistoryShow prints one run, looked up by id or run number, with its play attempts.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: run id or number", shared.ErrMissingArgument)
	}

	journal, closeJournal, err := r.historyJournal()
	if err != nil {
		return err
	}
	defer closeJournal()

	if seq, err := strconv.Atoi(id); err == nil {
		run, err := journal.Runs().GetBySequence(seq)
		if err != nil {
			return err
		}
		id = run.ID()
	}

	detail, err := journal.Detail(id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		events := make([]eventJSON, 0, len(detail.Events))
		for _, ev := range detail.Events {
			events = append(events, toEventJSON(ev))
		}
		return r.writeJSON(struct {
			Run    runJSON     `json:"run"`
			Events []eventJSON `json:"events"`
		}{toRunJSON(detail.Run), events}, true)
	}

	run := detail.Run
	r.writePlainHeader(fmt.Sprintf("Run #%d (%s)", run.Sequence(), run.Status()))
	r.writePlain("ID: %s\n", run.ID())
	r.writePlain("Input: %s\n", run.InputPath())
	r.writePlain("Started: %s\n", run.StartedAt().Format(time.DateTime))
	if f := run.FinishedAt(); f != nil {
		r.writePlain("Finished: %s\n", f.Format(time.DateTime))
	}
	r.writePlain("\n")
	r.writePlain("%s", formatRunStats(run.Stats()))

	if len(detail.Events) == 0 {
		return nil
	}
	r.writePlainln("Attempts:")
	for _, ev := range detail.Events {
		mark := "✓"
		if !ev.Success() {
			mark = "✗"
		}
		r.writePlain("  %s [%d] attempt %d: %s\n", mark, ev.RecordIndex(), ev.Attempt(), ev.Message())
	}
	return nil
}

func formatRunStats(s models.RunStatistics) string {
	return fmt.Sprintf("Tracks processed: %d/%d\nPlays added: %d\nTracks not found: %d\nTracks skipped: %d\n",
		s.TracksProcessed, s.TotalRecords, s.PlaysAdded, s.TracksNotFound, s.TracksSkipped)
}
