package main

import (
	"context"
	"errors"

	"github.com/desertthunder/playsync/internal/formatter"
	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/records"
	"github.com/desertthunder/playsync/internal/shared"
	"github.com/desertthunder/playsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Replay parses the export and replays every record, ending with the run summary.
//
// A missing or empty export is not an error: the summary is printed with zero counts.
func (r *Runner) Replay(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		path = r.config.Input.Path
	}

	recs, err := records.ReadFile(path, records.Options{MaxPlays: r.config.Input.MaxPlaysPerTrack})
	if err != nil && !errors.Is(err, shared.ErrNoInput) {
		return err
	}
	if len(recs) == 0 {
		r.logger.Warn("no tracks to replay", "path", path, "error", err)
		r.writeSummary(models.RunStatistics{})
		return nil
	}

	r.logger.Info("loaded play counts", "path", path, "records", len(recs))

	journal, closeJournal, err := r.openJournal()
	if err != nil {
		r.logger.Warn("continuing without journal", "error", err)
	}
	defer closeJournal()

	progress := newProgressPrinter(r.writeProgress)
	engine := r.engine(progress.flushBefore(r.decider(cmd.Bool("yes"))), journal)

	if err := r.simulator().EnsureRunning(ctx); err != nil {
		r.logger.Error("player is not ready", "error", err)
	}

	var result *tasks.ReplayResult
	if cmd.Bool("dry-run") {
		r.writePlain("Dry run: resolving %d tracks without playing\n", len(recs))
		result = engine.DryRun(ctx, recs, progress.updates)
	} else {
		result = engine.Run(ctx, path, recs, progress.updates)
	}
	progress.Close()

	if cmd.Bool("dry-run") {
		r.writeResolutions(result.Outcomes)
	}
	r.writeSummary(result.Stats)
	if journal != nil {
		r.writePlain("Journal run: %s\n", result.RunID)
	}
	return nil
}

func (r *Runner) writeProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.StartRecord:
		r.writePlain("\n🎵 %s\n", update.Message)
	case tasks.ResolveTrack:
		r.writePlain("   🔍 %s\n", update.Message)
	case tasks.PlayTrack:
		r.writePlain("   ▶ %s\n", update.Message)
	case tasks.RetryPlay:
		r.writePlain("   ↻ %s\n", update.Message)
	case tasks.FinishRecord:
		r.writePlain("   %s\n", update.Message)
	}
}

func (r *Runner) writeResolutions(outcomes []tasks.RecordOutcome) {
	r.writePlainln("Resolutions:")
	for _, o := range outcomes {
		switch {
		case o.Match != nil:
			r.writePlain("  ✓ %d. %s -> %q by %s (%s)\n",
				o.Index, o.Record.Describe(), o.Match.Track.Title, o.Match.Track.Artist, o.Match.Kind)
		case o.Status == tasks.StatusInvalid:
			r.writePlain("  - %d. line %d skipped: invalid play count %q\n", o.Index, o.Record.Line, o.Record.RawCount)
		default:
			r.writePlain("  ✗ %d. %s: %s\n", o.Index, o.Record.Describe(), o.Status)
		}
	}
}

func (r *Runner) writeSummary(stats models.RunStatistics) {
	r.writePlain("\n")
	r.writePlainHeader("Summary")
	r.writePlain("%s", formatter.RunSummary(stats))
}


// progressPrinter writes engine updates on its own goroutine so a slow terminal
// never blocks the engine.
type progressPrinter struct {
	updates chan tasks.ProgressUpdate
	flush   chan chan struct{}
	done    chan struct{}
	write   func(tasks.ProgressUpdate)
}

func newProgressPrinter(write func(tasks.ProgressUpdate)) *progressPrinter {
	p := &progressPrinter{
		updates: make(chan tasks.ProgressUpdate, 50),
		flush:   make(chan chan struct{}),
		done:    make(chan struct{}),
		write:   write,
	}
	go p.loop()
	return p
}

func (p *progressPrinter) loop() {
	defer close(p.done)
	for {
		select {
		case update, ok := <-p.updates:
			if !ok {
				return
			}
			p.write(update)
		case reply := <-p.flush:
			for len(p.updates) > 0 {
				p.write(<-p.updates)
			}
			close(reply)
		}
	}
}

// Flush blocks until every update sent so far has been written.
// It must not be called after Close.
func (p *progressPrinter) Flush() {
	reply := make(chan struct{})
	p.flush <- reply
	<-reply
}

// Close stops accepting updates and waits for the queue to be written.
func (p *progressPrinter) Close() {
	close(p.updates)
	<-p.done
}

// flushBefore wraps d so pending progress lines reach the terminal before a
// prompt takes it over. The engine sends no updates while it waits on a decision.
func (p *progressPrinter) flushBefore(d tasks.Decider) tasks.Decider {
	return tasks.DeciderFunc(func(ctx context.Context, cp models.Checkpoint) (models.Decision, error) {
		p.Flush()
		return d.Decide(ctx, cp)
	})
}
