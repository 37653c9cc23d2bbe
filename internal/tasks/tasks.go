// package tasks implements the replay of play counts against the local player.
//
// The core abstraction is [ReplayEngine], which walks play-target records in order, resolves each
// against the library once and registers the requested number of plays. Operations emit progress
// updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/playback"
	"github.com/desertthunder/playsync/internal/resolver"
	"github.com/desertthunder/playsync/internal/shared"
)

// Library produces the candidate tracks a record is resolved against.
type Library interface {
	Enumerate(ctx context.Context) iter.Seq[models.LibraryTrack]
}

// Simulator registers single plays and resets the player between records.
type Simulator interface {
	Play(ctx context.Context, track models.LibraryTrack) models.PlayAttemptResult
	Reset(ctx context.Context, d time.Duration)
}

// Decider answers a checkpoint with Stop, Continue or Skip.
//
// An error is treated as Stop.
type Decider interface {
	Decide(ctx context.Context, cp models.Checkpoint) (models.Decision, error)
}

// DeciderFunc adapts a function to [Decider].
type DeciderFunc func(ctx context.Context, cp models.Checkpoint) (models.Decision, error)

func (f DeciderFunc) Decide(ctx context.Context, cp models.Checkpoint) (models.Decision, error) {
	return f(ctx, cp)
}

// Journal is an optional audit trail of runs and attempts.
//
// Journal failures are logged and never affect the run.
type Journal interface {
	StartRun(ctx context.Context, inputPath string, total int) (string, error)
	RecordAttempt(ctx context.Context, ev *models.PlayEvent) error
	FinishRun(ctx context.Context, runID string, stats models.RunStatistics) error
}

// Policy is the pacing and failure policy of a run.
type Policy struct {
	InterPlayDelay         time.Duration // between plays of the same record
	RetryBackoff           time.Duration // before retrying a failed play
	MaxConsecutiveFailures int           // failures in a row that abandon a record
	BetweenRecordsDelay    time.Duration // after resetting the player, before each record
}

// DefaultMaxConsecutiveFailures abandons a record after three failed plays in a row.
const DefaultMaxConsecutiveFailures = 3

// PolicyFrom converts the [replay] config section.
func PolicyFrom(c shared.ReplayConfig) Policy {
	return Policy{
		InterPlayDelay:         c.InterPlayDelay.Duration,
		RetryBackoff:           c.RetryBackoff.Duration,
		MaxConsecutiveFailures: c.MaxConsecutiveFailures,
		BetweenRecordsDelay:    c.BetweenRecordsDelay.Duration,
	}
}

// RecordStatus is where a record ended up.
type RecordStatus int

const (
	StatusPending   RecordStatus = iota
	StatusInvalid                // count field unusable, never resolved
	StatusSkipped                // operator chose Skip
	StatusStopped                // run ended before or during this record
	StatusNotFound               // no library match, or the first play failed
	StatusAbandoned              // later plays failed; earlier plays stand
	StatusCompleted              // every requested play registered
	StatusResolved               // dry run only: a match exists
)

func (s RecordStatus) String() string {
	switch s {
	case StatusInvalid:
		return "invalid"
	case StatusSkipped:
		return "skipped"
	case StatusStopped:
		return "stopped"
	case StatusNotFound:
		return "not_found"
	case StatusAbandoned:
		return "abandoned"
	case StatusCompleted:
		return "completed"
	case StatusResolved:
		return "resolved"
	default:
		return "pending"
	}
}

// RecordOutcome is the result of processing one record.
type RecordOutcome struct {
	Index  int
	Record models.PlayTargetRecord
	Status RecordStatus
	Match  *models.MatchCandidate
	Plays  int
}

// ReplayResult contains all data from a replay run.
type ReplayResult struct {
	RunID    string
	Stats    models.RunStatistics
	Outcomes []RecordOutcome
}

// ReplayEngine drives a run. It is the sole mutator of the player while running.
type ReplayEngine struct {
	library   Library
	simulator Simulator
	decider   Decider
	journal   Journal
	policy    Policy
	sleep     playback.Sleeper
	logger    *log.Logger
}

// ReplayEngineOpts contains configuration options for creating a ReplayEngine.
type ReplayEngineOpts struct {
	Library   Library
	Simulator Simulator
	Decider   Decider
	Journal   Journal // Optional
	Policy    Policy
	Sleep     playback.Sleeper // Defaults to [playback.Sleep]
	Logger    *log.Logger
}

// NewReplayEngine creates a new ReplayEngine with the provided options.
func NewReplayEngine(opts ReplayEngineOpts) *ReplayEngine {
	if opts.Sleep == nil {
		opts.Sleep = playback.Sleep
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Policy.MaxConsecutiveFailures <= 0 {
		opts.Policy.MaxConsecutiveFailures = DefaultMaxConsecutiveFailures
	}
	return &ReplayEngine{
		library:   opts.Library,
		simulator: opts.Simulator,
		decider:   opts.Decider,
		journal:   opts.Journal,
		policy:    opts.Policy,
		sleep:     opts.Sleep,
		logger:    opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ReplayEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run replays recs in order and always returns the statistics gathered, including after a
// Stop decision or a cancelled context. The player is left stopped.
func (e *ReplayEngine) Run(ctx context.Context, inputPath string, recs []models.PlayTargetRecord, progress chan<- ProgressUpdate) *ReplayResult {
	total := len(recs)
	s := &session{
		engine:   e,
		progress: progress,
		result: &ReplayResult{
			Stats:    models.RunStatistics{TotalRecords: total, StartedAt: time.Now()},
			Outcomes: make([]RecordOutcome, 0, total),
		},
	}
	s.start(ctx, inputPath, total)
	defer e.simulator.Reset(context.WithoutCancel(ctx), 0)

	stats := &s.result.Stats
	for i, rec := range recs {
		idx := i + 1
		if ctx.Err() != nil {
			s.logger.Warn("run interrupted", "error", ctx.Err())
			stats.Stopped = true
			break
		}

		e.sendProgress(progress, startRecordUpdate(idx, total, rec))
		e.simulator.Reset(ctx, e.policy.BetweenRecordsDelay)

		outcome := RecordOutcome{Index: idx, Record: rec}

		if rec.Skip {
			s.logger.Warn("skipping record with invalid play count", "title", rec.Title, "count", rec.RawCount, "line", rec.Line)
			stats.TracksSkipped++
			outcome.Status = StatusInvalid
			s.result.Outcomes = append(s.result.Outcomes, outcome)
			continue
		}
		if rec.Clamped() {
			s.logger.Info("limiting plays", "title", rec.Title, "from", rec.RequestedCount, "to", rec.PlayCount)
		}

		s.logger.Info(fmt.Sprintf("Track %d/%d: %s", idx, total, rec.Describe()), "target", rec.PlayCount)

		switch s.decide(ctx, beforeCheckpoint(idx, total, rec, *stats)) {
		case models.DecisionStop:
			s.logger.Info("operator chose to stop processing")
			stats.Stopped = true
			outcome.Status = StatusStopped
			s.result.Outcomes = append(s.result.Outcomes, outcome)
			return s.finish(ctx)
		case models.DecisionSkip:
			s.logger.Info("skipping", "title", rec.Title, "artist", rec.Artist)
			stats.TracksSkipped++
			outcome.Status = StatusSkipped
			s.result.Outcomes = append(s.result.Outcomes, outcome)
			continue
		}

		s.replayRecord(ctx, &outcome)
		s.result.Outcomes = append(s.result.Outcomes, outcome)
		e.sendProgress(progress, finishRecordUpdate(idx, total, outcome))

		if outcome.Status == StatusStopped {
			if outcome.Plays > 0 {
				stats.TracksProcessed++
			}
			stats.Stopped = true
			break
		}
		if outcome.Plays == 0 {
			continue
		}

		stats.TracksProcessed++
		if idx < total && s.decide(ctx, afterCheckpoint(idx, total, outcome, *stats)) == models.DecisionStop {
			s.logger.Info("operator chose to stop processing")
			stats.Stopped = true
			break
		}
	}

	return s.finish(ctx)
}

// session is the state of one [ReplayEngine.Run].
type session struct {
	engine   *ReplayEngine
	journal  Journal
	logger   *log.Logger
	progress chan<- ProgressUpdate
	result   *ReplayResult
}

// start opens a journal run, or falls back to a fresh id when there is no usable journal.
func (s *session) start(ctx context.Context, inputPath string, total int) {
	e := s.engine
	s.result.RunID = shared.GenerateID()

	if e.journal != nil {
		if id, err := e.journal.StartRun(ctx, inputPath, total); err != nil {
			e.logger.Warn("journal unavailable for this run", "error", err)
		} else {
			s.journal = e.journal
			s.result.RunID = id
		}
	}
	s.logger = e.logger.With("run", s.result.RunID)
}

// replayRecord resolves the record once and plays the match up to its target count.
func (s *session) replayRecord(ctx context.Context, outcome *RecordOutcome) {
	e := s.engine
	rec := outcome.Record
	stats := &s.result.Stats
	e.sendProgress(s.progress, resolveTrackUpdate(outcome.Index, stats.TotalRecords, rec))

	res := resolver.Search(e.library.Enumerate(ctx), resolver.Query{Title: rec.Title, Artist: rec.Artist})
	s.logger.Debug("search finished", "inspected", res.Inspected, "candidates", len(res.Candidates))
	if !res.Found {
		if ctx.Err() != nil {
			outcome.Status = StatusStopped
			return
		}
		s.logger.Warn("track not found, try adding it to your library first", "title", rec.Title, "artist", rec.Artist)
		stats.TracksNotFound++
		outcome.Status = StatusNotFound
		return
	}

	match := res.Match
	outcome.Match = &match
	s.logger.Info("resolved track", "title", match.Track.Title, "artist", match.Track.Artist, "kind", match.Kind)

	failures := 0
	tries := 0
	for play := 1; play <= rec.PlayCount; {
		if ctx.Err() != nil {
			outcome.Status = StatusStopped
			return
		}

		tries++
		e.sendProgress(s.progress, playTrackUpdate(play, rec.PlayCount, match.Track))
		attempt := e.simulator.Play(ctx, match.Track)
		s.recordAttempt(ctx, outcome.Index, tries, rec, attempt)

		if attempt.Success {
			s.logger.Debug(attempt.Message, "play", play, "of", rec.PlayCount)
			outcome.Plays++
			stats.PlaysAdded++
			failures = 0
			play++
			if play <= rec.PlayCount {
				e.sleep(ctx, e.policy.InterPlayDelay)
			}
			continue
		}

		if ctx.Err() != nil {
			s.logger.Warn("play interrupted", "play", play, "error", ctx.Err())
			outcome.Status = StatusStopped
			return
		}

		s.logger.Warn(attempt.Message, "play", play, "recoverable", attempt.Recoverable)

		// A failed first play means the track cannot be played at all.
		if play == 1 {
			stats.TracksNotFound++
			outcome.Status = StatusNotFound
			return
		}

		failures++
		if attempt.Recoverable && failures < e.policy.MaxConsecutiveFailures {
			e.sendProgress(s.progress, retryPlayUpdate(play, rec.PlayCount, failures, attempt))
			e.sleep(ctx, e.policy.RetryBackoff)
			continue
		}

		if failures >= e.policy.MaxConsecutiveFailures {
			s.logger.Warn("too many consecutive errors, skipping remaining plays", "errors", failures)
		} else {
			s.logger.Warn("unrecoverable error, skipping remaining plays")
		}
		outcome.Status = StatusAbandoned
		return
	}

	outcome.Status = StatusCompleted
	s.logger.Info(fmt.Sprintf("Added %d plays for %q by %s", outcome.Plays, rec.Title, rec.Artist))
}

// decide asks the decider, mapping errors and cancellation to Stop.
func (s *session) decide(ctx context.Context, cp models.Checkpoint) models.Decision {
	e := s.engine
	if ctx.Err() != nil || e.decider == nil {
		return models.DecisionStop
	}

	e.sendProgress(s.progress, awaitDecisionUpdate(cp))
	decision, err := e.decider.Decide(ctx, cp)
	if err != nil {
		s.logger.Error("confirmation failed, stopping", "error", err)
		return models.DecisionStop
	}
	s.logger.Debug("checkpoint", "kind", cp.Kind, "record", cp.Index, "decision", decision)
	return decision
}

func (s *session) recordAttempt(ctx context.Context, idx, attempt int, rec models.PlayTargetRecord, res models.PlayAttemptResult) {
	if s.journal == nil {
		return
	}
	if err := s.journal.RecordAttempt(ctx, models.NewPlayEvent(s.result.RunID, idx, attempt, rec, res)); err != nil {
		s.logger.Warn("could not record attempt", "error", err)
	}
}

func (s *session) finish(ctx context.Context) *ReplayResult {
	s.result.Stats.FinishedAt = time.Now()
	if ctx.Err() != nil {
		s.result.Stats.Stopped = true
	}
	if s.journal != nil {
		if err := s.journal.FinishRun(context.WithoutCancel(ctx), s.result.RunID, s.result.Stats); err != nil {
			s.logger.Warn("could not finish journal run", "error", err)
		}
	}
	s.engine.sendProgress(s.progress, finishRunUpdate(s.result.Stats))
	return s.result
}

// DryRun resolves every valid record without touching the transport.
func (e *ReplayEngine) DryRun(ctx context.Context, recs []models.PlayTargetRecord, progress chan<- ProgressUpdate) *ReplayResult {
	total := len(recs)
	result := &ReplayResult{
		RunID:    shared.GenerateID(),
		Stats:    models.RunStatistics{TotalRecords: total, StartedAt: time.Now()},
		Outcomes: make([]RecordOutcome, 0, total),
	}
	stats := &result.Stats

	for i, rec := range recs {
		if ctx.Err() != nil {
			stats.Stopped = true
			break
		}

		outcome := RecordOutcome{Index: i + 1, Record: rec}
		switch {
		case rec.Skip:
			stats.TracksSkipped++
			outcome.Status = StatusInvalid
		default:
			e.sendProgress(progress, resolveTrackUpdate(outcome.Index, total, rec))
			if match, ok := resolver.Resolve(e.library.Enumerate(ctx), resolver.Query{Title: rec.Title, Artist: rec.Artist}); ok {
				stats.TracksProcessed++
				outcome.Status = StatusResolved
				outcome.Match = &match
			} else {
				stats.TracksNotFound++
				outcome.Status = StatusNotFound
			}
		}

		result.Outcomes = append(result.Outcomes, outcome)
		e.sendProgress(progress, finishRecordUpdate(outcome.Index, total, outcome))
	}

	stats.FinishedAt = time.Now()
	e.sendProgress(progress, finishRunUpdate(*stats))
	return result
}

func beforeCheckpoint(idx, total int, rec models.PlayTargetRecord, stats models.RunStatistics) models.Checkpoint {
	return models.Checkpoint{
		Kind:   models.CheckpointBeforeRecord,
		Index:  idx,
		Total:  total,
		Record: rec,
		Stats:  stats,
		Message: fmt.Sprintf(
			"Ready to process track %d/%d:\n%s\n\nThis will add %d plays WITHOUT interruption.\n\n"+
				"Progress: %d plays added, %d tracks not found, %d tracks skipped.",
			idx, total, rec.Describe(), rec.PlayCount, stats.PlaysAdded, stats.TracksNotFound, stats.TracksSkipped,
		),
	}
}

func afterCheckpoint(idx, total int, outcome RecordOutcome, stats models.RunStatistics) models.Checkpoint {
	return models.Checkpoint{
		Kind:   models.CheckpointAfterRecord,
		Index:  idx,
		Total:  total,
		Record: outcome.Record,
		Stats:  stats,
		Message: fmt.Sprintf(
			"Added %d plays for %q by %s.\n\nReady to continue to the next track?",
			outcome.Plays, outcome.Record.Title, outcome.Record.Artist,
		),
	}
}
