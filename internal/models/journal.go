package models

import (
	"errors"
	"time"
)

// Run statuses
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusStopped   = "stopped"
)

var (
	_ Model = (*ReplayRun)(nil)
	_ Model = (*PlayEvent)(nil)
)

// ReplayRun is the journal entry for one invocation of the replay command.
type ReplayRun struct {
	id         string
	sequence   int
	inputPath  string
	status     string
	stats      RunStatistics
	startedAt  time.Time
	finishedAt *time.Time
	createdAt  time.Time
	updatedAt  time.Time
}

// NewReplayRun creates a running [ReplayRun] for the given input file.
func NewReplayRun(sequence int, inputPath string) *ReplayRun {
	now := time.Now()
	return &ReplayRun{
		sequence:  sequence,
		inputPath: inputPath,
		status:    RunStatusRunning,
		startedAt: now,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *ReplayRun) ID() string                 { return r.id }
func (r *ReplayRun) Sequence() int              { return r.sequence }
func (r *ReplayRun) InputPath() string          { return r.inputPath }
func (r *ReplayRun) Status() string             { return r.status }
func (r *ReplayRun) Stats() RunStatistics       { return r.stats }
func (r *ReplayRun) StartedAt() time.Time       { return r.startedAt }
func (r *ReplayRun) FinishedAt() *time.Time     { return r.finishedAt }
func (r *ReplayRun) CreatedAt() time.Time       { return r.createdAt }
func (r *ReplayRun) UpdatedAt() time.Time       { return r.updatedAt }
func (r *ReplayRun) SetID(id string)            { r.id = id }
func (r *ReplayRun) SetSequence(seq int)        { r.sequence = seq }
func (r *ReplayRun) SetStatus(status string)    { r.status = status }
func (r *ReplayRun) SetStats(s RunStatistics)   { r.stats = s }
func (r *ReplayRun) SetStartedAt(t time.Time)   { r.startedAt = t }
func (r *ReplayRun) SetFinishedAt(t *time.Time) { r.finishedAt = t }
func (r *ReplayRun) SetCreatedAt(t time.Time)   { r.createdAt = t }
func (r *ReplayRun) SetUpdatedAt(t time.Time)   { r.updatedAt = t }

// Finish records the final counters and marks the run completed or stopped.
func (r *ReplayRun) Finish(stats RunStatistics) {
	now := time.Now()
	r.stats = stats
	r.finishedAt = &now
	if stats.Stopped {
		r.status = RunStatusStopped
	} else {
		r.status = RunStatusCompleted
	}
}

// Validate checks required fields and status values.
func (r *ReplayRun) Validate() error {
	if r.inputPath == "" {
		return errors.New("input path is required")
	}
	switch r.status {
	case RunStatusRunning, RunStatusCompleted, RunStatusStopped:
	default:
		return errors.New("invalid run status: " + r.status)
	}
	return nil
}

// PlayEvent is the journal entry for one play attempt.
type PlayEvent struct {
	id          string
	runID       string
	recordIndex int
	title       string
	artist      string
	attempt     int
	success     bool
	recoverable bool
	message     string
	trackID     string
	createdAt   time.Time
}

// NewPlayEvent builds a [PlayEvent] from an attempt result.
func NewPlayEvent(runID string, recordIndex, attempt int, rec PlayTargetRecord, res PlayAttemptResult) *PlayEvent {
	ev := &PlayEvent{
		runID:       runID,
		recordIndex: recordIndex,
		title:       rec.Title,
		artist:      rec.Artist,
		attempt:     attempt,
		success:     res.Success,
		recoverable: res.Recoverable,
		message:     res.Message,
		createdAt:   time.Now(),
	}
	if res.Track != nil {
		ev.trackID = res.Track.ID
	}
	return ev
}

func (e *PlayEvent) ID() string           { return e.id }
func (e *PlayEvent) RunID() string        { return e.runID }
func (e *PlayEvent) RecordIndex() int     { return e.recordIndex }
func (e *PlayEvent) Title() string        { return e.title }
func (e *PlayEvent) Artist() string       { return e.artist }
func (e *PlayEvent) Attempt() int         { return e.attempt }
func (e *PlayEvent) Success() bool        { return e.success }
func (e *PlayEvent) Recoverable() bool    { return e.recoverable }
func (e *PlayEvent) Message() string      { return e.message }
func (e *PlayEvent) TrackID() string      { return e.trackID }
func (e *PlayEvent) CreatedAt() time.Time { return e.createdAt }

// UpdatedAt equals CreatedAt; events are immutable.
func (e *PlayEvent) UpdatedAt() time.Time { return e.createdAt }

func (e *PlayEvent) SetID(id string)          { e.id = id }
func (e *PlayEvent) SetCreatedAt(t time.Time) { e.createdAt = t }

// Validate checks required fields.
func (e *PlayEvent) Validate() error {
	if e.runID == "" {
		return errors.New("run id is required")
	}
	if e.attempt < 1 {
		return errors.New("attempt must be at least 1")
	}
	return nil
}

// RestorePlayEvent rebuilds a stored event; used by the repository when scanning rows.
func RestorePlayEvent(id, runID string, recordIndex int, title, artist string, attempt int, success, recoverable bool, message, trackID string, createdAt time.Time) *PlayEvent {
	return &PlayEvent{
		id:          id,
		runID:       runID,
		recordIndex: recordIndex,
		title:       title,
		artist:      artist,
		attempt:     attempt,
		success:     success,
		recoverable: recoverable,
		message:     message,
		trackID:     trackID,
		createdAt:   createdAt,
	}
}
