package models

import (
	"fmt"
	"time"
)

// PlayTargetRecord is one row of the play-count export: a track and how many plays it should receive.
type PlayTargetRecord struct {
	Line           int    // 1-based line number in the source file
	Title          string // Track title
	Artist         string // Track artist
	Album          string // Album name, may be empty
	SourceID       string // Opaque identifier from the source service (e.g. a Spotify URI)
	RawCount       string // Count field as it appeared in the file
	RequestedCount int    // Parsed count before clamping
	PlayCount      int    // Target plays, clamped to [0, max]
	Skip           bool   // Set when the count was unparsable or not positive
}

// Clamped reports whether the requested count was lowered to the configured maximum.
func (r PlayTargetRecord) Clamped() bool {
	return !r.Skip && r.RequestedCount > r.PlayCount
}

// Describe renders the record as `"Title" by Artist from album "Album"`.
func (r PlayTargetRecord) Describe() string {
	desc := fmt.Sprintf("%q by %s", r.Title, r.Artist)
	if r.Album != "" {
		desc += fmt.Sprintf(" from album %q", r.Album)
	}
	return desc
}

// LibraryTrack is a track in the local player's catalog.
//
// The player owns it; callers only hold the value for the duration of one record.
type LibraryTrack struct {
	ID         string  // Stable (persistent) identifier assigned by the player
	Title      string  // Track name
	Artist     string  // Track artist
	Album      string  // Album name
	Duration   float64 // Length in seconds
	Collection string  // Name of the collection it was enumerated from
}

// MatchKind describes how a library track matched a query.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchExact
	MatchSubstring
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchSubstring:
		return "artist_and_title_substring"
	default:
		return "none"
	}
}

// MatchCandidate is a resolved library track.
type MatchCandidate struct {
	Track LibraryTrack
	Kind  MatchKind
}

// PlayAttemptResult is the outcome of one simulated play.
type PlayAttemptResult struct {
	Success     bool          // Whether the play was registered
	Recoverable bool          // Whether a failure is worth retrying
	Message     string        // Human-readable description
	Track       *LibraryTrack // Track that was played, nil when nothing started
}

// RunStatistics are the counters of one replay run. They live only as long as the process.
type RunStatistics struct {
	TotalRecords    int
	TracksProcessed int
	PlaysAdded      int
	TracksSkipped   int
	TracksNotFound  int
	Stopped         bool // Operator (or a failed prompt) ended the run early
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Elapsed returns the wall time of the run, or the time since start while it is in progress.
func (s RunStatistics) Elapsed() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Decision is the operator's answer at a checkpoint.
type Decision int

const (
	DecisionStop Decision = iota
	DecisionContinue
	DecisionSkip
)

func (d Decision) String() string {
	switch d {
	case DecisionContinue:
		return "Continue"
	case DecisionSkip:
		return "Skip"
	default:
		return "Stop"
	}
}

// ParseDecision maps a button label to a [Decision]. Unknown labels are treated as [DecisionStop].
func ParseDecision(label string) Decision {
	switch label {
	case "Continue", "continue", "c":
		return DecisionContinue
	case "Skip", "skip", "s":
		return DecisionSkip
	default:
		return DecisionStop
	}
}

// CheckpointKind says where in a run a checkpoint is presented.
type CheckpointKind int

const (
	CheckpointBeforeRecord CheckpointKind = iota // before any work on a record
	CheckpointAfterRecord                        // after a record earned at least one play
)

func (k CheckpointKind) String() string {
	if k == CheckpointAfterRecord {
		return "after"
	}
	return "before"
}

// Checkpoint is what the operator is asked about between records.
type Checkpoint struct {
	Kind    CheckpointKind
	Index   int // 1-based position of the record in the run
	Total   int
	Record  PlayTargetRecord
	Stats   RunStatistics
	Message string
}

// Choices returns the labels offered at the checkpoint, in display order.
func (c Checkpoint) Choices() []Decision {
	return []Decision{DecisionStop, DecisionContinue, DecisionSkip}
}
