package tasks

import (
	"fmt"

	"github.com/desertthunder/playsync/internal/models"
)

// ProgressUpdate represents a progress event during a replay run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	StartRecord Phase = iota
	AwaitDecision
	ResolveTrack
	PlayTrack
	RetryPlay
	FinishRecord
	FinishRun
)

func (p Phase) String() string {
	switch p {
	case StartRecord:
		return "start_record"
	case AwaitDecision:
		return "await_decision"
	case ResolveTrack:
		return "resolve_track"
	case PlayTrack:
		return "play_track"
	case RetryPlay:
		return "retry_play"
	case FinishRecord:
		return "finish_record"
	case FinishRun:
		return "finish_run"
	default:
		return ""
	}
}

func startRecordUpdate(step, total int, rec models.PlayTargetRecord) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StartRecord,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Track %d/%d: %s", step, total, rec.Describe()),
		Data:    rec,
	}
}

func awaitDecisionUpdate(cp models.Checkpoint) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AwaitDecision,
		Step:    cp.Index,
		Total:   cp.Total,
		Message: fmt.Sprintf("Waiting for a decision (%s record %d)...", cp.Kind, cp.Index),
		Data:    cp,
	}
}

func resolveTrackUpdate(step, total int, rec models.PlayTargetRecord) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTrack,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Searching for %q by %q in your library...", rec.Title, rec.Artist),
	}
}

func playTrackUpdate(play, total int, track models.LibraryTrack) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PlayTrack,
		Step:    play,
		Total:   total,
		Message: fmt.Sprintf("Adding play %d/%d for %q", play, total, track.Title),
		Data:    track,
	}
}

func retryPlayUpdate(play, total, failures int, res models.PlayAttemptResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RetryPlay,
		Step:    play,
		Total:   total,
		Message: fmt.Sprintf("Recoverable error (%d in a row), retrying play %d: %s", failures, play, res.Message),
		Data:    res,
	}
}

func finishRecordUpdate(step, total int, outcome RecordOutcome) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FinishRecord,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %s (%d plays)", step, total, outcome.Status, outcome.Record.Title, outcome.Plays),
		Data:    outcome,
	}
}

func finishRunUpdate(stats models.RunStatistics) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FinishRun,
		Step:    stats.TracksProcessed,
		Total:   stats.TotalRecords,
		Message: fmt.Sprintf("Run finished: %d plays added", stats.PlaysAdded),
		Data:    stats,
	}
}
