package models

import "testing"

func TestPlayTargetRecord(t *testing.T) {
	t.Run("Describe with album", func(t *testing.T) {
		r := PlayTargetRecord{Title: "Song A", Artist: "Artist X", Album: "Album Z"}
		want := `"Song A" by Artist X from album "Album Z"`
		if got := r.Describe(); got != want {
			t.Errorf("Describe() = %s, want %s", got, want)
		}
	})

	t.Run("Describe without album", func(t *testing.T) {
		r := PlayTargetRecord{Title: "Song A", Artist: "Artist X"}
		want := `"Song A" by Artist X`
		if got := r.Describe(); got != want {
			t.Errorf("Describe() = %s, want %s", got, want)
		}
	})

	t.Run("Clamped", func(t *testing.T) {
		if !(PlayTargetRecord{RequestedCount: 1500, PlayCount: 1000}).Clamped() {
			t.Error("expected clamped record")
		}
		if (PlayTargetRecord{RequestedCount: 3, PlayCount: 3}).Clamped() {
			t.Error("expected unclamped record")
		}
		if (PlayTargetRecord{RequestedCount: -1, Skip: true}).Clamped() {
			t.Error("skipped record is never clamped")
		}
	})
}

func TestDecision(t *testing.T) {
	tt := []struct {
		label string
		want  Decision
	}{
		{"Continue", DecisionContinue},
		{"Skip", DecisionSkip},
		{"Stop", DecisionStop},
		{"", DecisionStop},
		{"whatever", DecisionStop},
	}

	for _, tc := range tt {
		t.Run(tc.label, func(t *testing.T) {
			if got := ParseDecision(tc.label); got != tc.want {
				t.Errorf("ParseDecision(%q) = %v, want %v", tc.label, got, tc.want)
			}
		})
	}
}

func TestReplayRun(t *testing.T) {
	t.Run("Finish completed", func(t *testing.T) {
		run := NewReplayRun(1, "plays.csv")
		run.Finish(RunStatistics{PlaysAdded: 4})

		if run.Status() != RunStatusCompleted {
			t.Errorf("expected completed, got %s", run.Status())
		}
		if run.FinishedAt() == nil {
			t.Error("expected finished timestamp")
		}
		if run.Stats().PlaysAdded != 4 {
			t.Errorf("expected 4 plays, got %d", run.Stats().PlaysAdded)
		}
	})

	t.Run("Finish stopped", func(t *testing.T) {
		run := NewReplayRun(1, "plays.csv")
		run.Finish(RunStatistics{Stopped: true})

		if run.Status() != RunStatusStopped {
			t.Errorf("expected stopped, got %s", run.Status())
		}
	})

	t.Run("Validate", func(t *testing.T) {
		if err := NewReplayRun(1, "").Validate(); err == nil {
			t.Error("expected error for empty input path")
		}
		run := NewReplayRun(1, "x.csv")
		run.SetStatus("exploded")
		if err := run.Validate(); err == nil {
			t.Error("expected error for invalid status")
		}
	})
}

func TestPlayEvent(t *testing.T) {
	rec := PlayTargetRecord{Title: "Song A", Artist: "Artist X"}
	track := &LibraryTrack{ID: "ABC123"}
	ev := NewPlayEvent("run-1", 0, 1, rec, PlayAttemptResult{Success: true, Message: "ok", Track: track})

	if ev.TrackID() != "ABC123" {
		t.Errorf("expected track id ABC123, got %s", ev.TrackID())
	}
	if err := ev.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}

	bad := NewPlayEvent("", 0, 0, rec, PlayAttemptResult{})
	if err := bad.Validate(); err == nil {
		t.Error("expected validation error")
	}
}
