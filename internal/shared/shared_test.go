package shared

import (
	"bytes"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNormalizeTrackKey(t *testing.T) {
	tc := []struct {
		name   string
		title  string
		artist string
		want   string
	}{
		{
			name:   "basic normalization",
			title:  "Song Title",
			artist: "Artist Name",
			want:   "song title|artist name",
		},
		{
			name:   "extra whitespace",
			title:  "  Song   Title  ",
			artist: "  Artist   Name  ",
			want:   "song title|artist name",
		},
		{
			name:   "mixed case",
			title:  "SoNg TiTlE",
			artist: "ArTiSt NaMe",
			want:   "song title|artist name",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTrackKey(tt.title, tt.artist)
			if got != tt.want {
				t.Errorf("NormalizeTrackKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	tc := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{42 * time.Second, "42s"},
		{61 * time.Second, "1m 1s"},
		{3600 * time.Second, "1h 0s"},
		{3723 * time.Second, "1h 2m 3s"},
		{-5 * time.Second, "0s"},
	}

	for _, tt := range tc {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatElapsed(tt.in); got != tt.want {
				t.Errorf("FormatElapsed(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestConfigureLogLevel(t *testing.T) {
	t.Run("debug", func(t *testing.T) {
		logger := NewLogger(&bytes.Buffer{})
		if err := ConfigureLogLevel(logger, "debug"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", logger.GetLevel())
		}
	})

	t.Run("empty keeps level", func(t *testing.T) {
		logger := NewLogger(&bytes.Buffer{})
		before := logger.GetLevel()
		if err := ConfigureLogLevel(logger, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logger.GetLevel() != before {
			t.Errorf("level changed to %v", logger.GetLevel())
		}
	})

	t.Run("unknown", func(t *testing.T) {
		logger := NewLogger(&bytes.Buffer{})
		if err := ConfigureLogLevel(logger, "loud"); err == nil {
			t.Error("expected error for unknown level")
		}
	})
}
