package library

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/shared"
	tu "github.com/desertthunder/playsync/internal/testing"
)

func collect(v *View) []models.LibraryTrack {
	var out []models.LibraryTrack
	for t := range v.Enumerate(context.Background()) {
		out = append(out, t)
	}
	return out
}

func ids(tracks []models.LibraryTrack) []string {
	out := make([]string, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, t.ID)
	}
	return out
}

func manyTracks(prefix string, n int) []models.LibraryTrack {
	tracks := make([]models.LibraryTrack, 0, n)
	for i := range n {
		tracks = append(tracks, tu.Track(fmt.Sprintf("%s%d", prefix, i), "Song", "Artist"))
	}
	return tracks
}

func TestViewEnumerate(t *testing.T) {
	t.Run("prefers a whole-library alias", func(t *testing.T) {
		p := tu.NewFakePlayer(
			tu.Collection{Name: "Road Trip", Tracks: []models.LibraryTrack{tu.Track("R1", "Drive", "Band")}},
			tu.Collection{Name: "Music", Tracks: []models.LibraryTrack{tu.Track("M1", "Drive", "Band"), tu.Track("M2", "Fly", "Band")}},
		)
		v := NewView(p, shared.LibraryConfig{}, tu.Logger())

		got := ids(collect(v))
		if len(got) != 2 || got[0] != "M1" || got[1] != "M2" {
			t.Errorf("expected tracks from Music, got %v", got)
		}
		if p.Count("collections") != 0 {
			t.Error("expected no fallback collection listing")
		}
	})

	t.Run("aliases are tried in order", func(t *testing.T) {
		p := tu.NewFakePlayer(
			tu.Collection{Name: "Songs", Tracks: []models.LibraryTrack{tu.Track("S1", "a", "b")}},
			tu.Collection{Name: "Library", Tracks: []models.LibraryTrack{tu.Track("L1", "a", "b")}},
		)
		v := NewView(p, shared.LibraryConfig{}, tu.Logger())

		alias, tracks, err := v.WholeLibrary(context.Background(), 0)
		if err != nil {
			t.Fatalf("WholeLibrary() error = %v", err)
		}
		if alias != "Library" {
			t.Errorf("expected Library, got %q", alias)
		}
		if len(tracks) != 1 || tracks[0].Collection != "Library" {
			t.Errorf("unexpected tracks: %+v", tracks)
		}
	})

	t.Run("failing alias is skipped", func(t *testing.T) {
		p := tu.NewFakePlayer(
			tu.Collection{Name: "Library", Tracks: []models.LibraryTrack{tu.Track("L1", "a", "b")}},
			tu.Collection{Name: "Music", Tracks: []models.LibraryTrack{tu.Track("M1", "a", "b")}},
		)
		p.Broken["Library"] = errors.New("boom")
		v := NewView(p, shared.LibraryConfig{}, tu.Logger())

		got := ids(collect(v))
		if len(got) != 1 || got[0] != "M1" {
			t.Errorf("expected M1, got %v", got)
		}
	})

	t.Run("falls back to every collection and skips failures", func(t *testing.T) {
		p := tu.NewFakePlayer(
			tu.Collection{Name: "A", Tracks: []models.LibraryTrack{tu.Track("A1", "a", "b")}},
			tu.Collection{Name: "B", Tracks: []models.LibraryTrack{tu.Track("B1", "a", "b")}},
			tu.Collection{Name: "C", Tracks: []models.LibraryTrack{tu.Track("C1", "a", "b"), tu.Track("A1", "a", "b")}},
		)
		p.Broken["B"] = errors.New("unreadable")
		v := NewView(p, shared.LibraryConfig{}, tu.Logger())

		got := ids(collect(v))
		want := []string{"A1", "C1", "A1"}
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
			}
		}
	})

	t.Run("scan limit truncates", func(t *testing.T) {
		p := tu.NewFakePlayer(tu.Collection{Name: "Library", Tracks: manyTracks("L", 20)})
		v := NewView(p, shared.LibraryConfig{ScanLimit: 5}, tu.Logger())

		if got := collect(v); len(got) != 5 {
			t.Errorf("expected 5 tracks, got %d", len(got))
		}
	})

	t.Run("scan limit spans collections in fallback", func(t *testing.T) {
		p := tu.NewFakePlayer(
			tu.Collection{Name: "A", Tracks: manyTracks("A", 3)},
			tu.Collection{Name: "B", Tracks: manyTracks("B", 3)},
			tu.Collection{Name: "C", Tracks: manyTracks("C", 3)},
		)
		v := NewView(p, shared.LibraryConfig{ScanLimit: 4}, tu.Logger())

		got := ids(collect(v))
		if len(got) != 4 || got[3] != "B0" {
			t.Errorf("expected 4 tracks ending at B0, got %v", got)
		}
		if p.Count("tracks:C") != 0 {
			t.Error("expected collection C not to be read")
		}
	})

	t.Run("breaking early stops player calls", func(t *testing.T) {
		p := tu.NewFakePlayer(
			tu.Collection{Name: "A", Tracks: manyTracks("A", 2)},
			tu.Collection{Name: "B", Tracks: manyTracks("B", 2)},
		)
		v := NewView(p, shared.LibraryConfig{}, tu.Logger())

		for range v.Enumerate(context.Background()) {
			break
		}
		if p.Count("tracks:B") != 0 {
			t.Error("expected collection B not to be read")
		}
	})

	t.Run("collection listing failure yields nothing", func(t *testing.T) {
		p := tu.NewFakePlayer()
		p.Errs["collections"] = shared.ErrPlayerUnavailable
		v := NewView(p, shared.LibraryConfig{}, tu.Logger())

		if got := collect(v); len(got) != 0 {
			t.Errorf("expected no tracks, got %d", len(got))
		}
	})

	t.Run("no alias reports collection missing", func(t *testing.T) {
		v := NewView(tu.NewFakePlayer(), shared.LibraryConfig{Collections: []string{"Nope"}}, tu.Logger())
		if _, _, err := v.WholeLibrary(context.Background(), 0); !errors.Is(err, shared.ErrCollectionMissing) {
			t.Errorf("expected ErrCollectionMissing, got %v", err)
		}
	})
}

func TestNewViewDefaults(t *testing.T) {
	v := NewView(tu.NewFakePlayer(), shared.LibraryConfig{}, nil)
	if v.Limit() != DefaultScanLimit {
		t.Errorf("expected limit %d, got %d", DefaultScanLimit, v.Limit())
	}
	if len(v.aliases) != len(DefaultAliases) {
		t.Errorf("expected default aliases, got %v", v.aliases)
	}
}
