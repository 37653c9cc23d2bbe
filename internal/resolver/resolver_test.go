package resolver

import (
	"slices"
	"testing"

	"github.com/desertthunder/playsync/internal/models"
	tu "github.com/desertthunder/playsync/internal/testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		library  []models.LibraryTrack
		query    Query
		wantID   string
		wantKind models.MatchKind
		found    bool
	}{
		{
			name:     "exact title",
			library:  []models.LibraryTrack{tu.Track("1", "Song A", "Artist X")},
			query:    Query{Title: "Song A", Artist: "Artist X"},
			wantID:   "1",
			wantKind: models.MatchExact,
			found:    true,
		},
		{
			name:     "exact is case insensitive",
			library:  []models.LibraryTrack{tu.Track("1", "SONG a", "artist x")},
			query:    Query{Title: "Song A", Artist: "Artist X"},
			wantID:   "1",
			wantKind: models.MatchExact,
			found:    true,
		},
		{
			name: "exact wins over earlier substring",
			library: []models.LibraryTrack{
				tu.Track("1", "Song A (Remastered 2009)", "Artist X"),
				tu.Track("2", "Song A", "Artist X"),
			},
			query:    Query{Title: "Song A", Artist: "Artist X"},
			wantID:   "2",
			wantKind: models.MatchExact,
			found:    true,
		},
		{
			name: "first substring candidate wins ties",
			library: []models.LibraryTrack{
				tu.Track("1", "Other", "Artist X"),
				tu.Track("2", "Song A - Live", "Artist X"),
				tu.Track("3", "Song A - Demo", "Artist X"),
			},
			query:    Query{Title: "Song A", Artist: "Artist X"},
			wantID:   "2",
			wantKind: models.MatchSubstring,
			found:    true,
		},
		{
			name:     "query longer than library title",
			library:  []models.LibraryTrack{tu.Track("1", "Hey Jude", "The Beatles")},
			query:    Query{Title: "Hey Jude - Remastered 2015", Artist: "Beatles"},
			wantID:   "1",
			wantKind: models.MatchSubstring,
			found:    true,
		},
		{
			name:    "title matches but artist does not",
			library: []models.LibraryTrack{tu.Track("1", "Song A", "Someone Else")},
			query:   Query{Title: "Song A", Artist: "Artist X"},
			found:   false,
		},
		{
			name:    "nothing qualifies",
			library: []models.LibraryTrack{tu.Track("1", "Song A", "Artist X")},
			query:   Query{Title: "Unknown Tune", Artist: "Nobody"},
			found:   false,
		},
		{
			name:  "empty library",
			query: Query{Title: "Song A", Artist: "Artist X"},
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Resolve(slices.Values(tt.library), tt.query)
			if found != tt.found {
				t.Fatalf("found = %v, want %v", found, tt.found)
			}
			if !found {
				if got.Kind != models.MatchNone {
					t.Errorf("expected MatchNone, got %v", got.Kind)
				}
				return
			}
			if got.Track.ID != tt.wantID {
				t.Errorf("track = %s, want %s", got.Track.ID, tt.wantID)
			}
			if got.Kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", got.Kind, tt.wantKind)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	t.Run("exact match short-circuits", func(t *testing.T) {
		consumed := 0
		seq := func(yield func(models.LibraryTrack) bool) {
			for _, tr := range []models.LibraryTrack{
				tu.Track("1", "Song A", "Artist X"),
				tu.Track("2", "Song A", "Artist X"),
			} {
				consumed++
				if !yield(tr) {
					return
				}
			}
		}

		res := Search(seq, Query{Title: "Song A", Artist: "Artist X"})
		if res.Match.Track.ID != "1" {
			t.Errorf("expected track 1, got %s", res.Match.Track.ID)
		}
		if consumed != 1 || res.Inspected != 1 {
			t.Errorf("expected a single track consumed, got %d (inspected %d)", consumed, res.Inspected)
		}
	})

	t.Run("collects every qualifying candidate", func(t *testing.T) {
		library := []models.LibraryTrack{
			tu.Track("1", "Song A - Live", "Artist X"),
			tu.Track("2", "Nope", "Artist X"),
			tu.Track("3", "Song A - Demo", "Artist X & Friends"),
		}

		res := Search(slices.Values(library), Query{Title: "Song A", Artist: "Artist X"})
		if len(res.Candidates) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(res.Candidates))
		}
		if res.Inspected != 3 {
			t.Errorf("expected 3 inspected, got %d", res.Inspected)
		}
		if res.Match.Kind != models.MatchSubstring || res.Match.Track.ID != "1" {
			t.Errorf("unexpected match: %+v", res.Match)
		}
	})
}

func TestMatches(t *testing.T) {
	tr := tu.Track("1", "Bohemian Rhapsody", "Queen")

	if !Matches(tr, Query{Title: "bohemian", Artist: "QUEEN"}) {
		t.Error("expected partial title to match")
	}
	if Matches(tr, Query{Title: "Bohemian Rhapsody", Artist: "Freddie"}) {
		t.Error("expected artist mismatch to fail")
	}
}
