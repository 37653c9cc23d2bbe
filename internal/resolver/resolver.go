// Package resolver matches a (title, artist) query against library tracks.
//
// Matching is greedy and order dependent: a track qualifies when its title and artist each
// contain, or are contained in, the query's (case-insensitive). The first qualifying track whose
// title equals the query title wins immediately; otherwise the earliest qualifying track does.
package resolver

import (
	"iter"
	"strings"

	"github.com/desertthunder/playsync/internal/models"
)

// Query is the text being resolved.
type Query struct {
	Title  string
	Artist string
}

// Result carries the selected match and every qualifying candidate seen before the search ended.
type Result struct {
	Match      models.MatchCandidate
	Found      bool
	Candidates []models.LibraryTrack
	Inspected  int
}

// Resolve returns the best match for q among tracks, and false when no track qualifies.
func Resolve(tracks iter.Seq[models.LibraryTrack], q Query) (models.MatchCandidate, bool) {
	res := Search(tracks, q)
	return res.Match, res.Found
}

// Search walks tracks in order, stopping at the first exact title match.
func Search(tracks iter.Seq[models.LibraryTrack], q Query) Result {
	title := strings.ToLower(q.Title)
	artist := strings.ToLower(q.Artist)

	var res Result
	for t := range tracks {
		res.Inspected++

		name := strings.ToLower(t.Title)
		if !overlaps(name, title) || !overlaps(strings.ToLower(t.Artist), artist) {
			continue
		}

		res.Candidates = append(res.Candidates, t)
		if name == title {
			res.Match = models.MatchCandidate{Track: t, Kind: models.MatchExact}
			res.Found = true
			return res
		}
	}

	if len(res.Candidates) > 0 {
		res.Match = models.MatchCandidate{Track: res.Candidates[0], Kind: models.MatchSubstring}
		res.Found = true
	}
	return res
}

// Matches reports whether t qualifies for q.
func Matches(t models.LibraryTrack, q Query) bool {
	return overlaps(strings.ToLower(t.Title), strings.ToLower(q.Title)) &&
		overlaps(strings.ToLower(t.Artist), strings.ToLower(q.Artist))
}

// overlaps reports bidirectional containment. Empty strings are contained in everything.
func overlaps(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
