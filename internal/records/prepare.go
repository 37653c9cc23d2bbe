package records

import (
	"math"
	"slices"
	"time"

	"github.com/desertthunder/playsync/internal/models"
)

// PrepareMode selects how [Prepare] reduces play counts.
type PrepareMode int

const (
	// ModeCap lowers every count above the maximum to the maximum.
	ModeCap PrepareMode = iota
	// ModeScale multiplies every count by maxPlays/highestCount, keeping at least one play.
	ModeScale
)

// PrepareOptions configures [Prepare].
type PrepareOptions struct {
	Mode     PrepareMode
	MaxPlays int // Ceiling for the prepared counts
	Limit    int // Keep at most this many records; 0 keeps all
}

// PrepareResult holds the prepared records and the totals reported to the operator.
type PrepareResult struct {
	Records        []models.PlayTargetRecord
	Dropped        int // Records discarded because their count was invalid
	OriginalPlays  int
	PreparedPlays  int
	HasOriginalCol bool // Scale mode, or at least one prepared count differs from its original
}

// Reduction is the share of plays removed by preparation, in percent.
func (r PrepareResult) Reduction() float64 {
	if r.OriginalPlays == 0 {
		return 0
	}
	return (1 - float64(r.PreparedPlays)/float64(r.OriginalPlays)) * 100
}

// EstimatedDuration is the time a replay of the prepared records should take.
func (r PrepareResult) EstimatedDuration(perPlay time.Duration) time.Duration {
	return time.Duration(r.PreparedPlays) * perPlay
}

// Prepare sorts records by descending play count, caps or scales the counts and truncates the list.
//
// On return each record's RequestedCount holds its original count and PlayCount the prepared one.
// Skipped records are dropped.
func Prepare(in []models.PlayTargetRecord, opts PrepareOptions) PrepareResult {
	result := PrepareResult{HasOriginalCol: opts.Mode == ModeScale}

	recs := make([]models.PlayTargetRecord, 0, len(in))
	for _, rec := range in {
		if rec.Skip {
			result.Dropped++
			continue
		}
		rec.PlayCount = rec.RequestedCount
		recs = append(recs, rec)
	}

	SortByPlayCount(recs)

	if len(recs) > 0 && opts.MaxPlays > 0 {
		switch opts.Mode {
		case ModeScale:
			factor := float64(opts.MaxPlays) / float64(recs[0].RequestedCount)
			for i := range recs {
				recs[i].PlayCount = max(1, int(math.RoundToEven(float64(recs[i].RequestedCount)*factor)))
			}
		default:
			for i := range recs {
				recs[i].PlayCount = min(recs[i].RequestedCount, opts.MaxPlays)
			}
		}
	}

	if opts.Limit > 0 && len(recs) > opts.Limit {
		recs = recs[:opts.Limit]
	}

	for _, rec := range recs {
		result.OriginalPlays += rec.RequestedCount
		result.PreparedPlays += rec.PlayCount
		if rec.PlayCount != rec.RequestedCount {
			result.HasOriginalCol = true
		}
	}
	result.Records = recs

	return result
}

// SortByPlayCount orders records by descending RequestedCount, keeping file order for ties.
func SortByPlayCount(recs []models.PlayTargetRecord) {
	slices.SortStableFunc(recs, func(a, b models.PlayTargetRecord) int {
		return b.RequestedCount - a.RequestedCount
	})
}
