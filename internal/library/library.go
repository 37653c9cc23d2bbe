// Package library is a read-through view over the player's catalog.
//
// Nothing is indexed or cached: every call to [View.Enumerate] walks the player again,
// so each record is resolved against the library as it is at that moment.
package library

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/player"
	"github.com/desertthunder/playsync/internal/shared"
)

// DefaultAliases are the names a whole-library collection goes by across player versions.
var DefaultAliases = []string{"Library", "Music", "My Music", "All Music", "Songs"}

// DefaultScanLimit bounds the number of tracks inspected per enumeration.
const DefaultScanLimit = 1000

// View enumerates candidate tracks from a [player.Player].
type View struct {
	player  player.Player
	aliases []string
	limit   int
	logger  *log.Logger
}

// NewView creates a View over p. Empty aliases and a non-positive scan limit fall back to the defaults.
func NewView(p player.Player, cfg shared.LibraryConfig, logger *log.Logger) *View {
	aliases := cfg.Collections
	if len(aliases) == 0 {
		aliases = DefaultAliases
	}
	limit := cfg.ScanLimit
	if limit <= 0 {
		limit = DefaultScanLimit
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &View{player: p, aliases: aliases, limit: limit, logger: shared.WithLogger(logger, "component", "library")}
}

// Limit returns the maximum number of tracks a single enumeration yields.
func (v *View) Limit() int { return v.limit }

// WholeLibrary finds the first alias that enumerates successfully and returns its name with up to
// limit of its tracks (limit <= 0 means all of them).
//
// Failures of individual aliases are skipped; [shared.ErrCollectionMissing] is returned when none works.
func (v *View) WholeLibrary(ctx context.Context, limit int) (string, []models.LibraryTrack, error) {
	for _, alias := range v.aliases {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}

		tracks, err := v.player.Tracks(ctx, alias, limit)
		if err != nil {
			if !errors.Is(err, shared.ErrCollectionMissing) {
				v.logger.Debug("collection unavailable", "collection", alias, "error", err)
			}
			continue
		}
		v.logger.Debug("using whole-library collection", "collection", alias, "tracks", len(tracks))
		return alias, tracks, nil
	}
	return "", nil, fmt.Errorf("%w: none of %v", shared.ErrCollectionMissing, v.aliases)
}

// Enumerate lazily yields candidate tracks in the player's order, at most [View.Limit] of them.
//
// A whole-library alias is preferred. Without one, every visible collection is concatenated,
// skipping those that fail to enumerate, so the same track may appear more than once.
// Stopping the iteration early stops further player calls.
func (v *View) Enumerate(ctx context.Context) iter.Seq[models.LibraryTrack] {
	return func(yield func(models.LibraryTrack) bool) {
		if ctx.Err() != nil {
			return
		}
		if alias, tracks, err := v.WholeLibrary(ctx, v.limit); err == nil {
			v.logger.Debug("scanning collection", "collection", alias, "tracks", len(tracks))
			for _, t := range truncate(tracks, v.limit) {
				if !yield(t) {
					return
				}
			}
			return
		}

		v.logger.Info("no whole-library collection found, scanning every collection")
		names, err := v.player.Collections(ctx)
		if err != nil {
			v.logger.Warn("could not list collections", "error", err)
			return
		}

		remaining := v.limit
		for _, name := range names {
			if remaining <= 0 {
				v.logger.Debug("reached scan limit", "limit", v.limit)
				return
			}
			if ctx.Err() != nil {
				return
			}

			tracks, err := v.player.Tracks(ctx, name, remaining)
			if err != nil {
				v.logger.Debug("skipping collection", "collection", name, "error", err)
				continue
			}

			for _, t := range truncate(tracks, remaining) {
				if !yield(t) {
					return
				}
				remaining--
			}
		}
	}
}

func truncate(tracks []models.LibraryTrack, n int) []models.LibraryTrack {
	if n > 0 && len(tracks) > n {
		return tracks[:n]
	}
	return tracks
}
