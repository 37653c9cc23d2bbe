// Package player defines the scriptable media player that a replay drives, and
// implements it for macOS Music through osascript (JavaScript for Automation).
//
// The player is a single, globally shared instance with one transport state.
// Every call may fail; errors wrap one of the shared sentinels:
//   - [shared.ErrPlayerUnavailable] : the player cannot be reached or automated at all
//   - [shared.ErrTrackUnplayable] : the referenced track no longer exists
//   - [shared.ErrCollectionMissing] : no collection with the requested name
//   - [shared.ErrPlayerCommand] : any other command failure (possibly with [shared.ErrTimeout])
package player

import (
	"context"

	"github.com/desertthunder/playsync/internal/models"
)

// State is the player's transport state.
type State string

const (
	StateStopped State = "stopped"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	StateUnknown State = "unknown"
)

// Player is the command/query surface of the external media player.
type Player interface {
	// Running reports whether the player process is up.
	Running(ctx context.Context) (bool, error)

	// Activate launches the player or brings it to the foreground.
	Activate(ctx context.Context) error

	// Version returns the player's version string.
	Version(ctx context.Context) (string, error)

	// Collections lists the names of all top-level collections (playlists), in the player's order.
	Collections(ctx context.Context) ([]string, error)

	// Tracks enumerates up to limit tracks of the named collection; limit <= 0 means all.
	Tracks(ctx context.Context, collection string, limit int) ([]models.LibraryTrack, error)

	// Play starts playback of the track with the given stable ID.
	Play(ctx context.Context, trackID string) error

	// Stop stops playback.
	Stop(ctx context.Context) error

	// SetPosition moves the playhead of the current track, in seconds.
	SetPosition(ctx context.Context, seconds float64) error

	// State returns the current transport state.
	State(ctx context.Context) (State, error)
}
