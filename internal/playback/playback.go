// Package playback registers plays on the player by seeking near the end of a track.
//
// The player counts a play when a track reaches its natural end, so instead of playing the
// full duration the simulator starts the track, jumps to a few seconds before the end and
// waits for it to finish.
package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/player"
	"github.com/desertthunder/playsync/internal/shared"
)

// Config holds the waits of a single simulated play.
type Config struct {
	SettleDelay   time.Duration // after starting playback, before checking the state
	StopDelay     time.Duration // after the initial stop
	StopSettle    time.Duration // after the final stop
	ActivateDelay time.Duration // after launching the player
	EndBuffer     time.Duration // distance from the end of the track to seek to
	PostPlayWait  time.Duration // extra wait past the end of the track
}

// ConfigFrom converts the [playback] config section.
func ConfigFrom(c shared.PlaybackConfig) Config {
	return Config{
		SettleDelay:   c.SettleDelay.Duration,
		StopDelay:     c.StopDelay.Duration,
		StopSettle:    c.StopSettle.Duration,
		ActivateDelay: c.ActivateDelay.Duration,
		EndBuffer:     c.EndBuffer.Duration,
		PostPlayWait:  c.PostPlayWait.Duration,
	}
}

// PlayDuration is the wall time one successful play takes, excluding player latency.
func (c Config) PlayDuration() time.Duration {
	return c.StopDelay + c.SettleDelay + c.EndBuffer + c.PostPlayWait + c.StopSettle
}

// Sleeper pauses for d. Implementations may return early when ctx is done.
type Sleeper func(ctx context.Context, d time.Duration)

// Sleep is the real [Sleeper].
func Sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Classify reports whether a playback error is worth retrying.
//
// A nil error has nothing to retry. An unreachable player, a vanished track and a cancelled
// run are final; everything else is treated as a transient automation hiccup.
func Classify(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, shared.ErrPlayerUnavailable),
		errors.Is(err, shared.ErrTrackUnplayable),
		errors.Is(err, context.Canceled):
		return false
	default:
		return true
	}
}

// Simulator drives one play at a time. It never returns raw player errors; see [Simulator.Play].
type Simulator struct {
	player player.Player
	config Config
	sleep  Sleeper
	logger *log.Logger
}

// SimulatorOpts contains configuration options for creating a Simulator.
type SimulatorOpts struct {
	Player player.Player
	Config Config
	Sleep  Sleeper // Defaults to [Sleep]
	Logger *log.Logger
}

// NewSimulator creates a Simulator with the provided options.
func NewSimulator(opts SimulatorOpts) *Simulator {
	if opts.Sleep == nil {
		opts.Sleep = Sleep
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Simulator{
		player: opts.Player,
		config: opts.Config,
		sleep:  opts.Sleep,
		logger: shared.WithLogger(opts.Logger, "component", "playback"),
	}
}

// EnsureRunning launches the player when it is not running.
func (s *Simulator) EnsureRunning(ctx context.Context) error {
	running, err := s.player.Running(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrPlayerUnavailable, err)
	}
	if running {
		return nil
	}

	s.logger.Info("launching player")
	if err := s.player.Activate(ctx); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrPlayerUnavailable, err)
	}
	s.sleep(ctx, s.config.ActivateDelay)
	return nil
}

// Reset stops playback and waits d. Failures are logged.
func (s *Simulator) Reset(ctx context.Context, d time.Duration) {
	s.stop(ctx)
	s.sleep(ctx, d)
}

// Play registers one play of track and reports the outcome.
//
// The sequence is: stop, play, settle, confirm the player is playing (starting once more if not),
// seek to max(1, duration - end buffer), wait out the end buffer plus the post-play wait, stop.
// Any failure stops the player and becomes an unsuccessful result.
func (s *Simulator) Play(ctx context.Context, track models.LibraryTrack) models.PlayAttemptResult {
	logger := s.logger.With("track", track.Title, "artist", track.Artist)

	if err := ctx.Err(); err != nil {
		return s.fail(ctx, logger, err)
	}

	s.stop(ctx)
	s.sleep(ctx, s.config.StopDelay)

	if err := s.start(ctx, logger, track); err != nil {
		return s.fail(ctx, logger, err)
	}

	target := SeekTarget(track.Duration, s.config.EndBuffer)
	logger.Debug("seeking near end", "position", target, "duration", track.Duration)
	if err := s.player.SetPosition(ctx, target); err != nil {
		return s.fail(ctx, logger, err)
	}

	s.sleep(ctx, s.config.EndBuffer+s.config.PostPlayWait)

	if err := s.player.Stop(ctx); err != nil {
		return s.fail(ctx, logger, err)
	}
	s.sleep(ctx, s.config.StopSettle)

	played := track
	return models.PlayAttemptResult{
		Success:     true,
		Recoverable: true,
		Message:     fmt.Sprintf("Played %q by %s", track.Title, track.Artist),
		Track:       &played,
	}
}

// start begins playback and checks the transport state, retrying the start once.
func (s *Simulator) start(ctx context.Context, logger *log.Logger, track models.LibraryTrack) error {
	for attempt := 1; attempt <= 2; attempt++ {
		if err := s.player.Play(ctx, track.ID); err != nil {
			return err
		}
		s.sleep(ctx, s.config.SettleDelay)

		state, err := s.player.State(ctx)
		if err != nil {
			return err
		}
		if state == player.StatePlaying {
			return nil
		}
		logger.Warn("track did not start playing", "state", state, "attempt", attempt)
	}
	return fmt.Errorf("%w: %q", shared.ErrNotPlaying, track.Title)
}

func (s *Simulator) stop(ctx context.Context) {
	if err := s.player.Stop(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn("could not stop playback", "error", err)
	}
}

func (s *Simulator) fail(ctx context.Context, logger *log.Logger, err error) models.PlayAttemptResult {
	logger.Error("playback failed", "error", err)
	s.stop(ctx)
	return models.PlayAttemptResult{
		Success:     false,
		Recoverable: Classify(err),
		Message:     fmt.Sprintf("Error playing track: %v", err),
	}
}

// SeekTarget returns the position, in seconds, that leaves buffer before the end of the track.
// It is never earlier than one second.
func SeekTarget(duration float64, buffer time.Duration) float64 {
	return math.Max(1, duration-buffer.Seconds())
}
