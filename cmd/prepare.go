package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/playsync/internal/formatter"
	"github.com/desertthunder/playsync/internal/playback"
	"github.com/desertthunder/playsync/internal/records"
	"github.com/desertthunder/playsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Prepare writes a reduced copy of a play-count export that is practical to replay.
func (r *Runner) Prepare(ctx context.Context, cmd *cli.Command) error {
	input := cmd.String("input")
	if input == "" {
		input = r.config.Input.Path
	}
	output := cmd.String("output")
	maxPlays := int(cmd.Int("max-plays"))
	limit := int(cmd.Int("limit"))

	if maxPlays <= 0 {
		return fmt.Errorf("%w: --max-plays must be positive", shared.ErrInvalidArgument)
	}
	if limit < 0 {
		return fmt.Errorf("%w: --limit cannot be negative", shared.ErrInvalidArgument)
	}

	recs, err := records.ReadFile(input, records.Options{MaxPlays: r.config.Input.MaxPlaysPerTrack})
	if err != nil {
		return err
	}

	opts := records.PrepareOptions{Mode: records.ModeCap, MaxPlays: maxPlays, Limit: limit}
	if cmd.Bool("scale") {
		opts.Mode = records.ModeScale
	}

	res := records.Prepare(recs, opts)
	if res.Dropped > 0 {
		r.logger.Warn("dropped records with invalid play counts", "count", res.Dropped)
	}

	if err := formatter.WritePreparedCSV(res, output); err != nil {
		return err
	}
	r.logger.Info("prepared play counts", "input", input, "output", output, "tracks", len(res.Records))

	r.writePlainHeader("Prepared " + output)
	r.writePlain("Tracks: %d\n", len(res.Records))
	r.writePlain("%s", formatter.PrepareSummary(res, r.formatEstimate(res.PreparedPlays)))

	if top := int(cmd.Int("top")); top > 0 {
		report := cmd.String("report")
		if err := formatter.WriteTopTracksReport(res.Records, top, report); err != nil {
			return err
		}
		r.writePlain("Top %d tracks written to %s\n", top, report)
	}

	return nil
}

// perPlayDuration is the wall time of one simulated play plus the pause that follows it.
func (r *Runner) perPlayDuration() time.Duration {
	return playback.ConfigFrom(r.config.Playback).PlayDuration() + r.config.Replay.InterPlayDelay.Duration
}

// formatEstimate renders the expected wall time of n plays with the configured pacing.
func (r *Runner) formatEstimate(plays int) string {
	perPlay := r.perPlayDuration()
	return fmt.Sprintf("%s (~%s per play)", shared.FormatElapsed(perPlay*time.Duration(plays)), perPlay)
}
