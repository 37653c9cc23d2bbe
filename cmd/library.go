package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/playsync/internal/player"
	"github.com/desertthunder/playsync/internal/resolver"
	"github.com/desertthunder/playsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// LibraryCheck walks through every player capability a replay relies on.
//
// Steps run in order and the first failure ends the check.
func (r *Runner) LibraryCheck(ctx context.Context, cmd *cli.Command) error {
	p := r.musicPlayer()
	view := r.libraryView()

	r.writePlainHeader("Library access check")

	step := func(name string, fn func() (string, error)) error {
		detail, err := fn()
		if err != nil {
			r.writePlain("✗ %s: FAILED (%v)\n", name, err)
			return fmt.Errorf("library check failed at %q: %w", name, err)
		}
		r.writePlain("✓ %s: SUCCESS\n", name)
		if detail != "" {
			r.writePlain("%s", detail)
		}
		return nil
	}

	if err := step("Player running", func() (string, error) {
		if err := r.simulator().EnsureRunning(ctx); err != nil {
			return "", err
		}
		version, err := p.Version(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("  Version: %s\n", version), nil
	}); err != nil {
		return err
	}

	if err := step("List collections", func() (string, error) {
		names, err := p.Collections(ctx)
		if err != nil {
			return "", err
		}
		detail := fmt.Sprintf("  Found %d collections\n", len(names))
		for _, name := range names[:min(5, len(names))] {
			detail += fmt.Sprintf("  - %s\n", name)
		}
		return detail, nil
	}); err != nil {
		return err
	}

	var sample string
	if err := step("Find whole library", func() (string, error) {
		alias, tracks, err := view.WholeLibrary(ctx, view.Limit())
		if err != nil {
			return "", err
		}
		if len(tracks) == 0 {
			return "", fmt.Errorf("%w: %q is empty", shared.ErrTrackNotFound, alias)
		}
		t := tracks[0]
		sample = t.ID
		return fmt.Sprintf("  Collection: %s (%d tracks inspected)\n  Sample: %q by %s, album %q, %.0fs, id %s\n",
			alias, len(tracks), t.Title, t.Artist, t.Album, t.Duration, t.ID), nil
	}); err != nil {
		return err
	}

	if !cmd.Bool("play") {
		return nil
	}

	return step("Play sample track", func() (string, error) {
		defer p.Stop(context.WithoutCancel(ctx))

		if err := p.Play(ctx, sample); err != nil {
			return "", err
		}
		r.sleep(ctx, time.Second)

		state, err := p.State(ctx)
		if err != nil {
			return "", err
		}
		if state != player.StatePlaying {
			return "", fmt.Errorf("%w: state is %s", shared.ErrNotPlaying, state)
		}
		return "", nil
	})
}

// LibrarySearch resolves a title and artist the way a replay would and lists the candidates.
func (r *Runner) LibrarySearch(ctx context.Context, cmd *cli.Command) error {
	q := resolver.Query{Title: cmd.String("title"), Artist: cmd.String("artist")}
	view := r.libraryView()

	r.logger.Info("searching library", "title", q.Title, "artist", q.Artist, "limit", view.Limit())
	res := resolver.Search(view.Enumerate(ctx), q)

	r.writePlain("Inspected %d tracks\n", res.Inspected)
	if !res.Found {
		r.writePlain("✗ No match for %q by %s\n", q.Title, q.Artist)
		return nil
	}

	m := res.Match
	r.writePlain("✓ Match (%s): %q by %s, album %q, id %s\n", m.Kind, m.Track.Title, m.Track.Artist, m.Track.Album, m.Track.ID)

	if len(res.Candidates) > 0 {
		r.writePlainln("Candidates:")
		for i, t := range res.Candidates[:min(5, len(res.Candidates))] {
			r.writePlain("  %d. %q by %s (%s)\n", i+1, t.Title, t.Artist, t.Collection)
		}
	}
	return nil
}
