package player

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/shared"
	"golang.org/x/time/rate"
)

var _ Player = (*MusicApp)(nil)

// CommandRunner executes a program and returns its stdout, and its stderr on failure.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)

// MusicApp drives a scriptable macOS music application (Music, formerly iTunes) through osascript.
type MusicApp struct {
	app       string
	osascript string
	timeout   time.Duration
	limiter   *rate.Limiter
	run       CommandRunner
	logger    *log.Logger
}

// MusicAppOpts contains configuration options for creating a MusicApp.
type MusicAppOpts struct {
	App               string        // Application name, default "Music"
	Osascript         string        // Path to osascript, default "osascript" on $PATH
	CommandTimeout    time.Duration // Per-command timeout, default 10s
	CommandsPerSecond float64       // Throttle for scripting bridge calls; 0 disables throttling
	Runner            CommandRunner // Defaults to [exec.CommandContext]
	Logger            *log.Logger
}

// NewMusicApp creates a MusicApp with the provided options.
func NewMusicApp(opts MusicAppOpts) *MusicApp {
	if opts.App == "" {
		opts.App = "Music"
	}
	if opts.Osascript == "" {
		opts.Osascript = "osascript"
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = 10 * time.Second
	}
	if opts.Runner == nil {
		opts.Runner = execRunner
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	m := &MusicApp{
		app:       opts.App,
		osascript: opts.Osascript,
		timeout:   opts.CommandTimeout,
		run:       opts.Runner,
		logger:    shared.WithLogger(opts.Logger, "player", opts.App),
	}
	if opts.CommandsPerSecond > 0 {
		m.limiter = rate.NewLimiter(rate.Limit(opts.CommandsPerSecond), 1)
	}
	return m
}

// NewMusicAppFromConfig builds a MusicApp from the [player] config section.
func NewMusicAppFromConfig(cfg shared.PlayerConfig, logger *log.Logger) *MusicApp {
	return NewMusicApp(MusicAppOpts{
		App:               cfg.App,
		Osascript:         cfg.Osascript,
		CommandTimeout:    cfg.CommandTimeout.Duration,
		CommandsPerSecond: cfg.CommandsPerSecond,
		Logger:            logger,
	})
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// script runs one JXA program with the application name prepended to args.
func (m *MusicApp) script(ctx context.Context, name, source string, args ...string) ([]byte, error) {
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", shared.ErrPlayerCommand, name, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	argv := append([]string{"-l", "JavaScript", "-e", source, m.app}, args...)
	m.logger.Debug("osascript", "command", name, "args", args)

	stdout, stderr, err := m.run(ctx, m.osascript, argv...)
	if err != nil {
		return nil, classify(ctx, name, err, string(stderr))
	}
	return bytes.TrimSpace(stdout), nil
}

// classify maps an osascript failure onto the shared error sentinels.
func classify(ctx context.Context, name string, err error, stderr string) error {
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = err.Error()
	}

	switch {
	case errors.Is(err, exec.ErrNotFound):
		return fmt.Errorf("%w: osascript not available: %v", shared.ErrPlayerUnavailable, err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %w", shared.ErrPlayerCommand, name, shared.ErrTimeout)
	case strings.Contains(msg, "track not found"):
		return fmt.Errorf("%w: %s", shared.ErrTrackUnplayable, msg)
	case strings.Contains(msg, "collection not found"):
		return fmt.Errorf("%w: %s", shared.ErrCollectionMissing, msg)
	// -600: application isn't running, -1743: not authorized to send Apple events
	case strings.Contains(msg, "(-600)"), strings.Contains(msg, "(-1743)"), strings.Contains(msg, "Application can't be found"):
		return fmt.Errorf("%w: %s", shared.ErrPlayerUnavailable, msg)
	default:
		return fmt.Errorf("%w: %s: %s", shared.ErrPlayerCommand, name, msg)
	}
}

type status struct {
	Running bool   `json:"running"`
	Version string `json:"version"`
}

func (m *MusicApp) status(ctx context.Context) (*status, error) {
	out, err := m.script(ctx, "status", statusScript)
	if err != nil {
		return nil, err
	}
	var st status
	if err := json.Unmarshal(out, &st); err != nil {
		return nil, fmt.Errorf("%w: invalid status output: %v", shared.ErrPlayerCommand, err)
	}
	return &st, nil
}

// Running reports whether the application is running.
func (m *MusicApp) Running(ctx context.Context) (bool, error) {
	st, err := m.status(ctx)
	if err != nil {
		return false, err
	}
	return st.Running, nil
}

// Version returns the application version, or "" when it is not running.
func (m *MusicApp) Version(ctx context.Context) (string, error) {
	st, err := m.status(ctx)
	if err != nil {
		return "", err
	}
	return st.Version, nil
}

// Activate launches the application.
func (m *MusicApp) Activate(ctx context.Context) error {
	_, err := m.script(ctx, "activate", activateScript)
	return err
}

// Collections returns every playlist name.
func (m *MusicApp) Collections(ctx context.Context) ([]string, error) {
	out, err := m.script(ctx, "collections", collectionsScript)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(out, &names); err != nil {
		return nil, fmt.Errorf("%w: invalid collections output: %v", shared.ErrPlayerCommand, err)
	}
	return names, nil
}

type scriptTrack struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album"`
	Duration float64 `json:"duration"`
}

// Tracks returns up to limit tracks of the named playlist.
func (m *MusicApp) Tracks(ctx context.Context, collection string, limit int) ([]models.LibraryTrack, error) {
	out, err := m.script(ctx, "tracks", tracksScript, collection, strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}

	var raw []scriptTrack
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid tracks output: %v", shared.ErrPlayerCommand, err)
	}

	tracks := make([]models.LibraryTrack, 0, len(raw))
	for _, t := range raw {
		tracks = append(tracks, models.LibraryTrack{
			ID:         t.ID,
			Title:      t.Name,
			Artist:     t.Artist,
			Album:      t.Album,
			Duration:   t.Duration,
			Collection: collection,
		})
	}
	return tracks, nil
}

// Play starts the track with the given persistent ID.
func (m *MusicApp) Play(ctx context.Context, trackID string) error {
	_, err := m.script(ctx, "play", playScript, trackID)
	return err
}

// Stop stops playback.
func (m *MusicApp) Stop(ctx context.Context) error {
	_, err := m.script(ctx, "stop", stopScript)
	return err
}

// SetPosition sets the player position in seconds.
func (m *MusicApp) SetPosition(ctx context.Context, seconds float64) error {
	_, err := m.script(ctx, "position", positionScript, strconv.FormatFloat(seconds, 'f', 3, 64))
	return err
}

// State returns the transport state.
func (m *MusicApp) State(ctx context.Context) (State, error) {
	out, err := m.script(ctx, "state", stateScript)
	if err != nil {
		return StateUnknown, err
	}
	var s string
	if err := json.Unmarshal(out, &s); err != nil {
		return StateUnknown, fmt.Errorf("%w: invalid state output: %v", shared.ErrPlayerCommand, err)
	}

	switch State(s) {
	case StateStopped, StatePlaying, StatePaused:
		return State(s), nil
	default:
		return StateUnknown, nil
	}
}
