// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/player"
	"github.com/desertthunder/playsync/internal/shared"
)

// Collection is a named list of tracks served by [FakePlayer].
type Collection struct {
	Name   string
	Tracks []models.LibraryTrack
}

// FakePlayer is an in-memory [player.Player] that records every call.
//
// Errs fails a method unconditionally (keys: running, activate, version, collections, tracks,
// play, stop, position, state). PlayErrs is consumed one entry per Play call, nil meaning success.
// Broken fails Tracks for individual collections. StallPlays makes that many successful Play calls
// leave the transport stopped.
type FakePlayer struct {
	NotRunning bool
	AppVersion string
	Errs       map[string]error
	PlayErrs   []error
	Broken     map[string]error
	StallPlays int

	mu          sync.Mutex
	collections []Collection
	calls       []string
	state       player.State
	position    float64
	plays       map[string]int
}

var _ player.Player = (*FakePlayer)(nil)

// NewFakePlayer creates a running, stopped FakePlayer serving the given collections in order.
func NewFakePlayer(collections ...Collection) *FakePlayer {
	return &FakePlayer{
		AppVersion:  "1.0.0",
		Errs:        map[string]error{},
		Broken:      map[string]error{},
		collections: collections,
		state:       player.StateStopped,
		plays:       map[string]int{},
	}
}

// Track builds a [models.LibraryTrack] with a 200 second duration.
func Track(id, title, artist string) models.LibraryTrack {
	return models.LibraryTrack{ID: id, Title: title, Artist: artist, Duration: 200}
}

func (f *FakePlayer) record(format string, args ...any) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	name, _, _ := strings.Cut(format, ":")
	return f.Errs[name]
}

func (f *FakePlayer) Running(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("running"); err != nil {
		return false, err
	}
	return !f.NotRunning, nil
}

func (f *FakePlayer) Activate(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("activate"); err != nil {
		return err
	}
	f.NotRunning = false
	return nil
}

func (f *FakePlayer) Version(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("version"); err != nil {
		return "", err
	}
	return f.AppVersion, nil
}

func (f *FakePlayer) Collections(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("collections"); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.collections))
	for _, c := range f.collections {
		names = append(names, c.Name)
	}
	return names, nil
}

func (f *FakePlayer) Tracks(ctx context.Context, collection string, limit int) ([]models.LibraryTrack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("tracks:%s", collection); err != nil {
		return nil, err
	}
	if err := f.Broken[collection]; err != nil {
		return nil, err
	}

	for _, c := range f.collections {
		if c.Name != collection {
			continue
		}
		tracks := make([]models.LibraryTrack, 0, len(c.Tracks))
		for _, t := range c.Tracks {
			if limit > 0 && len(tracks) == limit {
				break
			}
			t.Collection = c.Name
			tracks = append(tracks, t)
		}
		return tracks, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrCollectionMissing, collection)
}

func (f *FakePlayer) Play(ctx context.Context, trackID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("play:%s", trackID); err != nil {
		return err
	}
	if len(f.PlayErrs) > 0 {
		err := f.PlayErrs[0]
		f.PlayErrs = f.PlayErrs[1:]
		if err != nil {
			return err
		}
	}
	if !f.known(trackID) {
		return fmt.Errorf("%w: %s", shared.ErrTrackUnplayable, trackID)
	}
	if f.StallPlays > 0 {
		f.StallPlays--
		return nil
	}

	f.state = player.StatePlaying
	f.position = 0
	f.plays[trackID]++
	return nil
}

func (f *FakePlayer) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("stop"); err != nil {
		return err
	}
	f.state = player.StateStopped
	return nil
}

func (f *FakePlayer) SetPosition(ctx context.Context, seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("position:%.1f", seconds); err != nil {
		return err
	}
	f.position = seconds
	return nil
}

func (f *FakePlayer) State(ctx context.Context) (player.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("state"); err != nil {
		return player.StateUnknown, err
	}
	return f.state, nil
}

func (f *FakePlayer) known(id string) bool {
	for _, c := range f.collections {
		for _, t := range c.Tracks {
			if t.ID == id {
				return true
			}
		}
	}
	return false
}

// Calls returns the recorded calls, e.g. "play:A1", "position:195.0", "stop".
func (f *FakePlayer) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Count returns how many recorded calls start with prefix.
func (f *FakePlayer) Count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Plays returns how many times the track started playing.
func (f *FakePlayer) Plays(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.plays[id]
}

// CurrentState returns the transport state without recording a call.
func (f *FakePlayer) CurrentState() player.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// ScriptedDecider answers checkpoints from a fixed list, then repeats Default.
type ScriptedDecider struct {
	Answers []models.Decision
	Default models.Decision
	Err     error

	Seen []models.Checkpoint
}

func (d *ScriptedDecider) Decide(ctx context.Context, cp models.Checkpoint) (models.Decision, error) {
	d.Seen = append(d.Seen, cp)
	if d.Err != nil {
		return models.DecisionStop, d.Err
	}
	if len(d.Answers) == 0 {
		return d.Default, nil
	}
	answer := d.Answers[0]
	d.Answers = d.Answers[1:]
	return answer, nil
}

// Sleeps records requested pauses without waiting.
type Sleeps struct {
	mu        sync.Mutex
	Durations []time.Duration
}

func (s *Sleeps) Sleep(ctx context.Context, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Durations = append(s.Durations, d)
}

// Total returns the sum of all recorded pauses.
func (s *Sleeps) Total() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total time.Duration
	for _, d := range s.Durations {
		total += d
	}
	return total
}

// NoSleep is a sleeper that returns immediately.
func NoSleep(context.Context, time.Duration) {}

// Logger returns a logger that discards its output.
func Logger() *log.Logger {
	return shared.NewLogger(io.Discard)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// MustWriteFile writes content to path, failing the test on error.
func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
