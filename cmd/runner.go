package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playsync/internal/library"
	"github.com/desertthunder/playsync/internal/playback"
	"github.com/desertthunder/playsync/internal/player"
	"github.com/desertthunder/playsync/internal/repositories"
	"github.com/desertthunder/playsync/internal/shared"
	"github.com/desertthunder/playsync/internal/tasks"
	"github.com/desertthunder/playsync/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	player     player.Player
	sleep      playback.Sleeper
	logger     *log.Logger
	input      *os.File
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Player     player.Player    // Built from the [player] config section when nil
	Sleep      playback.Sleeper // Defaults to [playback.Sleep]
	Logger     *log.Logger
	Input      *os.File
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Sleep == nil {
		opts.Sleep = playback.Sleep
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		player:     opts.Player,
		sleep:      opts.Sleep,
		logger:     opts.Logger,
		input:      opts.Input,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		replayCommand, prepareCommand, libraryCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads the configuration named by --config and applies the log level.
//
// A missing file at the default path keeps the defaults; a missing file that was asked for is an error.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if path != "" {
		r.configPath = path
	}

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else if cmd.IsSet("config") {
		return ctx, fmt.Errorf("%w: %s", shared.ErrMissingConfig, r.configPath)
	}

	if err := shared.ConfigureLogLevel(r.logger, r.config.Log.Level); err != nil {
		r.logger.Warn("ignoring log level", "error", err)
	}
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// musicPlayer returns the injected player or builds the scripting bridge from config.
func (r *Runner) musicPlayer() player.Player {
	if r.player == nil {
		r.player = player.NewMusicAppFromConfig(r.config.Player, shared.WithLogger(r.logger, "component", "player"))
	}
	return r.player
}

func (r *Runner) libraryView() *library.View {
	return library.NewView(r.musicPlayer(), r.config.Library, shared.WithLogger(r.logger, "component", "library"))
}

func (r *Runner) simulator() *playback.Simulator {
	return playback.NewSimulator(playback.SimulatorOpts{
		Player: r.musicPlayer(),
		Config: playback.ConfigFrom(r.config.Playback),
		Sleep:  r.sleep,
		Logger: shared.WithLogger(r.logger, "component", "playback"),
	})
}

// openJournal opens the journal database. It returns a nil journal when journaling is disabled.
func (r *Runner) openJournal() (*repositories.Journal, func(), error) {
	if !r.config.Journal.Enabled {
		return nil, func() {}, nil
	}

	db, err := shared.OpenJournal(r.config.Journal)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to open journal: %w", err)
	}
	return repositories.NewJournal(db), func() { db.Close() }, nil
}

func (r *Runner) engine(decider tasks.Decider, journal *repositories.Journal) *tasks.ReplayEngine {
	opts := tasks.ReplayEngineOpts{
		Library:   r.libraryView(),
		Simulator: r.simulator(),
		Decider:   decider,
		Policy:    tasks.PolicyFrom(r.config.Replay),
		Sleep:     r.sleep,
		Logger:    shared.WithLogger(r.logger, "component", "replay"),
	}
	if journal != nil {
		opts.Journal = journal
	}
	return tasks.NewReplayEngine(opts)
}

func (r *Runner) decider(yes bool) tasks.Decider {
	return ui.NewDecider(r.input, r.output, yes, shared.WithLogger(r.logger, "component", "checkpoint"))
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

