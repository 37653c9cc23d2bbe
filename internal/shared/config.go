package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Input    InputConfig    `toml:"input"`
	Library  LibraryConfig  `toml:"library"`
	Playback PlaybackConfig `toml:"playback"`
	Replay   ReplayConfig   `toml:"replay"`
	Player   PlayerConfig   `toml:"player"`
	Journal  JournalConfig  `toml:"journal"`
	Log      LogConfig      `toml:"log"`
}

// InputConfig locates the play-count export.
type InputConfig struct {
	Path             string `toml:"path"`
	MaxPlaysPerTrack int    `toml:"max_plays_per_track"`
}

// LibraryConfig controls how the player's catalog is enumerated.
type LibraryConfig struct {
	Collections []string `toml:"collections"`
	ScanLimit   int      `toml:"scan_limit"`
}

// PlaybackConfig holds the waits used while simulating a single play.
type PlaybackConfig struct {
	SettleDelay   Duration `toml:"settle_delay"`
	StopDelay     Duration `toml:"stop_delay"`
	StopSettle    Duration `toml:"stop_settle"`
	ActivateDelay Duration `toml:"activate_delay"`
	EndBuffer     Duration `toml:"end_buffer"`
	PostPlayWait  Duration `toml:"post_play_wait"`
}

// ReplayConfig holds the pacing and failure policy of a replay run.
type ReplayConfig struct {
	InterPlayDelay         Duration `toml:"inter_play_delay"`
	RetryBackoff           Duration `toml:"retry_backoff"`
	MaxConsecutiveFailures int      `toml:"max_consecutive_failures"`
	BetweenRecordsDelay    Duration `toml:"between_records_delay"`
}

// PlayerConfig configures the scripting bridge to the media player.
type PlayerConfig struct {
	App               string   `toml:"app"`
	Osascript         string   `toml:"osascript"`
	CommandTimeout    Duration `toml:"command_timeout"`
	CommandsPerSecond float64  `toml:"commands_per_second"`
}

// JournalConfig contains the optional replay journal database settings.
type JournalConfig struct {
	Enabled      bool   `toml:"enabled"`
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig sets the default log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration wraps [time.Duration] so TOML values like "1.5s" decode directly.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate reports the first out-of-range setting.
func (c *Config) Validate() error {
	if c.Input.MaxPlaysPerTrack <= 0 {
		return fmt.Errorf("%w: input.max_plays_per_track must be positive", ErrInvalidConfig)
	}
	if c.Library.ScanLimit <= 0 {
		return fmt.Errorf("%w: library.scan_limit must be positive", ErrInvalidConfig)
	}
	if c.Replay.MaxConsecutiveFailures <= 0 {
		return fmt.Errorf("%w: replay.max_consecutive_failures must be positive", ErrInvalidConfig)
	}
	if c.Player.CommandsPerSecond < 0 {
		return fmt.Errorf("%w: player.commands_per_second cannot be negative", ErrInvalidConfig)
	}

	durations := map[string]Duration{
		"playback.settle_delay":        c.Playback.SettleDelay,
		"playback.stop_delay":          c.Playback.StopDelay,
		"playback.stop_settle":         c.Playback.StopSettle,
		"playback.activate_delay":      c.Playback.ActivateDelay,
		"playback.end_buffer":          c.Playback.EndBuffer,
		"playback.post_play_wait":      c.Playback.PostPlayWait,
		"replay.inter_play_delay":      c.Replay.InterPlayDelay,
		"replay.retry_backoff":         c.Replay.RetryBackoff,
		"replay.between_records_delay": c.Replay.BetweenRecordsDelay,
		"player.command_timeout":       c.Player.CommandTimeout,
	}
	for name, d := range durations {
		if d.Duration < 0 {
			return fmt.Errorf("%w: %s cannot be negative", ErrInvalidConfig, name)
		}
	}

	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
