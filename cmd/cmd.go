// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// replayCommand replays a play-count export into the player
func replayCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "replay",
		Usage: "Replay each track of a play-count export the recorded number of times",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "path",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Answer Continue at every checkpoint (unattended run)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Resolve every track without playing anything",
			},
		},
		Action: r.Replay,
	}
}

// prepareCommand reduces an export before replaying it
func prepareCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "prepare",
		Usage: "Sort, cap or scale, and truncate a play-count export",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "Play-count export to read (default: input.path from config)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Path of the prepared CSV",
				Value:   "prepared_play_counts.csv",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Keep at most this many tracks (0 keeps all)",
				Value: 100,
			},
			&cli.IntFlag{
				Name:  "max-plays",
				Usage: "Highest play count in the prepared file",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "scale",
				Usage: "Scale counts proportionally instead of capping them",
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "Also write a report of the N most played tracks",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Path of the top tracks report",
				Value: "top_tracks.txt",
			},
		},
		Action: r.Prepare,
	}
}

// libraryCommand probes the player's library
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Inspect the player's library",
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Check that the player can be scripted",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "play",
						Usage: "Also play a sample track for one second",
					},
				},
				Action: r.LibraryCheck,
			},
			{
				Name:  "search",
				Usage: "Resolve a title and artist against the library",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Aliases:  []string{"t"},
						Usage:    "Track title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "artist",
						Aliases:  []string{"a"},
						Usage:    "Track artist",
						Required: true,
					},
				},
				Action: r.LibrarySearch,
			},
		},
	}
}

// historyCommand reads the replay journal
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show journaled replay runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only show runs with this status (running, completed, stopped)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show a run and its play attempts",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryShow,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the journal database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml with the default settings",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the journal database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}
