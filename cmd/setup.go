package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/playsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the default configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", r.configPath)
	r.writePlain("✓ Wrote default configuration to %s\n", r.configPath)
	r.writePlain("Set [journal] enabled = true to record replay runs.\n")
	return nil
}

// SetupDatabase initializes the journal database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Journal.Path)

	db, err := shared.OpenJournal(r.config.Journal)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", r.config.Journal.Path)
	r.writePlain("✓ Journal database ready at %s\n", r.config.Journal.Path)
	if !r.config.Journal.Enabled {
		r.writePlain("Journaling is disabled; set [journal] enabled = true in %s\n", r.configPath)
	}
	return nil
}
