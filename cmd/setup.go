package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spinsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example config to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", r.configPath)
	r.writePlain("%s\n", r.styles.OK("✓ Config written to %s", r.configPath))
	r.writePlainln("Next steps:")
	r.writePlain("1. Add your Spotify app's client_id and client_secret under [credentials.spotify]\n")
	r.writePlain("2. Run 'spinsync auth' to log in\n")
	return nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	if _, err := r.database(); err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("%s\n", r.styles.OK("✓ Database ready at %s", r.config.Database.Path))
}
