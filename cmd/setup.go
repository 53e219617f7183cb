package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spotlite/internal/shared"
	"github.com/desertthunder/spotlite/internal/spotify"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file if it does not exist, then initializes the
// database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load created config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	}
	r.config = config

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := r.database()
	if err != nil {
		return err
	}

	var version int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), -1) FROM schema_migrations").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	r.logger.Info("setup complete", "database", config.Database.Path, "schema_version", version)
	r.writePlain("✓ Config: %s\n", configPath)
	r.writePlain("✓ Database: %s (schema version %d)\n", config.Database.Path, version)
	r.writePlain("\nNext: set %s and %s (or fill in %s), then run 'spotlite auth login'\n",
		spotify.EnvClientID, spotify.EnvClientSecret, configPath)
	return nil
}
