package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/spotlite/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warnf("failed to load config.toml, using defaults: %v", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Logger:  logger,
		Account: os.Getenv("SPOTLITE_ACCOUNT"),
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "spotlite",
		Usage:    "A lightweight Spotify Web API client",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNoSession) {
			logger.Error("not authenticated, run 'spotlite auth login' first")
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
