package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"financetracker/backend/config"
	"financetracker/backend/database"
)

// Standalone migrator for deploy hooks: applies SQL migrations (or Mongo
// indexes) for the configured store and exits.
func main() {
	if err := run(context.Background(), os.Getenv("CONFIG_FILE"), os.Stdout); err != nil {
		logger := config.LogConfig{}.NewLogger(os.Stderr)
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
}

func run(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := cfg.Log.NewLogger(out)

	store, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	if err := store.Close(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to close store")
	}

	logger.Info().Str("store", cfg.Store.Driver).Msg("Migrations completed successfully!")
	return nil
}
