package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"financetracker/backend/api"
	"financetracker/backend/config"
	"financetracker/backend/database"
	"financetracker/backend/events"
	"financetracker/backend/llm"
	"financetracker/backend/middleware"
	"financetracker/backend/services"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	serve := func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context(), configPath)
	}

	rootCmd := &cobra.Command{
		Use:   "financetracker",
		Short: "Personal finance tracker with a chat assistant",
		Long: `Finance Tracker stores financial transactions and serves a JSON API, a small
web frontend and a chat assistant that answers questions about your spending.`,
		SilenceUsage: true,
		RunE:         serve,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional config file (yaml, json or toml)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server (default)",
			RunE:  serve,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Prepare the configured store and exit",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate(cmd.Context(), configPath)
			},
		},
	)

	return rootCmd
}

func setup(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	logger := cfg.Log.NewLogger(os.Stdout)
	zerolog.DefaultContextLogger = &logger
	return cfg, logger, nil
}

// runMigrate opens the store, which applies SQL migrations or Mongo indexes,
// and closes it again.
func runMigrate(ctx context.Context, configPath string) error {
	cfg, logger, err := setup(configPath)
	if err != nil {
		return err
	}

	store, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	defer store.Close(context.Background())

	logger.Info().Str("store", cfg.Store.Driver).Msg("Migrations completed successfully")
	return nil
}

func runServe(ctx context.Context, configPath string) error {
	cfg, logger, err := setup(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.IsDevelopment() {
		logger.Info().Msg("Running in development environment")
	}

	store, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to close store")
		}
	}()

	publisher, err := events.Connect(cfg.NATS, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	verifier, err := middleware.NewFirebaseVerifier(ctx, cfg.Firebase, logger)
	if err != nil {
		return err
	}

	if cfg.OpenAI.APIKey == "" {
		logger.Warn().Msg("OPENAI_API_KEY not set, chat requests will fail upstream")
	}

	txService := services.NewTransactionService(store, publisher)
	chatService := services.NewChatService(txService, llm.NewOpenAIClient(cfg.OpenAI))

	srv, err := api.NewServer(cfg, logger, store, txService, chatService, verifier)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Server.Port).Str("store", cfg.Store.Driver).Msg("Starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info().Msg("Server stopped")
	return nil
}
