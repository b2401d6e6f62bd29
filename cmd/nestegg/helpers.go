package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/nestegg/internal/config"
	"github.com/Veraticus/nestegg/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadConfig resolves the configuration from flags, env and the config file.
func loadConfig() (*config.Config, error) {
	config.SetDefaults(viper.GetViper())
	return config.Load(viper.GetViper())
}

// openStorage opens the configured database without migrating it.
func openStorage() (*storage.SQLiteStorage, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, *config.Config, error) {
	store, cfg, err := openStorage()
	if err != nil {
		return nil, nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Debug("Storage ready", "database", cfg.DatabasePath)
	return store, cfg, nil
}

func closeStorage(store *storage.SQLiteStorage) {
	if err := store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// printLine writes a line of command output to stdout, or to the writer set by SetOut.
func printLine(cmd *cobra.Command, a ...any) {
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), a...); err != nil {
		slog.Debug("Failed to write output", "error", err)
	}
}
