package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/nestegg/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Other commands migrate the database on their own; use this to prepare a
database ahead of time or to check its schema version with --status.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()

	store, cfg, err := openStorage()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeStorage(store)

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if status {
		printLine(cmd, fmt.Sprintf("📊 Database: %s", cfg.DatabasePath))
		printLine(cmd, fmt.Sprintf("   Schema version: %d of %d", current, storage.ExpectedSchemaVersion))
		if current < storage.ExpectedSchemaVersion {
			printLine(cmd, "   Run 'nestegg migrate' to apply pending migrations.")
		}
		return nil
	}

	slog.Info("🗄️  Running database migrations...", "database", cfg.DatabasePath, "from", current)

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("✅ Database migrations completed successfully!", "version", storage.ExpectedSchemaVersion)
	printLine(cmd, fmt.Sprintf("Schema version %d", storage.ExpectedSchemaVersion))
	return nil
}
