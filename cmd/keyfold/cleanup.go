package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyfold/keyfold/config"
	"github.com/keyfold/keyfold/sqlite"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove orphaned blobs",
	Long: `Remove blob files no longer referenced by any object, along with
abandoned upload temp files. Only the sqlite backend keeps a blob
store, so this command requires it.

Run this periodically to reclaim space after deletes and overwrites.`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	if cfg.Storage.Backend != "sqlite" {
		return fmt.Errorf("cleanup requires the sqlite backend, configured backend is %q", cfg.Storage.Backend)
	}

	if _, err := os.Stat(cfg.Storage.Path); os.IsNotExist(err) {
		return fmt.Errorf("storage directory does not exist: %s", cfg.Storage.Path)
	}

	root, err := os.OpenRoot(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open storage root: %w", err)
	}
	defer func() { _ = root.Close() }()

	store, err := sqlite.Open(ctx, cfg.Database.DSN, root)
	if err != nil {
		return fmt.Errorf("open sqlite store: %w", err)
	}
	defer func() { _ = store.Close() }()

	slog.Info("starting cleanup")

	removed, err := store.SweepOrphans(ctx)
	if err != nil {
		return fmt.Errorf("sweep orphans: %w", err)
	}

	slog.Info("cleanup complete", "blobs_removed", removed)
	return nil
}
