package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/keyfold/keyfold/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "keyfold",
	Short:   "Key-addressed object store with a virtual folder view",
	Long: `Keyfold is a lightweight object storage server. Objects live in a
flat key namespace and are presented over HTTP as a browsable
hierarchy of files and folders.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var configFiles []string
		if cf, _ := cmd.Flags().GetString("config"); cf != "" {
			configFiles = []string{cf}
		}

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "storage backend: sqlite, filesystem (env: KEYFOLD_STORAGE_BACKEND)")
	rootCmd.PersistentFlags().String("storage-path", "", "storage directory path (default: ./data, env: KEYFOLD_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("db-dsn", "", "sqlite database file (default: keyfold.db, env: KEYFOLD_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("secret", "", "shared access secret; empty leaves the server open (env: KEYFOLD_AUTH_SECRET)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
