package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	keyfold "github.com/keyfold/keyfold"
	"github.com/keyfold/keyfold/config"
	"github.com/keyfold/keyfold/filesystem"
	keyfoldhttp "github.com/keyfold/keyfold/http"
	"github.com/keyfold/keyfold/sqlite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the keyfold HTTP server.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8292, "HTTP server port")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	service := keyfold.NewService(store)

	handlerConfig := keyfoldhttp.HandlerConfig{
		Secret: cfg.Auth.Secret,
		CORS:   cfg.CORS,
	}
	handler := keyfoldhttp.NewHandler(&handlerConfig, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:        addr,
		Handler:     handler.Router(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	if cfg.Auth.Secret == "" {
		slog.Warn("no access secret configured, server is open")
	}

	slog.Info("starting server", "addr", addr, "backend", cfg.Storage.Backend)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// openStore builds the configured object store backend. The returned
// close func releases both the storage root and, for sqlite, the
// database handle.
func openStore(ctx context.Context, cfg *config.Config) (keyfold.ObjectStore, func(), error) {
	if err := os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
		return nil, nil, fmt.Errorf("create storage directory: %w", err)
	}

	root, err := os.OpenRoot(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage root: %w", err)
	}

	switch cfg.Storage.Backend {
	case "filesystem":
		return filesystem.NewStore(root), func() { _ = root.Close() }, nil
	case "sqlite":
		store, err := sqlite.Open(ctx, cfg.Database.DSN, root)
		if err != nil {
			_ = root.Close()
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		slog.Info("connected to database", "dsn", cfg.Database.DSN)
		return store, func() {
			_ = store.Close()
			_ = root.Close()
		}, nil
	default:
		_ = root.Close()
		return nil, nil, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}
}
