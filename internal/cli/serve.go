package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/3menions-ctrl/genesis-director-sub010/internal/api"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/config"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/db"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/editor"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/logging"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/store"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editing API on 127.0.0.1",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if port == 0 {
				port = cfg.Port()
			}
			return serve(cmd.Context(), cfg, port, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides "+config.EnvPort+")")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, port int, out io.Writer) error {
	startTime := time.Now()

	if err := os.MkdirAll(cfg.DataDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.ExportDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting genesis editor", "version", config.Version, "data_dir", logging.SanitizePath(cfg.DataDir()))

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := store.NewRepository(database.Conn())

	authToken, err := ensureAuthToken(ctx, repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  genesis-editor %s\n", config.Version)
	fmt.Fprintf(out, "  API URL:    http://127.0.0.1:%d\n", port)
	fmt.Fprintf(out, "  Auth Token: %s\n", authToken)
	fmt.Fprintln(out)

	svc := editor.NewService(repo, logger,
		editor.WithHistoryDepth(cfg.HistoryDepth()),
		editor.WithExportDir(cfg.ExportDir()),
	)

	apiServer := api.NewServer(api.ServerConfig{
		Port:       port,
		Editor:     svc,
		Repository: repo,
		Logger:     logger,
		StartTime:  startTime,
		Version:    config.Version,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		logger.Info("received shutdown signal")
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server error", "error", err)
			return err
		}
	}

	logger.Info("initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	saved, err := svc.SaveAll(shutdownCtx)
	if err != nil {
		logger.Error("failed to save open projects", "error", err)
	}
	logger.Info("shutdown complete", "projects_saved", saved)
	return nil
}

// ensureAuthToken returns the stored API token, minting one on first start.
func ensureAuthToken(ctx context.Context, repo store.Repository) (string, error) {
	existing, err := repo.GetConfig(ctx, api.AuthTokenKey)
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, api.AuthTokenKey, token); err != nil {
		return "", err
	}

	return token, nil
}
