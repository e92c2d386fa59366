// cmd/macrokitchen/serve.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/backend"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/catalog"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/config"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/server"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/storage"
)

const shutdownTimeout = 10 * time.Second

var (
	serveHost    string
	servePort    int
	serveDBPath  string
	serveCatalog string
	serveNoSeed  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the meal builder tool server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host address (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port for HTTP transport (overrides config)")
	serveCmd.Flags().StringVar(&serveDBPath, "db-path", "", "Database path (overrides config)")
	serveCmd.Flags().StringVar(&serveCatalog, "catalog", "", "Catalog source: sqlite or rest (overrides config)")
	serveCmd.Flags().BoolVar(&serveNoSeed, "no-seed", false, "Skip loading the embedded catalog")
}

func applyServeFlags(c *config.Config) {
	if serveHost != "" {
		c.Server.Host = serveHost
	}
	if servePort != 0 {
		c.Server.Port = servePort
	}
	if serveDBPath != "" {
		c.Database.Path = serveDBPath
	}
	if serveCatalog != "" {
		c.Catalog.Source = serveCatalog
	}
	if serveNoSeed {
		c.Database.Seed = false
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	applyServeFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	stor, err := storage.NewSQLiteStorage(cfg.Database.Path, logger.Named("storage"))
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.Seed {
		seed, err := storage.DefaultSeed()
		if err != nil {
			stor.Close()
			return err
		}
		if err := stor.Seed(ctx, seed); err != nil {
			stor.Close()
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	var src catalog.Source = stor
	if cfg.Catalog.Source == config.SourceREST {
		client, err := backend.NewClient(backend.Options{
			BaseURL: cfg.Backend.URL,
			APIKey:  cfg.Backend.APIKey,
			Timeout: cfg.GetBackendTimeout(),
			Logger:  logger.Named("backend"),
		})
		if err != nil {
			stor.Close()
			return err
		}
		src = client
	}

	srv, err := server.NewKitchenServer(&server.Config{
		Addr:           cfg.Addr(),
		SessionIdleTTL: cfg.GetSessionIdleTTL(),
	}, catalog.New(src, logger.Named("catalog")), stor, logger)
	if err != nil {
		stor.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case runErr = <-errCh:
		logger.Error("server error", zap.Error(runErr))
	}

	logger.Info("shutting down")
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("error during shutdown", zap.Error(err))
	}
	return runErr
}
