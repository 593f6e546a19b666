package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"market-data-service/internal/application/services"
	"market-data-service/internal/infrastructure/logging"
	"market-data-service/internal/infrastructure/metrics"
	"market-data-service/internal/infrastructure/repositories/snapshot"
	"market-data-service/internal/infrastructure/web/handlers"
	"market-data-service/internal/infrastructure/web/server"

	"github.com/spf13/cobra"
)

const uptimeInterval = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initLogging(cfg, os.Stdout); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer func() { _ = logging.SyncGlobalLoggers() }()

	ctx := logging.WithRequestID(context.Background(), "startup")
	logging.Info(ctx, "Starting market data service", logging.Fields{
		"version":          Version,
		"provider":         cfg.Upstream.Provider,
		"mock_mode":        cfg.Development.MockMode,
		"snapshot_backend": cfg.Snapshot.Backend,
	})

	provider, market, err := buildMarket(cfg)
	if err != nil {
		return fmt.Errorf("creating upstream provider: %w", err)
	}
	defer market.Close()

	store, err := snapshot.NewFactory().CreateStore(ctx, cfg.Snapshot)
	if err != nil {
		return fmt.Errorf("creating snapshot store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.WarnWithError(ctx, "Failed to close snapshot store", err, nil)
		}
	}()

	metrics.SetApplicationInfo(Version, provider.Name(), runtime.Version())

	snapshots := services.NewSnapshotService(market, store)
	maxSymbols := cfg.API.MaxSymbolsPerRequest

	router := server.NewRouter(cfg, server.Handlers{
		Market: handlers.NewMarketHandler(market, maxSymbols),
		Stocks: handlers.NewStocksHandler(snapshots),
		Health: handlers.NewHealthHandler(snapshots, provider.Name()),
		Stream: handlers.NewStreamHandler(market, maxSymbols, cfg.Server.CORSOrigins),
	})
	srv := server.NewServer(router, cfg.Server.Port)

	stopUptime := trackUptime(time.Now())
	defer stopUptime()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		if err != nil {
			logging.ErrorWithError(ctx, "HTTP server failed", err, nil)
		}
		return err
	case sig := <-quit:
		logging.Info(ctx, "Shutdown signal received", logging.Fields{
			"signal": sig.String(),
		})
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logging.ErrorWithError(ctx, "Graceful shutdown failed", err, nil)
		return err
	}

	logging.Info(ctx, "Market data service stopped", nil)
	return nil
}

// trackUptime publica el uptime periódicamente hasta que se llame a stop
func trackUptime(started time.Time) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(uptimeInterval)
		defer ticker.Stop()
		for {
			metrics.UpdateUptime(time.Since(started).Seconds())
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()
	return func() { close(done) }
}
