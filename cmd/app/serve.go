package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"delivery-tracker/cmd"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the order lifecycle and the notification workers",
	RunE: func(c *cobra.Command, _ []string) error {
		cfg, err := cmd.LoadConfig(envFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger := cmd.NewLogger(cfg, os.Stdout)

		ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		storage, err := cmd.OpenStorage(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer storage.Close()

		root, err := cmd.NewCompositionRoot(cfg, storage.UoWFactory, logger)
		if err != nil {
			return err
		}

		if cfg.StorageDriver == cmd.StorageMemory {
			n, err := cmd.SeedCouriers(ctx, root.CreateCreateCourierCommandHandler(), 0)
			if err != nil {
				return err
			}
			logger.InfoContext(ctx, "seeded demo couriers", "count", n)
		}

		server := root.CreateHTTPServer()
		e, err := root.CreateRouter(ctx, server)
		if err != nil {
			return err
		}

		jobManager := root.CreateJobManager()
		if err = jobManager.StartAll(); err != nil {
			return err
		}

		workers, workersCtx := errgroup.WithContext(context.Background())
		dispatcherCtx, stopDispatcher := context.WithCancel(workersCtx)
		defer stopDispatcher()

		workers.Go(func() error {
			return root.Dispatcher().Run(dispatcherCtx)
		})

		serveErr := make(chan error, 1)
		go func() {
			logger.InfoContext(ctx, "HTTP server listening", "port", cfg.HTTPPort)
			if err := e.Start(":" + cfg.HTTPPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		select {
		case <-ctx.Done():
			logger.Info("shutting down")
		case err = <-serveErr:
			logger.Error("HTTP server failed", "error", err)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// hijacked tracking sockets are not tracked by echo's Shutdown
		server.Close()
		shutdownErr := e.Shutdown(shutdownCtx)
		jobManager.StopAll(shutdownCtx)
		orchestratorErr := root.Orchestrator().Shutdown(shutdownCtx)

		// notifications announcing the final transitions get a moment to drain
		drainNotifications(shutdownCtx, root.Dispatcher().Pending)
		stopDispatcher()
		workersErr := workers.Wait()
		if errors.Is(workersErr, context.Canceled) {
			workersErr = nil
		}

		logger.Info("stopped")
		return errors.Join(err, shutdownErr, orchestratorErr, workersErr)
	},
}

func drainNotifications(ctx context.Context, pending func() int) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for pending() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
