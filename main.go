package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ergon73/test-github-actions/config"
	"github.com/ergon73/test-github-actions/host"
	"github.com/ergon73/test-github-actions/logging"
	"github.com/ergon73/test-github-actions/metrics"
	"github.com/ergon73/test-github-actions/scheduler"
	"github.com/ergon73/test-github-actions/server"
	"github.com/joho/godotenv"
	"github.com/prometheus/procfs"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Process start: uptime is measured from here
	collector := metrics.NewCollector()

	// A missing .env is the normal case in containers
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("Failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Failed to load configuration", "error", err)
		return 1
	}

	logs := logging.InitLogger(logging.Options{
		Level:          cfg.LogLevel,
		Dir:            cfg.LogDir,
		RetentionWeeks: cfg.LogRetentionWeeks,
	})
	defer logs.Close()

	jobs := scheduler.NewScheduler(collector, logs)
	if err := jobs.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		return 1
	}
	defer jobs.Stop()

	srv := server.NewServer(cfg, collector, host.NewProcUptime(procfs.DefaultMountPoint))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logging.Error("Server failed to start", "addr", cfg.ListenAddr(), "error", err)
		return 1
	case sig := <-quit:
		logging.Info("Received shutdown signal", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return 1
	}

	logging.Info("Server exited gracefully")
	return 0
}
