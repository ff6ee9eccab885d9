package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/app"
	"github.com/felixgeelhaar/subtrack/pkg/config"
)

func main() {
	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	logger.Info("starting subtrack worker")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Update logger level based on config
	if cfg.IsDevelopment() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	// Start outbox processor
	logger.Info("starting outbox processor",
		"poll_interval", cfg.OutboxPollInterval,
		"batch_size", cfg.OutboxBatchSize,
		"max_retries", cfg.OutboxMaxRetries,
	)
	if err := container.OutboxProcessor.Start(ctx); err != nil {
		logger.Error("failed to start outbox processor", "error", err)
		os.Exit(1)
	}

	// Start reminder dispatcher
	logger.Info("starting reminder dispatcher", "poll_interval", cfg.ReminderPollInterval)
	if err := container.ReminderDispatcher.Start(ctx); err != nil {
		logger.Error("failed to start reminder dispatcher", "error", err)
		os.Exit(1)
	}

	// Warm the exchange rate table
	if err := container.RatesService.Refresh(ctx); err != nil {
		logger.Warn("initial rates refresh failed, using built-in table", "error", err)
	}

	// Periodic housekeeping: outbox retention, search index expiry, rate
	// refresh.
	cleanupTicker := time.NewTicker(cfg.OutboxCleanupInterval)
	defer cleanupTicker.Stop()
	ratesTicker := time.NewTicker(cfg.RatesCacheTTL)
	defer ratesTicker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-cleanupTicker.C:
				deleted, err := container.OutboxRepo.DeleteOld(ctx, cfg.OutboxRetentionDays)
				if err != nil {
					logger.Error("outbox cleanup failed", "error", err)
				} else if deleted > 0 {
					logger.Info("outbox cleanup complete", "deleted", deleted)
				}

				swept, err := container.SearchIndexer.SweepExpired(ctx)
				if err != nil {
					logger.Error("search index sweep failed", "error", err)
				} else if swept > 0 {
					logger.Info("search index sweep complete", "deleted", swept)
				}
			case <-ratesTicker.C:
				if err := container.RatesService.Refresh(ctx); err != nil {
					logger.Warn("rates refresh failed", "error", err)
				}
			}
		}
	}()

	logger.Info("worker running")
	<-ctx.Done()

	container.ReminderDispatcher.Stop()
	container.OutboxProcessor.Stop()
	logger.Info("worker stopped")
}
