package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/subtrack/adapter/cli"
	cliBilling "github.com/felixgeelhaar/subtrack/adapter/cli/billing"
	cliMCP "github.com/felixgeelhaar/subtrack/adapter/cli/mcp"
	cliReminder "github.com/felixgeelhaar/subtrack/adapter/cli/reminder"
	cliSubscription "github.com/felixgeelhaar/subtrack/adapter/cli/subscription"
	"github.com/felixgeelhaar/subtrack/internal/app"
	"github.com/felixgeelhaar/subtrack/pkg/config"
	"github.com/google/uuid"
)

func main() {
	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}

	if cfg.IsDevelopment() {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	cli.SetLogger(logger)

	// Initialize the container
	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			logger.Warn("failed to initialize container, running in limited mode", "error", err)
			cliApp = nil
		} else {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	} else {
		defer container.Close()

		// Start outbox processor in background (optional in CLI)
		if cfg.OutboxProcessorEnabled {
			go container.OutboxProcessor.Start(ctx)
		} else {
			logger.Info("outbox processor disabled in CLI")
		}

		// Create CLI app with handlers
		cliApp = cli.NewApp(
			container.CreateSubscriptionHandler,
			container.UpdateSubscriptionHandler,
			container.EndSubscriptionHandler,
			container.ArchiveSubscriptionHandler,
			container.DeleteSubscriptionHandler,
			container.ListSubscriptionsHandler,
			container.GetSubscriptionHandler,
			container.GetSummaryHandler,
			container.BillingService,
		)

		userID, err := uuid.Parse(cfg.UserID)
		if err != nil {
			logger.Error("invalid SUBTRACK_USER_ID", "error", err)
			os.Exit(1)
		}
		cliApp.SetCurrentUserID(userID)

		cliApp.SetSubscriptionRepo(container.SubscriptionRepo)
		cliApp.SetReminders(container.ReminderRepo, container.ReminderDispatcher)
		cliApp.SetRatesService(container.RatesService)
		cliApp.SetSearchIndexer(container.SearchIndexer)
		if container.CalendarSyncer != nil {
			cliApp.SetCalendarSyncer(container.CalendarSyncer)
		}
	}

	// Set the CLI app
	cli.SetApp(cliApp)

	// Register commands
	cli.AddCommand(cliSubscription.Cmd)
	cli.AddCommand(cliReminder.Cmd)
	cli.AddCommand(cliBilling.Cmd)
	cli.AddCommand(cliMCP.Cmd)

	// Execute CLI
	cli.Execute()
}
