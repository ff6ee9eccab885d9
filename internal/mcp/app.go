package mcp

import (
	"github.com/felixgeelhaar/subtrack/adapter/cli"
	"github.com/felixgeelhaar/subtrack/internal/app"
	"github.com/google/uuid"
)

// NewCLIApp builds the CLI app façade the MCP tools run against.
func NewCLIApp(container *app.Container, currentUser uuid.UUID) *cli.App {
	cliApp := cli.NewApp(
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

	cliApp.SetCurrentUserID(currentUser)
	cliApp.SetSubscriptionRepo(container.SubscriptionRepo)
	cliApp.SetReminders(container.ReminderRepo, container.ReminderDispatcher)
	cliApp.SetRatesService(container.RatesService)
	cliApp.SetSearchIndexer(container.SearchIndexer)
	if container.CalendarSyncer != nil {
		cliApp.SetCalendarSyncer(container.CalendarSyncer)
	}

	return cliApp
}
