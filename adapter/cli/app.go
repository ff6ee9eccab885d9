package cli

import (
	billingApp "github.com/felixgeelhaar/subtrack/internal/billing/application"
	calendarApp "github.com/felixgeelhaar/subtrack/internal/calendar/application"
	ratesApp "github.com/felixgeelhaar/subtrack/internal/rates/application"
	remindersDomain "github.com/felixgeelhaar/subtrack/internal/reminders/domain"
	reminderServices "github.com/felixgeelhaar/subtrack/internal/reminders/application/services"
	searchApp "github.com/felixgeelhaar/subtrack/internal/search/application"
	"github.com/felixgeelhaar/subtrack/internal/tracking/application/commands"
	"github.com/felixgeelhaar/subtrack/internal/tracking/application/queries"
	trackingDomain "github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	"github.com/google/uuid"
)

// App holds the CLI application dependencies.
type App struct {
	// Subscription Command Handlers
	CreateSubscriptionHandler  *commands.CreateSubscriptionHandler
	UpdateSubscriptionHandler  *commands.UpdateSubscriptionHandler
	EndSubscriptionHandler     *commands.EndSubscriptionHandler
	ArchiveSubscriptionHandler *commands.ArchiveSubscriptionHandler
	DeleteSubscriptionHandler  *commands.DeleteSubscriptionHandler

	// Subscription Query Handlers
	ListSubscriptionsHandler *queries.ListSubscriptionsHandler
	GetSubscriptionHandler   *queries.GetSubscriptionHandler
	GetSummaryHandler        *queries.GetSummaryHandler

	// Calendar Sync
	SubscriptionRepo trackingDomain.SubscriptionRepository
	CalendarSyncer   calendarApp.Syncer

	// Reminders
	ReminderRepo       remindersDomain.Repository
	ReminderDispatcher *reminderServices.Dispatcher

	// Services
	BillingService *billingApp.Service
	RatesService   *ratesApp.Service
	SearchIndexer  *searchApp.Indexer

	// Current user (configured per environment)
	CurrentUserID uuid.UUID
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	createSubscriptionHandler *commands.CreateSubscriptionHandler,
	updateSubscriptionHandler *commands.UpdateSubscriptionHandler,
	endSubscriptionHandler *commands.EndSubscriptionHandler,
	archiveSubscriptionHandler *commands.ArchiveSubscriptionHandler,
	deleteSubscriptionHandler *commands.DeleteSubscriptionHandler,
	listSubscriptionsHandler *queries.ListSubscriptionsHandler,
	getSubscriptionHandler *queries.GetSubscriptionHandler,
	getSummaryHandler *queries.GetSummaryHandler,
	billingService *billingApp.Service,
) *App {
	return &App{
		CreateSubscriptionHandler:  createSubscriptionHandler,
		UpdateSubscriptionHandler:  updateSubscriptionHandler,
		EndSubscriptionHandler:     endSubscriptionHandler,
		ArchiveSubscriptionHandler: archiveSubscriptionHandler,
		DeleteSubscriptionHandler:  deleteSubscriptionHandler,
		ListSubscriptionsHandler:   listSubscriptionsHandler,
		GetSubscriptionHandler:     getSubscriptionHandler,
		GetSummaryHandler:          getSummaryHandler,
		BillingService:             billingService,
		CurrentUserID:              uuid.Nil,
	}
}

// SetCurrentUserID updates the current user ID.
func (a *App) SetCurrentUserID(id uuid.UUID) {
	a.CurrentUserID = id
}

// SetSubscriptionRepo updates the subscription repository used for projections.
func (a *App) SetSubscriptionRepo(repo trackingDomain.SubscriptionRepository) {
	a.SubscriptionRepo = repo
}

// SetCalendarSyncer updates the calendar syncer.
func (a *App) SetCalendarSyncer(syncer calendarApp.Syncer) {
	a.CalendarSyncer = syncer
}

// SetReminders updates the reminder repository and dispatcher.
func (a *App) SetReminders(repo remindersDomain.Repository, dispatcher *reminderServices.Dispatcher) {
	a.ReminderRepo = repo
	a.ReminderDispatcher = dispatcher
}

// SetRatesService updates the exchange rate service.
func (a *App) SetRatesService(service *ratesApp.Service) {
	a.RatesService = service
}

// SetSearchIndexer updates the search indexer.
func (a *App) SetSearchIndexer(indexer *searchApp.Indexer) {
	a.SearchIndexer = indexer
}

// app is the global application instance
var app *App

// SetApp sets the global application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global application instance.
func GetApp() *App {
	return app
}
