package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	billingApp "github.com/felixgeelhaar/subtrack/internal/billing/application"
	billingDomain "github.com/felixgeelhaar/subtrack/internal/billing/domain"
	billingPersistence "github.com/felixgeelhaar/subtrack/internal/billing/infrastructure/persistence"
	calendarApp "github.com/felixgeelhaar/subtrack/internal/calendar/application"
	caldavSync "github.com/felixgeelhaar/subtrack/internal/calendar/infrastructure/caldav"
	ratesApp "github.com/felixgeelhaar/subtrack/internal/rates/application"
	ratesInfra "github.com/felixgeelhaar/subtrack/internal/rates/infrastructure"
	reminderServices "github.com/felixgeelhaar/subtrack/internal/reminders/application/services"
	reminderSubs "github.com/felixgeelhaar/subtrack/internal/reminders/application/subscribers"
	remindersDomain "github.com/felixgeelhaar/subtrack/internal/reminders/domain"
	remindersPersistence "github.com/felixgeelhaar/subtrack/internal/reminders/infrastructure/persistence"
	searchApp "github.com/felixgeelhaar/subtrack/internal/search/application"
	searchSubs "github.com/felixgeelhaar/subtrack/internal/search/application/subscribers"
	searchDomain "github.com/felixgeelhaar/subtrack/internal/search/domain"
	searchPersistence "github.com/felixgeelhaar/subtrack/internal/search/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/subtrack/internal/shared/application"
	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/persistence"
	"github.com/felixgeelhaar/subtrack/internal/tracking/application/commands"
	"github.com/felixgeelhaar/subtrack/internal/tracking/application/queries"
	trackingDomain "github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	trackingPersistence "github.com/felixgeelhaar/subtrack/internal/tracking/infrastructure/persistence"
	"github.com/felixgeelhaar/subtrack/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq" // database/sql driver for the Postgres search repo
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
//
// SQLite is always opened as the local system store; it owns the outbox,
// reminders, and entitlements. A Postgres DATABASE_URL additionally moves
// the subscription and search repositories onto Postgres.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Databases
	SQLiteDB *sql.DB
	PGPool   *pgxpool.Pool
	SearchDB *sql.DB // lib/pq handle, only set with a Postgres DATABASE_URL

	// Redis (exchange rate cache)
	RedisClient *redis.Client

	// Repositories
	SubscriptionRepo trackingDomain.SubscriptionRepository
	ReminderRepo     remindersDomain.Repository
	EntitlementRepo  billingDomain.EntitlementRepository
	SearchRepo       searchDomain.Repository
	OutboxRepo       outbox.Repository

	// Publishers
	EventPublisher eventbus.Publisher

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

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

	// Services
	BillingService     *billingApp.Service
	RatesService       *ratesApp.Service
	SearchIndexer      *searchApp.Indexer
	ReminderScheduler  *reminderServices.Scheduler
	ReminderDispatcher *reminderServices.Dispatcher

	// Calendar Sync
	CalendarSyncer calendarApp.Syncer

	// Event Subscribers
	ReminderSubscriber *reminderSubs.ReminderSubscriber
	SearchSubscriber   *searchSubs.SearchSubscriber
	InProcessEventBus  *eventbus.InProcessEventBus

	// Outbox Processor
	OutboxProcessor *outbox.Processor
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	driver := database.DetectDriver(cfg.DatabaseURL)

	// Local system store. Holds everything in SQLite mode; holds the
	// outbox, reminders, and entitlements in Postgres mode.
	sqlitePath := ""
	if driver == database.DriverSQLite {
		sqlitePath = sqliteFilePath(cfg.DatabaseURL)
	}
	sqliteDB, err := database.OpenSQLite(ctx, sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}
	c.SQLiteDB = sqliteDB

	if err := migrations.RunSQLiteMigrations(ctx, sqliteDB); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("local database ready", "driver", database.DriverSQLite)

	c.SubscriptionRepo = trackingPersistence.NewSQLiteSubscriptionRepository(sqliteDB)
	c.SearchRepo = searchPersistence.NewSQLiteSearchRepository(sqliteDB)

	if driver == database.DriverPostgres {
		pool, err := database.OpenPostgres(ctx, cfg.DatabaseURL, 0)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		c.PGPool = pool
		c.SubscriptionRepo = trackingPersistence.NewPostgresSubscriptionRepository(pool)
		logger.Info("connected to database", "driver", driver)

		searchDB, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to open search database: %w", err)
		}
		if err := searchDB.PingContext(ctx); err != nil {
			searchDB.Close()
			c.Close()
			return nil, fmt.Errorf("failed to ping search database: %w", err)
		}
		c.SearchDB = searchDB
		c.SearchRepo = searchPersistence.NewPostgresSearchRepository(searchDB)
	}

	c.ReminderRepo = remindersPersistence.NewSQLiteReminderRepository(sqliteDB)
	c.EntitlementRepo = billingPersistence.NewSQLiteEntitlementRepository(sqliteDB)
	c.OutboxRepo = outbox.NewSQLiteRepository(sqliteDB)
	c.UnitOfWork = sharedPersistence.NewSQLiteUnitOfWork(sqliteDB)

	// Connect to Redis (optional, exchange rate cache)
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Warn("invalid Redis URL, rate cache disabled", "error", err)
		} else {
			redisClient := redis.NewClient(opt)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				logger.Warn("Redis not available, rate cache disabled", "error", err)
			} else {
				c.RedisClient = redisClient
				logger.Info("connected to Redis")
			}
		}
	}

	// Create event publisher
	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			if !cfg.IsDevelopment() {
				c.Close()
				return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			logger.Warn("RabbitMQ not available, using in-process event bus only")
		} else {
			c.EventPublisher = publisher
		}
	}

	// In-process bus drives the reminder and search subscribers; the outbox
	// processor publishes into it (and RabbitMQ when configured).
	c.InProcessEventBus = eventbus.NewInProcessEventBus(logger)

	// Services
	c.BillingService = billingApp.NewService(c.EntitlementRepo)
	c.SearchIndexer = searchApp.NewIndexer(c.SearchRepo, searchDomain.DefaultEntryTTL, logger, nil)
	c.ReminderScheduler = reminderServices.NewScheduler(c.ReminderRepo, cfg.ReminderLeadDays, logger, nil)
	c.ReminderDispatcher = reminderServices.NewDispatcher(
		c.ReminderRepo,
		c.SubscriptionRepo,
		c.ReminderScheduler,
		reminderServices.NewLogNotifier(logger),
		reminderServices.DispatcherConfig{PollInterval: cfg.ReminderPollInterval},
		logger,
		nil,
	)

	var ratesFetcher ratesApp.Fetcher
	if cfg.RatesURL != "" {
		ratesFetcher = ratesInfra.NewHTTPFetcher(ratesInfra.DefaultFetcherConfig(cfg.RatesURL), logger, nil)
	}
	var ratesCache ratesApp.Cache
	if c.RedisClient != nil {
		ratesCache = ratesInfra.NewRedisCache(c.RedisClient, cfg.RatesCacheTTL)
	}
	c.RatesService = ratesApp.NewService(ratesFetcher, ratesCache, logger)

	// Subscribers
	c.ReminderSubscriber = reminderSubs.NewReminderSubscriber(c.ReminderScheduler, c.SubscriptionRepo, logger)
	c.SearchSubscriber = searchSubs.NewSearchSubscriber(c.SearchIndexer, c.SubscriptionRepo, logger)
	c.InProcessEventBus.RegisterConsumer(c.ReminderSubscriber)
	c.InProcessEventBus.RegisterConsumer(c.SearchSubscriber)

	// Outbox processor fans out to the in-process bus and, when configured,
	// to RabbitMQ.
	processorPublisher := eventbus.Publisher(c.InProcessEventBus)
	if c.EventPublisher != nil {
		processorPublisher = eventbus.NewFanoutPublisher(logger, c.InProcessEventBus, c.EventPublisher)
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, processorPublisher, outbox.ProcessorConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxRetries:   cfg.OutboxMaxRetries,
	}, logger)

	// Command handlers
	c.CreateSubscriptionHandler = commands.NewCreateSubscriptionHandler(c.SubscriptionRepo, c.OutboxRepo, c.BillingService, c.UnitOfWork)
	c.UpdateSubscriptionHandler = commands.NewUpdateSubscriptionHandler(c.SubscriptionRepo, c.OutboxRepo, c.UnitOfWork)
	c.EndSubscriptionHandler = commands.NewEndSubscriptionHandler(c.SubscriptionRepo, c.OutboxRepo, c.UnitOfWork)
	c.ArchiveSubscriptionHandler = commands.NewArchiveSubscriptionHandler(c.SubscriptionRepo, c.OutboxRepo, c.UnitOfWork)
	c.DeleteSubscriptionHandler = commands.NewDeleteSubscriptionHandler(c.SubscriptionRepo, c.OutboxRepo, c.UnitOfWork)

	// Query handlers
	c.ListSubscriptionsHandler = queries.NewListSubscriptionsHandler(c.SubscriptionRepo, nil)
	c.GetSubscriptionHandler = queries.NewGetSubscriptionHandler(c.SubscriptionRepo, nil)
	c.GetSummaryHandler = queries.NewGetSummaryHandler(c.SubscriptionRepo, nil)

	// Calendar syncer when CalDAV is configured
	if cfg.CalDAVURL != "" && cfg.CalDAVUsername != "" {
		syncer := caldavSync.NewSyncer(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword, logger)
		if cfg.CalDAVCalendar != "" {
			syncer = syncer.WithCalendarPath(cfg.CalDAVCalendar)
		}
		c.CalendarSyncer = syncer
	}

	return c, nil
}

// Close releases all container resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil && c.OutboxProcessor.IsRunning() {
		c.OutboxProcessor.Stop()
	}
	if c.EventPublisher != nil {
		if closer, ok := c.EventPublisher.(interface{ Close() error }); ok {
			closer.Close()
		}
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}
	if c.SearchDB != nil {
		c.SearchDB.Close()
	}
	if c.PGPool != nil {
		c.PGPool.Close()
	}
	if c.SQLiteDB != nil {
		c.SQLiteDB.Close()
	}
}

// sqliteFilePath strips the optional sqlite:// scheme from a database URL.
func sqliteFilePath(url string) string {
	url = strings.TrimPrefix(url, "sqlite://")
	return url
}
