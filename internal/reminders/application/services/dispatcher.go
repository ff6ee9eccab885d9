package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/reminders/domain"
	trackingDomain "github.com/felixgeelhaar/subtrack/internal/tracking/domain"
)

// Notifier delivers a due reminder to the user.
type Notifier interface {
	Notify(ctx context.Context, reminder *domain.Reminder, sub *trackingDomain.Subscription) error
}

// LogNotifier writes reminders to the structured log. It is the delivery
// channel when no push transport is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the due reminder.
func (n *LogNotifier) Notify(_ context.Context, reminder *domain.Reminder, sub *trackingDomain.Subscription) error {
	n.logger.Info("subscription reminder",
		"subscription_id", sub.ID(),
		"name", sub.Name(),
		"amount", sub.Amount(),
		"currency", sub.Currency(),
		"kind", reminder.Kind(),
		"charge_relevant_at", reminder.FireAt(),
	)
	return nil
}

// DispatcherConfig configures the reminder dispatcher.
type DispatcherConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// DefaultDispatcherConfig returns sensible defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		PollInterval: time.Minute,
		BatchSize:    50,
	}
}

// Dispatcher polls for due reminders, delivers them and reschedules the
// subscription's next cycle.
type Dispatcher struct {
	reminderRepo     domain.Repository
	subscriptionRepo trackingDomain.SubscriptionRepository
	scheduler        *Scheduler
	notifier         Notifier
	config           DispatcherConfig
	logger           *slog.Logger
	now              func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewDispatcher creates a new Dispatcher. A nil clock defaults to time.Now.
func NewDispatcher(
	reminderRepo domain.Repository,
	subscriptionRepo trackingDomain.SubscriptionRepository,
	scheduler *Scheduler,
	notifier Notifier,
	config DispatcherConfig,
	logger *slog.Logger,
	now func() time.Time,
) *Dispatcher {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultDispatcherConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultDispatcherConfig().BatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{
		reminderRepo:     reminderRepo,
		subscriptionRepo: subscriptionRepo,
		scheduler:        scheduler,
		notifier:         notifier,
		config:           config,
		logger:           logger,
		now:              now,
	}
}

// Start begins polling for due reminders.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("dispatcher already running")
	}
	d.running = true
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	d.mu.Unlock()

	go d.run(ctx)
	return nil
}

// Stop halts polling and waits for the current batch to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	close(d.stopCh)
	d.mu.Unlock()

	<-d.doneCh
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.doneCh)

	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stopCh:
			return
		case <-ticker.C:
			if err := d.DispatchOnce(ctx); err != nil {
				d.logger.Error("reminder dispatch failed", "error", err)
			}
		}
	}
}

// DispatchOnce delivers one batch of due reminders.
func (d *Dispatcher) DispatchOnce(ctx context.Context) error {
	now := d.now()
	due, err := d.reminderRepo.FindDue(ctx, now, d.config.BatchSize)
	if err != nil {
		return fmt.Errorf("find due reminders: %w", err)
	}

	for _, reminder := range due {
		if err := d.dispatch(ctx, reminder); err != nil {
			d.logger.Error("failed to dispatch reminder",
				"reminder_id", reminder.ID(),
				"subscription_id", reminder.SubscriptionID(),
				"error", err,
			)
		}
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, reminder *domain.Reminder) error {
	sub, err := d.subscriptionRepo.FindByID(ctx, reminder.SubscriptionID())
	if err != nil {
		// The subscription is gone, drop its reminders.
		if cancelErr := reminder.Cancel(); cancelErr == nil {
			_ = d.reminderRepo.Save(ctx, reminder)
		}
		return err
	}

	if err := d.notifier.Notify(ctx, reminder, sub); err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	if err := reminder.MarkSent(); err != nil {
		return err
	}
	if err := d.reminderRepo.Save(ctx, reminder); err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}

	// After the renewal-day notice fires the next cycle needs reminders.
	if reminder.Kind() == domain.KindRenewal {
		if err := d.scheduler.Sync(ctx, sub); err != nil {
			d.logger.Error("failed to reschedule reminders",
				"subscription_id", sub.ID(),
				"error", err,
			)
		}
	}

	return nil
}
