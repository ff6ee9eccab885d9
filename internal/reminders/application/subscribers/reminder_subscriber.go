package subscribers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/subtrack/internal/reminders/application/services"
	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/eventbus"
	trackingDomain "github.com/felixgeelhaar/subtrack/internal/tracking/domain"
)

// ReminderSubscriber keeps reminders in sync with subscription lifecycle
// events.
type ReminderSubscriber struct {
	scheduler        *services.Scheduler
	subscriptionRepo trackingDomain.SubscriptionRepository
	logger           *slog.Logger
}

// NewReminderSubscriber creates a new reminder subscriber.
func NewReminderSubscriber(
	scheduler *services.Scheduler,
	subscriptionRepo trackingDomain.SubscriptionRepository,
	logger *slog.Logger,
) *ReminderSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderSubscriber{
		scheduler:        scheduler,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

// EventTypes returns the event types this subscriber handles.
func (s *ReminderSubscriber) EventTypes() []string {
	return []string{
		trackingDomain.EventSubscriptionCreated,
		trackingDomain.EventSubscriptionUpdated,
		trackingDomain.EventSubscriptionEnded,
		trackingDomain.EventSubscriptionArchived,
		trackingDomain.EventSubscriptionDeleted,
	}
}

// Handle processes an event.
func (s *ReminderSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	switch event.RoutingKey {
	case trackingDomain.EventSubscriptionCreated,
		trackingDomain.EventSubscriptionUpdated:
		return s.syncSubscription(ctx, event)
	case trackingDomain.EventSubscriptionEnded,
		trackingDomain.EventSubscriptionArchived:
		return s.cancelReminders(ctx, event)
	case trackingDomain.EventSubscriptionDeleted:
		return s.removeReminders(ctx, event)
	default:
		s.logger.Warn("unknown event type",
			"routing_key", event.RoutingKey,
		)
		return nil
	}
}

func (s *ReminderSubscriber) syncSubscription(ctx context.Context, event *eventbus.ConsumedEvent) error {
	sub, err := s.subscriptionRepo.FindByID(ctx, event.AggregateID)
	if err != nil {
		if errors.Is(err, trackingDomain.ErrSubscriptionNotFound) {
			// Deleted between the event and now, nothing to schedule.
			return s.scheduler.Remove(ctx, event.AggregateID)
		}
		s.logger.Error("failed to load subscription for reminder sync",
			"subscription_id", event.AggregateID,
			"error", err,
		)
		return err
	}

	if err := s.scheduler.Sync(ctx, sub); err != nil {
		s.logger.Error("failed to sync reminders",
			"subscription_id", sub.ID(),
			"error", err,
		)
		return err
	}

	s.logger.Debug("reminders synced",
		"subscription_id", sub.ID(),
		"routing_key", event.RoutingKey,
	)
	return nil
}

func (s *ReminderSubscriber) cancelReminders(ctx context.Context, event *eventbus.ConsumedEvent) error {
	if err := s.scheduler.CancelAll(ctx, event.AggregateID); err != nil {
		s.logger.Error("failed to cancel reminders",
			"subscription_id", event.AggregateID,
			"error", err,
		)
		return err
	}
	return nil
}

func (s *ReminderSubscriber) removeReminders(ctx context.Context, event *eventbus.ConsumedEvent) error {
	if err := s.scheduler.Remove(ctx, event.AggregateID); err != nil {
		s.logger.Error("failed to remove reminders",
			"subscription_id", event.AggregateID,
			"error", err,
		)
		return err
	}
	return nil
}
