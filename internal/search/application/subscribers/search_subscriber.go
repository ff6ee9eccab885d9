package subscribers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/subtrack/internal/search/application"
	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/eventbus"
	trackingDomain "github.com/felixgeelhaar/subtrack/internal/tracking/domain"
)

// SearchSubscriber keeps the search index in sync with subscription lifecycle
// events.
type SearchSubscriber struct {
	indexer          *application.Indexer
	subscriptionRepo trackingDomain.SubscriptionRepository
	logger           *slog.Logger
}

// NewSearchSubscriber creates a new search subscriber.
func NewSearchSubscriber(
	indexer *application.Indexer,
	subscriptionRepo trackingDomain.SubscriptionRepository,
	logger *slog.Logger,
) *SearchSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchSubscriber{
		indexer:          indexer,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

// EventTypes returns the event types this subscriber handles.
func (s *SearchSubscriber) EventTypes() []string {
	return []string{
		trackingDomain.EventSubscriptionCreated,
		trackingDomain.EventSubscriptionUpdated,
		trackingDomain.EventSubscriptionEnded,
		trackingDomain.EventSubscriptionArchived,
		trackingDomain.EventSubscriptionDeleted,
	}
}

// Handle processes an event.
func (s *SearchSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	switch event.RoutingKey {
	case trackingDomain.EventSubscriptionCreated,
		trackingDomain.EventSubscriptionUpdated,
		trackingDomain.EventSubscriptionEnded:
		return s.reindex(ctx, event)
	case trackingDomain.EventSubscriptionArchived,
		trackingDomain.EventSubscriptionDeleted:
		return s.indexer.Deindex(ctx, event.AggregateID)
	default:
		s.logger.Warn("unknown event type",
			"routing_key", event.RoutingKey,
		)
		return nil
	}
}

func (s *SearchSubscriber) reindex(ctx context.Context, event *eventbus.ConsumedEvent) error {
	sub, err := s.subscriptionRepo.FindByID(ctx, event.AggregateID)
	if err != nil {
		if errors.Is(err, trackingDomain.ErrSubscriptionNotFound) {
			return s.indexer.Deindex(ctx, event.AggregateID)
		}
		s.logger.Error("failed to load subscription for indexing",
			"subscription_id", event.AggregateID,
			"error", err,
		)
		return err
	}
	return s.indexer.Index(ctx, sub)
}
