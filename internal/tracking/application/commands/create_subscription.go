package commands

import (
	"context"
	"errors"
	"time"

	sharedApplication "github.com/felixgeelhaar/subtrack/internal/shared/application"
	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	"github.com/google/uuid"
)

// FreeTierSubscriptionLimit caps how many active subscriptions a user
// without the unlimited entitlement can track.
const FreeTierSubscriptionLimit = 5

// FeatureUnlimitedSubscriptions is the entitlement lifting the free-tier cap.
const FeatureUnlimitedSubscriptions = "unlimited-subscriptions"

// ErrSubscriptionLimitReached is returned when the free-tier cap is hit.
var ErrSubscriptionLimitReached = errors.New("subscription limit reached, upgrade to add more")

// EntitlementChecker reports whether a user holds a feature entitlement.
type EntitlementChecker interface {
	HasEntitlement(ctx context.Context, userID uuid.UUID, feature string) (bool, error)
}

// CreateSubscriptionCommand contains the data needed to create a subscription.
type CreateSubscriptionCommand struct {
	UserID        uuid.UUID
	Name          string
	Amount        float64
	Currency      string
	Cycle         string
	Category      string
	ReferenceDate time.Time
	EndDate       *time.Time
	Notes         string
}

// CreateSubscriptionResult contains the result of creating a subscription.
type CreateSubscriptionResult struct {
	SubscriptionID uuid.UUID
}

// CreateSubscriptionHandler handles the CreateSubscriptionCommand.
type CreateSubscriptionHandler struct {
	subscriptionRepo domain.SubscriptionRepository
	outboxRepo       outbox.Repository
	entitlements     EntitlementChecker
	uow              sharedApplication.UnitOfWork
}

// NewCreateSubscriptionHandler creates a new CreateSubscriptionHandler.
func NewCreateSubscriptionHandler(
	subscriptionRepo domain.SubscriptionRepository,
	outboxRepo outbox.Repository,
	entitlements EntitlementChecker,
	uow sharedApplication.UnitOfWork,
) *CreateSubscriptionHandler {
	return &CreateSubscriptionHandler{
		subscriptionRepo: subscriptionRepo,
		outboxRepo:       outboxRepo,
		entitlements:     entitlements,
		uow:              uow,
	}
}

// Handle executes the CreateSubscriptionCommand.
func (h *CreateSubscriptionHandler) Handle(ctx context.Context, cmd CreateSubscriptionCommand) (*CreateSubscriptionResult, error) {
	var result *CreateSubscriptionResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.checkLimit(txCtx, cmd.UserID); err != nil {
			return err
		}

		sub, err := domain.NewSubscription(
			cmd.UserID,
			cmd.Name,
			cmd.Amount,
			cmd.Currency,
			domain.BillingCycle(cmd.Cycle),
			domain.Category(cmd.Category),
			cmd.ReferenceDate,
			cmd.EndDate,
		)
		if err != nil {
			return err
		}

		if cmd.Notes != "" {
			sub.SetNotes(cmd.Notes)
		}

		if err := h.subscriptionRepo.Save(txCtx, sub); err != nil {
			return err
		}

		if err := saveEventsToOutbox(txCtx, h.outboxRepo, sub, cmd.UserID); err != nil {
			return err
		}

		result = &CreateSubscriptionResult{SubscriptionID: sub.ID()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (h *CreateSubscriptionHandler) checkLimit(ctx context.Context, userID uuid.UUID) error {
	unlimited, err := h.entitlements.HasEntitlement(ctx, userID, FeatureUnlimitedSubscriptions)
	if err != nil {
		return err
	}
	if unlimited {
		return nil
	}

	count, err := h.subscriptionRepo.CountActiveByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if count >= FreeTierSubscriptionLimit {
		return ErrSubscriptionLimitReached
	}
	return nil
}

// saveEventsToOutbox stamps metadata on the aggregate's uncommitted events
// and stores them in the outbox within the ambient transaction.
func saveEventsToOutbox(ctx context.Context, repo outbox.Repository, sub *domain.Subscription, userID uuid.UUID) error {
	events := sub.DomainEvents()
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(userID))

	msgs := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := repo.SaveBatch(ctx, msgs); err != nil {
		return err
	}

	sub.ClearDomainEvents()
	return nil
}
