package commands

import (
	"context"
	"time"

	sharedApplication "github.com/felixgeelhaar/subtrack/internal/shared/application"
	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	"github.com/google/uuid"
)

// EndSubscriptionCommand terminates a subscription at a given date.
type EndSubscriptionCommand struct {
	SubscriptionID uuid.UUID
	UserID         uuid.UUID
	EndDate        time.Time
}

// EndSubscriptionHandler handles the EndSubscriptionCommand.
type EndSubscriptionHandler struct {
	subscriptionRepo domain.SubscriptionRepository
	outboxRepo       outbox.Repository
	uow              sharedApplication.UnitOfWork
}

// NewEndSubscriptionHandler creates a new EndSubscriptionHandler.
func NewEndSubscriptionHandler(
	subscriptionRepo domain.SubscriptionRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *EndSubscriptionHandler {
	return &EndSubscriptionHandler{
		subscriptionRepo: subscriptionRepo,
		outboxRepo:       outboxRepo,
		uow:              uow,
	}
}

// Handle executes the EndSubscriptionCommand.
func (h *EndSubscriptionHandler) Handle(ctx context.Context, cmd EndSubscriptionCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		sub, err := h.subscriptionRepo.FindByID(txCtx, cmd.SubscriptionID)
		if err != nil {
			return err
		}

		if err := sub.End(cmd.EndDate); err != nil {
			return err
		}

		if err := h.subscriptionRepo.Save(txCtx, sub); err != nil {
			return err
		}

		return saveEventsToOutbox(txCtx, h.outboxRepo, sub, cmd.UserID)
	})
}
