package commands

import (
	"context"

	sharedApplication "github.com/felixgeelhaar/subtrack/internal/shared/application"
	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	"github.com/google/uuid"
)

// DeleteSubscriptionCommand permanently removes a subscription.
type DeleteSubscriptionCommand struct {
	SubscriptionID uuid.UUID
	UserID         uuid.UUID
}

// DeleteSubscriptionHandler handles the DeleteSubscriptionCommand.
type DeleteSubscriptionHandler struct {
	subscriptionRepo domain.SubscriptionRepository
	outboxRepo       outbox.Repository
	uow              sharedApplication.UnitOfWork
}

// NewDeleteSubscriptionHandler creates a new DeleteSubscriptionHandler.
func NewDeleteSubscriptionHandler(
	subscriptionRepo domain.SubscriptionRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *DeleteSubscriptionHandler {
	return &DeleteSubscriptionHandler{
		subscriptionRepo: subscriptionRepo,
		outboxRepo:       outboxRepo,
		uow:              uow,
	}
}

// Handle executes the DeleteSubscriptionCommand.
func (h *DeleteSubscriptionHandler) Handle(ctx context.Context, cmd DeleteSubscriptionCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		sub, err := h.subscriptionRepo.FindByID(txCtx, cmd.SubscriptionID)
		if err != nil {
			return err
		}

		if err := h.subscriptionRepo.Delete(txCtx, cmd.SubscriptionID); err != nil {
			return err
		}

		// The deletion event lets reminder and search consumers clean up.
		sub.ClearDomainEvents()
		sub.AddDomainEvent(domain.NewSubscriptionDeleted(sub))

		return saveEventsToOutbox(txCtx, h.outboxRepo, sub, cmd.UserID)
	})
}
