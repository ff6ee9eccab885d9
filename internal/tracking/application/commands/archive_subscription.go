package commands

import (
	"context"

	sharedApplication "github.com/felixgeelhaar/subtrack/internal/shared/application"
	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	"github.com/google/uuid"
)

// ArchiveSubscriptionCommand hides a subscription from all projections.
type ArchiveSubscriptionCommand struct {
	SubscriptionID uuid.UUID
	UserID         uuid.UUID
}

// ArchiveSubscriptionHandler handles the ArchiveSubscriptionCommand.
type ArchiveSubscriptionHandler struct {
	subscriptionRepo domain.SubscriptionRepository
	outboxRepo       outbox.Repository
	uow              sharedApplication.UnitOfWork
}

// NewArchiveSubscriptionHandler creates a new ArchiveSubscriptionHandler.
func NewArchiveSubscriptionHandler(
	subscriptionRepo domain.SubscriptionRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *ArchiveSubscriptionHandler {
	return &ArchiveSubscriptionHandler{
		subscriptionRepo: subscriptionRepo,
		outboxRepo:       outboxRepo,
		uow:              uow,
	}
}

// Handle executes the ArchiveSubscriptionCommand.
func (h *ArchiveSubscriptionHandler) Handle(ctx context.Context, cmd ArchiveSubscriptionCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		sub, err := h.subscriptionRepo.FindByID(txCtx, cmd.SubscriptionID)
		if err != nil {
			return err
		}

		sub.Archive()

		if err := h.subscriptionRepo.Save(txCtx, sub); err != nil {
			return err
		}

		return saveEventsToOutbox(txCtx, h.outboxRepo, sub, cmd.UserID)
	})
}
