package commands

import (
	"context"
	"time"

	sharedApplication "github.com/felixgeelhaar/subtrack/internal/shared/application"
	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	"github.com/google/uuid"
)

// UpdateSubscriptionCommand edits a subscription. Nil fields are left
// unchanged.
type UpdateSubscriptionCommand struct {
	SubscriptionID uuid.UUID
	UserID         uuid.UUID
	Name           *string
	Amount         *float64
	Currency       *string
	Cycle          *string
	Category       *string
	ReferenceDate  *time.Time
	Notes          *string
	ClearEndDate   bool
}

// UpdateSubscriptionHandler handles the UpdateSubscriptionCommand.
type UpdateSubscriptionHandler struct {
	subscriptionRepo domain.SubscriptionRepository
	outboxRepo       outbox.Repository
	uow              sharedApplication.UnitOfWork
}

// NewUpdateSubscriptionHandler creates a new UpdateSubscriptionHandler.
func NewUpdateSubscriptionHandler(
	subscriptionRepo domain.SubscriptionRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *UpdateSubscriptionHandler {
	return &UpdateSubscriptionHandler{
		subscriptionRepo: subscriptionRepo,
		outboxRepo:       outboxRepo,
		uow:              uow,
	}
}

// Handle executes the UpdateSubscriptionCommand.
func (h *UpdateSubscriptionHandler) Handle(ctx context.Context, cmd UpdateSubscriptionCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		sub, err := h.subscriptionRepo.FindByID(txCtx, cmd.SubscriptionID)
		if err != nil {
			return err
		}

		if cmd.Name != nil {
			if err := sub.SetName(*cmd.Name); err != nil {
				return err
			}
		}
		if cmd.Amount != nil {
			if err := sub.SetAmount(*cmd.Amount); err != nil {
				return err
			}
		}
		if cmd.Currency != nil {
			if err := sub.SetCurrency(*cmd.Currency); err != nil {
				return err
			}
		}
		if cmd.Cycle != nil {
			if err := sub.SetCycle(domain.BillingCycle(*cmd.Cycle)); err != nil {
				return err
			}
		}
		if cmd.Category != nil {
			sub.SetCategory(domain.Category(*cmd.Category))
		}
		if cmd.ReferenceDate != nil {
			if err := sub.SetReferenceDate(*cmd.ReferenceDate); err != nil {
				return err
			}
		}
		if cmd.Notes != nil {
			sub.SetNotes(*cmd.Notes)
		}
		if cmd.ClearEndDate {
			if err := sub.ClearEndDate(); err != nil {
				return err
			}
		}

		sub.MarkUpdated()

		if err := h.subscriptionRepo.Save(txCtx, sub); err != nil {
			return err
		}

		return saveEventsToOutbox(txCtx, h.outboxRepo, sub, cmd.UserID)
	})
}
