package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/reminders/domain"
	trackingDomain "github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	"github.com/google/uuid"
)

// DefaultLeadDays is how far ahead of a charge the lead reminder fires.
const DefaultLeadDays = 3

// Scheduler keeps a subscription's reminders in sync with its projected next
// charge date.
type Scheduler struct {
	reminderRepo domain.Repository
	leadDays     int
	logger       *slog.Logger
	now          func() time.Time
}

// NewScheduler creates a new Scheduler. A nil clock defaults to time.Now.
func NewScheduler(reminderRepo domain.Repository, leadDays int, logger *slog.Logger, now func() time.Time) *Scheduler {
	if leadDays <= 0 {
		leadDays = DefaultLeadDays
	}
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		reminderRepo: reminderRepo,
		leadDays:     leadDays,
		logger:       logger,
		now:          now,
	}
}

// Sync cancels a subscription's scheduled reminders and schedules fresh ones
// for its next charge. Inactive or terminated subscriptions end up with no
// scheduled reminders.
func (s *Scheduler) Sync(ctx context.Context, sub *trackingDomain.Subscription) error {
	if err := s.CancelAll(ctx, sub.ID()); err != nil {
		return err
	}

	now := s.now()
	if !sub.IsActive(now) {
		return nil
	}
	next, ok := trackingDomain.NextChargeDate(sub, now)
	if !ok {
		return nil
	}

	chargeDay := trackingDomain.StartOfDay(next)
	if err := s.schedule(ctx, sub, domain.KindRenewal, chargeDay, now); err != nil {
		return err
	}

	leadDay := chargeDay.AddDate(0, 0, -s.leadDays)
	if leadDay.After(now) {
		if err := s.schedule(ctx, sub, domain.KindLead, leadDay, now); err != nil {
			return err
		}
	}

	return nil
}

// CancelAll cancels every scheduled reminder for a subscription.
func (s *Scheduler) CancelAll(ctx context.Context, subscriptionID uuid.UUID) error {
	scheduled, err := s.reminderRepo.FindScheduledBySubscription(ctx, subscriptionID)
	if err != nil {
		return fmt.Errorf("find scheduled reminders: %w", err)
	}
	for _, r := range scheduled {
		if err := r.Cancel(); err != nil {
			return err
		}
		if err := s.reminderRepo.Save(ctx, r); err != nil {
			return fmt.Errorf("cancel reminder: %w", err)
		}
	}
	return nil
}

// Remove deletes every reminder for a subscription, scheduled or not.
func (s *Scheduler) Remove(ctx context.Context, subscriptionID uuid.UUID) error {
	return s.reminderRepo.DeleteBySubscription(ctx, subscriptionID)
}

func (s *Scheduler) schedule(ctx context.Context, sub *trackingDomain.Subscription, kind domain.Kind, fireAt, now time.Time) error {
	reminder, err := domain.NewReminder(sub.ID(), sub.UserID(), kind, fireAt)
	if err != nil {
		return err
	}
	if err := s.reminderRepo.Save(ctx, reminder); err != nil {
		return fmt.Errorf("save reminder: %w", err)
	}

	s.logger.Debug("reminder scheduled",
		"subscription_id", sub.ID(),
		"kind", kind,
		"fire_at", fireAt,
	)
	return nil
}
