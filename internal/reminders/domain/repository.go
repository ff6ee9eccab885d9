package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for reminders.
type Repository interface {
	// Save persists a reminder (insert or update).
	Save(ctx context.Context, reminder *Reminder) error

	// FindDue retrieves scheduled reminders with fire_at at or before the
	// given time, oldest first.
	FindDue(ctx context.Context, before time.Time, limit int) ([]*Reminder, error)

	// FindScheduledBySubscription retrieves the scheduled reminders for one
	// subscription.
	FindScheduledBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]*Reminder, error)

	// DeleteBySubscription removes all reminders for a subscription.
	DeleteBySubscription(ctx context.Context, subscriptionID uuid.UUID) error
}
