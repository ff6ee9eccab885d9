package domain

import (
	"errors"
	"time"

	sharedDomain "github.com/felixgeelhaar/subtrack/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	// ErrReminderBadKind is returned for an unknown reminder kind.
	ErrReminderBadKind = errors.New("reminder kind must be 'lead' or 'renewal'")
	// ErrReminderNotScheduled is returned when a reminder has already been
	// sent or canceled.
	ErrReminderNotScheduled = errors.New("reminder is no longer scheduled")
)

// Kind distinguishes the advance notice from the renewal-day notice.
type Kind string

const (
	// KindLead fires a configurable number of days before the charge.
	KindLead Kind = "lead"
	// KindRenewal fires on the charge date itself.
	KindRenewal Kind = "renewal"
)

// IsValid checks if the kind is a valid value.
func (k Kind) IsValid() bool {
	return k == KindLead || k == KindRenewal
}

// Status is the lifecycle state of a reminder.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusSent      Status = "sent"
	StatusCanceled  Status = "canceled"
)

// Reminder is a single pending notification for an upcoming charge.
type Reminder struct {
	sharedDomain.BaseEntity

	subscriptionID uuid.UUID
	userID         uuid.UUID
	kind           Kind
	fireAt         time.Time
	status         Status
}

// NewReminder schedules a reminder for a subscription charge.
func NewReminder(subscriptionID, userID uuid.UUID, kind Kind, fireAt time.Time) (*Reminder, error) {
	if !kind.IsValid() {
		return nil, ErrReminderBadKind
	}
	return &Reminder{
		BaseEntity:     sharedDomain.NewBaseEntity(),
		subscriptionID: subscriptionID,
		userID:         userID,
		kind:           kind,
		fireAt:         fireAt,
		status:         StatusScheduled,
	}, nil
}

// SubscriptionID returns the subscription this reminder belongs to.
func (r *Reminder) SubscriptionID() uuid.UUID { return r.subscriptionID }

// UserID returns the owner of the reminder.
func (r *Reminder) UserID() uuid.UUID { return r.userID }

// Kind returns the reminder kind.
func (r *Reminder) Kind() Kind { return r.kind }

// FireAt returns when the reminder is due.
func (r *Reminder) FireAt() time.Time { return r.fireAt }

// Status returns the lifecycle state.
func (r *Reminder) Status() Status { return r.status }

// IsDue reports whether a scheduled reminder should fire at the given time.
func (r *Reminder) IsDue(now time.Time) bool {
	return r.status == StatusScheduled && !r.fireAt.After(now)
}

// MarkSent records that the reminder was delivered.
func (r *Reminder) MarkSent() error {
	if r.status != StatusScheduled {
		return ErrReminderNotScheduled
	}
	r.status = StatusSent
	r.Touch()
	return nil
}

// Cancel withdraws a scheduled reminder, typically because the subscription
// ended or its charge date moved.
func (r *Reminder) Cancel() error {
	if r.status != StatusScheduled {
		return ErrReminderNotScheduled
	}
	r.status = StatusCanceled
	r.Touch()
	return nil
}

// RehydrateReminder reconstructs a reminder from persistence.
func RehydrateReminder(
	id uuid.UUID,
	subscriptionID uuid.UUID,
	userID uuid.UUID,
	kind Kind,
	fireAt time.Time,
	status Status,
	createdAt time.Time,
	updatedAt time.Time,
) *Reminder {
	return &Reminder{
		BaseEntity:     sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		subscriptionID: subscriptionID,
		userID:         userID,
		kind:           kind,
		fireAt:         fireAt,
		status:         status,
	}
}
