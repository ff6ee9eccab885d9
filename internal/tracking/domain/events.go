package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/subtrack/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "Subscription"

// Routing keys for subscription events.
const (
	EventSubscriptionCreated  = "tracking.subscription.created"
	EventSubscriptionUpdated  = "tracking.subscription.updated"
	EventSubscriptionEnded    = "tracking.subscription.ended"
	EventSubscriptionArchived = "tracking.subscription.archived"
	EventSubscriptionDeleted  = "tracking.subscription.deleted"
)

// SubscriptionCreated is emitted when a subscription is created.
type SubscriptionCreated struct {
	sharedDomain.BaseEvent
	SubscriptionID uuid.UUID  `json:"subscription_id"`
	UserID         uuid.UUID  `json:"user_id"`
	Name           string     `json:"name"`
	Amount         float64    `json:"amount"`
	Currency       string     `json:"currency"`
	Cycle          string     `json:"cycle"`
	ReferenceDate  time.Time  `json:"reference_date"`
	EndDate        *time.Time `json:"end_date,omitempty"`
}

// NewSubscriptionCreated creates a SubscriptionCreated event.
func NewSubscriptionCreated(s *Subscription) *SubscriptionCreated {
	return &SubscriptionCreated{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), aggregateType, EventSubscriptionCreated),
		SubscriptionID: s.ID(),
		UserID:         s.UserID(),
		Name:           s.Name(),
		Amount:         s.Amount(),
		Currency:       s.Currency(),
		Cycle:          string(s.Cycle()),
		ReferenceDate:  s.ReferenceDate(),
		EndDate:        s.EndDate(),
	}
}

// SubscriptionUpdated is emitted after a subscription edit.
type SubscriptionUpdated struct {
	sharedDomain.BaseEvent
	SubscriptionID uuid.UUID  `json:"subscription_id"`
	UserID         uuid.UUID  `json:"user_id"`
	Name           string     `json:"name"`
	Amount         float64    `json:"amount"`
	Currency       string     `json:"currency"`
	Cycle          string     `json:"cycle"`
	ReferenceDate  time.Time  `json:"reference_date"`
	EndDate        *time.Time `json:"end_date,omitempty"`
}

// NewSubscriptionUpdated creates a SubscriptionUpdated event.
func NewSubscriptionUpdated(s *Subscription) *SubscriptionUpdated {
	return &SubscriptionUpdated{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), aggregateType, EventSubscriptionUpdated),
		SubscriptionID: s.ID(),
		UserID:         s.UserID(),
		Name:           s.Name(),
		Amount:         s.Amount(),
		Currency:       s.Currency(),
		Cycle:          string(s.Cycle()),
		ReferenceDate:  s.ReferenceDate(),
		EndDate:        s.EndDate(),
	}
}

// SubscriptionEnded is emitted when an end date is set.
type SubscriptionEnded struct {
	sharedDomain.BaseEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
	EndDate        time.Time `json:"end_date"`
}

// NewSubscriptionEnded creates a SubscriptionEnded event.
func NewSubscriptionEnded(s *Subscription) *SubscriptionEnded {
	var endDate time.Time
	if s.EndDate() != nil {
		endDate = *s.EndDate()
	}
	return &SubscriptionEnded{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), aggregateType, EventSubscriptionEnded),
		SubscriptionID: s.ID(),
		UserID:         s.UserID(),
		EndDate:        endDate,
	}
}

// SubscriptionArchived is emitted when a subscription is archived.
type SubscriptionArchived struct {
	sharedDomain.BaseEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
}

// NewSubscriptionArchived creates a SubscriptionArchived event.
func NewSubscriptionArchived(s *Subscription) *SubscriptionArchived {
	return &SubscriptionArchived{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), aggregateType, EventSubscriptionArchived),
		SubscriptionID: s.ID(),
		UserID:         s.UserID(),
	}
}

// SubscriptionDeleted is emitted when a subscription is removed.
type SubscriptionDeleted struct {
	sharedDomain.BaseEvent
	SubscriptionID uuid.UUID `json:"subscription_id"`
	UserID         uuid.UUID `json:"user_id"`
}

// NewSubscriptionDeleted creates a SubscriptionDeleted event.
func NewSubscriptionDeleted(s *Subscription) *SubscriptionDeleted {
	return &SubscriptionDeleted{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID(), aggregateType, EventSubscriptionDeleted),
		SubscriptionID: s.ID(),
		UserID:         s.UserID(),
	}
}
