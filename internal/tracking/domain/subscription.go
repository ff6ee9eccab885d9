package domain

import (
	"errors"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/subtrack/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrSubscriptionEmptyName  = errors.New("subscription name cannot be empty")
	ErrSubscriptionBadAmount  = errors.New("amount must be positive")
	ErrSubscriptionBadCycle   = errors.New("invalid billing cycle")
	ErrSubscriptionEndBefore  = errors.New("end date cannot be before the reference date")
	ErrSubscriptionArchived   = errors.New("subscription is archived")
	ErrSubscriptionNoCurrency = errors.New("currency cannot be empty")
)

// BillingCycle represents how often a subscription charges.
type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
)

// IsValid checks if the billing cycle is valid.
func (c BillingCycle) IsValid() bool {
	switch c {
	case CycleMonthly, CycleYearly:
		return true
	default:
		return false
	}
}

// Months returns the step size of the cycle in calendar months.
// The cycle stays an N-month step so new intervals only need a new constant.
func (c BillingCycle) Months() int {
	if c == CycleYearly {
		return 12
	}
	return 1
}

// Category groups subscriptions for display. Opaque to the projection logic.
type Category string

const (
	CategoryStreaming     Category = "streaming"
	CategoryMusic         Category = "music"
	CategorySoftware      Category = "software"
	CategoryGaming        Category = "gaming"
	CategoryFitness       Category = "fitness"
	CategoryNews          Category = "news"
	CategoryCloudStorage  Category = "cloud_storage"
	CategoryProductivity  Category = "productivity"
	CategoryEntertainment Category = "entertainment"
	CategoryOther         Category = "other"
)

// Subscription represents a recurring payment the user tracks.
type Subscription struct {
	sharedDomain.BaseAggregateRoot
	userID        uuid.UUID
	name          string
	amount        float64
	currency      string
	cycle         BillingCycle
	category      Category
	referenceDate time.Time
	endDate       *time.Time
	notes         string
	archived      bool
}

// NewSubscription creates a new subscription.
// The reference date anchors the billing cycle; it may lie in the past.
func NewSubscription(
	userID uuid.UUID,
	name string,
	amount float64,
	currency string,
	cycle BillingCycle,
	category Category,
	referenceDate time.Time,
	endDate *time.Time,
) (*Subscription, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrSubscriptionEmptyName
	}
	if amount <= 0 {
		return nil, ErrSubscriptionBadAmount
	}
	if currency == "" {
		return nil, ErrSubscriptionNoCurrency
	}
	if !cycle.IsValid() {
		return nil, ErrSubscriptionBadCycle
	}
	if endDate != nil && endDate.Before(referenceDate) {
		return nil, ErrSubscriptionEndBefore
	}
	if category == "" {
		category = CategoryOther
	}

	sub := &Subscription{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		userID:            userID,
		name:              name,
		amount:            amount,
		currency:          strings.ToUpper(currency),
		cycle:             cycle,
		category:          category,
		referenceDate:     referenceDate,
		endDate:           endDate,
	}

	sub.AddDomainEvent(NewSubscriptionCreated(sub))

	return sub, nil
}

// Getters
func (s *Subscription) UserID() uuid.UUID        { return s.userID }
func (s *Subscription) Name() string             { return s.name }
func (s *Subscription) Amount() float64          { return s.amount }
func (s *Subscription) Currency() string         { return s.currency }
func (s *Subscription) Cycle() BillingCycle      { return s.cycle }
func (s *Subscription) Category() Category       { return s.category }
func (s *Subscription) ReferenceDate() time.Time { return s.referenceDate }
func (s *Subscription) EndDate() *time.Time      { return s.endDate }
func (s *Subscription) Notes() string            { return s.notes }
func (s *Subscription) IsArchived() bool         { return s.archived }

// IsActive reports whether the subscription still bills at the given time.
// A subscription whose end date has passed is inactive.
func (s *Subscription) IsActive(now time.Time) bool {
	if s.archived {
		return false
	}
	if s.endDate == nil {
		return true
	}
	return !s.endDate.Before(StartOfDay(now))
}

// MonthlyCost returns the amount normalized to a single month.
func (s *Subscription) MonthlyCost() float64 {
	return s.amount / float64(s.cycle.Months())
}

// YearlyCost returns the amount normalized to a full year.
func (s *Subscription) YearlyCost() float64 {
	return s.MonthlyCost() * 12
}

// SetName updates the subscription name.
func (s *Subscription) SetName(name string) error {
	if s.archived {
		return ErrSubscriptionArchived
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrSubscriptionEmptyName
	}
	s.name = name
	s.Touch()
	return nil
}

// SetAmount updates the charge amount.
func (s *Subscription) SetAmount(amount float64) error {
	if s.archived {
		return ErrSubscriptionArchived
	}
	if amount <= 0 {
		return ErrSubscriptionBadAmount
	}
	s.amount = amount
	s.Touch()
	return nil
}

// SetCurrency updates the currency code.
func (s *Subscription) SetCurrency(currency string) error {
	if s.archived {
		return ErrSubscriptionArchived
	}
	if currency == "" {
		return ErrSubscriptionNoCurrency
	}
	s.currency = strings.ToUpper(currency)
	s.Touch()
	return nil
}

// SetCycle updates the billing cycle.
func (s *Subscription) SetCycle(cycle BillingCycle) error {
	if s.archived {
		return ErrSubscriptionArchived
	}
	if !cycle.IsValid() {
		return ErrSubscriptionBadCycle
	}
	s.cycle = cycle
	s.Touch()
	return nil
}

// SetCategory updates the display category.
func (s *Subscription) SetCategory(category Category) {
	if category == "" {
		category = CategoryOther
	}
	s.category = category
	s.Touch()
}

// SetNotes updates the free-form notes.
func (s *Subscription) SetNotes(notes string) {
	s.notes = strings.TrimSpace(notes)
	s.Touch()
}

// SetReferenceDate moves the billing anchor. The end date, when set,
// must stay at or after the new anchor.
func (s *Subscription) SetReferenceDate(referenceDate time.Time) error {
	if s.archived {
		return ErrSubscriptionArchived
	}
	if s.endDate != nil && s.endDate.Before(referenceDate) {
		return ErrSubscriptionEndBefore
	}
	s.referenceDate = referenceDate
	s.Touch()
	return nil
}

// End terminates the subscription at the given date. No charge is
// projected or reconstructed after it.
func (s *Subscription) End(endDate time.Time) error {
	if s.archived {
		return ErrSubscriptionArchived
	}
	if endDate.Before(s.referenceDate) {
		return ErrSubscriptionEndBefore
	}
	s.endDate = &endDate
	s.Touch()
	s.AddDomainEvent(NewSubscriptionEnded(s))
	return nil
}

// ClearEndDate removes the termination date, resuming the series.
func (s *Subscription) ClearEndDate() error {
	if s.archived {
		return ErrSubscriptionArchived
	}
	s.endDate = nil
	s.Touch()
	return nil
}

// Archive hides the subscription from all projections.
func (s *Subscription) Archive() {
	if !s.archived {
		s.archived = true
		s.Touch()
		s.AddDomainEvent(NewSubscriptionArchived(s))
	}
}

// Unarchive restores an archived subscription.
func (s *Subscription) Unarchive() {
	if s.archived {
		s.archived = false
		s.Touch()
	}
}

// MarkUpdated records an update event after a batch of setter calls.
func (s *Subscription) MarkUpdated() {
	s.AddDomainEvent(NewSubscriptionUpdated(s))
}

// RehydrateSubscription recreates a subscription from persisted state
// without generating events.
func RehydrateSubscription(
	id uuid.UUID,
	userID uuid.UUID,
	name string,
	amount float64,
	currency string,
	cycle BillingCycle,
	category Category,
	referenceDate time.Time,
	endDate *time.Time,
	notes string,
	archived bool,
	createdAt time.Time,
	updatedAt time.Time,
) *Subscription {
	baseEntity := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)
	baseAggregate := sharedDomain.RehydrateBaseAggregateRoot(baseEntity)

	return &Subscription{
		BaseAggregateRoot: baseAggregate,
		userID:            userID,
		name:              name,
		amount:            amount,
		currency:          currency,
		cycle:             cycle,
		category:          category,
		referenceDate:     referenceDate,
		endDate:           endDate,
		notes:             notes,
		archived:          archived,
	}
}
