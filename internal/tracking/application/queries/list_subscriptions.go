package queries

import (
	"context"
	"sort"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	"github.com/google/uuid"
)

// SubscriptionDTO is a data transfer object for subscriptions.
type SubscriptionDTO struct {
	ID             uuid.UUID
	Name           string
	Amount         float64
	Currency       string
	Cycle          string
	Category       string
	ReferenceDate  time.Time
	EndDate        *time.Time
	Notes          string
	IsArchived     bool
	IsActive       bool
	MonthlyCost    float64
	NextChargeDate *time.Time
	CreatedAt      time.Time
}

// ListSubscriptionsQuery contains the parameters for listing subscriptions.
type ListSubscriptionsQuery struct {
	UserID          uuid.UUID
	IncludeArchived bool
	Category        string // Filter by category: "streaming", "music", etc.
	SortBy          string // "name", "amount", "next_charge", "created_at"
	SortOrder       string // "asc", "desc"
}

// ListSubscriptionsHandler handles the ListSubscriptionsQuery.
type ListSubscriptionsHandler struct {
	subscriptionRepo domain.SubscriptionRepository
	now              func() time.Time
}

// NewListSubscriptionsHandler creates a new ListSubscriptionsHandler. A nil
// clock defaults to time.Now.
func NewListSubscriptionsHandler(subscriptionRepo domain.SubscriptionRepository, now func() time.Time) *ListSubscriptionsHandler {
	if now == nil {
		now = time.Now
	}
	return &ListSubscriptionsHandler{subscriptionRepo: subscriptionRepo, now: now}
}

// Handle executes the ListSubscriptionsQuery.
func (h *ListSubscriptionsHandler) Handle(ctx context.Context, query ListSubscriptionsQuery) ([]SubscriptionDTO, error) {
	subs, err := h.subscriptionRepo.FindByUserID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	if !query.IncludeArchived {
		subs = filterUnarchived(subs)
	}
	if query.Category != "" {
		subs = filterByCategory(subs, query.Category)
	}

	now := h.now()
	dtos := toSubscriptionDTOs(subs, now)
	sortSubscriptionDTOs(dtos, query.SortBy, query.SortOrder)

	return dtos, nil
}

func filterUnarchived(subs []*domain.Subscription) []*domain.Subscription {
	var filtered []*domain.Subscription
	for _, s := range subs {
		if !s.IsArchived() {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func filterByCategory(subs []*domain.Subscription, category string) []*domain.Subscription {
	var filtered []*domain.Subscription
	for _, s := range subs {
		if string(s.Category()) == category {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func sortSubscriptionDTOs(dtos []SubscriptionDTO, sortBy, sortOrder string) {
	if sortBy == "" {
		return
	}
	asc := sortOrder != "desc"

	less := func(i, j int) bool { return false }
	switch sortBy {
	case "name":
		less = func(i, j int) bool { return dtos[i].Name < dtos[j].Name }
	case "amount":
		less = func(i, j int) bool { return dtos[i].MonthlyCost < dtos[j].MonthlyCost }
	case "created_at":
		less = func(i, j int) bool { return dtos[i].CreatedAt.Before(dtos[j].CreatedAt) }
	case "next_charge":
		// Subscriptions without an upcoming charge sort last.
		less = func(i, j int) bool {
			a, b := dtos[i].NextChargeDate, dtos[j].NextChargeDate
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.Before(*b)
		}
	default:
		return
	}

	if asc {
		sort.SliceStable(dtos, less)
	} else {
		sort.SliceStable(dtos, func(i, j int) bool { return less(j, i) })
	}
}

func toSubscriptionDTO(s *domain.Subscription, now time.Time) SubscriptionDTO {
	dto := SubscriptionDTO{
		ID:            s.ID(),
		Name:          s.Name(),
		Amount:        s.Amount(),
		Currency:      s.Currency(),
		Cycle:         string(s.Cycle()),
		Category:      string(s.Category()),
		ReferenceDate: s.ReferenceDate(),
		EndDate:       s.EndDate(),
		Notes:         s.Notes(),
		IsArchived:    s.IsArchived(),
		IsActive:      s.IsActive(now),
		MonthlyCost:   s.MonthlyCost(),
		CreatedAt:     s.CreatedAt(),
	}
	if next, ok := domain.NextChargeDate(s, now); ok {
		dto.NextChargeDate = &next
	}
	return dto
}

func toSubscriptionDTOs(subs []*domain.Subscription, now time.Time) []SubscriptionDTO {
	dtos := make([]SubscriptionDTO, len(subs))
	for i, s := range subs {
		dtos[i] = toSubscriptionDTO(s, now)
	}
	return dtos
}
