package queries

import (
	"context"
	"sort"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	"github.com/google/uuid"
)

// UpcomingChargeDTO is a renewal due within the upcoming window.
type UpcomingChargeDTO struct {
	SubscriptionID uuid.UUID
	Name           string
	Amount         float64
	Currency       string
	ChargeDate     time.Time
	DaysUntil      int
}

// MonthBucketDTO is the projected spend for one calendar month.
type MonthBucketDTO struct {
	Month time.Time
	Total float64
}

// SummaryDTO aggregates spending projections across all of a user's active
// subscriptions.
type SummaryDTO struct {
	ActiveCount      int
	MonthlyTotal     float64
	YearlyTotal      float64
	Next30DayTotal   float64
	Next90DayTotal   float64
	Upcoming         []UpcomingChargeDTO
	MonthlyBreakdown []MonthBucketDTO
	TopByMonthlyCost []SubscriptionDTO
}

// topSubscriptionCount bounds the "most expensive" list in the summary.
const topSubscriptionCount = 5

// GetSummaryQuery contains the parameters for the spending summary. Zero
// values select the default window and horizon.
type GetSummaryQuery struct {
	UserID        uuid.UUID
	WindowDays    int
	HorizonMonths int
}

// GetSummaryHandler handles the GetSummaryQuery.
type GetSummaryHandler struct {
	subscriptionRepo domain.SubscriptionRepository
	now              func() time.Time
}

// NewGetSummaryHandler creates a new GetSummaryHandler. A nil clock defaults
// to time.Now.
func NewGetSummaryHandler(subscriptionRepo domain.SubscriptionRepository, now func() time.Time) *GetSummaryHandler {
	if now == nil {
		now = time.Now
	}
	return &GetSummaryHandler{subscriptionRepo: subscriptionRepo, now: now}
}

// Handle executes the GetSummaryQuery.
func (h *GetSummaryHandler) Handle(ctx context.Context, query GetSummaryQuery) (*SummaryDTO, error) {
	subs, err := h.subscriptionRepo.FindByUserID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	now := h.now()
	windowDays := query.WindowDays
	if windowDays <= 0 {
		windowDays = domain.DefaultUpcomingWindowDays
	}

	summary := &SummaryDTO{
		MonthlyTotal:   domain.MonthlyTotal(subs, now),
		YearlyTotal:    domain.YearlyTotal(subs, now),
		Next30DayTotal: chargeTotalWithin(subs, now, 30),
		Next90DayTotal: chargeTotalWithin(subs, now, 90),
	}

	for _, s := range subs {
		if s.IsActive(now) {
			summary.ActiveCount++
		}
	}

	today := domain.StartOfDay(now)
	for _, s := range domain.Upcoming(subs, now, windowDays) {
		next, ok := domain.NextChargeDate(s, now)
		if !ok {
			continue
		}
		summary.Upcoming = append(summary.Upcoming, UpcomingChargeDTO{
			SubscriptionID: s.ID(),
			Name:           s.Name(),
			Amount:         s.Amount(),
			Currency:       s.Currency(),
			ChargeDate:     next,
			DaysUntil:      int(domain.StartOfDay(next).Sub(today).Hours() / 24),
		})
	}

	for _, b := range domain.MonthlyBreakdown(subs, now, query.HorizonMonths) {
		summary.MonthlyBreakdown = append(summary.MonthlyBreakdown, MonthBucketDTO{Month: b.Month, Total: b.Total})
	}

	summary.TopByMonthlyCost = topByMonthlyCost(subs, now)

	return summary, nil
}

// chargeTotalWithin sums every charge falling within the next `days` days,
// counting a subscription multiple times when several of its renewals land in
// the window.
func chargeTotalWithin(subs []*domain.Subscription, now time.Time, days int) float64 {
	today := domain.StartOfDay(now)
	windowEnd := today.AddDate(0, 0, days)

	var total float64
	for _, s := range subs {
		if !s.IsActive(now) {
			continue
		}
		charge, ok := domain.NextChargeDate(s, now)
		if !ok {
			continue
		}
		step := s.Cycle().Months()
		for !domain.StartOfDay(charge).After(windowEnd) {
			if end := s.EndDate(); end != nil && domain.StartOfDay(charge).After(domain.StartOfDay(*end)) {
				break
			}
			total += s.Amount()
			charge = domain.AddMonths(charge, step)
		}
	}
	return total
}

func topByMonthlyCost(subs []*domain.Subscription, now time.Time) []SubscriptionDTO {
	var active []*domain.Subscription
	for _, s := range subs {
		if s.IsActive(now) {
			active = append(active, s)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].MonthlyCost() > active[j].MonthlyCost()
	})
	if len(active) > topSubscriptionCount {
		active = active[:topSubscriptionCount]
	}
	return toSubscriptionDTOs(active, now)
}
