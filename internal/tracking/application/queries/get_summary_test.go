package queries

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetSummaryHandler_Handle(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)

	t.Run("aggregates totals, upcoming charges and breakdown", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		handler := NewGetSummaryHandler(repo, fixedClock(now))

		// Monthly sub charging on the 20th and a yearly sub renewing in July.
		monthly := testSubscription(t, userID, "Netflix", 10.0, domain.CycleMonthly,
			time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC))
		yearly := testSubscription(t, userID, "iCloud", 120.0, domain.CycleYearly,
			time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))
		subs := []*domain.Subscription{monthly, yearly}
		repo.On("FindByUserID", mock.Anything, userID).Return(subs, nil)

		result, err := handler.Handle(context.Background(), GetSummaryQuery{UserID: userID})

		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Equal(t, 2, result.ActiveCount)
		assert.InDelta(t, 20.0, result.MonthlyTotal, 0.001)
		assert.InDelta(t, 240.0, result.YearlyTotal, 0.001)

		// Jun 20 falls inside the default 14-day window, Jul 1 does not.
		require.Len(t, result.Upcoming, 1)
		assert.Equal(t, "Netflix", result.Upcoming[0].Name)
		assert.Equal(t, time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC), result.Upcoming[0].ChargeDate)
		assert.Equal(t, 5, result.Upcoming[0].DaysUntil)

		// Next 30 days: Jun 20 charge plus the Jul 1 renewal.
		assert.InDelta(t, 130.0, result.Next30DayTotal, 0.001)
		// Next 90 days: Jun 20, Jul 20, Aug 20, Sep 12 is out (Sep 20 > Sep 13),
		// plus Jul 1. Window end is Sep 13.
		assert.InDelta(t, 150.0, result.Next90DayTotal, 0.001)

		require.Len(t, result.MonthlyBreakdown, domain.DefaultHorizonMonths)
		assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), result.MonthlyBreakdown[0].Month)
		assert.InDelta(t, 130.0, result.MonthlyBreakdown[1].Total, 0.001) // July: 10 + 120
	})

	t.Run("ranks the most expensive subscriptions", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		handler := NewGetSummaryHandler(repo, fixedClock(now))

		ref := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
		subs := []*domain.Subscription{
			testSubscription(t, userID, "A", 1.0, domain.CycleMonthly, ref),
			testSubscription(t, userID, "B", 50.0, domain.CycleMonthly, ref),
			testSubscription(t, userID, "C", 5.0, domain.CycleMonthly, ref),
			testSubscription(t, userID, "D", 20.0, domain.CycleMonthly, ref),
			testSubscription(t, userID, "E", 8.0, domain.CycleMonthly, ref),
			testSubscription(t, userID, "F", 3.0, domain.CycleMonthly, ref),
		}
		repo.On("FindByUserID", mock.Anything, userID).Return(subs, nil)

		result, err := handler.Handle(context.Background(), GetSummaryQuery{UserID: userID})

		require.NoError(t, err)
		require.Len(t, result.TopByMonthlyCost, topSubscriptionCount)
		assert.Equal(t, "B", result.TopByMonthlyCost[0].Name)
		assert.Equal(t, "D", result.TopByMonthlyCost[1].Name)
		assert.Equal(t, "A", result.TopByMonthlyCost[4].Name)
	})

	t.Run("excludes archived subscriptions from totals", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		handler := NewGetSummaryHandler(repo, fixedClock(now))

		ref := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
		subs := []*domain.Subscription{
			testSubscription(t, userID, "Active", 10.0, domain.CycleMonthly, ref),
			archivedSubscription(userID, "Archived", ref),
		}
		repo.On("FindByUserID", mock.Anything, userID).Return(subs, nil)

		result, err := handler.Handle(context.Background(), GetSummaryQuery{UserID: userID})

		require.NoError(t, err)
		assert.Equal(t, 1, result.ActiveCount)
		assert.InDelta(t, 10.0, result.MonthlyTotal, 0.001)
		require.Len(t, result.TopByMonthlyCost, 1)
	})

	t.Run("returns empty summary for no subscriptions", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		handler := NewGetSummaryHandler(repo, fixedClock(now))

		repo.On("FindByUserID", mock.Anything, userID).Return([]*domain.Subscription{}, nil)

		result, err := handler.Handle(context.Background(), GetSummaryQuery{UserID: userID})

		require.NoError(t, err)
		assert.Zero(t, result.ActiveCount)
		assert.Zero(t, result.MonthlyTotal)
		assert.Empty(t, result.Upcoming)
		require.Len(t, result.MonthlyBreakdown, domain.DefaultHorizonMonths)
		assert.Zero(t, result.MonthlyBreakdown[0].Total)
	})
}
