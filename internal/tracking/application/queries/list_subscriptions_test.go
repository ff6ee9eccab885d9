package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSubscriptionRepo struct {
	mock.Mock
}

func (m *mockSubscriptionRepo) Save(ctx context.Context, sub *domain.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) CountActiveByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockSubscriptionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testSubscription(t *testing.T, userID uuid.UUID, name string, amount float64, cycle domain.BillingCycle, ref time.Time) *domain.Subscription {
	t.Helper()
	sub, err := domain.NewSubscription(userID, name, amount, "USD", cycle, domain.CategoryStreaming, ref, nil)
	require.NoError(t, err)
	return sub
}

func archivedSubscription(userID uuid.UUID, name string, ref time.Time) *domain.Subscription {
	return domain.RehydrateSubscription(
		uuid.New(), userID, name, 5.0, "USD",
		domain.CycleMonthly, domain.CategoryOther,
		ref, nil, "", true, ref, ref,
	)
}

func TestListSubscriptionsHandler_Handle(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)
	ref := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)

	t.Run("successfully lists subscriptions with derived fields", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		handler := NewListSubscriptionsHandler(repo, fixedClock(now))

		subs := []*domain.Subscription{
			testSubscription(t, userID, "Netflix", 9.99, domain.CycleMonthly, ref),
			testSubscription(t, userID, "iCloud", 120.0, domain.CycleYearly, ref),
		}
		repo.On("FindByUserID", mock.Anything, userID).Return(subs, nil)

		result, err := handler.Handle(context.Background(), ListSubscriptionsQuery{UserID: userID})

		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, "Netflix", result[0].Name)
		assert.True(t, result[0].IsActive)
		require.NotNil(t, result[0].NextChargeDate)
		assert.Equal(t, time.Date(2025, time.July, 12, 0, 0, 0, 0, time.UTC), *result[0].NextChargeDate)
		assert.InDelta(t, 10.0, result[1].MonthlyCost, 0.001)

		repo.AssertExpectations(t)
	})

	t.Run("excludes archived subscriptions by default", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		handler := NewListSubscriptionsHandler(repo, fixedClock(now))

		subs := []*domain.Subscription{
			testSubscription(t, userID, "Netflix", 9.99, domain.CycleMonthly, ref),
			archivedSubscription(userID, "Old Gym", ref),
		}
		repo.On("FindByUserID", mock.Anything, userID).Return(subs, nil)

		result, err := handler.Handle(context.Background(), ListSubscriptionsQuery{UserID: userID})

		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "Netflix", result[0].Name)
	})

	t.Run("includes archived subscriptions when requested", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		handler := NewListSubscriptionsHandler(repo, fixedClock(now))

		subs := []*domain.Subscription{
			testSubscription(t, userID, "Netflix", 9.99, domain.CycleMonthly, ref),
			archivedSubscription(userID, "Old Gym", ref),
		}
		repo.On("FindByUserID", mock.Anything, userID).Return(subs, nil)

		result, err := handler.Handle(context.Background(), ListSubscriptionsQuery{
			UserID:          userID,
			IncludeArchived: true,
		})

		require.NoError(t, err)
		require.Len(t, result, 2)
	})

	t.Run("filters by category", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		handler := NewListSubscriptionsHandler(repo, fixedClock(now))

		music, err := domain.NewSubscription(userID, "Spotify", 10.99, "USD", domain.CycleMonthly, domain.CategoryMusic, ref, nil)
		require.NoError(t, err)
		subs := []*domain.Subscription{
			testSubscription(t, userID, "Netflix", 9.99, domain.CycleMonthly, ref),
			music,
		}
		repo.On("FindByUserID", mock.Anything, userID).Return(subs, nil)

		result, err := handler.Handle(context.Background(), ListSubscriptionsQuery{
			UserID:   userID,
			Category: string(domain.CategoryMusic),
		})

		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "Spotify", result[0].Name)
	})

	t.Run("sorts by monthly cost descending", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		handler := NewListSubscriptionsHandler(repo, fixedClock(now))

		subs := []*domain.Subscription{
			testSubscription(t, userID, "Cheap", 2.99, domain.CycleMonthly, ref),
			testSubscription(t, userID, "Pricey", 29.99, domain.CycleMonthly, ref),
			testSubscription(t, userID, "Middle", 9.99, domain.CycleMonthly, ref),
		}
		repo.On("FindByUserID", mock.Anything, userID).Return(subs, nil)

		result, err := handler.Handle(context.Background(), ListSubscriptionsQuery{
			UserID:    userID,
			SortBy:    "amount",
			SortOrder: "desc",
		})

		require.NoError(t, err)
		require.Len(t, result, 3)
		assert.Equal(t, "Pricey", result[0].Name)
		assert.Equal(t, "Middle", result[1].Name)
		assert.Equal(t, "Cheap", result[2].Name)
	})

	t.Run("sorts by name ascending", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		handler := NewListSubscriptionsHandler(repo, fixedClock(now))

		subs := []*domain.Subscription{
			testSubscription(t, userID, "Zulu", 1.0, domain.CycleMonthly, ref),
			testSubscription(t, userID, "Alpha", 1.0, domain.CycleMonthly, ref),
		}
		repo.On("FindByUserID", mock.Anything, userID).Return(subs, nil)

		result, err := handler.Handle(context.Background(), ListSubscriptionsQuery{
			UserID: userID,
			SortBy: "name",
		})

		require.NoError(t, err)
		assert.Equal(t, "Alpha", result[0].Name)
		assert.Equal(t, "Zulu", result[1].Name)
	})

	t.Run("fails when repository fails", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		handler := NewListSubscriptionsHandler(repo, fixedClock(now))

		repo.On("FindByUserID", mock.Anything, userID).Return(nil, errors.New("database error"))

		result, err := handler.Handle(context.Background(), ListSubscriptionsQuery{UserID: userID})

		assert.Error(t, err)
		assert.Nil(t, result)
	})
}
