package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/reminders/domain"
	trackingDomain "github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSubscriptionRepo struct {
	mock.Mock
}

func (m *mockSubscriptionRepo) Save(ctx context.Context, sub *trackingDomain.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) FindByID(ctx context.Context, id uuid.UUID) (*trackingDomain.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trackingDomain.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*trackingDomain.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*trackingDomain.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) CountActiveByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockSubscriptionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, reminder *domain.Reminder, sub *trackingDomain.Subscription) error {
	args := m.Called(ctx, reminder, sub)
	return args.Error(0)
}

func TestDispatcher_DispatchOnce(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, time.June, 17, 9, 0, 0, 0, time.UTC)
	ref := time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)

	newDispatcher := func(reminderRepo *mockReminderRepo, subRepo *mockSubscriptionRepo, notifier *mockNotifier) *Dispatcher {
		scheduler := NewScheduler(reminderRepo, 3, nil, fixedClock(now))
		return NewDispatcher(reminderRepo, subRepo, scheduler, notifier, DefaultDispatcherConfig(), nil, fixedClock(now))
	}

	t.Run("delivers a due lead reminder and marks it sent", func(t *testing.T) {
		reminderRepo := new(mockReminderRepo)
		subRepo := new(mockSubscriptionRepo)
		notifier := new(mockNotifier)
		dispatcher := newDispatcher(reminderRepo, subRepo, notifier)

		sub := newTestSubscription(t, userID, ref, nil)
		reminder, err := domain.NewReminder(sub.ID(), userID, domain.KindLead, now.Add(-time.Hour))
		require.NoError(t, err)

		reminderRepo.On("FindDue", mock.Anything, now, 50).Return([]*domain.Reminder{reminder}, nil)
		subRepo.On("FindByID", mock.Anything, sub.ID()).Return(sub, nil)
		notifier.On("Notify", mock.Anything, reminder, sub).Return(nil)
		reminderRepo.On("Save", mock.Anything, reminder).Return(nil)

		require.NoError(t, dispatcher.DispatchOnce(context.Background()))

		assert.Equal(t, domain.StatusSent, reminder.Status())
		notifier.AssertExpectations(t)
		reminderRepo.AssertExpectations(t)
	})

	t.Run("reschedules the next cycle after a renewal reminder", func(t *testing.T) {
		reminderRepo := new(mockReminderRepo)
		subRepo := new(mockSubscriptionRepo)
		notifier := new(mockNotifier)
		dispatcher := newDispatcher(reminderRepo, subRepo, notifier)

		sub := newTestSubscription(t, userID, ref, nil)
		reminder, err := domain.NewReminder(sub.ID(), userID, domain.KindRenewal, now.Add(-time.Hour))
		require.NoError(t, err)

		reminderRepo.On("FindDue", mock.Anything, now, 50).Return([]*domain.Reminder{reminder}, nil)
		subRepo.On("FindByID", mock.Anything, sub.ID()).Return(sub, nil)
		notifier.On("Notify", mock.Anything, reminder, sub).Return(nil)
		reminderRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Reminder")).Return(nil)
		// Sync for the next cycle cancels and re-creates.
		reminderRepo.On("FindScheduledBySubscription", mock.Anything, sub.ID()).Return([]*domain.Reminder{}, nil)

		require.NoError(t, dispatcher.DispatchOnce(context.Background()))

		reminderRepo.AssertCalled(t, "FindScheduledBySubscription", mock.Anything, sub.ID())
	})

	t.Run("cancels reminders for a vanished subscription", func(t *testing.T) {
		reminderRepo := new(mockReminderRepo)
		subRepo := new(mockSubscriptionRepo)
		notifier := new(mockNotifier)
		dispatcher := newDispatcher(reminderRepo, subRepo, notifier)

		subID := uuid.New()
		reminder, err := domain.NewReminder(subID, userID, domain.KindLead, now.Add(-time.Hour))
		require.NoError(t, err)

		reminderRepo.On("FindDue", mock.Anything, now, 50).Return([]*domain.Reminder{reminder}, nil)
		subRepo.On("FindByID", mock.Anything, subID).Return(nil, trackingDomain.ErrSubscriptionNotFound)
		reminderRepo.On("Save", mock.Anything, reminder).Return(nil)

		require.NoError(t, dispatcher.DispatchOnce(context.Background()))

		assert.Equal(t, domain.StatusCanceled, reminder.Status())
		notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("continues past a failing notification", func(t *testing.T) {
		reminderRepo := new(mockReminderRepo)
		subRepo := new(mockSubscriptionRepo)
		notifier := new(mockNotifier)
		dispatcher := newDispatcher(reminderRepo, subRepo, notifier)

		sub := newTestSubscription(t, userID, ref, nil)
		failing, err := domain.NewReminder(sub.ID(), userID, domain.KindLead, now.Add(-2*time.Hour))
		require.NoError(t, err)
		ok, err := domain.NewReminder(sub.ID(), userID, domain.KindLead, now.Add(-time.Hour))
		require.NoError(t, err)

		reminderRepo.On("FindDue", mock.Anything, now, 50).Return([]*domain.Reminder{failing, ok}, nil)
		subRepo.On("FindByID", mock.Anything, sub.ID()).Return(sub, nil)
		notifier.On("Notify", mock.Anything, failing, sub).Return(errors.New("push gateway down"))
		notifier.On("Notify", mock.Anything, ok, sub).Return(nil)
		reminderRepo.On("Save", mock.Anything, ok).Return(nil)

		require.NoError(t, dispatcher.DispatchOnce(context.Background()))

		assert.Equal(t, domain.StatusScheduled, failing.Status())
		assert.Equal(t, domain.StatusSent, ok.Status())
	})

	t.Run("fails when the due query fails", func(t *testing.T) {
		reminderRepo := new(mockReminderRepo)
		subRepo := new(mockSubscriptionRepo)
		notifier := new(mockNotifier)
		dispatcher := newDispatcher(reminderRepo, subRepo, notifier)

		reminderRepo.On("FindDue", mock.Anything, now, 50).Return(nil, errors.New("database error"))

		assert.Error(t, dispatcher.DispatchOnce(context.Background()))
	})
}

func TestDispatcher_StartStop(t *testing.T) {
	reminderRepo := new(mockReminderRepo)
	subRepo := new(mockSubscriptionRepo)
	notifier := new(mockNotifier)
	scheduler := NewScheduler(reminderRepo, 3, nil, nil)

	dispatcher := NewDispatcher(reminderRepo, subRepo, scheduler, notifier, DispatcherConfig{
		PollInterval: 10 * time.Millisecond,
		BatchSize:    10,
	}, nil, nil)

	reminderRepo.On("FindDue", mock.Anything, mock.AnythingOfType("time.Time"), 10).Return([]*domain.Reminder{}, nil)

	require.NoError(t, dispatcher.Start(context.Background()))
	assert.Error(t, dispatcher.Start(context.Background()))

	time.Sleep(30 * time.Millisecond)
	dispatcher.Stop()
}
