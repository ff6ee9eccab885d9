package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/reminders/domain"
	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupReminderTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), db))
	return db
}

func newScheduledReminder(t *testing.T, subscriptionID uuid.UUID, fireAt time.Time) *domain.Reminder {
	t.Helper()
	reminder, err := domain.NewReminder(subscriptionID, uuid.New(), domain.KindRenewal, fireAt)
	require.NoError(t, err)
	return reminder
}

func TestSQLiteReminderRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)

	t.Run("due reminders come back oldest first", func(t *testing.T) {
		repo := NewSQLiteReminderRepository(setupReminderTestDB(t))
		subID := uuid.New()

		late := newScheduledReminder(t, subID, now.AddDate(0, 0, -1))
		early := newScheduledReminder(t, subID, now.AddDate(0, 0, -3))
		future := newScheduledReminder(t, subID, now.AddDate(0, 0, 5))
		for _, r := range []*domain.Reminder{late, early, future} {
			require.NoError(t, repo.Save(ctx, r))
		}

		due, err := repo.FindDue(ctx, now, 10)
		require.NoError(t, err)
		require.Len(t, due, 2)
		assert.Equal(t, early.ID(), due[0].ID())
		assert.Equal(t, late.ID(), due[1].ID())
	})

	t.Run("sent reminders are not due", func(t *testing.T) {
		repo := NewSQLiteReminderRepository(setupReminderTestDB(t))

		reminder := newScheduledReminder(t, uuid.New(), now.AddDate(0, 0, -1))
		require.NoError(t, repo.Save(ctx, reminder))
		require.NoError(t, reminder.MarkSent())
		require.NoError(t, repo.Save(ctx, reminder))

		due, err := repo.FindDue(ctx, now, 10)
		require.NoError(t, err)
		assert.Empty(t, due)
	})

	t.Run("save updates fire time in place", func(t *testing.T) {
		repo := NewSQLiteReminderRepository(setupReminderTestDB(t))
		subID := uuid.New()

		reminder := newScheduledReminder(t, subID, now.AddDate(0, 0, 3))
		require.NoError(t, repo.Save(ctx, reminder))
		require.NoError(t, repo.Save(ctx, reminder))

		scheduled, err := repo.FindScheduledBySubscription(ctx, subID)
		require.NoError(t, err)
		require.Len(t, scheduled, 1)
		assert.Equal(t, reminder.FireAt().Format(time.RFC3339), scheduled[0].FireAt().Format(time.RFC3339))
		assert.Equal(t, domain.KindRenewal, scheduled[0].Kind())
	})

	t.Run("delete by subscription removes everything", func(t *testing.T) {
		repo := NewSQLiteReminderRepository(setupReminderTestDB(t))
		subID := uuid.New()
		otherID := uuid.New()

		require.NoError(t, repo.Save(ctx, newScheduledReminder(t, subID, now)))
		require.NoError(t, repo.Save(ctx, newScheduledReminder(t, subID, now.AddDate(0, 0, 3))))
		require.NoError(t, repo.Save(ctx, newScheduledReminder(t, otherID, now)))

		require.NoError(t, repo.DeleteBySubscription(ctx, subID))

		gone, err := repo.FindScheduledBySubscription(ctx, subID)
		require.NoError(t, err)
		assert.Empty(t, gone)

		kept, err := repo.FindScheduledBySubscription(ctx, otherID)
		require.NoError(t, err)
		assert.Len(t, kept, 1)
	})
}
