package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/reminders/domain"
	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteReminderRepository implements domain.Repository using SQLite.
type SQLiteReminderRepository struct {
	db *sql.DB
}

// NewSQLiteReminderRepository creates a new SQLite reminder repository.
func NewSQLiteReminderRepository(db *sql.DB) *SQLiteReminderRepository {
	return &SQLiteReminderRepository{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLiteReminderRepository) getDB(ctx context.Context) querier {
	if info, ok := persistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.db
}

// Save inserts or updates a reminder.
func (r *SQLiteReminderRepository) Save(ctx context.Context, reminder *domain.Reminder) error {
	_, err := r.getDB(ctx).ExecContext(ctx, `
		INSERT INTO reminders (id, subscription_id, user_id, kind, fire_at, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			fire_at = excluded.fire_at,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		reminder.ID().String(),
		reminder.SubscriptionID().String(),
		reminder.UserID().String(),
		string(reminder.Kind()),
		reminder.FireAt().Format(time.RFC3339),
		string(reminder.Status()),
		reminder.CreatedAt().Format(time.RFC3339),
		reminder.UpdatedAt().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save reminder: %w", err)
	}
	return nil
}

const selectReminderSQL = `
	SELECT id, subscription_id, user_id, kind, fire_at, status, created_at, updated_at
	FROM reminders`

// FindDue retrieves scheduled reminders due at or before the given time.
func (r *SQLiteReminderRepository) FindDue(ctx context.Context, before time.Time, limit int) ([]*domain.Reminder, error) {
	rows, err := r.getDB(ctx).QueryContext(ctx,
		selectReminderSQL+" WHERE status = ? AND fire_at <= ? ORDER BY fire_at ASC LIMIT ?",
		string(domain.StatusScheduled), before.Format(time.RFC3339), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	defer rows.Close()

	return collectReminders(rows)
}

// FindScheduledBySubscription retrieves scheduled reminders for one subscription.
func (r *SQLiteReminderRepository) FindScheduledBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]*domain.Reminder, error) {
	rows, err := r.getDB(ctx).QueryContext(ctx,
		selectReminderSQL+" WHERE subscription_id = ? AND status = ? ORDER BY fire_at ASC",
		subscriptionID.String(), string(domain.StatusScheduled))
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	return collectReminders(rows)
}

// DeleteBySubscription removes all reminders for a subscription.
func (r *SQLiteReminderRepository) DeleteBySubscription(ctx context.Context, subscriptionID uuid.UUID) error {
	_, err := r.getDB(ctx).ExecContext(ctx,
		"DELETE FROM reminders WHERE subscription_id = ?", subscriptionID.String())
	if err != nil {
		return fmt.Errorf("failed to delete reminders: %w", err)
	}
	return nil
}

func collectReminders(rows *sql.Rows) ([]*domain.Reminder, error) {
	var reminders []*domain.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

func scanReminder(rows *sql.Rows) (*domain.Reminder, error) {
	var (
		id             string
		subscriptionID string
		userID         string
		kind           string
		fireAt         string
		status         string
		createdAt      string
		updatedAt      string
	)

	if err := rows.Scan(&id, &subscriptionID, &userID, &kind, &fireAt, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	reminderID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder id %q: %w", id, err)
	}
	subID, err := uuid.Parse(subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("invalid subscription id %q: %w", subscriptionID, err)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	fire, err := time.Parse(time.RFC3339, fireAt)
	if err != nil {
		return nil, fmt.Errorf("invalid fire_at %q: %w", fireAt, err)
	}
	created, _ := time.Parse(time.RFC3339, createdAt)
	updated, _ := time.Parse(time.RFC3339, updatedAt)

	return domain.RehydrateReminder(
		reminderID, subID, uid,
		domain.Kind(kind), fire, domain.Status(status),
		created, updated,
	), nil
}
