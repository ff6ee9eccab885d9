package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/persistence"
	"github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	"github.com/google/uuid"
)

// SQLiteSubscriptionRepository implements domain.SubscriptionRepository
// using SQLite.
type SQLiteSubscriptionRepository struct {
	db *sql.DB
}

// NewSQLiteSubscriptionRepository creates a new SQLite subscription repository.
func NewSQLiteSubscriptionRepository(db *sql.DB) *SQLiteSubscriptionRepository {
	return &SQLiteSubscriptionRepository{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// getDB returns the transaction from context when present, otherwise the connection.
func (r *SQLiteSubscriptionRepository) getDB(ctx context.Context) querier {
	if info, ok := persistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.db
}

// Save inserts or updates a subscription.
func (r *SQLiteSubscriptionRepository) Save(ctx context.Context, sub *domain.Subscription) error {
	var endDate sql.NullString
	if sub.EndDate() != nil {
		endDate = sql.NullString{String: sub.EndDate().Format(time.RFC3339), Valid: true}
	}

	_, err := r.getDB(ctx).ExecContext(ctx, `
		INSERT INTO subscriptions (id, user_id, name, amount, currency, billing_cycle,
			category, reference_date, end_date, notes, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			amount = excluded.amount,
			currency = excluded.currency,
			billing_cycle = excluded.billing_cycle,
			category = excluded.category,
			reference_date = excluded.reference_date,
			end_date = excluded.end_date,
			notes = excluded.notes,
			archived = excluded.archived,
			updated_at = excluded.updated_at`,
		sub.ID().String(),
		sub.UserID().String(),
		sub.Name(),
		sub.Amount(),
		sub.Currency(),
		string(sub.Cycle()),
		string(sub.Category()),
		sub.ReferenceDate().Format(time.RFC3339),
		endDate,
		sub.Notes(),
		boolToInt(sub.IsArchived()),
		sub.CreatedAt().Format(time.RFC3339),
		sub.UpdatedAt().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

const selectSubscriptionSQL = `
	SELECT id, user_id, name, amount, currency, billing_cycle, category,
	       reference_date, end_date, notes, archived, created_at, updated_at
	FROM subscriptions`

// FindByID loads a subscription by its ID.
func (r *SQLiteSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	row := r.getDB(ctx).QueryRowContext(ctx, selectSubscriptionSQL+" WHERE id = ?", id.String())

	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return sub, nil
}

// FindByUserID loads all subscriptions of a user, newest first.
func (r *SQLiteSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Subscription, error) {
	rows, err := r.getDB(ctx).QueryContext(ctx,
		selectSubscriptionSQL+" WHERE user_id = ? ORDER BY created_at DESC", userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// CountActiveByUserID counts non-archived subscriptions of a user.
func (r *SQLiteSubscriptionRepository) CountActiveByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.getDB(ctx).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM subscriptions WHERE user_id = ? AND archived = 0",
		userID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	return count, nil
}

// Delete removes a subscription.
func (r *SQLiteSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.getDB(ctx).ExecContext(ctx,
		"DELETE FROM subscriptions WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*domain.Subscription, error) {
	var (
		id            string
		userID        string
		name          string
		amount        float64
		currency      string
		cycle         string
		category      string
		referenceDate string
		endDate       sql.NullString
		notes         string
		archived      int
		createdAt     string
		updatedAt     string
	)

	err := row.Scan(&id, &userID, &name, &amount, &currency, &cycle, &category,
		&referenceDate, &endDate, &notes, &archived, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	subID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid subscription id %q: %w", id, err)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	ref, err := time.Parse(time.RFC3339, referenceDate)
	if err != nil {
		return nil, fmt.Errorf("invalid reference date %q: %w", referenceDate, err)
	}

	var end *time.Time
	if endDate.Valid {
		t, err := time.Parse(time.RFC3339, endDate.String)
		if err != nil {
			return nil, fmt.Errorf("invalid end date %q: %w", endDate.String, err)
		}
		end = &t
	}

	created, _ := time.Parse(time.RFC3339, createdAt)
	updated, _ := time.Parse(time.RFC3339, updatedAt)

	return domain.RehydrateSubscription(
		subID, uid, name, amount, currency,
		domain.BillingCycle(cycle), domain.Category(category),
		ref, end, notes, archived != 0, created, updated,
	), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
