package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/persistence"
	"github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSubscriptionRepository implements domain.SubscriptionRepository
// using PostgreSQL.
type PostgresSubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSubscriptionRepository creates a new Postgres subscription repository.
func NewPostgresSubscriptionRepository(pool *pgxpool.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Save inserts or updates a subscription.
func (r *PostgresSubscriptionRepository) Save(ctx context.Context, sub *domain.Subscription) error {
	exec := persistence.Executor(ctx, r.pool)

	_, err := exec.Exec(ctx, `
		INSERT INTO subscriptions (id, user_id, name, amount, currency, billing_cycle,
			category, reference_date, end_date, notes, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			amount = EXCLUDED.amount,
			currency = EXCLUDED.currency,
			billing_cycle = EXCLUDED.billing_cycle,
			category = EXCLUDED.category,
			reference_date = EXCLUDED.reference_date,
			end_date = EXCLUDED.end_date,
			notes = EXCLUDED.notes,
			archived = EXCLUDED.archived,
			updated_at = EXCLUDED.updated_at`,
		sub.ID(), sub.UserID(), sub.Name(), sub.Amount(), sub.Currency(),
		string(sub.Cycle()), string(sub.Category()), sub.ReferenceDate(),
		sub.EndDate(), sub.Notes(), sub.IsArchived(), sub.CreatedAt(), sub.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

const pgSelectSubscriptionSQL = `
	SELECT id, user_id, name, amount, currency, billing_cycle, category,
	       reference_date, end_date, notes, archived, created_at, updated_at
	FROM subscriptions`

// FindByID loads a subscription by its ID.
func (r *PostgresSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	exec := persistence.Executor(ctx, r.pool)
	row := exec.QueryRow(ctx, pgSelectSubscriptionSQL+" WHERE id = $1", id)

	sub, err := scanPgSubscription(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return sub, nil
}

// FindByUserID loads all subscriptions of a user, newest first.
func (r *PostgresSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Subscription, error) {
	exec := persistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx,
		pgSelectSubscriptionSQL+" WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		sub, err := scanPgSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// CountActiveByUserID counts non-archived subscriptions of a user.
func (r *PostgresSubscriptionRepository) CountActiveByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	exec := persistence.Executor(ctx, r.pool)

	var count int
	err := exec.QueryRow(ctx,
		"SELECT COUNT(*) FROM subscriptions WHERE user_id = $1 AND archived = FALSE",
		userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	return count, nil
}

// Delete removes a subscription.
func (r *PostgresSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := persistence.Executor(ctx, r.pool)

	tag, err := exec.Exec(ctx, "DELETE FROM subscriptions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}

func scanPgSubscription(row pgx.Row) (*domain.Subscription, error) {
	var (
		id            uuid.UUID
		userID        uuid.UUID
		name          string
		amount        float64
		currency      string
		cycle         string
		category      string
		referenceDate time.Time
		endDate       *time.Time
		notes         string
		archived      bool
		createdAt     time.Time
		updatedAt     time.Time
	)

	err := row.Scan(&id, &userID, &name, &amount, &currency, &cycle, &category,
		&referenceDate, &endDate, &notes, &archived, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateSubscription(
		id, userID, name, amount, currency,
		domain.BillingCycle(cycle), domain.Category(category),
		referenceDate, endDate, notes, archived, createdAt, updatedAt,
	), nil
}
