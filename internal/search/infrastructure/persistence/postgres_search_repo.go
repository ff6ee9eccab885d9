package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/search/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresSearchRepository implements domain.Repository using PostgreSQL via
// database/sql with the lib/pq driver. Keywords are stored as TEXT[].
type PostgresSearchRepository struct {
	db *sql.DB
}

// NewPostgresSearchRepository creates a new Postgres search repository.
func NewPostgresSearchRepository(db *sql.DB) *PostgresSearchRepository {
	return &PostgresSearchRepository{db: db}
}

// Upsert inserts or replaces the entry for a subscription.
func (r *PostgresSearchRepository) Upsert(ctx context.Context, entry domain.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO search_entries (subscription_id, user_id, title, summary, keywords, indexed_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (subscription_id) DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			keywords = EXCLUDED.keywords,
			indexed_at = EXCLUDED.indexed_at,
			expires_at = EXCLUDED.expires_at`,
		entry.SubscriptionID,
		entry.UserID,
		entry.Title,
		entry.Summary,
		pq.Array(entry.Keywords),
		entry.IndexedAt,
		entry.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert search entry: %w", err)
	}
	return nil
}

// Delete removes the entry for a subscription.
func (r *PostgresSearchRepository) Delete(ctx context.Context, subscriptionID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM search_entries WHERE subscription_id = $1", subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to delete search entry: %w", err)
	}
	return nil
}

// Search returns unexpired entries matching the query.
func (r *PostgresSearchRepository) Search(ctx context.Context, userID uuid.UUID, query string, now time.Time) ([]domain.Entry, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT subscription_id, user_id, title, summary, keywords, indexed_at, expires_at
		FROM search_entries
		WHERE user_id = $1
		  AND expires_at > $2
		  AND (LOWER(title) LIKE $3
		       OR LOWER(summary) LIKE $3
		       OR EXISTS (SELECT 1 FROM unnest(keywords) kw WHERE LOWER(kw) LIKE $3))
		ORDER BY title`,
		userID, now, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var entry domain.Entry
		if err := rows.Scan(
			&entry.SubscriptionID,
			&entry.UserID,
			&entry.Title,
			&entry.Summary,
			pq.Array(&entry.Keywords),
			&entry.IndexedAt,
			&entry.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan search entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// DeleteExpired sweeps entries past their expiry.
func (r *PostgresSearchRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM search_entries WHERE expires_at <= $1", now)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep search entries: %w", err)
	}
	return result.RowsAffected()
}

var _ domain.Repository = (*PostgresSearchRepository)(nil)
