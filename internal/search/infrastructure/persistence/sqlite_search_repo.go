package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/search/domain"
	sharedPersistence "github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteSearchRepository implements domain.Repository using SQLite. Keywords
// are stored comma-joined.
type SQLiteSearchRepository struct {
	db *sql.DB
}

// NewSQLiteSearchRepository creates a new SQLite search repository.
func NewSQLiteSearchRepository(db *sql.DB) *SQLiteSearchRepository {
	return &SQLiteSearchRepository{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLiteSearchRepository) getDB(ctx context.Context) querier {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.db
}

// Upsert inserts or replaces the entry for a subscription.
func (r *SQLiteSearchRepository) Upsert(ctx context.Context, entry domain.Entry) error {
	_, err := r.getDB(ctx).ExecContext(ctx, `
		INSERT INTO search_entries (subscription_id, user_id, title, summary, keywords, indexed_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(subscription_id) DO UPDATE SET
			title = excluded.title,
			summary = excluded.summary,
			keywords = excluded.keywords,
			indexed_at = excluded.indexed_at,
			expires_at = excluded.expires_at`,
		entry.SubscriptionID.String(),
		entry.UserID.String(),
		entry.Title,
		entry.Summary,
		strings.Join(entry.Keywords, ","),
		entry.IndexedAt.Format(time.RFC3339),
		entry.ExpiresAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert search entry: %w", err)
	}
	return nil
}

// Delete removes the entry for a subscription.
func (r *SQLiteSearchRepository) Delete(ctx context.Context, subscriptionID uuid.UUID) error {
	_, err := r.getDB(ctx).ExecContext(ctx,
		"DELETE FROM search_entries WHERE subscription_id = ?", subscriptionID.String())
	if err != nil {
		return fmt.Errorf("failed to delete search entry: %w", err)
	}
	return nil
}

// Search returns unexpired entries matching the query.
func (r *SQLiteSearchRepository) Search(ctx context.Context, userID uuid.UUID, query string, now time.Time) ([]domain.Entry, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	rows, err := r.getDB(ctx).QueryContext(ctx, `
		SELECT subscription_id, user_id, title, summary, keywords, indexed_at, expires_at
		FROM search_entries
		WHERE user_id = ?
		  AND expires_at > ?
		  AND (LOWER(title) LIKE ? OR LOWER(summary) LIKE ? OR LOWER(keywords) LIKE ?)
		ORDER BY title`,
		userID.String(), now.Format(time.RFC3339), pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var (
			subID     string
			uid       string
			title     string
			summary   string
			keywords  string
			indexedAt string
			expiresAt string
		)
		if err := rows.Scan(&subID, &uid, &title, &summary, &keywords, &indexedAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan search entry: %w", err)
		}

		entry, err := buildEntry(subID, uid, title, summary, splitKeywords(keywords), indexedAt, expiresAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// DeleteExpired sweeps entries past their expiry.
func (r *SQLiteSearchRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.getDB(ctx).ExecContext(ctx,
		"DELETE FROM search_entries WHERE expires_at <= ?", now.Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to sweep search entries: %w", err)
	}
	return result.RowsAffected()
}

func splitKeywords(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}

func buildEntry(subID, uid, title, summary string, keywords []string, indexedAt, expiresAt string) (domain.Entry, error) {
	subscriptionID, err := uuid.Parse(subID)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("invalid subscription id %q: %w", subID, err)
	}
	userID, err := uuid.Parse(uid)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("invalid user id %q: %w", uid, err)
	}
	indexed, err := time.Parse(time.RFC3339, indexedAt)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("invalid indexed_at %q: %w", indexedAt, err)
	}
	expires, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("invalid expires_at %q: %w", expiresAt, err)
	}

	return domain.Entry{
		SubscriptionID: subscriptionID,
		UserID:         userID,
		Title:          title,
		Summary:        summary,
		Keywords:       keywords,
		IndexedAt:      indexed,
		ExpiresAt:      expires,
	}, nil
}

var _ domain.Repository = (*SQLiteSearchRepository)(nil)
