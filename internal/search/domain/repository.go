package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for the search index.
type Repository interface {
	// Upsert inserts or replaces the entry for a subscription.
	Upsert(ctx context.Context, entry Entry) error

	// Delete removes the entry for a subscription.
	Delete(ctx context.Context, subscriptionID uuid.UUID) error

	// Search returns a user's unexpired entries matching the query in title,
	// summary or keywords.
	Search(ctx context.Context, userID uuid.UUID, query string, now time.Time) ([]Entry, error)

	// DeleteExpired sweeps entries past their expiry. It returns how many
	// were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
