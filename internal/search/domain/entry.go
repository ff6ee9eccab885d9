package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultEntryTTL is how long an index entry stays searchable before it is
// refreshed or swept.
const DefaultEntryTTL = 30 * 24 * time.Hour

// Entry is a searchable projection of one subscription.
type Entry struct {
	SubscriptionID uuid.UUID
	UserID         uuid.UUID
	Title          string
	Summary        string
	Keywords       []string
	IndexedAt      time.Time
	ExpiresAt      time.Time
}

// IsExpired reports whether the entry should be swept.
func (e Entry) IsExpired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}
