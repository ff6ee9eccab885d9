package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/search/domain"
	trackingDomain "github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	"github.com/google/uuid"
)

// Indexer maintains the search index for subscriptions.
type Indexer struct {
	repo   domain.Repository
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewIndexer creates a new Indexer. A nil clock defaults to time.Now.
func NewIndexer(repo domain.Repository, ttl time.Duration, logger *slog.Logger, now func() time.Time) *Indexer {
	if ttl <= 0 {
		ttl = domain.DefaultEntryTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Indexer{repo: repo, ttl: ttl, logger: logger, now: now}
}

// Index writes or refreshes a subscription's search entry.
func (i *Indexer) Index(ctx context.Context, sub *trackingDomain.Subscription) error {
	now := i.now()
	entry := domain.Entry{
		SubscriptionID: sub.ID(),
		UserID:         sub.UserID(),
		Title:          sub.Name(),
		Summary:        buildSummary(sub, now),
		Keywords:       buildKeywords(sub),
		IndexedAt:      now,
		ExpiresAt:      now.Add(i.ttl),
	}

	if err := i.repo.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("index subscription: %w", err)
	}

	i.logger.Debug("subscription indexed",
		"subscription_id", sub.ID(),
		"expires_at", entry.ExpiresAt,
	)
	return nil
}

// Deindex removes a subscription from the index.
func (i *Indexer) Deindex(ctx context.Context, subscriptionID uuid.UUID) error {
	if err := i.repo.Delete(ctx, subscriptionID); err != nil {
		return fmt.Errorf("deindex subscription: %w", err)
	}
	return nil
}

// Search queries the caller's unexpired entries.
func (i *Indexer) Search(ctx context.Context, userID uuid.UUID, query string) ([]domain.Entry, error) {
	return i.repo.Search(ctx, userID, query, i.now())
}

// SweepExpired removes entries past their expiry.
func (i *Indexer) SweepExpired(ctx context.Context) (int64, error) {
	return i.repo.DeleteExpired(ctx, i.now())
}

func buildSummary(sub *trackingDomain.Subscription, now time.Time) string {
	summary := fmt.Sprintf("%.2f %s %s", sub.Amount(), sub.Currency(), sub.Cycle())
	if next, ok := trackingDomain.NextChargeDate(sub, now); ok {
		summary += ", next charge " + next.Format("2006-01-02")
	}
	return summary
}

func buildKeywords(sub *trackingDomain.Subscription) []string {
	keywords := []string{
		strings.ToLower(sub.Name()),
		string(sub.Category()),
		string(sub.Cycle()),
		strings.ToLower(sub.Currency()),
		"subscription",
	}
	return keywords
}
