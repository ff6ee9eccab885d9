package application

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RenewalEvent is one projected charge for calendar export.
type RenewalEvent struct {
	SubscriptionID uuid.UUID
	Title          string
	Amount         float64
	Currency       string
	ChargeDate     time.Time
}

// SyncResult describes the outcome of a sync run.
type SyncResult struct {
	Created int
	Updated int
	Failed  int
	Deleted int
}

// Calendar describes a calendar on the remote server.
type Calendar struct {
	ID      string
	Name    string
	Primary bool
}

// Syncer pushes renewal events into an external calendar.
type Syncer interface {
	Sync(ctx context.Context, userID uuid.UUID, events []RenewalEvent) (*SyncResult, error)
}
