package domain

import (
	"time"

	"github.com/google/uuid"
)

// Feature names for entitlement checks.
const (
	// FeatureUnlimitedSubscriptions lifts the free-tier subscription cap.
	FeatureUnlimitedSubscriptions = "unlimited-subscriptions"
	// FeatureCalendarExport enables CalDAV renewal export.
	FeatureCalendarExport = "calendar-export"
)

// Entitlement represents access to a paid feature.
type Entitlement struct {
	UserID    uuid.UUID
	Feature   string
	Enabled   bool
	UpdatedAt time.Time
}
