package domain

import (
	"context"

	"github.com/google/uuid"
)

// EntitlementRepository defines access for entitlement persistence.
type EntitlementRepository interface {
	Set(ctx context.Context, userID uuid.UUID, feature string, enabled bool) error
	List(ctx context.Context, userID uuid.UUID) ([]Entitlement, error)
	IsEnabled(ctx context.Context, userID uuid.UUID, feature string) (bool, error)
}
