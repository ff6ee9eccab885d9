package application

import (
	"context"

	"github.com/felixgeelhaar/subtrack/internal/billing/domain"
	"github.com/google/uuid"
)

// Service provides entitlement access. Users without a stored entitlement
// stay on the free tier.
type Service struct {
	entitlements domain.EntitlementRepository
}

// NewService creates a new billing service.
func NewService(entitlements domain.EntitlementRepository) *Service {
	return &Service{entitlements: entitlements}
}

// HasEntitlement reports whether the user can access the feature.
func (s *Service) HasEntitlement(ctx context.Context, userID uuid.UUID, feature string) (bool, error) {
	if s == nil || s.entitlements == nil {
		return false, nil
	}
	return s.entitlements.IsEnabled(ctx, userID, feature)
}

// SetEntitlement grants or revokes a feature.
func (s *Service) SetEntitlement(ctx context.Context, userID uuid.UUID, feature string, enabled bool) error {
	return s.entitlements.Set(ctx, userID, feature, enabled)
}

// ListEntitlements returns all entitlements for the user.
func (s *Service) ListEntitlements(ctx context.Context, userID uuid.UUID) ([]domain.Entitlement, error) {
	return s.entitlements.List(ctx, userID)
}
