package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/billing/domain"
	sharedPersistence "github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteEntitlementRepository implements EntitlementRepository with SQLite.
type SQLiteEntitlementRepository struct {
	db *sql.DB
}

// NewSQLiteEntitlementRepository creates a new repository.
func NewSQLiteEntitlementRepository(db *sql.DB) *SQLiteEntitlementRepository {
	return &SQLiteEntitlementRepository{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLiteEntitlementRepository) getDB(ctx context.Context) querier {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.db
}

// Set upserts an entitlement record.
func (r *SQLiteEntitlementRepository) Set(ctx context.Context, userID uuid.UUID, feature string, enabled bool) error {
	enabledInt := 0
	if enabled {
		enabledInt = 1
	}
	_, err := r.getDB(ctx).ExecContext(ctx, `
		INSERT INTO entitlements (user_id, feature, enabled, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, feature) DO UPDATE SET
			enabled = excluded.enabled,
			updated_at = excluded.updated_at`,
		userID.String(), feature, enabledInt, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to set entitlement: %w", err)
	}
	return nil
}

// List returns all entitlements for a user.
func (r *SQLiteEntitlementRepository) List(ctx context.Context, userID uuid.UUID) ([]domain.Entitlement, error) {
	rows, err := r.getDB(ctx).QueryContext(ctx, `
		SELECT user_id, feature, enabled, updated_at
		FROM entitlements
		WHERE user_id = ?
		ORDER BY feature`,
		userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list entitlements: %w", err)
	}
	defer rows.Close()

	entitlements := make([]domain.Entitlement, 0)
	for rows.Next() {
		var (
			userIDStr string
			feature   string
			enabled   int
			updatedAt string
		)
		if err := rows.Scan(&userIDStr, &feature, &enabled, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entitlement: %w", err)
		}
		uid, err := uuid.Parse(userIDStr)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", userIDStr, err)
		}
		updated, _ := time.Parse(time.RFC3339, updatedAt)
		entitlements = append(entitlements, domain.Entitlement{
			UserID:    uid,
			Feature:   feature,
			Enabled:   enabled == 1,
			UpdatedAt: updated,
		})
	}
	return entitlements, rows.Err()
}

// IsEnabled checks if a feature entitlement is enabled. Missing rows mean the
// free tier.
func (r *SQLiteEntitlementRepository) IsEnabled(ctx context.Context, userID uuid.UUID, feature string) (bool, error) {
	var enabled int
	err := r.getDB(ctx).QueryRowContext(ctx,
		"SELECT enabled FROM entitlements WHERE user_id = ? AND feature = ?",
		userID.String(), feature).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check entitlement: %w", err)
	}
	return enabled == 1, nil
}

var _ domain.EntitlementRepository = (*SQLiteEntitlementRepository)(nil)
