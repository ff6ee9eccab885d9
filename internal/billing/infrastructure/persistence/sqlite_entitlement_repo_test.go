package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/felixgeelhaar/subtrack/internal/billing/domain"
	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupBillingTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), db))
	return db
}

func TestSQLiteEntitlementRepository_Set(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewSQLiteEntitlementRepository(db)
	userID := uuid.New()

	err := repo.Set(context.Background(), userID, domain.FeatureUnlimitedSubscriptions, true)
	require.NoError(t, err)

	enabled, err := repo.IsEnabled(context.Background(), userID, domain.FeatureUnlimitedSubscriptions)
	require.NoError(t, err)
	assert.True(t, enabled)

	// Revoking flips the same row.
	err = repo.Set(context.Background(), userID, domain.FeatureUnlimitedSubscriptions, false)
	require.NoError(t, err)

	enabled, err = repo.IsEnabled(context.Background(), userID, domain.FeatureUnlimitedSubscriptions)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestSQLiteEntitlementRepository_List(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewSQLiteEntitlementRepository(db)
	userID := uuid.New()

	require.NoError(t, repo.Set(context.Background(), userID, domain.FeatureUnlimitedSubscriptions, true))
	require.NoError(t, repo.Set(context.Background(), userID, domain.FeatureCalendarExport, false))

	entitlements, err := repo.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, entitlements, 2)

	// Ordered alphabetically by feature.
	assert.Equal(t, domain.FeatureCalendarExport, entitlements[0].Feature)
	assert.False(t, entitlements[0].Enabled)
	assert.Equal(t, domain.FeatureUnlimitedSubscriptions, entitlements[1].Feature)
	assert.True(t, entitlements[1].Enabled)
}

func TestSQLiteEntitlementRepository_IsEnabled(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewSQLiteEntitlementRepository(db)
	userID := uuid.New()

	// Missing rows mean free tier.
	enabled, err := repo.IsEnabled(context.Background(), userID, domain.FeatureUnlimitedSubscriptions)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestSQLiteEntitlementRepository_MultipleUsers(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewSQLiteEntitlementRepository(db)
	user1 := uuid.New()
	user2 := uuid.New()

	require.NoError(t, repo.Set(context.Background(), user1, domain.FeatureUnlimitedSubscriptions, true))
	require.NoError(t, repo.Set(context.Background(), user2, domain.FeatureUnlimitedSubscriptions, false))

	enabled1, err := repo.IsEnabled(context.Background(), user1, domain.FeatureUnlimitedSubscriptions)
	require.NoError(t, err)
	assert.True(t, enabled1)

	enabled2, err := repo.IsEnabled(context.Background(), user2, domain.FeatureUnlimitedSubscriptions)
	require.NoError(t, err)
	assert.False(t, enabled2)
}
