package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/search/domain"
	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupSearchTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), db))
	return db
}

func testEntry(userID uuid.UUID, title string, indexedAt time.Time) domain.Entry {
	return domain.Entry{
		SubscriptionID: uuid.New(),
		UserID:         userID,
		Title:          title,
		Summary:        "9.99 USD monthly",
		Keywords:       []string{"streaming", "monthly"},
		IndexedAt:      indexedAt,
		ExpiresAt:      indexedAt.Add(domain.DefaultEntryTTL),
	}
}

func TestSQLiteSearchRepository_UpsertAndSearch(t *testing.T) {
	db := setupSearchTestDB(t)
	repo := NewSQLiteSearchRepository(db)

	userID := uuid.New()
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	entry := testEntry(userID, "Netflix", now)
	require.NoError(t, repo.Upsert(context.Background(), entry))

	t.Run("matches the title", func(t *testing.T) {
		results, err := repo.Search(context.Background(), userID, "netf", now)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, entry.SubscriptionID, results[0].SubscriptionID)
		assert.Equal(t, []string{"streaming", "monthly"}, results[0].Keywords)
	})

	t.Run("matches a keyword", func(t *testing.T) {
		results, err := repo.Search(context.Background(), userID, "streaming", now)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("ignores other users", func(t *testing.T) {
		results, err := repo.Search(context.Background(), uuid.New(), "netflix", now)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("upsert replaces the existing entry", func(t *testing.T) {
		updated := entry
		updated.Title = "Netflix Premium"
		require.NoError(t, repo.Upsert(context.Background(), updated))

		results, err := repo.Search(context.Background(), userID, "premium", now)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Netflix Premium", results[0].Title)
	})
}

func TestSQLiteSearchRepository_Expiry(t *testing.T) {
	db := setupSearchTestDB(t)
	repo := NewSQLiteSearchRepository(db)

	userID := uuid.New()
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	fresh := testEntry(userID, "Fresh", now)
	stale := testEntry(userID, "Stale", now.Add(-31*24*time.Hour))
	require.NoError(t, repo.Upsert(context.Background(), fresh))
	require.NoError(t, repo.Upsert(context.Background(), stale))

	// Expired entries never surface in search results.
	results, err := repo.Search(context.Background(), userID, "stale", now)
	require.NoError(t, err)
	assert.Empty(t, results)

	swept, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	results, err = repo.Search(context.Background(), userID, "fresh", now)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSQLiteSearchRepository_Delete(t *testing.T) {
	db := setupSearchTestDB(t)
	repo := NewSQLiteSearchRepository(db)

	userID := uuid.New()
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	entry := testEntry(userID, "Netflix", now)
	require.NoError(t, repo.Upsert(context.Background(), entry))
	require.NoError(t, repo.Delete(context.Background(), entry.SubscriptionID))

	results, err := repo.Search(context.Background(), userID, "netflix", now)
	require.NoError(t, err)
	assert.Empty(t, results)
}
