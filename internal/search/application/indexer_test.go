package application

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/search/domain"
	trackingDomain "github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSearchRepo struct {
	mock.Mock
}

func (m *mockSearchRepo) Upsert(ctx context.Context, entry domain.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockSearchRepo) Delete(ctx context.Context, subscriptionID uuid.UUID) error {
	args := m.Called(ctx, subscriptionID)
	return args.Error(0)
}

func (m *mockSearchRepo) Search(ctx context.Context, userID uuid.UUID, query string, now time.Time) ([]domain.Entry, error) {
	args := m.Called(ctx, userID, query, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Entry), args.Error(1)
}

func (m *mockSearchRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func TestIndexer_Index(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	sub, err := trackingDomain.NewSubscription(
		userID, "Netflix", 9.99, "USD",
		trackingDomain.CycleMonthly, trackingDomain.CategoryStreaming,
		time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC), nil,
	)
	require.NoError(t, err)

	repo := new(mockSearchRepo)
	indexer := NewIndexer(repo, 0, nil, clock)

	var captured domain.Entry
	repo.On("Upsert", mock.Anything, mock.AnythingOfType("domain.Entry")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(domain.Entry)
		}).Return(nil)

	require.NoError(t, indexer.Index(context.Background(), sub))

	assert.Equal(t, sub.ID(), captured.SubscriptionID)
	assert.Equal(t, "Netflix", captured.Title)
	assert.Equal(t, "9.99 USD monthly, next charge 2025-06-20", captured.Summary)
	assert.Contains(t, captured.Keywords, "netflix")
	assert.Contains(t, captured.Keywords, "streaming")
	assert.Equal(t, now, captured.IndexedAt)
	assert.Equal(t, now.Add(domain.DefaultEntryTTL), captured.ExpiresAt)

	repo.AssertExpectations(t)
}

func TestIndexer_Deindex(t *testing.T) {
	repo := new(mockSearchRepo)
	indexer := NewIndexer(repo, 0, nil, nil)

	subID := uuid.New()
	repo.On("Delete", mock.Anything, subID).Return(nil)

	require.NoError(t, indexer.Deindex(context.Background(), subID))
	repo.AssertExpectations(t)
}

func TestIndexer_SweepExpired(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	repo := new(mockSearchRepo)
	indexer := NewIndexer(repo, 0, nil, func() time.Time { return now })

	repo.On("DeleteExpired", mock.Anything, now).Return(int64(3), nil)

	swept, err := indexer.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), swept)
}
