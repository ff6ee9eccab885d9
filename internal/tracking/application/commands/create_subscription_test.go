package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSubscriptionRepo struct {
	mock.Mock
}

func (m *mockSubscriptionRepo) Save(ctx context.Context, sub *domain.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockSubscriptionRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) CountActiveByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockSubscriptionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, err string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, err, nextRetryAt)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockEntitlements struct {
	mock.Mock
}

func (m *mockEntitlements) HasEntitlement(ctx context.Context, userID uuid.UUID, feature string) (bool, error) {
	args := m.Called(ctx, userID, feature)
	return args.Bool(0), args.Error(1)
}

type txKey struct{}

func txContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, "transaction")
}

func TestCreateSubscriptionHandler_Handle(t *testing.T) {
	userID := uuid.New()
	ref := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

	validCmd := func() CreateSubscriptionCommand {
		return CreateSubscriptionCommand{
			UserID:        userID,
			Name:          "Netflix",
			Amount:        9.99,
			Currency:      "USD",
			Cycle:         "monthly",
			Category:      "streaming",
			ReferenceDate: ref,
		}
	}

	t.Run("successfully creates a subscription", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		outboxRepo := new(mockOutboxRepo)
		entitlements := new(mockEntitlements)
		uow := new(mockUnitOfWork)
		handler := NewCreateSubscriptionHandler(repo, outboxRepo, entitlements, uow)

		ctx := context.Background()
		txCtx := txContext(ctx)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		entitlements.On("HasEntitlement", txCtx, userID, FeatureUnlimitedSubscriptions).Return(false, nil)
		repo.On("CountActiveByUserID", txCtx, userID).Return(2, nil)
		repo.On("Save", txCtx, mock.AnythingOfType("*domain.Subscription")).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)

		result, err := handler.Handle(ctx, validCmd())

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.NotEqual(t, uuid.Nil, result.SubscriptionID)

		repo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("skips the count check for unlimited users", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		outboxRepo := new(mockOutboxRepo)
		entitlements := new(mockEntitlements)
		uow := new(mockUnitOfWork)
		handler := NewCreateSubscriptionHandler(repo, outboxRepo, entitlements, uow)

		ctx := context.Background()
		txCtx := txContext(ctx)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		entitlements.On("HasEntitlement", txCtx, userID, FeatureUnlimitedSubscriptions).Return(true, nil)
		repo.On("Save", txCtx, mock.AnythingOfType("*domain.Subscription")).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)

		_, err := handler.Handle(ctx, validCmd())

		require.NoError(t, err)
		repo.AssertNotCalled(t, "CountActiveByUserID", mock.Anything, mock.Anything)
	})

	t.Run("rejects creation past the free-tier limit", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		outboxRepo := new(mockOutboxRepo)
		entitlements := new(mockEntitlements)
		uow := new(mockUnitOfWork)
		handler := NewCreateSubscriptionHandler(repo, outboxRepo, entitlements, uow)

		ctx := context.Background()
		txCtx := txContext(ctx)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		entitlements.On("HasEntitlement", txCtx, userID, FeatureUnlimitedSubscriptions).Return(false, nil)
		repo.On("CountActiveByUserID", txCtx, userID).Return(FreeTierSubscriptionLimit, nil)

		result, err := handler.Handle(ctx, validCmd())

		assert.ErrorIs(t, err, ErrSubscriptionLimitReached)
		assert.Nil(t, result)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("fails with invalid input", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		outboxRepo := new(mockOutboxRepo)
		entitlements := new(mockEntitlements)
		uow := new(mockUnitOfWork)
		handler := NewCreateSubscriptionHandler(repo, outboxRepo, entitlements, uow)

		ctx := context.Background()
		txCtx := txContext(ctx)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		entitlements.On("HasEntitlement", txCtx, userID, FeatureUnlimitedSubscriptions).Return(false, nil)
		repo.On("CountActiveByUserID", txCtx, userID).Return(0, nil)

		cmd := validCmd()
		cmd.Amount = -1

		result, err := handler.Handle(ctx, cmd)

		assert.ErrorIs(t, err, domain.ErrSubscriptionBadAmount)
		assert.Nil(t, result)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("fails when repository save fails", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		outboxRepo := new(mockOutboxRepo)
		entitlements := new(mockEntitlements)
		uow := new(mockUnitOfWork)
		handler := NewCreateSubscriptionHandler(repo, outboxRepo, entitlements, uow)

		ctx := context.Background()
		txCtx := txContext(ctx)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		entitlements.On("HasEntitlement", txCtx, userID, FeatureUnlimitedSubscriptions).Return(false, nil)
		repo.On("CountActiveByUserID", txCtx, userID).Return(0, nil)
		repo.On("Save", txCtx, mock.AnythingOfType("*domain.Subscription")).Return(errors.New("database error"))

		result, err := handler.Handle(ctx, validCmd())

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "database error")
	})

	t.Run("fails when outbox save fails", func(t *testing.T) {
		repo := new(mockSubscriptionRepo)
		outboxRepo := new(mockOutboxRepo)
		entitlements := new(mockEntitlements)
		uow := new(mockUnitOfWork)
		handler := NewCreateSubscriptionHandler(repo, outboxRepo, entitlements, uow)

		ctx := context.Background()
		txCtx := txContext(ctx)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		entitlements.On("HasEntitlement", txCtx, userID, FeatureUnlimitedSubscriptions).Return(false, nil)
		repo.On("CountActiveByUserID", txCtx, userID).Return(0, nil)
		repo.On("Save", txCtx, mock.AnythingOfType("*domain.Subscription")).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(errors.New("outbox error"))

		result, err := handler.Handle(ctx, validCmd())

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "outbox error")
	})
}
