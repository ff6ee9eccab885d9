package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/subtrack/internal/tracking/domain"
	"github.com/google/uuid"
)

// PaymentDTO is a single charge in a subscription's payment history.
type PaymentDTO struct {
	Date   time.Time
	Amount float64
}

// SubscriptionDetailDTO is a subscription plus its derived payment history.
type SubscriptionDetailDTO struct {
	SubscriptionDTO
	PaymentHistory []PaymentDTO
	PaymentCount   int
	TotalSpent     float64
}

// GetSubscriptionQuery contains the parameters for getting a single
// subscription.
type GetSubscriptionQuery struct {
	SubscriptionID uuid.UUID
	UserID         uuid.UUID // For authorization check
}

// GetSubscriptionHandler handles the GetSubscriptionQuery.
type GetSubscriptionHandler struct {
	subscriptionRepo domain.SubscriptionRepository
	now              func() time.Time
}

// NewGetSubscriptionHandler creates a new GetSubscriptionHandler. A nil clock
// defaults to time.Now.
func NewGetSubscriptionHandler(subscriptionRepo domain.SubscriptionRepository, now func() time.Time) *GetSubscriptionHandler {
	if now == nil {
		now = time.Now
	}
	return &GetSubscriptionHandler{subscriptionRepo: subscriptionRepo, now: now}
}

// Handle executes the GetSubscriptionQuery.
func (h *GetSubscriptionHandler) Handle(ctx context.Context, query GetSubscriptionQuery) (*SubscriptionDetailDTO, error) {
	sub, err := h.subscriptionRepo.FindByID(ctx, query.SubscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID() != query.UserID {
		return nil, domain.ErrSubscriptionNotFound
	}

	now := h.now()
	history := domain.PaymentHistory(sub, now)

	dto := SubscriptionDetailDTO{
		SubscriptionDTO: toSubscriptionDTO(sub, now),
		PaymentHistory:  make([]PaymentDTO, len(history)),
		PaymentCount:    len(history),
		TotalSpent:      domain.TotalSpent(sub, now),
	}
	for i, p := range history {
		dto.PaymentHistory[i] = PaymentDTO{Date: p.Date, Amount: p.Amount}
	}

	return &dto, nil
}
