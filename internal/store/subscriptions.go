package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/asisai/asis-deploy/internal/pricing"
)

// Subscription is a billing record for an account.
type Subscription struct {
	SubscriptionID     uuid.UUID             `json:"subscription_id"`
	UserID             uuid.UUID             `json:"user_id"`
	Tier               pricing.Tier          `json:"tier"`
	Status             string                `json:"status"`
	BillingPeriod      pricing.BillingPeriod `json:"billing_period"`
	AmountCents        int                   `json:"amount_cents"`
	CurrentPeriodStart time.Time             `json:"current_period_start"`
	CurrentPeriodEnd   time.Time             `json:"current_period_end"`
	CreatedDate        time.Time             `json:"created_date"`
}

// CreateSubscription inserts an active subscription and returns the
// stored row.
func (s *Store) CreateSubscription(ctx context.Context, userID uuid.UUID, tier pricing.Tier, period pricing.BillingPeriod, amountCents int, start, end time.Time) (*Subscription, error) {
	sub := &Subscription{
		UserID:             userID,
		Tier:               tier,
		Status:             "active",
		BillingPeriod:      period,
		AmountCents:        amountCents,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   end,
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO subscriptions (user_id, tier, status, billing_period, amount_cents, current_period_start, current_period_end)
		VALUES ($1, $2, 'active', $3, $4, $5, $6)
		RETURNING subscription_id, created_date`,
		userID, tier, period, amountCents, start, end,
	).Scan(&sub.SubscriptionID, &sub.CreatedDate)
	if err != nil {
		return nil, err
	}
	return sub, nil
}
