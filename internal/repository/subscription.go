package repository

import (
	"context"
	"errors"
	"time"

	"bookclub-membership/internal/model"

	"gorm.io/gorm"
)

// ErrNotPending is returned by Activate when the row is no longer pending.
var ErrNotPending = errors.New("subscription is not pending")

type PendingFilter struct {
	UserID   string
	Provider string
	OrderID  string // exact provider order match when set
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *model.Subscription) error
	FindByIdempotencyKey(ctx context.Context, userID, key string) (*model.Subscription, error)
	FindLatestPending(ctx context.Context, filter PendingFilter) (*model.Subscription, error)
	FindLatestActive(ctx context.Context, userID string) (*model.Subscription, error)
	Activate(ctx context.Context, subscriptionID string, at time.Time) error
}

type subscriptionRepoImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepoImpl{
		db: db,
	}
}

func (r *subscriptionRepoImpl) Create(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepoImpl) FindByIdempotencyKey(ctx context.Context, userID, key string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&sub).
		Error

	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepoImpl) FindLatestPending(ctx context.Context, filter PendingFilter) (*model.Subscription, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", filter.UserID).
		Where("payment_provider = ?", filter.Provider).
		Where("status = ?", model.SubscriptionPending)

	if filter.OrderID != "" {
		query = query.Where("provider_order_id = ?", filter.OrderID)
	}

	var sub model.Subscription
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Take(&sub).
		Error

	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepoImpl) FindLatestActive(ctx context.Context, userID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.SubscriptionActive).
		Order("updated_at DESC").
		Order("id DESC").
		Take(&sub).
		Error

	if err != nil {
		return nil, err
	}

	return &sub, nil
}

// Activate moves a pending row to active. The status guard makes a concurrent second
// activation of the same row a no-op that reports ErrNotPending.
func (r *subscriptionRepoImpl) Activate(ctx context.Context, subscriptionID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ? AND status = ?", subscriptionID, model.SubscriptionPending).
		Updates(map[string]interface{}{
			"status":     model.SubscriptionActive,
			"updated_at": at,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotPending
	}

	return nil
}
