package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumenhq/paysvc/internal/domain/model"
	domainRepo "github.com/lumenhq/paysvc/internal/domain/repository"
)

type subscriptionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB, logger *zap.Logger) domainRepo.SubscriptionRepository {
	return &subscriptionRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert writes the subscription row keyed by user id. Conflicts
// overwrite every gateway-owned column, so re-applying the same
// payload leaves state unchanged.
func (r *subscriptionRepository) Upsert(ctx context.Context, subscription *model.Subscription) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"provider_subscription_id",
				"plan_name",
				"plan_status",
				"current_period_start",
				"current_period_end",
				"cancel_at_period_end",
				"trial_start",
				"trial_end",
				"provider_data",
				"updated_at",
			}),
		}).
		Create(subscription).Error

	if err != nil {
		r.logger.Error("Failed to upsert subscription",
			zap.String("user_id", subscription.UserID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return nil
}

func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Subscription, error) {
	var subscription model.Subscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &subscription, nil
}

func (r *subscriptionRepository) GetByProviderSubscriptionID(ctx context.Context, providerSubscriptionID string) (*model.Subscription, error) {
	var subscription model.Subscription
	err := r.db.WithContext(ctx).
		Where("provider_subscription_id = ?", providerSubscriptionID).
		First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription by provider id: %w", err)
	}
	return &subscription, nil
}

// MarkCanceled forces the canceled status and clears the provider
// subscription id. Period and trial columns are intentionally left as
// they were.
func (r *subscriptionRepository) MarkCanceled(ctx context.Context, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"plan_status":              model.PlanStatusCanceled,
			"provider_subscription_id": nil,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark subscription canceled",
			zap.String("user_id", userID.String()),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark subscription canceled: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("subscription not found for user: %s", userID)
	}

	return nil
}
