package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumenhq/paysvc/internal/domain/model"
)

// PlanRepository handles the subscription plan catalog
type PlanRepository interface {
	GetAll(ctx context.Context) ([]*model.Plan, error)
	GetByName(ctx context.Context, name string) (*model.Plan, error)
	GetByPriceID(ctx context.Context, priceID string) (*model.Plan, error)
	Upsert(ctx context.Context, plan *model.Plan) error
	Deactivate(ctx context.Context, priceID string) error
}

type planRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *gorm.DB, logger *zap.Logger) PlanRepository {
	return &planRepository{
		db:     db,
		logger: logger,
	}
}

// GetAll retrieves all active plans ordered for display
func (r *planRepository) GetAll(ctx context.Context) ([]*model.Plan, error) {
	var plans []*model.Plan

	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, display_name ASC").
		Find(&plans).Error

	if err != nil {
		r.logger.Error("Failed to get plans", zap.Error(err))
		return nil, fmt.Errorf("failed to get plans: %w", err)
	}

	return plans, nil
}

func (r *planRepository) GetByName(ctx context.Context, name string) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.WithContext(ctx).
		Where("name = ? AND is_active = ?", name, true).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan by name: %w", err)
	}
	return &plan, nil
}

func (r *planRepository) GetByPriceID(ctx context.Context, priceID string) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.WithContext(ctx).
		Where("provider_price_id = ?", priceID).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan by price id: %w", err)
	}
	return &plan, nil
}

// Upsert writes a catalog entry keyed by provider price id
func (r *planRepository) Upsert(ctx context.Context, plan *model.Plan) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "provider_price_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name",
				"display_name",
				"provider_product_id",
				"price",
				"currency",
				"interval",
				"trial_days",
				"features",
				"is_active",
				"updated_at",
			}),
		}).
		Create(plan).Error

	if err != nil {
		r.logger.Error("Failed to upsert plan",
			zap.String("price_id", plan.ProviderPriceID),
			zap.Error(err))
		return fmt.Errorf("failed to upsert plan: %w", err)
	}

	return nil
}

// Deactivate hides a plan whose price was removed at the gateway
func (r *planRepository) Deactivate(ctx context.Context, priceID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Plan{}).
		Where("provider_price_id = ?", priceID).
		Update("is_active", false)

	if result.Error != nil {
		return fmt.Errorf("failed to deactivate plan: %w", result.Error)
	}

	return nil
}
