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

type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

// Record inserts the payment audit row. A redelivered invoice event
// hits the unique provider_invoice_id and is ignored.
func (r *paymentRepository) Record(ctx context.Context, payment *model.Payment) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(payment).Error

	if err != nil {
		r.logger.Error("Failed to record payment",
			zap.String("invoice_id", payment.ProviderInvoiceID),
			zap.Error(err))
		return fmt.Errorf("failed to record payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByProviderInvoiceID(ctx context.Context, providerInvoiceID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("provider_invoice_id = ?", providerInvoiceID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Payment, error) {
	var payments []*model.Payment

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&payments).Error; err != nil {
		r.logger.Error("Failed to list payments",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, nil
}
