package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/lumenhq/paysvc/internal/domain/model"
)

type PaymentRepository interface {
	// Record inserts the payment audit row; a row with the same
	// provider invoice id is left untouched.
	Record(ctx context.Context, payment *model.Payment) error

	GetByProviderInvoiceID(ctx context.Context, providerInvoiceID string) (*model.Payment, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Payment, error)
}
