package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/lumenhq/paysvc/internal/domain/model"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	GetByProviderCustomerID(ctx context.Context, providerCustomerID string) (*model.Customer, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Customer, error)
	Update(ctx context.Context, customer *model.Customer) error
}
