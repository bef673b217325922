package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/lumenhq/paysvc/internal/domain/model"
)

type SubscriptionRepository interface {
	// Upsert writes the subscription record for its user, creating the
	// row on first reconciliation and overwriting it afterwards.
	Upsert(ctx context.Context, subscription *model.Subscription) error

	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Subscription, error)
	GetByProviderSubscriptionID(ctx context.Context, providerSubscriptionID string) (*model.Subscription, error)

	// MarkCanceled forces plan_status to canceled and clears the
	// provider subscription id, leaving period and trial fields as
	// they were.
	MarkCanceled(ctx context.Context, userID uuid.UUID) error
}
