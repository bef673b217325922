package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"github.com/lumenhq/paysvc/internal/adapter/repository"
	"github.com/lumenhq/paysvc/internal/domain/model"
)

// PlanSyncService keeps the local plan catalog in step with the
// gateway's product and price objects.
type PlanSyncService struct {
	plans  repository.PlanRepository
	logger *zap.Logger
}

// NewPlanSyncService creates a new plan synchronization service
func NewPlanSyncService(plans repository.PlanRepository, logger *zap.Logger) *PlanSyncService {
	return &PlanSyncService{
		plans:  plans,
		logger: logger,
	}
}

// RegisterPriceHandlers installs catalog sync as the webhook handler
// for the gateway's price lifecycle events.
func (s *PlanSyncService) RegisterPriceHandlers(webhooks *WebhookService) {
	handler := func(ctx context.Context, event *stripe.Event) error {
		return s.SyncPriceEvent(ctx, string(event.Type), event.Data.Raw)
	}

	webhooks.RegisterHandler(stripe.EventTypePriceCreated, handler)
	webhooks.RegisterHandler(stripe.EventTypePriceUpdated, handler)
	webhooks.RegisterHandler(stripe.EventTypePriceDeleted, handler)
}

// SyncPriceEvent handles price-related webhook events
func (s *PlanSyncService) SyncPriceEvent(ctx context.Context, eventType string, eventData json.RawMessage) error {
	switch eventType {
	case "price.created", "price.updated":
		var price stripe.Price
		if err := json.Unmarshal(eventData, &price); err != nil {
			return fmt.Errorf("failed to unmarshal price data: %w", err)
		}
		return s.SyncPriceWithProduct(ctx, &price, price.Product)
	case "price.deleted":
		var price stripe.Price
		if err := json.Unmarshal(eventData, &price); err != nil {
			return fmt.Errorf("failed to unmarshal price data: %w", err)
		}
		return s.plans.Deactivate(ctx, price.ID)
	default:
		return fmt.Errorf("unhandled price event type: %s", eventType)
	}
}

// SyncPriceWithProduct upserts one catalog entry from a gateway price
// and its product. One-time prices are skipped; the catalog carries
// subscription plans only.
func (s *PlanSyncService) SyncPriceWithProduct(ctx context.Context, price *stripe.Price, prod *stripe.Product) error {
	if price.Type != stripe.PriceTypeRecurring || price.Recurring == nil {
		s.logger.Info("Skipping non-recurring price",
			zap.String("price_id", price.ID))
		return nil
	}

	plan := &model.Plan{
		Name:            planKey(price, prod),
		ProviderPriceID: price.ID,
		Price:           decimal.NewFromInt(price.UnitAmount).Div(decimal.NewFromInt(100)),
		Currency:        string(price.Currency),
		Interval:        string(price.Recurring.Interval),
		TrialDays:       int(price.Recurring.TrialPeriodDays),
		IsActive:        price.Active,
	}

	if prod != nil {
		plan.ProviderProductID = prod.ID
		plan.DisplayName = prod.Name

		if len(prod.Metadata) > 0 {
			features := make(model.Features, len(prod.Metadata))
			for k, v := range prod.Metadata {
				features[k] = v
			}
			plan.Features = features
		}
	}

	if err := s.plans.Upsert(ctx, plan); err != nil {
		return err
	}

	s.logger.Info("Plan synced",
		zap.String("plan", plan.Name),
		zap.String("price_id", price.ID))

	return nil
}

// planKey derives the catalog key for a price: the lookup key when the
// gateway has one, the nickname next, the product name as a last
// resort.
func planKey(price *stripe.Price, prod *stripe.Product) string {
	if price.LookupKey != "" {
		return price.LookupKey
	}
	if price.Nickname != "" {
		return price.Nickname
	}
	if prod != nil {
		return prod.Name
	}
	return price.ID
}
