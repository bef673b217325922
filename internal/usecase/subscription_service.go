package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"github.com/lumenhq/paysvc/internal/adapter/repository"
	domainErrors "github.com/lumenhq/paysvc/internal/domain/errors"
	"github.com/lumenhq/paysvc/internal/domain/gateway"
	"github.com/lumenhq/paysvc/internal/domain/model"
	domainRepo "github.com/lumenhq/paysvc/internal/domain/repository"
)

// SubscriptionService owns the local subscription state. It applies
// gateway subscription payloads as full-state snapshots: every apply
// overwrites the gateway-owned columns, so re-applying the same
// payload is a no-op.
type SubscriptionService struct {
	customers     domainRepo.CustomerRepository
	subscriptions domainRepo.SubscriptionRepository
	plans         repository.PlanRepository
	gateway       gateway.Gateway
	logger        *zap.Logger
}

// NewSubscriptionService creates a new subscription service instance
func NewSubscriptionService(
	customers domainRepo.CustomerRepository,
	subscriptions domainRepo.SubscriptionRepository,
	plans repository.PlanRepository,
	gw gateway.Gateway,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		customers:     customers,
		subscriptions: subscriptions,
		plans:         plans,
		gateway:       gw,
		logger:        logger,
	}
}

// UpdateUserSubscription mirrors a gateway subscription payload into
// the user's local subscription record: plan name, status, period
// bounds, trial bounds and the cancel-at-period-end flag.
func (s *SubscriptionService) UpdateUserSubscription(ctx context.Context, userID uuid.UUID, sub *stripe.Subscription) error {
	record := &model.Subscription{
		UserID:             userID,
		PlanStatus:         model.PlanStatus(sub.Status),
		CurrentPeriodStart: unixTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:   unixTime(sub.CurrentPeriodEnd),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		TrialStart:         unixTime(sub.TrialStart),
		TrialEnd:           unixTime(sub.TrialEnd),
		UpdatedAt:          time.Now(),
	}

	if sub.ID != "" {
		subID := sub.ID
		record.ProviderSubscriptionID = &subID
	}

	if name := s.resolvePlanName(ctx, sub); name != "" {
		record.PlanName = &name
	}

	if raw, err := json.Marshal(sub); err == nil {
		var data model.JSONB
		if err := json.Unmarshal(raw, &data); err == nil {
			record.ProviderData = data
		}
	}

	if err := s.subscriptions.Upsert(ctx, record); err != nil {
		return fmt.Errorf("failed to update user subscription: %w", err)
	}

	s.logger.Info("User subscription updated",
		zap.String("user_id", userID.String()),
		zap.String("subscription_id", sub.ID),
		zap.String("status", string(sub.Status)),
	)

	return nil
}

// MarkSubscriptionCanceled applies the gateway's deletion semantics:
// plan_status becomes canceled and the provider subscription id is
// cleared. Period and trial fields stay untouched. A user with no
// subscription record is a no-op.
func (s *SubscriptionService) MarkSubscriptionCanceled(ctx context.Context, userID uuid.UUID) error {
	existing, err := s.subscriptions.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if existing == nil {
		s.logger.Info("No subscription record to cancel",
			zap.String("user_id", userID.String()))
		return nil
	}

	if err := s.subscriptions.MarkCanceled(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("Subscription marked canceled",
		zap.String("user_id", userID.String()))

	return nil
}

// GetOrCreateCustomer returns the user's gateway customer record,
// registering one remotely on first use.
func (s *SubscriptionService) GetOrCreateCustomer(ctx context.Context, user *model.User) (*model.Customer, error) {
	existing, err := s.customers.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	remote, err := s.gateway.CreateCustomer(ctx, user.ID.String(), user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway customer: %w", err)
	}

	customer := &model.Customer{
		UserID:             user.ID,
		ProviderCustomerID: remote.ID,
		Email:              user.Email,
		Name:               user.Name,
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.logger.Info("Gateway customer created",
		zap.String("user_id", user.ID.String()),
		zap.String("customer_id", remote.ID),
	)

	return customer, nil
}

// CurrentSubscription returns the user's local subscription record,
// nil when none exists.
func (s *SubscriptionService) CurrentSubscription(ctx context.Context, userID uuid.UUID) (*model.Subscription, error) {
	return s.subscriptions.GetByUserID(ctx, userID)
}

// CancelSubscription cancels the user's subscription at the gateway
// and mirrors the returned payload locally.
func (s *SubscriptionService) CancelSubscription(ctx context.Context, userID uuid.UUID, atPeriodEnd bool) (*stripe.Subscription, error) {
	existing, err := s.subscriptions.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.ProviderSubscriptionID == nil {
		return nil, domainErrors.ErrNoActiveSubscription
	}

	updated, err := s.gateway.CancelSubscription(ctx, *existing.ProviderSubscriptionID, atPeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	if err := s.UpdateUserSubscription(ctx, userID, updated); err != nil {
		return nil, err
	}

	s.logger.Info("Subscription canceled",
		zap.String("user_id", userID.String()),
		zap.String("subscription_id", updated.ID),
		zap.Bool("cancel_at_period_end", updated.CancelAtPeriodEnd),
	)

	return updated, nil
}

// ChangePlan switches the user's subscription to a different catalog
// plan and mirrors the returned payload locally.
func (s *SubscriptionService) ChangePlan(ctx context.Context, userID uuid.UUID, planName string) (*stripe.Subscription, error) {
	plan, err := s.plans.GetByName(ctx, planName)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domainErrors.ErrPlanNotFound
	}

	existing, err := s.subscriptions.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.ProviderSubscriptionID == nil {
		return nil, domainErrors.ErrNoActiveSubscription
	}

	updated, err := s.gateway.ChangeSubscriptionPrice(ctx, *existing.ProviderSubscriptionID, plan.ProviderPriceID)
	if err != nil {
		return nil, fmt.Errorf("failed to change subscription price: %w", err)
	}

	if err := s.UpdateUserSubscription(ctx, userID, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// resolvePlanName maps the subscription's price to a catalog plan
// name, falling back to the price nickname when the catalog has no
// matching entry.
func (s *SubscriptionService) resolvePlanName(ctx context.Context, sub *stripe.Subscription) string {
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return ""
	}

	price := sub.Items.Data[0].Price

	plan, err := s.plans.GetByPriceID(ctx, price.ID)
	if err != nil {
		s.logger.Warn("Failed to look up plan for price",
			zap.String("price_id", price.ID),
			zap.Error(err))
	}
	if plan != nil {
		return plan.Name
	}

	return price.Nickname
}

func unixTime(v int64) *time.Time {
	if v == 0 {
		return nil
	}
	t := time.Unix(v, 0)
	return &t
}
