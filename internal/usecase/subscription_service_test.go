package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	domainErrors "github.com/lumenhq/paysvc/internal/domain/errors"
	"github.com/lumenhq/paysvc/internal/domain/model"
	"github.com/lumenhq/paysvc/internal/usecase"
)

type subscriptionFixture struct {
	customers *MockCustomerRepository
	subs      *MockSubscriptionRepository
	plans     *MockPlanRepository
	gateway   *MockGateway
	service   *usecase.SubscriptionService
}

func newSubscriptionFixture() *subscriptionFixture {
	f := &subscriptionFixture{
		customers: new(MockCustomerRepository),
		subs:      new(MockSubscriptionRepository),
		plans:     new(MockPlanRepository),
		gateway:   new(MockGateway),
	}
	f.service = usecase.NewSubscriptionService(f.customers, f.subs, f.plans, f.gateway, zap.NewNop())
	return f
}

func gatewaySubscription(status stripe.SubscriptionStatus) *stripe.Subscription {
	return &stripe.Subscription{
		ID:                 "sub_abc",
		Status:             status,
		CurrentPeriodStart: 1700000000,
		CurrentPeriodEnd:   1702592000,
		CancelAtPeriodEnd:  false,
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{Price: &stripe.Price{ID: "price_pro", Nickname: "Pro Monthly"}},
			},
		},
	}
}

func TestSubscriptionService_UpdateUserSubscription(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("payload fields are mirrored", func(t *testing.T) {
		f := newSubscriptionFixture()

		f.plans.On("GetByPriceID", ctx, "price_pro").Return(&model.Plan{
			Name:            "pro",
			ProviderPriceID: "price_pro",
		}, nil)
		f.subs.On("Upsert", ctx, mock.MatchedBy(func(s *model.Subscription) bool {
			return s.UserID == userID &&
				s.PlanStatus == model.PlanStatusActive &&
				s.PlanName != nil && *s.PlanName == "pro" &&
				s.ProviderSubscriptionID != nil && *s.ProviderSubscriptionID == "sub_abc" &&
				s.CurrentPeriodStart != nil && s.CurrentPeriodStart.Equal(time.Unix(1700000000, 0)) &&
				s.CurrentPeriodEnd != nil && s.CurrentPeriodEnd.Equal(time.Unix(1702592000, 0)) &&
				s.TrialStart == nil && s.TrialEnd == nil
		})).Return(nil)

		err := f.service.UpdateUserSubscription(ctx, userID, gatewaySubscription(stripe.SubscriptionStatusActive))

		assert.NoError(t, err)
		f.subs.AssertExpectations(t)
	})

	t.Run("re-applying the same payload upserts the same record", func(t *testing.T) {
		f := newSubscriptionFixture()

		f.plans.On("GetByPriceID", ctx, "price_pro").Return(&model.Plan{Name: "pro"}, nil)
		f.subs.On("Upsert", ctx, mock.Anything).Return(nil).Twice()

		sub := gatewaySubscription(stripe.SubscriptionStatusActive)
		assert.NoError(t, f.service.UpdateUserSubscription(ctx, userID, sub))
		assert.NoError(t, f.service.UpdateUserSubscription(ctx, userID, sub))

		f.subs.AssertExpectations(t)
	})

	t.Run("plan name falls back to price nickname", func(t *testing.T) {
		f := newSubscriptionFixture()

		f.plans.On("GetByPriceID", ctx, "price_pro").Return(nil, nil)
		f.subs.On("Upsert", ctx, mock.MatchedBy(func(s *model.Subscription) bool {
			return s.PlanName != nil && *s.PlanName == "Pro Monthly"
		})).Return(nil)

		err := f.service.UpdateUserSubscription(ctx, userID, gatewaySubscription(stripe.SubscriptionStatusActive))

		assert.NoError(t, err)
		f.subs.AssertExpectations(t)
	})
}

func TestSubscriptionService_MarkSubscriptionCanceled(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("existing record is canceled", func(t *testing.T) {
		f := newSubscriptionFixture()

		subID := "sub_abc"
		f.subs.On("GetByUserID", ctx, userID).Return(&model.Subscription{
			UserID:                 userID,
			ProviderSubscriptionID: &subID,
			PlanStatus:             model.PlanStatusActive,
		}, nil)
		f.subs.On("MarkCanceled", ctx, userID).Return(nil)

		err := f.service.MarkSubscriptionCanceled(ctx, userID)

		assert.NoError(t, err)
		f.subs.AssertExpectations(t)
	})

	t.Run("missing record is a no-op", func(t *testing.T) {
		f := newSubscriptionFixture()

		f.subs.On("GetByUserID", ctx, userID).Return(nil, nil)

		err := f.service.MarkSubscriptionCanceled(ctx, userID)

		assert.NoError(t, err)
		f.subs.AssertNotCalled(t, "MarkCanceled", mock.Anything, mock.Anything)
	})
}

func TestSubscriptionService_GetOrCreateCustomer(t *testing.T) {
	ctx := context.Background()
	user := &model.User{
		ID:    uuid.New(),
		Email: "jamie@example.com",
		Name:  "Jamie",
	}

	t.Run("existing customer is returned as-is", func(t *testing.T) {
		f := newSubscriptionFixture()

		existing := &model.Customer{UserID: user.ID, ProviderCustomerID: "cus_1"}
		f.customers.On("GetByUserID", ctx, user.ID).Return(existing, nil)

		customer, err := f.service.GetOrCreateCustomer(ctx, user)

		assert.NoError(t, err)
		assert.Equal(t, existing, customer)
		f.gateway.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("first use registers a gateway customer", func(t *testing.T) {
		f := newSubscriptionFixture()

		f.customers.On("GetByUserID", ctx, user.ID).Return(nil, nil)
		f.gateway.On("CreateCustomer", ctx, user.ID.String(), user.Email, user.Name).
			Return(&stripe.Customer{ID: "cus_new"}, nil)
		f.customers.On("Create", ctx, mock.MatchedBy(func(c *model.Customer) bool {
			return c.UserID == user.ID && c.ProviderCustomerID == "cus_new"
		})).Return(nil)

		customer, err := f.service.GetOrCreateCustomer(ctx, user)

		assert.NoError(t, err)
		assert.Equal(t, "cus_new", customer.ProviderCustomerID)
		f.customers.AssertExpectations(t)
	})
}

func TestSubscriptionService_CancelSubscription(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("no local subscription", func(t *testing.T) {
		f := newSubscriptionFixture()

		f.subs.On("GetByUserID", ctx, userID).Return(nil, nil)

		_, err := f.service.CancelSubscription(ctx, userID, true)

		assert.ErrorIs(t, err, domainErrors.ErrNoActiveSubscription)
	})

	t.Run("cancel at period end mirrors the gateway result", func(t *testing.T) {
		f := newSubscriptionFixture()

		subID := "sub_abc"
		f.subs.On("GetByUserID", ctx, userID).Return(&model.Subscription{
			UserID:                 userID,
			ProviderSubscriptionID: &subID,
			PlanStatus:             model.PlanStatusActive,
		}, nil)

		updated := gatewaySubscription(stripe.SubscriptionStatusActive)
		updated.CancelAtPeriodEnd = true
		f.gateway.On("CancelSubscription", ctx, "sub_abc", true).Return(updated, nil)
		f.plans.On("GetByPriceID", ctx, "price_pro").Return(&model.Plan{Name: "pro"}, nil)
		f.subs.On("Upsert", ctx, mock.MatchedBy(func(s *model.Subscription) bool {
			return s.CancelAtPeriodEnd
		})).Return(nil)

		result, err := f.service.CancelSubscription(ctx, userID, true)

		assert.NoError(t, err)
		assert.True(t, result.CancelAtPeriodEnd)
		f.gateway.AssertExpectations(t)
	})
}

func TestSubscriptionService_ChangePlan(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("unknown plan", func(t *testing.T) {
		f := newSubscriptionFixture()

		f.plans.On("GetByName", ctx, "nonexistent").Return(nil, nil)

		_, err := f.service.ChangePlan(ctx, userID, "nonexistent")

		assert.ErrorIs(t, err, domainErrors.ErrPlanNotFound)
	})

	t.Run("switches the subscription price", func(t *testing.T) {
		f := newSubscriptionFixture()

		subID := "sub_abc"
		f.plans.On("GetByName", ctx, "pro").Return(&model.Plan{
			Name:            "pro",
			ProviderPriceID: "price_pro",
		}, nil)
		f.subs.On("GetByUserID", ctx, userID).Return(&model.Subscription{
			UserID:                 userID,
			ProviderSubscriptionID: &subID,
			PlanStatus:             model.PlanStatusActive,
		}, nil)
		f.gateway.On("ChangeSubscriptionPrice", ctx, "sub_abc", "price_pro").
			Return(gatewaySubscription(stripe.SubscriptionStatusActive), nil)
		f.plans.On("GetByPriceID", ctx, "price_pro").Return(&model.Plan{Name: "pro"}, nil)
		f.subs.On("Upsert", ctx, mock.Anything).Return(nil)

		result, err := f.service.ChangePlan(ctx, userID, "pro")

		assert.NoError(t, err)
		assert.Equal(t, "sub_abc", result.ID)
		f.gateway.AssertExpectations(t)
	})
}
