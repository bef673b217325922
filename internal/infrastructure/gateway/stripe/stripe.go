package stripe

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	portalsession "github.com/stripe/stripe-go/v79/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/subscription"
	"go.uber.org/zap"

	"github.com/lumenhq/paysvc/internal/domain/gateway"
)

// Gateway implements the payment gateway interface against Stripe.
// The API key is set process-wide at boot (stripe.Key).
type Gateway struct {
	logger *zap.Logger
}

// NewGateway creates a new Stripe gateway client
func NewGateway(logger *zap.Logger) *Gateway {
	return &Gateway{logger: logger}
}

// RetrieveSubscription fetches the full subscription object by id
func (g *Gateway) RetrieveSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	params.AddExpand("items.data.price")

	sub, err := subscription.Get(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve subscription: %w", err)
	}

	return sub, nil
}

// CreateCustomer registers a new Stripe customer tagged with the local
// user id.
func (g *Gateway) CreateCustomer(ctx context.Context, userID, email, name string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	if name != "" {
		params.Name = stripe.String(name)
	}
	params.AddMetadata("user_id", userID)

	cust, err := customer.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	g.logger.Info("Stripe customer created",
		zap.String("customer_id", cust.ID),
		zap.String("user_id", userID))

	return cust, nil
}

// CancelSubscription cancels a subscription, at period end by default
func (g *Gateway) CancelSubscription(ctx context.Context, subscriptionID string, atPeriodEnd bool) (*stripe.Subscription, error) {
	if atPeriodEnd {
		params := &stripe.SubscriptionParams{
			CancelAtPeriodEnd: stripe.Bool(true),
		}
		params.Context = ctx
		params.AddExpand("items.data.price")

		sub, err := subscription.Update(subscriptionID, params)
		if err != nil {
			return nil, fmt.Errorf("failed to cancel subscription at period end: %w", err)
		}
		return sub, nil
	}

	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	sub, err := subscription.Cancel(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}
	return sub, nil
}

// ChangeSubscriptionPrice moves the subscription's item to a new price
func (g *Gateway) ChangeSubscriptionPrice(ctx context.Context, subscriptionID, newPriceID string) (*stripe.Subscription, error) {
	current, err := g.RetrieveSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if current.Items == nil || len(current.Items.Data) == 0 {
		return nil, fmt.Errorf("subscription %s has no items", subscriptionID)
	}

	params := &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(current.Items.Data[0].ID),
				Price: stripe.String(newPriceID),
			},
		},
		ProrationBehavior: stripe.String("create_prorations"),
	}
	params.Context = ctx
	params.AddExpand("items.data.price")

	sub, err := subscription.Update(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to update subscription price: %w", err)
	}

	return sub, nil
}

// NewCheckoutSession creates a hosted checkout session for one plan
func (g *Gateway) NewCheckoutSession(ctx context.Context, req *gateway.CheckoutSessionRequest) (*gateway.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(req.CustomerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx

	if req.TrialDays > 0 {
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			TrialPeriodDays: stripe.Int64(int64(req.TrialDays)),
		}
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	g.logger.Info("Checkout session created",
		zap.String("session_id", sess.ID),
		zap.String("customer_id", req.CustomerID))

	return &gateway.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// NewPortalSession creates a billing portal session
func (g *Gateway) NewPortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}

	return sess.URL, nil
}
