package gateway

import (
	"context"

	"github.com/stripe/stripe-go/v79"
)

// CheckoutSessionRequest carries everything needed to start a hosted
// checkout flow for one plan.
type CheckoutSessionRequest struct {
	CustomerID string
	PriceID    string
	TrialDays  int
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// CheckoutSession is the opaque result of a checkout session call; the
// URL is handed straight to the client.
type CheckoutSession struct {
	ID  string
	URL string
}

// Gateway is the subset of the payment provider's API the service
// consumes. Implementations perform the remote calls; callers treat
// every method as an opaque, blocking remote operation.
type Gateway interface {
	// RetrieveSubscription fetches the full subscription object by id.
	RetrieveSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)

	// CreateCustomer registers a new customer keyed by the local user id.
	CreateCustomer(ctx context.Context, userID, email, name string) (*stripe.Customer, error)

	// CancelSubscription cancels a subscription, immediately or at the
	// end of the current period, and returns the updated object.
	CancelSubscription(ctx context.Context, subscriptionID string, atPeriodEnd bool) (*stripe.Subscription, error)

	// ChangeSubscriptionPrice moves the subscription's single item to a
	// new price and returns the updated object.
	ChangeSubscriptionPrice(ctx context.Context, subscriptionID, newPriceID string) (*stripe.Subscription, error)

	// NewCheckoutSession creates a hosted checkout session.
	NewCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error)

	// NewPortalSession creates a billing portal session and returns its URL.
	NewPortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}
