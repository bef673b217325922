package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/lumenhq/paysvc/internal/adapter/repository"
	domainErrors "github.com/lumenhq/paysvc/internal/domain/errors"
	"github.com/lumenhq/paysvc/internal/domain/gateway"
	"github.com/lumenhq/paysvc/internal/domain/model"
	domainRepo "github.com/lumenhq/paysvc/internal/domain/repository"
)

// EventHandler processes one verified webhook event. An error return
// marks the stored event failed and tells the gateway to redeliver.
type EventHandler func(ctx context.Context, event *stripe.Event) error

// WebhookService is the reconciliation pipeline for inbound gateway
// notifications: verify the signature, record the event, dispatch it
// to a handler, and persist the outcome. Custom handlers registered on
// the instance shadow the built-in defaults for their event type.
type WebhookService struct {
	secret        string
	events        repository.WebhookEventRepository
	customers     domainRepo.CustomerRepository
	payments      domainRepo.PaymentRepository
	subscriptions *SubscriptionService
	gateway       gateway.Gateway
	logger        *zap.Logger

	mu       sync.RWMutex
	handlers map[stripe.EventType]EventHandler

	lockMu        sync.Mutex
	customerLocks map[string]*sync.Mutex
}

// NewWebhookService creates a new webhook service
func NewWebhookService(
	secret string,
	events repository.WebhookEventRepository,
	customers domainRepo.CustomerRepository,
	payments domainRepo.PaymentRepository,
	subscriptions *SubscriptionService,
	gw gateway.Gateway,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		secret:        secret,
		events:        events,
		customers:     customers,
		payments:      payments,
		subscriptions: subscriptions,
		gateway:       gw,
		logger:        logger,
		handlers:      make(map[stripe.EventType]EventHandler),
		customerLocks: make(map[string]*sync.Mutex),
	}
}

// VerifyEvent checks that the payload genuinely originated from the
// gateway. The signature is computed over the exact body bytes; any
// re-serialization before this call invalidates it.
func (s *WebhookService) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	if s.secret == "" {
		return stripe.Event{}, domainErrors.ErrWebhookNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		sigHeader,
		s.secret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		s.logger.Error("Webhook signature verification failed", zap.Error(err))
		return stripe.Event{}, fmt.Errorf("%w: %v", domainErrors.ErrInvalidSignature, err)
	}

	return event, nil
}

// RegisterHandler installs a custom handler for an event type,
// replacing any default or previously registered handler for that
// type. The last registration wins.
func (s *WebhookService) RegisterHandler(eventType stripe.EventType, handler EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[eventType] = handler

	s.logger.Info("Registered custom webhook handler",
		zap.String("event_type", string(eventType)))
}

// ProcessEvent runs one verified event through the pipeline. The event
// is recorded before any handler executes; a redelivery of an already
// processed event id is acknowledged without re-applying its effect,
// while a redelivery of an event whose handler failed runs the handler
// again so gateway retries can complete the work.
func (s *WebhookService) ProcessEvent(ctx context.Context, event *stripe.Event) error {
	existing, err := s.events.GetByEventID(ctx, event.ID)
	if err != nil {
		return err
	}
	if existing != nil && existing.Processed {
		s.logger.Info("Skipping redelivered webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
		return nil
	}

	if existing == nil {
		// Two concurrent deliveries can both miss the lookup above;
		// the unique constraint on the event id picks the winner and
		// the loser acknowledges without dispatching.
		if err := s.events.Record(ctx, event.ID, string(event.Type), event.Data.Raw); err != nil {
			if errors.Is(err, domainErrors.ErrDuplicateEvent) {
				s.logger.Info("Webhook event recorded by concurrent delivery",
					zap.String("event_id", event.ID),
					zap.String("event_type", string(event.Type)))
				return nil
			}
			return err
		}
	} else {
		s.logger.Info("Retrying previously failed webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}

	// Concurrent deliveries for one customer would race on the
	// subscription row; serialize them.
	if customerID := customerFromPayload(event.Data.Raw); customerID != "" {
		unlock := s.lockCustomer(customerID)
		defer unlock()
	}

	if err := s.dispatch(ctx, event); err != nil {
		s.logger.Error("Failed to process webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))

		if markErr := s.events.MarkFailed(ctx, event.ID, err); markErr != nil {
			s.logger.Error("Failed to store webhook error detail",
				zap.String("event_id", event.ID),
				zap.Error(markErr))
		}
		return err
	}

	if err := s.events.MarkProcessed(ctx, event.ID); err != nil {
		return err
	}

	s.logger.Info("Webhook event processed",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	return nil
}

// dispatch resolves the handler for the event type: a registered
// custom handler first, then the built-in defaults. Unmatched types
// are a logged no-op, not an error.
func (s *WebhookService) dispatch(ctx context.Context, event *stripe.Event) error {
	s.mu.RLock()
	custom, ok := s.handlers[event.Type]
	s.mu.RUnlock()

	if ok {
		return custom(ctx, event)
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		return s.handleCheckoutCompleted(ctx, event)
	case stripe.EventTypeCustomerSubscriptionCreated, stripe.EventTypeCustomerSubscriptionUpdated:
		return s.handleSubscriptionChanged(ctx, event)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		return s.handleSubscriptionDeleted(ctx, event)
	case stripe.EventTypeInvoicePaymentSucceeded:
		return s.handleInvoicePaid(ctx, event)
	case stripe.EventTypeInvoicePaymentFailed:
		return s.handleInvoiceFailed(ctx, event)
	default:
		s.logger.Info("No handler for webhook event type",
			zap.String("event_type", string(event.Type)))
		return nil
	}
}

// handleCheckoutCompleted fetches the full subscription behind a
// completed checkout session and applies it to the session's user.
func (s *WebhookService) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}

	if session.Subscription == nil || session.Subscription.ID == "" {
		s.logger.Info("Checkout session has no subscription",
			zap.String("session_id", session.ID))
		return nil
	}

	customer := ""
	if session.Customer != nil {
		customer = session.Customer.ID
	}

	local, err := s.lookupCustomer(ctx, customer)
	if err != nil {
		return err
	}
	if local == nil {
		return nil
	}

	sub, err := s.gateway.RetrieveSubscription(ctx, session.Subscription.ID)
	if err != nil {
		return fmt.Errorf("failed to retrieve subscription %s: %w", session.Subscription.ID, err)
	}

	return s.subscriptions.UpdateUserSubscription(ctx, local.UserID, sub)
}

// handleSubscriptionChanged applies created/updated events. The
// payload is a full-state snapshot, not a delta.
func (s *WebhookService) handleSubscriptionChanged(ctx context.Context, event *stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	customer := ""
	if sub.Customer != nil {
		customer = sub.Customer.ID
	}

	local, err := s.lookupCustomer(ctx, customer)
	if err != nil {
		return err
	}
	if local == nil {
		return nil
	}

	return s.subscriptions.UpdateUserSubscription(ctx, local.UserID, &sub)
}

func (s *WebhookService) handleSubscriptionDeleted(ctx context.Context, event *stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	customer := ""
	if sub.Customer != nil {
		customer = sub.Customer.ID
	}

	local, err := s.lookupCustomer(ctx, customer)
	if err != nil {
		return err
	}
	if local == nil {
		return nil
	}

	return s.subscriptions.MarkSubscriptionCanceled(ctx, local.UserID)
}

// handleInvoicePaid records a payment audit row. Subscription state is
// driven solely by subscription events, never by invoices.
func (s *WebhookService) handleInvoicePaid(ctx context.Context, event *stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to parse invoice: %w", err)
	}

	s.logger.Info("Invoice paid",
		zap.String("invoice_id", invoice.ID),
		zap.Int64("amount_paid", invoice.AmountPaid))

	return s.recordInvoicePayment(ctx, &invoice, model.PaymentStatusSucceeded, invoice.AmountPaid)
}

func (s *WebhookService) handleInvoiceFailed(ctx context.Context, event *stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to parse invoice: %w", err)
	}

	s.logger.Warn("Invoice payment failed",
		zap.String("invoice_id", invoice.ID),
		zap.Int64("amount_due", invoice.AmountDue))

	return s.recordInvoicePayment(ctx, &invoice, model.PaymentStatusFailed, invoice.AmountDue)
}

func (s *WebhookService) recordInvoicePayment(ctx context.Context, invoice *stripe.Invoice, status string, amount int64) error {
	customer := ""
	if invoice.Customer != nil {
		customer = invoice.Customer.ID
	}

	local, err := s.lookupCustomer(ctx, customer)
	if err != nil {
		return err
	}
	if local == nil {
		return nil
	}

	payment := &model.Payment{
		UserID:            local.UserID,
		ProviderInvoiceID: invoice.ID,
		AmountCents:       amount,
		Currency:          string(invoice.Currency),
		Status:            status,
	}

	if invoice.PaymentIntent != nil && invoice.PaymentIntent.ID != "" {
		intentID := invoice.PaymentIntent.ID
		payment.ProviderPaymentIntentID = &intentID
	}
	if invoice.Subscription != nil && invoice.Subscription.ID != "" {
		subID := invoice.Subscription.ID
		payment.ProviderSubscriptionID = &subID
	}
	if invoice.StatusTransitions != nil {
		payment.PaidAt = unixTime(invoice.StatusTransitions.PaidAt)
	}

	return s.payments.Record(ctx, payment)
}

// lookupCustomer resolves a gateway customer id to the local customer
// record. A miss is not an error: the customer may belong to another
// environment, and failing would make the gateway retry forever.
func (s *WebhookService) lookupCustomer(ctx context.Context, providerCustomerID string) (*model.Customer, error) {
	if providerCustomerID == "" {
		s.logger.Info("Webhook event carries no customer id")
		return nil, nil
	}

	customer, err := s.customers.GetByProviderCustomerID(ctx, providerCustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		s.logger.Info("No local user for gateway customer",
			zap.String("customer_id", providerCustomerID))
		return nil, nil
	}

	return customer, nil
}

// lockCustomer takes the per-customer mutex so that at most one
// reconciliation runs for a given customer at a time.
func (s *WebhookService) lockCustomer(customerID string) func() {
	s.lockMu.Lock()
	lock, ok := s.customerLocks[customerID]
	if !ok {
		lock = &sync.Mutex{}
		s.customerLocks[customerID] = lock
	}
	s.lockMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// customerFromPayload peeks at the payload's customer field, which the
// gateway serializes as a plain id string in webhook deliveries.
func customerFromPayload(raw json.RawMessage) string {
	var probe struct {
		Customer string `json:"customer"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return probe.Customer
}
