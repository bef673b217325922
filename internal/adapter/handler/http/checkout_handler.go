package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lumenhq/paysvc/internal/adapter/repository"
	"github.com/lumenhq/paysvc/internal/domain/gateway"
	domainRepo "github.com/lumenhq/paysvc/internal/domain/repository"
	"github.com/lumenhq/paysvc/internal/middleware/auth"
	"github.com/lumenhq/paysvc/internal/usecase"
)

type CheckoutHandler struct {
	logger           *zap.Logger
	clientURL        string
	defaultTrialDays int
	users            domainRepo.UserRepository
	plans            repository.PlanRepository
	subscriptions    *usecase.SubscriptionService
	gateway          gateway.Gateway
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(
	logger *zap.Logger,
	clientURL string,
	defaultTrialDays int,
	users domainRepo.UserRepository,
	plans repository.PlanRepository,
	subscriptions *usecase.SubscriptionService,
	gw gateway.Gateway,
) *CheckoutHandler {
	return &CheckoutHandler{
		logger:           logger,
		clientURL:        clientURL,
		defaultTrialDays: defaultTrialDays,
		users:            users,
		plans:            plans,
		subscriptions:    subscriptions,
		gateway:          gw,
	}
}

type CreateCheckoutRequest struct {
	Plan      string `json:"plan" validate:"required"`
	TrialDays int    `json:"trial_days" validate:"gte=0,lte=365"`
}

type CreateCheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CreateCheckout starts a hosted checkout session for a catalog plan
func (h *CheckoutHandler) CreateCheckout(c echo.Context) error {
	authUser, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	var req CreateCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()

	user, err := h.users.GetByID(ctx, authUser.UserID)
	if err != nil {
		h.logger.Error("Failed to load user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create checkout session"})
	}
	if user == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
	}

	plan, err := h.plans.GetByName(ctx, req.Plan)
	if err != nil {
		h.logger.Error("Failed to load plan", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create checkout session"})
	}
	if plan == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid plan"})
	}

	customer, err := h.subscriptions.GetOrCreateCustomer(ctx, user)
	if err != nil {
		h.logger.Error("Failed to resolve gateway customer", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create checkout session"})
	}

	trialDays := req.TrialDays
	if trialDays == 0 {
		trialDays = plan.TrialDays
	}
	if trialDays == 0 {
		trialDays = h.defaultTrialDays
	}

	h.logger.Info("Creating checkout session",
		zap.String("user_id", user.ID.String()),
		zap.String("plan", plan.Name),
		zap.Int("trial_days", trialDays),
	)

	session, err := h.gateway.NewCheckoutSession(ctx, &gateway.CheckoutSessionRequest{
		CustomerID: customer.ProviderCustomerID,
		PriceID:    plan.ProviderPriceID,
		TrialDays:  trialDays,
		SuccessURL: h.clientURL + "/billing/success",
		CancelURL:  h.clientURL + "/billing/cancel",
		Metadata: map[string]string{
			"user_id":   user.ID.String(),
			"plan_name": plan.Name,
		},
	})
	if err != nil {
		h.logger.Error("Failed to create checkout session", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create checkout session"})
	}

	return c.JSON(http.StatusOK, CreateCheckoutResponse{
		SessionID: session.ID,
		URL:       session.URL,
	})
}

// CreatePortalSession returns a billing portal URL for the user
func (h *CheckoutHandler) CreatePortalSession(c echo.Context) error {
	authUser, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	ctx := c.Request().Context()

	user, err := h.users.GetByID(ctx, authUser.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create portal session"})
	}
	if user == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
	}

	customer, err := h.subscriptions.GetOrCreateCustomer(ctx, user)
	if err != nil {
		h.logger.Error("Failed to resolve gateway customer", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create portal session"})
	}

	url, err := h.gateway.NewPortalSession(ctx, customer.ProviderCustomerID, h.clientURL)
	if err != nil {
		h.logger.Error("Failed to create portal session", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create portal session"})
	}

	return c.JSON(http.StatusOK, echo.Map{"url": url})
}
