package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/lumenhq/paysvc/internal/domain/errors"
	"github.com/lumenhq/paysvc/internal/domain/model"
	"github.com/lumenhq/paysvc/internal/middleware/auth"
	"github.com/lumenhq/paysvc/internal/usecase"
)

type SubscriptionHandler struct {
	logger        *zap.Logger
	subscriptions *usecase.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(logger *zap.Logger, subscriptions *usecase.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		logger:        logger,
		subscriptions: subscriptions,
	}
}

// SubscriptionResponse is the wire form of a user's subscription state
type SubscriptionResponse struct {
	ProviderSubscriptionID *string    `json:"provider_subscription_id"`
	PlanName               *string    `json:"plan_name"`
	PlanStatus             string     `json:"plan_status"`
	CurrentPeriodStart     *time.Time `json:"current_period_start"`
	CurrentPeriodEnd       *time.Time `json:"current_period_end"`
	CancelAtPeriodEnd      bool       `json:"cancel_at_period_end"`
	TrialStart             *time.Time `json:"trial_start"`
	TrialEnd               *time.Time `json:"trial_end"`
	IsSubscribed           bool       `json:"is_subscribed"`
	IsOnTrial              bool       `json:"is_on_trial"`
	DaysUntilRenewal       int        `json:"days_until_renewal"`
}

func newSubscriptionResponse(sub *model.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{
		ProviderSubscriptionID: sub.ProviderSubscriptionID,
		PlanName:               sub.PlanName,
		PlanStatus:             string(sub.PlanStatus),
		CurrentPeriodStart:     sub.CurrentPeriodStart,
		CurrentPeriodEnd:       sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:      sub.CancelAtPeriodEnd,
		TrialStart:             sub.TrialStart,
		TrialEnd:               sub.TrialEnd,
		IsSubscribed:           sub.IsSubscribed(),
		IsOnTrial:              sub.IsOnTrial(),
		DaysUntilRenewal:       sub.DaysUntilRenewal(),
	}
}

// GetSubscription returns the current user's subscription state
func (h *SubscriptionHandler) GetSubscription(c echo.Context) error {
	authUser, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	sub, err := h.subscriptions.CurrentSubscription(c.Request().Context(), authUser.UserID)
	if err != nil {
		h.logger.Error("Failed to get subscription", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve subscription"})
	}
	if sub == nil {
		return c.JSON(http.StatusOK, echo.Map{"subscription": nil})
	}

	return c.JSON(http.StatusOK, echo.Map{"subscription": newSubscriptionResponse(sub)})
}

type CancelSubscriptionRequest struct {
	AtPeriodEnd *bool `json:"at_period_end"`
}

// CancelSubscription cancels the user's subscription, at period end
// unless asked otherwise.
func (h *SubscriptionHandler) CancelSubscription(c echo.Context) error {
	authUser, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	var req CancelSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}

	atPeriodEnd := true
	if req.AtPeriodEnd != nil {
		atPeriodEnd = *req.AtPeriodEnd
	}

	updated, err := h.subscriptions.CancelSubscription(c.Request().Context(), authUser.UserID, atPeriodEnd)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNoActiveSubscription) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "No active subscription found"})
		}
		h.logger.Error("Failed to cancel subscription", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to cancel subscription"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":              "Subscription canceled successfully",
		"cancel_at_period_end": updated.CancelAtPeriodEnd,
	})
}

type UpgradePlanRequest struct {
	Plan string `json:"plan" validate:"required"`
}

// UpgradePlan switches the user's subscription to a different plan
func (h *SubscriptionHandler) UpgradePlan(c echo.Context) error {
	authUser, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	var req UpgradePlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	_, err = h.subscriptions.ChangePlan(c.Request().Context(), authUser.UserID, req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrPlanNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid plan"})
		case errors.Is(err, domainErrors.ErrNoActiveSubscription):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "No active subscription found"})
		default:
			h.logger.Error("Failed to upgrade plan", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to upgrade subscription"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Subscription updated successfully",
		"new_plan": req.Plan,
	})
}
