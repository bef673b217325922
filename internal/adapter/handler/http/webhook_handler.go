package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lumenhq/paysvc/internal/adapter/repository"
	domainErrors "github.com/lumenhq/paysvc/internal/domain/errors"
	"github.com/lumenhq/paysvc/internal/usecase"
)

// WebhookHandler is the HTTP entry point for gateway notifications.
// Authentication for this route is the payload signature, not JWT.
type WebhookHandler struct {
	logger   *zap.Logger
	webhooks *usecase.WebhookService
	events   repository.WebhookEventRepository
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(logger *zap.Logger, webhooks *usecase.WebhookService, events repository.WebhookEventRepository) *WebhookHandler {
	return &WebhookHandler{
		logger:   logger,
		webhooks: webhooks,
		events:   events,
	}
}

// HandleWebhook verifies and processes one delivery. Status codes
// drive the gateway's retry behavior: 400 rejects bad signatures for
// good, 500 asks for redelivery.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error reading request body"})
	}

	sig := c.Request().Header.Get("Stripe-Signature")

	event, err := h.webhooks.VerifyEvent(body, sig)
	if err != nil {
		if errors.Is(err, domainErrors.ErrWebhookNotConfigured) {
			h.logger.Error("Webhook secret not configured")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Webhook not configured"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid signature"})
	}

	h.logger.Info("Webhook event received",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
	)

	if err := h.webhooks.ProcessEvent(c.Request().Context(), &event); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to process event"})
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

// ListUnprocessed exposes events still awaiting successful processing
// for operational replay tooling.
func (h *WebhookHandler) ListUnprocessed(c echo.Context) error {
	events, err := h.events.ListUnprocessed(c.Request().Context(), 100)
	if err != nil {
		h.logger.Error("Failed to list unprocessed webhook events", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list events"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"events": events,
		"count":  len(events),
	})
}
