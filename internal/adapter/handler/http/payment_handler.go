package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainRepo "github.com/lumenhq/paysvc/internal/domain/repository"
	"github.com/lumenhq/paysvc/internal/middleware/auth"
)

type PaymentHandler struct {
	logger   *zap.Logger
	payments domainRepo.PaymentRepository
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(logger *zap.Logger, payments domainRepo.PaymentRepository) *PaymentHandler {
	return &PaymentHandler{
		logger:   logger,
		payments: payments,
	}
}

// GetUserPayments returns the current user's payment history
func (h *PaymentHandler) GetUserPayments(c echo.Context) error {
	authUser, err := auth.GetUserFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	payments, err := h.payments.ListByUserID(c.Request().Context(), authUser.UserID, limit)
	if err != nil {
		h.logger.Error("Failed to list payments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve payments"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"payments": payments,
		"count":    len(payments),
	})
}
