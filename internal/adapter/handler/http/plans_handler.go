package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lumenhq/paysvc/internal/adapter/repository"
)

type PlansHandler struct {
	logger *zap.Logger
	plans  repository.PlanRepository
}

// NewPlansHandler creates a new plans handler
func NewPlansHandler(logger *zap.Logger, plans repository.PlanRepository) *PlansHandler {
	return &PlansHandler{
		logger: logger,
		plans:  plans,
	}
}

// GetPlans returns the active plan catalog
func (h *PlansHandler) GetPlans(c echo.Context) error {
	plans, err := h.plans.GetAll(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get plans", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve plans"})
	}

	return c.JSON(http.StatusOK, echo.Map{"plans": plans})
}
