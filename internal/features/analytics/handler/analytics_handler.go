package handler

import (
	"github.com/gofiber/fiber/v2"

	"shipone/internal/features/analytics/service"
)

// AnalyticsHandler handles HTTP requests for dashboard analytics.
type AnalyticsHandler struct {
	aggregator *service.Aggregator
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(aggregator *service.Aggregator) *AnalyticsHandler {
	return &AnalyticsHandler{
		aggregator: aggregator,
	}
}

// GetDashboard godoc
// @Summary Get dashboard analytics
// @Description Returns the current analytics snapshot: status counts and service-type/destination-country distributions
// @Tags analytics
// @Produce json
// @Success 200 {object} domain.Snapshot
// @Router /analytics/dashboard [get]
func (h *AnalyticsHandler) GetDashboard(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"analytics": h.aggregator.Read(),
	})
}
