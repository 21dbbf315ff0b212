package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/safety-suggestions/internal/service"
)

// AnalyticsHandler serves the admin dashboard aggregates.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: analyticsService}
}

// Get GET /api/suggestions/analytics (admin).
func (h *AnalyticsHandler) Get(c *fiber.Ctx) error {
	analytics, err := h.service.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(analytics)
}
