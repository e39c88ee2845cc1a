package controllers

import (
	"classbooking_go/services"

	"github.com/gofiber/fiber/v2"
)

type HealthController struct {
	Health *services.HealthService
}

// NewHealthController creates a health controller.
func NewHealthController() *HealthController {
	return &HealthController{Health: services.NewHealthService()}
}

// GetDetailedHealth probes every backing dependency.
func (hc *HealthController) GetDetailedHealth(c *fiber.Ctx) error {
	report := hc.Health.Check(c.Context())

	status := fiber.StatusOK
	if report.Status == "down" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(report)
}
