package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/shopbot-backend/internal/models"
	"github.com/Ananth-NQI/shopbot-backend/internal/services"
)

// Reporter builds analytics reports
type Reporter interface {
	Report(ctx context.Context, period string, at time.Time) (*models.AnalyticsReport, error)
}

type AnalyticsHandler struct {
	reporter Reporter
	now      func() time.Time
}

func NewAnalyticsHandler(reporter Reporter) *AnalyticsHandler {
	return &AnalyticsHandler{
		reporter: reporter,
		now:      time.Now,
	}
}

// GetReport returns the analytics report for ?period=daily|weekly|monthly
func (h *AnalyticsHandler) GetReport(c *fiber.Ctx) error {
	period := c.Query("period", services.PeriodDaily)

	report, err := h.reporter.Report(c.UserContext(), period, h.now().UTC())
	if errors.Is(err, services.ErrInvalidPeriod) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build analytics report",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"report":  report,
	})
}
