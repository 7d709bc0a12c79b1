package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/shopbot-backend/internal/services"
)

// SessionHealth is what the health endpoints need from the session layer
type SessionHealth interface {
	Ping(ctx context.Context) error
	GetSessionStats(now time.Time) services.SessionStats
}

// HealthHandler handles health check requests
type HealthHandler struct {
	Version  string
	Service  string
	sessions SessionHealth
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service, version string, sessions SessionHealth) *HealthHandler {
	return &HealthHandler{
		Version:  version,
		Service:  service,
		sessions: sessions,
	}
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	if err := h.sessions.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "unhealthy",
			"service": h.Service,
			"version": h.Version,
			"error":   "session store unreachable",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "OK",
		"service": h.Service,
		"version": h.Version,
	})
}

// Info describes the service and its endpoints
func (h *HealthHandler) Info(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":  "Welcome to " + h.Service + "!",
		"version":  h.Version,
		"sessions": h.sessions.GetSessionStats(time.Now()),
		"endpoints": fiber.Map{
			"health":        "/health",
			"webhook":       "/webhook/whatsapp",
			"test_whatsapp": "/test/whatsapp",
			"analytics":     "/admin/analytics",
		},
	})
}
