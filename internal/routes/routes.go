package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/shopbot-backend/internal/handlers"
	"github.com/Ananth-NQI/shopbot-backend/internal/logger"
	"github.com/Ananth-NQI/shopbot-backend/internal/middleware"
)

// Handlers groups everything the routes dispatch to
type Handlers struct {
	WhatsApp  *handlers.WhatsAppHandler
	Health    *handlers.HealthHandler
	Analytics *handlers.AnalyticsHandler
}

// Options controls how the routes are protected
type Options struct {
	ValidateWebhook bool
	TwilioAuthToken string
	AdminAPIKey     string
	EnableTestRoute bool
	Log             *logger.Logger
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, h Handlers, opts Options) {
	app.Get("/", h.Health.Info)
	app.Get("/health", h.Health.Check)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")
	if opts.ValidateWebhook {
		webhooks.Post("/whatsapp", middleware.ValidateTwilioSignature(opts.TwilioAuthToken, opts.Log), h.WhatsApp.HandleWebhook)
	} else {
		// Development: Skip validation for ngrok
		opts.Log.Warn("⚠️ WhatsApp webhook validation DISABLED")
		webhooks.Post("/whatsapp", h.WhatsApp.HandleWebhook)
	}

	// ========== TEST ROUTES (Development Only) ==========
	if opts.EnableTestRoute {
		app.Post("/test/whatsapp", h.WhatsApp.HandleTestWebhook)
	}

	// ========== ADMIN ROUTES ==========
	admin := app.Group("/admin", middleware.RequireAdminKey(opts.AdminAPIKey))
	admin.Get("/analytics", h.Analytics.GetReport)
}
