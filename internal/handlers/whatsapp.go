package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/shopbot-backend/internal/logger"
	"github.com/Ananth-NQI/shopbot-backend/internal/services"
)

// MessageHandler runs an inbound chat message through the shop conversation
type MessageHandler interface {
	HandleMessage(ctx context.Context, from, userName, message string) (*services.Result, error)
}

// WhatsAppHandler handles WhatsApp webhook requests
type WhatsAppHandler struct {
	messages MessageHandler
	log      *logger.Logger
}

// NewWhatsAppHandler creates a new WhatsApp handler
func NewWhatsAppHandler(messages MessageHandler, log *logger.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{
		messages: messages,
		log:      log,
	}
}

// TwilioWebhookPayload represents incoming WhatsApp message from Twilio
type TwilioWebhookPayload struct {
	MessageSid  string `form:"MessageSid"`
	AccountSid  string `form:"AccountSid"`
	From        string `form:"From"` // WhatsApp number (whatsapp:+919876543210)
	To          string `form:"To"`   // Your Twilio number
	Body        string `form:"Body"`
	ProfileName string `form:"ProfileName"`
	WaID        string `form:"WaId"`
	NumMedia    string `form:"NumMedia"`
}

// HandleWebhook processes incoming WhatsApp messages. Twilio always gets a
// 200 once the payload parses; problems are answered in the chat.
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		h.log.Warn("⚠️ Invalid webhook payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	// status callbacks and media-only messages carry no text
	if payload.From == "" || payload.Body == "" {
		return c.SendStatus(fiber.StatusOK)
	}

	if _, err := h.messages.HandleMessage(c.UserContext(), payload.From, payload.ProfileName, payload.Body); err != nil {
		h.log.Error("❌ Error processing message", "sid", payload.MessageSid, "error", err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// TestWebhookPayload is a chat message for testing without Twilio
type TestWebhookPayload struct {
	From    string `json:"from"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// HandleTestWebhook processes test WhatsApp messages (for development)
// and returns the replies that were produced
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}

	h.log.Info("🧪 Test webhook received", "phone", payload.From, "text", payload.Message)

	result, err := h.messages.HandleMessage(c.UserContext(), payload.From, payload.Name, payload.Message)
	if errors.Is(err, services.ErrMissingSender) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "from is required",
		})
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"result":  result,
	})
}
