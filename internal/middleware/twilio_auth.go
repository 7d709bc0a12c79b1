package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/shopbot-backend/internal/logger"
)

// ValidateTwilioSignature validates that the webhook request is from Twilio
func ValidateTwilioSignature(authToken string, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		twilioSignature := c.Get("X-Twilio-Signature")
		if twilioSignature == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing Twilio signature",
			})
		}

		if authToken == "" {
			// Log error but don't expose to client
			log.Error("❌ TWILIO_AUTH_TOKEN not set, cannot validate webhook")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Server configuration error",
			})
		}

		formParams := make(map[string]string)
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			formParams[string(key)] = string(value)
		})

		expected := CalculateTwilioSignature(authToken, getFullURL(c), formParams)
		if !hmac.Equal([]byte(twilioSignature), []byte(expected)) {
			log.Warn("⚠️ Invalid Twilio signature", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}

		return c.Next()
	}
}

// getFullURL rebuilds the URL Twilio signed. Behind a proxy such as Cloud
// Run the original scheme arrives in X-Forwarded-Proto.
func getFullURL(c *fiber.Ctx) string {
	protocol := c.Protocol()
	if fwd := c.Get(fiber.HeaderXForwardedProto); fwd != "" {
		protocol = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	// path and query only; an absolute-form request line carries the host too
	return protocol + "://" + c.Hostname() + string(c.Request().URI().RequestURI())
}

// CalculateTwilioSignature is base64(HMAC-SHA1(authToken, url + sorted
// key/value pairs))
func CalculateTwilioSignature(authToken, url string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(url)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}

	h := hmac.New(sha1.New, []byte(authToken))
	h.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
