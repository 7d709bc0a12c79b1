package services

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/shopbot-backend/internal/logger"
)

// ImageFetcher downloads an image. It returns nil on any failure.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) []byte
}

// HTTPImageFetcher fetches images with the Fiber HTTP client
type HTTPImageFetcher struct {
	timeout  time.Duration
	maxBytes int
	log      *logger.Logger
}

// NewHTTPImageFetcher creates a fetcher with a per-request timeout
func NewHTTPImageFetcher(timeout time.Duration, log *logger.Logger) *HTTPImageFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPImageFetcher{
		timeout: timeout,
		// WhatsApp rejects images above 5MB
		maxBytes: 5 << 20,
		log:      log,
	}
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) []byte {
	timeout := f.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return nil
	}

	agent := fiber.Get(url).Timeout(timeout)
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		f.log.Warn("⚠️ Image fetch failed", "url", url, "error", errs[0])
		return nil
	}
	if code != fiber.StatusOK || len(body) == 0 {
		f.log.Warn("⚠️ Image fetch failed", "url", url, "status", code)
		return nil
	}
	if len(body) > f.maxBytes {
		f.log.Warn("⚠️ Image too large", "url", url, "bytes", len(body))
		return nil
	}
	return body
}
