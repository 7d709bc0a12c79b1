package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateSecureID generates a readable reference such as ORD1767225600042137
func GenerateSecureID(prefix string) string {
	return generateID(prefix, time.Now())
}

func generateID(prefix string, now time.Time) string {
	// Random 6-digit suffix keeps references unique within the same second
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return fmt.Sprintf("%s%d%s", prefix, now.Unix(), uuid.NewString()[:6])
	}
	return fmt.Sprintf("%s%d%06d", prefix, now.Unix(), n.Int64())
}

// NewEventID returns a unique id for an analytics event
func NewEventID() string {
	return uuid.NewString()
}

// NormalizePhone strips the channel prefix Twilio puts on WhatsApp
// addresses so "whatsapp:+15551234" and "+15551234" are the same user
func NormalizePhone(addr string) string {
	addr = strings.TrimSpace(addr)
	if i := strings.Index(addr, ":"); i >= 0 {
		addr = addr[i+1:]
	}
	return strings.TrimSpace(addr)
}

// WhatsAppAddress is the inverse of NormalizePhone
func WhatsAppAddress(phone string) string {
	if strings.HasPrefix(phone, "whatsapp:") {
		return phone
	}
	return "whatsapp:" + phone
}
