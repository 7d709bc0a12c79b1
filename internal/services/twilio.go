package services

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Ananth-NQI/shopbot-backend/internal/config"
	"github.com/Ananth-NQI/shopbot-backend/internal/logger"
	"github.com/Ananth-NQI/shopbot-backend/internal/utils"
)

// Sender delivers one reply to a user
type Sender interface {
	Send(ctx context.Context, to string, reply Reply) error
}

// messageCreator is the part of the Twilio REST client used for sending
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type TwilioService struct {
	api  messageCreator
	from string // Format: "whatsapp:+14155238886"
	log  *logger.Logger
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService(cfg config.TwilioConfig, log *logger.Logger) (*TwilioService, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioService{
		api:  client.Api,
		from: utils.WhatsAppAddress(cfg.WhatsAppFrom),
		log:  log,
	}, nil
}

// Send delivers a reply as a WhatsApp message. Replies with a picture go
// out as media messages with the caption as body.
func (t *TwilioService) Send(ctx context.Context, to string, reply Reply) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(utils.WhatsAppAddress(to))
	params.SetBody(reply.Body())
	if reply.HasImage() {
		params.SetMediaUrl([]string{reply.ImageURL})
	}

	resp, err := t.api.CreateMessage(params)
	if err != nil {
		t.log.Error("❌ Failed to send WhatsApp message", "phone", to, "error", err)
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		msg := ""
		if resp.ErrorMessage != nil {
			msg = *resp.ErrorMessage
		}
		return fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, msg)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	t.log.Debug("✅ WhatsApp message sent", "phone", to, "sid", sid, "media", reply.HasImage())
	return nil
}

// LogSender only logs replies. It stands in for Twilio in development
// when no credentials are configured.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, to string, reply Reply) error {
	s.log.Info("📤 Reply (not sent)", "phone", to, "text", reply.Body(), "image", reply.ImageURL)
	return nil
}
