package whatsapp

import (
	"context"
	"fmt"
	"strings"

	"leadconnect_backend/platform/logger"
	"leadconnect_backend/platform/phone"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// messageCreator is the slice of the Twilio REST API we call.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioClient sends WhatsApp messages through Twilio.
type TwilioClient struct {
	api       messageCreator
	fromWhats string
	log       *logger.Logger
}

func NewTwilioClient(accountSID, authToken, from string, log *logger.Logger) (*TwilioClient, error) {
	if accountSID == "" || authToken == "" {
		return nil, fmt.Errorf("twilio account SID and auth token must be provided")
	}
	if from == "" {
		return nil, fmt.Errorf("twilio from number must be provided")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioClient{api: client.Api, fromWhats: whatsAppAddress(from), log: log}, nil
}

func (c *TwilioClient) Name() string { return ProviderTwilio }

// SendMessage is synchronous; the Twilio SDK call does not take a context.
func (c *TwilioClient) SendMessage(_ context.Context, phoneNumber string, message string) error {
	to := whatsAppAddress(phoneNumber)

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.fromWhats)
	params.SetBody(message)

	if _, err := c.api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}
	c.log.Info("whatsapp sent via twilio", "phone", to)
	return nil
}

func whatsAppAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + phone.NormalizeE164(number)
}
