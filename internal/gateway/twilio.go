package gateway

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioClient sends WhatsApp messages through Twilio's messaging API,
// the alternative provider for deployments without a Meta business number.
type TwilioClient struct {
	client *twilio.RestClient
	from   string // format: "whatsapp:+14155238886"
	log    zerolog.Logger
}

// NewTwilioClient creates a Twilio-backed gateway.
func NewTwilioClient(accountSID, authToken, from string, log zerolog.Logger) (*TwilioClient, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, ErrUnconfigured
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioClient{client: client, from: from, log: log}, nil
}

func (t *TwilioClient) SendOTP(ctx context.Context, phone, code, locale string) (*SendResult, error) {
	return t.SendText(ctx, phone, otpMessage(code, locale))
}

func (t *TwilioClient) SendText(_ context.Context, phone, body string) (*SendResult, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(fmt.Sprintf("whatsapp:+%s", phone))
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		if restErr, ok := err.(*twilioclient.TwilioRestError); ok {
			t.log.Error().
				Int("code", restErr.Code).
				Str("to", phone).
				Str("provider_response", restErr.Message).
				Msg("Twilio rejected message")
			return nil, &RejectedError{ProviderMessage: restErr.Message}
		}
		return nil, &UnreachableError{Err: err}
	}

	// Twilio can accept the request and still report a message-level error.
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		msg := ""
		if resp.ErrorMessage != nil {
			msg = *resp.ErrorMessage
		}
		t.log.Error().
			Int("code", *resp.ErrorCode).
			Str("to", phone).
			Str("provider_response", msg).
			Msg("Twilio reported message error")
		return nil, &RejectedError{ProviderMessage: msg}
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	t.log.Info().Str("to", phone).Str("message_id", sid).Msg("WhatsApp message sent")
	return &SendResult{MessageID: sid}, nil
}
