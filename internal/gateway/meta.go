package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// MetaClient sends messages through the WhatsApp Cloud API
// (graph.facebook.com). Authentication is a bearer token; the destination
// endpoint is scoped to the sending phone-number ID.
type MetaClient struct {
	endpoint string
	token    string
	http     *http.Client
	log      zerolog.Logger
}

// NewMetaClient builds a Cloud API client. apiBase is the versioned Graph
// API root (e.g. "https://graph.facebook.com/v19.0").
func NewMetaClient(apiBase, phoneID, token string, timeout time.Duration, log zerolog.Logger) (*MetaClient, error) {
	if phoneID == "" || token == "" {
		return nil, ErrUnconfigured
	}
	return &MetaClient{
		endpoint: fmt.Sprintf("%s/%s/messages", apiBase, phoneID),
		token:    token,
		http:     &http.Client{Timeout: timeout},
		log:      log,
	}, nil
}

type metaTextBody struct {
	Body string `json:"body"`
}

type metaMessageRequest struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             metaTextBody `json:"text"`
}

type metaMessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (c *MetaClient) SendOTP(ctx context.Context, phone, code, locale string) (*SendResult, error) {
	return c.SendText(ctx, phone, otpMessage(code, locale))
}

func (c *MetaClient) SendText(ctx context.Context, phone, body string) (*SendResult, error) {
	payload, err := json.Marshal(metaMessageRequest{
		MessagingProduct: "whatsapp",
		To:               phone,
		Type:             "text",
		Text:             metaTextBody{Body: body},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UnreachableError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &UnreachableError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error().
			Int("status", resp.StatusCode).
			Str("to", phone).
			Bytes("provider_response", raw).
			Msg("WhatsApp Cloud API rejected message")
		return nil, &RejectedError{ProviderMessage: string(raw)}
	}

	// The Cloud API can accept the HTTP request yet refuse the message,
	// reporting the refusal inside a 200 payload. An empty messages list
	// counts as a rejection too.
	var parsed metaMessageResponse
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.Error != nil || len(parsed.Messages) == 0 {
		c.log.Error().
			Str("to", phone).
			Bytes("provider_response", raw).
			Msg("WhatsApp Cloud API reported rejection on HTTP 200")
		msg := string(raw)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, &RejectedError{ProviderMessage: msg}
	}

	c.log.Info().
		Str("to", phone).
		Str("message_id", parsed.Messages[0].ID).
		Msg("WhatsApp message sent")
	return &SendResult{MessageID: parsed.Messages[0].ID}, nil
}
