package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestMetaClient(t *testing.T, apiBase string) *MetaClient {
	t.Helper()
	c, err := NewMetaClient(apiBase, "104857600000001", "test-token", 2*time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMetaClient failed: %v", err)
	}
	return c
}

func TestMetaClientRequiresCredentials(t *testing.T) {
	if _, err := NewMetaClient("https://graph.facebook.com/v19.0", "", "token", time.Second, zerolog.Nop()); !errors.Is(err, ErrUnconfigured) {
		t.Errorf("expected ErrUnconfigured for missing phone ID, got %v", err)
	}
	if _, err := NewMetaClient("https://graph.facebook.com/v19.0", "104857600000001", "", time.Second, zerolog.Nop()); !errors.Is(err, ErrUnconfigured) {
		t.Errorf("expected ErrUnconfigured for missing token, got %v", err)
	}
}

func TestMetaClientSendSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/104857600000001/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header %q", got)
		}

		var body struct {
			MessagingProduct string `json:"messaging_product"`
			To               string `json:"to"`
			Type             string `json:"type"`
			Text             struct {
				Body string `json:"body"`
			} `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if body.MessagingProduct != "whatsapp" || body.Type != "text" {
			t.Errorf("unexpected payload %+v", body)
		}
		if body.To != "962791234567" {
			t.Errorf("unexpected recipient %s", body.To)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messaging_product":"whatsapp","messages":[{"id":"wamid.abc123"}]}`))
	}))
	defer srv.Close()

	c := newTestMetaClient(t, srv.URL)
	res, err := c.SendOTP(context.Background(), "962791234567", "123456", "en")
	if err != nil {
		t.Fatalf("SendOTP failed: %v", err)
	}
	if res.MessageID != "wamid.abc123" {
		t.Errorf("expected provider message ID, got %q", res.MessageID)
	}
	if res.Simulated {
		t.Error("real provider send must not be marked simulated")
	}
}

func TestMetaClientNonSuccessStatusIsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`))
	}))
	defer srv.Close()

	c := newTestMetaClient(t, srv.URL)
	_, err := c.SendText(context.Background(), "962791234567", "hello")

	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected RejectedError, got %v", err)
	}
}

func TestMetaClientRejectionInsideHTTP200(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"error object", `{"error":{"message":"Recipient is not a valid WhatsApp user","type":"GraphMethodException","code":100}}`},
		{"empty messages", `{"messaging_product":"whatsapp","messages":[]}`},
		{"unparseable body", `not json at all`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := newTestMetaClient(t, srv.URL)
			_, err := c.SendText(context.Background(), "962791234567", "hello")

			var rejected *RejectedError
			if !errors.As(err, &rejected) {
				t.Fatalf("expected RejectedError, got %v", err)
			}
		})
	}
}

func TestMetaClientNetworkFailureIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := newTestMetaClient(t, srv.URL)
	_, err := c.SendText(context.Background(), "962791234567", "hello")

	var unreachable *UnreachableError
	if !errors.As(err, &unreachable) {
		t.Fatalf("expected UnreachableError, got %v", err)
	}
}

func TestSimulatedSenderEchoesWithoutNetwork(t *testing.T) {
	s := NewSimulatedSender(zerolog.Nop())
	res, err := s.SendOTP(context.Background(), "962791234567", "123456", "ar")
	if err != nil {
		t.Fatalf("SendOTP failed: %v", err)
	}
	if !res.Simulated {
		t.Error("simulated sender must mark results as simulated")
	}
}
