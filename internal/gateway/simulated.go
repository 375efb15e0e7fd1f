package gateway

import (
	"context"

	"github.com/rs/zerolog"
)

// SimulatedSender logs messages instead of transmitting them so the full
// request/verify flow works end-to-end without provider credentials. It is
// only wired in when OTP_SIMULATE is set explicitly.
type SimulatedSender struct {
	log zerolog.Logger
}

// NewSimulatedSender creates the development sender.
func NewSimulatedSender(log zerolog.Logger) *SimulatedSender {
	return &SimulatedSender{log: log}
}

func (s *SimulatedSender) SendOTP(_ context.Context, phone, code, locale string) (*SendResult, error) {
	s.log.Warn().
		Str("to", phone).
		Str("code", code).
		Str("locale", locale).
		Msg("SIMULATED send: OTP not transmitted")
	return &SendResult{MessageID: "simulated", Simulated: true}, nil
}

func (s *SimulatedSender) SendText(_ context.Context, phone, body string) (*SendResult, error) {
	s.log.Warn().
		Str("to", phone).
		Str("body", body).
		Msg("SIMULATED send: message not transmitted")
	return &SendResult{MessageID: "simulated", Simulated: true}, nil
}
