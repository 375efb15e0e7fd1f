// Package gateway wraps the outbound WhatsApp messaging provider. A single
// send either succeeds, is rejected by the provider, or never reaches it;
// each outcome carries a distinct error type so callers can react without
// parsing provider payloads themselves.
package gateway

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnconfigured is returned when provider credentials are missing. In
// development the simulated sender covers this case; it is never enabled
// implicitly.
var ErrUnconfigured = errors.New("messaging gateway not configured")

// RejectedError means the provider received the request but refused the
// message, either via a non-success HTTP status or a rejection reported
// inside an HTTP 200 payload. ProviderMessage is for logs only and must
// never be echoed to end users.
type RejectedError struct {
	ProviderMessage string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("provider rejected message: %s", e.ProviderMessage)
}

// UnreachableError means the request never completed: network failure or
// timeout. The OTP already persisted stays valid, the message may even
// still arrive.
type UnreachableError struct {
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("provider unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// SendResult reports a successful (or simulated) delivery.
type SendResult struct {
	MessageID string
	// Simulated is true when no provider call was made and the code was
	// logged instead. Callers may echo the code in this mode only.
	Simulated bool
}

// Gateway sends WhatsApp messages to canonical (digits-only) numbers.
// It performs exactly one outbound call per invocation; retries are the
// caller's responsibility.
type Gateway interface {
	SendOTP(ctx context.Context, phone, code, locale string) (*SendResult, error)
	SendText(ctx context.Context, phone, body string) (*SendResult, error)
}

// otpMessage renders the verification text in the requested locale.
func otpMessage(code, locale string) string {
	if locale == "ar" {
		return fmt.Sprintf("رمز التحقق من Trusted Links: %s\nالرجاء إدخال هذا الرمز لتأكيد رقم الواتساب الخاص بك.", code)
	}
	return fmt.Sprintf("Trusted Links Verification Code: %s\nPlease enter this code to verify your WhatsApp number.", code)
}
